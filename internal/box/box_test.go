/*
   Copyright Mycophonic.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package box_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/mycophonic/isomux/internal/box"
)

// --- byte fixture helpers -------------------------------------------------

func u16(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)

	return b
}

func u32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)

	return b
}

func u64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)

	return b
}

func zeros(n int) []byte { return make([]byte, n) }

func cat(parts ...[]byte) []byte {
	var buf bytes.Buffer
	for _, p := range parts {
		buf.Write(p)
	}

	return buf.Bytes()
}

// mkBox wraps payload in a standard 8-byte size+four-cc header. fourcc
// must be exactly four bytes but need not be printable ASCII (udta tag
// keys start with 0xA9).
func mkBox(fourcc string, payload ...[]byte) []byte {
	body := cat(payload...)
	if len(fourcc) != 4 {
		panic("fourcc must be 4 bytes: " + fourcc)
	}

	return cat(u32(uint32(8+len(body))), []byte(fourcc), body) //nolint:gosec // test fixtures, small sizes
}

// fullBox builds the 4-byte version+flags word common to "full box" payloads.
func fullBox(version uint8, flags uint32) []byte {
	w := u32(flags &^ 0xFF000000)
	w[0] = version

	return w
}

func xyzFourCC() string { return string([]byte{0xA9, 'x', 'y', 'z'}) }
func artFourCC() string { return string([]byte{0xA9, 'A', 'R', 'T'}) }

// --- shared tree builders --------------------------------------------------

func mvhdBox(timescale uint32, duration uint32) []byte {
	payload := cat(
		fullBox(0, 0),
		u32(0), u32(0), // creation, modification
		u32(timescale), u32(duration),
		zeros(16), // rate, volume+reserved, reserved x2
		zeros(60), // matrix (9) + pre_defined (6)
		u32(2),    // next_track_ID
	)

	return mkBox("mvhd", payload)
}

func tkhdBox(id uint32, duration uint32, width, height uint16) []byte {
	payload := cat(
		fullBox(0, 0),
		u32(0), u32(0), // creation, modification
		u32(id),
		u32(0), // reserved
		u32(duration),
		zeros(16), // reserved x2, layer+group, volume+reserved
		zeros(36), // matrix
		u32(uint32(width)<<16),
		u32(uint32(height)<<16),
	)

	return mkBox("tkhd", payload)
}

func mdhdBox(timescale, duration uint32) []byte {
	payload := cat(
		fullBox(0, 0),
		u32(0), u32(0), // creation, modification
		u32(timescale), u32(duration),
		u32(0), // packed language + pad, all-zero decodes to "und"
	)

	return mkBox("mdhd", payload)
}

func hdlrBox(handlerType string) []byte {
	payload := cat(
		fullBox(0, 0),
		u32(0),                  // pre_defined
		[]byte(handlerType),     // handler_type
		zeros(12),               // reserved x3
	)

	return mkBox("hdlr", payload)
}

func vmhdBox() []byte {
	return mkBox("vmhd", cat(fullBox(0, 0), u16(0), zeros(6)))
}

func smhdBox() []byte {
	return mkBox("smhd", cat(fullBox(0, 0), u16(0), u16(0)))
}

func dinfBox() []byte { return mkBox("dinf") }

func sttsBox(sampleCount, sampleDelta uint32) []byte {
	payload := cat(fullBox(0, 0), u32(1), u32(sampleCount), u32(sampleDelta))

	return mkBox("stts", payload)
}

func stscBox(firstChunk, samplesPerChunk, sampleDescIdx uint32) []byte {
	payload := cat(fullBox(0, 0), u32(1), u32(firstChunk), u32(samplesPerChunk), u32(sampleDescIdx))

	return mkBox("stsc", payload)
}

func stszBox(sizes []uint32) []byte {
	entries := make([]byte, 0, len(sizes)*4)
	for _, s := range sizes {
		entries = append(entries, u32(s)...)
	}

	payload := cat(fullBox(0, 0), u32(0), u32(uint32(len(sizes))), entries) //nolint:gosec

	return mkBox("stsz", payload)
}

func stcoBox(offsets []uint32) []byte {
	entries := make([]byte, 0, len(offsets)*4)
	for _, o := range offsets {
		entries = append(entries, u32(o)...)
	}

	payload := cat(fullBox(0, 0), u32(uint32(len(offsets))), entries) //nolint:gosec

	return mkBox("stco", payload)
}

func co64Box(offsets []uint64) []byte {
	entries := make([]byte, 0, len(offsets)*8)
	for _, o := range offsets {
		entries = append(entries, u64(o)...)
	}

	payload := cat(fullBox(0, 0), u32(uint32(len(offsets))), entries) //nolint:gosec

	return mkBox("co64", payload)
}

func avcCBox() []byte {
	// spsCount = 0, ppsCount = 0: the smallest legal record.
	payload := cat(u32(0), u16(0), []byte{0})

	return mkBox("avcC", payload)
}

func avc1Box(width, height uint16) []byte {
	payload := cat(
		zeros(4),                  // reserved
		zeros(4),                  // reserved + data_reference_index
		zeros(16),                 // pre_defined + reserved x4
		u32(uint32(width)<<16|uint32(height)),
		zeros(4), zeros(4), zeros(4), // horizres, vertres, reserved
		u16(0),    // frame_count
		zeros(32), // compressorname
		zeros(4),  // depth + pre_defined
		avcCBox(),
	)

	return mkBox("avc1", payload)
}

func mp4aBox(channels, sampleSize uint16, sampleRate uint32) []byte {
	payload := cat(
		zeros(4), zeros(4), // reserved, reserved+data_reference_index
		zeros(4), zeros(4), // reserved x2
		u32(uint32(channels)<<16|uint32(sampleSize)),
		zeros(4),
		u32(sampleRate),
	)

	return mkBox("mp4a", payload)
}

func stsdVideoBox() []byte {
	payload := cat(fullBox(0, 0), u32(1), avc1Box(640, 480))

	return mkBox("stsd", payload)
}

func stsdAudioBox() []byte {
	payload := cat(fullBox(0, 0), u32(1), mp4aBox(2, 16, 44100<<16))

	return mkBox("stsd", payload)
}

func ftypBox(major string, minor uint32, compatible ...string) []byte {
	payload := cat([]byte(major), u32(minor))
	for _, c := range compatible {
		payload = append(payload, []byte(c)...)
	}

	return mkBox("ftyp", payload)
}

func trefBox(refType string, trackID uint32) []byte {
	return mkBox("tref", mkBox(refType, u32(trackID)))
}

func dataUTF8Box(value string) []byte {
	return mkBox("data", cat(u32(1), zeros(4), []byte(value)))
}

func dataCoverBox(class uint32, value []byte) []byte {
	return mkBox("data", cat(u32(class), zeros(4), value))
}

func ilstBox(children ...[]byte) []byte { return mkBox("ilst", children...) }

func metaBox(children ...[]byte) []byte {
	return mkBox("meta", cat(fullBox(0, 0), cat(children...)))
}

func xyzBox(value string) []byte {
	return mkBox(xyzFourCC(), cat(u16(uint16(len(value))), u16(0), []byte(value))) //nolint:gosec
}

// videoTrakBox assembles a complete trak box for a single video track with
// one sample per entry of sampleSizes, each sample in its own chunk at the
// matching entry of offsets.
func videoTrakBox(id uint32, sampleSizes []uint32, offsets []uint32) []byte {
	stbl := mkBox("stbl",
		stsdVideoBox(),
		sttsBox(uint32(len(sampleSizes)), 1000), //nolint:gosec
		stscBox(1, 1, 1),
		stszBox(sampleSizes),
		stcoBox(offsets),
	)
	minf := mkBox("minf", vmhdBox(), dinfBox(), stbl)
	mdia := mkBox("mdia", mdhdBox(1000, uint32(len(sampleSizes))*1000), hdlrBox("vide"), minf) //nolint:gosec

	return mkBox("trak", tkhdBox(id, uint32(len(sampleSizes))*1000, 640, 480), mdia) //nolint:gosec
}

func parse(t *testing.T, data []byte) *box.Demux {
	t.Helper()

	d, err := box.Parse(context.Background(), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("box.Parse: %v", err)
	}

	return d
}

// --- scenario tests (spec §8) ----------------------------------------------

func TestMinimalFtypOnly(t *testing.T) {
	data := ftypBox("isom", 0, "isom")

	d := parse(t, data)

	if d.MajorBrand.String() != "isom" {
		t.Errorf("MajorBrand = %q, want isom", d.MajorBrand.String())
	}

	if len(d.CompatibleBrands) != 1 {
		t.Fatalf("CompatibleBrands = %v, want 1 entry", d.CompatibleBrands)
	}

	if len(d.Tracks) != 0 {
		t.Errorf("Tracks = %d, want 0", len(d.Tracks))
	}
}

func TestSingleVideoTrackThreeSamples(t *testing.T) {
	trak := videoTrakBox(1, []uint32{100, 200, 150}, []uint32{1000, 1300, 1700})
	moov := mkBox("moov", mvhdBox(1000, 3000), trak)
	data := cat(ftypBox("isom", 0, "isom"), moov)

	d := parse(t, data)

	if len(d.Tracks) != 1 {
		t.Fatalf("Tracks = %d, want 1", len(d.Tracks))
	}

	track := d.Tracks[0]

	if track.Type != box.TrackVideo {
		t.Errorf("Type = %v, want TrackVideo", track.Type)
	}

	if track.VideoWidth != 640 || track.VideoHeight != 480 {
		t.Errorf("dims = %dx%d, want 640x480", track.VideoWidth, track.VideoHeight)
	}

	if track.SampleCount != 3 {
		t.Fatalf("SampleCount = %d, want 3", track.SampleCount)
	}

	for i, want := range []struct {
		offset int64
		size   uint32
		ts     uint64
	}{
		{1000, 100, 0},
		{1300, 200, 1000},
		{1700, 150, 2000},
	} {
		info, err := track.SampleInfo(i)
		if err != nil {
			t.Fatalf("SampleInfo(%d): %v", i, err)
		}

		if info.Offset != want.offset || info.Size != want.size || info.DecodeTS != want.ts {
			t.Errorf("SampleInfo(%d) = %+v, want offset=%d size=%d ts=%d", i, info, want.offset, want.size, want.ts)
		}

		if !info.IsSync {
			t.Errorf("SampleInfo(%d).IsSync = false, want true (no stss present)", i)
		}
	}
}

func TestSixtyFourBitChunkOffsets(t *testing.T) {
	stbl := mkBox("stbl",
		stsdVideoBox(),
		sttsBox(1, 1000),
		stscBox(1, 1, 1),
		stszBox([]uint32{500}),
		co64Box([]uint64{1 << 33}),
	)
	minf := mkBox("minf", vmhdBox(), dinfBox(), stbl)
	mdia := mkBox("mdia", mdhdBox(1000, 1000), hdlrBox("vide"), minf)
	trak := mkBox("trak", tkhdBox(1, 1000, 640, 480), mdia)
	moov := mkBox("moov", mvhdBox(1000, 1000), trak)
	data := cat(ftypBox("isom", 0, "isom"), moov)

	d := parse(t, data)

	info, err := d.Tracks[0].SampleInfo(0)
	if err != nil {
		t.Fatalf("SampleInfo: %v", err)
	}

	if info.Offset != 1<<33 {
		t.Errorf("Offset = %d, want %d", info.Offset, int64(1)<<33)
	}
}

func TestTwoTracksWithTrackReference(t *testing.T) {
	videoTrak := videoTrakBox(1, []uint32{100}, []uint32{1000})

	stbl := mkBox("stbl",
		stsdAudioBox(),
		sttsBox(1, 1000),
		stscBox(1, 1, 1),
		stszBox([]uint32{200}),
		stcoBox([]uint32{1100}),
	)
	minf := mkBox("minf", smhdBox(), dinfBox(), stbl)
	mdia := mkBox("mdia", mdhdBox(1000, 1000), hdlrBox("soun"), minf)
	audioTrak := mkBox("trak", tkhdBox(2, 1000, 0, 0), mdia, trefBox("hint", 1))

	moov := mkBox("moov", mvhdBox(1000, 1000), videoTrak, audioTrak)
	data := cat(ftypBox("isom", 0, "isom"), moov)

	d := parse(t, data)

	if len(d.Tracks) != 2 {
		t.Fatalf("Tracks = %d, want 2", len(d.Tracks))
	}

	audio := d.Tracks[1]

	if !audio.HasReference() {
		t.Fatal("audio track HasReference() = false, want true")
	}

	if audio.ReferenceType.String() != "hint" || audio.ReferenceTrackID != 1 {
		t.Errorf("reference = %s/%d, want hint/1", audio.ReferenceType, audio.ReferenceTrackID)
	}

	if audio.AudioChannelCount != 2 || audio.AudioSampleSize != 16 {
		t.Errorf("audio fields = %d ch, %d bit, want 2/16", audio.AudioChannelCount, audio.AudioSampleSize)
	}
}

func TestUdtaMetadataCoverAndLocation(t *testing.T) {
	artistTag := mkBox(artFourCC(), dataUTF8Box("Test Artist"))
	covrTag := mkBox("covr", dataCoverBox(13, []byte{0xFF, 0xD8, 0xFF, 0xDB}))
	ilst := ilstBox(artistTag, covrTag)
	meta := metaBox(ilst)
	xyz := xyzBox("+35.6590-139.7010/")
	udta := mkBox("udta", meta, xyz)

	moov := mkBox("moov", mvhdBox(1000, 0), udta)
	data := cat(ftypBox("isom", 0, "isom"), moov)

	d := parse(t, data)

	if len(d.UdtaMetadataKey) != 1 || d.UdtaMetadataValue[0] != "Test Artist" {
		t.Errorf("UdtaMetadata = %v/%v, want 1 entry \"Test Artist\"", d.UdtaMetadataKey, d.UdtaMetadataValue)
	}

	if d.UdtaCover.Format != box.CoverJPEG || d.UdtaCover.Size != 4 {
		t.Errorf("UdtaCover = %+v, want JPEG/4 bytes", d.UdtaCover)
	}

	if !d.HasLocation() || d.UdtaLocationValue != "+35.6590-139.7010/" {
		t.Errorf("location = %q (has=%v), want +35.6590-139.7010/", d.UdtaLocationValue, d.HasLocation())
	}
}

func TestMalformedMoovSizeIsInvalidSize(t *testing.T) {
	bogusMoov := cat(u32(4), []byte("moov"))
	data := cat(ftypBox("isom", 0, "isom"), bogusMoov)

	_, err := box.Parse(context.Background(), bytes.NewReader(data))
	if !errors.Is(err, box.ErrInvalidSize) {
		t.Fatalf("err = %v, want ErrInvalidSize", err)
	}
}

// --- focused unit tests ------------------------------------------------

func TestIsSyncDefaultsToTrueWithoutStss(t *testing.T) {
	trak := videoTrakBox(1, []uint32{10, 20}, []uint32{100, 110})
	moov := mkBox("moov", mvhdBox(1000, 2000), trak)
	data := cat(ftypBox("isom", 0, "isom"), moov)

	track := parse(t, data).Tracks[0]

	if !track.IsSync(1) || !track.IsSync(2) {
		t.Error("IsSync should default to true when no stss box is present")
	}
}

func TestSeekPrevSync(t *testing.T) {
	trak := videoTrakBox(1, []uint32{10, 10, 10, 10}, []uint32{100, 110, 120, 130})
	moov := mkBox("moov", mvhdBox(1000, 4000), trak)
	data := cat(ftypBox("isom", 0, "isom"), moov)

	track := parse(t, data).Tracks[0]

	idx, err := track.SeekPrevSync(2500)
	if err != nil {
		t.Fatalf("SeekPrevSync: %v", err)
	}

	if idx != 2 {
		t.Errorf("SeekPrevSync(2500) = %d, want 2 (ts=2000)", idx)
	}

	idx, err = track.SeekPrevSync(0)
	if err != nil || idx != 0 {
		t.Errorf("SeekPrevSync(0) = %d, %v, want 0, nil", idx, err)
	}
}

func TestBoxTreeRecordsDepth(t *testing.T) {
	moov := mkBox("moov", mvhdBox(1000, 0))
	data := cat(ftypBox("isom", 0, "isom"), moov)

	d := parse(t, data)

	if len(d.Boxes) < 3 {
		t.Fatalf("Boxes = %v, want at least ftyp, moov, mvhd", d.Boxes)
	}

	if d.Boxes[0].Type.String() != "ftyp" || d.Boxes[0].Depth != 0 {
		t.Errorf("Boxes[0] = %+v, want ftyp at depth 0", d.Boxes[0])
	}

	var foundMvhdAtDepth1 bool

	for _, n := range d.Boxes {
		if n.Type.String() == "mvhd" && n.Depth == 1 {
			foundMvhdAtDepth1 = true
		}
	}

	if !foundMvhdAtDepth1 {
		t.Errorf("Boxes = %v, want mvhd at depth 1", d.Boxes)
	}
}
