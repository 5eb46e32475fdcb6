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

// Package tests cross-checks isomux against github.com/abema/go-mp4 on a
// synthetic fixture, so the two box-tree walkers are held to agreement on
// the handful of fields every ISOBMFF demuxer must resolve identically.
package tests

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	gomp4 "github.com/abema/go-mp4"
	"github.com/mycophonic/isomux"
)

func u32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)

	return b
}

func mkBox(fourcc string, payload ...[]byte) []byte {
	if len(fourcc) != 4 {
		panic("fourcc must be 4 bytes")
	}

	var body bytes.Buffer
	for _, p := range payload {
		body.Write(p)
	}

	var buf bytes.Buffer
	buf.Write(u32(uint32(8 + body.Len())))
	buf.WriteString(fourcc)
	buf.Write(body.Bytes())

	return buf.Bytes()
}

func zeros(n int) []byte { return make([]byte, n) }

// buildFixture assembles a minimal but complete single-audio-track
// container: ftyp, a movie header, and one trak with a full sample table
// (three samples, one per chunk). It exercises exactly the boxes both
// isomux and go-mp4 know how to walk.
func buildFixture() []byte {
	ftyp := mkBox("ftyp", []byte("M4A "), u32(0), []byte("M4A "), []byte("mp42"))

	mvhd := mkBox("mvhd",
		fullBox(),
		zeros(4), zeros(4), // creation_time, modification_time
		u32(1000), // timescale
		u32(3000), // duration
		zeros(4),  // rate
		zeros(4),  // volume + reserved
		zeros(8),  // reserved
		zeros(36), // matrix
		zeros(24), // pre_defined
		u32(2),    // next_track_ID
	)

	tkhd := mkBox("tkhd",
		fullBox(),
		zeros(4), zeros(4), // creation_time, modification_time
		u32(1), // track_ID
		zeros(4),
		u32(3000), // duration
		zeros(8),  // reserved
		zeros(2), zeros(2), // layer, alternate_group
		zeros(2), zeros(2), // volume, reserved
		zeros(36), // matrix
		zeros(4), zeros(4), // width, height
	)

	mdhd := mkBox("mdhd",
		fullBox(),
		zeros(4), zeros(4),
		u32(1000), u32(3000),
		zeros(4),
	)

	hdlr := mkBox("hdlr", fullBox(), zeros(4), []byte("soun"), zeros(12))

	stts := mkBox("stts", fullBox(), u32(1), u32(3), u32(1000))
	stsz := mkBox("stsz", fullBox(), u32(0), u32(3), u32(100), u32(200), u32(150))
	stsc := mkBox("stsc", fullBox(), u32(1), u32(1), u32(1), u32(1))
	stco := mkBox("stco", fullBox(), u32(3), u32(1000), u32(1300), u32(1700))

	mp4a := mkBox("mp4a", zeros(4), zeros(4), zeros(4), zeros(4), u32(2<<16|16), zeros(4), u32(44100<<16))
	stsd := mkBox("stsd", fullBox(), u32(1), mp4a)

	stbl := mkBox("stbl", stsd, stts, stsz, stsc, stco)
	smhd := mkBox("smhd", fullBox(), zeros(4))
	dinf := mkBox("dinf")
	minf := mkBox("minf", smhd, dinf, stbl)
	mdia := mkBox("mdia", mdhd, hdlr, minf)
	trak := mkBox("trak", tkhd, mdia)

	moov := mkBox("moov", mvhd, trak)

	return bytes.Join([][]byte{ftyp, moov}, nil)
}

func fullBox() []byte { return zeros(4) }

func TestTimescaleAgreesWithGoMp4(t *testing.T) {
	data := buildFixture()

	f, err := isomux.Open(context.Background(), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("isomux.Open: %v", err)
	}
	defer f.Close()

	if got, want := f.Timescale(), uint32(1000); got != want {
		t.Fatalf("isomux timescale = %d, want %d", got, want)
	}

	var gomp4Timescale uint32

	_, err = gomp4.ReadBoxStructure(bytes.NewReader(data), func(h *gomp4.ReadHandle) (any, error) {
		if h.BoxInfo.Type == gomp4.BoxTypeMvhd() {
			payload, _, err := h.ReadPayload()
			if err != nil {
				return nil, err
			}

			gomp4Timescale = payload.(*gomp4.Mvhd).Timescale
		}

		return h.Expand()
	})
	if err != nil {
		t.Fatalf("go-mp4 ReadBoxStructure: %v", err)
	}

	if gomp4Timescale != f.Timescale() {
		t.Fatalf("isomux and go-mp4 disagree on timescale: %d vs %d", f.Timescale(), gomp4Timescale)
	}
}

func TestSampleTableAgreesWithGoMp4(t *testing.T) {
	data := buildFixture()

	f, err := isomux.Open(context.Background(), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("isomux.Open: %v", err)
	}
	defer f.Close()

	if f.TrackCount() != 1 {
		t.Fatalf("TrackCount() = %d, want 1", f.TrackCount())
	}

	wantOffsets := []uint32{1000, 1300, 1700}
	wantSizes := []uint32{100, 200, 150}

	for i, wantOffset := range wantOffsets {
		s, err := f.SampleInfo(0, i)
		if err != nil {
			t.Fatalf("SampleInfo(0, %d): %v", i, err)
		}

		if uint32(s.Offset) != wantOffset {
			t.Errorf("sample %d offset = %d, want %d", i, s.Offset, wantOffset)
		}

		if s.Size != wantSizes[i] {
			t.Errorf("sample %d size = %d, want %d", i, s.Size, wantSizes[i])
		}
	}

	var (
		gomp4Offsets []uint32
		gomp4Sizes   []uint32
	)

	_, err = gomp4.ReadBoxStructure(bytes.NewReader(data), func(h *gomp4.ReadHandle) (any, error) {
		switch h.BoxInfo.Type {
		case gomp4.BoxTypeStco():
			payload, _, err := h.ReadPayload()
			if err != nil {
				return nil, err
			}

			gomp4Offsets = payload.(*gomp4.Stco).ChunkOffset
		case gomp4.BoxTypeStsz():
			payload, _, err := h.ReadPayload()
			if err != nil {
				return nil, err
			}

			gomp4Sizes = payload.(*gomp4.Stsz).EntrySize
		}

		return h.Expand()
	})
	if err != nil {
		t.Fatalf("go-mp4 ReadBoxStructure: %v", err)
	}

	if len(gomp4Offsets) != len(wantOffsets) {
		t.Fatalf("go-mp4 chunk offset count = %d, want %d", len(gomp4Offsets), len(wantOffsets))
	}

	for i, off := range gomp4Offsets {
		if off != wantOffsets[i] {
			t.Errorf("go-mp4 offset %d = %d, want %d", i, off, wantOffsets[i])
		}
	}

	if len(gomp4Sizes) != len(wantSizes) {
		t.Fatalf("go-mp4 sample size count = %d, want %d", len(gomp4Sizes), len(wantSizes))
	}

	for i, sz := range gomp4Sizes {
		if sz != wantSizes[i] {
			t.Errorf("go-mp4 size %d = %d, want %d", i, sz, wantSizes[i])
		}
	}
}
