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

package isomux

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/mycophonic/isomux/internal/box"
)

// TrackInfo is the resolved, queryable view of one trak box (§4.19, §4.20).
type TrackInfo struct {
	ID          uint32
	Type        TrackType
	Timescale   uint32
	Duration    uint64
	SampleCount uint32
	Language    string // BCP-47 tag, e.g. "und" if unset or unparseable

	HasReference     bool
	ReferenceType    string
	ReferenceTrackID uint32

	VideoCodec  VideoCodec
	VideoWidth  uint16
	VideoHeight uint16
	VideoSPS    []byte
	VideoPPS    []byte

	AudioChannelCount uint16
	AudioSampleSize   uint16
	AudioSampleRate   uint32 // raw 16.16 fixed point, as on the wire

	MetadataContentEncoding string
	MetadataMimeFormat      string
}

func trackInfoFromBox(t *box.Track) TrackInfo {
	info := TrackInfo{
		ID:          t.ID,
		Type:        trackTypeFromBox(t.Type),
		Timescale:   t.Timescale,
		Duration:    t.Duration,
		SampleCount: t.SampleCount,
		Language:    t.Language.String(),

		HasReference:     t.HasReference(),
		ReferenceTrackID: t.ReferenceTrackID,

		VideoCodec:  videoCodecFromBox(t.VideoCodec),
		VideoWidth:  t.VideoWidth,
		VideoHeight: t.VideoHeight,
		VideoSPS:    t.VideoSps,
		VideoPPS:    t.VideoPps,

		AudioChannelCount: t.AudioChannelCount,
		AudioSampleSize:   t.AudioSampleSize,
		AudioSampleRate:   t.AudioSampleRate,

		MetadataContentEncoding: t.MetadataContentEncoding,
		MetadataMimeFormat:      t.MetadataMimeFormat,
	}

	if info.HasReference {
		info.ReferenceType = t.ReferenceType.String()
	}

	return info
}

// TrackCount returns the number of trak boxes found under moov (§4.20).
func (f *File) TrackCount() int { return len(f.d.Tracks) }

// Track returns the resolved view of the i'th track (§4.20). i is
// 0-based; an out-of-range index returns ErrInvalidArgument.
func (f *File) Track(i int) (TrackInfo, error) {
	if i < 0 || i >= len(f.d.Tracks) {
		return TrackInfo{}, fmt.Errorf("%w: track index %d out of range [0,%d)",
			ErrInvalidArgument, i, len(f.d.Tracks))
	}

	return trackInfoFromBox(f.d.Tracks[i]), nil
}

// Tracks returns every parsed track in file order.
func (f *File) Tracks() []TrackInfo {
	return lo.Map(f.d.Tracks, func(t *box.Track, _ int) TrackInfo { return trackInfoFromBox(t) })
}

// SampleInfo is the resolved location and timing of one sample (§4.20).
type SampleInfo struct {
	Offset   int64
	Size     uint32
	DecodeTS uint64
	IsSync   bool
}

// SampleInfo computes the file offset, size, decode timestamp, and sync
// flag for sampleIdx (0-based) within trackIdx's track (§4.20). The offset
// is the byte position in the stream returned by File.Source.
func (f *File) SampleInfo(trackIdx, sampleIdx int) (SampleInfo, error) {
	track, err := f.trackAt(trackIdx)
	if err != nil {
		return SampleInfo{}, err
	}

	s, err := track.SampleInfo(sampleIdx)
	if err != nil {
		return SampleInfo{}, wrapParseErr(err)
	}

	return SampleInfo{Offset: s.Offset, Size: s.Size, DecodeTS: s.DecodeTS, IsSync: s.IsSync}, nil
}

// SeekPrevSync returns the 0-based index, within trackIdx's track, of the
// sync sample with the largest decode timestamp not exceeding ts, or -1 if
// none qualifies (§4.20).
func (f *File) SeekPrevSync(trackIdx int, ts uint64) (int, error) {
	track, err := f.trackAt(trackIdx)
	if err != nil {
		return 0, err
	}

	return track.SeekPrevSync(ts) //nolint:wrapcheck // SeekPrevSync never errors; see internal/box.
}

func (f *File) trackAt(trackIdx int) (*box.Track, error) {
	if trackIdx < 0 || trackIdx >= len(f.d.Tracks) {
		return nil, fmt.Errorf("%w: track index %d out of range [0,%d)",
			ErrInvalidArgument, trackIdx, len(f.d.Tracks))
	}

	return f.d.Tracks[trackIdx], nil
}

// UdtaMetadataCount returns the number of iTunes-style udta/ilst tags parsed (§4.18).
func (f *File) UdtaMetadataCount() int { return len(f.d.UdtaMetadataKey) }

// UdtaMetadataAt returns the i'th udta tag's four-cc key and string value.
func (f *File) UdtaMetadataAt(i int) (string, string, error) {
	if i < 0 || i >= len(f.d.UdtaMetadataKey) {
		return "", "", fmt.Errorf("%w: udta metadata index %d out of range [0,%d)",
			ErrInvalidArgument, i, len(f.d.UdtaMetadataKey))
	}

	return f.d.UdtaMetadataKey[i].String(), f.d.UdtaMetadataValue[i], nil
}

// UdtaMetadata returns every parsed udta tag as a key/value map, keyed by
// the four-cc's string form (e.g. "©nam").
func (f *File) UdtaMetadata() map[string]string {
	keys := lo.Map(f.d.UdtaMetadataKey, func(k box.FourCC, _ int) string { return k.String() })

	return lo.SliceToMap(lo.Zip2(keys, f.d.UdtaMetadataValue),
		func(kv lo.Tuple2[string, string]) (string, string) { return kv.A, kv.B })
}

// UdtaCoverArt returns the udta `covr` cover image, if one was parsed.
func (f *File) UdtaCoverArt() (Cover, bool) {
	c := coverFromBox(f.d.UdtaCover)

	return c, c.HasCover()
}

// MetaMetadataCount returns the number of meta/keys/ilst tags parsed (§4.18).
func (f *File) MetaMetadataCount() int { return len(f.d.MetaMetadataKey) }

// MetaMetadataAt returns the i'th meta tag's key string (from the `keys`
// table) and its string value.
func (f *File) MetaMetadataAt(i int) (string, string, error) {
	if i < 0 || i >= len(f.d.MetaMetadataKey) {
		return "", "", fmt.Errorf("%w: meta metadata index %d out of range [0,%d)",
			ErrInvalidArgument, i, len(f.d.MetaMetadataKey))
	}

	return f.d.MetaMetadataKey[i], f.d.MetaMetadataValue[i], nil
}

// MetaMetadata returns every parsed meta/keys/ilst tag as a key/value map.
func (f *File) MetaMetadata() map[string]string {
	return lo.SliceToMap(lo.Zip2(f.d.MetaMetadataKey, f.d.MetaMetadataValue),
		func(kv lo.Tuple2[string, string]) (string, string) { return kv.A, kv.B })
}

// MetaCoverArt returns the meta/ilst `covr`-keyed cover image, if one was parsed.
func (f *File) MetaCoverArt() (Cover, bool) {
	c := coverFromBox(f.d.MetaCover)

	return c, c.HasCover()
}

// BoxTreeEntry is one node of the flattened, depth-first box tree, used to
// reproduce the original demuxer's indented four-cc + size debug dump.
type BoxTreeEntry struct {
	Type  string
	Size  int64
	Depth int
}

// BoxTree returns every box visited during parsing, in depth-first
// visitation order (§9 supplemented features).
func (f *File) BoxTree() []BoxTreeEntry {
	return lo.Map(f.d.Boxes, func(n box.TreeNode, _ int) BoxTreeEntry {
		return BoxTreeEntry{Type: n.Type.String(), Size: n.Size, Depth: n.Depth}
	})
}

// Location returns the udta location box's four-cc key (always "©xyz"
// when present) and its ISO 6709-ish value string (§4.18), and whether one
// was parsed at all.
func (f *File) Location() (string, string, bool) {
	if !f.d.HasLocation() {
		return "", "", false
	}

	return f.d.UdtaLocationKey.String(), f.d.UdtaLocationValue, true
}
