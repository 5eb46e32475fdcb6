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

package box

import "golang.org/x/text/language"

// TrackType is the mapped handler-type enum (§4.9).
type TrackType int

// Track handler types.
const (
	TrackUnknown TrackType = iota
	TrackVideo
	TrackAudio
	TrackHint
	TrackMetadata
	TrackText
)

// VideoCodec identifies the codec found in a video track's stsd.
type VideoCodec int

// Recognized video codecs.
const (
	VideoCodecNone VideoCodec = iota
	VideoCodecAVC
)

// SttsEntry is one run of the time-to-sample table: sampleCount samples
// each separated by sampleDelta ticks.
type SttsEntry struct {
	SampleCount uint32
	SampleDelta uint32
}

// StscEntry is one run of the sample-to-chunk table, applying from
// FirstChunk (1-based) until the next entry's FirstChunk.
type StscEntry struct {
	FirstChunk            uint32
	SamplesPerChunk       uint32
	SampleDescriptionIdx  uint32
}

// Track is one record per trak box (§3). All slice fields are owned by
// the track and are set exactly once; a second occurrence of the same
// sample-table box under the same track is ErrAlreadyDefined.
type Track struct {
	ID       uint32
	Type     TrackType
	Timescale uint32
	Duration  uint64

	CreationTime     uint64
	ModificationTime uint64

	Language language.Tag

	ReferenceType    FourCC
	ReferenceTrackID uint32
	hasReference     bool

	VideoCodec  VideoCodec
	VideoSps    []byte
	VideoPps    []byte
	VideoWidth  uint16
	VideoHeight uint16

	AudioChannelCount uint16
	AudioSampleSize   uint16
	AudioSampleRate   uint32 // raw 16.16 fixed point, as on the wire

	MetadataContentEncoding string
	MetadataMimeFormat      string

	// Sample tables (§3). nil slices/zero values mean "not yet set";
	// hasX booleans distinguish "not set" from "set to the zero value"
	// for the set-once invariant.
	TimeToSample []SttsEntry
	hasStts      bool

	SyncSamples []uint32 // 1-based, strictly increasing; nil means "every sample is sync"
	hasStss     bool

	SampleSizeDefault uint32 // 0 means per-sample sizes in SampleSizes
	SampleSizes       []uint32
	SampleCount       uint32
	hasStsz           bool

	SampleToChunk []StscEntry
	hasStsc       bool

	ChunkOffsets []uint64
	hasChunkBox  bool // true once either stco or co64 has been seen
}

// SetTimeToSample installs the stts table, failing if already set.
func (t *Track) SetTimeToSample(entries []SttsEntry) error {
	if t.hasStts {
		return ErrAlreadyDefined
	}

	t.TimeToSample = entries
	t.hasStts = true

	return nil
}

// SetSyncSamples installs the stss table, failing if already set.
func (t *Track) SetSyncSamples(samples []uint32) error {
	if t.hasStss {
		return ErrAlreadyDefined
	}

	t.SyncSamples = samples
	t.hasStss = true

	return nil
}

// SetSampleSizes installs the stsz table, failing if already set.
func (t *Track) SetSampleSizes(defaultSize uint32, sizes []uint32, count uint32) error {
	if t.hasStsz {
		return ErrAlreadyDefined
	}

	t.SampleSizeDefault = defaultSize
	t.SampleSizes = sizes
	t.SampleCount = count
	t.hasStsz = true

	return nil
}

// SetSampleToChunk installs the stsc table, failing if already set.
func (t *Track) SetSampleToChunk(entries []StscEntry) error {
	if t.hasStsc {
		return ErrAlreadyDefined
	}

	t.SampleToChunk = entries
	t.hasStsc = true

	return nil
}

// SetChunkOffsets installs the chunk-offset table from either stco or
// co64, failing if either has already been seen for this track.
func (t *Track) SetChunkOffsets(offsets []uint64) error {
	if t.hasChunkBox {
		return ErrAlreadyDefined
	}

	t.ChunkOffsets = offsets
	t.hasChunkBox = true

	return nil
}

// SetReference installs the tref reference type/track id, failing if
// already set (the original source keeps only the first tref entry by
// design; a second tref box on the same track is still an error here
// since it is a set-once sample-table-adjacent descriptor).
func (t *Track) SetReference(refType FourCC, refTrackID uint32) error {
	if t.hasReference {
		return ErrAlreadyDefined
	}

	t.ReferenceType = refType
	t.ReferenceTrackID = refTrackID
	t.hasReference = true

	return nil
}

// HasReference reports whether a tref box was parsed for this track.
func (t *Track) HasReference() bool { return t.hasReference }

// IsSync reports whether the 1-based sample index is a sync sample.
// Absent stss means every sample is sync (§4.14, §8).
func (t *Track) IsSync(sampleOneBased uint32) bool {
	if !t.hasStss {
		return true
	}

	// SyncSamples is sorted ascending; binary search.
	lo, hi := 0, len(t.SyncSamples)
	for lo < hi {
		mid := (lo + hi) / 2
		if t.SyncSamples[mid] < sampleOneBased {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	return lo < len(t.SyncSamples) && t.SyncSamples[lo] == sampleOneBased
}

// SampleSizeAt returns the size in bytes of the 0-based sample index.
func (t *Track) SampleSizeAt(index int) uint32 {
	if t.SampleSizeDefault != 0 {
		return t.SampleSizeDefault
	}

	if index < 0 || index >= len(t.SampleSizes) {
		return 0
	}

	return t.SampleSizes[index]
}
