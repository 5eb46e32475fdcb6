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

import "fmt"

// SampleInfo is the resolved location and timing of one sample (§4.20).
type SampleInfo struct {
	Offset    int64
	Size      uint32
	DecodeTS  uint64
	IsSync    bool
}

// SampleInfo computes the file offset, size, decode timestamp and sync
// flag for the 0-based sample index by joining the stsc, chunk-offset
// and stts tables.
func (t *Track) SampleInfo(index int) (SampleInfo, error) {
	if index < 0 || uint32(index) >= t.SampleCount {
		return SampleInfo{}, fmt.Errorf("%w: sample index %d out of range [0,%d)",
			ErrInvalidArgument, index, t.SampleCount)
	}

	if !t.hasChunkBox {
		return SampleInfo{}, ErrNoChunkOffsetBox
	}

	chunkIdx, firstSampleOfChunk, samplesPerChunk, err := t.chunkForSample(index)
	if err != nil {
		return SampleInfo{}, err
	}

	if chunkIdx >= len(t.ChunkOffsets) {
		return SampleInfo{}, fmt.Errorf("%w: chunk index %d exceeds chunk offset table length %d",
			ErrInvalidSize, chunkIdx, len(t.ChunkOffsets))
	}

	offset := int64(t.ChunkOffsets[chunkIdx])

	for s := firstSampleOfChunk; s < index; s++ {
		offset += int64(t.SampleSizeAt(s))
	}

	_ = samplesPerChunk

	ts := t.decodeTimestamp(index)

	return SampleInfo{
		Offset:   offset,
		Size:     t.SampleSizeAt(index),
		DecodeTS: ts,
		IsSync:   t.IsSync(uint32(index) + 1),
	}, nil
}

// chunkForSample resolves the 0-based sample index to its (0-based)
// chunk index, the 0-based index of the chunk's first sample, and the
// chunk's sample count, by scanning the stsc run-length table. Runs of
// chunks are scanned linearly; the number of runs is small in practice
// (one per contiguous chunking pattern change), unlike the number of
// samples or chunks themselves.
func (t *Track) chunkForSample(index int) (chunkIdx, firstSampleOfChunk, samplesPerChunk int, err error) {
	if len(t.SampleToChunk) == 0 {
		return 0, 0, 0, fmt.Errorf("%w: empty sample-to-chunk table", ErrInvalidSize)
	}

	sampleCursor := 0
	chunkCursor := 0

	for run := 0; run < len(t.SampleToChunk); run++ {
		entry := t.SampleToChunk[run]

		var chunkCountInRun int
		if run+1 < len(t.SampleToChunk) {
			chunkCountInRun = int(t.SampleToChunk[run+1].FirstChunk - entry.FirstChunk)
		} else {
			chunkCountInRun = len(t.ChunkOffsets) - (int(entry.FirstChunk) - 1)
		}

		samplesInRun := chunkCountInRun * int(entry.SamplesPerChunk)

		if index < sampleCursor+samplesInRun {
			offsetInRun := index - sampleCursor
			chunkOffsetInRun := offsetInRun / int(entry.SamplesPerChunk)

			return chunkCursor + chunkOffsetInRun,
				index - offsetInRun%int(entry.SamplesPerChunk),
				int(entry.SamplesPerChunk),
				nil
		}

		sampleCursor += samplesInRun
		chunkCursor += chunkCountInRun
	}

	return 0, 0, 0, fmt.Errorf("%w: sample index %d not covered by sample-to-chunk table", ErrInvalidSize, index)
}

// decodeTimestamp walks the run-length stts table, prefix-summing
// durations until the run containing index is found.
func (t *Track) decodeTimestamp(index int) uint64 {
	var ts uint64

	remaining := index

	for _, run := range t.TimeToSample {
		if remaining < int(run.SampleCount) {
			return ts + uint64(remaining)*uint64(run.SampleDelta)
		}

		remaining -= int(run.SampleCount)
		ts += uint64(run.SampleCount) * uint64(run.SampleDelta)
	}

	return ts
}

// SeekPrevSync returns the 0-based index of the sample with the largest
// decode timestamp not exceeding ts that is also a sync sample, or -1
// if none qualifies (§4.20).
func (t *Track) SeekPrevSync(ts uint64) (int, error) {
	best := -1

	for i := 0; i < int(t.SampleCount); i++ {
		if t.decodeTimestamp(i) > ts {
			break
		}

		if t.IsSync(uint32(i) + 1) {
			best = i
		}
	}

	return best, nil
}
