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

const stscMinBytes = 8

// parseStsc reads the sample-to-chunk table (§4.16): a run-length
// encoding of how many samples live in each chunk, starting at
// FirstChunk until the next entry's FirstChunk.
func (p *parser) parseStsc(track *Track, maxBytes int64) (int64, error) {
	if track == nil {
		return 0, fmt.Errorf("%w: stsc outside a track", ErrInvalidArgument)
	}

	if maxBytes < stscMinBytes {
		return 0, fmt.Errorf("%w: stsc needs %d bytes, have %d", ErrInvalidSize, stscMinBytes, maxBytes)
	}

	var read int64

	if _, _, err := p.d.reader.ReadFullBoxHeader(&read); err != nil {
		return 0, err
	}

	entryCount, err := p.d.reader.ReadU32(&read)
	if err != nil {
		return 0, err
	}

	need := stscMinBytes + int64(entryCount)*12
	if maxBytes < need {
		return 0, fmt.Errorf("%w: stsc needs %d bytes, have %d", ErrInvalidSize, need, maxBytes)
	}

	entries := make([]StscEntry, entryCount)

	for i := range entries {
		firstChunk, err := p.d.reader.ReadU32(&read)
		if err != nil {
			return 0, err
		}

		samplesPerChunk, err := p.d.reader.ReadU32(&read)
		if err != nil {
			return 0, err
		}

		sampleDescIdx, err := p.d.reader.ReadU32(&read)
		if err != nil {
			return 0, err
		}

		entries[i] = StscEntry{
			FirstChunk:           firstChunk,
			SamplesPerChunk:      samplesPerChunk,
			SampleDescriptionIdx: sampleDescIdx,
		}
	}

	if err := track.SetSampleToChunk(entries); err != nil {
		return 0, err
	}

	return read, nil
}
