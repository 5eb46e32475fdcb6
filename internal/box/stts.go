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

const sttsMinBytes = 8

// parseStts reads the time-to-sample table (§4.13). Entries with
// sample_count == 0 are kept as-is: rejecting them outright would be
// stricter than the table this is grounded on, which only bounds-checks
// maxBytes against the declared entry_count (see the Open Questions note
// on stts validation strictness).
func (p *parser) parseStts(track *Track, maxBytes int64) (int64, error) {
	if track == nil {
		return 0, fmt.Errorf("%w: stts outside a track", ErrInvalidArgument)
	}

	if maxBytes < sttsMinBytes {
		return 0, fmt.Errorf("%w: stts needs %d bytes, have %d", ErrInvalidSize, sttsMinBytes, maxBytes)
	}

	var read int64

	if _, _, err := p.d.reader.ReadFullBoxHeader(&read); err != nil {
		return 0, err
	}

	entryCount, err := p.d.reader.ReadU32(&read)
	if err != nil {
		return 0, err
	}

	need := sttsMinBytes + int64(entryCount)*8
	if maxBytes < need {
		return 0, fmt.Errorf("%w: stts needs %d bytes, have %d", ErrInvalidSize, need, maxBytes)
	}

	entries := make([]SttsEntry, entryCount)

	for i := range entries {
		count, err := p.d.reader.ReadU32(&read)
		if err != nil {
			return 0, err
		}

		delta, err := p.d.reader.ReadU32(&read)
		if err != nil {
			return 0, err
		}

		entries[i] = SttsEntry{SampleCount: count, SampleDelta: delta}
	}

	if err := track.SetTimeToSample(entries); err != nil {
		return 0, err
	}

	return read, nil
}
