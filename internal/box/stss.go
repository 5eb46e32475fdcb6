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

const stssMinBytes = 8

// parseStss reads the sync sample table (§4.14). Absence of this box
// entirely (never calling this function) means every sample is sync,
// per Track.IsSync.
func (p *parser) parseStss(track *Track, maxBytes int64) (int64, error) {
	if track == nil {
		return 0, fmt.Errorf("%w: stss outside a track", ErrInvalidArgument)
	}

	if maxBytes < stssMinBytes {
		return 0, fmt.Errorf("%w: stss needs %d bytes, have %d", ErrInvalidSize, stssMinBytes, maxBytes)
	}

	var read int64

	if _, _, err := p.d.reader.ReadFullBoxHeader(&read); err != nil {
		return 0, err
	}

	entryCount, err := p.d.reader.ReadU32(&read)
	if err != nil {
		return 0, err
	}

	need := stssMinBytes + int64(entryCount)*4
	if maxBytes < need {
		return 0, fmt.Errorf("%w: stss needs %d bytes, have %d", ErrInvalidSize, need, maxBytes)
	}

	samples := make([]uint32, entryCount)

	for i := range samples {
		v, err := p.d.reader.ReadU32(&read)
		if err != nil {
			return 0, err
		}

		samples[i] = v
	}

	if err := track.SetSyncSamples(samples); err != nil {
		return 0, err
	}

	return read, nil
}
