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

const stszMinBytes = 12

// parseStsz reads the sample size table (§4.15). A nonzero sample_size
// field means every sample shares that size and no per-sample table
// follows; Track.SampleSizeAt handles both shapes.
func (p *parser) parseStsz(track *Track, maxBytes int64) (int64, error) {
	if track == nil {
		return 0, fmt.Errorf("%w: stsz outside a track", ErrInvalidArgument)
	}

	if maxBytes < stszMinBytes {
		return 0, fmt.Errorf("%w: stsz needs %d bytes, have %d", ErrInvalidSize, stszMinBytes, maxBytes)
	}

	var read int64

	if _, _, err := p.d.reader.ReadFullBoxHeader(&read); err != nil {
		return 0, err
	}

	sampleSize, err := p.d.reader.ReadU32(&read)
	if err != nil {
		return 0, err
	}

	sampleCount, err := p.d.reader.ReadU32(&read)
	if err != nil {
		return 0, err
	}

	var sizes []uint32

	if sampleSize == 0 {
		need := stszMinBytes + int64(sampleCount)*4
		if maxBytes < need {
			return 0, fmt.Errorf("%w: stsz needs %d bytes, have %d", ErrInvalidSize, need, maxBytes)
		}

		sizes = make([]uint32, sampleCount)

		for i := range sizes {
			v, err := p.d.reader.ReadU32(&read)
			if err != nil {
				return 0, err
			}

			sizes[i] = v
		}
	}

	if err := track.SetSampleSizes(sampleSize, sizes, sampleCount); err != nil {
		return 0, err
	}

	return read, nil
}
