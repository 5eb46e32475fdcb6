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

const (
	mvhdMinBytesV0 = 25 * 4
	mvhdMinBytesV1 = 28 * 4
)

// parseMvhd reads the movie header box (§4.5): creation/modification
// time, timescale and duration (widths depend on version), then skips
// rate, volume, matrix, pre_defined and next_track_ID.
func (p *parser) parseMvhd(maxBytes int64) (int64, error) {
	if maxBytes < mvhdMinBytesV0 {
		return 0, fmt.Errorf("%w: mvhd needs %d bytes, have %d", ErrInvalidSize, mvhdMinBytesV0, maxBytes)
	}

	var read int64

	version, _, err := p.d.reader.ReadFullBoxHeader(&read)
	if err != nil {
		return 0, err
	}

	if version == 1 {
		if maxBytes < mvhdMinBytesV1 {
			return 0, fmt.Errorf("%w: mvhd v1 needs %d bytes, have %d", ErrInvalidSize, mvhdMinBytesV1, maxBytes)
		}

		ct, err := p.d.reader.ReadU64(&read)
		if err != nil {
			return 0, err
		}

		p.d.CreationTime = ct

		mt, err := p.d.reader.ReadU64(&read)
		if err != nil {
			return 0, err
		}

		p.d.ModificationTime = mt

		ts, err := p.d.reader.ReadU32(&read)
		if err != nil {
			return 0, err
		}

		p.d.Timescale = ts

		dur, err := p.d.reader.ReadU64(&read)
		if err != nil {
			return 0, err
		}

		p.d.Duration = dur
	} else {
		ct, err := p.d.reader.ReadU32(&read)
		if err != nil {
			return 0, err
		}

		p.d.CreationTime = uint64(ct)

		mt, err := p.d.reader.ReadU32(&read)
		if err != nil {
			return 0, err
		}

		p.d.ModificationTime = uint64(mt)

		ts, err := p.d.reader.ReadU32(&read)
		if err != nil {
			return 0, err
		}

		p.d.Timescale = ts

		dur, err := p.d.reader.ReadU32(&read)
		if err != nil {
			return 0, err
		}

		p.d.Duration = uint64(dur)
	}

	// rate, volume+reserved, reserved x2
	for i := 0; i < 4; i++ {
		if _, err := p.d.reader.ReadU32(&read); err != nil {
			return 0, err
		}
	}

	// matrix (9) + pre_defined (6)
	for i := 0; i < 15; i++ {
		if _, err := p.d.reader.ReadU32(&read); err != nil {
			return 0, err
		}
	}

	// next_track_ID
	if _, err := p.d.reader.ReadU32(&read); err != nil {
		return 0, err
	}

	return read, nil
}
