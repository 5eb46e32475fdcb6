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
	tkhdMinBytesV0 = 21 * 4
	tkhdMinBytesV1 = 24 * 4
)

// parseTkhd reads the track header box (§4.6): it stores the track ID and
// the integer part of the 16.16 width/height into the track, and reads
// past the times, duration, layer/alternate_group/volume and matrix
// without storing them.
func (p *parser) parseTkhd(track *Track, maxBytes int64) (int64, error) {
	if track == nil {
		return 0, fmt.Errorf("%w: tkhd outside a track", ErrInvalidArgument)
	}

	if maxBytes < tkhdMinBytesV0 {
		return 0, fmt.Errorf("%w: tkhd needs %d bytes, have %d", ErrInvalidSize, tkhdMinBytesV0, maxBytes)
	}

	var read int64

	version, _, err := p.d.reader.ReadFullBoxHeader(&read)
	if err != nil {
		return 0, err
	}

	if version == 1 {
		if maxBytes < tkhdMinBytesV1 {
			return 0, fmt.Errorf("%w: tkhd v1 needs %d bytes, have %d", ErrInvalidSize, tkhdMinBytesV1, maxBytes)
		}

		if _, err := p.d.reader.ReadU64(&read); err != nil { // creation_time
			return 0, err
		}

		if _, err := p.d.reader.ReadU64(&read); err != nil { // modification_time
			return 0, err
		}

		id, err := p.d.reader.ReadU32(&read)
		if err != nil {
			return 0, err
		}

		track.ID = id

		if _, err := p.d.reader.ReadU32(&read); err != nil { // reserved
			return 0, err
		}

		if _, err := p.d.reader.ReadU64(&read); err != nil { // duration
			return 0, err
		}
	} else {
		if _, err := p.d.reader.ReadU32(&read); err != nil { // creation_time
			return 0, err
		}

		if _, err := p.d.reader.ReadU32(&read); err != nil { // modification_time
			return 0, err
		}

		id, err := p.d.reader.ReadU32(&read)
		if err != nil {
			return 0, err
		}

		track.ID = id

		if _, err := p.d.reader.ReadU32(&read); err != nil { // reserved
			return 0, err
		}

		if _, err := p.d.reader.ReadU32(&read); err != nil { // duration
			return 0, err
		}
	}

	// reserved x2, layer+alternate_group, volume+reserved
	for i := 0; i < 4; i++ {
		if _, err := p.d.reader.ReadU32(&read); err != nil {
			return 0, err
		}
	}

	// matrix
	for i := 0; i < 9; i++ {
		if _, err := p.d.reader.ReadU32(&read); err != nil {
			return 0, err
		}
	}

	width, err := p.d.reader.ReadU32(&read)
	if err != nil {
		return 0, err
	}

	height, err := p.d.reader.ReadU32(&read)
	if err != nil {
		return 0, err
	}

	track.VideoWidth = uint16(width >> 16)
	track.VideoHeight = uint16(height >> 16)

	return read, nil
}
