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

import (
	"fmt"

	"github.com/icza/bitio"
)

const avccMinBytes = 6

// parseAvcc reads an AVCDecoderConfigurationRecord (§4.12): the packed
// length_size/sps_count byte, then one length-prefixed entry per SPS
// and PPS. Only the first non-empty SPS and the first non-empty PPS
// are retained; the rest are skipped over.
func (p *parser) parseAvcc(track *Track, maxBytes int64) (int64, error) {
	minBytes := int64(avccMinBytes)
	if maxBytes < minBytes {
		return 0, fmt.Errorf("%w: avcC needs %d bytes, have %d", ErrInvalidSize, minBytes, maxBytes)
	}

	var read int64

	if _, err := p.d.reader.ReadU32(&read); err != nil { // version/profile/profile_compat/level
		return 0, err
	}

	lenSizeAndSps, err := p.d.reader.ReadU16(&read)
	if err != nil {
		return 0, err
	}

	br := bitio.NewReader(newSliceReader([]byte{byte(lenSizeAndSps >> 8), byte(lenSizeAndSps)}))

	if _, err := br.ReadBits(6); err != nil { // reserved
		return 0, fmt.Errorf("%w: avcC length_size reserved bits: %w", ErrIO, err)
	}

	lengthSizeField, err := br.ReadBits(2)
	if err != nil {
		return 0, fmt.Errorf("%w: avcC length_size: %w", ErrIO, err)
	}

	_ = lengthSizeField // length_size itself is not surfaced by the query API

	if _, err := br.ReadBits(3); err != nil { // reserved
		return 0, fmt.Errorf("%w: avcC sps_count reserved bits: %w", ErrIO, err)
	}

	spsCountBits, err := br.ReadBits(5)
	if err != nil {
		return 0, fmt.Errorf("%w: avcC sps_count: %w", ErrIO, err)
	}

	spsCount := int(spsCountBits)

	minBytes += 2 * int64(spsCount)
	if maxBytes < minBytes {
		return 0, fmt.Errorf("%w: avcC needs %d bytes, have %d", ErrInvalidSize, minBytes, maxBytes)
	}

	for i := 0; i < spsCount; i++ {
		spsLen, err := p.d.reader.ReadU16(&read)
		if err != nil {
			return 0, err
		}

		minBytes += int64(spsLen)
		if maxBytes < minBytes {
			return 0, fmt.Errorf("%w: avcC needs %d bytes, have %d", ErrInvalidSize, minBytes, maxBytes)
		}

		if track.VideoSps == nil && spsLen > 0 {
			buf := make([]byte, spsLen)
			if err := p.d.reader.ReadBytes(buf, &read); err != nil {
				return 0, err
			}

			track.VideoSps = buf
		} else if err := p.d.reader.Skip(int64(spsLen), &read); err != nil {
			return 0, err
		}
	}

	minBytes++
	if maxBytes < minBytes {
		return 0, fmt.Errorf("%w: avcC needs %d bytes, have %d", ErrInvalidSize, minBytes, maxBytes)
	}

	ppsCount, err := p.d.reader.ReadU8(&read)
	if err != nil {
		return 0, err
	}

	minBytes += 2 * int64(ppsCount)
	if maxBytes < minBytes {
		return 0, fmt.Errorf("%w: avcC needs %d bytes, have %d", ErrInvalidSize, minBytes, maxBytes)
	}

	for i := 0; i < int(ppsCount); i++ {
		ppsLen, err := p.d.reader.ReadU16(&read)
		if err != nil {
			return 0, err
		}

		minBytes += int64(ppsLen)
		if maxBytes < minBytes {
			return 0, fmt.Errorf("%w: avcC needs %d bytes, have %d", ErrInvalidSize, minBytes, maxBytes)
		}

		if track.VideoPps == nil && ppsLen > 0 {
			buf := make([]byte, ppsLen)
			if err := p.d.reader.ReadBytes(buf, &read); err != nil {
				return 0, err
			}

			track.VideoPps = buf
		} else if err := p.d.reader.Skip(int64(ppsLen), &read); err != nil {
			return 0, err
		}
	}

	return read, nil
}
