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

// Minimum payload sizes for the four media handler header boxes
// (§4.10): vmhd carries graphicsmode+opcolor, smhd a balance word,
// hmhd PDU/bitrate fields, nmhd nothing beyond version+flags.
const (
	vmhdMinBytes = 3 * 4
	smhdMinBytes = 2 * 4
	hmhdMinBytes = 5 * 4
	nmhdMinBytes = 1 * 4
)

// parseMediaHeaderStub validates and consumes the version+flags word
// common to vmhd/smhd/hmhd/nmhd. None of these carry data the query
// surface exposes — they exist only to assert the media's kind, already
// known from hdlr — so beyond the minimum-size check the remaining
// fields are left for the generic sibling-seek to skip.
func (p *parser) parseMediaHeaderStub(boxType FourCC, maxBytes int64) (int64, error) {
	min, ok := mediaHeaderMinBytes(boxType)
	if !ok {
		return 0, fmt.Errorf("%w: unrecognized media header box", ErrInvalidArgument)
	}

	if maxBytes < min {
		return 0, fmt.Errorf("%w: %s needs %d bytes, have %d", ErrInvalidSize, boxType, min, maxBytes)
	}

	var read int64

	if _, _, err := p.d.reader.ReadFullBoxHeader(&read); err != nil {
		return 0, err
	}

	return read, nil
}

func mediaHeaderMinBytes(t FourCC) (int64, bool) {
	switch t {
	case TypeVmhd:
		return vmhdMinBytes, true
	case TypeSmhd:
		return smhdMinBytes, true
	case TypeHmhd:
		return hmhdMinBytes, true
	case TypeNmhd:
		return nmhdMinBytes, true
	default:
		return 0, false
	}
}
