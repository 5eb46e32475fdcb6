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

	"golang.org/x/text/language"
)

const (
	mdhdMinBytesV0 = 6 * 4
	mdhdMinBytesV1 = 9 * 4
)

// parseMdhd reads the media header box (§4.8): per-track timescale,
// duration and the packed ISO-639-2/T language code.
func (p *parser) parseMdhd(track *Track, maxBytes int64) (int64, error) {
	if track == nil {
		return 0, fmt.Errorf("%w: mdhd outside a track", ErrInvalidArgument)
	}

	if maxBytes < mdhdMinBytesV0 {
		return 0, fmt.Errorf("%w: mdhd needs %d bytes, have %d", ErrInvalidSize, mdhdMinBytesV0, maxBytes)
	}

	var read int64

	version, _, err := p.d.reader.ReadFullBoxHeader(&read)
	if err != nil {
		return 0, err
	}

	if version == 1 {
		if maxBytes < mdhdMinBytesV1 {
			return 0, fmt.Errorf("%w: mdhd v1 needs %d bytes, have %d", ErrInvalidSize, mdhdMinBytesV1, maxBytes)
		}

		ct, err := p.d.reader.ReadU64(&read)
		if err != nil {
			return 0, err
		}

		track.CreationTime = ct

		mt, err := p.d.reader.ReadU64(&read)
		if err != nil {
			return 0, err
		}

		track.ModificationTime = mt

		ts, err := p.d.reader.ReadU32(&read)
		if err != nil {
			return 0, err
		}

		track.Timescale = ts

		dur, err := p.d.reader.ReadU64(&read)
		if err != nil {
			return 0, err
		}

		track.Duration = dur
	} else {
		ct, err := p.d.reader.ReadU32(&read)
		if err != nil {
			return 0, err
		}

		track.CreationTime = uint64(ct)

		mt, err := p.d.reader.ReadU32(&read)
		if err != nil {
			return 0, err
		}

		track.ModificationTime = uint64(mt)

		ts, err := p.d.reader.ReadU32(&read)
		if err != nil {
			return 0, err
		}

		track.Timescale = ts

		dur, err := p.d.reader.ReadU32(&read)
		if err != nil {
			return 0, err
		}

		track.Duration = uint64(dur)
	}

	langPacked, err := p.d.reader.ReadU32(&read)
	if err != nil {
		return 0, err
	}

	track.Language = decodePackedLanguage(uint16(langPacked >> 16))

	return read, nil
}

// decodePackedLanguage unpacks the three 5-bit (letter - 0x60) letters
// of ISO/IEC 14496-12's packed language code into a BCP-47 tag. An
// all-zero or otherwise non-alphabetic code yields language.Und.
func decodePackedLanguage(packed uint16) language.Tag {
	packed &= 0x7FFF

	var letters [3]byte

	for i := 2; i >= 0; i-- {
		c := byte(packed&0x1F) + 0x60
		letters[i] = c
		packed >>= 5
	}

	for _, c := range letters {
		if c < 'a' || c > 'z' {
			return language.Und
		}
	}

	tag, err := language.ParseBase(string(letters[:]))
	if err != nil {
		return language.Und
	}

	return language.Make(tag.String())
}
