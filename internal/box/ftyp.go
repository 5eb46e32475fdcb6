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

const ftypMinBytes = 8

// parseFtyp reads major_brand, minor_version, and a run of compatible
// brands (§4.4).
func (p *parser) parseFtyp(maxBytes int64) (int64, error) {
	if maxBytes < ftypMinBytes {
		return 0, fmt.Errorf("%w: ftyp needs %d bytes, have %d", ErrInvalidSize, ftypMinBytes, maxBytes)
	}

	var read int64

	major, err := p.d.reader.ReadU32(&read)
	if err != nil {
		return 0, err
	}

	p.d.MajorBrand = FourCC(major)

	minor, err := p.d.reader.ReadU32(&read)
	if err != nil {
		return 0, err
	}

	p.d.MinorVersion = minor

	for read+4 <= maxBytes {
		brand, err := p.d.reader.ReadU32(&read)
		if err != nil {
			return 0, err
		}

		p.d.CompatibleBrands = append(p.d.CompatibleBrands, FourCC(brand))
	}

	return read, nil
}
