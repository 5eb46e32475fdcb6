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
	metaKeysMinBytes = 8
	metaKeyMinSize   = 8

	dataMinBytes = 9
	xyzMinBytes  = 4

	dataClassUTF8 = 1
	dataClassJPEG = 13
	dataClassPNG  = 14
	dataClassBMP  = 27
)

// parseMetaKeys reads the meta/keys table (§4.18): one namespaced key
// string per entry, stored 1-indexed so data's numeric tag four-cc can
// address them directly.
func (p *parser) parseMetaKeys(maxBytes int64) (int64, error) {
	if maxBytes < metaKeysMinBytes {
		return 0, fmt.Errorf("%w: keys needs %d bytes, have %d", ErrInvalidSize, metaKeysMinBytes, maxBytes)
	}

	var read int64

	if _, _, err := p.d.reader.ReadFullBoxHeader(&read); err != nil {
		return 0, err
	}

	entryCount, err := p.d.reader.ReadU32(&read)
	if err != nil {
		return 0, err
	}

	need := int64(4) + int64(entryCount)*8
	if maxBytes < need {
		return 0, fmt.Errorf("%w: keys needs %d bytes, have %d", ErrInvalidSize, need, maxBytes)
	}

	keys := make([]string, entryCount)
	values := make([]string, entryCount)

	for i := range keys {
		keySize, err := p.d.reader.ReadU32(&read)
		if err != nil {
			return 0, err
		}

		if keySize < metaKeyMinSize {
			return 0, fmt.Errorf("%w: key_size %d below minimum %d", ErrInvalidSize, keySize, metaKeyMinSize)
		}

		keySize -= metaKeyMinSize

		if _, err := p.d.reader.ReadU32(&read); err != nil { // key_namespace
			return 0, err
		}

		if maxBytes-read < int64(keySize) {
			return 0, fmt.Errorf("%w: key string needs %d bytes, have %d",
				ErrInvalidSize, keySize, maxBytes-read)
		}

		buf := make([]byte, keySize)
		if err := p.d.reader.ReadBytes(buf, &read); err != nil {
			return 0, err
		}

		keys[i] = string(buf)
	}

	p.d.MetaMetadataKey = keys
	p.d.MetaMetadataValue = values

	return read, nil
}

// parseData reads a data box (§4.18.1). tagType is the four-cc of the
// data box's immediate parent: either one of the udta tag types, a
// numeric meta key index, or the cover-art tag.
func (p *parser) parseData(tagType FourCC, maxBytes int64) (int64, error) {
	if maxBytes < dataMinBytes {
		return 0, fmt.Errorf("%w: data needs %d bytes, have %d", ErrInvalidSize, dataMinBytes, maxBytes)
	}

	var read int64

	versionAndClass, err := p.d.reader.ReadU32(&read)
	if err != nil {
		return 0, err
	}

	class := versionAndClass & 0x00FFFFFF

	if _, err := p.d.reader.ReadU32(&read); err != nil { // reserved
		return 0, err
	}

	valueLen := maxBytes - read

	switch class {
	case dataClassUTF8:
		if err := p.parseDataUTF8(tagType, valueLen, &read); err != nil {
			return 0, err
		}

	case dataClassJPEG, dataClassPNG, dataClassBMP:
		if err := p.parseDataCover(tagType, coverFormatForClass(class), valueLen, &read); err != nil {
			return 0, err
		}
	}

	return read, nil
}

func coverFormatForClass(class uint32) CoverFormat {
	switch class {
	case dataClassPNG:
		return CoverPNG
	case dataClassBMP:
		return CoverBMP
	default:
		return CoverJPEG
	}
}

func (p *parser) parseDataUTF8(tagType FourCC, valueLen int64, read *int64) error {
	if IsUdtaTagKey(tagType) {
		buf := make([]byte, valueLen)
		if err := p.d.reader.ReadBytes(buf, read); err != nil {
			return err
		}

		idx := p.d.udtaMetadataParseIdx
		if idx >= len(p.d.UdtaMetadataKey) {
			return nil
		}

		p.d.UdtaMetadataKey[idx] = tagType
		p.d.UdtaMetadataValue[idx] = string(buf)
		p.d.udtaMetadataParseIdx++

		return nil
	}

	idx := uint32(tagType)
	if idx > 0 && int(idx) <= len(p.d.MetaMetadataKey) {
		buf := make([]byte, valueLen)
		if err := p.d.reader.ReadBytes(buf, read); err != nil {
			return err
		}

		p.d.MetaMetadataValue[idx-1] = string(buf)

		return nil
	}

	return p.d.reader.Skip(valueLen, read)
}

func (p *parser) parseDataCover(tagType FourCC, format CoverFormat, valueLen int64, read *int64) error {
	offset, err := p.d.reader.Tell()
	if err != nil {
		return err
	}

	switch {
	case tagType == TypeCovr:
		p.d.UdtaCover = Cover{Offset: offset, Size: valueLen, Format: format}

	default:
		idx := uint32(tagType)
		if idx > 0 && int(idx) <= len(p.d.MetaMetadataKey) && p.d.MetaMetadataKey[idx-1] == "covr" {
			p.d.MetaCover = Cover{Offset: offset, Size: valueLen, Format: format}
		}
	}

	return p.d.reader.Skip(valueLen, read)
}

// parseLocation reads the udta location box (§4.18, `©xyz`).
func (p *parser) parseLocation(boxType FourCC, maxBytes int64) (int64, error) {
	if maxBytes < xyzMinBytes {
		return 0, fmt.Errorf("%w: %s needs %d bytes, have %d", ErrInvalidSize, boxType, xyzMinBytes, maxBytes)
	}

	var read int64

	locationSize, err := p.d.reader.ReadU16(&read)
	if err != nil {
		return 0, err
	}

	if _, err := p.d.reader.ReadU16(&read); err != nil { // language_code
		return 0, err
	}

	if maxBytes < xyzMinBytes+int64(locationSize) {
		return 0, fmt.Errorf("%w: %s needs %d bytes, have %d",
			ErrInvalidSize, boxType, xyzMinBytes+int64(locationSize), maxBytes)
	}

	buf := make([]byte, locationSize)
	if err := p.d.reader.ReadBytes(buf, &read); err != nil {
		return 0, err
	}

	p.d.UdtaLocationKey = boxType
	p.d.UdtaLocationValue = string(buf)
	p.d.hasLocation = true

	return read, nil
}
