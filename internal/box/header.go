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

	"github.com/google/uuid"
)

// smallHeaderSize is the size of a normal 32-bit-size + four-cc header.
const smallHeaderSize = 8

// largeHeaderSize adds the 8-byte extended size field (size == 1).
const largeHeaderSize = 16

// uuidExtraSize is the 16-byte extended type that follows the header
// when Type == uuid.
const uuidExtraSize = 16

// Header is a decoded box header: type, payload size, and header length
// in bytes (needed by the caller to compute the payload budget and to
// seek to the next sibling). ExtendedType is set only for type == "uuid".
type Header struct {
	Type         FourCC
	PayloadSize  int64
	HeaderBytes  int64
	ExtendedType uuid.UUID
	HasExtended  bool
	// ExtendsToEOF is true when the on-wire size field was 0: the box
	// extends to the end of the stream. Only legal at the outermost level.
	ExtendsToEOF bool
}

// ReadHeader decodes one box header per §4.2. maxBytes is the payload
// budget available to this header (the remaining bytes of the parent);
// it must be at least 8. remaining, when ExtendsToEOF is true, supplies
// the number of bytes left in the stream so PayloadSize can be computed.
func ReadHeader(r *Reader, maxBytes int64, remaining int64) (Header, int64, error) {
	if maxBytes < smallHeaderSize {
		return Header{}, 0, fmt.Errorf("%w: %d bytes left, need %d for header",
			ErrInvalidSize, maxBytes, smallHeaderSize)
	}

	var read int64

	shortSize, err := r.ReadU32(&read)
	if err != nil {
		return Header{}, 0, err
	}

	typeVal, err := r.ReadU32(&read)
	if err != nil {
		return Header{}, 0, err
	}

	hdr := Header{Type: FourCC(typeVal), HeaderBytes: smallHeaderSize}

	var realSize int64

	switch shortSize {
	case 0:
		hdr.ExtendsToEOF = true
		realSize = remaining

	case 1:
		if maxBytes < largeHeaderSize {
			return Header{}, 0, fmt.Errorf("%w: large-size box needs %d bytes, have %d",
				ErrInvalidSize, largeHeaderSize, maxBytes)
		}

		large, err := r.ReadU64(&read)
		if err != nil {
			return Header{}, 0, err
		}

		hdr.HeaderBytes = largeHeaderSize
		realSize = int64(large)

	default:
		realSize = int64(shortSize)
	}

	if hdr.Type == TypeUUID {
		if maxBytes < hdr.HeaderBytes+uuidExtraSize {
			return Header{}, 0, fmt.Errorf("%w: uuid box needs %d more bytes",
				ErrInvalidSize, uuidExtraSize)
		}

		var raw [uuidExtraSize]byte
		if err := r.ReadBytes(raw[:], &read); err != nil {
			return Header{}, 0, err
		}

		hdr.HeaderBytes += uuidExtraSize
		hdr.HasExtended = true

		parsed, err := uuid.FromBytes(raw[:])
		if err != nil {
			return Header{}, 0, fmt.Errorf("%w: malformed uuid extended type: %w", ErrInvalidSize, err)
		}

		hdr.ExtendedType = parsed
	}

	if !hdr.ExtendsToEOF {
		if realSize < hdr.HeaderBytes {
			return Header{}, 0, fmt.Errorf("%w: box size %d smaller than header %d",
				ErrInvalidSize, realSize, hdr.HeaderBytes)
		}

		if realSize > maxBytes {
			return Header{}, 0, fmt.Errorf("%w: box size %d exceeds remaining budget %d",
				ErrInvalidSize, realSize, maxBytes)
		}
	}

	hdr.PayloadSize = realSize - hdr.HeaderBytes

	return hdr, realSize, nil
}
