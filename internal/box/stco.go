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

const chunkOffsetMinBytes = 8

// parseStco reads the 32-bit chunk offset table (§4.17).
func (p *parser) parseStco(track *Track, maxBytes int64) (int64, error) {
	if track == nil {
		return 0, fmt.Errorf("%w: stco outside a track", ErrInvalidArgument)
	}

	if maxBytes < chunkOffsetMinBytes {
		return 0, fmt.Errorf("%w: stco needs %d bytes, have %d", ErrInvalidSize, chunkOffsetMinBytes, maxBytes)
	}

	var read int64

	if _, _, err := p.d.reader.ReadFullBoxHeader(&read); err != nil {
		return 0, err
	}

	entryCount, err := p.d.reader.ReadU32(&read)
	if err != nil {
		return 0, err
	}

	need := chunkOffsetMinBytes + int64(entryCount)*4
	if maxBytes < need {
		return 0, fmt.Errorf("%w: stco needs %d bytes, have %d", ErrInvalidSize, need, maxBytes)
	}

	offsets := make([]uint64, entryCount)

	for i := range offsets {
		v, err := p.d.reader.ReadU32(&read)
		if err != nil {
			return 0, err
		}

		offsets[i] = uint64(v)
	}

	if err := track.SetChunkOffsets(offsets); err != nil {
		return 0, err
	}

	return read, nil
}

// parseCo64 reads the 64-bit chunk offset table (§4.17), used in place
// of stco for files with chunks beyond the 4 GiB mark.
func (p *parser) parseCo64(track *Track, maxBytes int64) (int64, error) {
	if track == nil {
		return 0, fmt.Errorf("%w: co64 outside a track", ErrInvalidArgument)
	}

	if maxBytes < chunkOffsetMinBytes {
		return 0, fmt.Errorf("%w: co64 needs %d bytes, have %d", ErrInvalidSize, chunkOffsetMinBytes, maxBytes)
	}

	var read int64

	if _, _, err := p.d.reader.ReadFullBoxHeader(&read); err != nil {
		return 0, err
	}

	entryCount, err := p.d.reader.ReadU32(&read)
	if err != nil {
		return 0, err
	}

	need := chunkOffsetMinBytes + int64(entryCount)*8
	if maxBytes < need {
		return 0, fmt.Errorf("%w: co64 needs %d bytes, have %d", ErrInvalidSize, need, maxBytes)
	}

	offsets := make([]uint64, entryCount)

	for i := range offsets {
		v, err := p.d.reader.ReadU64(&read)
		if err != nil {
			return 0, err
		}

		offsets[i] = v
	}

	if err := track.SetChunkOffsets(offsets); err != nil {
		return 0, err
	}

	return read, nil
}
