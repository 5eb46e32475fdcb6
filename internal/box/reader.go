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
	"encoding/binary"
	"fmt"
	"io"

	"github.com/icza/bitio"
)

// Reader is a thin big-endian reader over a seekable byte source. Every
// method advances n, the caller-maintained "bytes read in this box"
// counter, by the number of bytes consumed — mirroring the original
// demuxer's MP4_READ_* / MP4_SKIP macros, which thread a single running
// counter through every leaf parser by reference.
type Reader struct {
	src io.ReadSeeker
	buf [8]byte
}

// NewReader wraps a seekable byte source.
func NewReader(src io.ReadSeeker) *Reader {
	return &Reader{src: src}
}

// Tell returns the current absolute position.
func (r *Reader) Tell() (int64, error) {
	pos, err := r.src.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("%w: tell: %w", ErrIO, err)
	}

	return pos, nil
}

// SeekCur seeks relative to the current position by delta, which may be
// negative.
func (r *Reader) SeekCur(delta int64) error {
	if _, err := r.src.Seek(delta, io.SeekCurrent); err != nil {
		return fmt.Errorf("%w: seek %d: %w", ErrIO, delta, err)
	}

	return nil
}

// Skip advances past n payload bytes not otherwise consumed, incrementing
// *read by n.
func (r *Reader) Skip(n int64, read *int64) error {
	if n == 0 {
		return nil
	}

	if err := r.SeekCur(n); err != nil {
		return err
	}

	*read += n

	return nil
}

// ReadU8 reads one byte, advancing *read by 1.
func (r *Reader) ReadU8(read *int64) (uint8, error) {
	if _, err := io.ReadFull(r.src, r.buf[:1]); err != nil {
		return 0, fmt.Errorf("%w: read u8: %w", ErrIO, err)
	}

	*read++

	return r.buf[0], nil
}

// ReadU16 reads a big-endian uint16, advancing *read by 2.
func (r *Reader) ReadU16(read *int64) (uint16, error) {
	if _, err := io.ReadFull(r.src, r.buf[:2]); err != nil {
		return 0, fmt.Errorf("%w: read u16: %w", ErrIO, err)
	}

	*read += 2

	return binary.BigEndian.Uint16(r.buf[:2]), nil
}

// ReadU32 reads a big-endian uint32, advancing *read by 4.
func (r *Reader) ReadU32(read *int64) (uint32, error) {
	if _, err := io.ReadFull(r.src, r.buf[:4]); err != nil {
		return 0, fmt.Errorf("%w: read u32: %w", ErrIO, err)
	}

	*read += 4

	return binary.BigEndian.Uint32(r.buf[:4]), nil
}

// ReadU64 reads a big-endian uint64, advancing *read by 8.
func (r *Reader) ReadU64(read *int64) (uint64, error) {
	if _, err := io.ReadFull(r.src, r.buf[:8]); err != nil {
		return 0, fmt.Errorf("%w: read u64: %w", ErrIO, err)
	}

	*read += 8

	return binary.BigEndian.Uint64(r.buf[:8]), nil
}

// ReadBytes fills dst entirely, advancing *read by len(dst).
func (r *Reader) ReadBytes(dst []byte, read *int64) error {
	if len(dst) == 0 {
		return nil
	}

	if _, err := io.ReadFull(r.src, dst); err != nil {
		return fmt.Errorf("%w: read %d bytes: %w", ErrIO, len(dst), err)
	}

	*read += int64(len(dst))

	return nil
}

// ReadFullBoxHeader reads the 4-byte version+flags word common to every
// "full box" (ISO/IEC 14496-12 §4.2), splitting it into version and the
// 24-bit flags field via a bit reader rather than manual shifting, same
// packed-field treatment as the avcC length_size/sps_count field.
func (r *Reader) ReadFullBoxHeader(read *int64) (version uint8, flags uint32, err error) {
	var word [4]byte
	if ioErr := r.ReadBytes(word[:], read); ioErr != nil {
		return 0, 0, ioErr
	}

	br := bitio.NewReader(newSliceReader(word[:]))

	version64, err := br.ReadBits(8)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: full box version: %w", ErrIO, err)
	}

	flags64, err := br.ReadBits(24)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: full box flags: %w", ErrIO, err)
	}

	return uint8(version64), uint32(flags64), nil
}

// sliceReader adapts a byte slice to io.Reader for bitio, which wants a
// stream rather than a slice.
type sliceReader struct {
	data []byte
	pos  int
}

func newSliceReader(data []byte) *sliceReader {
	return &sliceReader{data: data}
}

func (s *sliceReader) Read(p []byte) (int, error) {
	if s.pos >= len(s.data) {
		return 0, io.EOF
	}

	n := copy(p, s.data[s.pos:])
	s.pos += n

	return n, nil
}
