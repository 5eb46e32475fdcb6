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

package isomux

import (
	"context"
	"io"

	"github.com/samber/lo"

	"github.com/mycophonic/isomux/internal/box"
)

// File is an opened ISOBMFF container session (§3). Ownership of the box
// tree, track list, and metadata tables is exclusive to File; callers
// receive borrowed references valid until the File is discarded.
type File struct {
	d *box.Demux
}

// Open parses src's full box tree into an in-memory File (§4.3). src must
// be seekable; it is read once, synchronously, before Open returns. The
// parser is single-threaded (§5): concurrent callers must give each Open
// call its own file handle rather than sharing src across goroutines.
func Open(ctx context.Context, src io.ReadSeeker, opts ...Option) (*File, error) {
	d, err := box.Parse(ctx, src, opts...)
	if err != nil {
		return nil, wrapParseErr(err)
	}

	return &File{d: d}, nil
}

// Close is infallible (§7): a File holds no resource beyond the
// caller-supplied stream, which Open never took ownership of and Close
// never closes.
func (f *File) Close() error { return nil }

// MajorBrand returns the ftyp major_brand four-cc as a string (§4.4).
func (f *File) MajorBrand() string { return f.d.MajorBrand.String() }

// MinorVersion returns the ftyp minor_version (§4.4).
func (f *File) MinorVersion() uint32 { return f.d.MinorVersion }

// CompatibleBrands returns the ftyp compatible_brands list (§4.4).
func (f *File) CompatibleBrands() []string {
	return lo.Map(f.d.CompatibleBrands, func(b box.FourCC, _ int) string { return b.String() })
}

// Timescale returns the movie header's time_scale (§4.5).
func (f *File) Timescale() uint32 { return f.d.Timescale }

// Duration returns the movie header's duration in movie-timescale units (§4.5).
func (f *File) Duration() uint64 { return f.d.Duration }

// CreationTime returns the movie header's creation_time (§4.5).
func (f *File) CreationTime() uint64 { return f.d.CreationTime }

// ModificationTime returns the movie header's modification_time (§4.5).
func (f *File) ModificationTime() uint64 { return f.d.ModificationTime }

// Source returns the stream Open was given, for callers that want to read
// raw sample bytes directly at the offsets SampleInfo reports (§6).
func (f *File) Source() io.ReadSeeker { return f.d.Source() }

// FileSize returns the total stream length observed at Open time.
func (f *File) FileSize() int64 { return f.d.FileSize() }
