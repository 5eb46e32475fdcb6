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
	"context"
	"fmt"
	"io"
	"log/slog"
)

// CoverFormat identifies a cover-art image encoding.
type CoverFormat int

// Recognized cover-art formats (§4.18.1 data classes 13/14/27).
const (
	CoverNone CoverFormat = iota
	CoverJPEG
	CoverPNG
	CoverBMP
)

// Cover describes a cover-art image's location within the file. The
// bytes themselves are not copied into memory; callers seek and read
// Size bytes at Offset from the original stream.
type Cover struct {
	Offset int64
	Size   int64
	Format CoverFormat
}

// Demux is the process-wide parsing session (§3). It is populated by a
// single pass of Parse and is read-only thereafter.
type Demux struct {
	src     io.ReadSeeker
	reader  *Reader
	log     *slog.Logger
	fileSize int64

	MajorBrand        FourCC
	MinorVersion      uint32
	CompatibleBrands  []FourCC

	Timescale        uint32
	Duration         uint64
	CreationTime     uint64
	ModificationTime uint64

	Tracks []*Track

	// udta-sourced iTunes-style tag metadata (parallel arrays).
	UdtaMetadataKey   []FourCC
	UdtaMetadataValue []string
	UdtaCover         Cover

	// meta/keys/ilst-sourced metadata (parallel arrays, 1-indexed keys).
	MetaMetadataKey   []string
	MetaMetadataValue []string
	MetaCover         Cover

	UdtaLocationKey   FourCC
	UdtaLocationValue string
	hasLocation       bool

	// Boxes is the flattened box tree in depth-first visitation order,
	// mirroring the original demuxer's debug print walk (§9 supplemented
	// features). Depth 0 is a root-level box.
	Boxes []TreeNode

	// parse-time bookkeeping for ilst-under-udta (§4.3 bullet 3).
	udtaMetadataParseIdx int
}

// TreeNode is one entry of the flattened box tree, used by the CLI's
// pretty-printer to reproduce an indented four-cc + size dump.
type TreeNode struct {
	Type  FourCC
	Size  int64
	Depth int
}

// parseOptions configures a Parse call; currently only the logger is
// exposed, plumbed through so every payload parser can emit the same
// structured trace the original demuxer's MP4_LOGD macros produced.
type parseOptions struct {
	log *slog.Logger
}

// Option configures Parse.
type Option func(*parseOptions)

// WithLogger attaches a structured logger used for parse-time tracing.
// If omitted, parsing is silent (slog.Default() is never touched).
func WithLogger(l *slog.Logger) Option {
	return func(o *parseOptions) { o.log = l }
}

// Parse reads the full box tree from src and returns the populated
// Demux. src must be seekable; the stream is read in a single pass and
// the returned Demux holds no further reference to anything beyond what
// it copied into memory, other than src itself (kept for later sample
// reads via the query surface).
func Parse(ctx context.Context, src io.ReadSeeker, opts ...Option) (*Demux, error) {
	cfg := parseOptions{log: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(&cfg)
	}

	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: seeking to end to measure file size: %w", ErrIO, err)
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seeking to start: %w", ErrIO, err)
	}

	d := &Demux{
		src:      src,
		reader:   NewReader(src),
		log:      cfg.log,
		fileSize: size,
	}

	p := &parser{d: d, log: cfg.log}

	if err := p.parseChildren(ctx, [2]FourCC{noFourCC, noFourCC}, nil, 0, size); err != nil {
		return nil, err
	}

	return d, nil
}

// Source returns the underlying stream for sample-byte reads by the
// query surface. The demuxer does not expose interior mutation: callers
// receive the same handle Parse was given and must not rely on its
// position across calls (every read seeks explicitly first).
func (d *Demux) Source() io.ReadSeeker { return d.src }

// FileSize returns the total stream length observed at open time.
func (d *Demux) FileSize() int64 { return d.fileSize }

// HasLocation reports whether a udta location (©xyz) box was parsed.
func (d *Demux) HasLocation() bool { return d.hasLocation }
