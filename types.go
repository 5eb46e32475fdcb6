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

// Package isomux is a read-only demuxer for ISO/IEC 14496-12 (ISOBMFF)
// containers: MP4, M4A, and MOV. It parses the box tree once on Open and
// exposes a borrowed, read-only view of the track list, sample tables, and
// udta/meta metadata for the lifetime of the returned File.
package isomux

import "github.com/mycophonic/isomux/internal/box"

// TrackType is the mapped hdlr handler-type of a track (§4.9).
type TrackType int

// Recognized track types.
const (
	TrackUnknown TrackType = iota
	TrackVideo
	TrackAudio
	TrackHint
	TrackMetadata
	TrackText
)

// String renders the track type for logging and CLI output.
func (t TrackType) String() string {
	switch t {
	case TrackVideo:
		return "video"
	case TrackAudio:
		return "audio"
	case TrackHint:
		return "hint"
	case TrackMetadata:
		return "metadata"
	case TrackText:
		return "text"
	default:
		return "unknown"
	}
}

func trackTypeFromBox(t box.TrackType) TrackType {
	switch t {
	case box.TrackVideo:
		return TrackVideo
	case box.TrackAudio:
		return TrackAudio
	case box.TrackHint:
		return TrackHint
	case box.TrackMetadata:
		return TrackMetadata
	case box.TrackText:
		return TrackText
	default:
		return TrackUnknown
	}
}

// VideoCodec identifies the codec found in a video track's stsd (§4.11, §4.12).
type VideoCodec int

// Recognized video codecs.
const (
	VideoCodecNone VideoCodec = iota
	VideoCodecAVC
)

// String renders the codec name.
func (c VideoCodec) String() string {
	if c == VideoCodecAVC {
		return "avc"
	}

	return "none"
}

func videoCodecFromBox(c box.VideoCodec) VideoCodec {
	if c == box.VideoCodecAVC {
		return VideoCodecAVC
	}

	return VideoCodecNone
}

// CoverFormat identifies a cover-art image encoding (§4.18.1).
type CoverFormat int

// Recognized cover-art formats.
const (
	CoverNone CoverFormat = iota
	CoverJPEG
	CoverPNG
	CoverBMP
)

// String renders the cover format as a file extension.
func (f CoverFormat) String() string {
	switch f {
	case CoverJPEG:
		return "jpeg"
	case CoverPNG:
		return "png"
	case CoverBMP:
		return "bmp"
	default:
		return "none"
	}
}

func coverFormatFromBox(f box.CoverFormat) CoverFormat {
	switch f {
	case box.CoverJPEG:
		return CoverJPEG
	case box.CoverPNG:
		return CoverPNG
	case box.CoverBMP:
		return CoverBMP
	default:
		return CoverNone
	}
}

// Cover describes a cover-art image's location within the file (§4.18.1).
// The bytes are not copied into memory; read Size bytes at Offset from the
// stream returned by File.Source.
type Cover struct {
	Offset int64
	Size   int64
	Format CoverFormat
}

func coverFromBox(c box.Cover) Cover {
	return Cover{Offset: c.Offset, Size: c.Size, Format: coverFormatFromBox(c.Format)}
}

// HasCover reports whether a cover image was recorded.
func (c Cover) HasCover() bool { return c.Format != CoverNone }
