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

// Package box implements the ISO/IEC 14496-12 box-tree parser and the
// per-track sample-table interpreter. It is the core of the demuxer: a
// recursive descent over nested length-tagged records, producing the
// in-memory tables a query surface needs to reconstruct sample offsets
// and durations.
package box

import "fmt"

// FourCC is a box type code packed as a big-endian uint32 from four ASCII
// bytes. Comparisons are integer equality, never string comparison.
type FourCC uint32

// NewFourCC packs four bytes into a FourCC.
func NewFourCC(a, b, c, d byte) FourCC {
	return FourCC(uint32(a)<<24 | uint32(b)<<16 | uint32(c)<<8 | uint32(d))
}

// FourCCFromString packs the four bytes of s into a FourCC. Panics unless
// s is exactly four bytes long; only used with compile-time literals.
func FourCCFromString(s string) FourCC {
	if len(s) != 4 {
		panic("box: four-cc string must be exactly 4 bytes: " + s)
	}

	return NewFourCC(s[0], s[1], s[2], s[3])
}

// String renders the four-cc as its ASCII form. The 0xA9 lead byte of
// udta tag codes is rendered as "©" (so ©nam reads "©nam"); any other
// byte outside the printable range becomes '.' (mirrors the original
// demuxer's debug tree dump).
func (f FourCC) String() string {
	bytes := [4]byte{
		byte(f >> 24), byte(f >> 16), byte(f >> 8), byte(f),
	}

	out := make([]byte, 0, 5)

	for _, b := range bytes {
		switch {
		case b == 0xA9:
			out = append(out, "©"...)
		case b >= 32 && b < 127:
			out = append(out, b)
		default:
			out = append(out, '.')
		}
	}

	return string(out)
}

// GoString supports %#v and debugger display.
func (f FourCC) GoString() string {
	return fmt.Sprintf("box.FourCC(%q)", f.String())
}

// Recognized box type codes. Only types the demuxer dispatches on need a
// named constant; everything else is compared as a raw FourCC during tree
// traversal.
//
//nolint:gochecknoglobals
var (
	TypeFtyp = FourCCFromString("ftyp")
	TypeMoov = FourCCFromString("moov")
	TypeMvhd = FourCCFromString("mvhd")
	TypeTrak = FourCCFromString("trak")
	TypeTkhd = FourCCFromString("tkhd")
	TypeTref = FourCCFromString("tref")
	TypeMdia = FourCCFromString("mdia")
	TypeMdhd = FourCCFromString("mdhd")
	TypeHdlr = FourCCFromString("hdlr")
	TypeMinf = FourCCFromString("minf")
	TypeVmhd = FourCCFromString("vmhd")
	TypeSmhd = FourCCFromString("smhd")
	TypeHmhd = FourCCFromString("hmhd")
	TypeNmhd = FourCCFromString("nmhd")
	TypeDinf = FourCCFromString("dinf")
	TypeStbl = FourCCFromString("stbl")
	TypeStsd = FourCCFromString("stsd")
	TypeAvcC = FourCCFromString("avcC")
	TypeAvc1 = FourCCFromString("avc1")
	TypeStts = FourCCFromString("stts")
	TypeStss = FourCCFromString("stss")
	TypeStsz = FourCCFromString("stsz")
	TypeStsc = FourCCFromString("stsc")
	TypeStco = FourCCFromString("stco")
	TypeCo64 = FourCCFromString("co64")
	TypeUdta = FourCCFromString("udta")
	TypeMeta = FourCCFromString("meta")
	TypeKeys = FourCCFromString("keys")
	TypeIlst = FourCCFromString("ilst")
	TypeData = FourCCFromString("data")
	TypeUUID = FourCCFromString("uuid")
	TypeXYZ  = FourCCFromString(string([]byte{0xA9, 'x', 'y', 'z'}))
	TypeCovr = FourCCFromString("covr")

	// Handler types (hdlr.handler_type), §4.9.
	HandlerVideo    = FourCCFromString("vide")
	HandlerAudio    = FourCCFromString("soun")
	HandlerHint     = FourCCFromString("hint")
	HandlerMetadata = FourCCFromString("meta")
	HandlerText     = FourCCFromString("text")

	// udta tag types recognized by the §4.18.1 data parser.
	TagArtist    = FourCCFromString(string([]byte{0xA9, 'A', 'R', 'T'}))
	TagTitle     = FourCCFromString(string([]byte{0xA9, 'n', 'a', 'm'}))
	TagDate      = FourCCFromString(string([]byte{0xA9, 'd', 'a', 'y'}))
	TagComment   = FourCCFromString(string([]byte{0xA9, 'c', 'm', 't'}))
	TagCopyright = FourCCFromString(string([]byte{0xA9, 'c', 'p', 'y'}))
	TagMaker     = FourCCFromString(string([]byte{0xA9, 'm', 'a', 'k'}))
	TagModel     = FourCCFromString(string([]byte{0xA9, 'm', 'o', 'd'}))
	TagVersion   = FourCCFromString(string([]byte{0xA9, 's', 'w', 'r'}))
	TagEncoder   = FourCCFromString(string([]byte{0xA9, 't', 'o', 'o'}))
)

// udtaTagKeys lists the four-ccs the §4.18.1 data parser recognizes as
// udta UTF-8 tags, in the order the original source checks them.
//
//nolint:gochecknoglobals
var udtaTagKeys = []FourCC{
	TagArtist, TagTitle, TagDate, TagComment, TagCopyright,
	TagMaker, TagModel, TagVersion, TagEncoder,
}

// IsUdtaTagKey reports whether fcc is one of the recognized udta tag
// four-ccs for UTF-8 metadata values.
func IsUdtaTagKey(fcc FourCC) bool {
	for _, k := range udtaTagKeys {
		if k == fcc {
			return true
		}
	}

	return false
}
