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
	"log/slog"
)

// parser holds the state threaded through the recursive descent: the
// demux being populated and the logger every leaf parser traces through.
// It carries no position state of its own — position lives entirely in
// the underlying io.ReadSeeker, read through d.reader.
type parser struct {
	d   *Demux
	log *slog.Logger
}

// noFourCC is the sentinel ancestor value for "no such ancestor" (root
// level, or one level above root).
const noFourCC FourCC = 0

// containerTypes are boxes whose payload is itself a sequence of boxes,
// parsed by unconditional recursion regardless of ancestor (§4.3 bullet 3,
// first item). meta and ilst are container boxes too but need ancestor
// checks first, so they are handled as separate switch cases.
//
//nolint:gochecknoglobals
var containerTypes = map[FourCC]bool{
	TypeMoov: true,
	TypeUdta: true,
	TypeMdia: true,
	TypeMinf: true,
	TypeDinf: true,
	TypeStbl: true,
}

// parseChildren recurses over maxBytes of payload belonging to a box
// whose type is ancestor[0] (ancestor[1] is that box's own parent, i.e.
// the grandparent relative to any child dispatched in this call). track
// is the enclosing trak's record, or nil outside any trak. depth is this
// call's nesting level, recorded alongside each box for the tree dump.
//
//nolint:cyclop,funlen // mirrors the single dispatch switch of the source this is grounded on.
func (p *parser) parseChildren(ctx context.Context, ancestor [2]FourCC, track *Track, depth int, maxBytes int64) error {
	var consumed int64

	for consumed+smallHeaderSize <= maxBytes {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrIO, err)
		}

		remaining := maxBytes - consumed

		hdr, realSize, err := ReadHeader(p.d.reader, remaining, p.d.fileSize-consumed)
		if err != nil {
			return err
		}

		p.log.Debug("box", "type", hdr.Type.String(), "size", realSize, "parent", ancestor[0].String())

		p.d.Boxes = append(p.d.Boxes, TreeNode{Type: hdr.Type, Size: realSize, Depth: depth})

		childAncestor := [2]FourCC{hdr.Type, ancestor[0]}

		used, err := p.dispatch(ctx, hdr, ancestor, childAncestor, track, depth+1, realSize)
		if err != nil {
			return err
		}

		payloadLeft := hdr.PayloadSize - used
		if payloadLeft < 0 {
			return fmt.Errorf("%w: %s consumed %d bytes, only %d available",
				ErrIO, hdr.Type, used, hdr.PayloadSize)
		}

		if err := p.d.reader.Skip(payloadLeft, &used); err != nil {
			return err
		}

		consumed += realSize

		if hdr.ExtendsToEOF {
			break
		}
	}

	return nil
}

// dispatch routes one decoded box header to its type-specific parser and
// returns the number of payload bytes consumed (not counting the header).
//
//nolint:cyclop,funlen // one dispatch arm per supported box type, as in the source this mirrors.
func (p *parser) dispatch(
	ctx context.Context,
	hdr Header,
	ancestor [2]FourCC,
	childAncestor [2]FourCC,
	track *Track,
	depth int,
	realSize int64,
) (int64, error) {
	switch {
	case hdr.Type == TypeTrak:
		newTrack := &Track{}
		p.d.Tracks = append(p.d.Tracks, newTrack)

		return hdr.PayloadSize, p.parseChildren(ctx, childAncestor, newTrack, depth, hdr.PayloadSize)

	case containerTypes[hdr.Type]:
		return hdr.PayloadSize, p.parseChildren(ctx, childAncestor, track, depth, hdr.PayloadSize)

	case hdr.Type == TypeMeta:
		return p.dispatchMeta(ctx, childAncestor, ancestor, track, depth, hdr.PayloadSize)

	case hdr.Type == TypeIlst:
		return p.dispatchIlst(ctx, childAncestor, ancestor, track, depth, hdr.PayloadSize)

	case hdr.Type == TypeFtyp:
		return p.parseFtyp(hdr.PayloadSize)

	case hdr.Type == TypeMvhd:
		return p.parseMvhd(hdr.PayloadSize)

	case hdr.Type == TypeTkhd:
		return p.parseTkhd(track, hdr.PayloadSize)

	case hdr.Type == TypeTref:
		return p.parseTref(track, hdr.PayloadSize)

	case hdr.Type == TypeMdhd:
		return p.parseMdhd(track, hdr.PayloadSize)

	case hdr.Type == TypeHdlr:
		return p.parseHdlr(track, ancestor[0], hdr.PayloadSize)

	case hdr.Type == TypeVmhd, hdr.Type == TypeSmhd, hdr.Type == TypeHmhd, hdr.Type == TypeNmhd:
		return p.parseMediaHeaderStub(hdr.Type, hdr.PayloadSize)

	case hdr.Type == TypeStsd:
		return p.parseStsd(track, hdr.PayloadSize)

	case hdr.Type == TypeStts:
		return p.parseStts(track, hdr.PayloadSize)

	case hdr.Type == TypeStss:
		return p.parseStss(track, hdr.PayloadSize)

	case hdr.Type == TypeStsz:
		return p.parseStsz(track, hdr.PayloadSize)

	case hdr.Type == TypeStsc:
		return p.parseStsc(track, hdr.PayloadSize)

	case hdr.Type == TypeStco:
		return p.parseStco(track, hdr.PayloadSize)

	case hdr.Type == TypeCo64:
		return p.parseCo64(track, hdr.PayloadSize)

	case hdr.Type == TypeData:
		return p.parseData(ancestor[0], hdr.PayloadSize)

	case hdr.Type == TypeXYZ:
		if ancestor[0] != TypeUdta {
			return 0, nil
		}

		return p.parseLocation(hdr.Type, hdr.PayloadSize)

	case hdr.Type == TypeKeys:
		if ancestor[0] != TypeMeta {
			return 0, nil
		}

		return p.parseMetaKeys(hdr.PayloadSize)

	default:
		if ancestor[0] == TypeIlst {
			return hdr.PayloadSize, p.parseChildren(ctx, childAncestor, track, depth, hdr.PayloadSize)
		}

		return 0, nil
	}
}

// dispatchMeta implements §4.3's meta-box rule: under udta, consume the
// 4-byte version+flags word first; under moov, recurse directly; under
// anything else, the box is registered in the tree but left unparsed.
func (p *parser) dispatchMeta(
	ctx context.Context,
	childAncestor, ancestor [2]FourCC,
	track *Track,
	depth int,
	payloadSize int64,
) (int64, error) {
	switch ancestor[0] {
	case TypeUdta:
		var consumed int64
		if _, _, err := p.d.reader.ReadFullBoxHeader(&consumed); err != nil {
			return 0, err
		}

		return consumed + payloadSize - consumed, p.parseChildren(ctx, childAncestor, track, depth, payloadSize-consumed)

	case TypeMoov:
		return payloadSize, p.parseChildren(ctx, childAncestor, track, depth, payloadSize)

	default:
		return 0, nil
	}
}

// dispatchIlst implements §4.3's ilst pre-count rule: when ilst's
// grandparent (the box containing its meta parent) is udta, pre-size the
// udta metadata key/value arrays from a header-only sub-pass before
// recursing for real, then trim them to the entries the data parsers
// actually filled (children such as covr take no slot).
func (p *parser) dispatchIlst(
	ctx context.Context,
	childAncestor, ancestor [2]FourCC,
	track *Track,
	depth int,
	payloadSize int64,
) (int64, error) {
	if ancestor[1] == TypeUdta {
		count, err := p.countIlstChildren(payloadSize)
		if err != nil {
			return 0, err
		}

		if count > 0 {
			p.d.UdtaMetadataKey = make([]FourCC, count)
			p.d.UdtaMetadataValue = make([]string, count)
			p.d.udtaMetadataParseIdx = 0
		}
	}

	if err := p.parseChildren(ctx, childAncestor, track, depth, payloadSize); err != nil {
		return payloadSize, err
	}

	if ancestor[1] == TypeUdta && p.d.udtaMetadataParseIdx < len(p.d.UdtaMetadataKey) {
		p.d.UdtaMetadataKey = p.d.UdtaMetadataKey[:p.d.udtaMetadataParseIdx]
		p.d.UdtaMetadataValue = p.d.UdtaMetadataValue[:p.d.udtaMetadataParseIdx]
	}

	return payloadSize, nil
}

// countIlstChildren performs the cheap header-only sub-pass §4.3
// describes: read nothing but box headers, tally how many direct
// children there are, then rewind. size == 0 for a list element is
// explicitly unsupported (§7, §9 supplemented features).
func (p *parser) countIlstChildren(maxBytes int64) (int, error) {
	start, err := p.d.reader.Tell()
	if err != nil {
		return 0, err
	}

	var consumed int64

	count := 0

	for consumed+smallHeaderSize <= maxBytes {
		remaining := maxBytes - consumed

		hdr, realSize, err := ReadHeader(p.d.reader, remaining, 0)
		if err != nil {
			return 0, err
		}

		if hdr.ExtendsToEOF {
			return 0, fmt.Errorf("%w: size == 0 for a list element inside ilst", ErrUnsupported)
		}

		if err := p.d.reader.SeekCur(realSize - hdr.HeaderBytes); err != nil {
			return 0, err
		}

		consumed += realSize
		count++
	}

	if err := p.d.reader.SeekCur(-(consumed)); err != nil {
		return 0, err
	}

	_ = start

	return count, nil
}
