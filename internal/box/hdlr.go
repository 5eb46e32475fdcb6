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

const hdlrMinBytes = 6 * 4

// maxHdlrNameBytes caps the null-terminated name field the same way the
// table this is grounded on caps its stack buffer.
const maxHdlrNameBytes = 99

// parseHdlr reads the handler reference box (§4.9). The handler type
// is mapped onto track.Type only when hdlr's own parent is mdia — a
// hdlr box can also appear under meta, where it carries no track type.
func (p *parser) parseHdlr(track *Track, parentType FourCC, maxBytes int64) (int64, error) {
	if maxBytes < hdlrMinBytes {
		return 0, fmt.Errorf("%w: hdlr needs %d bytes, have %d", ErrInvalidSize, hdlrMinBytes, maxBytes)
	}

	var read int64

	if _, _, err := p.d.reader.ReadFullBoxHeader(&read); err != nil {
		return 0, err
	}

	if _, err := p.d.reader.ReadU32(&read); err != nil { // pre_defined
		return 0, err
	}

	handlerType, err := p.d.reader.ReadU32(&read)
	if err != nil {
		return 0, err
	}

	if track != nil && parentType == TypeMdia {
		track.Type = mapHandlerType(FourCC(handlerType))
	}

	for i := 0; i < 3; i++ { // reserved
		if _, err := p.d.reader.ReadU32(&read); err != nil {
			return 0, err
		}
	}

	nameStart := read

	for read < maxBytes && read-nameStart < maxHdlrNameBytes {
		b, err := p.d.reader.ReadU8(&read)
		if err != nil {
			return 0, err
		}

		if b == 0 {
			break
		}
	}

	return read, nil
}

func mapHandlerType(t FourCC) TrackType {
	switch t {
	case HandlerVideo:
		return TrackVideo
	case HandlerAudio:
		return TrackAudio
	case HandlerHint:
		return TrackHint
	case HandlerMetadata:
		return TrackMetadata
	case HandlerText:
		return TrackText
	default:
		return TrackUnknown
	}
}
