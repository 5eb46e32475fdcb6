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

const trefMinBytes = 3 * 4

// parseTref reads the first reference entry of a track reference box
// (§4.7). Only the first track_ID of the run is kept; any further IDs
// in the same reference type are ignored, matching the table this is
// grounded on.
func (p *parser) parseTref(track *Track, maxBytes int64) (int64, error) {
	if track == nil {
		return 0, fmt.Errorf("%w: tref outside a track", ErrInvalidArgument)
	}

	if maxBytes < trefMinBytes {
		return 0, fmt.Errorf("%w: tref needs %d bytes, have %d", ErrInvalidSize, trefMinBytes, maxBytes)
	}

	var read int64

	if _, err := p.d.reader.ReadU32(&read); err != nil { // reference type box size
		return 0, err
	}

	refType, err := p.d.reader.ReadU32(&read)
	if err != nil {
		return 0, err
	}

	refTrackID, err := p.d.reader.ReadU32(&read)
	if err != nil {
		return 0, err
	}

	if err := track.SetReference(FourCC(refType), refTrackID); err != nil {
		return 0, err
	}

	return read, nil
}
