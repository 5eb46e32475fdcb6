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

const (
	stsdMinBytes         = 8
	stsdVideoEntryBytes  = 102
	stsdAudioEntryBytes  = 44
	stsdMetaEntryBytes   = 24
	stsdCompressorBytes  = 32
	stsdMaxMetaStrLen    = 99
)

// parseStsd reads the sample description box (§4.11): one entry per
// sample description, shaped according to the track's handler type.
// Hint and text entries carry nothing the query surface needs and are
// left for the caller's generic skip.
func (p *parser) parseStsd(track *Track, maxBytes int64) (int64, error) {
	if track == nil {
		return 0, fmt.Errorf("%w: stsd outside a track", ErrInvalidArgument)
	}

	if maxBytes < stsdMinBytes {
		return 0, fmt.Errorf("%w: stsd needs %d bytes, have %d", ErrInvalidSize, stsdMinBytes, maxBytes)
	}

	var read int64

	if _, _, err := p.d.reader.ReadFullBoxHeader(&read); err != nil {
		return 0, err
	}

	entryCount, err := p.d.reader.ReadU32(&read)
	if err != nil {
		return 0, err
	}

	for i := uint32(0); i < entryCount; i++ {
		switch track.Type {
		case TrackVideo:
			if err := p.parseStsdVideoEntry(track, maxBytes, &read); err != nil {
				return 0, err
			}

		case TrackAudio:
			if err := p.parseStsdAudioEntry(track, maxBytes, &read); err != nil {
				return 0, err
			}

		case TrackMetadata:
			if err := p.parseStsdMetadataEntry(track, maxBytes, &read); err != nil {
				return 0, err
			}

		case TrackHint, TrackText, TrackUnknown:
			// no fields this demuxer surfaces; the caller's generic
			// sibling-seek accounts for the remaining bytes.
		}
	}

	return read, nil
}

func (p *parser) parseStsdVideoEntry(track *Track, maxBytes int64, read *int64) error {
	if maxBytes < stsdVideoEntryBytes {
		return fmt.Errorf("%w: stsd video entry needs %d bytes, have %d", ErrInvalidSize, stsdVideoEntryBytes, maxBytes)
	}

	if _, err := p.d.reader.ReadU32(read); err != nil { // size
		return err
	}

	if _, err := p.d.reader.ReadU32(read); err != nil { // type
		return err
	}

	if _, err := p.d.reader.ReadU32(read); err != nil { // reserved
		return err
	}

	if _, err := p.d.reader.ReadU32(read); err != nil { // reserved + data_reference_index
		return err
	}

	for k := 0; k < 4; k++ { // pre_defined + reserved
		if _, err := p.d.reader.ReadU32(read); err != nil {
			return err
		}
	}

	dims, err := p.d.reader.ReadU32(read)
	if err != nil {
		return err
	}

	track.VideoWidth = uint16(dims >> 16)
	track.VideoHeight = uint16(dims)

	if _, err := p.d.reader.ReadU32(read); err != nil { // horizresolution
		return err
	}

	if _, err := p.d.reader.ReadU32(read); err != nil { // vertresolution
		return err
	}

	if _, err := p.d.reader.ReadU32(read); err != nil { // reserved
		return err
	}

	if _, err := p.d.reader.ReadU16(read); err != nil { // frame_count
		return err
	}

	var compressor [stsdCompressorBytes]byte
	if err := p.d.reader.ReadBytes(compressor[:], read); err != nil {
		return err
	}

	if _, err := p.d.reader.ReadU32(read); err != nil { // depth + pre_defined
		return err
	}

	if _, err := p.d.reader.ReadU32(read); err != nil { // nested box size
		return err
	}

	codec, err := p.d.reader.ReadU32(read)
	if err != nil {
		return err
	}

	if FourCC(codec) == TypeAvcC {
		track.VideoCodec = VideoCodecAVC

		if err := p.parseAvccInto(track, maxBytes, read); err != nil {
			return err
		}
	}

	return nil
}

// parseAvccInto is parseAvcc adjusted to thread the caller's running
// read counter (stsd itself is still single-entry-per-call here).
func (p *parser) parseAvccInto(track *Track, maxBytes int64, read *int64) error {
	consumed, err := p.parseAvcc(track, maxBytes-*read)
	if err != nil {
		return err
	}

	*read += consumed

	return nil
}

func (p *parser) parseStsdAudioEntry(track *Track, maxBytes int64, read *int64) error {
	if maxBytes < stsdAudioEntryBytes {
		return fmt.Errorf("%w: stsd audio entry needs %d bytes, have %d", ErrInvalidSize, stsdAudioEntryBytes, maxBytes)
	}

	if _, err := p.d.reader.ReadU32(read); err != nil { // size
		return err
	}

	if _, err := p.d.reader.ReadU32(read); err != nil { // type
		return err
	}

	if _, err := p.d.reader.ReadU32(read); err != nil { // reserved
		return err
	}

	if _, err := p.d.reader.ReadU32(read); err != nil { // reserved + data_reference_index
		return err
	}

	if _, err := p.d.reader.ReadU32(read); err != nil { // reserved
		return err
	}

	if _, err := p.d.reader.ReadU32(read); err != nil { // reserved
		return err
	}

	channelsAndSize, err := p.d.reader.ReadU32(read)
	if err != nil {
		return err
	}

	track.AudioChannelCount = uint16(channelsAndSize >> 16)
	track.AudioSampleSize = uint16(channelsAndSize)

	if _, err := p.d.reader.ReadU32(read); err != nil { // reserved
		return err
	}

	rate, err := p.d.reader.ReadU32(read)
	if err != nil {
		return err
	}

	track.AudioSampleRate = rate

	return nil
}

func (p *parser) parseStsdMetadataEntry(track *Track, maxBytes int64, read *int64) error {
	if maxBytes < stsdMetaEntryBytes {
		return fmt.Errorf("%w: stsd metadata entry needs %d bytes, have %d", ErrInvalidSize, stsdMetaEntryBytes, maxBytes)
	}

	if _, err := p.d.reader.ReadU32(read); err != nil { // size
		return err
	}

	if _, err := p.d.reader.ReadU32(read); err != nil { // type
		return err
	}

	if _, err := p.d.reader.ReadU32(read); err != nil { // reserved
		return err
	}

	if _, err := p.d.reader.ReadU16(read); err != nil { // reserved
		return err
	}

	if _, err := p.d.reader.ReadU16(read); err != nil { // data_reference_index
		return err
	}

	encoding, err := p.readNullTerminatedString(maxBytes, read)
	if err != nil {
		return err
	}

	if encoding != "" {
		track.MetadataContentEncoding = encoding
	}

	mime, err := p.readNullTerminatedString(maxBytes, read)
	if err != nil {
		return err
	}

	if mime != "" {
		track.MetadataMimeFormat = mime
	}

	return nil
}

func (p *parser) readNullTerminatedString(maxBytes int64, read *int64) (string, error) {
	var buf []byte

	for len(buf) < stsdMaxMetaStrLen && *read < maxBytes {
		b, err := p.d.reader.ReadU8(read)
		if err != nil {
			return "", err
		}

		if b == 0 {
			break
		}

		buf = append(buf, b)
	}

	return string(buf), nil
}
