package audio

import (
	"bytes"
	"encoding/binary"
)

// minimalFLAC is a complete metadata-only FLAC stream: marker plus a single
// STREAMINFO block flagged last. 44100 Hz, 2 channels, 16 bps, 441000 total
// samples (exactly 10 seconds).
func minimalFLAC() []byte {
	return []byte("fLaC" +
		"\x80\x00\x00\x22" + // last-block flag, type 0, length 34
		"\x10\x00\x10\x00" + // min/max block size 4096
		"\x00\x00\x00\x00\x00\x00" + // frame sizes unknown
		"\x0a\xc4\x42\xf0" + // 44100 Hz, 2 ch, 16 bps
		"\x00\x06\xba\xa8" + // 441000 samples
		"\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00")
}

// truncatedFLAC declares a follow-up metadata block that never arrives.
func truncatedFLAC() []byte {
	b := minimalFLAC()
	b[4] = 0x00 // clear the last-block flag
	return b
}

// vorbisBlock builds a VORBIS_COMMENT metadata block body from key=value
// pairs, in order.
func vorbisBlock(comments [][2]string) []byte {
	var body bytes.Buffer
	vendor := "cadenza test"
	binary.Write(&body, binary.LittleEndian, uint32(len(vendor)))
	body.WriteString(vendor)
	binary.Write(&body, binary.LittleEndian, uint32(len(comments)))
	for _, c := range comments {
		entry := c[0] + "=" + c[1]
		binary.Write(&body, binary.LittleEndian, uint32(len(entry)))
		body.WriteString(entry)
	}
	return body.Bytes()
}

// pictureBlock builds a PICTURE metadata block body (type 3, front cover).
func pictureBlock(mime string, data []byte) []byte {
	var body bytes.Buffer
	binary.Write(&body, binary.BigEndian, uint32(3))
	binary.Write(&body, binary.BigEndian, uint32(len(mime)))
	body.WriteString(mime)
	binary.Write(&body, binary.BigEndian, uint32(0)) // description
	binary.Write(&body, binary.BigEndian, uint32(0)) // width
	binary.Write(&body, binary.BigEndian, uint32(0)) // height
	binary.Write(&body, binary.BigEndian, uint32(0)) // color depth
	binary.Write(&body, binary.BigEndian, uint32(0)) // indexed colors
	binary.Write(&body, binary.BigEndian, uint32(len(data)))
	body.Write(data)
	return body.Bytes()
}

// taggedFLAC is minimalFLAC with VORBIS_COMMENT (and optionally PICTURE)
// blocks appended after STREAMINFO.
func taggedFLAC(comments [][2]string, cover []byte) []byte {
	type metaBlock struct {
		typ  byte
		data []byte
	}

	base := minimalFLAC()
	blocks := []metaBlock{
		{0, base[8:]},
		{4, vorbisBlock(comments)},
	}
	if cover != nil {
		blocks = append(blocks, metaBlock{6, pictureBlock("image/jpeg", cover)})
	}

	var out bytes.Buffer
	out.WriteString("fLaC")
	for i, blk := range blocks {
		header := blk.typ
		if i == len(blocks)-1 {
			header |= 0x80
		}
		out.WriteByte(header)
		out.Write([]byte{byte(len(blk.data) >> 16), byte(len(blk.data) >> 8), byte(len(blk.data))})
		out.Write(blk.data)
	}
	return out.Bytes()
}

// mp3Frames produces n valid MPEG-1 Layer III frames (128 kbps, 44100 Hz,
// silence). Each frame accounts for 1152 samples, about 26ms.
func mp3Frames(n int) []byte {
	frame := make([]byte, 417)
	copy(frame, []byte{0xFF, 0xFB, 0x90, 0x00})
	return bytes.Repeat(frame, n)
}

// id3v23Tag builds an ID3v2.3 tag with ISO-8859-1 text frames, in order.
func id3v23Tag(frames [][2]string) []byte {
	var body bytes.Buffer
	for _, f := range frames {
		payload := append([]byte{0}, []byte(f[1])...)
		body.WriteString(f[0])
		binary.Write(&body, binary.BigEndian, uint32(len(payload)))
		body.Write([]byte{0, 0})
		body.Write(payload)
	}

	size := body.Len()
	header := []byte{
		'I', 'D', '3', 3, 0, 0,
		byte(size>>21) & 0x7F, byte(size>>14) & 0x7F, byte(size>>7) & 0x7F, byte(size) & 0x7F,
	}
	return append(header, body.Bytes()...)
}

// taggedMP3 is an ID3v2.3 tag followed by real audio frames.
func taggedMP3(frames [][2]string, audioFrames int) []byte {
	return append(id3v23Tag(frames), mp3Frames(audioFrames)...)
}
