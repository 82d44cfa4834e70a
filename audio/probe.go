package audio

import (
	"io"
	"os"

	"cadenza/types"
)

// Classify inspects a file's leading bytes and reports its container format.
// Extensions are never consulted: a misnamed file classifies by what it
// actually contains. Unreadable, empty, and unrecognized files all come back
// as FormatUnsupported; I/O trouble is a classification outcome here, not an
// error.
func Classify(path string) types.Format {
	f, err := os.Open(path)
	if err != nil {
		return types.FormatUnsupported
	}
	defer f.Close()

	var header [4]byte
	n, _ := io.ReadFull(f, header[:])
	return classifyHeader(header[:n])
}

// classifyHeader decides the format from up to four leading bytes: the FLAC
// stream marker, an ID3v2 tag header, or a bare MPEG frame sync.
func classifyHeader(b []byte) types.Format {
	if len(b) >= 4 && b[0] == 'f' && b[1] == 'L' && b[2] == 'a' && b[3] == 'C' {
		return types.FormatFLAC
	}
	if len(b) >= 3 && b[0] == 'I' && b[1] == 'D' && b[2] == '3' {
		return types.FormatMP3
	}
	if len(b) >= 2 && b[0] == 0xFF && b[1]&0xE0 == 0xE0 {
		return types.FormatMP3
	}
	return types.FormatUnsupported
}
