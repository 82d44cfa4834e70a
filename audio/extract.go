package audio

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dhowden/tag"
	flac "github.com/go-flac/go-flac"
	"github.com/tcolgate/mp3"

	"cadenza/types"
)

// Extract reads the tags and stream parameters of one audio file and
// normalizes them into a TrackRecord. The file content must match the
// declared format or the call fails with KindNotAudio. A file carrying no
// tag at all is a success with every optional field absent; malformed
// pieces degrade to a partial record with warnings rather than a failure.
func Extract(path string, format types.Format) (*types.TrackRecord, error) {
	if format != types.FormatMP3 && format != types.FormatFLAC {
		return nil, notAudio(path, fmt.Errorf("unsupported format %q", format))
	}
	if got := Classify(path); got != format {
		return nil, notAudio(path, fmt.Errorf("content is %s, expected %s", got, format))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, notAudio(path, err)
	}

	record := &types.TrackRecord{
		Path:      path,
		Format:    format,
		SizeBytes: info.Size(),
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, notAudio(path, err)
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	switch {
	case errors.Is(err, tag.ErrNoTagsFound):
		record.Warnings = append(record.Warnings, "no tag data found")
	case err != nil:
		return nil, corrupt(path, err)
	default:
		populateTags(record, meta)
	}

	if _, err := f.Seek(0, 0); err != nil {
		return nil, corrupt(path, err)
	}

	switch format {
	case types.FormatFLAC:
		readFLACDuration(record, f)
	case types.FormatMP3:
		readMP3Duration(record, f)
	}

	return record, nil
}

// populateTags copies the normalized tag fields onto the record. Empty or
// whitespace-only values stay absent; nothing is defaulted.
func populateTags(record *types.TrackRecord, meta tag.Metadata) {
	record.Title = strings.TrimSpace(meta.Title())
	record.Artist = strings.TrimSpace(meta.Artist())
	record.Album = strings.TrimSpace(meta.Album())
	record.Genre = strings.TrimSpace(meta.Genre())

	if year := meta.Year(); year > 0 {
		record.Year = year
	}
	if num, _ := meta.Track(); num > 0 {
		record.TrackNumber = num
	}

	if pic := meta.Picture(); pic != nil && len(pic.Data) > 0 {
		record.CoverArt = &types.Picture{
			MIMEType: pic.MIMEType,
			Data:     pic.Data,
		}
	}
}

// readFLACDuration derives the duration from the STREAMINFO block. A FLAC
// stream whose metadata cannot be walked degrades to duration 0 with a
// warning; the tag fields already extracted are kept.
func readFLACDuration(record *types.TrackRecord, f *os.File) {
	stream, err := flac.ParseMetadata(f)
	if err != nil {
		record.Warnings = append(record.Warnings, fmt.Sprintf("flac: %v", err))
		return
	}

	si, err := stream.GetStreamInfo()
	if err != nil {
		record.Warnings = append(record.Warnings, fmt.Sprintf("flac: %v", err))
		return
	}
	if si.SampleRate <= 0 || si.SampleCount <= 0 {
		record.Warnings = append(record.Warnings, "flac: stream length not recorded")
		return
	}

	seconds := float64(si.SampleCount) / float64(si.SampleRate)
	record.DurationSeconds = int(seconds + 0.5)
}

// readMP3Duration walks the MPEG audio frames and sums their durations.
// Decoding stops at the first undecodable frame; a file with no decodable
// frames keeps duration 0 with a warning.
func readMP3Duration(record *types.TrackRecord, f *os.File) {
	var (
		total   time.Duration
		frames  int
		skipped int
		frame   mp3.Frame
	)

	dec := mp3.NewDecoder(f)
	for {
		if err := dec.Decode(&frame, &skipped); err != nil {
			break
		}
		total += frame.Duration()
		frames++
	}

	if frames == 0 {
		record.Warnings = append(record.Warnings, "mp3: no decodable audio frames")
		return
	}
	record.DurationSeconds = int(total.Seconds() + 0.5)
}
