// Package tagger writes tag edits back into audio files. It shares the
// content-signature detection and error taxonomy of package audio, so a
// file that cannot be extracted cannot be tagged either.
package tagger

import (
	"errors"
	"fmt"
	"strings"

	id3v2 "github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"

	"cadenza/audio"
	"cadenza/types"
)

// FieldAction says what to do with one tag field.
type FieldAction int

const (
	// FieldKeep leaves the field as it is on disk.
	FieldKeep FieldAction = iota
	// FieldSet replaces the field with Value.
	FieldSet
	// FieldClear removes the field.
	FieldClear
)

// TagEdit is one field's action plus the value used by FieldSet.
type TagEdit struct {
	Action FieldAction
	Value  string
}

// Set returns an edit that writes value.
func Set(value string) TagEdit {
	return TagEdit{Action: FieldSet, Value: value}
}

// Clear returns an edit that removes the field.
func Clear() TagEdit {
	return TagEdit{Action: FieldClear}
}

// TagUpdate collects the edits applied in one write. Zero-value fields are
// kept untouched. Year and TrackNumber carry their numeric value as text,
// the way both tag systems store them.
type TagUpdate struct {
	Title       TagEdit
	Artist      TagEdit
	Album       TagEdit
	Genre       TagEdit
	Year        TagEdit
	TrackNumber TagEdit

	// Picture replaces the embedded front cover when set.
	Picture *types.Picture
	// RemovePicture drops every embedded picture. Ignored when Picture
	// is set.
	RemovePicture bool
}

// WriteTags applies the update to the file at path. The format is detected
// from content; unrecognized files fail as not-audio and unparseable ones
// as corrupt, exactly like extraction.
func WriteTags(path string, update TagUpdate) error {
	switch audio.Classify(path) {
	case types.FormatMP3:
		return writeID3(path, update)
	case types.FormatFLAC:
		return writeVorbis(path, update)
	default:
		return &audio.ExtractionError{
			Path: path,
			Kind: audio.KindNotAudio,
			Err:  errors.New("unrecognized content"),
		}
	}
}

func writeID3(path string, update TagUpdate) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return &audio.ExtractionError{Path: path, Kind: audio.KindCorrupt, Err: err}
	}
	defer tag.Close()

	// v2.3 with UTF-16 text is what the widest range of readers handles.
	tag.SetVersion(3)

	fields := []struct {
		frameID string
		set     func(string)
		edit    TagEdit
	}{
		{"TIT2", tag.SetTitle, update.Title},
		{"TPE1", tag.SetArtist, update.Artist},
		{"TALB", tag.SetAlbum, update.Album},
		{"TCON", tag.SetGenre, update.Genre},
		{"TYER", tag.SetYear, update.Year},
		{"TRCK", func(v string) { tag.AddTextFrame("TRCK", tag.DefaultEncoding(), v) }, update.TrackNumber},
	}
	for _, f := range fields {
		switch f.edit.Action {
		case FieldSet:
			f.set(f.edit.Value)
		case FieldClear:
			tag.DeleteFrames(f.frameID)
		}
	}

	if update.Picture != nil {
		tag.DeleteFrames("APIC")
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    tag.DefaultEncoding(),
			MimeType:    update.Picture.MIMEType,
			PictureType: id3v2.PTFrontCover,
			Description: "Front cover",
			Picture:     update.Picture.Data,
		})
	} else if update.RemovePicture {
		tag.DeleteFrames("APIC")
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("tagger: save %s: %w", path, err)
	}
	return nil
}

func writeVorbis(path string, update TagUpdate) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return &audio.ExtractionError{Path: path, Kind: audio.KindCorrupt, Err: err}
	}

	comment := flacvorbis.New()
	var meta []*flac.MetaDataBlock
	for _, block := range f.Meta {
		switch block.Type {
		case flac.VorbisComment:
			// Carried over into the rebuilt comment below.
			if existing, err := flacvorbis.ParseFromMetaDataBlock(*block); err == nil {
				comment = existing
			}
			continue
		case flac.Picture:
			if update.Picture != nil || update.RemovePicture {
				continue
			}
		}
		meta = append(meta, block)
	}

	edits := []struct {
		field string
		edit  TagEdit
	}{
		{flacvorbis.FIELD_TITLE, update.Title},
		{flacvorbis.FIELD_ARTIST, update.Artist},
		{flacvorbis.FIELD_ALBUM, update.Album},
		{flacvorbis.FIELD_GENRE, update.Genre},
		{flacvorbis.FIELD_DATE, update.Year},
		{flacvorbis.FIELD_TRACKNUMBER, update.TrackNumber},
	}
	for _, e := range edits {
		if err := applyVorbisEdit(comment, e.field, e.edit); err != nil {
			return fmt.Errorf("tagger: %s field %s: %w", path, e.field, err)
		}
	}

	commentBlock := comment.Marshal()
	meta = append(meta, &commentBlock)

	if update.Picture != nil {
		cover, err := flacpicture.NewFromImageData(
			flacpicture.PictureTypeFrontCover, "Front cover",
			update.Picture.Data, update.Picture.MIMEType,
		)
		if err != nil {
			return fmt.Errorf("tagger: cover for %s: %w", path, err)
		}
		coverBlock := cover.Marshal()
		meta = append(meta, &coverBlock)
	}

	f.Meta = meta
	if err := f.Save(path); err != nil {
		return fmt.Errorf("tagger: save %s: %w", path, err)
	}
	return nil
}

func applyVorbisEdit(comment *flacvorbis.MetaDataBlockVorbisComment, field string, edit TagEdit) error {
	if edit.Action == FieldKeep {
		return nil
	}
	removeVorbisField(comment, field)
	if edit.Action == FieldSet {
		return comment.Add(field, edit.Value)
	}
	return nil
}

// removeVorbisField drops every comment for the field, matching keys
// case-insensitively per the Vorbis Comment convention.
func removeVorbisField(comment *flacvorbis.MetaDataBlockVorbisComment, field string) {
	prefix := strings.ToUpper(field) + "="
	kept := comment.Comments[:0:0]
	for _, c := range comment.Comments {
		if !strings.HasPrefix(strings.ToUpper(c), prefix) {
			kept = append(kept, c)
		}
	}
	comment.Comments = kept
}
