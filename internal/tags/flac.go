package tags

import (
	"fmt"
	"strings"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"
)

func readFLAC(path string) (artist, title, album string, err error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return "", "", "", fmt.Errorf("parse flac: %w", err)
	}

	comments := findVorbisComment(f)
	if comments == nil {
		return "", "", "", nil
	}
	return firstField(comments, flacvorbis.FIELD_ARTIST),
		firstField(comments, flacvorbis.FIELD_TITLE),
		firstField(comments, flacvorbis.FIELD_ALBUM),
		nil
}

func setAlbumFLAC(path, album string) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parse flac: %w", err)
	}

	comments := findVorbisComment(f)
	if comments == nil {
		comments = flacvorbis.New()
	}
	removeField(comments, flacvorbis.FIELD_ALBUM)
	if err := comments.Add(flacvorbis.FIELD_ALBUM, album); err != nil {
		return fmt.Errorf("set album comment: %w", err)
	}

	block := comments.Marshal()
	replaced := false
	for i, meta := range f.Meta {
		if meta.Type == flac.VorbisComment {
			f.Meta[i] = &block
			replaced = true
			break
		}
	}
	if !replaced {
		f.Meta = append(f.Meta, &block)
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("save flac: %w", err)
	}
	return nil
}

func hasArtFLAC(path string) (bool, error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return false, fmt.Errorf("parse flac: %w", err)
	}
	for _, meta := range f.Meta {
		if meta.Type == flac.Picture {
			return true, nil
		}
	}
	return false, nil
}

func attachArtFLAC(path string, jpegData []byte) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parse flac: %w", err)
	}

	picture, err := flacpicture.NewFromImageData(
		flacpicture.PictureTypeFrontCover, "Cover", jpegData, "image/jpeg")
	if err != nil {
		return fmt.Errorf("build picture block: %w", err)
	}

	// Drop existing pictures so the new front cover is authoritative.
	kept := f.Meta[:0]
	for _, meta := range f.Meta {
		if meta.Type != flac.Picture {
			kept = append(kept, meta)
		}
	}
	block := picture.Marshal()
	f.Meta = append(kept, &block)

	if err := f.Save(path); err != nil {
		return fmt.Errorf("save flac: %w", err)
	}
	return nil
}

func findVorbisComment(f *flac.File) *flacvorbis.MetaDataBlockVorbisComment {
	for _, meta := range f.Meta {
		if meta.Type != flac.VorbisComment {
			continue
		}
		comments, err := flacvorbis.ParseFromMetaDataBlock(*meta)
		if err != nil {
			continue
		}
		return comments
	}
	return nil
}

func firstField(comments *flacvorbis.MetaDataBlockVorbisComment, field string) string {
	values, err := comments.Get(field)
	if err != nil || len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

// removeField strips every comment for the named field so Add does not
// produce duplicates.
func removeField(comments *flacvorbis.MetaDataBlockVorbisComment, field string) {
	prefix := strings.ToUpper(field) + "="
	kept := comments.Comments[:0]
	for _, comment := range comments.Comments {
		if !strings.HasPrefix(strings.ToUpper(comment), prefix) {
			kept = append(kept, comment)
		}
	}
	comments.Comments = kept
}
