// Package tags reads and writes the audio metadata tonearm cares
// about: artist, title, album, and embedded cover art, for MP3 and
// FLAC files. Missing or unreadable fields degrade to the Unknown
// sentinels instead of failing the file.
package tags

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Sentinel values used when a tag is absent or unreadable. They double
// as folder names in the library tree, so "Unknown Album" is also how
// unresolved tracks are found again later.
const (
	UnknownArtist = "Unknown Artist"
	UnknownTitle  = "Unknown Title"
	UnknownAlbum  = "Unknown Album"
)

// Format identifies the container a track is stored in.
type Format string

const (
	FormatMP3  Format = "mp3"
	FormatFLAC Format = "flac"
)

// Track is the metadata view of one audio file.
type Track struct {
	Path   string
	Format Format
	Artist string
	Title  string
	Album  string
}

// HasUnknownAlbum reports whether the track still needs resolution.
func (t Track) HasUnknownAlbum() bool {
	return t.Album == UnknownAlbum
}

// DetectFormat maps a file extension to its Format.
func DetectFormat(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return FormatMP3, true
	case ".flac":
		return FormatFLAC, true
	default:
		return "", false
	}
}

// ReadTrack reads a track's metadata. The returned Track is always
// usable: fields that cannot be read come back as Unknown sentinels,
// and the error describes what went wrong for logging.
func ReadTrack(path string) (Track, error) {
	track := Track{
		Path:   path,
		Artist: UnknownArtist,
		Title:  UnknownTitle,
		Album:  UnknownAlbum,
	}
	format, ok := DetectFormat(path)
	if !ok {
		return track, fmt.Errorf("unsupported audio format: %s", filepath.Ext(path))
	}
	track.Format = format

	var (
		artist, title, album string
		err                  error
	)
	switch format {
	case FormatMP3:
		artist, title, album, err = readMP3(path)
	case FormatFLAC:
		artist, title, album, err = readFLAC(path)
	}
	if artist != "" {
		track.Artist = artist
	}
	if title != "" {
		track.Title = title
	}
	if album != "" {
		track.Album = album
	}
	return track, err
}

// SetAlbum rewrites the album tag in place.
func SetAlbum(path, album string) error {
	format, ok := DetectFormat(path)
	if !ok {
		return fmt.Errorf("unsupported audio format: %s", filepath.Ext(path))
	}
	switch format {
	case FormatMP3:
		return setAlbumMP3(path, album)
	default:
		return setAlbumFLAC(path, album)
	}
}

// HasArt reports whether the file already carries embedded cover art.
func HasArt(path string) (bool, error) {
	format, ok := DetectFormat(path)
	if !ok {
		return false, fmt.Errorf("unsupported audio format: %s", filepath.Ext(path))
	}
	switch format {
	case FormatMP3:
		return hasArtMP3(path)
	default:
		return hasArtFLAC(path)
	}
}

// AttachArt embeds JPEG cover art, replacing any existing front cover.
func AttachArt(path string, jpegData []byte) error {
	format, ok := DetectFormat(path)
	if !ok {
		return fmt.Errorf("unsupported audio format: %s", filepath.Ext(path))
	}
	switch format {
	case FormatMP3:
		return attachArtMP3(path, jpegData)
	default:
		return attachArtFLAC(path, jpegData)
	}
}
