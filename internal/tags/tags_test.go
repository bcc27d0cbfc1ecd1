package tags

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		path   string
		format Format
		ok     bool
	}{
		{"song.mp3", FormatMP3, true},
		{"SONG.MP3", FormatMP3, true},
		{"track.flac", FormatFLAC, true},
		{"cover.jpg", "", false},
		{"noext", "", false},
	}
	for _, tc := range cases {
		format, ok := DetectFormat(tc.path)
		if format != tc.format || ok != tc.ok {
			t.Errorf("DetectFormat(%q) = (%q, %v), want (%q, %v)", tc.path, format, ok, tc.format, tc.ok)
		}
	}
}

func TestReadTrackUnsupportedFormat(t *testing.T) {
	track, err := ReadTrack("notes.txt")
	if err == nil {
		t.Error("expected error for unsupported format")
	}
	// The track must still be usable with sentinel fields.
	if track.Artist != UnknownArtist || track.Title != UnknownTitle || track.Album != UnknownAlbum {
		t.Errorf("track = %+v, want sentinels", track)
	}
	if !track.HasUnknownAlbum() {
		t.Error("sentinel album should report unknown")
	}
}

func TestReadTrackCorruptFLAC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.flac")
	if err := os.WriteFile(path, []byte("this is not a flac stream"), 0o644); err != nil {
		t.Fatal(err)
	}

	track, err := ReadTrack(path)
	if err == nil {
		t.Error("expected parse error for corrupt flac")
	}
	if track.Artist != UnknownArtist || track.Album != UnknownAlbum {
		t.Errorf("corrupt file should degrade to sentinels, got %+v", track)
	}
	if track.Format != FormatFLAC {
		t.Errorf("format = %q, want flac", track.Format)
	}
}

// An MP3 without an ID3 header parses as an empty tag, so writing an
// album and reading it back exercises the full round trip.
func TestMP3AlbumRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(path, []byte("\xff\xfbfake mpeg frames"), 0o644); err != nil {
		t.Fatal(err)
	}

	before, err := ReadTrack(path)
	if err != nil {
		t.Fatalf("ReadTrack before: %v", err)
	}
	if !before.HasUnknownAlbum() {
		t.Fatalf("untagged file should read as unknown album, got %+v", before)
	}

	if err := SetAlbum(path, "1000 Forms of Fear"); err != nil {
		t.Fatalf("SetAlbum: %v", err)
	}

	after, err := ReadTrack(path)
	if err != nil {
		t.Fatalf("ReadTrack after: %v", err)
	}
	if after.Album != "1000 Forms of Fear" {
		t.Errorf("album = %q", after.Album)
	}
}

func TestMP3AttachArt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(path, []byte("\xff\xfbfake mpeg frames"), 0o644); err != nil {
		t.Fatal(err)
	}

	hasArt, err := HasArt(path)
	if err != nil {
		t.Fatalf("HasArt: %v", err)
	}
	if hasArt {
		t.Fatal("fresh file should have no art")
	}

	if err := AttachArt(path, []byte{0xff, 0xd8, 0xff, 0xe0}); err != nil {
		t.Fatalf("AttachArt: %v", err)
	}
	hasArt, err = HasArt(path)
	if err != nil {
		t.Fatalf("HasArt after attach: %v", err)
	}
	if !hasArt {
		t.Error("art should be present after attach")
	}

	// Attaching again must not stack a second cover.
	if err := AttachArt(path, []byte{0xff, 0xd8, 0xff, 0xe1}); err != nil {
		t.Fatalf("second AttachArt: %v", err)
	}
}

func TestSetAlbumUnsupportedFormat(t *testing.T) {
	if err := SetAlbum("notes.txt", "Album"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
