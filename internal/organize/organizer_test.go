package organize

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"

	"tonearm/internal/library"
	"tonearm/internal/tags"
)

// writeMP3 creates a headerless MP3 that reads back with sentinel tags.
func writeMP3(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("\xff\xfbfake mpeg frames"), 0o644); err != nil {
		t.Fatal(err)
	}
}

// writeTaggedMP3 creates an MP3 carrying real artist/title/album tags.
func writeTaggedMP3(t *testing.T, path, artist, title, album string) {
	t.Helper()
	writeMP3(t, path)
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	defer tag.Close()
	tag.SetArtist(artist)
	tag.SetTitle(title)
	tag.SetAlbum(album)
	if err := tag.Save(); err != nil {
		t.Fatal(err)
	}
}

func newOrganizer(t *testing.T, libraryRoot string, opts Options) (*Organizer, *library.Index) {
	t.Helper()
	index, err := library.Scan(libraryRoot)
	if err != nil {
		t.Fatal(err)
	}
	return New(index, opts), index
}

func TestRunPlacesTaggedFile(t *testing.T) {
	source := t.TempDir()
	libraryRoot := t.TempDir()
	writeTaggedMP3(t, filepath.Join(source, "download.mp3"), "Sia", "Chandelier", "1000 Forms of Fear")

	organizer, index := newOrganizer(t, libraryRoot, Options{})
	summary, results, err := organizer.Run(context.Background(), source)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Placed != 1 || summary.Scanned != 1 {
		t.Errorf("summary = %+v", summary)
	}

	dest := filepath.Join(libraryRoot, "Sia", "1000 Forms of Fear", "Chandelier.mp3")
	if results[0].Dest != dest {
		t.Errorf("dest = %q, want %q", results[0].Dest, dest)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("placed file missing: %v", err)
	}
	// Default is copy, not move.
	if _, err := os.Stat(filepath.Join(source, "download.mp3")); err != nil {
		t.Errorf("source should remain on copy ingest: %v", err)
	}
	if !index.Contains("Sia", "1000 Forms of Fear", "Chandelier") {
		t.Error("index should contain the placement")
	}
}

func TestRunUntaggedFileGoesToUnknownAlbum(t *testing.T) {
	source := t.TempDir()
	libraryRoot := t.TempDir()
	writeMP3(t, filepath.Join(source, "mystery.mp3"))

	organizer, _ := newOrganizer(t, libraryRoot, Options{})
	summary, results, err := organizer.Run(context.Background(), source)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Placed != 1 {
		t.Errorf("summary = %+v", summary)
	}

	want := filepath.Join(libraryRoot, tags.UnknownArtist, tags.UnknownAlbum, tags.UnknownTitle+".mp3")
	if results[0].Dest != want {
		t.Errorf("dest = %q, want %q", results[0].Dest, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("file missing from Unknown Album: %v", err)
	}
}

func TestRunSkipsAlreadyResolvedTitle(t *testing.T) {
	source := t.TempDir()
	libraryRoot := t.TempDir()
	// Chandelier is already filed under a real album.
	writeTaggedMP3(t, filepath.Join(libraryRoot, "Sia", "1000 Forms of Fear", "Chandelier.mp3"),
		"Sia", "Chandelier", "1000 Forms of Fear")

	// Incoming copy carries artist and title but no album tag.
	incoming := filepath.Join(source, "chandelier-rip.mp3")
	writeMP3(t, incoming)
	tag, err := id3v2.Open(incoming, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	tag.SetArtist("Sia")
	tag.SetTitle("Chandelier")
	if err := tag.Save(); err != nil {
		t.Fatal(err)
	}
	tag.Close()

	organizer, index := newOrganizer(t, libraryRoot, Options{})
	summary, results, err := organizer.Run(context.Background(), source)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Duplicates != 1 || summary.Placed != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if results[0].Outcome != OutcomeDuplicate {
		t.Errorf("outcome = %q, want %q", results[0].Outcome, OutcomeDuplicate)
	}
	if index.Contains("Sia", tags.UnknownAlbum, "Chandelier") {
		t.Error("resolved title must not be re-added to Unknown Album")
	}
}

func TestRunSkipsDuplicates(t *testing.T) {
	source := t.TempDir()
	libraryRoot := t.TempDir()
	writeTaggedMP3(t, filepath.Join(source, "a.mp3"), "Sia", "Chandelier", "1000 Forms of Fear")
	writeTaggedMP3(t, filepath.Join(source, "b.mp3"), "Sia", "Chandelier", "1000 Forms of Fear")

	organizer, _ := newOrganizer(t, libraryRoot, Options{})
	summary, _, err := organizer.Run(context.Background(), source)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Placed != 1 || summary.Duplicates != 1 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestRunForceReplacesDuplicates(t *testing.T) {
	source := t.TempDir()
	libraryRoot := t.TempDir()
	writeTaggedMP3(t, filepath.Join(source, "a.mp3"), "Sia", "Chandelier", "1000 Forms of Fear")
	writeTaggedMP3(t, filepath.Join(source, "b.mp3"), "Sia", "Chandelier", "1000 Forms of Fear")

	organizer, _ := newOrganizer(t, libraryRoot, Options{Force: true})
	summary, _, err := organizer.Run(context.Background(), source)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Placed != 2 || summary.Duplicates != 0 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestRunMoveRemovesSource(t *testing.T) {
	source := t.TempDir()
	libraryRoot := t.TempDir()
	src := filepath.Join(source, "download.mp3")
	writeTaggedMP3(t, src, "Sia", "Chandelier", "1000 Forms of Fear")

	organizer, _ := newOrganizer(t, libraryRoot, Options{Move: true})
	if _, _, err := organizer.Run(context.Background(), source); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("move ingest should remove the source file")
	}
}

func TestRunSimulateTouchesNothing(t *testing.T) {
	source := t.TempDir()
	libraryRoot := t.TempDir()
	writeTaggedMP3(t, filepath.Join(source, "download.mp3"), "Sia", "Chandelier", "1000 Forms of Fear")

	organizer, _ := newOrganizer(t, libraryRoot, Options{Simulate: true})
	summary, _, err := organizer.Run(context.Background(), source)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Placed != 1 {
		t.Errorf("summary = %+v", summary)
	}
	entries, err := os.ReadDir(libraryRoot)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Error("simulate must not write to the library")
	}
}

func TestRunIgnoresNonAudioFiles(t *testing.T) {
	source := t.TempDir()
	libraryRoot := t.TempDir()
	if err := os.WriteFile(filepath.Join(source, "cover.jpg"), []byte("img"), 0o644); err != nil {
		t.Fatal(err)
	}

	organizer, _ := newOrganizer(t, libraryRoot, Options{})
	summary, _, err := organizer.Run(context.Background(), source)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Scanned != 0 {
		t.Errorf("summary = %+v", summary)
	}
}
