package library

import (
	"os"
	"path/filepath"
	"testing"

	"tonearm/internal/tags"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanIndexesTripleDepthOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Sia", "1000 Forms of Fear", "Chandelier.mp3"))
	writeFile(t, filepath.Join(root, "Sia", "Unknown Album", "Alive.flac"))
	writeFile(t, filepath.Join(root, "stray.mp3"))                                // too shallow
	writeFile(t, filepath.Join(root, "A", "B", "C", "deep.mp3"))                  // too deep
	writeFile(t, filepath.Join(root, "Sia", "1000 Forms of Fear", "cover.jpg"))  // not audio

	index, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if index.Len() != 2 {
		t.Fatalf("Len = %d, want 2: %+v", index.Len(), index.Entries())
	}

	entry, ok := index.Lookup("Sia", "1000 Forms of Fear", "Chandelier")
	if !ok {
		t.Fatal("expected Chandelier to be indexed")
	}
	if entry.Path != filepath.Join(root, "Sia", "1000 Forms of Fear", "Chandelier.mp3") {
		t.Errorf("path = %q", entry.Path)
	}
}

func TestLookupIsCaseAndDiacriticInsensitive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Sigur Rós", "Ágætis byrjun", "Svefn-g-englar.flac"))

	index, err := Scan(root)
	if err != nil {
		t.Fatal(err)
	}
	if !index.Contains("sigur ros", "ágætis byrjun", "SVEFN-G-ENGLAR") {
		t.Error("diacritic/case variant should match")
	}
}

func TestResolvedPlacement(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Sia", "1000 Forms of Fear", "Chandelier.mp3"))
	writeFile(t, filepath.Join(root, "Sia", "Unknown Album", "Alive.mp3"))

	index, err := Scan(root)
	if err != nil {
		t.Fatal(err)
	}

	entry, ok := index.ResolvedPlacement("sia", "chandelier")
	if !ok {
		t.Fatal("expected a resolved placement for Chandelier")
	}
	if entry.Album != "1000 Forms of Fear" {
		t.Errorf("album = %q", entry.Album)
	}

	// An Unknown Album placement does not count as resolved.
	if _, ok := index.ResolvedPlacement("Sia", "Alive"); ok {
		t.Error("Unknown Album entry must not count as resolved")
	}
}

func TestAddRejectsDuplicateTriple(t *testing.T) {
	index, err := Scan(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	first := Entry{Artist: "Sia", Album: "1000 Forms of Fear", Title: "Chandelier", Path: "/a"}
	if err := index.Add(first); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	// Same identity, different casing.
	dup := Entry{Artist: "SIA", Album: "1000 forms of fear", Title: "chandelier", Path: "/b"}
	if err := index.Add(dup); err == nil {
		t.Error("expected duplicate add to fail")
	}
	if index.Len() != 1 {
		t.Errorf("Len = %d, want 1", index.Len())
	}
}

func TestRemoveThenAddAllowsMove(t *testing.T) {
	index, _ := Scan(t.TempDir())
	entry := Entry{Artist: "Sia", Album: tags.UnknownAlbum, Title: "Alive", Path: "/u"}
	if err := index.Add(entry); err != nil {
		t.Fatal(err)
	}

	index.Remove(entry.Artist, entry.Album, entry.Title)
	moved := Entry{Artist: "Sia", Album: "This Is Acting", Title: "Alive", Path: "/r"}
	if err := index.Add(moved); err != nil {
		t.Fatalf("Add after Remove: %v", err)
	}
	if index.Contains("Sia", tags.UnknownAlbum, "Alive") {
		t.Error("old placement should be gone")
	}
}

func TestUnknownAlbumEntries(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Sia", "Unknown Album", "Alive.mp3"))
	writeFile(t, filepath.Join(root, "Sia", "Unknown Album", "Bird Set Free.mp3"))
	writeFile(t, filepath.Join(root, "Sia", "This Is Acting", "Cheap Thrills.mp3"))

	index, err := Scan(root)
	if err != nil {
		t.Fatal(err)
	}
	unknowns := index.UnknownAlbumEntries()
	if len(unknowns) != 2 {
		t.Fatalf("got %d unknowns, want 2", len(unknowns))
	}
	// Deterministic path order.
	if unknowns[0].Title != "Alive" || unknowns[1].Title != "Bird Set Free" {
		t.Errorf("order = %q, %q", unknowns[0].Title, unknowns[1].Title)
	}
}

func TestPathForSanitizesComponents(t *testing.T) {
	index, _ := Scan(t.TempDir())
	got := index.PathFor("AC/DC", "Back in Black?", "Hells Bells", ".MP3")
	want := filepath.Join(index.Root(), "AC-DC", "Back in Black", "Hells Bells.mp3")
	if got != want {
		t.Errorf("PathFor = %q, want %q", got, want)
	}
}

func TestPruneRemovesEmptyChainButNotRoot(t *testing.T) {
	root := t.TempDir()
	albumDir := filepath.Join(root, "Sia", "Unknown Album")
	if err := os.MkdirAll(albumDir, 0o755); err != nil {
		t.Fatal(err)
	}

	index, err := Scan(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := index.Prune(albumDir); err != nil {
		t.Fatalf("Prune: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "Sia")); !os.IsNotExist(err) {
		t.Error("empty artist folder should be pruned")
	}
	if _, err := os.Stat(root); err != nil {
		t.Errorf("library root must survive: %v", err)
	}
}

func TestPruneStopsAtNonEmptyParent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Sia", "This Is Acting", "Alive.mp3"))
	unknownDir := filepath.Join(root, "Sia", "Unknown Album")
	if err := os.MkdirAll(unknownDir, 0o755); err != nil {
		t.Fatal(err)
	}

	index, err := Scan(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := index.Prune(unknownDir); err != nil {
		t.Fatalf("Prune: %v", err)
	}

	if _, err := os.Stat(unknownDir); !os.IsNotExist(err) {
		t.Error("empty Unknown Album folder should be pruned")
	}
	if _, err := os.Stat(filepath.Join(root, "Sia")); err != nil {
		t.Errorf("artist folder with remaining album must survive: %v", err)
	}
}

func TestPruneIgnoresNonEmptyDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Sia", "Unknown Album", "Alive.mp3"))

	index, err := Scan(root)
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(root, "Sia", "Unknown Album")
	if err := index.Prune(dir); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("non-empty dir must not be removed: %v", err)
	}
}
