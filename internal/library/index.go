// Package library maintains an in-memory index of the organized
// Artist/Album/Title tree. The directory structure is the source of
// truth: a track's identity is where it sits, not what its tags say.
package library

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"tonearm/internal/tags"
	"tonearm/internal/textutil"
)

// Entry is one indexed track.
type Entry struct {
	Artist string
	Album  string
	Title  string
	Path   string
}

// Key returns the normalized identity triple. Two tracks with the same
// key are duplicates regardless of casing, diacritics, or token order.
func (e Entry) Key() string {
	return TrackKey(e.Artist, e.Album, e.Title)
}

// TrackKey normalizes an (artist, album, title) triple into the
// index's identity key.
func TrackKey(artist, album, title string) string {
	return textutil.NormalizeComparable(artist) + "|" +
		textutil.NormalizeComparable(album) + "|" +
		textutil.NormalizeComparable(title)
}

// Index holds the library contents keyed by identity triple. All
// mutations go through the index so the uniqueness invariant holds
// while files move on disk.
type Index struct {
	root string

	mu      sync.RWMutex
	entries map[string]Entry
}

// Scan walks the library root and builds an index from the directory
// layout. Files deeper or shallower than Artist/Album/Title are
// ignored; they are not part of the organized tree.
func Scan(root string) (*Index, error) {
	index := &Index{
		root:    filepath.Clean(root),
		entries: make(map[string]Entry),
	}

	err := filepath.WalkDir(index.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := tags.DetectFormat(path); !ok {
			return nil
		}

		rel, err := filepath.Rel(index.root, path)
		if err != nil {
			return err
		}
		parts := strings.Split(rel, string(filepath.Separator))
		if len(parts) != 3 {
			return nil
		}

		entry := Entry{
			Artist: parts[0],
			Album:  parts[1],
			Title:  strings.TrimSuffix(parts[2], filepath.Ext(parts[2])),
			Path:   path,
		}
		// First occurrence wins; a colliding file is a pre-existing
		// duplicate that reconciliation will surface.
		if _, exists := index.entries[entry.Key()]; !exists {
			index.entries[entry.Key()] = entry
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan library: %w", err)
	}
	return index, nil
}

// Root returns the library root directory.
func (ix *Index) Root() string {
	return ix.root
}

// Len reports how many tracks are indexed.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Contains reports whether the identity triple is already present.
func (ix *Index) Contains(artist, album, title string) bool {
	_, ok := ix.Lookup(artist, album, title)
	return ok
}

// Lookup returns the entry for an identity triple.
func (ix *Index) Lookup(artist, album, title string) (Entry, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	entry, ok := ix.entries[TrackKey(artist, album, title)]
	return entry, ok
}

// Add records a new entry. It fails when the identity triple is
// already taken, which is how double-placement is prevented.
func (ix *Index) Add(entry Entry) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	key := entry.Key()
	if existing, ok := ix.entries[key]; ok {
		return fmt.Errorf("duplicate track %s / %s / %s (already at %s)",
			entry.Artist, entry.Album, entry.Title, existing.Path)
	}
	ix.entries[key] = entry
	return nil
}

// Remove drops an entry from the index.
func (ix *Index) Remove(artist, album, title string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.entries, TrackKey(artist, album, title))
}

// ResolvedPlacement finds an entry for (artist, title) that already
// sits under a real album. It is how re-ingesting an already resolved
// track into Unknown Album is prevented.
func (ix *Index) ResolvedPlacement(artist, title string) (Entry, bool) {
	artistKey := textutil.NormalizeComparable(artist)
	titleKey := textutil.NormalizeComparable(title)

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	for _, entry := range ix.entries {
		if entry.Album == tags.UnknownAlbum {
			continue
		}
		if textutil.NormalizeComparable(entry.Artist) == artistKey &&
			textutil.NormalizeComparable(entry.Title) == titleKey {
			return entry, true
		}
	}
	return Entry{}, false
}

// UnknownAlbumEntries lists tracks filed under the Unknown Album
// folder, ordered by path for deterministic processing.
func (ix *Index) UnknownAlbumEntries() []Entry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var unknowns []Entry
	for _, entry := range ix.entries {
		if entry.Album == tags.UnknownAlbum {
			unknowns = append(unknowns, entry)
		}
	}
	sortEntries(unknowns)
	return unknowns
}

// Entries returns every indexed track, ordered by path.
func (ix *Index) Entries() []Entry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	all := make([]Entry, 0, len(ix.entries))
	for _, entry := range ix.entries {
		all = append(all, entry)
	}
	sortEntries(all)
	return all
}

// PathFor computes the destination path for an identity triple,
// sanitizing each component for the filesystem.
func (ix *Index) PathFor(artist, album, title, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return filepath.Join(ix.root,
		textutil.SanitizePathComponent(artist),
		textutil.SanitizePathComponent(album),
		textutil.SanitizePathComponent(title)+strings.ToLower(ext))
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
}
