// Command tonearm organizes audio files into a deduplicated
// Artist/Album/Title library, resolves missing album metadata against
// MusicBrainz and Last.fm, and embeds cover art found through Last.fm,
// Wikipedia, or DBpedia.
package main
