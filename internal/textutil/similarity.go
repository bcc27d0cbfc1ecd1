package textutil

import "github.com/hbollon/go-edlib"

// Similarity returns a fuzzy similarity in [0, 1] between two strings after
// normalization. Token order is ignored: "Furler Sia" scores 1.0 against
// "Sia Furler". Falls back to Jaro-Winkler on the token-sorted forms for
// near-miss spellings.
func Similarity(a, b string) float64 {
	keyA := TokenSortKey(a)
	keyB := TokenSortKey(b)
	if keyA == "" || keyB == "" {
		return 0
	}
	if keyA == keyB {
		return 1
	}
	sim, err := edlib.StringsSimilarity(keyA, keyB, edlib.JaroWinkler)
	if err != nil {
		return 0
	}
	return float64(sim)
}
