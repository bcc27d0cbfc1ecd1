// Package textutil provides text normalization and comparison utilities:
// diacritic folding, token-order-insensitive keys, fuzzy string similarity,
// and filesystem-safe name sanitization.
package textutil
