package textutil

import "testing"

func TestFoldDiacritics(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Tiësto", "Tiesto"},
		{"Beyoncé", "Beyonce"},
		{"Sigur Rós", "Sigur Ros"},
		{"plain ascii", "plain ascii"},
	}
	for _, tt := range tests {
		if got := FoldDiacritics(tt.in); got != tt.want {
			t.Errorf("FoldDiacritics(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeComparable(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AC/DC", "ac dc"},
		{"Simon & Garfunkel", "simon and garfunkel"},
		{"  The  Weeknd ", "the weeknd"},
		{"Mötley Crüe", "motley crue"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeComparable(tt.in); got != tt.want {
			t.Errorf("NormalizeComparable(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTokenSortKeyIgnoresOrder(t *testing.T) {
	if TokenSortKey("Sia Furler") != TokenSortKey("Furler, Sia") {
		t.Fatal("expected token-order-insensitive keys to match")
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("Sia", "Sia"); got != 1 {
		t.Fatalf("identical strings should score 1, got %f", got)
	}
	if got := Similarity("Tiësto", "tiesto"); got != 1 {
		t.Fatalf("diacritic variant should score 1, got %f", got)
	}
	if got := Similarity("The Weeknd", "Weeknd, The"); got != 1 {
		t.Fatalf("token order should be ignored, got %f", got)
	}
	if got := Similarity("Sia", "Radiohead"); got > 0.6 {
		t.Fatalf("unrelated artists should score low, got %f", got)
	}
	if got := Similarity("", "anything"); got != 0 {
		t.Fatalf("empty input should score 0, got %f", got)
	}
}

func TestSanitizePathComponent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AC/DC", "AC-DC"},
		{`What's "This"?`, "What's This"},
		{"Trailing dots...", "Trailing dots"},
		{"", "Unknown"},
		{"???", "Unknown"},
		{"OK: Computer", "OK- Computer"},
	}
	for _, tt := range tests {
		if got := SanitizePathComponent(tt.in); got != tt.want {
			t.Errorf("SanitizePathComponent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
