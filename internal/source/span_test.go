package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRange_ShiftRight(t *testing.T) {
	tests := []struct {
		name     string
		rng      Range
		shift    uint32
		expected Range
	}{
		{
			name:     "both bounds",
			rng:      Span(2, 5),
			shift:    2,
			expected: Span(4, 7),
		},
		{
			name:     "start only",
			rng:      At(3),
			shift:    4,
			expected: At(7),
		},
		{
			name:     "end only",
			rng:      Range{End: 9, HasEnd: true},
			shift:    1,
			expected: Range{End: 10, HasEnd: true},
		},
		{
			name:     "empty range stays empty",
			rng:      Range{},
			shift:    10,
			expected: Range{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rng.ShiftRight(tt.shift); got != tt.expected {
				t.Fatalf("ShiftRight(%d) = %+v, want %+v", tt.shift, got, tt.expected)
			}
		})
	}
}

func TestLeadingSpace(t *testing.T) {
	tests := map[string]uint32{
		"":             0,
		"x":            0,
		"  x":          2,
		"\n\t <div/>  ": 3,
		"   ":          3,
		" x":      2, // NBSP is two bytes in UTF-8
	}
	for in, want := range tests {
		if got := LeadingSpace(in); got != want {
			t.Errorf("LeadingSpace(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestResolve(t *testing.T) {
	text := "ab\ncd\n\nef"
	cases := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{Line: 1, Col: 1}},
		{2, LineCol{Line: 1, Col: 3}},
		{3, LineCol{Line: 2, Col: 1}},
		{7, LineCol{Line: 4, Col: 1}},
		{100, LineCol{Line: 4, Col: 3}},
	}
	for _, c := range cases {
		if got := Resolve(text, c.off); got != c.want {
			t.Errorf("Resolve(%d) = %+v, want %+v", c.off, got, c.want)
		}
	}
}

func TestReadTemplateNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.html")
	content := []byte{0xEF, 0xBB, 0xBF}
	content = append(content, []byte("<p>\r\né</p>\r\n")...)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := ReadTemplate(path)
	if err != nil {
		t.Fatalf("ReadTemplate: %v", err)
	}
	if want := "<p>\n\u00e9</p>\n"; got != want {
		t.Fatalf("ReadTemplate = %q, want %q", got, want)
	}
}

func TestLines(t *testing.T) {
	got := Lines("a\n\nb\n")
	want := []string{"a", "", "b", ""}
	if len(got) != len(want) {
		t.Fatalf("Lines = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Lines = %q, want %q", got, want)
		}
	}
}
