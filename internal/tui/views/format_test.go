package views

import (
	"testing"

	"github.com/lcamargo/docchat/internal/model"
)

func TestFormatSize(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{0, "0 Bytes"},
		{512, "512 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1048576, "1 MB"},
		{2621440, "2.5 MB"},
		{1073741824, "1 GB"},
	}
	for _, tc := range cases {
		if got := formatSize(tc.bytes); got != tc.want {
			t.Errorf("formatSize(%d) = %q, want %q", tc.bytes, got, tc.want)
		}
	}
}

func TestFileKind(t *testing.T) {
	cases := []struct {
		filename string
		declared string
		want     string
	}{
		{"report.pdf", "", "PDF"},
		{"report", "application/pdf", "PDF"},
		{"data.csv", "", "Sheet"},
		{"data.xlsx", "", "Sheet"},
		{"letter.docx", "", "Doc"},
		{"notes.md", "", "Text"},
		{"notes.txt", "", "Text"},
		{"blob.bin", "", "File"},
	}
	for _, tc := range cases {
		if got := fileKind(tc.filename, tc.declared); got != tc.want {
			t.Errorf("fileKind(%q, %q) = %q, want %q", tc.filename, tc.declared, got, tc.want)
		}
	}
}

func TestSanitizeForTerminal(t *testing.T) {
	in := "ok‍thumbs\U0001F3FB end️"
	want := "okthumbs end"
	if got := sanitizeForTerminal(in); got != want {
		t.Errorf("sanitizeForTerminal = %q, want %q", got, want)
	}
}

func TestPopularCollectionsOrdersAndCaps(t *testing.T) {
	var input []*model.Collection
	for i := 0; i < 8; i++ {
		input = append(input, &model.Collection{
			ID:            string(rune('a' + i)),
			MessageCount:  i,
			DocumentCount: i,
		})
	}

	top := popularCollections(input, 6)
	if len(top) != 6 {
		t.Fatalf("expected 6 collections, got %d", len(top))
	}
	if top[0].ID != "h" {
		t.Errorf("expected most active first, got %q", top[0].ID)
	}
	for i := 1; i < len(top); i++ {
		prev := top[i-1].MessageCount + top[i-1].DocumentCount
		cur := top[i].MessageCount + top[i].DocumentCount
		if cur > prev {
			t.Errorf("not sorted at %d: %d > %d", i, cur, prev)
		}
	}
	if len(input) != 8 {
		t.Errorf("input mutated: len %d", len(input))
	}
}
