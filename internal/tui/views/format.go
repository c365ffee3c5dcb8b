package views

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// formatSize renders a byte count the way the web UI did: two decimals,
// trailing zeros trimmed.
func formatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	units := []string{"Bytes", "KB", "MB", "GB"}
	size := float64(bytes)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	s := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", size), "0"), ".")
	return s + " " + units[i]
}

// fileKind maps a filename or declared type to a short label for the
// document table.
func fileKind(filename, declared string) string {
	t := strings.ToLower(declared)
	if t == "" {
		t = strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	}
	switch {
	case t == "pdf" || strings.Contains(t, "pdf"):
		return "PDF"
	case t == "xlsx" || t == "xls" || t == "csv" ||
		strings.Contains(t, "spreadsheet") || strings.Contains(t, "excel"):
		return "Sheet"
	case t == "doc" || t == "docx" ||
		strings.Contains(t, "word") || strings.Contains(t, "document"):
		return "Doc"
	case t == "md" || t == "txt" || strings.Contains(t, "text"):
		return "Text"
	default:
		return "File"
	}
}

func formatTimestamp(ms int64) string {
	if ms == 0 {
		return ""
	}
	t := time.UnixMilli(ms)
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("01/02")
}

// sanitizeForTerminal strips codepoints that break tcell cell-width
// accounting: zero width joiners, variation selectors, and emoji skin
// tone modifiers. Backend answers can carry any of them.
func sanitizeForTerminal(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r >= 0x1F3FB && r <= 0x1F3FF: // skin tones
		case r == 0x200D: // ZWJ
		case r >= 0xFE00 && r <= 0xFE0F: // variation selectors
		case r >= 0xE0100 && r <= 0xE01EF:
		default:
			b.WriteRune(r)
		}
		i += size
	}
	return b.String()
}
