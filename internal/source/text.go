package source

import (
	"bytes"
	"os"

	"golang.org/x/text/unicode/norm"
)

// LineCol represents a human-readable position in a template.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based, bytes
}

// ReadTemplate loads a template file, strips a UTF-8 BOM, folds CRLF into LF
// and normalises the text to NFC so offsets stay stable across editors.
func ReadTemplate(path string) (string, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	return norm.NFC.String(string(content)), nil
}

// Resolve converts a byte offset in text into a line/column pair.
// Offsets past the end clamp to the last position.
func Resolve(text string, off uint32) LineCol {
	if int(off) > len(text) {
		off = Offset(len(text))
	}
	pos := LineCol{Line: 1, Col: 1}
	for i := 0; i < int(off); i++ {
		if text[i] == '\n' {
			pos.Line++
			pos.Col = 1
			continue
		}
		pos.Col++
	}
	return pos
}

// Lines splits text on LF, keeping empty trailing lines.
func Lines(text string) []string {
	out := make([]string, 0, 8)
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			out = append(out, text[start:i])
			start = i + 1
		}
	}
	return append(out, text[start:])
}
