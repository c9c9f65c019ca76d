package export

import (
	"bytes"
	"io"
	"strings"
)

// WriteCSV writes the header line followed by one line per row, every cell
// double-quoted, lines joined by "\n" with no trailing newline.
func WriteCSV(w io.Writer, t Table) error {
	var b strings.Builder
	b.WriteString(strings.Join(t.Headers, ","))
	for _, row := range t.Rows {
		b.WriteByte('\n')
		for i, cell := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
			b.WriteByte('"')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// CSV returns t as CSV bytes.
func CSV(t Table) []byte {
	var buf bytes.Buffer
	WriteCSV(&buf, t)
	return buf.Bytes()
}
