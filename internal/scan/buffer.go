// Package scan implements the scan-and-issue and scan-and-return workflows:
// a keyboard-wedge barcode buffer, the list of scanned assets, fingerprint
// authentication against the officer roster, and the sessions that hold this
// state between page requests.
package scan

import "strings"

// KeyEnter is the key name a barcode reader sends after the identifier.
const KeyEnter = "Enter"

// Buffer accumulates keystrokes from a barcode reader until Enter.
type Buffer struct {
	b strings.Builder
}

// Key feeds one key event. Single characters are appended; Enter returns the
// trimmed buffer and resets it. Other named keys (Shift, Tab) are ignored.
func (b *Buffer) Key(key string) (id string, done bool) {
	if key == KeyEnter {
		id = strings.TrimSpace(b.b.String())
		b.b.Reset()
		return id, true
	}
	if len([]rune(key)) == 1 {
		b.b.WriteString(key)
	}
	return "", false
}

// Feed splits raw text into key events, treating CR and LF as Enter, and
// returns every completed identifier in order.
func (b *Buffer) Feed(text string) []string {
	var ids []string
	for _, r := range text {
		key := string(r)
		if r == '\n' || r == '\r' {
			key = KeyEnter
		}
		if id, done := b.Key(key); done {
			ids = append(ids, id)
		}
	}
	return ids
}

// Pending returns the buffered characters not yet terminated by Enter.
func (b *Buffer) Pending() string {
	return b.b.String()
}

// Reset discards buffered characters.
func (b *Buffer) Reset() {
	b.b.Reset()
}
