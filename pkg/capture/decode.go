package capture

import (
	"errors"
	"strings"
)

// ErrUndecodable is returned when a non-empty body yields no text at all
// after lenient decoding. The request is dropped without extraction.
var ErrUndecodable = errors.New("request body could not be decoded as text")

// DecodeBody interprets the raw body as UTF-8 text, dropping invalid byte
// sequences. The wire format mixes a binary envelope with embedded JSON, so
// invalid sequences are expected and silently discarded.
func DecodeBody(raw []byte) (string, error) {
	text := strings.ToValidUTF8(string(raw), "")
	if len(raw) > 0 && text == "" {
		return "", ErrUndecodable
	}

	return text, nil
}

// FilterPrintable strips non-printable characters, keeping only readable
// ASCII text plus common whitespace. Used for the clean file rendering.
func FilterPrintable(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		switch {
		case r >= 0x20 && r < 0x7f:
			b.WriteRune(r)
		case r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f':
			b.WriteRune(r)
		}
	}

	return b.String()
}
