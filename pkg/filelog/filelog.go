// Package filelog writes the per-session capture files: a raw decoded log, a
// pure-bytes binary log, a printable-only log, and an extracted-JSON log.
// These files are the capture of record; they are written even when the
// store is unavailable.
package filelog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/extract"
)

const separator = "================================================================================"

const timestampLayout = "2006-01-02 15:04:05.000000"

// Sink receives per-request capture output. The zero-value Discard sink
// drops everything, for runs with file logging disabled.
type Sink interface {
	WriteRaw(num int, ts time.Time, endpoint, fullURL, rawText string) error
	WriteBinary(num int, ts time.Time, data []byte) error
	WriteClean(num int, ts time.Time, cleanText string) error
	WriteJSON(num int, ts time.Time, extractor string, frags []extract.Fragment) error
	Close() error
}

// Writer appends capture output to the four session files under a log
// directory. Files are opened once and held for the session.
type Writer struct {
	mu     sync.Mutex
	raw    *os.File
	binary *os.File
	clean  *os.File
	json   *os.File
}

// NewWriter creates the log directory if needed and opens the session files.
// A failure here is fatal to the caller: without the files there is no
// capture of record.
func NewWriter(dir, sessionID string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	w := &Writer{}
	for _, f := range []struct {
		name string
		dst  **os.File
	}{
		{"raw_" + sessionID + ".log", &w.raw},
		{"binary_" + sessionID + ".bin", &w.binary},
		{"clean_" + sessionID + ".log", &w.clean},
		{"json_" + sessionID + ".log", &w.json},
	} {
		file, err := os.OpenFile(filepath.Join(dir, f.name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("opening %s: %w", f.name, err)
		}
		*f.dst = file
	}

	return w, nil
}

// WriteRaw appends the full decoded body with its request banner.
func (w *Writer) WriteRaw(num int, ts time.Time, endpoint, fullURL, rawText string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", separator)
	fmt.Fprintf(&b, "REQUEST #%d\n", num)
	fmt.Fprintf(&b, "Timestamp: %s\n", ts.Format(timestampLayout))
	fmt.Fprintf(&b, "Endpoint: %s\n", endpoint)
	fmt.Fprintf(&b, "Full URL: %s\n", fullURL)
	fmt.Fprintf(&b, "\nRAW DATA:\n%s\n%s\n\n", rawText, separator)

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := w.raw.WriteString(b.String())
	return err
}

// WriteBinary appends the unmodified body bytes between text banners so the
// file stays navigable while the payload stays byte-exact.
func (w *Writer) WriteBinary(num int, ts time.Time, data []byte) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", separator)
	fmt.Fprintf(&b, "REQUEST #%d\n", num)
	fmt.Fprintf(&b, "Timestamp: %s\n", ts.Format(timestampLayout))
	fmt.Fprintf(&b, "Size: %d bytes\n", len(data))
	fmt.Fprintf(&b, "%s\n", separator)

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.binary.WriteString(b.String()); err != nil {
		return err
	}
	if _, err := w.binary.Write(data); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w.binary, "\n%s\n\n", separator)
	return err
}

// WriteClean appends the printable-only rendering of the body.
func (w *Writer) WriteClean(num int, ts time.Time, cleanText string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", separator)
	fmt.Fprintf(&b, "REQUEST #%d\n", num)
	fmt.Fprintf(&b, "Timestamp: %s\n", ts.Format(timestampLayout))
	fmt.Fprintf(&b, "\nCLEAN TEXT (printable only):\n%s\n%s\n\n", cleanText, separator)

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := w.clean.WriteString(b.String())
	return err
}

// WriteJSON appends the extracted fragments, pretty-printed one per block.
func (w *Writer) WriteJSON(num int, ts time.Time, extractor string, frags []extract.Fragment) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", separator)
	fmt.Fprintf(&b, "REQUEST #%d\n", num)
	fmt.Fprintf(&b, "Timestamp: %s\n", ts.Format(timestampLayout))
	fmt.Fprintf(&b, "Extractor: %s\n", extractor)
	fmt.Fprintf(&b, "Valid JSON objects: %d\n\n", len(frags))
	for i, frag := range frags {
		fmt.Fprintf(&b, "-- Object #%d --\n", i+1)
		pretty, err := json.MarshalIndent(frag, "", "  ")
		if err != nil {
			return fmt.Errorf("rendering object %d: %w", i+1, err)
		}
		b.Write(pretty)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "%s\n\n", separator)

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := w.json.WriteString(b.String())
	return err
}

// Close closes all session files. Safe to call after a partial open.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var firstErr error
	for _, f := range []*os.File{w.raw, w.binary, w.clean, w.json} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Discard is a Sink that drops all output.
type Discard struct{}

func (Discard) WriteRaw(int, time.Time, string, string, string) error { return nil }
func (Discard) WriteBinary(int, time.Time, []byte) error              { return nil }
func (Discard) WriteClean(int, time.Time, string) error               { return nil }
func (Discard) WriteJSON(int, time.Time, string, []extract.Fragment) error {
	return nil
}
func (Discard) Close() error { return nil }
