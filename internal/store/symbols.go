package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"
)

// ErrMarkerNotFound is returned when the document does not contain the
// expected stock-list marker region.
var ErrMarkerNotFound = errors.New("user stocks marker not found")

// stocksMarker matches the embedded stock-list region in the calendar page,
// e.g. `window.USER_STOCKS = ["AAPL", "MSFT"];`. The list may span lines.
var stocksMarker = regexp.MustCompile(`(?s)window\.USER_STOCKS\s*=\s*\[(.*?)\];`)

// SymbolDocument is the document-like store holding the tracked ticker list:
// a marker region inside a page served to the calendar UI. Load parses the
// region at startup; Save overwrites it wholesale.
type SymbolDocument struct {
	mu   sync.Mutex
	path string
}

// NewSymbolDocument points the store at the given document path.
func NewSymbolDocument(path string) *SymbolDocument {
	return &SymbolDocument{path: path}
}

// Load reads the tracked ticker list from the document. A missing document
// yields an empty list; a document without the marker yields
// ErrMarkerNotFound.
func (d *SymbolDocument) Load() ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	content, err := os.ReadFile(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read symbol document: %w", err)
	}

	m := stocksMarker.FindSubmatch(content)
	if m == nil {
		return nil, ErrMarkerNotFound
	}

	var symbols []string
	if err := json.Unmarshal([]byte("["+string(m[1])+"]"), &symbols); err != nil {
		return nil, fmt.Errorf("parse symbol list: %w", err)
	}
	return symbols, nil
}

// Save replaces the marker region with the given list. Returns
// ErrMarkerNotFound when the document has no marker to replace.
func (d *SymbolDocument) Save(symbols []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	content, err := os.ReadFile(d.path)
	if err != nil {
		return fmt.Errorf("read symbol document: %w", err)
	}

	loc := stocksMarker.FindIndex(content)
	if loc == nil {
		return ErrMarkerNotFound
	}

	if symbols == nil {
		symbols = []string{}
	}
	encoded, err := json.MarshalIndent(symbols, "", "  ")
	if err != nil {
		return fmt.Errorf("encode symbol list: %w", err)
	}

	var out []byte
	out = append(out, content[:loc[0]]...)
	out = append(out, []byte("window.USER_STOCKS = ")...)
	out = append(out, encoded...)
	out = append(out, ';')
	out = append(out, content[loc[1]:]...)

	if err := os.WriteFile(d.path, out, 0644); err != nil {
		return fmt.Errorf("write symbol document: %w", err)
	}
	return nil
}
