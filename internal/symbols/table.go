// Package symbols maps currency glyphs such as "€" or "Kč" to canonical
// three-letter codes.
package symbols

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/spf13/afero"

	"currencyconverter/internal/apperrors"
	"currencyconverter/internal/rates"
)

// Table is a read-only symbol to code mapping. It is safe for concurrent use.
type Table struct {
	bySymbol map[string]string
}

// Load reads a symbol table from the OS filesystem.
func Load(path string) (*Table, error) {
	return LoadFS(afero.NewOsFs(), path)
}

// LoadFS reads a tab-separated symbol table from fs. The first line is a
// header. Each following non-blank line holds a code and a symbol. When a
// symbol appears twice the later row wins.
func LoadFS(fs afero.Fs, path string) (*Table, error) {
	f, err := fs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.Wrap(apperrors.KindStorage, err, "symbol table %s not found", path)
		}
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "open symbol table %s", path)
	}
	defer f.Close() //nolint:errcheck // read-only

	t := &Table{bySymbol: make(map[string]string)}
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		if line == 1 {
			continue
		}
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) != 2 {
			return nil, apperrors.New(apperrors.KindFormat,
				"symbol table %s line %d: expected 2 tab-separated fields, got %d", path, line, len(fields))
		}
		code := strings.TrimSpace(fields[0])
		symbol := strings.TrimSpace(fields[1])
		if code == "" || symbol == "" {
			return nil, apperrors.New(apperrors.KindFormat,
				"symbol table %s line %d: empty code or symbol", path, line)
		}
		t.bySymbol[symbol] = code
	}
	if err := sc.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "read symbol table %s", path)
	}

	return t, nil
}

// Lookup returns the code registered for symbol.
func (t *Table) Lookup(symbol string) (string, bool) {
	if t == nil {
		return "", false
	}
	code, ok := t.bySymbol[symbol]
	return code, ok
}

// Len returns the number of distinct symbols.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.bySymbol)
}

// Resolve turns a code or symbol into a code known to snap. Codes already in
// the snapshot are returned unchanged; symbols are looked up in the table;
// lower-case codes are accepted as a last resort.
func (t *Table) Resolve(identifier string, snap *rates.Snapshot) (string, error) {
	if snap.Has(identifier) {
		return identifier, nil
	}
	if code, ok := t.Lookup(identifier); ok && snap.Has(code) {
		return code, nil
	}
	if upper := strings.ToUpper(identifier); snap.Has(upper) {
		return upper, nil
	}
	return "", apperrors.New(apperrors.KindUnknownCurrency, "unknown currency %q", identifier)
}
