// Package aeronet reads AERONET ground-station text exports: a six-line
// preamble, a header line and comma separated records aligned positionally
// with the header.
package aeronet

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineSize bounds a single line; all-points exports carry a few hundred
// columns per record.
const maxLineSize = 1024 * 1024

// Preamble holds the free-text lines that precede the header.
type Preamble struct {
	Version         string `json:"version"`
	Location        string `json:"location"`
	ProcessingLevel string `json:"processing_level"`
	Description     string `json:"description"`
	Contact         string `json:"contact"`
	Reference       string `json:"reference"`
}

// Dataset is an immutable snapshot of one parsed source file.
type Dataset struct {
	Source    string
	Delimiter string
	Preamble  Preamble
	Header    *Header

	rawHeader string
	records   []Record
	ragged    int
}

// LoadOptions controls parsing.
type LoadOptions struct {
	Delimiter string
}

// DefaultLoadOptions returns the options for standard AERONET exports.
func DefaultLoadOptions() *LoadOptions {
	return &LoadOptions{Delimiter: DefaultDelimiter}
}

// LoadFile parses the file at path.
func LoadFile(path string, opts *LoadOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ds, err := Load(f, opts)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	ds.Source = path
	return ds, nil
}

// Load parses an AERONET export from r in a single sequential pass.
func Load(r io.Reader, opts *LoadOptions) (*Dataset, error) {
	if opts == nil {
		opts = DefaultLoadOptions()
	}
	delim := opts.Delimiter
	if delim == "" {
		delim = DefaultDelimiter
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	preamble := make([]string, 0, 6)
	for len(preamble) < 6 && scanner.Scan() {
		preamble = append(preamble, trimTerminator(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(preamble) < 6 || !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, ErrTruncatedSource
	}
	rawHeader := trimTerminator(scanner.Text())

	ds := &Dataset{
		Delimiter: delim,
		Preamble: Preamble{
			Version:         preamble[0],
			Location:        preamble[1],
			ProcessingLevel: preamble[2],
			Description:     preamble[3],
			Contact:         preamble[4],
			Reference:       preamble[5],
		},
		Header:    NewHeader(ParseRecord(rawHeader, delim)),
		rawHeader: rawHeader,
	}

	for scanner.Scan() {
		line := trimTerminator(scanner.Text())
		if line == "" {
			continue
		}
		rec := ParseRecord(line, delim)
		if len(rec) != ds.Header.Len() {
			ds.ragged++
		}
		ds.records = append(ds.records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return ds, nil
}

func trimTerminator(s string) string {
	return strings.TrimSuffix(s, "\r")
}

// Len returns the number of data records.
func (d *Dataset) Len() int { return len(d.records) }

// RaggedRecords counts records whose field count differs from the header.
func (d *Dataset) RaggedRecords() int { return d.ragged }

// Record returns the i-th data record. The returned slice must not be modified.
func (d *Dataset) Record(i int) (Record, bool) {
	if i < 0 || i >= len(d.records) {
		return nil, false
	}
	return d.records[i], true
}

// Value returns the cell of record i under the named field.
func (d *Dataset) Value(i int, field string) (string, bool) {
	rec, ok := d.Record(i)
	if !ok {
		return "", false
	}
	col, ok := d.Header.Index(field)
	if !ok {
		return "", false
	}
	return rec.Cell(col)
}

// Column returns every cell of the named field in file order. Cells missing
// from short records are returned as empty strings.
func (d *Dataset) Column(field string) ([]string, error) {
	col, ok := d.Header.Index(field)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFieldNotFound, field)
	}
	out := make([]string, len(d.records))
	for i, rec := range d.records {
		out[i], _ = rec.Cell(col)
	}
	return out, nil
}

// String renders the dataset the way it appeared on disk.
func (d *Dataset) String() string {
	var b strings.Builder
	for _, line := range []string{
		d.Preamble.Version,
		d.Preamble.Location,
		d.Preamble.ProcessingLevel,
		d.Preamble.Description,
		d.Preamble.Contact,
		d.Preamble.Reference,
		d.rawHeader,
	} {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for _, rec := range d.records {
		b.WriteString(strings.Join(rec, d.Delimiter))
		b.WriteByte('\n')
	}
	return b.String()
}
