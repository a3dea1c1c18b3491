package aeronet

import (
	"strings"
)

// DefaultDelimiter separates fields in AERONET text exports.
const DefaultDelimiter = ","

// Record is one data line split into positional cells.
type Record []string

// ParseRecord splits a line on delimiter. There is no quoting or escaping:
// fields cannot contain the delimiter. The line terminator is dropped and an
// empty trailing field is preserved, so joining the result with delimiter
// reproduces the line.
func ParseRecord(line, delimiter string) Record {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return strings.Split(line, delimiter)
}

// Cell returns the value at position i. ok is false when the record is
// shorter than i+1 fields.
func (r Record) Cell(i int) (value string, ok bool) {
	if i < 0 || i >= len(r) {
		return "", false
	}
	return r[i], true
}

// Header is the schema derived once from the header line.
type Header struct {
	Fields    []string
	DateField string
	TimeField string

	index map[string]int
}

// NewHeader builds the header schema. When a name repeats, the first
// position wins for lookups.
func NewHeader(fields []string) *Header {
	h := &Header{
		Fields: fields,
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if _, seen := h.index[f]; !seen {
			h.index[f] = i
		}
		if h.DateField == "" && strings.Contains(f, DateMarker) {
			h.DateField = f
		} else if h.TimeField == "" && strings.Contains(f, TimeMarker) {
			h.TimeField = f
		}
	}
	return h
}

// Len returns the number of header fields.
func (h *Header) Len() int { return len(h.Fields) }

// Index returns the position of the named field.
func (h *Header) Index(name string) (int, bool) {
	i, ok := h.index[name]
	return i, ok
}

// LocateDateTimeFields returns the names of the date and time columns.
func (h *Header) LocateDateTimeFields() (dateField, timeField string, err error) {
	var missing []string
	if h.DateField == "" {
		missing = append(missing, DateMarker)
	}
	if h.TimeField == "" {
		missing = append(missing, TimeMarker)
	}
	if len(missing) > 0 {
		return "", "", &SchemaError{Missing: missing}
	}
	return h.DateField, h.TimeField, nil
}

// IsTemporal reports whether name is a date, time or day-of-year column.
// Those columns are never offered for plotting.
func IsTemporal(name string) bool {
	return strings.Contains(name, DateMarker) ||
		strings.Contains(name, TimeMarker) ||
		strings.Contains(strings.ToLower(name), "day")
}

// PlottableFields lists the fields drawn by an "all plots" request. Besides
// temporal columns it skips quality level, site name and processing date
// columns.
func (h *Header) PlottableFields() []string {
	var out []string
	for _, f := range h.Fields {
		lower := strings.ToLower(f)
		if IsTemporal(f) ||
			strings.Contains(lower, "level") ||
			strings.Contains(lower, "name") ||
			strings.Contains(lower, "processed") {
			continue
		}
		out = append(out, f)
	}
	return out
}

// MatchField finds the field whose name equals choice, ignoring case.
func (h *Header) MatchField(choice string) (string, bool) {
	for _, f := range h.Fields {
		if IsTemporal(f) {
			continue
		}
		if strings.EqualFold(f, choice) {
			return f, true
		}
	}
	return "", false
}

// MatchKeyword returns every non-temporal field containing keyword,
// ignoring case.
func (h *Header) MatchKeyword(keyword string) []string {
	keyword = strings.ToLower(keyword)
	var out []string
	for _, f := range h.Fields {
		if IsTemporal(f) {
			continue
		}
		if strings.Contains(strings.ToLower(f), keyword) {
			out = append(out, f)
		}
	}
	return out
}
