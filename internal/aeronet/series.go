package aeronet

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MissingValue is the AERONET fill value for absent measurements.
const MissingValue = -999.0

// IsMissing reports whether v is one of the missing-measurement sentinels.
// Zero is treated as missing, never as a measured zero.
func IsMissing(v float64) bool {
	return v == 0 || v == MissingValue
}

// FieldSeries is one column extracted as parallel slices in file order.
// Dates and Times carry the (optionally converted) tokens; Instants always
// carry the original UTC instant of each record.
type FieldSeries struct {
	Field    string
	Values   []float64
	Dates    []DateToken
	Times    []TimeToken
	Instants []time.Time
}

// Len returns the number of entries.
func (s *FieldSeries) Len() int { return len(s.Values) }

// SeriesOptions converts the UTC date/time columns before aggregation.
// Location takes precedence over OffsetHours.
type SeriesOptions struct {
	Location    *time.Location
	OffsetHours int
}

// Series extracts the named field. Empty or missing cells become
// MissingValue; any other non-numeric cell is a ValueParseError.
func (d *Dataset) Series(field string, opts SeriesOptions) (*FieldSeries, error) {
	dateField, timeField, err := d.Header.LocateDateTimeFields()
	if err != nil {
		return nil, err
	}
	col, ok := d.Header.Index(field)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFieldNotFound, field)
	}
	dateCol, _ := d.Header.Index(dateField)
	timeCol, _ := d.Header.Index(timeField)

	n := len(d.records)
	s := &FieldSeries{
		Field:    field,
		Values:   make([]float64, 0, n),
		Dates:    make([]DateToken, 0, n),
		Times:    make([]TimeToken, 0, n),
		Instants: make([]time.Time, 0, n),
	}

	for i, rec := range d.records {
		raw, _ := rec.Cell(col)
		v, err := parseValue(raw)
		if err != nil {
			return nil, &ValueParseError{Field: field, Record: i, Value: raw, Err: err}
		}

		rawDate, _ := rec.Cell(dateCol)
		rawTime, _ := rec.Cell(timeCol)
		date, tod := DateToken(rawDate), TimeToken(rawTime)
		if !date.Valid() {
			return nil, &ValueParseError{Field: dateField, Record: i, Value: rawDate, Err: fmt.Errorf("want %s", DateMarker)}
		}
		if !tod.Valid() {
			return nil, &ValueParseError{Field: timeField, Record: i, Value: rawTime, Err: fmt.Errorf("want %s", TimeMarker)}
		}

		instant, err := ParseInstant(date, tod)
		if err != nil {
			return nil, &ValueParseError{Field: dateField, Record: i, Value: rawDate + " " + rawTime, Err: err}
		}

		switch {
		case opts.Location != nil:
			date, tod, err = TokensIn(date, tod, opts.Location)
		case opts.OffsetHours != 0:
			date, tod, err = ShiftTokens(date, tod, opts.OffsetHours)
		}
		if err != nil {
			return nil, &ValueParseError{Field: timeField, Record: i, Value: rawTime, Err: err}
		}

		s.Values = append(s.Values, v)
		s.Dates = append(s.Dates, date)
		s.Times = append(s.Times, tod)
		s.Instants = append(s.Instants, instant)
	}
	return s, nil
}

func parseValue(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return MissingValue, nil
	}
	return strconv.ParseFloat(raw, 64)
}

// SiteCoordinates reads the station latitude and longitude from the first
// record that carries both, using the Site_Latitude / Site_Longitude columns
// present in AERONET exports.
func (d *Dataset) SiteCoordinates() (lat, lon float64, ok bool) {
	latCol, lonCol := -1, -1
	for i, f := range d.Header.Fields {
		lower := strings.ToLower(f)
		switch {
		case latCol < 0 && strings.Contains(lower, "latitude"):
			latCol = i
		case lonCol < 0 && strings.Contains(lower, "longitude"):
			lonCol = i
		}
	}
	if latCol < 0 || lonCol < 0 {
		return 0, 0, false
	}
	for _, rec := range d.records {
		rawLat, ok1 := rec.Cell(latCol)
		rawLon, ok2 := rec.Cell(lonCol)
		if !ok1 || !ok2 {
			continue
		}
		la, err1 := strconv.ParseFloat(strings.TrimSpace(rawLat), 64)
		lo, err2 := strconv.ParseFloat(strings.TrimSpace(rawLon), 64)
		if err1 == nil && err2 == nil && la != MissingValue && lo != MissingValue {
			return la, lo, true
		}
	}
	return 0, 0, false
}
