package aeronet

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseRecordRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		fields int
	}{
		{name: "single field", line: "Modesto", fields: 1},
		{name: "typical record", line: "01:06:2023,03:00:00,152,0.0712,-999", fields: 5},
		{name: "empty trailing field", line: "a,b,", fields: 3},
		{name: "empty fields", line: ",,", fields: 3},
		{name: "empty line", line: "", fields: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRecord(tt.line, ",")
			if len(got) != tt.fields {
				t.Fatalf("got %d fields, want %d", len(got), tt.fields)
			}
			if joined := strings.Join(got, ","); joined != tt.line {
				t.Errorf("rejoined %q, want %q", joined, tt.line)
			}
		})
	}
}

func TestParseRecordStripsTerminator(t *testing.T) {
	for _, line := range []string{"a,b,c\n", "a,b,c\r\n"} {
		got := ParseRecord(line, "")
		want := Record{"a", "b", "c"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ParseRecord(%q) = %q, want %q", line, got, want)
		}
	}
}

func TestRecordCell(t *testing.T) {
	rec := Record{"x", "y"}
	if v, ok := rec.Cell(1); !ok || v != "y" {
		t.Errorf("Cell(1) = %q, %v", v, ok)
	}
	if _, ok := rec.Cell(2); ok {
		t.Error("Cell(2) on a two-field record should report missing")
	}
	if _, ok := rec.Cell(-1); ok {
		t.Error("Cell(-1) should report missing")
	}
}

func TestHeaderLocateDateTimeFields(t *testing.T) {
	tests := []struct {
		name     string
		fields   []string
		wantDate string
		wantTime string
		missing  []string
	}{
		{
			name:     "both present",
			fields:   []string{"Date(dd:mm:yyyy)", "Time(hh:mm:ss)", "AOD_870nm"},
			wantDate: "Date(dd:mm:yyyy)",
			wantTime: "Time(hh:mm:ss)",
		},
		{
			name:    "time missing",
			fields:  []string{"Date(dd:mm:yyyy)", "AOD_870nm"},
			missing: []string{TimeMarker},
		},
		{
			name:    "both missing",
			fields:  []string{"AOD_870nm"},
			missing: []string{DateMarker, TimeMarker},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHeader(tt.fields)
			d, tm, err := h.LocateDateTimeFields()
			if tt.missing != nil {
				var schemaErr *SchemaError
				if !errors.As(err, &schemaErr) {
					t.Fatalf("expected SchemaError, got %v", err)
				}
				if !reflect.DeepEqual(schemaErr.Missing, tt.missing) {
					t.Errorf("missing = %v, want %v", schemaErr.Missing, tt.missing)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d != tt.wantDate || tm != tt.wantTime {
				t.Errorf("got (%q, %q), want (%q, %q)", d, tm, tt.wantDate, tt.wantTime)
			}
		})
	}
}

func TestHeaderSelection(t *testing.T) {
	h := NewHeader([]string{
		"Date(dd:mm:yyyy)", "Time(hh:mm:ss)", "Day_of_Year",
		"AOD_1640nm", "AOD_870nm", "Precipitable_Water(cm)",
		"Data_Quality_Level", "AERONET_Site_Name", "Last_Date_Processed",
	})

	wantAll := []string{"AOD_1640nm", "AOD_870nm", "Precipitable_Water(cm)"}
	if got := h.PlottableFields(); !reflect.DeepEqual(got, wantAll) {
		t.Errorf("PlottableFields() = %v, want %v", got, wantAll)
	}

	if got, ok := h.MatchField("aod_870NM"); !ok || got != "AOD_870nm" {
		t.Errorf("MatchField = %q, %v", got, ok)
	}
	if _, ok := h.MatchField("day_of_year"); ok {
		t.Error("temporal fields must not be selectable")
	}

	wantAOD := []string{"AOD_1640nm", "AOD_870nm"}
	if got := h.MatchKeyword("aod"); !reflect.DeepEqual(got, wantAOD) {
		t.Errorf("MatchKeyword(aod) = %v, want %v", got, wantAOD)
	}
	if got := h.MatchKeyword("ozone"); len(got) != 0 {
		t.Errorf("MatchKeyword(ozone) = %v, want none", got)
	}
}
