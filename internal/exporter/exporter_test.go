package exporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/chrissnell/aeronetwx/internal/analysis"
	"github.com/chrissnell/aeronetwx/internal/render"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func testReport() *analysis.BatchReport {
	labels := []string{"01:06:2023_night", "01:06:2023_day", "02:06:2023_night", "02:06:2023_day"}
	y := []float64{0.21, 0.25, 0.23, 0.31}
	sigma := []float64{0.01, 0.02, 0.01, 0.03}
	axis := analysis.BuildAxis(labels)
	fit, _ := analysis.FitCubic(y)

	series := func(field string, fit *analysis.FitResult) *analysis.PlotSeries {
		return &analysis.PlotSeries{
			Field:         field,
			WindowTitle:   field + " with 4 data points",
			XAxisCaption:  axis.Caption(),
			YAxisName:     analysis.YAxisName(field),
			X:             []float64{0, 1, 2, 3},
			Labels:        labels,
			Y:             y,
			YLow:          sigma,
			YHigh:         sigma,
			Counts:        []int{2, 3, 1, 4},
			TickPositions: axis.Positions(),
			TickLabels:    axis.Labels(),
			Years:         axis.Years,
			Fit:           fit,
		}
	}

	return &analysis.BatchReport{
		RunID:    "3f1c9a8e-6f1e-4c52-9d1b-2f7a0c4e5b6d",
		Source:   "/data/20230101_20231231_Modesto.all",
		Series:   []*analysis.PlotSeries{series("AOD_500nm", fit), series("Precipitable_Water(cm)", nil)},
		Skipped:  []string{"AOD_1640nm"},
		Failures: []analysis.FieldFailure{{Field: "AOD_870nm", Error: "zero spread"}},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, testReport().Series[0]); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("got %d rows, want 5", len(rows))
	}
	if !reflect.DeepEqual(rows[0], csvHeader) {
		t.Errorf("header = %v", rows[0])
	}
	want := []string{"1", "01:06:2023_day", "0.25", "0.02", "3"}
	if !reflect.DeepEqual(rows[2][:5], want) {
		t.Errorf("row = %v, want %v", rows[2], want)
	}
	if rows[2][5] == "" {
		t.Error("missing fitted value")
	}
}

func TestWriteCSVWithoutFit(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, testReport().Series[1]); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	rows, _ := csv.NewReader(&buf).ReadAll()
	for _, r := range rows[1:] {
		if r[5] != "" {
			t.Errorf("fitted = %q, want empty", r[5])
		}
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, testReport()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var got struct {
		RunID  string `json:"run_id"`
		Series []struct {
			Field  string   `json:"field"`
			Labels []string `json:"labels"`
		} `json:"series"`
		Failures []struct {
			Field string `json:"field"`
		} `json:"failures"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.RunID == "" || len(got.Series) != 2 || len(got.Series[0].Labels) != 4 || got.Failures[0].Field != "AOD_870nm" {
		t.Errorf("got %+v", got)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, testReport()); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	want := []string{"Summary", "AOD_500nm", "Precipitable_Water(cm)"}
	if got := f.GetSheetList(); !reflect.DeepEqual(got, want) {
		t.Errorf("sheets = %v, want %v", got, want)
	}

	rows, err := f.GetRows("AOD_500nm")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 5 || rows[1][1] != "01:06:2023_night" {
		t.Errorf("rows = %v", rows)
	}

	summary, err := f.GetRows("Summary")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if summary[0][1] != "3f1c9a8e-6f1e-4c52-9d1b-2f7a0c4e5b6d" {
		t.Errorf("run id cell = %q", summary[0][1])
	}
	// header, two series, one skipped, one failure
	if len(summary) != 8 {
		t.Errorf("summary has %d rows, want 8", len(summary))
	}
}

func TestSheetName(t *testing.T) {
	used := map[string]bool{"Summary": true}
	tests := []struct {
		field string
		want  string
	}{
		{"AOD_500nm", "AOD_500nm"},
		{"Exact_Wavelengths_of_AOD(um)_1640nm", "Exact_Wavelengths_of_AOD(um)_16"},
		{"Exact_Wavelengths_of_AOD(um)_1640nm", "Exact_Wavelengths_of_AOD(um)_~2"},
		{"Ratio[440/870]", "Ratio_440_870_"},
		{"Summary", "Summary~2"},
	}
	for _, tt := range tests {
		if got := sheetName(tt.field, used); got != tt.want {
			t.Errorf("sheetName(%q) = %q, want %q", tt.field, got, tt.want)
		}
	}
}

func TestFileWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	fw := NewFileWriter(dir, []string{"csv", "png", "json", "xlsx"}, render.Options{Width: 320, Height: 240}, zap.NewNop().Sugar())

	report := testReport()
	written, err := fw.WriteReport(report)
	if err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	var names []string
	for _, p := range written {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("%s: %v", p, err)
		}
		names = append(names, filepath.Base(p))
	}
	sort.Strings(names)
	prefix := "20230101_20231231_Modesto_" + report.RunID
	want := []string{
		prefix + ".json",
		prefix + ".xlsx",
		"AOD_500nm.csv",
		"AOD_500nm.png",
		"Precipitable_Water_cm_.csv",
		"Precipitable_Water_cm_.png",
	}
	sort.Strings(want)
	if !reflect.DeepEqual(names, want) {
		t.Errorf("wrote %v, want %v", names, want)
	}
}

func TestFileWriterDistinctNames(t *testing.T) {
	dir := t.TempDir()
	fw := NewFileWriter(dir, []string{"csv"}, render.Options{}, zap.NewNop().Sugar())

	report := testReport()
	first, second := *report.Series[0], *report.Series[0]
	first.Field, second.Field = "AOD(500)", "AOD[500]"
	second.Y = []float64{1, 2, 3, 4}
	report.Series = []*analysis.PlotSeries{&first, &second}

	written, err := fw.WriteReport(report)
	if err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	want := []string{filepath.Join(dir, "AOD_500_.csv"), filepath.Join(dir, "AOD_500__2.csv")}
	if !reflect.DeepEqual(written, want) {
		t.Fatalf("wrote %v, want %v", written, want)
	}

	data, err := os.ReadFile(want[1])
	if err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if rows[1][2] != "1" {
		t.Errorf("second file holds %v, want the second series", rows[1])
	}
}

func TestSeriesNames(t *testing.T) {
	series := func(fields ...string) []*analysis.PlotSeries {
		out := make([]*analysis.PlotSeries, len(fields))
		for i, f := range fields {
			out[i] = &analysis.PlotSeries{Field: f}
		}
		return out
	}
	tests := []struct {
		fields []string
		want   []string
	}{
		{[]string{"AOD_500nm", "AOD_870nm"}, []string{"AOD_500nm", "AOD_870nm"}},
		{[]string{"a/b", "a:b", "a?b"}, []string{"a_b", "a_b_2", "a_b_3"}},
		{[]string{"AOD", "aod"}, []string{"AOD", "aod_2"}},
		{[]string{"x_2", "x", "x"}, []string{"x_2", "x", "x_3"}},
	}
	for _, tt := range tests {
		if got := seriesNames(series(tt.fields...)); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("seriesNames(%v) = %v, want %v", tt.fields, got, tt.want)
		}
	}
}

func TestFileWriterUnknownFormat(t *testing.T) {
	fw := NewFileWriter(t.TempDir(), []string{"svg"}, render.Options{}, zap.NewNop().Sugar())
	if _, err := fw.WriteReport(testReport()); err == nil {
		t.Error("expected an error")
	}
}
