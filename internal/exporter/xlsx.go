package exporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/chrissnell/aeronetwx/internal/analysis"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet  = "Summary"
	maxSheetChars = 31
)

// WriteXLSX writes a workbook with a summary sheet and one sheet per series.
// Each series sheet carries a native scatter chart of the means and the
// cubic trend when there is one.
func WriteXLSX(w io.Writer, report *analysis.BatchReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       "AERONET day/night aggregates",
		Subject:     report.Source,
		Identifier:  report.RunID,
		Creator:     "aeronetwx",
		Description: fmt.Sprintf("%d series", len(report.Series)),
	}); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := writeSummary(f, report, bold); err != nil {
		return err
	}

	used := map[string]bool{summarySheet: true}
	for _, p := range report.Series {
		name := sheetName(p.Field, used)
		if err := writeSeriesSheet(f, name, p, bold); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
	}

	_, err = f.WriteTo(w)
	return err
}

func writeSummary(f *excelize.File, report *analysis.BatchReport, style int) error {
	rows := [][]interface{}{
		{"Run", report.RunID},
		{"Source", report.Source},
		{},
		{"Field", "Points", "Input values", "Kept values", "X axis", "Y axis", "R squared", "Fit error"},
	}
	for _, p := range report.Series {
		var r2 interface{}
		if p.Fit != nil {
			r2 = p.Fit.RSquared
		}
		rows = append(rows, []interface{}{
			p.Field, len(p.Y), p.Filter.Input, p.Filter.Kept, p.XAxisCaption, p.YAxisName, r2, p.FitError,
		})
	}
	for _, s := range report.Skipped {
		rows = append(rows, []interface{}{s, "too few points"})
	}
	for _, fail := range report.Failures {
		rows = append(rows, []interface{}{fail.Field, fail.Error})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(summarySheet, "A4", "H4", style); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "A", "A", 40)
}

func writeSeriesSheet(f *excelize.File, name string, p *analysis.PlotSeries, style int) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}

	header := make([]interface{}, len(csvHeader))
	for i, h := range csvHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", "F1", style); err != nil {
		return err
	}

	for i := range p.Y {
		row := []interface{}{i, p.Labels[i], p.Y[i], p.YHigh[i], p.Counts[i]}
		if p.Fit != nil {
			row = append(row, p.Fit.Fitted[i])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(name, "B", "B", 20); err != nil {
		return err
	}

	if len(p.Y) == 0 {
		return nil
	}
	return f.AddChart(name, "H2", scatterChart(name, p))
}

func scatterChart(sheet string, p *analysis.PlotSeries) *excelize.Chart {
	last := len(p.Y) + 1
	ref := func(col string) string {
		return fmt.Sprintf("'%s'!$%s$2:$%s$%d", sheet, col, col, last)
	}

	series := []excelize.ChartSeries{{
		Name:       fmt.Sprintf("'%s'!$C$1", sheet),
		Categories: ref("A"),
		Values:     ref("C"),
		Marker:     excelize.ChartMarker{Symbol: "circle", Size: 5},
		Line:       excelize.ChartLine{Width: 0},
	}}
	if p.Fit != nil {
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("'%s'!$F$1", sheet),
			Categories: ref("A"),
			Values:     ref("F"),
			Marker:     excelize.ChartMarker{Symbol: "none"},
			Line:       excelize.ChartLine{Width: 1.5},
		})
	}

	return &excelize.Chart{
		Type:      excelize.Scatter,
		Series:    series,
		Title:     []excelize.RichTextRun{{Text: p.WindowTitle}},
		Legend:    excelize.ChartLegend{Position: "bottom"},
		Dimension: excelize.ChartDimension{Width: 720, Height: 400},
		XAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: p.XAxisCaption}}},
		YAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: p.YAxisName}}},
	}
}

// sheetName makes field usable as a unique worksheet name.
func sheetName(field string, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\', '\'':
			return '_'
		}
		return r
	}, field)
	if len([]rune(name)) > maxSheetChars {
		name = string([]rune(name)[:maxSheetChars])
	}
	base := name
	for i := 2; used[name]; i++ {
		suffix := fmt.Sprintf("~%d", i)
		r := []rune(base)
		if len(r)+len(suffix) > maxSheetChars {
			r = r[:maxSheetChars-len(suffix)]
		}
		name = string(r) + suffix
	}
	used[name] = true
	return name
}
