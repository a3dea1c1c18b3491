// Package exporter writes analysis results to CSV, JSON, XLSX and PNG files.
package exporter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/chrissnell/aeronetwx/internal/analysis"
)

var csvHeader = []string{"Index", "Label", "Mean", "Sigma", "Count", "Fitted"}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes one row per aggregate point.
func WriteCSV(w io.Writer, p *analysis.PlotSeries) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for i := range p.Y {
		fitted := ""
		if p.Fit != nil {
			fitted = formatFloat(p.Fit.Fitted[i])
		}
		record := []string{
			strconv.Itoa(i),
			p.Labels[i],
			formatFloat(p.Y[i]),
			formatFloat(p.YHigh[i]),
			strconv.Itoa(p.Counts[i]),
			fitted,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
