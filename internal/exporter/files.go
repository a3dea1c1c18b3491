package exporter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chrissnell/aeronetwx/internal/analysis"
	"github.com/chrissnell/aeronetwx/internal/render"
	"go.uber.org/zap"
)

// Supported formats.
const (
	FormatPNG  = "png"
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// FileWriter writes a batch report into a directory: one PNG and/or CSV per
// series, and one JSON and/or XLSX file per report.
type FileWriter struct {
	Dir     string
	Formats []string
	Render  render.Options
	logger  *zap.SugaredLogger
}

// NewFileWriter creates a FileWriter.
func NewFileWriter(dir string, formats []string, opts render.Options, logger *zap.SugaredLogger) *FileWriter {
	return &FileWriter{Dir: dir, Formats: formats, Render: opts, logger: logger}
}

// WriteReport writes every requested format and returns the paths written.
// A series that fails to render is logged and skipped.
func (fw *FileWriter) WriteReport(report *analysis.BatchReport) ([]string, error) {
	if err := os.MkdirAll(fw.Dir, 0o755); err != nil {
		return nil, err
	}

	names := seriesNames(report.Series)
	var written []string
	for _, format := range fw.Formats {
		switch strings.ToLower(format) {
		case FormatPNG:
			for i, p := range report.Series {
				path, err := fw.writeFile(names[i]+".png", func(buf *bytes.Buffer) error {
					return render.PNG(buf, p, fw.Render)
				})
				if err != nil {
					fw.logger.Warnw("could not render plot", "run", report.RunID, "field", p.Field, "error", err)
					continue
				}
				written = append(written, path)
				if len(p.Gaussian) > 0 {
					path, err := fw.writeFile(names[i]+"_gaussian.png", func(buf *bytes.Buffer) error {
						return render.GaussianPNG(buf, p, fw.Render)
					})
					if err != nil {
						fw.logger.Warnw("could not render gaussian", "run", report.RunID, "field", p.Field, "error", err)
						continue
					}
					written = append(written, path)
				}
			}
		case FormatCSV:
			for i, p := range report.Series {
				path, err := fw.writeFile(names[i]+".csv", func(buf *bytes.Buffer) error {
					return WriteCSV(buf, p)
				})
				if err != nil {
					return written, err
				}
				written = append(written, path)
			}
		case FormatJSON:
			path, err := fw.writeFile(reportName(report)+".json", func(buf *bytes.Buffer) error {
				return WriteJSON(buf, report)
			})
			if err != nil {
				return written, err
			}
			written = append(written, path)
		case FormatXLSX:
			path, err := fw.writeFile(reportName(report)+".xlsx", func(buf *bytes.Buffer) error {
				return WriteXLSX(buf, report)
			})
			if err != nil {
				return written, err
			}
			written = append(written, path)
		default:
			return written, fmt.Errorf("unknown output format %q", format)
		}
	}

	fw.logger.Infow("wrote output", "run", report.RunID, "dir", fw.Dir, "files", len(written))
	return written, nil
}

// writeFile renders into memory first so a failed render leaves no partial
// file behind.
func (fw *FileWriter) writeFile(name string, fill func(*bytes.Buffer) error) (string, error) {
	var buf bytes.Buffer
	if err := fill(&buf); err != nil {
		return "", err
	}
	path := filepath.Join(fw.Dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	fw.logger.Debugf("wrote %s (%d bytes)", path, buf.Len())
	return path, nil
}

func reportName(report *analysis.BatchReport) string {
	src := strings.TrimSuffix(filepath.Base(report.Source), filepath.Ext(report.Source))
	if src == "" || src == "." {
		src = "aeronet"
	}
	return baseName(src) + "_" + report.RunID
}

// seriesNames gives each series a distinct file name. Fields that only
// differ in characters baseName replaces, or in case, get a _2, _3 ...
// suffix in report order.
func seriesNames(series []*analysis.PlotSeries) []string {
	names := make([]string, len(series))
	used := make(map[string]bool, len(series))
	for i, p := range series {
		base := baseName(p.Field)
		name := base
		for n := 2; used[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

// baseName maps a field name onto a portable file name.
func baseName(field string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, field)
}
