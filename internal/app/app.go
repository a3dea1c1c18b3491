// Package app wires configuration, the dataset store, the analyzer and the
// output collaborators into the batch and serve modes.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/chrissnell/aeronetwx/internal/aeronet"
	"github.com/chrissnell/aeronetwx/internal/analysis"
	"github.com/chrissnell/aeronetwx/internal/controllers/restserver"
	"github.com/chrissnell/aeronetwx/internal/exporter"
	"github.com/chrissnell/aeronetwx/internal/render"
	"github.com/chrissnell/aeronetwx/pkg/config"
	"go.uber.org/zap"
)

// Mode selects what Run does after loading the dataset.
type Mode int

const (
	ModeBatch Mode = iota
	ModeServe
	ModeList
	ModePrint
)

// Request is one invocation.
type Request struct {
	Mode      Mode
	Selection analysis.Selection
}

// App represents the main application
type App struct {
	cfg    *config.ConfigData
	logger *zap.SugaredLogger
	out    io.Writer
	now    func() time.Time
}

// New creates a new application instance
func New(cfg *config.ConfigData, logger *zap.SugaredLogger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
		out:    os.Stdout,
		now:    time.Now,
	}
}

// AnalyzerOptions translates the analysis section into analyzer options.
func AnalyzerOptions(ac config.AnalysisData, now time.Time) (analysis.Options, error) {
	opts := analysis.Options{
		ClassifierName: ac.Classifier,
		Fit:            ac.Fit,
		Gaussian:       ac.Gaussian,
	}

	switch ac.Compatibility {
	case config.CompatLegacy, "":
		opts.Compat = analysis.LegacyCompatibility()
	case config.CompatCorrected:
		opts.Compat = analysis.CorrectedCompatibility()
	default:
		return opts, fmt.Errorf("unknown compatibility %q", ac.Compatibility)
	}

	if ac.CurrentMonth {
		opts.Range = analysis.CurrentMonthRange(now)
	} else {
		r, err := analysis.ParseRange(ac.MonthStart, ac.MonthEnd, ac.Year)
		if err != nil {
			return opts, err
		}
		opts.Range = r
	}

	if ac.Timezone != "" {
		loc, err := time.LoadLocation(ac.Timezone)
		if err != nil {
			return opts, fmt.Errorf("invalid timezone: %w", err)
		}
		opts.Series.Location = loc
	}
	opts.Series.OffsetHours = ac.UTCOffset

	if ac.Site != nil {
		opts.Site = &analysis.Site{Latitude: ac.Site.Latitude, Longitude: ac.Site.Longitude}
	}
	return opts, nil
}

// Run loads the configured file and carries out req. Serve mode blocks
// until ctx is cancelled or a termination signal arrives.
func (a *App) Run(ctx context.Context, req Request) error {
	if a.cfg.Input.File == "" {
		return errors.New("no input file configured")
	}

	opts, err := AnalyzerOptions(a.cfg.Analysis, a.now())
	if err != nil {
		return err
	}
	analyzer := analysis.NewAnalyzer(opts, a.logger.Named("analysis"))

	store := aeronet.NewStore(&aeronet.LoadOptions{Delimiter: a.cfg.Input.Delimiter}, a.logger.Named("store"))
	ds, err := store.Reload(a.cfg.Input.File)
	if err != nil {
		return err
	}

	switch req.Mode {
	case ModeList:
		return a.list(ds, req.Selection)
	case ModePrint:
		return a.print(ds, req.Selection)
	case ModeServe:
		return a.serve(ctx, store, analyzer)
	default:
		return a.batch(ds, analyzer, req.Selection)
	}
}

func (a *App) renderOptions() render.Options {
	return render.Options{Width: a.cfg.Output.Width, Height: a.cfg.Output.Height}
}

func (a *App) batch(ds *aeronet.Dataset, analyzer *analysis.Analyzer, sel analysis.Selection) error {
	report, err := analyzer.AnalyzeSelection(ds, sel)
	if err != nil {
		for _, f := range report.Failures {
			fmt.Fprintf(a.out, "%s: %s\n", f.Field, f.Error)
		}
		return err
	}

	fw := exporter.NewFileWriter(a.cfg.Output.Directory, a.cfg.Output.Formats, a.renderOptions(), a.logger.Named("exporter"))
	written, err := fw.WriteReport(report)
	if err != nil {
		return err
	}

	for _, p := range report.Series {
		fmt.Fprintf(a.out, "%s: %d points (%d of %d values kept)\n", p.WindowTitle, len(p.Y), p.Filter.Kept, p.Filter.Input)
	}
	for _, s := range report.Skipped {
		fmt.Fprintf(a.out, "%s: too few points to plot\n", s)
	}
	for _, f := range report.Failures {
		fmt.Fprintf(a.out, "%s: %s\n", f.Field, f.Error)
	}
	for _, path := range written {
		fmt.Fprintln(a.out, path)
	}
	return nil
}

func (a *App) list(ds *aeronet.Dataset, sel analysis.Selection) error {
	fields := ds.Header.PlottableFields()
	if sel.Keyword != "" {
		fields = ds.Header.MatchKeyword(sel.Keyword)
	}
	for _, f := range fields {
		fmt.Fprintln(a.out, f)
	}
	return nil
}

// print writes the whole dataset, or the date, time and selected columns
// when fields are named. It works on files that fail schema checks.
func (a *App) print(ds *aeronet.Dataset, sel analysis.Selection) error {
	if len(sel.Fields) == 0 && sel.Keyword == "" && !sel.All {
		_, err := io.WriteString(a.out, ds.String())
		return err
	}

	fields, err := analysis.Resolve(ds.Header, sel)
	if err != nil {
		return err
	}
	// Files without date/time markers still print their selected columns.
	var names []string
	for _, f := range []string{ds.Header.DateField, ds.Header.TimeField} {
		if f != "" {
			names = append(names, f)
		}
	}
	names = append(names, fields...)
	columns := make([][]string, len(names))
	for i, name := range names {
		if columns[i], err = ds.Column(name); err != nil {
			return err
		}
	}

	fmt.Fprintln(a.out, strings.Join(names, ds.Delimiter))
	row := make([]string, len(names))
	for r := 0; r < ds.Len(); r++ {
		for c := range columns {
			row[c] = columns[c][r]
		}
		fmt.Fprintln(a.out, strings.Join(row, ds.Delimiter))
	}
	return nil
}

func (a *App) serve(ctx context.Context, store *aeronet.Store, analyzer *analysis.Analyzer) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sc := config.ServerData{ListenAddr: config.DefaultListenAddr, Port: config.DefaultPort}
	if a.cfg.Server != nil {
		sc = *a.cfg.Server
	}
	ctrl, err := restserver.NewController(ctx, &wg, sc, store, analyzer, a.renderOptions(), a.logger.Named("rest"))
	if err != nil {
		return err
	}
	if err := ctrl.StartController(); err != nil {
		return err
	}

	a.logger.Info("application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigs)

wait:
	for {
		select {
		case sig := <-sigs:
			if sig == syscall.SIGHUP {
				a.logger.Infof("reloading %s", a.cfg.Input.File)
				if _, err := store.Reload(a.cfg.Input.File); err != nil {
					a.logger.Errorf("reload failed, keeping previous dataset: %v", err)
				}
				continue
			}
			a.logger.Info("shutdown signal received, initiating graceful shutdown...")
			break wait
		case <-ctx.Done():
			a.logger.Info("context cancelled, shutting down...")
			break wait
		}
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	a.logger.Info("waiting for all workers to terminate...")
	wg.Wait()
	a.logger.Info("shutdown complete")

	return nil
}
