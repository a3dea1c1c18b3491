package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/chrissnell/aeronetwx/internal/analysis"
	"github.com/chrissnell/aeronetwx/internal/app"
	"github.com/chrissnell/aeronetwx/internal/log"
	"github.com/chrissnell/aeronetwx/pkg/config"
)

const version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	cfgFile := flag.String("config", "aeronetwx.yaml", "Path to the YAML configuration file (optional)")
	file := flag.String("file", "", "AERONET export to analyze")
	fields := flag.String("field", "", "Comma separated field names to plot, matched case-insensitively")
	keyword := flag.String("keyword", "", "Plot every field whose name contains this keyword")
	all := flag.Bool("all", false, "Plot every plottable field")
	monthStart := flag.String("month-start", "", "First month to include (number or name)")
	monthEnd := flag.String("month-end", "", "Last month to include (number or name)")
	year := flag.Int("year", 0, "Only include this year")
	currentMonth := flag.Bool("current-month", false, "Only include the current month")
	formats := flag.String("format", "", "Comma separated output formats: png, csv, json, xlsx")
	outDir := flag.String("out", "", "Output directory")
	compat := flag.String("compat", "", "Aggregation behavior: 'legacy' or 'corrected'")
	classifier := flag.String("classifier", "", "Day/night split: 'clock' or 'solar'")
	tz := flag.String("tz", "", "IANA time zone the timestamps are converted to")
	utcOffset := flag.Int("utc-offset", 0, "Whole-hour offset applied to timestamps")
	serve := flag.Bool("serve", false, "Serve the dataset over HTTP instead of writing files")
	listen := flag.String("listen", "", "Address the HTTP server listens on")
	port := flag.Int("port", 0, "Port the HTTP server listens on")
	dataDir := flag.String("data-dir", "", "Directory whose files the HTTP server may reload")
	noFit := flag.Bool("no-fit", false, "Skip the cubic trend fit")
	gaussian := flag.Bool("gaussian", false, "Also plot the outlier filter's Gaussian curve")
	list := flag.Bool("list", false, "List the plottable fields and exit")
	printData := flag.Bool("print", false, "Print the dataset, or the selected columns, and exit")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("aeronetwx %s\n", version)
		os.Exit(0)
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfgData, err := loadConfig(*cfgFile, set["config"])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Command line flags override the configuration file
	if set["file"] {
		cfgData.Input.File = *file
	}
	if flag.NArg() > 0 && cfgData.Input.File == "" {
		cfgData.Input.File = flag.Arg(0)
	}
	if set["month-start"] {
		cfgData.Analysis.MonthStart = *monthStart
	}
	if set["month-end"] {
		cfgData.Analysis.MonthEnd = *monthEnd
	}
	if set["year"] {
		cfgData.Analysis.Year = *year
	}
	if set["current-month"] {
		cfgData.Analysis.CurrentMonth = *currentMonth
	}
	if set["format"] {
		cfgData.Output.Formats = splitList(*formats)
	}
	if set["out"] {
		cfgData.Output.Directory = *outDir
	}
	if set["compat"] {
		cfgData.Analysis.Compatibility = *compat
	}
	if set["classifier"] {
		cfgData.Analysis.Classifier = *classifier
	}
	if set["tz"] {
		cfgData.Analysis.Timezone = *tz
	}
	if set["utc-offset"] {
		cfgData.Analysis.UTCOffset = *utcOffset
	}
	if set["no-fit"] {
		cfgData.Analysis.Fit = !*noFit
	}
	if set["gaussian"] {
		cfgData.Analysis.Gaussian = *gaussian
	}
	if set["debug"] {
		cfgData.Log.Debug = *debug
	}
	if set["listen"] || set["port"] || set["data-dir"] {
		if cfgData.Server == nil {
			cfgData.Server = &config.ServerData{}
		}
		if set["listen"] {
			cfgData.Server.ListenAddr = *listen
		}
		if set["port"] {
			cfgData.Server.Port = *port
		}
		if set["data-dir"] {
			cfgData.Server.DataDir = *dataDir
		}
	}
	cfgData.ApplyDefaults()
	if err := cfgData.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Set up logging
	if err := log.Init(log.Options{
		Debug:      cfgData.Log.Debug,
		File:       cfgData.Log.File,
		MaxSizeMB:  cfgData.Log.MaxSizeMB,
		MaxBackups: cfgData.Log.MaxBackups,
		MaxAgeDays: cfgData.Log.MaxAgeDays,
	}); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	req := app.Request{
		Selection: analysis.Selection{
			All:     *all,
			Fields:  splitList(*fields),
			Keyword: *keyword,
		},
	}
	switch {
	case *list:
		req.Mode = app.ModeList
	case *printData:
		req.Mode = app.ModePrint
	case *serve:
		req.Mode = app.ModeServe
	case !req.Selection.All && len(req.Selection.Fields) == 0 && req.Selection.Keyword == "":
		fmt.Fprintln(os.Stderr, "nothing to plot: pass -field, -keyword or -all")
		flag.Usage()
		os.Exit(2)
	}

	application := app.New(cfgData, log.Component("aeronetwx"))
	if err := application.Run(context.Background(), req); err != nil {
		log.Errorf("Application error: %v", err)
		log.Sync()
		os.Exit(1)
	}
}

// loadConfig reads the YAML file when it exists. A missing default file is
// not an error; a missing file named with -config is.
func loadConfig(cfgFile string, explicit bool) (*config.ConfigData, error) {
	filename, _ := filepath.Abs(cfgFile)

	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) && !explicit {
		return config.DefaultConfig(), nil
	}

	provider := config.NewYAMLProvider(filename)
	defer provider.Close()

	cfgData, err := provider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading config file. Did you pass the -config flag? Run with -h for help: %w", err)
	}
	return cfgData, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
