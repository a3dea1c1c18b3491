// Package restserver serves a loaded AERONET snapshot over HTTP: dataset
// metadata, plot-ready series and rendered PNG charts.
package restserver

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chrissnell/aeronetwx/internal/aeronet"
	"github.com/chrissnell/aeronetwx/internal/analysis"
	"github.com/chrissnell/aeronetwx/internal/log"
	"github.com/chrissnell/aeronetwx/internal/render"
	"github.com/chrissnell/aeronetwx/pkg/config"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.ServerData
	Server     http.Server
	FS         fs.FS
	store      *aeronet.Store
	analyzer   *analysis.Analyzer
	render     render.Options
	logger     *zap.SugaredLogger
	handlers   *Handlers
	reload     reloadPaths
}

// reloadPaths are the files a client may ask the server to load: the input
// file loaded at startup, and anything below the configured data directory.
type reloadPaths struct {
	input       string
	inputReal   string
	dataDir     string
	dataDirReal string
}

func newReloadPaths(input, dataDir string) reloadPaths {
	var rp reloadPaths
	if input != "" {
		rp.input, rp.inputReal = absAndReal(input)
	}
	if dataDir != "" {
		rp.dataDir, rp.dataDirReal = absAndReal(dataDir)
	}
	return rp
}

// absAndReal returns the absolute form of path and the same path with
// symlinks resolved. A missing file is resolved through its directory.
func absAndReal(path string) (string, string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", ""
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return abs, resolved
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return abs, filepath.Join(dir, filepath.Base(abs))
	}
	return abs, abs
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// allow returns the absolute path to load, or errReloadForbidden.
func (rp reloadPaths) allow(path string) (string, error) {
	abs, resolved := absAndReal(path)
	if abs == "" {
		return "", errReloadForbidden
	}
	if rp.input != "" && (abs == rp.input || resolved == rp.inputReal) {
		return abs, nil
	}
	if rp.dataDir != "" && within(rp.dataDir, abs) && within(rp.dataDirReal, resolved) {
		return abs, nil
	}
	return "", errReloadForbidden
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, rc config.ServerData, store *aeronet.Store, analyzer *analysis.Analyzer, ro render.Options, logger *zap.SugaredLogger) (*Controller, error) {
	if store == nil || analyzer == nil {
		return nil, fmt.Errorf("REST server needs a dataset store and an analyzer")
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		FS:         GetAssets(),
		store:      store,
		analyzer:   analyzer,
		render:     ro,
		logger:     logger,
	}
	ctrl.handlers = NewHandlers(ctrl)

	var input string
	if ds, err := store.Snapshot(); err == nil {
		input = ds.Source
	}
	ctrl.reload = newReloadPaths(input, rc.DataDir)

	if rc.Port == 0 {
		rc.Port = config.DefaultPort
	}
	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = ctrl.setupRouter()

	return ctrl, nil
}

// Handler returns the configured router.
func (c *Controller) Handler() http.Handler {
	return c.Server.Handler
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	c.logger.Infof("starting REST server on %s", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.restConfig.Cert != "" && c.restConfig.Key != "" {
			if err := c.Server.ListenAndServeTLS(c.restConfig.Cert, c.restConfig.Key); err != http.ErrServerClosed {
				c.logger.Errorf("REST server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				c.logger.Errorf("REST server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		c.logger.Info("shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(log.HTTPMiddleware(c.logger))

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/dataset", c.handlers.GetDataset).Methods(http.MethodGet)
	api.HandleFunc("/dataset/raw", c.handlers.GetDatasetRaw).Methods(http.MethodGet)
	api.HandleFunc("/fields", c.handlers.GetFields).Methods(http.MethodGet)
	api.HandleFunc("/columns", c.handlers.GetColumns).Methods(http.MethodGet)
	api.HandleFunc("/series", c.handlers.GetSeriesBatch).Methods(http.MethodGet)
	api.HandleFunc("/series/{field}", c.handlers.GetSeries).Methods(http.MethodGet)
	api.HandleFunc("/plot/{field}.png", c.handlers.GetPlot).Methods(http.MethodGet)
	api.HandleFunc("/reload", c.handlers.PostReload).Methods(http.MethodPost)

	// Browser page
	router.Handle("/", http.FileServer(http.FS(c.FS))).Methods(http.MethodGet)

	return router
}
