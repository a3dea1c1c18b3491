package restserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/chrissnell/aeronetwx/internal/aeronet"
	"github.com/chrissnell/aeronetwx/internal/analysis"
	"github.com/chrissnell/aeronetwx/internal/render"
	"github.com/chrissnell/aeronetwx/pkg/responseformat"
	"github.com/gorilla/mux"
)

var errReloadForbidden = errors.New("file is neither the configured input nor inside the data directory")

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
	now        func() time.Time
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
		now:        time.Now,
	}
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var (
		degenerate *analysis.DegenerateInputError
		empty      *analysis.EmptySelectionError
		schema     *aeronet.SchemaError
		value      *aeronet.ValueParseError
	)
	switch {
	case errors.Is(err, aeronet.ErrNotLoaded):
		return http.StatusServiceUnavailable
	case errors.Is(err, aeronet.ErrFieldNotFound), errors.As(err, &empty):
		return http.StatusNotFound
	case errors.As(err, &degenerate), errors.As(err, &schema), errors.As(err, &value),
		errors.Is(err, render.ErrNotPlottable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) fail(w http.ResponseWriter, req *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.controller.logger.Errorw("request failed", "path", req.URL.Path, "error", err)
	}
	h.formatter.WriteError(w, req, status, err)
}

func (h *Handlers) badRequest(w http.ResponseWriter, req *http.Request, err error) {
	h.formatter.WriteError(w, req, http.StatusBadRequest, err)
}

// analyzerFor applies the month_start, month_end, year and current_month
// query parameters on top of the configured range.
func (h *Handlers) analyzerFor(req *http.Request) (*analysis.Analyzer, error) {
	a := h.controller.analyzer
	q := req.URL.Query()

	if q.Get("current_month") == "true" {
		return a.WithRange(analysis.CurrentMonthRange(h.now())), nil
	}
	if q.Get("month_start") == "" && q.Get("month_end") == "" && q.Get("year") == "" {
		return a, nil
	}

	year := 0
	if s := q.Get("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil {
			return nil, errors.New("invalid year")
		}
		year = y
	}
	r, err := analysis.ParseRange(q.Get("month_start"), q.Get("month_end"), year)
	if err != nil {
		return nil, err
	}
	return a.WithRange(r), nil
}

// GetDataset returns the preamble, header and size of the loaded file
func (h *Handlers) GetDataset(w http.ResponseWriter, req *http.Request) {
	ds, err := h.controller.store.Snapshot()
	if err != nil {
		h.fail(w, req, err)
		return
	}
	h.formatter.WriteResponse(w, req, datasetInfo(ds), nil)
}

// GetDatasetRaw returns the source text reassembled from the snapshot
func (h *Handlers) GetDatasetRaw(w http.ResponseWriter, req *http.Request) {
	ds, err := h.controller.store.Snapshot()
	if err != nil {
		h.fail(w, req, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, ds.String())
}

// GetFields lists plottable fields, or those matching ?keyword=
func (h *Handlers) GetFields(w http.ResponseWriter, req *http.Request) {
	ds, err := h.controller.store.Snapshot()
	if err != nil {
		h.fail(w, req, err)
		return
	}
	fields := ds.Header.PlottableFields()
	if kw := req.URL.Query().Get("keyword"); kw != "" {
		fields = ds.Header.MatchKeyword(kw)
	}
	if fields == nil {
		fields = []string{}
	}
	h.formatter.WriteResponse(w, req, FieldList{Fields: fields}, nil)
}

// GetColumns returns the raw cells of each ?field= column
func (h *Handlers) GetColumns(w http.ResponseWriter, req *http.Request) {
	ds, err := h.controller.store.Snapshot()
	if err != nil {
		h.fail(w, req, err)
		return
	}
	names := req.URL.Query()["field"]
	if len(names) == 0 {
		h.badRequest(w, req, errors.New("at least one field parameter is required"))
		return
	}
	columns := make(map[string][]string, len(names))
	for _, name := range names {
		col, err := ds.Column(name)
		if err != nil {
			h.fail(w, req, err)
			return
		}
		columns[name] = col
	}
	h.formatter.WriteResponse(w, req, columns, nil)
}

// GetSeries analyzes one field
func (h *Handlers) GetSeries(w http.ResponseWriter, req *http.Request) {
	ds, err := h.controller.store.Snapshot()
	if err != nil {
		h.fail(w, req, err)
		return
	}
	a, err := h.analyzerFor(req)
	if err != nil {
		h.badRequest(w, req, err)
		return
	}

	field, ok := ds.Header.MatchField(mux.Vars(req)["field"])
	if !ok {
		h.fail(w, req, &analysis.EmptySelectionError{Selection: mux.Vars(req)["field"]})
		return
	}
	p, err := a.Analyze(ds, field)
	if err != nil {
		h.fail(w, req, err)
		return
	}
	h.formatter.WriteResponse(w, req, p, nil)
}

// GetSeriesBatch analyzes ?all=true, repeated ?field= or ?keyword=
func (h *Handlers) GetSeriesBatch(w http.ResponseWriter, req *http.Request) {
	ds, err := h.controller.store.Snapshot()
	if err != nil {
		h.fail(w, req, err)
		return
	}
	a, err := h.analyzerFor(req)
	if err != nil {
		h.badRequest(w, req, err)
		return
	}

	q := req.URL.Query()
	sel := analysis.Selection{
		All:     q.Get("all") == "true",
		Fields:  q["field"],
		Keyword: q.Get("keyword"),
	}
	report, err := a.AnalyzeSelection(ds, sel)
	if err != nil {
		h.fail(w, req, err)
		return
	}
	h.formatter.WriteResponse(w, req, report, map[string]string{"X-Run-ID": report.RunID})
}

// GetPlot renders one field as a PNG
func (h *Handlers) GetPlot(w http.ResponseWriter, req *http.Request) {
	ds, err := h.controller.store.Snapshot()
	if err != nil {
		h.fail(w, req, err)
		return
	}
	a, err := h.analyzerFor(req)
	if err != nil {
		h.badRequest(w, req, err)
		return
	}

	opts := h.controller.render
	q := req.URL.Query()
	for _, dim := range []struct {
		key string
		dst *int
	}{{"width", &opts.Width}, {"height", &opts.Height}} {
		if s := q.Get(dim.key); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil || v < 100 || v > 4096 {
				h.badRequest(w, req, errors.New("invalid "+dim.key))
				return
			}
			*dim.dst = v
		}
	}

	field, ok := ds.Header.MatchField(mux.Vars(req)["field"])
	if !ok {
		h.fail(w, req, &analysis.EmptySelectionError{Selection: mux.Vars(req)["field"]})
		return
	}
	p, err := a.Analyze(ds, field)
	if err != nil {
		h.fail(w, req, err)
		return
	}

	var buf bytes.Buffer
	if err := render.PNG(&buf, p, opts); err != nil {
		h.fail(w, req, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

// PostReload swaps in a freshly parsed file. Readers keep the previous
// snapshot until the new one is complete. A body, when present, must be
// JSON and may only name the configured input or a file in the data
// directory.
func (h *Handlers) PostReload(w http.ResponseWriter, req *http.Request) {
	var body ReloadRequest
	if req.Body != nil && req.ContentLength != 0 {
		if mt, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type")); mt != "application/json" {
			h.formatter.WriteError(w, req, http.StatusUnsupportedMediaType, errors.New("reload body must be application/json"))
			return
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			h.badRequest(w, req, err)
			return
		}
	}

	var path string
	if body.File == "" {
		current, err := h.controller.store.Snapshot()
		if err != nil {
			h.badRequest(w, req, errors.New("no file given and nothing loaded"))
			return
		}
		path = current.Source
	} else {
		allowed, err := h.controller.reload.allow(body.File)
		if err != nil {
			h.controller.logger.Warnw("refused reload", "file", body.File)
			h.badRequest(w, req, err)
			return
		}
		path = allowed
	}

	ds, err := h.controller.store.Reload(path)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusUnprocessableEntity, err)
		return
	}
	h.formatter.WriteResponse(w, req, datasetInfo(ds), nil)
}
