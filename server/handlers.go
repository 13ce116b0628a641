package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/etnz/findash"
	"github.com/etnz/findash/renderer"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// maxUpload bounds the size of an uploaded CSV dataset.
const maxUpload = 32 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintln(w, "OK")
}

// dashboard returns the current dashboard, or writes the error response.
func (s *Server) dashboard(w http.ResponseWriter) (*findash.Dashboard, findash.Revision, bool) {
	d, rev, err := s.store.Dashboard()
	if err != nil {
		s.fail(w, err)
		return nil, rev, false
	}
	return d, rev, true
}

// fail maps err to an HTTP error response.
func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, findash.ErrUnknownChart):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, findash.ErrEmptyDataset):
		http.Error(w, "no dataset loaded", http.StatusServiceUnavailable)
	default:
		s.logger.Error("request failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// notModified sets the ETag of rev and reports whether the client already has it.
func notModified(w http.ResponseWriter, r *http.Request, rev findash.Revision) bool {
	etag := rev.ETag()
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

// theme returns the theme requested by the theme query parameter, or the
// configured one.
func (s *Server) theme(r *http.Request) (findash.Theme, error) {
	if t := r.URL.Query().Get("theme"); t != "" {
		return findash.ParseTheme(t)
	}
	return s.store.Options().Theme, nil
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	theme, err := s.theme(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	d, rev, ok := s.dashboard(w)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := renderer.Page(&buf, d, rev, theme); err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	d, rev, ok := s.dashboard(w)
	if !ok || notModified(w, r, rev) {
		return
	}
	var buf bytes.Buffer
	if err := renderer.ReportPage(&buf, d); err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, rev, ok := s.dashboard(w)
	if !ok || notModified(w, r, rev) {
		return
	}
	s.writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request) {
	d, rev, ok := s.dashboard(w)
	if !ok || notModified(w, r, rev) {
		return
	}
	s.writeJSON(w, http.StatusOK, d.KPIs)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	d, rev, ok := s.dashboard(w)
	if !ok {
		return
	}
	fig, err := d.Chart(mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	if notModified(w, r, rev) {
		return
	}
	s.writeJSON(w, http.StatusOK, fig)
}

func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	theme, err := s.theme(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	d, _, ok := s.dashboard(w)
	if !ok {
		return
	}
	fig, err := d.Chart(mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	var buf bytes.Buffer
	if err := renderer.ChartSVG(&buf, fig, theme); err != nil {
		s.fail(w, fmt.Errorf("cannot render chart %s: %w", fig.ID, err))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	buf.WriteTo(w)
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	d, rev, ok := s.dashboard(w)
	if !ok || notModified(w, r, rev) {
		return
	}
	var buf bytes.Buffer
	if err := renderer.TableHTML(&buf, d.Table); err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// dataset returns the current dataset, or writes the error response.
func (s *Server) dataset(w http.ResponseWriter) (*findash.Dataset, bool) {
	ds, _ := s.store.Dataset()
	if ds == nil {
		s.fail(w, findash.ErrEmptyDataset)
		return nil, false
	}
	return ds, true
}

func (s *Server) handleDatasetCSV(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := findash.EncodeCSV(&buf, ds); err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="financial_database.csv"`)
	buf.WriteTo(w)
}

func (s *Server) handleDatasetXLSX(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := findash.EncodeXLSX(&buf, ds); err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="financial_database.xlsx"`)
	buf.WriteTo(w)
}

// handleUploadCSV replaces the dataset with the CSV request body.
func (s *Server) handleUploadCSV(w http.ResponseWriter, r *http.Request) {
	currency := s.opts.Generator.Currency
	if cur, _ := s.store.Dataset(); cur != nil {
		currency = cur.Currency()
	}
	if currency == "" {
		currency = findash.DefaultCurrency
	}
	ds, err := findash.DecodeCSV(http.MaxBytesReader(w, r.Body, maxUpload), "upload", currency)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.replace(w, r, ds)
}

// handleRegenerate replaces the dataset with a freshly generated one.
func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	gen := s.opts.Generator
	q := r.URL.Query()
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid seed %q", v), http.StatusBadRequest)
			return
		}
		gen.Seed = seed
	}
	if v := q.Get("days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 {
			http.Error(w, fmt.Sprintf("invalid days %q", v), http.StatusBadRequest)
			return
		}
		gen.Days = days
	}
	ds, err := gen.Generate()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.replace(w, r, ds)
}

// handleOptions changes how the dashboard is computed. Parameters left out
// keep their current value.
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	opts := s.store.Options()
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	positive := func(name string, dst *int) bool {
		v := r.Form.Get(name)
		if v == "" {
			return true
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, fmt.Sprintf("invalid %s %q", name, v), http.StatusBadRequest)
			return false
		}
		*dst = n
		return true
	}
	if !positive("window", &opts.RollingWindow) || !positive("rows", &opts.TableRows) {
		return
	}
	if v := r.Form.Get("theme"); v != "" {
		theme, err := findash.ParseTheme(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		opts.Theme = theme
	}
	rev := s.store.SetOptions(opts)
	s.logger.Info("dashboard options changed",
		zap.Int("window", opts.RollingWindow),
		zap.Int("rows", opts.TableRows),
		zap.String("theme", string(opts.Theme)),
		zap.Uint64("revision", rev.N))
	s.writeJSON(w, http.StatusOK, rev)
}

// replace persists ds to every sink, then sets it into the store.
func (s *Server) replace(w http.ResponseWriter, r *http.Request, ds *findash.Dataset) {
	for _, sink := range s.opts.Sinks {
		if err := sink.Save(r.Context(), ds); err != nil {
			s.fail(w, fmt.Errorf("cannot save dataset: %w", err))
			return
		}
	}
	rev := s.store.Set(ds)
	s.logger.Info("dataset replaced", zap.Int("records", ds.Len()), zap.Uint64("revision", rev.N))
	s.writeJSON(w, http.StatusOK, rev)
}
