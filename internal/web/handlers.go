package web

import (
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/denismitr/paysheet"
	"github.com/denismitr/paysheet/export"
	"github.com/denismitr/paysheet/internal/form"
	"github.com/denismitr/paysheet/internal/logging"
	"github.com/denismitr/paysheet/options"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

type paymentsResponse struct {
	Dataset  string                   `json:"dataset"`
	Payments []paysheet.PaymentRecord `json:"payments"`
}

type appendResponse struct {
	Dataset string                 `json:"dataset"`
	Payment paysheet.PaymentRecord `json:"payment"`
	Saved   bool                   `json:"saved"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"companies": form.Companies})
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	names := []string{}
	if !s.opts.Headless {
		for _, key := range s.db.Keys(options.Scan().Prefix(s.opts.KeyPrefix)) {
			names = append(names, strings.TrimPrefix(key, s.opts.KeyPrefix))
		}
	}

	writeJSON(w, http.StatusOK, map[string][]string{"datasets": names})
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "dataset")

	s.mu.Lock()
	payments := s.store(dataset).List()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, paymentsResponse{Dataset: dataset, Payments: payments})
}

// handleAppendPayment accepts a JSON or form encoded submission. With
// ?download=1 the updated workbook is sent back as an attachment.
func (s *Server) handleAppendPayment(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "dataset")

	in, err := decodeInput(w, r)
	if err != nil {
		status, msg := appendFailure(err)
		writeError(w, r, status, msg, err)
		return
	}

	v, err := form.Validate(in)
	if err != nil {
		status, msg := appendFailure(err)
		writeError(w, r, status, msg, err)
		return
	}

	rec := v.Record(s.opts.Now())
	store := s.store(dataset)

	s.mu.Lock()
	b, err := store.Append(rec)
	s.mu.Unlock()

	if err != nil {
		status, msg := appendFailure(err)
		writeError(w, r, status, msg, err)
		return
	}

	logging.FromContext(r.Context()).Info("payment saved",
		"dataset", dataset,
		"company", rec.Company,
		"amount", rec.Amount.String(),
	)

	if b != nil && wantsDownload(r) {
		if err := (export.Response{W: w}).Offer(b, store.FileName()); err != nil {
			logging.FromContext(r.Context()).Error("could not send workbook", "error", err)
		}
		return
	}

	status := http.StatusCreated
	if b == nil {
		status = http.StatusAccepted
	}

	writeJSON(w, status, appendResponse{Dataset: dataset, Payment: rec, Saved: b != nil})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	store := s.store(chi.URLParam(r, "dataset"))

	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := store.Workbook()
	if err != nil {
		status, msg := exportFailure(err)
		writeError(w, r, status, msg, err)
		return
	}

	if match := r.Header.Get("If-None-Match"); match != "" && match == export.ETag(b) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	// b was decoded once by Workbook; both copies are served from it.
	if d, err := s.env.Downloads(); err == nil {
		if err := d.Offer(b, store.FileName()); err != nil {
			logging.FromContext(r.Context()).Warn("could not keep a copy of the export", "error", err)
		}
	}

	if err := (export.Response{W: w}).Offer(b, store.FileName()); err != nil {
		logging.FromContext(r.Context()).Error("could not send workbook", "error", err)
	}
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "dataset")

	s.mu.Lock()
	s.store(dataset).Clear()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"dataset": dataset, "status": "cleared"})
}

func decodeInput(w http.ResponseWriter, r *http.Request) (form.Input, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return form.Input{}, errors.Wrap(form.ErrMalformedJSON, err.Error())
		}

		return form.FromJSON(b)
	}

	if err := r.ParseForm(); err != nil {
		return form.Input{}, errors.Wrap(form.ErrInvalid, err.Error())
	}

	return form.FromValues(r.PostForm), nil
}

func wantsDownload(r *http.Request) bool {
	switch strings.ToLower(r.URL.Query().Get("download")) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
