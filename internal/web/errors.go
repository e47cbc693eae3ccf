package web

import (
	"encoding/json"
	"net/http"

	"github.com/denismitr/paysheet"
	"github.com/denismitr/paysheet/internal/form"
	"github.com/denismitr/paysheet/internal/logging"
	"github.com/pkg/errors"
)

// Messages shown to whoever submitted the request.
const (
	MsgSaveFailed     = "Error saving data. Please try again."
	MsgDownloadFailed = "Error downloading the file. Please try again."
	MsgNoData         = "No data to download"
)

type ErrorResponse struct {
	Error    string            `json:"error"`
	Problems map[string]string `json:"problems,omitempty"`
}

// writeError logs err, when there is one, and answers with a JSON message.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil {
		logging.FromContext(r.Context()).Error("request failed",
			"path", r.URL.Path,
			"method", r.Method,
			"status", status,
			"error", err.Error(),
		)
	}

	resp := ErrorResponse{Error: message}

	var verr *form.ValidationError
	if errors.As(err, &verr) {
		resp.Problems = verr.Problems
	}

	writeJSON(w, status, resp)
}

// appendFailure maps an append error onto a status and user message.
func appendFailure(err error) (int, string) {
	switch {
	case errors.Is(err, form.ErrInvalid), errors.Is(err, paysheet.ErrInvalidRecord):
		return http.StatusUnprocessableEntity, form.Message
	case errors.Is(err, form.ErrMalformedJSON):
		return http.StatusBadRequest, form.Message
	default:
		return http.StatusInternalServerError, MsgSaveFailed
	}
}

func exportFailure(err error) (int, string) {
	if errors.Is(err, paysheet.ErrNoData) {
		return http.StatusNotFound, MsgNoData
	}

	return http.StatusInternalServerError, MsgDownloadFailed
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
