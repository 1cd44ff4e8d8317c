package rest

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/creaselive/crease/internal/platform/errors"
	"github.com/creaselive/crease/internal/scoring/domain/command"
)

// errorBody is the JSON shape of every non-2xx response.
type errorBody struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are gone; nothing useful left to do.
		return
	}
}

// respondError maps a domain error to its HTTP status. Non-domain errors are
// internal faults and deliberately carry no detail to the caller.
func respondError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	message := "internal error"
	if code != apperrors.CodeUnknown {
		message = err.Error()
	}
	respondJSON(w, code.HTTPStatus(), errorBody{
		Code:     string(code),
		Message:  message,
		Metadata: apperrors.GetMetadata(err),
	})
}

// respondRejections reports a declined command. The status comes from the
// first rejection's code; the full list travels in the body so a scorer sees
// every reason at once.
func respondRejections(w http.ResponseWriter, rejections []command.Rejection) {
	status := http.StatusConflict
	if len(rejections) > 0 {
		status = apperrors.Code(rejections[0].Code).HTTPStatus()
	}
	respondJSON(w, status, struct {
		Rejections []command.Rejection `json:"rejections"`
	}{Rejections: rejections})
}
