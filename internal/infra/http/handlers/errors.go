package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/xavierca1/ligue-leads/internal/usecase"
)

const codeInternal = "INTERNAL_ERROR"

type ErrorResponse struct {
	Error   string                    `json:"error"`
	Message string                    `json:"message"`
	Fields  []usecase.ValidationError `json:"fields,omitempty"`
}

var statusByCode = map[string]int{
	usecase.CodeValidation:       http.StatusBadRequest,
	usecase.CodeMalformedPayload: http.StatusBadRequest,
	usecase.CodeInvalidStatus:    http.StatusBadRequest,
	usecase.CodeNotFound:         http.StatusNotFound,
	usecase.CodeConflict:         http.StatusConflict,
	usecase.CodeInvalidSignature: http.StatusUnauthorized,
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[http] encode response: %v", err)
	}
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string, fields []usecase.ValidationError) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message, Fields: fields})
}

// writeUseCaseError maps the use case error taxonomy to HTTP. Technical
// details are logged and never returned.
func writeUseCaseError(w http.ResponseWriter, r *http.Request, err error) {
	if de, ok := usecase.AsDomainError(err); ok {
		status, known := statusByCode[de.Code]
		if !known {
			status = http.StatusBadRequest
		}
		writeErrorResponse(w, status, de.Code, de.Message, de.Fields)
		return
	}

	reqID := middleware.GetReqID(r.Context())
	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		log.Printf("[http] %s %s req=%s %s: %v", r.Method, r.URL.Path, reqID, te.Code, te.Err)
	} else {
		log.Printf("[http] %s %s req=%s: %v", r.Method, r.URL.Path, reqID, err)
	}
	writeErrorResponse(w, http.StatusInternalServerError, codeInternal, "internal server error", nil)
}

func writeValidationErrors(w http.ResponseWriter, fields []usecase.ValidationError) {
	writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "invalid request parameters", fields)
}
