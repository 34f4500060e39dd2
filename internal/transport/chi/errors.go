package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/linkdex/internal/domain"
	"github.com/kailas-cloud/linkdex/internal/logger"
)

// ErrorResponseCode is the machine-readable error code of an API error.
type ErrorResponseCode string

// Error codes.
const (
	CodeBadRequest        ErrorResponseCode = "BAD_REQUEST"
	CodeMissingQuery      ErrorResponseCode = "MISSING_QUERY"
	CodeValidationFailed  ErrorResponseCode = "VALIDATION_FAILED"
	CodeUnauthorized      ErrorResponseCode = "UNAUTHORIZED"
	CodeDocumentNotFound  ErrorResponseCode = "DOCUMENT_NOT_FOUND"
	CodeCostLimitReached  ErrorResponseCode = "COST_LIMIT_REACHED"
	CodeModelUnavailable  ErrorResponseCode = "MODEL_UNAVAILABLE"
	CodeSearchUnavailable ErrorResponseCode = "SEARCH_UNAVAILABLE"
	CodeNotFound          ErrorResponseCode = "NOT_FOUND"
	CodeInternalError     ErrorResponseCode = "INTERNAL_ERROR"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// errorMapping binds a domain sentinel to its HTTP status and code.
type errorMapping struct {
	sentinel error
	status   int
	code     ErrorResponseCode
}

// errorMappings is checked in order; the first errors.Is match wins.
var errorMappings = []errorMapping{
	{domain.ErrMissingQuery, http.StatusBadRequest, CodeMissingQuery},
	{domain.ErrInvalidRequest, http.StatusBadRequest, CodeValidationFailed},
	{domain.ErrDocumentInvalid, http.StatusBadRequest, CodeValidationFailed},
	{domain.ErrDocumentNotFound, http.StatusNotFound, CodeDocumentNotFound},
	{domain.ErrCostLimitReached, http.StatusTooManyRequests, CodeCostLimitReached},
	{domain.ErrSearchUnavailable, http.StatusServiceUnavailable, CodeSearchUnavailable},
	{domain.ErrModelUnavailable, http.StatusBadGateway, CodeModelUnavailable},
}

// handleDomainError maps err to a response. Validation errors carry their own message
// since it names the offending parameter; other sentinels expose only the sentinel text.
func handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	for _, m := range errorMappings {
		if !errors.Is(err, m.sentinel) {
			continue
		}
		msg := m.sentinel.Error()
		var costErr *domain.CostLimitError
		switch {
		case m.status == http.StatusBadRequest:
			msg = err.Error()
		case errors.As(err, &costErr):
			msg = costErr.Error()
		}
		if m.status >= http.StatusInternalServerError || m.status == http.StatusTooManyRequests {
			log.Warn("Request failed", zap.String("code", string(m.code)), zap.Error(err))
		}
		annotate(r.Context(), zap.String("error_code", string(m.code)))
		writeError(w, m.status, m.code, msg)
		return
	}

	log.Error("Internal error", zap.Error(err))
	annotate(r.Context(), zap.String("error_code", string(CodeInternalError)))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
