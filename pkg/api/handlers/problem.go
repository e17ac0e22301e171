// Package handlers provides HTTP handlers for the fms REST API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/SankareshwaranS/FileManagementSystem/internal/logger"
	treeerrors "github.com/SankareshwaranS/FileManagementSystem/pkg/tree/errors"
)

// Problem represents an RFC 7807 "problem details" response.
// https://tools.ietf.org/html/rfc7807
type Problem struct {
	// Type is a URI reference that identifies the problem type.
	// If not set, defaults to "about:blank".
	Type string `json:"type,omitempty"`

	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`

	// Status is the HTTP status code for this occurrence of the problem.
	Status int `json:"status"`

	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`

	// Instance is a URI reference that identifies the specific occurrence.
	Instance string `json:"instance,omitempty"`

	// Code is the tree error code, when the problem came from the coordinator.
	Code string `json:"code,omitempty"`
}

// ContentTypeProblemJSON is the Content-Type for RFC 7807 problem responses.
const ContentTypeProblemJSON = "application/problem+json"

// Problem type URIs for tree failures.
const (
	ProblemTypeValidation    = "https://fms.dev/problems/validation"
	ProblemTypeNotFound      = "https://fms.dev/problems/not-found"
	ProblemTypeConflict      = "https://fms.dev/problems/conflict"
	ProblemTypeStorage       = "https://fms.dev/problems/storage"
	ProblemTypeTimeout       = "https://fms.dev/problems/storage-timeout"
	ProblemTypeInconsistency = "https://fms.dev/problems/inconsistency"
)

func writeProblem(w http.ResponseWriter, p *Problem) {
	w.Header().Set("Content-Type", ContentTypeProblemJSON)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// WriteProblem writes an RFC 7807 problem response.
func WriteProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblem(w, &Problem{
		Type:   "about:blank",
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

// WriteProblemWithType writes an RFC 7807 problem response with a custom type URI.
func WriteProblemWithType(w http.ResponseWriter, problemType string, status int, title, detail string) {
	writeProblem(w, &Problem{
		Type:   problemType,
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

// BadRequest writes a 400 Bad Request problem response.
func BadRequest(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusBadRequest, "Bad Request", detail)
}

// NotFound writes a 404 Not Found problem response.
func NotFound(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusNotFound, "Not Found", detail)
}

// RequestEntityTooLarge writes a 413 problem response.
func RequestEntityTooLarge(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", detail)
}

// InternalServerError writes a 500 Internal Server Error problem response.
func InternalServerError(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusInternalServerError, "Internal Server Error", detail)
}

// problemFor classifies err into a problem response.
func problemFor(err error) *Problem {
	code, ok := treeerrors.CodeOf(err)
	if !ok {
		return &Problem{
			Type:   "about:blank",
			Title:  "Internal Server Error",
			Status: http.StatusInternalServerError,
			Detail: "internal error",
		}
	}

	p := &Problem{Detail: err.Error(), Code: code.String()}
	switch code.Category() {
	case treeerrors.CategoryValidation:
		p.Type, p.Title, p.Status = ProblemTypeValidation, "Validation Failed", http.StatusBadRequest
	case treeerrors.CategoryNotFound:
		p.Type, p.Title, p.Status = ProblemTypeNotFound, "Not Found", http.StatusNotFound
	case treeerrors.CategoryConflict:
		p.Type, p.Title, p.Status = ProblemTypeConflict, "Conflict", http.StatusConflict
	case treeerrors.CategoryStorage:
		if code == treeerrors.ErrTimeout {
			p.Type, p.Title, p.Status = ProblemTypeTimeout, "Storage Timeout", http.StatusGatewayTimeout
		} else {
			p.Type, p.Title, p.Status = ProblemTypeStorage, "Storage Failure", http.StatusBadGateway
		}
	case treeerrors.CategoryInconsistency:
		p.Type, p.Title, p.Status = ProblemTypeInconsistency, "Inconsistent State", http.StatusInternalServerError
	default:
		p.Type, p.Title, p.Status = "about:blank", "Internal Server Error", http.StatusInternalServerError
	}
	return p
}

// WriteError writes the problem response matching err's tree error category.
// Unclassified errors are logged and reported as 500 without their message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	p := problemFor(err)
	p.Instance = r.URL.Path

	if p.Status >= http.StatusInternalServerError {
		logger.ErrorCtx(r.Context(), "API request failed",
			logger.KeyMethod, r.Method,
			logger.KeyPath, r.URL.Path,
			logger.KeyStatus, p.Status,
			logger.KeyError, err,
		)
	}

	writeProblem(w, p)
}
