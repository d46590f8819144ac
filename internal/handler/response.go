package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"gearguard/pkg/errors"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// ResponseHelper provides common request parsing utilities and context management
type ResponseHelper struct{}

// NewResponseHelper creates a new ResponseHelper instance
func NewResponseHelper() *ResponseHelper {
	return &ResponseHelper{}
}

// CreateRequestContext bounds the request context with a per-handler timeout
func (rh *ResponseHelper) CreateRequestContext(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeout)
}

// DecodeJSON decodes a size-limited request body into dst
func (rh *ResponseHelper) DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}

// ParseMonthParams reads optional year and month query parameters. Missing values are zero.
func (rh *ResponseHelper) ParseMonthParams(r *http.Request) (year, month int, err error) {
	query := r.URL.Query()
	if v := query.Get("year"); v != "" {
		if year, err = strconv.Atoi(v); err != nil {
			return 0, 0, errors.FieldValidationError("year", "year must be an integer")
		}
	}
	if v := query.Get("month"); v != "" {
		if month, err = strconv.Atoi(v); err != nil {
			return 0, 0, errors.FieldValidationError("month", "month must be an integer")
		}
	}
	return year, month, nil
}

// CreateHealthCheckData creates health check response data
func (rh *ResponseHelper) CreateHealthCheckData(notifier string) map[string]interface{} {
	return map[string]interface{}{
		"timestamp": time.Now().UTC(),
		"service":   "gearguard",
		"status":    "healthy",
		"notifier":  notifier,
	}
}
