package handler

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"gearguard/pkg/errors"
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Code    string `json:"code,omitempty"`
}

// ErrorHandler provides centralized error handling functionality for handlers
type ErrorHandler struct {
	Logger *zap.Logger
}

// NewErrorHandler creates a new ErrorHandler instance
func NewErrorHandler(logger *zap.Logger) *ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorHandler{
		Logger: logger,
	}
}

// SendErrorResponse sends a structured error response
func (e *ErrorHandler) SendErrorResponse(w http.ResponseWriter, statusCode int, message, field string, code errors.ErrorCode) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Message: message,
		Field:   field,
		Code:    string(code),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		e.Logger.Error("Failed to encode error response", zap.Error(err))
	}
}

// SendJSONResponse sends a generic JSON response
func (e *ErrorHandler) SendJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		e.Logger.Error("Failed to encode JSON response", zap.Error(err))
		e.SendErrorResponse(w, http.StatusInternalServerError, "Failed to encode response", "", errors.ErrorCodeInternal)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(append(body, '\n')); err != nil {
		e.Logger.Debug("Failed to write JSON response", zap.Error(err))
	}
}

// HandleError maps service errors to HTTP responses. Anything that is not an AppError is a 500.
func (e *ErrorHandler) HandleError(w http.ResponseWriter, err error, operation string) {
	if stderrors.Is(err, context.DeadlineExceeded) {
		e.Logger.Warn("Operation timed out", zap.String("operation", operation))
		appErr := errors.TimeoutError(operation)
		e.SendErrorResponse(w, appErr.GetHTTPStatus(), appErr.Message, "", appErr.Code)
		return
	}

	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.InternalError(fmt.Sprintf("Failed to %s", operation), err)
	}

	status := appErr.GetHTTPStatus()
	if status >= http.StatusInternalServerError {
		e.Logger.Error("Request failed", zap.String("operation", operation), zap.Error(err))
	} else {
		e.Logger.Debug("Request rejected",
			zap.String("operation", operation),
			zap.String("code", string(appErr.Code)),
			zap.String("field", appErr.Field),
			zap.String("message", appErr.Message))
	}

	e.SendErrorResponse(w, status, appErr.Message, appErr.Field, appErr.Code)
}

// HandleJSONDecodeError reports malformed bodies, naming the offending field when the decoder knows it
func (e *ErrorHandler) HandleJSONDecodeError(w http.ResponseWriter, err error) {
	e.Logger.Debug("JSON decode error", zap.Error(err))

	var typeErr *json.UnmarshalTypeError
	var maxBytesErr *http.MaxBytesError
	switch {
	case stderrors.Is(err, io.EOF):
		e.SendErrorResponse(w, http.StatusBadRequest, "Request body is required", "", errors.ErrorCodeBadRequest)
	case stderrors.As(err, &maxBytesErr):
		e.SendErrorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large", "", errors.ErrorCodeBadRequest)
	case stderrors.As(err, &typeErr):
		appErr := errors.InvalidJSONError(typeErr.Field, err)
		e.SendErrorResponse(w, appErr.GetHTTPStatus(), appErr.Message, appErr.Field, appErr.Code)
	default:
		appErr := errors.InvalidJSONError("", err)
		e.SendErrorResponse(w, appErr.GetHTTPStatus(), appErr.Message, "", appErr.Code)
	}
}

// ParseID parses an integer path id, answering 400 when it is not one.
// Zero and negative ids pass through and end up as 404 from the store.
func (e *ErrorHandler) ParseID(w http.ResponseWriter, idStr string) (int, bool) {
	id, err := strconv.Atoi(idStr)
	if err != nil {
		e.SendErrorResponse(w, http.StatusBadRequest, "id must be an integer", "id", errors.ErrorCodeBadRequest)
		return 0, false
	}
	return id, true
}
