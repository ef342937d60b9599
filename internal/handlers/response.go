package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"products-api/internal/apperror"
	"products-api/internal/middleware"
)

// Códigos de error del cuerpo de respuesta
const (
	CodeInvalidInput      = "INVALID_INPUT"
	CodeNotFound          = "NOT_FOUND"
	CodeStoreUnavailable  = "STORE_UNAVAILABLE"
	CodeStoreTimeout      = "STORE_TIMEOUT"
	CodeAggregationFailed = "AGGREGATION_FAILED"
	CodeInternal          = "INTERNAL_ERROR"
)

type APIResponse struct {
	Success  bool        `json:"success"`
	Message  string      `json:"message,omitempty"`
	Data     interface{} `json:"data,omitempty"`
	Error    *APIError   `json:"error,omitempty"`
	Metadata Metadata    `json:"metadata"`
}

type APIError struct {
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"requestId,omitempty"`
}

func metadata(c *gin.Context) Metadata {
	return Metadata{
		Timestamp: time.Now().UTC(),
		RequestID: c.GetString(middleware.RequestIDKey),
	}
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, APIResponse{
		Success:  true,
		Message:  message,
		Data:     data,
		Metadata: metadata(c),
	})
}

// responder traduce los errores de dominio a HTTP; es el único sitio que lo hace
type responder struct {
	log   *logrus.Logger
	debug bool
}

func (r responder) fail(c *gin.Context, err error) {
	status, body := r.classify(err)

	entry := r.log.WithFields(logrus.Fields{
		"request_id": c.GetString(middleware.RequestIDKey),
		"status":     status,
		"code":       body.Code,
	}).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}

	c.AbortWithStatusJSON(status, APIResponse{
		Success:  false,
		Message:  message(status, err),
		Error:    body,
		Metadata: metadata(c),
	})
}

func (r responder) classify(err error) (int, *APIError) {
	body := &APIError{Details: map[string]interface{}{}}
	status := http.StatusInternalServerError

	var validationErr *apperror.ValidationError
	var aggErr *apperror.AggregationError
	var storeErr *apperror.StoreError

	switch {
	case errors.As(err, &validationErr):
		status, body.Code = http.StatusBadRequest, CodeInvalidInput
		if len(validationErr.Fields) > 0 {
			body.Details["fields"] = validationErr.Fields
		}
	case errors.Is(err, apperror.ErrInvalidInput):
		status, body.Code = http.StatusBadRequest, CodeInvalidInput
	case errors.Is(err, apperror.ErrNotFound):
		status, body.Code = http.StatusNotFound, CodeNotFound
	case errors.As(err, &aggErr):
		status, body.Code = http.StatusInternalServerError, CodeAggregationFailed
		body.Details["stage"] = aggErr.Stage
	case errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &storeErr) && storeErr.Timeout):
		status, body.Code = http.StatusGatewayTimeout, CodeStoreTimeout
	case errors.Is(err, apperror.ErrStoreUnavailable):
		status, body.Code = http.StatusServiceUnavailable, CodeStoreUnavailable
	default:
		body.Code = CodeInternal
	}

	if r.debug && status >= http.StatusInternalServerError {
		body.Details["cause"] = err.Error()
	}
	if len(body.Details) == 0 {
		body.Details = nil
	}
	return status, body
}

func message(status int, err error) string {
	var validationErr *apperror.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Message
	case status == http.StatusNotFound:
		return apperror.ErrNotFound.Error()
	case status == http.StatusGatewayTimeout:
		return "the store did not answer in time"
	case status == http.StatusServiceUnavailable:
		return "the store is unavailable"
	case errors.Is(err, apperror.ErrAggregationFailed):
		return "failed to compute statistics"
	}
	return "internal server error"
}
