// Package http serves the household finance UI and its JSON API.
//
// This file implements the builder for JSON API responses. Every response
// carries an optional {message, tone} status and the persistence warning
// header.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"homefinances/internal/core"
	"homefinances/internal/register"
	"homefinances/internal/report"
	"homefinances/internal/services"
)

// HeaderPersistWarning is set to "true" while the last slot write failed.
const HeaderPersistWarning = "X-Persist-Warning"

type envelope struct {
	Status *services.Status `json:"status,omitempty"`
	Data   any              `json:"data,omitempty"`
}

// ResponseBuilder provides a fluent API for JSON responses.
type ResponseBuilder struct {
	statusCode int
	status     *services.Status
	data       any
	headers    map[string]string
}

// NewResponse creates a builder with a default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *ResponseBuilder) Code(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Message attaches a user-facing status message.
func (b *ResponseBuilder) Message(message, tone string) *ResponseBuilder {
	b.status = &services.Status{Message: message, Tone: tone}
	return b
}

func (b *ResponseBuilder) WithStatus(s services.Status) *ResponseBuilder {
	if s.Message == "" {
		return b
	}
	b.status = &s
	return b
}

func (b *ResponseBuilder) Data(v any) *ResponseBuilder {
	b.data = v
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// PersistWarning flags a failed write on the response.
func (b *ResponseBuilder) PersistWarning(failed bool) *ResponseBuilder {
	if failed {
		b.headers[HeaderPersistWarning] = "true"
	}
	return b
}

// Write sends the built response.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(b.statusCode)
	if b.statusCode == http.StatusNoContent {
		return
	}
	_ = json.NewEncoder(w).Encode(envelope{Status: b.status, Data: b.data})
}

// ErrorResponse creates an error response carrying message.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().Code(statusCode).Message(message, services.ToneError)
}

func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// ErrorFor maps a domain error to its status code. Unknown errors become a
// 500 with a generic message.
func ErrorFor(err error) *ResponseBuilder {
	switch {
	case errors.Is(err, core.ErrDuplicateAccount), errors.Is(err, core.ErrDuplicateReport), errors.Is(err, register.ErrNotEditing):
		return ErrorResponse(http.StatusConflict, userMessage(err))
	case errors.Is(err, core.ErrAccountNotFound), errors.Is(err, core.ErrTransactionNotFound):
		return NotFoundError(userMessage(err))
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrAmountDirection),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrMissingType),
		errors.Is(err, core.ErrNoAccounts),
		errors.Is(err, core.ErrInvalidMonth),
		errors.Is(err, report.ErrNoReports):
		return BadRequestError(userMessage(err))
	case errors.Is(err, services.ErrSheetsDisabled):
		return ErrorResponse(http.StatusServiceUnavailable, services.ErrSheetsDisabled.Error())
	}
	return InternalServerError("Something went wrong. Please try again.")
}

// userMessage strips wrapping context down to the sentinel text.
func userMessage(err error) string {
	for _, sentinel := range []error{
		core.ErrDuplicateAccount, core.ErrDuplicateReport, register.ErrNotEditing,
		core.ErrAccountNotFound, core.ErrTransactionNotFound,
		core.ErrInvalidAmount, core.ErrInvalidDate, core.ErrInvalidType,
		core.ErrAmountDirection, core.ErrEmptyName, core.ErrMissingType,
		core.ErrNoAccounts, core.ErrInvalidMonth, report.ErrNoReports,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
