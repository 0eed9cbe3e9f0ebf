package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"

	dErrors "vaxreg/pkg/domain-errors"
)

// ContentTypeHTML is used for structural failures (missing parameters, unknown resources).
const ContentTypeHTML = "text/html; charset=utf-8"

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteHTML writes a minimal HTML error page. The message is escaped.
func WriteHTML(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", ContentTypeHTML)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	title := fmt.Sprintf("%d %s", status, http.StatusText(status))
	_, _ = fmt.Fprintf(w, "<!doctype html>\n<html><head><title>%s</title></head><body><h1>%s</h1><p>%s</p></body></html>\n",
		title, title, html.EscapeString(message))
}

// WriteError centralizes domain error translation to HTTP responses.
// It translates transport-agnostic domain errors into HTTP status codes and error responses.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		status := DomainCodeToHTTPStatus(domainErr.Code)
		code := DomainCodeToHTTPCode(domainErr.Code)
		response := map[string]string{
			"error": code,
		}
		if domainErr.Message != "" && status < http.StatusInternalServerError {
			response["error_description"] = domainErr.Message
		}
		WriteJSON(w, status, response)
		return
	}

	WriteJSON(w, http.StatusInternalServerError, map[string]string{
		"error": DomainCodeToHTTPCode(dErrors.CodeInternal),
	})
}

// WriteHTMLError is WriteError for routes whose structural failures are HTML pages.
// Internal errors stay JSON so that clients never see stack-adjacent detail in markup.
func WriteHTMLError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := DomainCodeToHTTPStatus(code)
	if status >= http.StatusInternalServerError {
		WriteError(w, err)
		return
	}
	var domainErr *dErrors.Error
	msg := http.StatusText(status)
	if errors.As(err, &domainErr) && domainErr.Message != "" {
		msg = domainErr.Message
	}
	WriteHTML(w, status, msg)
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
// Registration rejections are reported with 200: the request was processed and
// the outcome is carried in the body.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeInvalidCitizenID, dErrors.CodeInvalidBirthDate,
		dErrors.CodeMinimumAgeNotReached, dErrors.CodeAlreadyRegistered:
		return http.StatusOK
	case dErrors.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// DomainCodeToHTTPCode translates domain error codes to HTTP error codes (for JSON response).
func DomainCodeToHTTPCode(code dErrors.Code) string {
	switch code {
	case dErrors.CodeNotFound:
		return "not_found"
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput:
		return "bad_request"
	case dErrors.CodeValidation:
		return "validation_error"
	case dErrors.CodeConflict:
		return "conflict"
	case dErrors.CodeUnauthorized:
		return "unauthorized"
	case dErrors.CodeTimeout:
		return "timeout"
	case dErrors.CodeInvalidCitizenID, dErrors.CodeInvalidBirthDate,
		dErrors.CodeMinimumAgeNotReached, dErrors.CodeAlreadyRegistered:
		return string(code)
	default:
		return "internal_error"
	}
}
