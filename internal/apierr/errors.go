// Package apierr defines the error taxonomy of the agent and the
// normalization applied at its boundaries.
//
// Failures are typed at the point where they happen: a non-2xx provider
// response becomes a ResponseError, a mint account that cannot be decoded
// becomes a MintDecodeError, and a reference that resolves to nothing
// becomes a TokenNotFoundError. Normalize folds any of these (or a plain
// error) into a single NormalizedError shape for logging and HTTP mapping,
// and is idempotent.
package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBodyBytes caps how much of a failed response body is retained.
const maxErrorBodyBytes = 64 * 1024

// ResponseError is a provider call that came back with a non-2xx status.
// Message and Code are extracted from the response body when possible.
type ResponseError struct {
	Status  int
	URL     string
	Message string
	Code    string
	Body    []byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// errorBody is the shape most aggregator error payloads take. Jupiter uses
// error/errorCode, other upstreams use message/code.
type errorBody struct {
	Message   string `json:"message"`
	Error     string `json:"error"`
	ErrorCode string `json:"errorCode"`
	Code      string `json:"code"`
}

// FromResponse builds a ResponseError from a failed HTTP response,
// consuming (part of) its body. The body is parsed as JSON first, then
// kept as plain text, then discarded in favor of a generic "HTTP <status>"
// message.
func FromResponse(resp *http.Response) *ResponseError {
	re := &ResponseError{
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("HTTP %d", resp.StatusCode),
	}
	if resp.Request != nil && resp.Request.URL != nil {
		re.URL = resp.Request.URL.String()
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil || len(body) == 0 {
		return re
	}
	re.Body = body

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		switch {
		case parsed.Message != "":
			re.Message = parsed.Message
		case parsed.Error != "":
			re.Message = parsed.Error
		}
		switch {
		case parsed.ErrorCode != "":
			re.Code = parsed.ErrorCode
		case parsed.Code != "":
			re.Code = parsed.Code
		}
		return re
	}

	if txt := strings.TrimSpace(string(body)); txt != "" {
		re.Message = txt
	}
	return re
}

// NormalizedError is the uniform failure shape surfaced to callers.
// Raw retains the original error for debugging and unwrapping.
type NormalizedError struct {
	Message string
	Status  int
	Code    string
	URL     string
	Raw     error
}

func (e *NormalizedError) Error() string { return e.Message }

func (e *NormalizedError) Unwrap() error { return e.Raw }

// Normalize maps an arbitrary error into a NormalizedError. Rules, first
// match wins: already normalized, typed provider response, plain error
// message, unknown. Applying Normalize to an already normalized error
// returns it unchanged.
func Normalize(err error) *NormalizedError {
	var ne *NormalizedError
	if errors.As(err, &ne) {
		return ne
	}

	var re *ResponseError
	if errors.As(err, &re) {
		return &NormalizedError{
			Message: re.Message,
			Status:  re.Status,
			Code:    re.Code,
			URL:     re.URL,
			Raw:     re,
		}
	}

	if err != nil {
		return &NormalizedError{Message: err.Error(), Raw: err}
	}
	return &NormalizedError{Message: "unknown error"}
}

// IsNormalized reports whether err already carries the normalized shape,
// so later stages never normalize twice.
func IsNormalized(err error) bool {
	var ne *NormalizedError
	return errors.As(err, &ne)
}

// Side names which leg of a trade an error refers to.
type Side string

const (
	SideSell Side = "sell"
	SideBuy  Side = "buy"
)

// TokenNotFoundError is the deliberate business outcome of a token
// reference that matched nothing. It is raised by the orchestrator, not
// the resolver, so it carries which side of the trade failed.
type TokenNotFoundError struct {
	Side Side
	Ref  string
}

func (e *TokenNotFoundError) Error() string {
	return fmt.Sprintf("%s token not found: %s", e.Side, e.Ref)
}

// StatusCode returns the fixed HTTP status this outcome maps to.
func (e *TokenNotFoundError) StatusCode() int { return http.StatusNotFound }

// MarshalJSON renders the wire shape {errorType, description}.
func (e *TokenNotFoundError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ErrorType   string `json:"errorType"`
		Description string `json:"description"`
	}{
		ErrorType:   "TokenNotFound",
		Description: e.Error(),
	})
}

// MintDecodeError means the account at Address exists but does not hold a
// decodable token mint. It is deliberately distinct from TokenNotFound so
// callers can tell "no such identifier" from "identifier is not a token".
type MintDecodeError struct {
	Address string
	Err     error
}

func (e *MintDecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("failed to decode mint account %s", e.Address)
	}
	return fmt.Sprintf("failed to decode mint account %s: %v", e.Address, e.Err)
}

func (e *MintDecodeError) Unwrap() error { return e.Err }
