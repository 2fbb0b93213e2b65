package apierr

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeResponse(status int, body string) *http.Response {
	u, _ := url.Parse("https://api.example.com/swap/v1/quote")
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    &http.Request{URL: u},
	}
}

func TestFromResponse_JSONMessage(t *testing.T) {
	re := FromResponse(fakeResponse(404, `{"message":"not found","code":"NOT_FOUND"}`))

	assert.Equal(t, 404, re.Status)
	assert.Equal(t, "not found", re.Message)
	assert.Equal(t, "NOT_FOUND", re.Code)
	assert.Equal(t, "https://api.example.com/swap/v1/quote", re.URL)
}

func TestFromResponse_JupiterErrorShape(t *testing.T) {
	re := FromResponse(fakeResponse(400, `{"error":"Route not found","errorCode":"COULD_NOT_FIND_ANY_ROUTE"}`))

	assert.Equal(t, "Route not found", re.Message)
	assert.Equal(t, "COULD_NOT_FIND_ANY_ROUTE", re.Code)
}

func TestFromResponse_PlainTextBody(t *testing.T) {
	re := FromResponse(fakeResponse(502, "bad gateway"))

	assert.Equal(t, 502, re.Status)
	assert.Equal(t, "bad gateway", re.Message)
	assert.Empty(t, re.Code)
}

func TestFromResponse_EmptyBody(t *testing.T) {
	re := FromResponse(fakeResponse(500, ""))

	assert.Equal(t, "HTTP 500", re.Message)
}

func TestFromResponse_JSONWithoutKnownFields(t *testing.T) {
	re := FromResponse(fakeResponse(503, `{"detail":"overloaded"}`))

	// Parses as JSON but carries no message fields; keeps the fallback.
	assert.Equal(t, "HTTP 503", re.Message)
	assert.NotEmpty(t, re.Body)
}

func TestNormalize_ResponseError(t *testing.T) {
	re := FromResponse(fakeResponse(404, `{"message":"not found"}`))

	ne := Normalize(re)
	require.NotNil(t, ne)
	assert.Equal(t, "not found", ne.Message)
	assert.Equal(t, 404, ne.Status)
	assert.Equal(t, "https://api.example.com/swap/v1/quote", ne.URL)
	assert.Same(t, re, ne.Raw)
}

func TestNormalize_PlainError(t *testing.T) {
	raw := errors.New("boom")

	ne := Normalize(raw)
	assert.Equal(t, "boom", ne.Message)
	assert.Zero(t, ne.Status)
	assert.Same(t, raw, ne.Raw)
}

func TestNormalize_Nil(t *testing.T) {
	ne := Normalize(nil)
	assert.Equal(t, "unknown error", ne.Message)
}

func TestNormalize_Idempotent(t *testing.T) {
	first := Normalize(errors.New("boom"))
	second := Normalize(first)

	assert.Same(t, first, second)
}

func TestNormalize_Wrapped(t *testing.T) {
	re := FromResponse(fakeResponse(429, `{"message":"rate limited"}`))
	wrapped := errors.Join(errors.New("fetching quote"), re)

	ne := Normalize(wrapped)
	assert.Equal(t, 429, ne.Status)
	assert.Equal(t, "rate limited", ne.Message)
}

func TestIsNormalized(t *testing.T) {
	assert.False(t, IsNormalized(errors.New("boom")))
	assert.True(t, IsNormalized(Normalize(errors.New("boom"))))
}

func TestTokenNotFoundError(t *testing.T) {
	err := &TokenNotFoundError{Side: SideSell, Ref: "NOPE"}

	assert.Equal(t, "sell token not found: NOPE", err.Error())
	assert.Equal(t, http.StatusNotFound, err.StatusCode())

	data, jerr := err.MarshalJSON()
	require.NoError(t, jerr)
	assert.JSONEq(t, `{"errorType":"TokenNotFound","description":"sell token not found: NOPE"}`, string(data))
}

func TestMintDecodeError_Unwrap(t *testing.T) {
	cause := errors.New("account data too short")
	err := &MintDecodeError{Address: "abc", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "abc")
	assert.Contains(t, err.Error(), "too short")
}
