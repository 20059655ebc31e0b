package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"

	"perfdash-backend/internal/config"
)

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindRateLimited
	KindNotFound
	KindTransport
	KindInvalidResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindNotFound:
		return "not_found"
	case KindTransport:
		return "transport"
	case KindInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// ExtractionError is a provider failure reduced to one ErrorKind. It is
// produced once at the client boundary; the retry policy and the
// orchestrator only ever switch on Kind.
type ExtractionError struct {
	Kind       ErrorKind
	Model      string
	StatusCode int
	Err        error
}

func (e *ExtractionError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("model %s: %s: %v", e.Model, e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

var (
	ErrAllModelsBusy  = errors.New("all available AI models are busy or failed, please try again later")
	ErrEmptyResponse  = errors.New("empty response")
	ErrSuperseded     = errors.New("extraction superseded by a newer request")
	ErrNoDraft        = errors.New("no extraction draft pending")
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateID    = errors.New("record id already exists")
)

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

var (
	rateLimitMarkers = []string{"429", "resource exhausted", "resource_exhausted", "quota"}
	notFoundMarkers  = []string{"404", "not found", "not supported"}
)

// ClassifyError maps a raw provider error onto the closed ErrorKind set.
// Typed status codes win; message keywords are the fallback for errors that
// arrive without one.
func ClassifyError(model string, err error) *ExtractionError {
	if err == nil {
		return nil
	}
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return ee
	}

	out := &ExtractionError{Kind: KindUnknown, Model: model, Err: err}

	var gErr *googleapi.Error
	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &gErr):
		out.StatusCode = gErr.Code
	case errors.As(err, &apiErr):
		out.StatusCode = apiErr.HTTPCode()
		if out.StatusCode <= 0 && apiErr.GRPCStatus() != nil {
			out.StatusCode = httpCodeFromGRPC(apiErr.GRPCStatus().Code())
		}
	}

	msg := strings.ToLower(err.Error())
	switch out.StatusCode {
	case http.StatusTooManyRequests:
		out.Kind = KindRateLimited
		return out
	case http.StatusNotFound:
		out.Kind = KindNotFound
		return out
	case http.StatusBadRequest:
		if containsAny(msg, "not found", "not supported") {
			out.Kind = KindNotFound
			return out
		}
	}

	if isTransportError(err) {
		out.Kind = KindTransport
		return out
	}

	switch {
	case containsAny(msg, rateLimitMarkers...):
		out.Kind = KindRateLimited
	case containsAny(msg, notFoundMarkers...):
		out.Kind = KindNotFound
	}
	return out
}

func IsRateLimited(err error) bool {
	var ee *ExtractionError
	return errors.As(err, &ee) && ee.Kind == KindRateLimited
}

func KindOf(err error) ErrorKind {
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return KindUnknown
}

// UserMessage renders an extraction failure as text for the operator.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		return fmt.Sprintf("Configuration missing: please set %s in your environment (.env).", cfgErr.Setting)
	}
	if errors.Is(err, ErrSuperseded) {
		return "A newer screenshot is being processed; this result was discarded."
	}

	if strings.Contains(strings.ToLower(err.Error()), "api key not valid") {
		return "Invalid API Key. Please check your configuration."
	}
	if IsRateLimited(err) {
		return "Server busy (Quota limit). Please wait 60s and try again."
	}
	return "Extraction failed: " + err.Error()
}

func isTransportError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED)
}

func httpCodeFromGRPC(c codes.Code) int {
	switch c {
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.NotFound:
		return http.StatusNotFound
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return 0
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
