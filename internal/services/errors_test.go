package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"perfdash-backend/internal/config"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"googleapi 429", &googleapi.Error{Code: 429, Message: "slow down"}, KindRateLimited},
		{"googleapi 404", &googleapi.Error{Code: 404, Message: "models/x"}, KindNotFound},
		{"googleapi 400 unsupported", &googleapi.Error{Code: 400, Message: "model is not supported for generateContent"}, KindNotFound},
		{"googleapi 500", &googleapi.Error{Code: 500, Message: "internal"}, KindUnknown},
		{"message resource exhausted", errors.New("rpc error: Resource Exhausted"), KindRateLimited},
		{"message quota", errors.New("You exceeded your current quota"), KindRateLimited},
		{"message 404", errors.New("Gemini API error: 404 model gone"), KindNotFound},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), KindTransport},
		{"unknown", errors.New("boom"), KindUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyError("gemini-1.5-flash", tc.err)
			require.NotNil(t, got)
			assert.Equal(t, tc.want, got.Kind)
			assert.Equal(t, "gemini-1.5-flash", got.Model)
			assert.ErrorIs(t, got, tc.err)
		})
	}
}

func TestClassifyError_GRPCStatus(t *testing.T) {
	apiErr, ok := apierror.FromError(status.Error(codes.ResourceExhausted, "slow down"))
	require.True(t, ok)
	assert.Equal(t, KindRateLimited, ClassifyError("m", apiErr).Kind)

	apiErr, ok = apierror.FromError(status.Error(codes.NotFound, "no such model"))
	require.True(t, ok)
	assert.Equal(t, KindNotFound, ClassifyError("m", apiErr).Kind)
}

func TestClassifyError_PassesThroughClassified(t *testing.T) {
	orig := &ExtractionError{Kind: KindInvalidResponse, Model: "a", Err: ErrEmptyResponse}
	assert.Same(t, orig, ClassifyError("b", fmt.Errorf("wrapped: %w", orig)))
	assert.Nil(t, ClassifyError("b", nil))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"config", &config.ConfigError{Setting: "GEMINI_API_KEY"}, "Configuration missing: please set GEMINI_API_KEY in your environment (.env)."},
		{"bad key", errors.New("googleapi: Error 400: API key not valid. Please pass a valid API key."), "Invalid API Key. Please check your configuration."},
		{"rate limited", &ExtractionError{Kind: KindRateLimited, Err: errors.New("429")}, "Server busy (Quota limit). Please wait 60s and try again."},
		{"other", errors.New("boom"), "Extraction failed: boom"},
		{"nil", nil, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, UserMessage(tc.err))
		})
	}
}
