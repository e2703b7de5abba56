package fetchstage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/lynxget/internal/model"
)

func TestFetch_RejectsNonHTTPInput(t *testing.T) {
	s := New(nil, nil, nil, StageConfig{})
	_, err := s.Fetch(context.Background(), "not-a-url")
	require.Error(t, err)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, ErrTagInvalidURL, fe.Tag)
}

func TestFetch_RejectsEmptyURL(t *testing.T) {
	s := New(nil, nil, nil, StageConfig{})
	_, err := s.Fetch(context.Background(), "")
	require.Error(t, err)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, ErrTagInvalidURL, fe.Tag)
}

func TestFetchError_IsMatchesOnTagAlone(t *testing.T) {
	err := NewFetchError(ErrTagHTTPError, "blocked", nil)
	target := &FetchError{Tag: ErrTagHTTPError}
	assert.True(t, errors.Is(err, target))

	other := &FetchError{Tag: ErrTagNetwork}
	assert.False(t, errors.Is(err, other))
}

func TestFetchError_UnwrapExposesUnderlyingError(t *testing.T) {
	underlying := errors.New("boom")
	err := NewFetchError(ErrTagNetwork, "transport failed", underlying)
	assert.Equal(t, underlying, errors.Unwrap(err))
}

func TestAnySuggestsAlt_RequiresConfidenceThreshold(t *testing.T) {
	low := []model.AntibotDetection{{Name: "x", SuggestedAction: model.ActionTryArchive, Confidence: 40}}
	high := []model.AntibotDetection{{Name: "x", SuggestedAction: model.ActionTryArchive, Confidence: 95}}

	assert.False(t, anySuggestsAlt(low))
	assert.True(t, anySuggestsAlt(high))
}

func TestQuickValidate_FlagsWrongContentTypeSmallBodyAndThinContent(t *testing.T) {
	htmlBody := []byte(strings.Repeat("word ", 2000))
	assert.Equal(t, ErrorTag(""), quickValidate(model.FetchResult{StatusCode: 200, ContentType: "text/html", Body: htmlBody}))
	assert.Equal(t, ErrTagWrongContentType, quickValidate(model.FetchResult{StatusCode: 200, ContentType: "application/json", Body: htmlBody}))
	assert.Equal(t, ErrTagBodyTooSmall, quickValidate(model.FetchResult{StatusCode: 200, ContentType: "text/html", Body: []byte("too short")}))
	thin := []byte(strings.Repeat("x", minBodyBytes) + " one two three")
	assert.Equal(t, ErrTagInsufficientContent, quickValidate(model.FetchResult{StatusCode: 200, ContentType: "text/html", Body: thin}))
}

func TestHostOf_StripsSchemeAndPath(t *testing.T) {
	assert.Equal(t, "example.com", hostOf("https://example.com/a/b?x=1"))
	assert.Equal(t, "example.com", hostOf("http://example.com"))
}
