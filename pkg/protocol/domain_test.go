package protocol

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResourceDerivesNameFromPath(t *testing.T) {
	r, err := NewResource("file:///tmp/report.txt", "", "text")
	require.NoError(t, err)
	assert.Equal(t, "report.txt", r.Name)
	assert.Equal(t, "text", r.MimeType)
}

func TestNewResourceRejectsSchemeless(t *testing.T) {
	_, err := NewResource("not-a-uri", "x", "text")
	assert.Error(t, err)
}

func TestNewResourceCoercesUnknownMimeToText(t *testing.T) {
	r, err := NewResource("str://example/x", "x", "application/octet-stream")
	require.NoError(t, err)
	assert.Equal(t, "text", r.MimeType, "only the exact value \"blob\" survives coercion")
}

func TestResourceIsActiveWithinEpsilon(t *testing.T) {
	r, err := NewResource("str://example/x", "x", "text")
	require.NoError(t, err)

	r, err = r.WithPriority(1.0)
	require.NoError(t, err)
	assert.True(t, r.IsActive())

	r, err = r.WithPriority(0.999999)
	require.NoError(t, err)
	assert.False(t, r.IsActive(), "priority outside resourceActiveEpsilon is not active")
}

func TestNewAnnotationsRejectsOutOfRangePriority(t *testing.T) {
	_, err := NewAnnotations(1.5, "")
	assert.Error(t, err)
	_, err = NewAnnotations(-0.1, "")
	assert.Error(t, err)
}

func TestNewImageContentValidatesBase64AndMimePrefix(t *testing.T) {
	data := base64.StdEncoding.EncodeToString([]byte("fake-png-bytes"))

	_, err := NewImageContent(data, "text/plain")
	assert.Error(t, err, "mime type must start with image/")

	_, err = NewImageContent("not base64!!", "image/png")
	assert.Error(t, err, "data must decode as base64")

	content, err := NewImageContent(data, "image/png")
	require.NoError(t, err)
	assert.Equal(t, ContentImage, content.Type)
}

func TestCallToolResultIsErrorEnvelope(t *testing.T) {
	result := CallToolResult{
		Content: []Content{NewTextContent("division by zero")},
		IsError: true,
	}
	assert.True(t, result.IsError)
	assert.Len(t, result.Content, 1)
}
