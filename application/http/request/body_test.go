package request

import (
	"io"
	"strings"
	"testing"

	"webstack/application/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestRawBodyContentLength(t *testing.T) {
	src := &countingReader{r: strings.NewReader("0123456789")}

	r := New(Incoming{
		Method: "POST",
		URI:    "/",
		Fields: []http.Field{{Name: "Content-Length", Value: "10"}},
		Body:   src,
	}, discard(), Options{})

	body, err := r.RawBody(BodyOptions{})
	require.NoError(t, err)
	assert.Equal(t, []byte("0123456789"), body.Bytes)
	assert.False(t, body.IsText)

	reads := src.reads

	again, err := r.RawBody(BodyOptions{})
	require.NoError(t, err)
	assert.Equal(t, body.Bytes, again.Bytes)
	assert.Equal(t, reads, src.reads, "second fetch must not touch the source")
}

func TestBodyStreamBounded(t *testing.T) {
	r := New(Incoming{
		Method: "POST",
		URI:    "/",
		Fields: []http.Field{{Name: "Content-Length", Value: "10"}},
		Body:   strings.NewReader("0123456789tail"),
	}, discard(), Options{})

	stream, err := r.BodyStream(4)
	require.NoError(t, err)

	got, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, []byte("012345"), got, "bounded to Content-Length minus alreadyRead")
}

func TestBodyStreamUnbounded(t *testing.T) {
	r := New(Incoming{
		Method: "POST",
		URI:    "/",
		Fields: []http.Field{{Name: "Transfer-Encoding", Value: "chunked"}},
		Body:   strings.NewReader("all of it"),
	}, discard(), Options{})

	stream, err := r.BodyStream(0)
	require.NoError(t, err)

	got, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, []byte("all of it"), got)
}

func TestBodyAccessConflicts(t *testing.T) {
	t.Run("stream then buffered", func(t *testing.T) {
		r := New(postIncoming("text/plain", "data"), discard(), Options{})

		_, err := r.BodyStream(0)
		require.NoError(t, err)

		_, err = r.RawBody(BodyOptions{})
		assert.ErrorIs(t, err, ErrBodyAccessConflict)
	})

	t.Run("buffered then stream", func(t *testing.T) {
		r := New(postIncoming("text/plain", "data"), discard(), Options{})

		_, err := r.RawBody(BodyOptions{ForceBinary: true})
		require.NoError(t, err)

		_, err = r.BodyStream(0)
		assert.ErrorIs(t, err, ErrBodyAccessConflict)
	})

	t.Run("stream opened twice", func(t *testing.T) {
		r := New(postIncoming("text/plain", "data"), discard(), Options{})

		_, err := r.BodyStream(0)
		require.NoError(t, err)

		_, err = r.BodyStream(0)
		assert.ErrorIs(t, err, ErrBodyAccessConflict)
	})
}

func TestRawBodyForceConflict(t *testing.T) {
	src := &countingReader{r: strings.NewReader("data")}

	in := postIncoming("text/plain", "data")
	in.Body = src

	r := New(in, discard(), Options{})

	_, err := r.RawBody(BodyOptions{ForceText: true, ForceBinary: true})
	assert.ErrorIs(t, err, ErrTextBinaryConflict)
	assert.Zero(t, src.reads, "contract violation fails before any read")
}

func TestRawBodyTextInferred(t *testing.T) {
	body := "héllo"
	in := postIncoming("text/plain; charset=utf-8", body)

	r := New(in, discard(), Options{})

	got, err := r.RawBody(BodyOptions{})
	require.NoError(t, err)
	assert.True(t, got.IsText)
	assert.Equal(t, body, got.Text)
	assert.Equal(t, []byte(body), got.Bytes)
}

func TestRawBodyEncodingOverride(t *testing.T) {
	// 0xE9 is 'é' in latin-1.
	in := postIncoming("application/octet-stream", "caf\xe9")

	r := New(in, discard(), Options{})

	got, err := r.RawBody(BodyOptions{ForceText: true, Encoding: charmap.ISO8859_1})
	require.NoError(t, err)
	assert.True(t, got.IsText)
	assert.Equal(t, "café", got.Text)
}

func TestRawBodyBinaryForText(t *testing.T) {
	in := postIncoming("text/plain; charset=utf-8", "raw")

	r := New(in, discard(), Options{})

	got, err := r.RawBody(BodyOptions{ForceBinary: true})
	require.NoError(t, err)
	assert.False(t, got.IsText)
	assert.Empty(t, got.Text)
	assert.Equal(t, []byte("raw"), got.Bytes)
}

func TestRawBodyUnsized(t *testing.T) {
	payload := strings.Repeat("x", 20)

	r := New(Incoming{
		Method: "POST",
		URI:    "/",
		Fields: []http.Field{{Name: "Transfer-Encoding", Value: "chunked"}},
		Body:   strings.NewReader(payload),
	}, discard(), Options{BlockSize: 8})

	got, err := r.RawBody(BodyOptions{})
	require.NoError(t, err)
	assert.Equal(t, []byte(payload), got.Bytes)
}

func TestRawBodyNoFraming(t *testing.T) {
	src := &countingReader{r: strings.NewReader("ignored")}

	r := New(Incoming{
		Method: "POST",
		URI:    "/",
		Body:   src,
	}, discard(), Options{})

	got, err := r.RawBody(BodyOptions{})
	require.NoError(t, err)
	assert.Empty(t, got.Bytes)
	assert.Zero(t, src.reads)
}

func TestFramingConflictWarning(t *testing.T) {
	logger, buf := recording()

	r := New(Incoming{
		Method: "POST",
		URI:    "/",
		Fields: []http.Field{
			{Name: "Content-Length", Value: "4"},
			{Name: "Transfer-Encoding", Value: "chunked"},
		},
		Body: strings.NewReader("abcd"),
	}, logger, Options{})

	got, err := r.RawBody(BodyOptions{})
	require.NoError(t, err, "the declared length wins")
	assert.Equal(t, []byte("abcd"), got.Bytes)

	assert.Contains(t, buf.String(), "both Content-Length and chunked framing signaled")
}

func TestRawBodyTruncatedSource(t *testing.T) {
	r := New(Incoming{
		Method: "POST",
		URI:    "/",
		Fields: []http.Field{{Name: "Content-Length", Value: "10"}},
		Body:   strings.NewReader("short"),
	}, discard(), Options{})

	_, err := r.RawBody(BodyOptions{})
	assert.Error(t, err)
}
