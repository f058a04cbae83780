package chunked_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/epogrebnyak/httpclient/internal/chunked"
	"github.com/stretchr/testify/require"
)

func TestReaderDecodesChunks(t *testing.T) {
	// scenario 2 from spec 8: "5\r\nhello\r\n6\r\n world\r\n0\r\n\r\n" -> "hello world"
	raw := "5\r\nhello\r\n6\r\n world\r\n0\r\n\r\n"
	r := chunked.NewReader(bytes.NewBufferString(raw))

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(got))
	require.True(t, r.Drained())
}

func TestReaderRoundTripsWithWriter(t *testing.T) {
	var buf bytes.Buffer
	w := chunked.NewWriter(&buf)
	_, err := w.Write([]byte("hello"))
	require.NoError(t, err)
	_, err = w.Write([]byte(" world"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r := chunked.NewReader(&buf)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(got))
	require.True(t, r.Drained())
}

func TestReaderRejectsBadChunkHeader(t *testing.T) {
	r := chunked.NewReader(bytes.NewBufferString("zz\r\nhello\r\n"))
	_, err := io.ReadAll(r)
	require.Error(t, err)
}

func TestReaderRejectsMissingChunkNewline(t *testing.T) {
	// a well-formed chunk header and body, but no trailing CRLF
	r := chunked.NewReader(bytes.NewBufferString("5\r\nhelloXX0\r\n\r\n"))
	_, err := io.ReadAll(r)
	require.Error(t, err)
}

func TestReaderStopsAtZeroChunkBoundary(t *testing.T) {
	// trailing bytes after the blank line ending the (empty) trailer
	// section must NOT be consumed by the decoder.
	raw := "0\r\n\r\nGARBAGE"
	src := bytes.NewBufferString(raw)
	r := chunked.NewReader(src)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Empty(t, got)
	require.True(t, r.Drained())
}

func TestReaderDrainsTrailerHeaders(t *testing.T) {
	// a non-empty trailer section is consumed up to and including its
	// blank line, and nothing after it is touched.
	raw := "0\r\nX-Trailer: 1\r\n\r\nGARBAGE"
	r := chunked.NewReader(bytes.NewBufferString(raw))

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Empty(t, got)
	require.True(t, r.Drained())
}

func TestReaderNotDrainedOnTruncatedTrailer(t *testing.T) {
	// the stream ends mid-trailer, before the blank line: the boundary
	// was never reached, so Drained must report false.
	raw := "0\r\nX-Trailer: 1\r\n"
	r := chunked.NewReader(bytes.NewBufferString(raw))

	_, err := io.ReadAll(r)
	require.Error(t, err)
	require.False(t, r.Drained())
}
