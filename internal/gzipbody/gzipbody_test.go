package gzipbody_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/epogrebnyak/httpclient/internal/gzipbody"
	"github.com/stretchr/testify/require"
)

func TestReaderRoundTripsWithWriter(t *testing.T) {
	var buf bytes.Buffer
	w := gzipbody.NewWriter(&buf)
	_, err := w.Write([]byte("abc"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := gzipbody.NewReader(&buf)
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "abc", string(got))
}

func TestReaderRejectsNonGzipInput(t *testing.T) {
	_, err := gzipbody.NewReader(bytes.NewBufferString("not gzip"))
	require.Error(t, err)
}
