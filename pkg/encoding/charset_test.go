package encoding

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharsetReader_Latin1(t *testing.T) {
	// "café" in ISO-8859-1
	input := []byte{'c', 'a', 'f', 0xE9}

	r, err := CharsetReader("ISO-8859-1", strings.NewReader(string(input)))
	require.NoError(t, err)

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "café", string(out))
}

func TestCharsetReader_UTF8Passthrough(t *testing.T) {
	src := strings.NewReader("plain")
	r, err := CharsetReader("UTF-8", src)
	require.NoError(t, err)
	assert.Same(t, src, r)
}

func TestCharsetReader_Unknown(t *testing.T) {
	_, err := CharsetReader("x-made-up", strings.NewReader(""))
	assert.Error(t, err)
}
