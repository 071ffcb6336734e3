package hasher

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum(t *testing.T) {
	content := []byte("hello")
	want := sha256.Sum256(content)

	digest, err := Sum(bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(want[:]), digest)
}

func TestSumDeterministic(t *testing.T) {
	r := bytes.NewReader([]byte("some file content"))

	first, err := Sum(r)
	require.NoError(t, err)

	second, err := Sum(r)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSumRestoresPosition(t *testing.T) {
	content := []byte("hello world")
	r := bytes.NewReader(content)

	// Read partway so the cursor is mid-stream before hashing.
	buf := make([]byte, 6)
	_, err := r.Read(buf)
	require.NoError(t, err)

	digest, err := Sum(r)
	require.NoError(t, err)

	// Hash covers the full content regardless of the cursor.
	want := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(want[:]), digest)

	// The cursor is back where the caller left it.
	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "world", string(rest))
}

func TestSumLargerThanChunk(t *testing.T) {
	content := []byte(strings.Repeat("abcdef", 20000)) // well past one chunk
	want := sha256.Sum256(content)

	digest, err := Sum(bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(want[:]), digest)
}

func TestSumBytesMatchesSum(t *testing.T) {
	content := []byte("identical bytes, identical digest")

	streamed, err := Sum(bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, SumBytes(content), streamed)
}

func TestSumEmpty(t *testing.T) {
	digest, err := Sum(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Equal(t, SumBytes(nil), digest)
	assert.Len(t, digest, 64)
}
