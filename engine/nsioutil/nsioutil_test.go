package nsioutil

import (
	"bytes"
	"io"
	"testing"

	"github.com/bmizerany/assert"
	"github.com/pkg/errors"
)

func TestIsConnectionError(t *testing.T) {
	assert.T(t, !IsConnectionError(nil))
	assert.T(t, !IsConnectionError("not an error"))
	assert.T(t, IsConnectionError(io.EOF))
	assert.T(t, IsConnectionError(errors.Wrap(io.EOF, "recv failed")))
	assert.T(t, !IsConnectionError(errors.New("some other error")))
}

func TestWriteAllReadAll(t *testing.T) {
	var buf bytes.Buffer
	data := []byte("netsync")
	assert.Equal(t, nil, WriteAll(&buf, data))

	read := make([]byte, len(data))
	assert.Equal(t, nil, ReadAll(&buf, read))
	assert.Equal(t, data, read)
}
