package radio

import (
	stderrors "errors"
	"net"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoResponse(t *testing.T) {
	cause := &net.OpError{Op: "dial", Net: "tcp", Err: stderrors.New("connection refused")}
	err := noResponse(errors.Wrap(cause, "radio.tune failed"))

	assert.True(t, stderrors.Is(err, ErrNoResponse))
	assert.True(t, errors.Is(err, ErrNoResponse))

	var opErr *net.OpError
	require.True(t, stderrors.As(err, &opErr))
	assert.Equal(t, "dial", opErr.Op)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNoResponse_AlreadyMarked(t *testing.T) {
	err := noResponse(stderrors.New("timeout"))
	assert.Same(t, err, noResponse(err))
}

func TestRemoteError_NotNoResponse(t *testing.T) {
	var err error = &RemoteError{Station: "globaltags/jazz", Message: "Not enough content"}
	assert.False(t, stderrors.Is(err, ErrNoResponse))
	assert.Equal(t, "couldn't set station to globaltags/jazz: Not enough content", err.Error())
}
