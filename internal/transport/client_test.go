package transport

import (
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeTimeoutErr struct{}

func (fakeTimeoutErr) Error() string   { return "i/o timeout" }
func (fakeTimeoutErr) Timeout() bool   { return true }
func (fakeTimeoutErr) Temporary() bool { return true }

func TestLowerHeader(t *testing.T) {
	assert.Equal(t, "content-type", lowerHeader("Content-Type"))
	assert.Equal(t, "cf-mitigated", lowerHeader("CF-Mitigated"))
	assert.Equal(t, "x-already-lower", lowerHeader("x-already-lower"))
}

func TestIsTransient_TrueForTimeoutNetError(t *testing.T) {
	var err net.Error = fakeTimeoutErr{}
	assert.True(t, isTransient(err))
}

func TestIsTransient_FalseForNonNetworkError(t *testing.T) {
	assert.False(t, isTransient(errors.New("some other failure")))
}

func TestAsNetError_UnwrapsWrappedNetError(t *testing.T) {
	wrapped := fmt.Errorf("dial: %w", fakeTimeoutErr{})
	var target net.Error
	assert.True(t, asNetError(wrapped, &target))
	assert.True(t, target.Timeout())
}
