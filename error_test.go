package arachne_test

import (
	"errors"
	"testing"

	"github.com/fwojciec/arachne"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := arachne.Errorf(arachne.EINVALID, "concurrency %d out of range", 0)

	assert.Equal(t, arachne.EINVALID, arachne.ErrorCode(err))
	assert.Equal(t, "concurrency 0 out of range", arachne.ErrorMessage(err))
	assert.Equal(t, "invalid: concurrency 0 out of range", err.Error())
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := arachne.WrapError(arachne.ESCRAPE, cause, "fetch https://example.com")

	assert.Equal(t, arachne.ESCRAPE, arachne.ErrorCode(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, arachne.EINTERNAL, arachne.ErrorCode(err))
	assert.Equal(t, "Internal error", arachne.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, arachne.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, arachne.ErrorMessage(nil))
}
