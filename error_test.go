package mdextract_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/mdextract"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := mdextract.Errorf(mdextract.EINVALID, "url %q is malformed", "test")

	assert.Equal(t, mdextract.EINVALID, mdextract.ErrorCode(err))
	assert.Equal(t, "url \"test\" is malformed", mdextract.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, mdextract.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, mdextract.ErrorMessage(nil))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	err := errors.New("open /tmp/secret: permission denied")

	assert.Equal(t, mdextract.EINTERNAL, mdextract.ErrorCode(err))
	assert.Equal(t, "Internal error.", mdextract.ErrorMessage(err))
}

func TestWrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("quota exceeded")
	err := fmt.Errorf("submit job: %w", mdextract.Wrap(mdextract.EBACKEND, cause))

	assert.Equal(t, mdextract.EBACKEND, mdextract.ErrorCode(err))
	assert.Equal(t, "quota exceeded", mdextract.ErrorMessage(err))
	assert.ErrorIs(t, err, cause)
}
