package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataFor(t *testing.T) {
	t.Parallel()

	cases := map[Code]int{
		CodeValidation:   http.StatusBadRequest,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeForbidden:    http.StatusForbidden,
		CodeNotFound:     http.StatusNotFound,
		CodeConflict:     http.StatusConflict,
		CodeInternal:     http.StatusInternalServerError,
		CodeDependency:   http.StatusServiceUnavailable,
		Code("unknown"):  http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, MetadataFor(code).HTTPStatus, "code %s", code)
	}
}

func TestWrapAndAs(t *testing.T) {
	t.Parallel()

	cause := stdErrors.New("connection refused")
	err := fmt.Errorf("loading vehicles: %w", Wrap(CodeDependency, cause, "vehicle service unavailable"))

	typed := As(err)
	require.NotNil(t, typed)
	assert.Equal(t, CodeDependency, typed.Code())
	assert.Equal(t, "vehicle service unavailable", typed.Message())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeDependency, CodeOf(err))
	assert.Equal(t, CodeInternal, CodeOf(cause))
}

func TestWrapNilCause(t *testing.T) {
	t.Parallel()

	err := Wrap(CodeValidation, nil, "bad input").WithDetails(map[string]string{"quantity": "must be at least 1"})
	assert.Nil(t, err.Unwrap())
	assert.Equal(t, "VALIDATION_ERROR: bad input", err.Error())
	assert.NotNil(t, err.Details())
}

func TestNilError(t *testing.T) {
	t.Parallel()

	var err *Error
	assert.Equal(t, CodeInternal, err.Code())
	assert.Empty(t, err.Message())
	assert.Nil(t, err.Details())
	assert.Nil(t, As(nil))
}
