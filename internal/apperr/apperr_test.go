package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	base := errors.New("meeting not found")
	wrapped := fmt.Errorf("handle event: %w", E(NotFound, "session_started", base))

	assert.Equal(t, NotFound, KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, base))
	assert.Equal(t, Internal, KindOf(errors.New("boom")))
	assert.Nil(t, E(AuthFailure, "verify", nil))
	assert.False(t, Is(nil, Internal))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{AuthFailure, http.StatusUnauthorized},
		{MalformedInput, http.StatusBadRequest},
		{NotFound, http.StatusNotFound},
		{UpstreamFailure, http.StatusOK},
		{Internal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.HTTPStatus())
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := E(MalformedInput, "decode", errors.New("invalid JSON"))
	assert.Equal(t, "decode: invalid JSON", err.Error())
}
