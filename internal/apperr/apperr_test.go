package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("quantity must be positive")))
	assert.Equal(t, KindAuthorization, KindOf(Authorization("denied")))
	assert.Equal(t, KindNotFound, KindOf(NotFound("site %d not found", 4)))
	assert.Equal(t, KindPersistence, KindOf(errors.New("plain")))

	wrapped := fmt.Errorf("creating transfer: %w", Validation("same site"))
	assert.Equal(t, KindValidation, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindValidation))
	assert.False(t, Is(wrapped, KindNotFound))
}

func TestMessageHidesCause(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := Persistence("inserting movement", cause)

	assert.Equal(t, "inserting movement", Message(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.Equal(t, "internal error", Message(cause))
}
