package errors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotFound, "module not found")
		assert.Equal(t, "[NOT_FOUND] module not found", err.Error())
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("disk full")
		err := Wrap(original, CodeStorage, "save run")
		assert.Equal(t, "[STORAGE_ERROR] save run: disk full", err.Error())
		assert.ErrorIs(t, err, original)
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeValidationError, "invalid input")
		assert.True(t, IsCode(err, CodeValidationError))
		assert.False(t, IsCode(err, CodeNotFound))
		assert.False(t, IsCode(errors.New("plain"), CodeInternal))
	})

	t.Run("ContextIsSorted", func(t *testing.T) {
		err := AddContext(New(CodeInternal, "parse failed"), CtxPath, "a.html")
		err = AddContext(err, CtxOperation, "parse")
		assert.Equal(t, "[INTERNAL_ERROR] parse failed {operation=parse path=a.html}", err.Error())
	})

	t.Run("AddContextWrapsPlainErrors", func(t *testing.T) {
		err := AddContext(context.Canceled, CtxPath, "a.html")
		assert.True(t, IsCode(err, CodeInternal))
		assert.ErrorIs(t, err, context.Canceled)
	})
}
