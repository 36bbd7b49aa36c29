package core

import (
	stderrors "errors"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidationError_survivesCause(t *testing.T) {
	errInner := errors.New("inner")

	tests := []struct {
		name string
		err  error
	}{
		{name: "fields only", err: NewValidationError(nil, FieldError{Field: "amount", Error: "amount cannot be negative"})},
		{name: "with inner error", err: NewValidationError(errInner, FieldError{Field: "key", Error: "inner"})},
		{name: "wrapped", err: errors.Wrap(NewValidationError(errInner), "doing x")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, IsValidationError(tt.err))
			_, ok := errors.Cause(tt.err).(*ValidationError)
			assert.True(t, ok)
		})
	}

	assert.True(t, stderrors.Is(NewValidationError(errInner), errInner))
}

func TestValidationError_Error(t *testing.T) {
	assert.Equal(t, "amount: amount cannot be negative", NewValidationError(nil, FieldError{Field: "amount", Error: "amount cannot be negative"}).Error())
	assert.Equal(t, "inner", NewValidationError(errors.New("inner")).Error())
	assert.Equal(t, "", NewValidationError(nil).Error())
}
