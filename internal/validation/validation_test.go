package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmail(t *testing.T) {
	valid := []string{"ann@x.com", "first.last@example.org", "a-b@sub.domain.io"}
	invalid := []string{"", "ann", "ann@", "@x.com", "ann@x", "ann@x.c", "ann@x.comm", "a b@x.com"}

	for _, s := range valid {
		assert.True(t, IsEmail(s), s)
	}
	for _, s := range invalid {
		assert.False(t, IsEmail(s), s)
	}
}

type sample struct {
	Name  string `validate:"required,max=5"`
	Email string `validate:"required,emailaddr"`
	Age   *int   `validate:"omitempty,min=0,max=150"`
}

func TestMessage(t *testing.T) {
	v := New()
	age := 200

	tests := []struct {
		name string
		in   sample
		want string
	}{
		{"missing name", sample{Email: "ann@x.com"}, "Please provide a name"},
		{"long name", sample{Name: "abcdefg", Email: "ann@x.com"}, "Name cannot be more than 5 characters"},
		{"missing email", sample{Name: "Ann"}, "Please provide an email"},
		{"bad email", sample{Name: "Ann", Email: "nope"}, "Please provide a valid email"},
		{"age", sample{Name: "Ann", Email: "ann@x.com", Age: &age}, "Age must be at most 150"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			assert.Error(t, err)
			assert.Equal(t, tt.want, Message(err))
		})
	}

	assert.NoError(t, v.Struct(sample{Name: "Ann", Email: "ann@x.com"}))
	assert.Equal(t, "Invalid request", Message(errors.New("other")))
}
