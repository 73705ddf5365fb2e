package form

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"userdesk/local-app/internal/model"
)

func TestReduce(t *testing.T) {
	d := Reduce(Draft{}, SetName{Value: "Alice"})
	d = Reduce(d, SetField(model.FieldEmail, "alice@x.io"))
	d = Reduce(d, SetField(model.FieldPhone, "555"))
	assert.Equal(t, Draft{Name: "Alice", Email: "alice@x.io", Phone: "555"}, d)

	// Invalid values are stored as typed.
	d = Reduce(d, SetEmail{Value: "not-an-email"})
	assert.Equal(t, "not-an-email", d.Email)

	d.ID = 4
	assert.Equal(t, Draft{}, Reduce(d, Reset{}))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		draft Draft
		want  error
	}{
		{"valid", Draft{Name: "A", Email: "a@b.co"}, nil},
		{"missing name", Draft{Email: "a@b.co"}, ErrRequired},
		{"blank name", Draft{Name: "  ", Email: "a@b.co"}, ErrRequired},
		{"missing email", Draft{Name: "A"}, ErrRequired},
		{"no at", Draft{Name: "A", Email: "a.b.co"}, ErrInvalidEmail},
		{"short tld", Draft{Name: "A", Email: "a@b.c"}, ErrInvalidEmail},
		{"no domain dot", Draft{Name: "A", Email: "a@b"}, ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.draft))
		})
	}
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("a@b.co"))
	assert.True(t, ValidEmail("first.last+tag@mail.example.org"))
	assert.False(t, ValidEmail("a@b"))
	assert.False(t, ValidEmail("a b@c.io"))
	assert.False(t, ValidEmail("@c.io"))
}
