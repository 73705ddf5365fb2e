// Package form holds the edit buffer behind the add/edit form.
package form

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"userdesk/local-app/internal/model"
)

var (
	// ErrRequired is reported when name or email is blank.
	ErrRequired = errors.New("Name and Email are required")
	// ErrInvalidEmail is reported when the email does not look like local@domain.tld.
	ErrInvalidEmail = errors.New("Please enter a valid email address")
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Draft is the user record being edited.
type Draft = model.User

// Action is a mutation of a Draft. The set of actions is closed.
type Action interface {
	isAction()
}

type SetName struct{ Value string }
type SetEmail struct{ Value string }
type SetPhone struct{ Value string }
type Reset struct{}

func (SetName) isAction()  {}
func (SetEmail) isAction() {}
func (SetPhone) isAction() {}
func (Reset) isAction()    {}

// SetField returns the action that sets field to value.
func SetField(field model.UserField, value string) Action {
	switch field {
	case model.FieldName:
		return SetName{Value: value}
	case model.FieldEmail:
		return SetEmail{Value: value}
	case model.FieldPhone:
		return SetPhone{Value: value}
	default:
		panic(fmt.Sprintf("form: unknown field %d", int(field)))
	}
}

// Reduce applies action to draft and returns the new draft. It does not validate.
func Reduce(draft Draft, action Action) Draft {
	switch a := action.(type) {
	case SetName:
		draft.Name = a.Value
	case SetEmail:
		draft.Email = a.Value
	case SetPhone:
		draft.Phone = a.Value
	case Reset:
		draft = Draft{}
	}
	return draft
}

// Validate checks a draft before submission.
func Validate(draft Draft) error {
	if strings.TrimSpace(draft.Name) == "" || strings.TrimSpace(draft.Email) == "" {
		return ErrRequired
	}
	if !ValidEmail(draft.Email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidEmail reports whether email has the shape local@domain.tld.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
