// Package model defines the data structures used throughout the userdesk application.
package model

import "fmt"

// User represents a single record of the user directory.
type User struct {
	ID    int    `json:"id" xml:"id,attr" yaml:"id" cbor:"id"`
	Name  string `json:"name" xml:"name" yaml:"name" cbor:"name"`
	Email string `json:"email" xml:"email" yaml:"email" cbor:"email"`
	Phone string `json:"phone" xml:"phone" yaml:"phone" cbor:"phone"`
}

// UserField enumerates the user attributes that can be edited through the form.
// The ID is owned by the record store and is never edited directly.
type UserField int

const (
	FieldName UserField = iota
	FieldEmail
	FieldPhone
)

// UserFields lists the editable fields in display order.
var UserFields = []UserField{FieldName, FieldEmail, FieldPhone}

// String returns the lower-case attribute name of the field.
func (f UserField) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldEmail:
		return "email"
	case FieldPhone:
		return "phone"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// Label returns the human-readable label of the field.
func (f UserField) Label() string {
	switch f {
	case FieldName:
		return "Name"
	case FieldEmail:
		return "Email"
	case FieldPhone:
		return "Phone"
	default:
		return f.String()
	}
}

// ParseUserField maps an attribute name to its UserField.
func ParseUserField(name string) (UserField, error) {
	for _, f := range UserFields {
		if f.String() == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown user field: %s", name)
}

// Value returns the value of the given field of u.
func (u User) Value(f UserField) string {
	switch f {
	case FieldName:
		return u.Name
	case FieldEmail:
		return u.Email
	case FieldPhone:
		return u.Phone
	default:
		return ""
	}
}
