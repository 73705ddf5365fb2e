package app

import "errors"

// Notification texts shown to the user.
const (
	MsgFetchFailed  = "Failed to fetch users"
	MsgUserAdded    = "User added successfully"
	MsgUserUpdated  = "User updated successfully"
	MsgUserDeleted  = "User deleted successfully"
	MsgUserNotFound = "User not found"
	MsgSaveFailed   = "Failed to save users"
	MsgImported     = "Users imported successfully"
	MsgExported     = "Users exported successfully"
	MsgImportFailed = "Failed to import users"
	MsgExportFailed = "Failed to export users"

	// MsgConfirmDelete is the prompt shown before a delete.
	MsgConfirmDelete = "Are you sure you want to delete this user?"
)

// IsFailure reports whether message is an error notification.
func IsFailure(message string) bool {
	switch message {
	case MsgFetchFailed, MsgUserNotFound, MsgSaveFailed, MsgImportFailed, MsgExportFailed:
		return true
	default:
		return false
	}
}

// Notifier displays transient messages.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to a Notifier.
type NotifierFunc func(message string)

// Notify calls f(message).
func (f NotifierFunc) Notify(message string) { f(message) }

// notifiedError marks an error whose notification was already delivered.
type notifiedError struct{ error }

func (e notifiedError) Unwrap() error { return e.error }

// Notified reports whether err was already shown to the user as a notification.
func Notified(err error) bool {
	var n notifiedError
	return errors.As(err, &n)
}
