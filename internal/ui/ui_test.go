package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"userdesk/local-app/internal/app"
	"userdesk/local-app/internal/model"
)

func TestUserTable(t *testing.T) {
	var buf bytes.Buffer
	u := NewUI(&buf, false)
	u.UserTable([]model.User{
		{ID: 1, Name: "Leanne Graham", Email: "Sincere@april.biz", Phone: "1-770-736-8031"},
		{ID: 2, Name: "Ervin Howell", Email: "Shanna@melissa.tv", Phone: "010-692-6593"},
	})

	out := buf.String()
	for _, want := range []string{"ID", "Name", "Email", "Phone", "Leanne Graham", "Shanna@melissa.tv", "2 user(s)"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "\x1b[")
}

func TestUserTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewUI(&buf, false).UserTable(nil)
	assert.Equal(t, "No users found.\n", buf.String())
}

func TestNotifyMarksFailures(t *testing.T) {
	var buf bytes.Buffer
	u := NewUI(&buf, false)
	u.Notify(app.MsgUserAdded)
	u.Notify(app.MsgFetchFailed)
	assert.Equal(t, "User added successfully\n! Failed to fetch users\n", buf.String())
}

func TestPromptString(t *testing.T) {
	u := NewUI(&bytes.Buffer{}, false)
	assert.Equal(t, "users(3) > ", u.GetPromptString(3, ""))
	assert.Equal(t, "users(1) ~ ali > ", u.GetPromptString(1, "ali"))
}
