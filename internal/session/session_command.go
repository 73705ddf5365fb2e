package session

import (
	"errors"
	"fmt"

	"userdesk/local-app/internal/model"
)

// SessionCommand wraps the model.Command and adds validation
type SessionCommand struct {
	model.Command
}

// NewSessionCommand creates a new SessionCommand from a model.Command
func NewSessionCommand(cmd model.Command) SessionCommand {
	return SessionCommand{Command: cmd}
}

// Validate checks if the command is valid
func (c *SessionCommand) Validate() error {
	if c.Scope == "" {
		return errors.New("command scope is required")
	}
	if c.Operation == "" {
		return errors.New("command operation is required")
	}
	return c.validateScopeAndOperation()
}

// validateScopeAndOperation checks if the scope and operation are valid
func (c *SessionCommand) validateScopeAndOperation() error {
	switch c.Scope {
	case "user":
		return c.validateUserCommand()
	case "system":
		return c.validateSystemCommand()
	default:
		return fmt.Errorf("invalid command scope: %s", c.Scope)
	}
}

func (c *SessionCommand) validateUserCommand() error {
	switch c.Operation {
	case "list", "cancel":
		if len(c.Args) != 0 {
			return fmt.Errorf("user %s command does not accept any arguments", c.Operation)
		}
	case "find":
		if len(c.Args) > 1 {
			return errors.New("user find command accepts at most 1 argument: [term]")
		}
	case "where":
		if len(c.Args) < 1 {
			return errors.New("user where command requires an expression")
		}
	case "show", "delete":
		if len(c.Args) != 1 {
			return fmt.Errorf("user %s command requires 1 argument: <id>", c.Operation)
		}
	case "add":
		if len(c.Args) < 2 || len(c.Args) > 3 {
			return errors.New("user add command requires 2 or 3 arguments: <name> <email> [phone]")
		}
	case "edit":
		if len(c.Args) < 2 {
			return errors.New("user edit command requires at least 2 arguments: <id> <field>=<value>...")
		}
	case "import", "export":
		if len(c.Args) < 1 || len(c.Args) > 2 {
			return fmt.Errorf("user %s command requires 1 or 2 arguments: <filename> [json|xml|yaml|cbor]", c.Operation)
		}
	default:
		return fmt.Errorf("invalid user operation: %s", c.Operation)
	}
	return nil
}

func (c *SessionCommand) validateSystemCommand() error {
	switch c.Operation {
	case "exit", "quit":
		if len(c.Args) != 0 {
			return fmt.Errorf("system %s command does not accept any arguments", c.Operation)
		}
	default:
		return fmt.Errorf("invalid system operation: %s", c.Operation)
	}
	return nil
}
