package cli

import (
	"fmt"
	"strconv"
	"strings"

	"userdesk/local-app/internal/app"
	"userdesk/local-app/internal/model"
)

// interact fills in missing arguments from prompts and asks for delete
// confirmation. proceed is false when the user declined.
func (c *CLI) interact(cmd model.Command) (model.Command, bool, error) {
	if cmd.Scope != "user" {
		return cmd, true, nil
	}

	switch cmd.Operation {
	case "add":
		if len(cmd.Args) > 0 {
			return cmd, true, nil
		}
		for _, field := range model.UserFields {
			value, err := c.promptForInput(field.Label() + ": ")
			if err != nil {
				return cmd, false, err
			}
			cmd.Args = append(cmd.Args, value)
		}

	case "edit":
		if len(cmd.Args) != 1 {
			return cmd, true, nil
		}
		id, err := strconv.Atoi(cmd.Args[0])
		if err != nil {
			return cmd, true, nil
		}
		current, ok := c.controller.Lookup(id)
		if !ok {
			return cmd, true, nil
		}
		for _, field := range model.UserFields {
			value, err := c.promptForInput(fmt.Sprintf("%s [%s]: ", field.Label(), current.Value(field)))
			if err != nil {
				return cmd, false, err
			}
			if value == "" {
				value = current.Value(field)
			}
			cmd.Args = append(cmd.Args, field.String()+"="+value)
		}

	case "delete":
		args := cmd.Args[:0:0]
		confirmed := false
		for _, arg := range cmd.Args {
			if arg == "--yes" || arg == "-y" {
				confirmed = true
				continue
			}
			args = append(args, arg)
		}
		cmd.Args = args
		if !confirmed {
			ok, err := c.confirm(app.MsgConfirmDelete)
			if err != nil {
				return cmd, false, err
			}
			if !ok {
				c.UI.Info("Delete cancelled")
				return cmd, false, nil
			}
		}
	}
	return cmd, true, nil
}

func (c *CLI) promptForInput(prompt string) (string, error) {
	c.rl.SetPrompt(prompt)
	defer c.rl.SetPrompt(c.Prompt)
	input, err := c.rl.Readline()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

func (c *CLI) confirm(question string) (bool, error) {
	answer, err := c.promptForInput(question + " [y/N] ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
