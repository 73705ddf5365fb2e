// This file handles the help system and tab completion, both driven by the
// command help table.

package cli

import (
	"fmt"

	"github.com/chzyer/readline"
)

// CommandHelp represents the structure of help information for a specific command.
type CommandHelp struct {
	Scope     string
	Operation string
	ShortDesc string
	LongDesc  string
	Syntax    string
	Arguments []string
	Options   []string
	Examples  []string
}

// HandleHelp shows general help, scope help or operation help.
func (c *CLI) HandleHelp(args []string) error {
	switch len(args) {
	case 0:
		c.showGeneralHelp()
		return nil
	case 1:
		return c.showScopeHelp(args[0])
	case 2:
		return c.showOperationHelp(args[0], args[1])
	default:
		return fmt.Errorf("invalid help command. Use 'help [scope] [operation]'")
	}
}

// showGeneralHelp displays an overview of all available commands grouped by scope.
func (c *CLI) showGeneralHelp() {
	c.UI.Message("Command syntax: <scope> <operation> [arguments] [options]")
	c.UI.Message("\nAvailable commands:")

	currentScope := ""
	for _, cmd := range commandHelps {
		if cmd.Scope != currentScope {
			c.UI.Message("\n%s:", cmd.Scope)
			currentScope = cmd.Scope
		}
		c.UI.Message("  %-15s %s", cmd.Operation, cmd.ShortDesc)
	}
}

// showScopeHelp displays help information for all commands within a specific scope.
func (c *CLI) showScopeHelp(scope string) error {
	found := false
	for _, cmd := range commandHelps {
		if cmd.Scope == scope {
			if !found {
				c.UI.Message("Commands for %s:\n", scope)
				found = true
			}
			c.UI.Message("%-15s %s", cmd.Operation, cmd.ShortDesc)
		}
	}
	if !found {
		return fmt.Errorf("no help found for %s", scope)
	}
	return nil
}

// showOperationHelp displays detailed help information for a specific operation within a scope.
func (c *CLI) showOperationHelp(scope, operation string) error {
	for _, cmd := range commandHelps {
		if cmd.Scope != scope || cmd.Operation != operation {
			continue
		}
		c.UI.Message("Command: %s %s", scope, operation)
		c.UI.Message("Description: %s", cmd.LongDesc)
		c.UI.Message("Syntax: %s", cmd.Syntax)
		if len(cmd.Arguments) > 0 {
			c.UI.Message("Arguments:")
			for _, arg := range cmd.Arguments {
				c.UI.Message("  %s", arg)
			}
		}
		if len(cmd.Options) > 0 {
			c.UI.Message("Options:")
			for _, opt := range cmd.Options {
				c.UI.Message("  %s", opt)
			}
		}
		if len(cmd.Examples) > 0 {
			c.UI.Message("Examples:")
			for _, ex := range cmd.Examples {
				c.UI.Message("  %s", ex)
			}
		}
		return nil
	}
	return fmt.Errorf("no help found for %s %s", scope, operation)
}

// buildCompleter derives readline completion from commandHelps.
func buildCompleter() *readline.PrefixCompleter {
	var scopes []string
	operations := make(map[string][]readline.PrefixCompleterInterface)
	for _, cmd := range commandHelps {
		if _, ok := operations[cmd.Scope]; !ok {
			scopes = append(scopes, cmd.Scope)
		}
		operations[cmd.Scope] = append(operations[cmd.Scope], readline.PcItem(cmd.Operation))
	}

	items := make([]readline.PrefixCompleterInterface, 0, len(scopes)+1)
	helpItems := make([]readline.PrefixCompleterInterface, 0, len(scopes))
	for _, scope := range scopes {
		items = append(items, readline.PcItem(scope, operations[scope]...))
		helpItems = append(helpItems, readline.PcItem(scope, operations[scope]...))
	}
	items = append(items, readline.PcItem("help", helpItems...))
	return readline.NewPrefixCompleter(items...)
}

// commandHelps is a slice of CommandHelp structs containing help information for all commands.
var commandHelps = []CommandHelp{
	{
		Scope:     "user",
		Operation: "list",
		ShortDesc: "List all users",
		LongDesc:  "Clears the search term and lists every user in insertion order.",
		Syntax:    "user list",
		Examples:  []string{"user list"},
	},
	{
		Scope:     "user",
		Operation: "find",
		ShortDesc: "Search users by name",
		LongDesc:  "Sets the search term and lists users whose name contains it, ignoring case. Without a term the search is cleared.",
		Syntax:    "user find [term]",
		Arguments: []string{"term: (Optional) Part of the name to look for"},
		Examples:  []string{"user find ali", "user find \"mrs. dennis\""},
	},
	{
		Scope:     "user",
		Operation: "where",
		ShortDesc: "Filter users with an expression",
		LongDesc:  "Lists users matching a boolean expression over id, name, email and phone.",
		Syntax:    "user where <expression>",
		Arguments: []string{"expression: A boolean expression, e.g. using contains, startsWith, endsWith, matches"},
		Examples:  []string{"user where email endsWith \".biz\" && id > 3", "user where phone startsWith \"1-\""},
	},
	{
		Scope:     "user",
		Operation: "show",
		ShortDesc: "Show one user",
		LongDesc:  "Displays every field of the user with the given id.",
		Syntax:    "user show <id>",
		Arguments: []string{"id: The id of the user"},
		Examples:  []string{"user show 3"},
	},
	{
		Scope:     "user",
		Operation: "add",
		ShortDesc: "Add a new user",
		LongDesc:  "Adds a user. Name and email are required and the email must look like local@domain.tld. Without arguments each field is prompted for.",
		Syntax:    "user add [<name> <email> [phone]]",
		Arguments: []string{"name: The user's name", "email: The user's email address", "phone: (Optional) The user's phone number"},
		Examples:  []string{"user add", "user add \"Ada Lovelace\" ada@example.com \"555-0100\""},
	},
	{
		Scope:     "user",
		Operation: "edit",
		ShortDesc: "Edit an existing user",
		LongDesc:  "Updates fields of the user with the given id. With only an id each field is prompted for, keeping the current value on an empty answer.",
		Syntax:    "user edit <id> [<field>=<value>]...",
		Arguments: []string{"id: The id of the user", "field: One of name, email or phone"},
		Examples:  []string{"user edit 3", "user edit 3 name=\"Clementine Bauch\" phone=555-0101"},
	},
	{
		Scope:     "user",
		Operation: "delete",
		ShortDesc: "Delete a user",
		LongDesc:  "Deletes the user with the given id after asking for confirmation.",
		Syntax:    "user delete <id> [--yes]",
		Arguments: []string{"id: The id of the user"},
		Options:   []string{"--yes, -y: Skip the confirmation prompt"},
		Examples:  []string{"user delete 3", "user delete 3 --yes"},
	},
	{
		Scope:     "user",
		Operation: "export",
		ShortDesc: "Export users to a file",
		LongDesc:  "Writes every user to a file. The format defaults from the file extension; a .zst suffix compresses the file.",
		Syntax:    "user export <filename> [json|xml|yaml|cbor]",
		Arguments: []string{"filename: The file to write", "format: (Optional) The file format"},
		Examples:  []string{"user export users.json", "user export backup.cbor.zst"},
	},
	{
		Scope:     "user",
		Operation: "import",
		ShortDesc: "Import users from a file",
		LongDesc:  "Replaces every user with the contents of a file written by 'user export'.",
		Syntax:    "user import <filename> [json|xml|yaml|cbor]",
		Arguments: []string{"filename: The file to read", "format: (Optional) The file format"},
		Examples:  []string{"user import users.json", "user import users.xml xml"},
	},
	{
		Scope:     "user",
		Operation: "cancel",
		ShortDesc: "Discard the pending form",
		LongDesc:  "Discards a draft left open by a rejected add or edit.",
		Syntax:    "user cancel",
		Examples:  []string{"user cancel"},
	},
	{
		Scope:     "system",
		Operation: "exit",
		ShortDesc: "Exit the program",
		LongDesc:  "Exits userdesk. Changes are already saved.",
		Syntax:    "system exit",
		Examples:  []string{"system exit"},
	},
	{
		Scope:     "system",
		Operation: "quit",
		ShortDesc: "Quit the program",
		LongDesc:  "Quits userdesk. Equivalent to 'system exit'.",
		Syntax:    "system quit",
		Examples:  []string{"system quit"},
	},
}
