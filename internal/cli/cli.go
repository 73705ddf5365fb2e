// Package cli provides the interactive command line for userdesk.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"userdesk/local-app/internal/app"
	"userdesk/local-app/internal/log"
	"userdesk/local-app/internal/model"
	"userdesk/local-app/internal/session"
	"userdesk/local-app/internal/ui"
)

// LineReader reads edited input lines. *readline.Instance implements it.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

// CLI represents the command-line interface
type CLI struct {
	sessions   *session.SessionManager
	sessionID  string
	controller *app.Controller
	rl         LineReader
	UI         *ui.UI
	Prompt     string
	logger     *log.Logger
}

// NewCLI creates a CLI bound to a new session.
func NewCLI(sessions *session.SessionManager, controller *app.Controller, rl LineReader, u *ui.UI, logger *log.Logger) *CLI {
	c := &CLI{
		sessions:   sessions,
		sessionID:  sessions.SessionAdd(),
		controller: controller,
		rl:         rl,
		UI:         u,
		logger:     logger,
	}
	c.UpdatePrompt()
	return c
}

// NewReadline creates a readline instance with history and tab completion.
func NewReadline(historyFile string) (*readline.Instance, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		HistoryFile:       historyFile,
		AutoComplete:      buildCompleter(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize readline: %w", err)
	}
	return rl, nil
}

// UpdatePrompt refreshes the prompt from the current view state.
func (c *CLI) UpdatePrompt() {
	state := c.controller.State()
	c.Prompt = c.UI.GetPromptString(len(state.Users), state.SearchTerm)
	c.rl.SetPrompt(c.Prompt)
}

// Run reads and executes commands until exit or end of input.
func (c *CLI) Run(ctx context.Context) error {
	c.UI.Info("Welcome to userdesk! Type 'help' for a list of commands or 'system exit' to quit.")

	for {
		c.UpdatePrompt()
		line, err := c.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			c.UI.Info("Use 'system exit' or 'system quit' to exit the program.")
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		if err := c.ExecuteLine(ctx, line); errors.Is(err, session.ErrExit) {
			return nil
		}
	}
}

// Stop interrupts a pending read so Run returns.
func (c *CLI) Stop() {
	if err := c.rl.Close(); err != nil {
		c.logger.Error(context.Background(), "Failed to close readline", log.Fields{"error": err})
	}
}

// ExecuteScript runs every command line of filename in order. Blank lines
// and lines starting with # are skipped. Execution stops at exit.
func (c *CLI) ExecuteScript(ctx context.Context, filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()

	c.logger.Info(ctx, "Executing script", log.Fields{"file": filename})
	scanner := bufio.NewScanner(f)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		c.UI.PrintlnColored(c.Prompt+line, ui.ColorGray)
		if err := c.ExecuteLine(ctx, line); errors.Is(err, session.ErrExit) {
			return err
		} else if err != nil {
			c.logger.Warn(ctx, "Script command failed", log.Fields{"file": filename, "line": lineNo, "error": err})
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	return nil
}

// ExecuteLine parses and runs one command line and reports the outcome.
func (c *CLI) ExecuteLine(ctx context.Context, line string) error {
	args := ParseArgs(strings.TrimSpace(line))
	if len(args) == 0 {
		return nil
	}

	if strings.ToLower(args[0]) == "help" {
		if err := c.HandleHelp(args[1:]); err != nil {
			c.UI.Error(err.Error())
			return err
		}
		return nil
	}

	cmd := parseCommand(args)
	if cmd.Scope == "user" && cmd.Operation == "where" {
		// Expressions keep their quotes.
		if expression := rawRemainder(line, 2); expression != "" {
			cmd.Args = []string{expression}
		}
	}
	cmd, proceed, err := c.interact(cmd)
	if err != nil {
		c.UI.Error(err.Error())
		return err
	}
	if !proceed {
		return nil
	}

	result, err := c.sessions.SessionRun(ctx, c.sessionID, cmd)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrExit):
			c.UI.Println("Exiting...")
		case !app.Notified(err):
			c.UI.Error(err.Error())
		}
		return err
	}
	c.render(result)
	return nil
}

func (c *CLI) render(result interface{}) {
	switch r := result.(type) {
	case session.UsersResult:
		c.UI.UserTable(r.Users)
	case session.UserResult:
		c.UI.UserDetail(r.User)
	}
}

// parseCommand maps parsed arguments to a command. Scope and operation are
// case-insensitive; a bare exit or quit is shorthand for the system command.
func parseCommand(args []string) model.Command {
	cmd := model.Command{Scope: strings.ToLower(args[0]), Args: []string{}}
	if len(args) == 1 && (cmd.Scope == "exit" || cmd.Scope == "quit") {
		return model.Command{Scope: "system", Operation: cmd.Scope, Args: []string{}}
	}
	if len(args) > 1 {
		cmd.Operation = strings.ToLower(args[1])
		cmd.Args = args[2:]
	}
	return cmd
}

// rawRemainder returns line without its first n space-separated words.
func rawRemainder(line string, n int) string {
	rest := strings.TrimSpace(line)
	for i := 0; i < n; i++ {
		idx := strings.IndexAny(rest, " \t")
		if idx < 0 {
			return ""
		}
		rest = strings.TrimSpace(rest[idx:])
	}
	return rest
}

// ParseArgs splits input on spaces, keeping double-quoted runs together.
func ParseArgs(input string) []string {
	var args []string
	var currentArg strings.Builder
	inQuotes := false
	quoted := false

	for _, char := range input {
		switch char {
		case '"':
			inQuotes = !inQuotes
			quoted = true
		case ' ', '\t':
			if !inQuotes {
				if currentArg.Len() > 0 || quoted {
					args = append(args, currentArg.String())
					currentArg.Reset()
					quoted = false
				}
			} else {
				currentArg.WriteRune(char)
			}
		default:
			currentArg.WriteRune(char)
		}
	}

	if currentArg.Len() > 0 || quoted {
		args = append(args, currentArg.String())
	}

	return args
}
