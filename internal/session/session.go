// Package session executes parsed commands against the application controller.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"userdesk/local-app/internal/app"
	"userdesk/local-app/internal/log"
	"userdesk/local-app/internal/model"
)

// ErrExit is returned by the system exit and quit commands.
var ErrExit = errors.New("exit requested")

// CommandHandler is a function type for command handlers
type CommandHandler func(context.Context, *Session, model.Command) (interface{}, error)

// UsersResult is returned by commands that produce a list of users.
type UsersResult struct {
	Users []model.User
	Term  string
}

// UserResult is returned by commands that produce a single user.
type UserResult struct {
	User model.User
}

// Session represents an individual command session
type Session struct {
	ID              string
	Controller      *app.Controller
	LastActivity    time.Time
	commandHandlers map[string]map[string]CommandHandler
	logger          *log.Logger
}

// NewSession creates a new Session instance
func NewSession(id string, controller *app.Controller, logger *log.Logger) *Session {
	s := &Session{
		ID:           id,
		Controller:   controller,
		LastActivity: time.Now(),
		logger:       logger,
	}
	s.initCommandHandlers()
	return s
}

// initCommandHandlers initializes the command handlers map
func (s *Session) initCommandHandlers() {
	s.commandHandlers = map[string]map[string]CommandHandler{
		"user":   initUserCommandHandlers(),
		"system": initSystemCommandHandlers(),
	}
}

// CommandRun validates and executes a command within the session context
func (s *Session) CommandRun(ctx context.Context, cmd model.Command) (interface{}, error) {
	s.LastActivity = time.Now()

	sc := NewSessionCommand(cmd)
	if err := sc.Validate(); err != nil {
		s.logger.Warn(ctx, "Invalid command", log.Fields{"scope": cmd.Scope, "operation": cmd.Operation, "error": err})
		return nil, err
	}

	handler, ok := s.commandHandlers[cmd.Scope][cmd.Operation]
	if !ok {
		return nil, fmt.Errorf("invalid %s operation: %s", cmd.Scope, cmd.Operation)
	}

	s.logger.Command(ctx, "Running command", log.Fields{"session": s.ID, "scope": cmd.Scope, "operation": cmd.Operation, "args": cmd.Args})
	result, err := handler(ctx, s, cmd)
	if err != nil && !errors.Is(err, ErrExit) {
		s.logger.Debug(ctx, "Command execution failed", log.Fields{"scope": cmd.Scope, "operation": cmd.Operation, "error": err})
	}
	return result, err
}

// initSystemCommandHandlers initializes system command handlers
func initSystemCommandHandlers() map[string]CommandHandler {
	return map[string]CommandHandler{
		"exit": handleSystemExit,
		"quit": handleSystemExit,
	}
}

func handleSystemExit(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	s.logger.Info(ctx, "Exit requested", log.Fields{"session": s.ID})
	return nil, ErrExit
}
