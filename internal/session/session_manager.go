package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"userdesk/local-app/internal/app"
	"userdesk/local-app/internal/log"
	"userdesk/local-app/internal/model"
)

// ErrStopped is returned by SessionRun after Stop.
var ErrStopped = errors.New("session manager stopped")

// SessionManager owns the sessions and runs their commands one at a time
type SessionManager struct {
	controller   *app.Controller
	sessions     map[string]*Session
	mu           sync.RWMutex
	commandQueue chan commandExecution
	done         chan struct{}
	stopOnce     sync.Once
	logger       *log.Logger
}

// commandExecution represents a command to be executed in a session and its reply channel
type commandExecution struct {
	ctx     context.Context
	session *Session
	command model.Command
	reply   chan commandResult
}

type commandResult struct {
	value interface{}
	err   error
}

// NewSessionManager starts the command execution goroutine
func NewSessionManager(controller *app.Controller, logger *log.Logger) *SessionManager {
	sm := &SessionManager{
		controller:   controller,
		sessions:     make(map[string]*Session),
		commandQueue: make(chan commandExecution),
		done:         make(chan struct{}),
		logger:       logger,
	}
	go sm.commandExecutor()
	return sm
}

// SessionAdd creates a new session and returns its ID
func (sm *SessionManager) SessionAdd() string {
	sessionID := uuid.NewString()
	sm.mu.Lock()
	sm.sessions[sessionID] = NewSession(sessionID, sm.controller, sm.logger)
	sm.mu.Unlock()
	sm.logger.Debug(context.Background(), "Session added", log.Fields{"session": sessionID})
	return sessionID
}

// SessionGet retrieves a session by its ID
func (sm *SessionManager) SessionGet(sessionID string) (*Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	session, exists := sm.sessions[sessionID]
	return session, exists
}

// SessionDelete removes a session
func (sm *SessionManager) SessionDelete(sessionID string) {
	sm.mu.Lock()
	delete(sm.sessions, sessionID)
	sm.mu.Unlock()
}

// SessionRun executes a command for a specific session
func (sm *SessionManager) SessionRun(ctx context.Context, sessionID string, cmd model.Command) (interface{}, error) {
	session, exists := sm.SessionGet(sessionID)
	if !exists {
		return nil, errors.New("session not found")
	}

	select {
	case <-sm.done:
		return nil, ErrStopped
	default:
	}

	reply := make(chan commandResult, 1)
	select {
	case sm.commandQueue <- commandExecution{ctx: ctx, session: session, command: cmd, reply: reply}:
	case <-sm.done:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	res := <-reply
	return res.value, res.err
}

// commandExecutor processes commands from the queue
func (sm *SessionManager) commandExecutor() {
	for {
		select {
		case exec := <-sm.commandQueue:
			value, err := exec.session.CommandRun(exec.ctx, exec.command)
			exec.reply <- commandResult{value: value, err: err}
		case <-sm.done:
			return
		}
	}
}

// Stop stops the command executor. It is safe to call more than once.
func (sm *SessionManager) Stop() {
	sm.stopOnce.Do(func() { close(sm.done) })
}
