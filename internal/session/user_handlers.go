package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"userdesk/local-app/internal/model"
	"userdesk/local-app/internal/records"
)

// initUserCommandHandlers initializes user command handlers
func initUserCommandHandlers() map[string]CommandHandler {
	return map[string]CommandHandler{
		"list":   handleUserList,
		"find":   handleUserFind,
		"where":  handleUserWhere,
		"show":   handleUserShow,
		"add":    handleUserAdd,
		"edit":   handleUserEdit,
		"delete": handleUserDelete,
		"export": handleUserExport,
		"import": handleUserImport,
		"cancel": handleUserCancel,
	}
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid user id: %s", arg)
	}
	return id, nil
}

// parseAssignments parses field=value arguments.
func parseAssignments(args []string) (map[model.UserField]string, error) {
	values := make(map[model.UserField]string, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("expected <field>=<value>, got %q", arg)
		}
		field, err := model.ParseUserField(strings.ToLower(name))
		if err != nil {
			return nil, err
		}
		values[field] = value
	}
	return values, nil
}

func handleUserList(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	s.Controller.SearchChanged("")
	return UsersResult{Users: s.Controller.Users()}, nil
}

func handleUserFind(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	term := ""
	if len(cmd.Args) == 1 {
		term = cmd.Args[0]
	}
	s.Controller.SearchChanged(term)
	return UsersResult{Users: s.Controller.Users(), Term: term}, nil
}

func handleUserWhere(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	users, err := s.Controller.Where(strings.Join(cmd.Args, " "))
	if err != nil {
		return nil, err
	}
	return UsersResult{Users: users}, nil
}

func handleUserShow(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	id, err := parseID(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	user, ok := s.Controller.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, records.ErrNotFound)
	}
	return UserResult{User: user}, nil
}

func handleUserAdd(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	s.Controller.AddRequest()
	for i, field := range model.UserFields {
		if i < len(cmd.Args) {
			s.Controller.FieldChanged(field, cmd.Args[i])
		}
	}
	if err := s.Controller.Submit(ctx); err != nil {
		return nil, err
	}
	return nil, nil
}

func handleUserEdit(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	id, err := parseID(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	values, err := parseAssignments(cmd.Args[1:])
	if err != nil {
		return nil, err
	}
	user, ok := s.Controller.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, records.ErrNotFound)
	}

	s.Controller.EditRequest(user)
	for _, field := range model.UserFields {
		if value, ok := values[field]; ok {
			s.Controller.FieldChanged(field, value)
		}
	}
	if err := s.Controller.Submit(ctx); err != nil {
		return nil, err
	}
	return nil, nil
}

func handleUserDelete(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	id, err := parseID(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	return nil, s.Controller.DeleteRequest(ctx, id)
}

func formatArg(cmd model.Command) string {
	if len(cmd.Args) > 1 {
		return strings.ToLower(cmd.Args[1])
	}
	return ""
}

func handleUserExport(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	return nil, s.Controller.Export(ctx, cmd.Args[0], formatArg(cmd))
}

func handleUserImport(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	return nil, s.Controller.Import(ctx, cmd.Args[0], formatArg(cmd))
}

func handleUserCancel(ctx context.Context, s *Session, cmd model.Command) (interface{}, error) {
	s.Controller.Cancel()
	return nil, nil
}
