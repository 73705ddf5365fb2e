// Package query evaluates boolean filter expressions over user records.
package query

import (
	"fmt"
	"strings"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"userdesk/local-app/internal/model"
)

// Filter is a compiled expression such as `email endsWith ".biz" && id > 3`.
// Expressions see the variables id, name, email and phone.
type Filter struct {
	expression string
	program    *exprvm.Program
}

func environment(u model.User) map[string]any {
	return map[string]any{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"phone": u.Phone,
	}
}

// Compile parses expression and checks that it yields a boolean.
func Compile(expression string) (*Filter, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	program, err := exprlang.Compile(expression,
		exprlang.Env(environment(model.User{})),
		exprlang.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", expression, err)
	}
	return &Filter{expression: expression, program: program}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	return f.expression
}

// Match reports whether u satisfies the filter.
func (f *Filter) Match(u model.User) (bool, error) {
	result, err := exprlang.Run(f.program, environment(u))
	if err != nil {
		return false, fmt.Errorf("evaluating %q for user %d: %w", f.expression, u.ID, err)
	}
	matched, _ := result.(bool)
	return matched, nil
}

// Apply returns the users matching the filter, in order.
func (f *Filter) Apply(users []model.User) ([]model.User, error) {
	matched := make([]model.User, 0, len(users))
	for _, u := range users {
		ok, err := f.Match(u)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, u)
		}
	}
	return matched, nil
}
