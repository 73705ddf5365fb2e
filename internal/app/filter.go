package app

import (
	"strings"

	"userdesk/local-app/internal/model"
)

// FilterByName returns the users whose name contains term, ignoring case.
// An empty term returns every user in order.
func FilterByName(users []model.User, term string) []model.User {
	needle := strings.ToLower(term)
	filtered := make([]model.User, 0, len(users))
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Name), needle) {
			filtered = append(filtered, u)
		}
	}
	return filtered
}
