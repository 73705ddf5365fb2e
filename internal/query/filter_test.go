package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userdesk/local-app/internal/model"
)

var users = []model.User{
	{ID: 1, Name: "Leanne Graham", Email: "Sincere@april.biz", Phone: "1-770-736-8031"},
	{ID: 2, Name: "Ervin Howell", Email: "Shanna@melissa.tv", Phone: "010-692-6593"},
	{ID: 4, Name: "Patricia Lebsack", Email: "Julianne.OConner@kory.org", Phone: "493-170-9623"},
	{ID: 5, Name: "Chelsey Dietrich", Email: "Lucio_Hettinger@annie.ca", Phone: "(254)954-1289"},
	{ID: 6, Name: "Mrs. Dennis Schulist", Email: "Karley_Dach@jasper.info", Phone: "1-477-935-8478"},
	{ID: 7, Name: "Kurtis Weissnat", Email: "Telly.Hoeger@billy.biz", Phone: "210.067.6132"},
}

func TestFilterApply(t *testing.T) {
	tests := []struct {
		expression string
		ids        []int
	}{
		{`email endsWith ".biz" && id > 3`, []int{7}},
		{`name contains "e"`, []int{1, 2, 4, 5, 6, 7}},
		{`phone startsWith "1-"`, []int{1, 6}},
		{`id in [2, 5]`, []int{2, 5}},
		{`lower(name) matches "^mrs"`, []int{6}},
	}
	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			f, err := Compile(tt.expression)
			require.NoError(t, err)
			matched, err := f.Apply(users)
			require.NoError(t, err)
			ids := make([]int, 0, len(matched))
			for _, u := range matched {
				ids = append(ids, u.ID)
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestCompileRejects(t *testing.T) {
	for _, expression := range []string{"", "   ", `name + 1`, `unknown == 3`, `id >`} {
		_, err := Compile(expression)
		assert.Error(t, err, expression)
	}
}
