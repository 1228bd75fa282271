package mockapi

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeededUsersAreWellFormed(t *testing.T) {
	s := NewStore(StoreOptions{Users: 25, Rows: 5, Seed: 99})
	users := s.ListUsers()
	require.Len(t, users, 25)

	seenEmails := make(map[string]bool)
	for _, u := range users {
		assert.NotEmpty(t, u.FullName, "user %d has no name", u.ID)
		assert.True(t, strings.HasSuffix(u.Email, "@example.com"), "email %q", u.Email)
		assert.Contains(t, []string{"admin", "editor", "viewer"}, u.Role)
		assert.False(t, seenEmails[u.Email], "duplicate email %q", u.Email)
		seenEmails[u.Email] = true
		assert.False(t, u.CreatedAt.IsZero())
	}
}

func TestSeededRowsAreWellFormed(t *testing.T) {
	s := NewStore(StoreOptions{Users: 1, Rows: 40, Seed: 99})
	rows := s.ListRows(DataFilter{Limit: 1000})
	require.Len(t, rows, 40)

	for _, row := range rows {
		assert.Contains(t, rowCategories, row.Category)
		assert.Contains(t, rowStatuses, row.Status)
		assert.GreaterOrEqual(t, row.Value, 100.0, "row %d value", row.ID)
		assert.LessOrEqual(t, row.Value, 10001.0, "row %d value", row.ID)
		assert.NotEmpty(t, row.Name)
	}
}

func TestSeedingIsDeterministic(t *testing.T) {
	a := NewStore(StoreOptions{Users: 10, Rows: 10, Seed: 7})
	b := NewStore(StoreOptions{Users: 10, Rows: 10, Seed: 7})

	usersA, usersB := a.ListUsers(), b.ListUsers()
	require.Equal(t, len(usersA), len(usersB))
	for i := range usersA {
		assert.Equal(t, usersA[i].Email, usersB[i].Email)
	}
}
