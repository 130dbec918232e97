package dbutil

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestFinalize_RebindsPlaceholders(t *testing.T) {
	query, args := Finalize("SELECT id FROM users WHERE email = ? AND verified = ?", []interface{}{"a@b.c", 1})
	require.Equal(t, "SELECT id FROM users WHERE email = $1 AND verified = $2", query)
	require.Equal(t, []interface{}{"a@b.c", 1}, args)
}

func TestFinalize_RewritesLimitOffset(t *testing.T) {
	// gendry emits MySQL-style "LIMIT offset,count"; postgres wants the
	// count first and the offset behind OFFSET
	query, args := Finalize("SELECT id FROM documents WHERE user_id = ? LIMIT ?,?", []interface{}{"u1", 20, 10})
	require.Equal(t, "SELECT id FROM documents WHERE user_id = $1 LIMIT $2 OFFSET $3", query)
	require.Equal(t, []interface{}{"u1", 10, 20}, args)
}

func TestIsConflict(t *testing.T) {
	require.True(t, IsConflict(&pq.Error{Code: "23505"}))
	require.False(t, IsConflict(&pq.Error{Code: "23503"}))
	require.False(t, IsConflict(nil))
}
