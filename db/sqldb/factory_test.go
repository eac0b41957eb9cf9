package sqldb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnregisteredType(t *testing.T) {
	RegisterFactory("fake-a", func(*Conf) (Client, error) { return nil, nil })
	RegisterFactory("fake-b", func(*Conf) (Client, error) { return nil, nil })

	_, err := New(&Conf{Type: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle isn't registered with sqldb. Registered List : ")
	assert.Contains(t, err.Error(), "fake-a,fake-b")
	assert.Contains(t, RegisteredTypes(), "fake-a")
}

func TestPlaceholderHelpers(t *testing.T) {
	assert.Equal(t, byte('$'), PlaceholderPrefix("pgsql"))
	assert.Equal(t, byte('?'), PlaceholderPrefix("unknown"))
	assert.Equal(t, "$3, $4, $5", InList('$', 3, 3))
	assert.Equal(t, "?, ?", InList('?', 2, 1))
	assert.Equal(t, []string{"@1", "@2"}, PlaceholdersGF('@')(2))
}

func TestRenderPositional(t *testing.T) {
	assert.Equal(t,
		"SELECT $1::int, '?', \"a?\" FROM t WHERE x = $2 AND y ? 'k'",
		RenderPositional("SELECT ?::int, '?', \"a?\" FROM t WHERE x = ? AND y ?? 'k'", '$'))
	assert.Equal(t, "SELECT ? FROM t", RenderPositional("SELECT ? FROM t", 0))
}
