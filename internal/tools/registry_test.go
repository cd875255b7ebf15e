package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Run("Register and Get", func(t *testing.T) {
		registry := NewRegistry()
		mockTool := &mockToolImpl{name: "test_tool"}

		registry.Register(mockTool)

		retrieved, ok := registry.Get("test_tool")
		require.True(t, ok)
		assert.Equal(t, mockTool, retrieved)

		_, ok = registry.Get("unknown_tool")
		assert.False(t, ok, "unknown tool should not be found")
	})

	t.Run("List preserves registration order", func(t *testing.T) {
		registry := NewRegistry()
		registry.Register(&mockToolImpl{name: "first"})
		registry.Register(&mockToolImpl{name: "second"})
		registry.Register(&mockToolImpl{name: "third"})

		assert.Equal(t, []string{"first", "second", "third"}, registry.List())
	})

	t.Run("Re-register replaces without duplicating", func(t *testing.T) {
		registry := NewRegistry()
		registry.Register(&mockToolImpl{name: "tool"})
		replacement := &mockToolImpl{name: "tool"}
		registry.Register(replacement)

		assert.Equal(t, []string{"tool"}, registry.List())
		got, ok := registry.Get("tool")
		require.True(t, ok)
		assert.Same(t, replacement, got)
	})

	t.Run("Tools returns instances in order", func(t *testing.T) {
		registry := NewRegistry()
		a := &mockToolImpl{name: "a"}
		b := &mockToolImpl{name: "b"}
		registry.Register(a)
		registry.Register(b)

		all := registry.Tools()
		require.Len(t, all, 2)
		assert.Same(t, a, all[0])
		assert.Same(t, b, all[1])
	})
}

func TestFunctionTool(t *testing.T) {
	t.Run("dispatches to handler", func(t *testing.T) {
		tool := New("echo_tool", "Echo the ticker", TickerSchema(),
			func(ctx context.Context, args map[string]interface{}) (string, error) {
				s, _ := args["ticker_symbol"].(string)
				return "echo " + s, nil
			})

		assert.Equal(t, "echo_tool", tool.Name())
		assert.Equal(t, "Echo the ticker", tool.Description())

		got, err := tool.Execute(context.Background(), map[string]interface{}{"ticker_symbol": "AAPL"})
		require.NoError(t, err)
		assert.Equal(t, "echo AAPL", got)
	})

	t.Run("nil handler", func(t *testing.T) {
		tool := New("broken", "No handler", nil, nil)

		_, err := tool.Execute(context.Background(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "handler is not defined")
	})
}

// mockToolImpl is a minimal implementation of Tool for testing
type mockToolImpl struct {
	name string
}

func (m *mockToolImpl) Name() string                        { return m.name }
func (m *mockToolImpl) Description() string                 { return "Test tool" }
func (m *mockToolImpl) InputSchema() map[string]interface{} { return TickerSchema() }
func (m *mockToolImpl) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	return "", nil
}
