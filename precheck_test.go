package pipeline

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func target(id string) Handle { return Handle{ID: id, Type: HandleTarget} }
func source(id string) Handle { return Handle{ID: id, Type: HandleSource} }

func nestedNode(id string, handles ...Handle) Node {
	data, _ := json.Marshal(map[string]any{"label": id, "handles": handles})
	return Node{ID: id, Data: data}
}

func TestResolveHandles(t *testing.T) {
	t.Run("node level wins over data", func(t *testing.T) {
		n := nestedNode("a", target("in"))
		n.Handles = []Handle{source("out")}
		assert.Equal(t, []Handle{source("out")}, ResolveHandles(n))
	})

	t.Run("falls back to data", func(t *testing.T) {
		n := nestedNode("a", target("in"), source("out"))
		assert.Equal(t, []Handle{target("in"), source("out")}, ResolveHandles(n))
	})

	t.Run("empty node level slice does not fall back", func(t *testing.T) {
		n := nestedNode("a", target("in"))
		n.Handles = []Handle{}
		assert.Empty(t, ResolveHandles(n))
		assert.Equal(t, 0, TargetHandleCount(n))
	})

	t.Run("no handles anywhere", func(t *testing.T) {
		assert.Nil(t, ResolveHandles(Node{ID: "a"}))
		assert.Nil(t, ResolveHandles(Node{ID: "a", Data: json.RawMessage(`{"label":"x"}`)}))
	})

	t.Run("non object data", func(t *testing.T) {
		assert.Nil(t, ResolveHandles(Node{ID: "a", Data: json.RawMessage(`"text"`)}))
		assert.Nil(t, ResolveHandles(Node{ID: "a", Data: json.RawMessage(`null`)}))
	})
}

func TestTargetHandleCount_FallbackEquivalence(t *testing.T) {
	handles := []Handle{target("a"), target("b"), source("out")}
	top := Node{ID: "top", Handles: handles}
	nested := nestedNode("nested", handles...)

	assert.Equal(t, 2, TargetHandleCount(top))
	assert.Equal(t, TargetHandleCount(top), TargetHandleCount(nested))
}

func TestPrecheck(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []Node
		wantErr bool
	}{
		{name: "empty graph", nodes: nil},
		{name: "single node without handles", nodes: []Node{{ID: "a"}}},
		{name: "single node with target", nodes: []Node{{ID: "a", Handles: []Handle{target("in")}}}},
		{
			name:  "one root",
			nodes: []Node{{ID: "a"}, {ID: "b", Handles: []Handle{target("in")}}},
		},
		{
			name: "two roots",
			nodes: []Node{
				{ID: "a"},
				{ID: "b"},
				{ID: "c", Handles: []Handle{target("in")}},
			},
			wantErr: true,
		},
		{
			name: "source handles do not count",
			nodes: []Node{
				{ID: "a", Handles: []Handle{source("out")}},
				{ID: "b", Handles: []Handle{source("out")}},
			},
			wantErr: true,
		},
		{
			name: "no roots",
			nodes: []Node{
				{ID: "a", Handles: []Handle{target("in")}},
				nestedNode("b", target("in")),
			},
		},
		{
			name: "nested handles remove a root",
			nodes: []Node{
				{ID: "a"},
				nestedNode("b", target("in")),
				nestedNode("c", target("x"), source("y")),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Precheck(Graph{Nodes: tt.nodes})
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMultipleRoots))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPrecheck_IgnoresEdges(t *testing.T) {
	// b declares a target handle but nothing is connected to it.
	g := Graph{
		Nodes: []Node{{ID: "a", Handles: []Handle{source("out")}}, {ID: "b", Handles: []Handle{target("in")}}},
		Edges: nil,
	}
	assert.NoError(t, Precheck(g))

	// An edge into a node without a declared target handle does not make it a non-root.
	g = Graph{
		Nodes: []Node{{ID: "a"}, {ID: "b"}},
		Edges: []Edge{{Source: "a", Target: "b"}},
	}
	assert.ErrorIs(t, Precheck(g), ErrMultipleRoots)
}

func TestRootNodes(t *testing.T) {
	g := Graph{Nodes: []Node{
		{ID: "a"},
		{ID: "b", Handles: []Handle{target("in")}},
		nestedNode("c"),
	}}
	assert.Equal(t, []string{"a", "c"}, RootNodes(g))
}
