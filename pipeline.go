// Package pipeline models the graph a pipeline editor submits for analysis
// and the local checks and reports around that submission.
package pipeline

import (
	"time"

	json "github.com/goccy/go-json"
)

// HandleType is the direction tag of a connection point.
type HandleType string

const (
	HandleSource HandleType = "source"
	HandleTarget HandleType = "target"
)

// Handle is a typed connection point on a node.
type Handle struct {
	ID   string     `json:"id,omitempty"`
	Type HandleType `json:"type"`
}

// Position is the canvas location of a node. It is carried through to the
// analysis service untouched.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a single pipeline stage.
// A nil Handles means the node does not declare handles itself and the
// nested Data is consulted instead; an empty non-nil slice is a declaration
// of zero handles.
type Node struct {
	ID       string          `json:"id"`
	Type     string          `json:"type,omitempty"`
	Position *Position       `json:"position,omitempty"`
	Handles  []Handle        `json:"handles,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// MarshalJSON keeps an explicitly empty Handles slice on the wire, which
// omitempty would otherwise drop.
func (n Node) MarshalJSON() ([]byte, error) {
	type plain Node
	if n.Handles != nil && len(n.Handles) == 0 {
		return json.Marshal(struct {
			plain
			Handles []Handle `json:"handles"`
		}{plain: plain(n), Handles: n.Handles})
	}
	return json.Marshal(plain(n))
}

// Edge is a directed connection from a source node's handle to a target
// node's handle.
type Edge struct {
	ID           string `json:"id,omitempty"`
	Source       string `json:"source"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	Target       string `json:"target"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// Graph is the snapshot of a pipeline sent for analysis.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Clone returns a deep copy of g. Nil and empty slices are preserved so the
// handle fallback rule sees the same declarations.
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		c := n
		if n.Position != nil {
			p := *n.Position
			c.Position = &p
		}
		if n.Handles != nil {
			c.Handles = append(make([]Handle, 0, len(n.Handles)), n.Handles...)
		}
		if n.Data != nil {
			c.Data = append(json.RawMessage(nil), n.Data...)
		}
		out.Nodes[i] = c
	}
	copy(out.Edges, g.Edges)
	return out
}

// Result is the analysis service's verdict on a submitted graph.
type Result struct {
	NumNodes int  `json:"num_nodes"`
	NumEdges int  `json:"num_edges"`
	IsDAG    bool `json:"is_dag"`
}

// Submission records one submit action from trigger to completion.
type Submission struct {
	ID         string     `json:"id"`
	PipelineID string     `json:"pipeline_id,omitempty"`
	State      State      `json:"state"`
	Result     *Result    `json:"result,omitempty"`
	Message    string     `json:"message,omitempty"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
