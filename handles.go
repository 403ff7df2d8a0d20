package pipeline

import json "github.com/goccy/go-json"

// nodeData is the part of a node's nested data that the pre-check reads.
type nodeData struct {
	Handles []Handle `json:"handles"`
}

// ResolveHandles returns the connection points declared by n.
// Node-level handles win; when the node declares none, handles nested in
// its data are used. Data that is absent, not an object, or has no handles
// resolves to no handles.
func ResolveHandles(n Node) []Handle {
	if n.Handles != nil {
		return n.Handles
	}
	if len(n.Data) == 0 {
		return nil
	}
	var d nodeData
	if err := json.Unmarshal(n.Data, &d); err != nil {
		return nil
	}
	return d.Handles
}

// TargetHandleCount counts the target handles n resolves to.
func TargetHandleCount(n Node) int {
	count := 0
	for _, h := range ResolveHandles(n) {
		if h.Type == HandleTarget {
			count++
		}
	}
	return count
}
