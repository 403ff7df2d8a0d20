package pipeline

import "fmt"

// RejectionMessage is shown to the user when Precheck fails.
const RejectionMessage = "Error: More than one node has empty target handles. Please ensure only one node has no incoming connections."

// RootNodes returns the IDs of nodes that declare no target handles, in
// graph order. It looks at declared handles only, not at edges.
func RootNodes(g Graph) []string {
	var roots []string
	for _, n := range g.Nodes {
		if TargetHandleCount(n) == 0 {
			roots = append(roots, n.ID)
		}
	}
	return roots
}

// Precheck rejects graphs with more than one root node before anything is
// sent over the network. Graphs with zero or one node always pass.
func Precheck(g Graph) error {
	if len(g.Nodes) <= 1 {
		return nil
	}
	if roots := RootNodes(g); len(roots) > 1 {
		return fmt.Errorf("%w: %v", ErrMultipleRoots, roots)
	}
	return nil
}
