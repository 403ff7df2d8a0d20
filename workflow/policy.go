package workflow

import (
	"fmt"
	"strings"
)

// Policy decides what happens to a submit action fired while another
// submission from the same Workflow is still running.
type Policy string

const (
	// PolicyIgnore drops the new trigger and returns ErrSubmissionInFlight.
	PolicyIgnore Policy = "ignore"
	// PolicyQueue waits for the running submission to finish, then runs.
	PolicyQueue Policy = "queue"
	// PolicyReplace cancels the running submission and runs the new one.
	PolicyReplace Policy = "replace"
)

// ParsePolicy validates a policy name. An empty name selects PolicyIgnore.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyIgnore, nil
	case PolicyIgnore, PolicyQueue, PolicyReplace:
		return p, nil
	}
	return "", fmt.Errorf("workflow: unknown in-flight policy %q", s)
}
