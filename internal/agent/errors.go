package agent

import "fmt"

// RoutingError reports that the classifier produced a category no tool
// handles. It is fatal for that question; callers branch on it instead of
// retrying.
type RoutingError struct {
	Question string
	Category string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("agent: no tool for category %q (question %q)", e.Category, e.Question)
}
