package agent

import (
	"context"
	"errors"
)

// LabeledQuestion pairs a question with the tool name expected to handle
// it. The label "none" means no tool should match.
type LabeledQuestion struct {
	Question string `json:"question"`
	Label    string `json:"label"`
}

// EvaluateToolSelection runs the router's tool selection over a labeled
// dataset and returns the fraction of questions routed to the expected
// tool. A RoutingError counts as the label "none"; any other failure is
// returned.
func (r *Router) EvaluateToolSelection(ctx context.Context, dataset []LabeledQuestion) (float64, error) {
	if len(dataset) == 0 {
		return 0, errors.New("agent: empty evaluation dataset")
	}

	correct := 0
	for _, item := range dataset {
		selected := "none"
		tool, err := r.SelectTool(ctx, item.Question)
		switch {
		case err == nil:
			selected = tool.Name()
		case errors.As(err, new(*RoutingError)):
		default:
			return 0, err
		}
		if selected == item.Label {
			correct++
		}
	}
	return float64(correct) / float64(len(dataset)), nil
}
