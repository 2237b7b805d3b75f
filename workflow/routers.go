package workflow

import (
	"context"

	"github.com/edugen/edugen/evaluate"
	"github.com/edugen/edugen/graph"
)

// Router labels.
const (
	labelNext     = "next"
	labelRetry    = "retry"
	labelSuccess  = "success"
	labelFailure  = "failure"
	labelGoals    = "learning_goals"
	labelProblems = "problems"
)

// failedRouter continues unless the node's own failure envelope is set.
func failedRouter(key string) graph.Router {
	return func(_ context.Context, state graph.State) (graph.Decision, error) {
		if sub, ok := graph.SubStateOf(state, key); ok && sub.Failed() {
			return graph.Route(labelFailure), nil
		}
		return graph.Route(labelNext), nil
	}
}

// gradeRouter fans out to the requested generators when the documents are
// relevant and loops back to retrieval otherwise.
func gradeRouter(_ context.Context, state graph.State) (graph.Decision, error) {
	if sub, ok := graph.SubStateOf(state, KeyGradeState); ok && sub.Failed() {
		return graph.Route(labelFailure), nil
	}
	if score, _ := graph.Get[string](state, KeyBinaryScore); score != evaluate.ScoreYes {
		return graph.Route(labelRetry), nil
	}
	req, _ := graph.Get[Requirements](state, KeyRequirements)
	var labels []string
	for _, c := range req.ContentRequests {
		switch c {
		case LearningGoals:
			labels = append(labels, labelGoals)
		case Problems:
			labels = append(labels, labelProblems)
		}
	}
	if len(labels) == 0 {
		return graph.Route(labelFailure), nil
	}
	return graph.Fanout(labels...), nil
}

// branchRouter routes a generation branch. It picks failure when the branch
// or any sibling branch that ran has failed, so every branch of a round
// converges on the same node.
func branchRouter(_ context.Context, state graph.State) (graph.Decision, error) {
	for _, key := range []string{KeyGoalState, KeyProblemState} {
		if sub, ok := graph.SubStateOf(state, key); ok && sub.Failed() {
			return graph.Route(labelFailure), nil
		}
	}
	return graph.Route(labelSuccess), nil
}
