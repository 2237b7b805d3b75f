package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestFromNodeContextOutsideExecutor(t *testing.T) {
	if _, ok := FromNodeContext(context.Background()); ok {
		t.Fatal("expected no node context")
	}
	if _, ok := FromNodeContext(NewNodeContext(context.Background(), nil)); ok {
		t.Fatal("expected a nil node context to be ignored")
	}
}

func TestNodeContextLogValue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logger.Info("step", slog.Any("node", &NodeContext{Name: "grade", RunID: "run-1", Round: 3}))

	var record struct {
		Node struct {
			Name  string `json:"name"`
			RunID string `json:"run_id"`
			Round int    `json:"round"`
		} `json:"node"`
	}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode log record: %v", err)
	}
	if record.Node.Name != "grade" || record.Node.RunID != "run-1" || record.Node.Round != 3 {
		t.Fatalf("unexpected node attribute %+v", record.Node)
	}
}
