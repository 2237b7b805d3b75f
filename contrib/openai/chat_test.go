package openai

import (
	"testing"

	"github.com/edugen/edugen"
)

func TestToChatCompletionParams(t *testing.T) {
	req := &edugen.ModelRequest{
		Model: "gpt-4o-mini",
		Messages: []*edugen.Message{
			edugen.SystemMessage("schema"),
			edugen.UserMessage("질문"),
			edugen.AssistantMessage("답변"),
		},
	}
	params, err := toChatCompletionParams(req, edugen.ApplyModelOptions(edugen.JSONOutput(), edugen.Temperature(0)))
	if err != nil {
		t.Fatalf("toChatCompletionParams: %v", err)
	}
	if params.Model != "gpt-4o-mini" || len(params.Messages) != 3 {
		t.Fatalf("unexpected params: %+v", params)
	}
	if params.Messages[0].OfSystem == nil || params.Messages[1].OfUser == nil || params.Messages[2].OfAssistant == nil {
		t.Fatalf("roles were not preserved: %+v", params.Messages)
	}
	if params.ResponseFormat.OfJSONObject == nil {
		t.Fatal("expected JSON object response format")
	}
}

func TestToChatCompletionParamsRejectsEmpty(t *testing.T) {
	if _, err := toChatCompletionParams(&edugen.ModelRequest{}, edugen.ModelOptions{}); err == nil {
		t.Fatal("expected error for empty request")
	}
}
