package gemini

import (
	"errors"
	"testing"

	"github.com/edugen/edugen"
	"google.golang.org/genai"
)

func TestToContents(t *testing.T) {
	req := &edugen.ModelRequest{Messages: []*edugen.Message{
		edugen.SystemMessage("schema"),
		edugen.SystemMessage("rules"),
		edugen.UserMessage("질문"),
		edugen.AssistantMessage("답변"),
	}}
	contents, system, err := toContents(req)
	if err != nil {
		t.Fatalf("toContents: %v", err)
	}
	if len(contents) != 2 || contents[0].Role != genai.RoleUser || contents[1].Role != genai.RoleModel {
		t.Fatalf("unexpected contents: %+v", contents)
	}
	if system == nil || system.Parts[0].Text != "schema\n\nrules" {
		t.Fatalf("unexpected system instruction: %+v", system)
	}
}

func TestToContentsRequiresUserContent(t *testing.T) {
	if _, _, err := toContents(&edugen.ModelRequest{Messages: []*edugen.Message{edugen.SystemMessage("only")}}); err == nil {
		t.Fatal("expected error without user content")
	}
	if _, _, err := toContents(nil); err == nil {
		t.Fatal("expected error for nil request")
	}
}

func TestToGenerateConfig(t *testing.T) {
	config := toGenerateConfig(edugen.ApplyModelOptions(edugen.Temperature(0), edugen.JSONOutput(), edugen.MaxOutputTokens(256)))
	if config.Temperature == nil || *config.Temperature != 0 {
		t.Fatalf("zero temperature must be sent explicitly, got %v", config.Temperature)
	}
	if config.ResponseMIMEType != "application/json" || config.MaxOutputTokens != 256 {
		t.Fatalf("unexpected config: %+v", config)
	}
	if config := toGenerateConfig(edugen.ModelOptions{}); config.Temperature != nil || config.ResponseMIMEType != "" {
		t.Fatalf("defaults must be left to the provider: %+v", config)
	}
}

func TestToModelResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: genai.NewContentFromText("안녕하세요", genai.RoleModel),
	}}}
	got, err := toModelResponse(resp)
	if err != nil {
		t.Fatalf("toModelResponse: %v", err)
	}
	if got.Text() != "안녕하세요" {
		t.Fatalf("Text = %q", got.Text())
	}
	if _, err := toModelResponse(&genai.GenerateContentResponse{}); !errors.Is(err, edugen.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	if _, err := NewConfig().clientConfig(); err == nil {
		t.Fatal("expected api key error")
	}
	if _, err := NewConfig(WithVertexAI("", "")).clientConfig(); err == nil {
		t.Fatal("expected project error")
	}
	cc, err := NewConfig(WithGenAI("key")).clientConfig()
	if err != nil {
		t.Fatalf("clientConfig: %v", err)
	}
	if cc.Backend != genai.BackendGeminiAPI || cc.APIKey != "key" {
		t.Fatalf("unexpected client config: %+v", cc)
	}
	cc, err = NewConfig(WithVertexAI("proj", "asia-northeast3")).clientConfig()
	if err != nil {
		t.Fatalf("clientConfig: %v", err)
	}
	if cc.Backend != genai.BackendVertexAI || cc.Credentials != nil {
		t.Fatalf("unexpected vertex config: %+v", cc)
	}
}
