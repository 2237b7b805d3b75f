package gemini

import (
	"fmt"
	"strings"

	"github.com/edugen/edugen"
	"google.golang.org/genai"
)

// toContents converts a request into GenAI contents. System messages are joined
// into the system instruction; everything else keeps its order.
func toContents(req *edugen.ModelRequest) ([]*genai.Content, *genai.Content, error) {
	if req == nil {
		return nil, nil, fmt.Errorf("request cannot be nil")
	}
	var (
		system   []string
		contents = make([]*genai.Content, 0, len(req.Messages))
	)
	for _, msg := range req.Messages {
		switch msg.Role {
		case edugen.RoleSystem:
			system = append(system, msg.Content)
		case edugen.RoleUser:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		case edugen.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			return nil, nil, fmt.Errorf("unsupported role: %s", msg.Role)
		}
	}
	if len(contents) == 0 {
		return nil, nil, fmt.Errorf("request has no user content")
	}
	var systemInstruction *genai.Content
	if len(system) > 0 {
		systemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}
	return contents, systemInstruction, nil
}

func toGenerateConfig(opt edugen.ModelOptions) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if opt.Temperature != nil {
		temp := float32(*opt.Temperature)
		config.Temperature = &temp
	}
	if opt.MaxOutputTokens > 0 {
		config.MaxOutputTokens = int32(opt.MaxOutputTokens)
	}
	if opt.TopP > 0 {
		topP := float32(opt.TopP)
		config.TopP = &topP
	}
	if opt.JSON {
		config.ResponseMIMEType = "application/json"
	}
	return config
}

func toModelResponse(resp *genai.GenerateContentResponse) (*edugen.ModelResponse, error) {
	if resp == nil {
		return nil, edugen.ErrEmptyResponse
	}
	text := resp.Text()
	if text == "" {
		return nil, edugen.ErrEmptyResponse
	}
	return &edugen.ModelResponse{Messages: []*edugen.Message{edugen.AssistantMessage(text)}}, nil
}
