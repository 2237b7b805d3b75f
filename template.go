package edugen

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"text/template"
)

// templateFuncs are available to every prompt template.
var templateFuncs = template.FuncMap{
	"join":  strings.Join,
	"trim":  strings.TrimSpace,
	"lower": strings.ToLower,
}

type messageTemplate struct {
	role Role
	tmpl *template.Template
	data map[string]any
}

// PromptTemplate builds a Prompt from text/template message templates.
// Templates are parsed when added; parse errors are reported by Build.
//
//	prompt, err := NewPromptTemplate().System(sysTmpl, params).User(userTmpl, params).Build()
type PromptTemplate struct {
	messages []messageTemplate
	errs     []error
}

// NewPromptTemplate creates a new PromptTemplate builder.
func NewPromptTemplate() *PromptTemplate {
	return &PromptTemplate{}
}

// System appends a system message. Later params override earlier ones.
func (p *PromptTemplate) System(tmpl string, params ...map[string]any) *PromptTemplate {
	return p.add(RoleSystem, tmpl, params)
}

// User appends a user message. Later params override earlier ones.
func (p *PromptTemplate) User(tmpl string, params ...map[string]any) *PromptTemplate {
	return p.add(RoleUser, tmpl, params)
}

// Assistant appends an assistant message, typically a worked example.
func (p *PromptTemplate) Assistant(tmpl string, params ...map[string]any) *PromptTemplate {
	return p.add(RoleAssistant, tmpl, params)
}

func (p *PromptTemplate) add(role Role, text string, params []map[string]any) *PromptTemplate {
	name := fmt.Sprintf("%s-%d", role, len(p.messages))
	t, err := template.New(name).Funcs(templateFuncs).Option("missingkey=error").Parse(text)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("prompt template %s: %w", name, err))
		return p
	}
	data := make(map[string]any)
	for _, kv := range params {
		maps.Copy(data, kv)
	}
	p.messages = append(p.messages, messageTemplate{role: role, tmpl: t, data: data})
	return p
}

// Build renders every message in order. A template referencing a missing
// parameter is an error.
func (p *PromptTemplate) Build() (*Prompt, error) {
	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}
	messages := make([]*Message, 0, len(p.messages))
	for _, m := range p.messages {
		var buf strings.Builder
		if err := m.tmpl.Execute(&buf, m.data); err != nil {
			return nil, fmt.Errorf("prompt template %s: %w", m.tmpl.Name(), err)
		}
		messages = append(messages, &Message{Role: m.role, Content: buf.String()})
	}
	return NewPrompt(messages...), nil
}
