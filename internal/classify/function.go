package classify

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
)

// Function is one selectable job function.
type Function struct {
	ID   string
	Name string
}

// Classification is the outcome of classifying one title.
type Classification struct {
	Reply    string // raw model answer
	Function Function
	Matched  bool
}

// FunctionClassifier assigns a job title to one of a fixed set of functions.
type FunctionClassifier struct {
	provider  LLMProvider
	tmpl      *template.Template
	functions []Function
}

// NewFunctionClassifier creates a classifier choosing among functions.
func NewFunctionClassifier(provider LLMProvider, tmpl *template.Template, functions []Function) *FunctionClassifier {
	return &FunctionClassifier{provider: provider, tmpl: tmpl, functions: functions}
}

// Classify asks the model for title's function. A reply that names no known
// function, "Other" included, is returned with Matched false.
func (c *FunctionClassifier) Classify(ctx context.Context, title string) (Classification, error) {
	names := make([]string, len(c.functions))
	for i, f := range c.functions {
		names[i] = f.Name
	}

	var prompt bytes.Buffer
	if err := c.tmpl.Execute(&prompt, struct {
		Title     string
		Functions []string
	}{Title: title, Functions: names}); err != nil {
		return Classification{}, fmt.Errorf("render prompt: %w", err)
	}

	reply, err := c.provider.Complete(ctx, "", strings.TrimSpace(prompt.String()))
	if err != nil {
		return Classification{}, err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = "Other"
	}

	res := Classification{Reply: reply}
	for _, f := range c.functions {
		if strings.EqualFold(f.Name, reply) {
			res.Function = f
			res.Matched = true
			break
		}
	}
	return res, nil
}
