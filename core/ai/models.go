package ai

import (
	"fmt"

	"github.com/trezcool/prodigy/core"
)

// Tools
const (
	ToolChat       = "chat"
	ToolQuiz       = "quiz"
	ToolFlashcards = "flashcards"
	ToolSummarize  = "summarize"
)

var endpoints = map[string]string{
	ToolChat:       "/ai/chat",
	ToolQuiz:       "/ai/generate-quiz",
	ToolFlashcards: "/ai/generate-flashcards",
	ToolSummarize:  "/ai/summarize",
}

type (
	// Request asks the AI tutor something, optionally grounded on a file.
	Request struct {
		Prompt  string  `json:"prompt" validate:"required,notblank,max=4000"`
		Context *string `json:"context"`
		FileID  *string `json:"file_id"`
	}

	Reply struct {
		Response string `json:"response"`
	}

	Exchange struct {
		ID        string `json:"id,omitempty"`
		Prompt    string `json:"prompt"`
		Response  string `json:"response"`
		CreatedAt string `json:"created_at,omitempty"`
	}
)

func (r *Request) Validate() error {
	r.Prompt = core.CleanString(r.Prompt)
	r.Context = optional(r.Context)
	r.FileID = optional(r.FileID)
	return core.Validate.Struct(r)
}

// AssignmentPrompt asks for a full assignment about topic.
func AssignmentPrompt(topic string) string {
	return fmt.Sprintf(
		"Generate a detailed assignment about: %s. Include objectives, instructions, submission guidelines, and grading criteria.",
		core.CleanString(topic),
	)
}

// RemediationPrompt asks for help for a student struggling with topic.
func RemediationPrompt(topic string) string {
	return fmt.Sprintf(
		"A student is struggling with: %s. Suggest remediation strategies, practice exercises, and resources to help them improve.",
		core.CleanString(topic),
	)
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	if v := core.CleanString(*s); v != "" {
		return &v
	}
	return nil
}
