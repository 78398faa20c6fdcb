package ai

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/prodigy/core"
)

var ErrUnknownTool = errors.New("unknown AI tool")

// Service talks to the AI tutor endpoints. Generation happens server-side.
type Service struct {
	api core.Backend
}

func NewService(api core.Backend) *Service {
	return &Service{api: api}
}

func (svc *Service) Chat(ctx context.Context, req Request) (Reply, error) {
	return svc.Run(ctx, ToolChat, req)
}

func (svc *Service) GenerateQuiz(ctx context.Context, req Request) (Reply, error) {
	return svc.Run(ctx, ToolQuiz, req)
}

func (svc *Service) GenerateFlashcards(ctx context.Context, req Request) (Reply, error) {
	return svc.Run(ctx, ToolFlashcards, req)
}

func (svc *Service) Summarize(ctx context.Context, req Request) (Reply, error) {
	return svc.Run(ctx, ToolSummarize, req)
}

// Run sends req to the named tool.
func (svc *Service) Run(ctx context.Context, tool string, req Request) (Reply, error) {
	var reply Reply
	path, ok := endpoints[core.CleanString(tool, true /* lower */)]
	if !ok {
		return reply, errors.Wrap(ErrUnknownTool, tool)
	}
	if err := req.Validate(); err != nil {
		return reply, err
	}
	err := svc.api.Do(ctx, core.Post(path, req), &reply)
	return reply, err
}

// History returns the user's past exchanges with the tutor.
func (svc *Service) History(ctx context.Context) ([]Exchange, error) {
	history := make([]Exchange, 0)
	err := svc.api.Do(ctx, core.Get("/ai/history"), &history)
	return history, err
}
