package search

import (
	"context"
	"net/url"

	"github.com/trezcool/prodigy/core"
	"github.com/trezcool/prodigy/core/assignment"
	"github.com/trezcool/prodigy/core/class"
	"github.com/trezcool/prodigy/core/drive"
)

type Results struct {
	Classes       []class.Class           `json:"classes"`
	Assignments   []assignment.Assignment `json:"assignments"`
	Files         []drive.File            `json:"files"`
	Announcements []class.Announcement    `json:"announcements"`
}

func (r Results) Empty() bool {
	return len(r.Classes)+len(r.Assignments)+len(r.Files)+len(r.Announcements) == 0
}

type query struct {
	Q string `json:"q" validate:"required,notblank,max=200"`
}

type Service struct {
	api core.Backend
}

func NewService(api core.Backend) *Service {
	return &Service{api: api}
}

// Search looks q up in the user's classes, assignments and files.
func (svc *Service) Search(ctx context.Context, q string) (Results, error) {
	var res Results
	in := query{Q: core.CleanString(q)}
	if err := core.Validate.Struct(in); err != nil {
		return res, err
	}
	err := svc.api.Do(ctx, core.Get("/search", url.Values{"q": {in.Q}}), &res)
	return res, err
}
