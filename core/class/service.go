package class

import (
	"context"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/prodigy/core"
)

var ErrMissingID = errors.New("missing class id")

// Service talks to the class endpoints of the backend.
type Service struct {
	api core.Backend
}

func NewService(api core.Backend) *Service {
	return &Service{api: api}
}

// List returns the classes taught (teacher) or attended (student) by the current user.
func (svc *Service) List(ctx context.Context) ([]Class, error) {
	classes := make([]Class, 0)
	err := svc.api.Do(ctx, core.Get("/classes"), &classes)
	return classes, err
}

func (svc *Service) Get(ctx context.Context, id string) (Class, error) {
	var c Class
	if id = core.CleanString(id); id == "" {
		return c, ErrMissingID
	}
	err := svc.api.Do(ctx, core.Get("/classes/"+url.PathEscape(id)), &c)
	return c, err
}

func (svc *Service) Create(ctx context.Context, nc NewClass) (Class, error) {
	var c Class
	if err := nc.Validate(); err != nil {
		return c, err
	}
	err := svc.api.Do(ctx, core.Post("/classes", nc), &c)
	return c, err
}

// Join enrolls the current student with a class code. Codes are case insensitive.
func (svc *Service) Join(ctx context.Context, code string) (JoinResult, error) {
	var res JoinResult
	req := joinRequest{Code: strings.ToUpper(core.CleanString(code))}
	if err := core.Validate.Struct(req); err != nil {
		return res, err
	}
	err := svc.api.Do(ctx, core.Post("/classes/join", req), &res)
	return res, err
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	if id = core.CleanString(id); id == "" {
		return ErrMissingID
	}
	return svc.api.Do(ctx, core.Delete("/classes/"+url.PathEscape(id)), nil)
}

func (svc *Service) Students(ctx context.Context, classID string) ([]Student, error) {
	students := make([]Student, 0)
	if classID = core.CleanString(classID); classID == "" {
		return students, ErrMissingID
	}
	err := svc.api.Do(ctx, core.Get("/classes/"+url.PathEscape(classID)+"/students"), &students)
	return students, err
}

func (svc *Service) RemoveStudent(ctx context.Context, classID, studentID string) error {
	classID, studentID = core.CleanString(classID), core.CleanString(studentID)
	if classID == "" {
		return ErrMissingID
	}
	if studentID == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "student_id", Error: "this field is required"})
	}
	path := "/classes/" + url.PathEscape(classID) + "/students/" + url.PathEscape(studentID)
	return svc.api.Do(ctx, core.Delete(path), nil)
}

// Announcements lists the announcements of a class, or of all the user's classes when classID is empty.
func (svc *Service) Announcements(ctx context.Context, classID string) ([]Announcement, error) {
	var query url.Values
	if classID = core.CleanString(classID); classID != "" {
		query = url.Values{"class_id": {classID}}
	}
	anns := make([]Announcement, 0)
	err := svc.api.Do(ctx, core.Get("/announcements", query), &anns)
	return anns, err
}

func (svc *Service) Announce(ctx context.Context, na NewAnnouncement) (Announcement, error) {
	var ann Announcement
	if err := na.Validate(); err != nil {
		return ann, err
	}
	err := svc.api.Do(ctx, core.Post("/announcements", na), &ann)
	return ann, err
}

func (svc *Service) Analytics(ctx context.Context, classID string) (Analytics, error) {
	var a Analytics
	if classID = core.CleanString(classID); classID == "" {
		return a, ErrMissingID
	}
	err := svc.api.Do(ctx, core.Get("/analytics/class/"+url.PathEscape(classID)), &a)
	return a, err
}
