package assignment

import (
	"context"
	"net/url"

	"github.com/pkg/errors"

	"github.com/trezcool/prodigy/core"
)

var ErrMissingID = errors.New("missing id")

// Service talks to the assignment, submission and student analytics endpoints.
type Service struct {
	api core.Backend
}

func NewService(api core.Backend) *Service {
	return &Service{api: api}
}

// List returns the assignments of a class, or of all the user's classes when classID is empty, by due date.
func (svc *Service) List(ctx context.Context, classID string) ([]Assignment, error) {
	var query url.Values
	if classID = core.CleanString(classID); classID != "" {
		query = url.Values{"class_id": {classID}}
	}
	assignments := make([]Assignment, 0)
	err := svc.api.Do(ctx, core.Get("/assignments", query), &assignments)
	return assignments, err
}

func (svc *Service) Get(ctx context.Context, id string) (Assignment, error) {
	var a Assignment
	if id = core.CleanString(id); id == "" {
		return a, ErrMissingID
	}
	err := svc.api.Do(ctx, core.Get("/assignments/"+url.PathEscape(id)), &a)
	return a, err
}

func (svc *Service) Create(ctx context.Context, na NewAssignment) (Assignment, error) {
	var a Assignment
	if err := na.Validate(); err != nil {
		return a, err
	}
	err := svc.api.Do(ctx, core.Post("/assignments", na), &a)
	return a, err
}

// Submissions returns the submissions visible to the current user:
// all of them for a teacher, their own for a student. assignmentID narrows the list.
func (svc *Service) Submissions(ctx context.Context, assignmentID string) ([]Submission, error) {
	var query url.Values
	if assignmentID = core.CleanString(assignmentID); assignmentID != "" {
		query = url.Values{"assignment_id": {assignmentID}}
	}
	subs := make([]Submission, 0)
	err := svc.api.Do(ctx, core.Get("/submissions", query), &subs)
	return subs, err
}

func (svc *Service) Submit(ctx context.Context, ns NewSubmission) (Submission, error) {
	var sub Submission
	if err := ns.Validate(); err != nil {
		return sub, err
	}
	err := svc.api.Do(ctx, core.Post("/submissions", ns), &sub)
	return sub, err
}

// Grade records a grade. maxPoints, when positive, bounds the grade client-side.
func (svc *Service) Grade(ctx context.Context, gi GradeInput, maxPoints int) (Submission, error) {
	var sub Submission
	gi.MaxPoints = maxPoints
	if err := gi.Validate(); err != nil {
		return sub, err
	}
	err := svc.api.Do(ctx, core.Put("/submissions/grade", gi), &sub)
	return sub, err
}

func (svc *Service) StudentAnalytics(ctx context.Context, studentID string) (StudentAnalytics, error) {
	var sa StudentAnalytics
	if studentID = core.CleanString(studentID); studentID == "" {
		return sa, ErrMissingID
	}
	err := svc.api.Do(ctx, core.Get("/analytics/student/"+url.PathEscape(studentID)), &sa)
	return sa, err
}

// Pending returns the assignments the student has not submitted yet.
func Pending(assignments []Assignment, subs []Submission) []Assignment {
	done := make(map[string]bool, len(subs))
	for _, s := range subs {
		done[s.AssignmentID] = true
	}
	pending := make([]Assignment, 0, len(assignments))
	for _, a := range assignments {
		if !done[a.ID] {
			pending = append(pending, a)
		}
	}
	return pending
}

// Ungraded returns the submissions still waiting for a grade.
func Ungraded(subs []Submission) []Submission {
	ungraded := make([]Submission, 0, len(subs))
	for _, s := range subs {
		if !s.Graded() {
			ungraded = append(ungraded, s)
		}
	}
	return ungraded
}
