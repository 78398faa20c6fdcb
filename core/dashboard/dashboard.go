package dashboard

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/prodigy/core"
	"github.com/trezcool/prodigy/core/assignment"
	"github.com/trezcool/prodigy/core/class"
	"github.com/trezcool/prodigy/core/session"
)

type (
	Teacher struct {
		User          session.Profile         `json:"user"`
		Classes       []class.Class           `json:"classes"`
		Assignments   []assignment.Assignment `json:"assignments"`
		ToGrade       []assignment.Submission `json:"to_grade"`
		Announcements []class.Announcement    `json:"announcements"`
		TotalStudents int                     `json:"total_students"`
	}

	Student struct {
		User          session.Profile             `json:"user"`
		Classes       []class.Class               `json:"classes"`
		Pending       []assignment.Assignment     `json:"pending"`
		Submissions   []assignment.Submission     `json:"submissions"`
		Announcements []class.Announcement        `json:"announcements"`
		Progress      assignment.StudentAnalytics `json:"progress"`
	}
)

// Builder loads the role dashboards, fetching their parts concurrently.
type Builder struct {
	classes     *class.Service
	assignments *assignment.Service
	notifier    core.Notifier
}

func NewBuilder(api core.Backend, notifier core.Notifier) *Builder {
	return &Builder{
		classes:     class.NewService(api),
		assignments: assignment.NewService(api),
		notifier:    notifier,
	}
}

// part runs fn; failures are reported to the user and leave the part empty,
// except an expired session which aborts the whole dashboard.
func (b *Builder) part(g *errgroup.Group, what string, fn func() error) {
	g.Go(func() error {
		err := fn()
		if err == nil || errors.Is(err, context.Canceled) {
			return err
		}
		if core.IsUnauthorized(err) {
			return err
		}
		b.notifier.Error("Failed to load " + what)
		return nil
	})
}

func (b *Builder) Teacher(ctx context.Context, usr session.Profile) (Teacher, error) {
	d := Teacher{User: usr}
	var subs []assignment.Submission

	g, ctx := errgroup.WithContext(ctx)
	b.part(g, "classes", func() (err error) {
		d.Classes, err = b.classes.List(ctx)
		return err
	})
	b.part(g, "assignments", func() (err error) {
		d.Assignments, err = b.assignments.List(ctx, "")
		return err
	})
	b.part(g, "submissions", func() (err error) {
		subs, err = b.assignments.Submissions(ctx, "")
		return err
	})
	b.part(g, "announcements", func() (err error) {
		d.Announcements, err = b.classes.Announcements(ctx, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return d, err
	}

	d.ToGrade = assignment.Ungraded(subs)
	for _, c := range d.Classes {
		d.TotalStudents += c.StudentCount()
	}
	return d, nil
}

func (b *Builder) Student(ctx context.Context, usr session.Profile) (Student, error) {
	d := Student{User: usr}
	var assignments []assignment.Assignment

	g, ctx := errgroup.WithContext(ctx)
	b.part(g, "classes", func() (err error) {
		d.Classes, err = b.classes.List(ctx)
		return err
	})
	b.part(g, "assignments", func() (err error) {
		assignments, err = b.assignments.List(ctx, "")
		return err
	})
	b.part(g, "submissions", func() (err error) {
		d.Submissions, err = b.assignments.Submissions(ctx, "")
		return err
	})
	b.part(g, "announcements", func() (err error) {
		d.Announcements, err = b.classes.Announcements(ctx, "")
		return err
	})
	b.part(g, "progress", func() (err error) {
		d.Progress, err = b.assignments.StudentAnalytics(ctx, usr.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return d, err
	}

	d.Pending = assignment.Pending(assignments, d.Submissions)
	return d, nil
}
