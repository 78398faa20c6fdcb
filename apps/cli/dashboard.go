package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/prodigy/core/class"
	"github.com/trezcool/prodigy/core/route"
	"github.com/trezcool/prodigy/core/session"
)

// dashboard shows the home view of the signed in user, following the redirect of "/".
func (cli *commandLine) dashboard(ctx context.Context) error {
	out, err := cli.guard.Resolve(route.RootPath)
	if err != nil {
		return err
	}
	if out.Decision != route.Redirect || out.Target == route.LoginPath {
		return cli.authorizePath(route.RootPath)
	}
	if err := cli.authorizePath(out.Target); err != nil {
		return err
	}

	usr := cli.user()
	if usr.Role == session.RoleTeacher {
		d, err := cli.dashboards.Teacher(ctx, usr)
		if err != nil {
			return cli.dashboardFailed(err)
		}
		fmt.Fprintf(cli.out, "Welcome, %s!\n\n", usr.DisplayName())
		fmt.Fprintf(cli.out, "classes: %d  students: %d  assignments: %d  to grade: %d\n",
			len(d.Classes), d.TotalStudents, len(d.Assignments), len(d.ToGrade))
		cli.printAnnouncements(d.Announcements)
		return nil
	}

	d, err := cli.dashboards.Student(ctx, usr)
	if err != nil {
		return cli.dashboardFailed(err)
	}
	fmt.Fprintf(cli.out, "Welcome, %s!\n\n", usr.DisplayName())
	fmt.Fprintf(cli.out, "classes: %d  pending: %d  completed: %d/%d  average: %.1f\n",
		len(d.Classes), len(d.Pending), d.Progress.CompletedAssignments, d.Progress.TotalAssignments, d.Progress.AverageGrade)
	for _, a := range d.Pending {
		fmt.Fprintf(cli.out, "  - %s  due %s\n", a.Title, a.DueDate)
	}
	cli.printAnnouncements(d.Announcements)
	return nil
}

func (cli *commandLine) dashboardFailed(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return cli.report("loading dashboard", err)
}

func (cli *commandLine) printAnnouncements(anns []class.Announcement) {
	if len(anns) == 0 {
		return
	}
	fmt.Fprintln(cli.out, "\nRecent announcements")
	for i, a := range anns {
		if i == 5 {
			break
		}
		fmt.Fprintf(cli.out, "  - [%s] %s\n", a.ClassName, a.Title)
	}
}
