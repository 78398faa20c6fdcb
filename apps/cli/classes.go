package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/trezcool/prodigy/core/class"
	"github.com/trezcool/prodigy/core/route"
)

func (cli *commandLine) classes(ctx context.Context, args []string) error {
	sub, args := subcommand(args, "list")
	switch sub {
	case "list":
		if err := cli.authorize(cli.byRole(route.TeacherClasses, route.StudentClasses)); err != nil {
			return err
		}
		classes, err := cli.classSvc.List(ctx)
		if err != nil {
			return cli.report("loading classes", err)
		}
		w := cli.newTable("ID", "NAME", "SUBJECT", "CODE", "TEACHER", "STUDENTS")
		for _, c := range classes {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n", c.ID, c.Name, c.Subject, c.Code, c.TeacherName, c.StudentCount())
		}
		return w.Flush()

	case "show":
		fs := cli.flagSet("classes show")
		id := fs.String("id", "", "Class id.")
		if err := parse(fs, args); err != nil {
			return err
		}
		if err := required(fs, *id); err != nil {
			return err
		}
		if err := cli.authorize(cli.byRole(route.TeacherClassDetail, route.StudentClassDetail), *id); err != nil {
			return err
		}
		return cli.showClass(ctx, *id)

	case "create":
		if err := cli.authorize(route.TeacherClasses); err != nil {
			return err
		}
		fs := cli.flagSet("classes create")
		name := fs.String("name", "", "Class name.")
		desc := fs.String("description", "", "Description.")
		subject := fs.String("subject", "", "Subject.")
		if err := parse(fs, args); err != nil {
			return err
		}
		c, err := cli.classSvc.Create(ctx, class.NewClass{Name: *name, Description: *desc, Subject: *subject})
		if err != nil {
			return cli.report("creating class", err)
		}
		cli.notifier.Success(fmt.Sprintf("Class created! Code: %s", c.Code))
		return nil

	case "join":
		if err := cli.authorize(route.StudentClasses); err != nil {
			return err
		}
		fs := cli.flagSet("classes join")
		code := fs.String("code", "", "The class code given by your teacher.")
		if err := parse(fs, args); err != nil {
			return err
		}
		if err := required(fs, *code); err != nil {
			return err
		}
		res, err := cli.classSvc.Join(ctx, *code)
		if err != nil {
			return cli.report("joining class", err)
		}
		cli.notifier.Success("Joined " + res.ClassName)
		return nil

	case "delete":
		if err := cli.authorize(route.TeacherClasses); err != nil {
			return err
		}
		fs := cli.flagSet("classes delete")
		id := fs.String("id", "", "Class id.")
		if err := parse(fs, args); err != nil {
			return err
		}
		if err := required(fs, *id); err != nil {
			return err
		}
		if err := cli.classSvc.Delete(ctx, *id); err != nil {
			return cli.report("deleting class", err)
		}
		cli.notifier.Success("Class deleted")
		return nil

	case "students":
		fs := cli.flagSet("classes students")
		id := fs.String("id", "", "Class id.")
		if err := parse(fs, args); err != nil {
			return err
		}
		if err := required(fs, *id); err != nil {
			return err
		}
		if err := cli.authorize(route.TeacherClassDetail, *id); err != nil {
			return err
		}
		students, err := cli.classSvc.Students(ctx, *id)
		if err != nil {
			return cli.report("loading students", err)
		}
		w := cli.newTable("ID", "NAME", "EMAIL")
		for _, s := range students {
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, s.Name, s.Email)
		}
		return w.Flush()

	case "remove-student":
		fs := cli.flagSet("classes remove-student")
		id := fs.String("id", "", "Class id.")
		student := fs.String("student", "", "Student id.")
		if err := parse(fs, args); err != nil {
			return err
		}
		if err := required(fs, *id, *student); err != nil {
			return err
		}
		if err := cli.authorize(route.TeacherClassDetail, *id); err != nil {
			return err
		}
		if err := cli.classSvc.RemoveStudent(ctx, *id, *student); err != nil {
			return cli.report("removing student", err)
		}
		cli.notifier.Success("Student removed")
		return nil

	case "announce":
		fs := cli.flagSet("classes announce")
		id := fs.String("id", "", "Class id.")
		title := fs.String("title", "", "Title.")
		content := fs.String("content", "", "Content.")
		if err := parse(fs, args); err != nil {
			return err
		}
		if err := required(fs, *id); err != nil {
			return err
		}
		if err := cli.authorize(route.TeacherClassDetail, *id); err != nil {
			return err
		}
		_, err := cli.classSvc.Announce(ctx, class.NewAnnouncement{ClassID: *id, Title: *title, Content: *content})
		if err != nil {
			return cli.report("posting announcement", err)
		}
		cli.notifier.Success("Announcement posted")
		return nil
	}
	return errHelp
}

func (cli *commandLine) showClass(ctx context.Context, id string) error {
	c, err := cli.classSvc.Get(ctx, id)
	if err != nil {
		return cli.report("loading class", err)
	}
	fmt.Fprintf(cli.out, "%s (%s)\n", c.Name, c.Subject)
	if c.Description != "" {
		fmt.Fprintln(cli.out, c.Description)
	}
	fmt.Fprintf(cli.out, "code: %s  teacher: %s  students: %d\n", c.Code, c.TeacherName, c.StudentCount())

	assignments, err := cli.assignSvc.List(ctx, id)
	if err != nil {
		return cli.report("loading assignments", err)
	}
	fmt.Fprintf(cli.out, "\nAssignments (%d)\n", len(assignments))
	for _, a := range assignments {
		fmt.Fprintf(cli.out, "  - %s  due %s  /%d\n", a.Title, a.DueDate, a.MaxPoints)
	}

	anns, err := cli.classSvc.Announcements(ctx, id)
	if err != nil {
		return cli.report("loading announcements", err)
	}
	fmt.Fprintf(cli.out, "\nAnnouncements (%d)\n", len(anns))
	for _, a := range anns {
		fmt.Fprintf(cli.out, "  - %s: %s\n", a.Title, strings.TrimSpace(a.Content))
	}
	return nil
}
