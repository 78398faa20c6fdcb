package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/trezcool/prodigy/core/assignment"
	"github.com/trezcool/prodigy/core/route"
)

func (cli *commandLine) assignments(ctx context.Context, args []string) error {
	sub, args := subcommand(args, "list")
	switch sub {
	case "list":
		if err := cli.authorize(cli.byRole(route.TeacherAssignments, route.StudentAssignments)); err != nil {
			return err
		}
		fs := cli.flagSet("assignments list")
		classID := fs.String("class", "", "Only the assignments of this class.")
		if err := parse(fs, args); err != nil {
			return err
		}
		assignments, err := cli.assignSvc.List(ctx, *classID)
		if err != nil {
			return cli.report("loading assignments", err)
		}
		w := cli.newTable("ID", "TITLE", "CLASS", "DUE", "POINTS")
		for _, a := range assignments {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", a.ID, a.Title, a.ClassName, a.DueDate, a.MaxPoints)
		}
		return w.Flush()

	case "create":
		if err := cli.authorize(route.TeacherAssignments); err != nil {
			return err
		}
		fs := cli.flagSet("assignments create")
		classID := fs.String("class", "", "Class id.")
		title := fs.String("title", "", "Title.")
		desc := fs.String("description", "", "Instructions.")
		due := fs.String("due", "", "Due date (YYYY-MM-DD or YYYY-MM-DDTHH:MM).")
		points := fs.Int("points", assignment.DefaultMaxPoints, "Max points.")
		if err := parse(fs, args); err != nil {
			return err
		}
		a, err := cli.assignSvc.Create(ctx, assignment.NewAssignment{
			ClassID:     *classID,
			Title:       *title,
			Description: *desc,
			DueDate:     *due,
			MaxPoints:   *points,
		})
		if err != nil {
			return cli.report("creating assignment", err)
		}
		cli.notifier.Success("Assignment created: " + a.Title)
		return nil

	case "submit":
		if err := cli.authorize(route.StudentAssignments); err != nil {
			return err
		}
		fs := cli.flagSet("assignments submit")
		id := fs.String("id", "", "Assignment id.")
		content := fs.String("content", "", "Your answer.")
		fileIDs := fs.String("files", "", "Comma separated ids of uploaded files.")
		if err := parse(fs, args); err != nil {
			return err
		}
		ns := assignment.NewSubmission{AssignmentID: *id, Content: *content}
		for _, f := range strings.Split(*fileIDs, ",") {
			if f = strings.TrimSpace(f); f != "" {
				ns.FileIDs = append(ns.FileIDs, f)
			}
		}
		if _, err := cli.assignSvc.Submit(ctx, ns); err != nil {
			return cli.report("submitting assignment", err)
		}
		cli.notifier.Success("Assignment submitted!")
		return nil

	case "submissions":
		if err := cli.authorize(route.TeacherGrading); err != nil {
			return err
		}
		fs := cli.flagSet("assignments submissions")
		id := fs.String("id", "", "Only the submissions of this assignment.")
		ungraded := fs.Bool("ungraded", false, "Only the submissions waiting for a grade.")
		if err := parse(fs, args); err != nil {
			return err
		}
		subs, err := cli.assignSvc.Submissions(ctx, *id)
		if err != nil {
			return cli.report("loading submissions", err)
		}
		if *ungraded {
			subs = assignment.Ungraded(subs)
		}
		w := cli.newTable("ID", "ASSIGNMENT", "STUDENT", "SUBMITTED", "GRADE")
		for _, s := range subs {
			grade := "-"
			if s.Graded() {
				grade = fmt.Sprint(*s.Grade)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.AssignmentID, s.StudentName, s.SubmittedAt, grade)
		}
		return w.Flush()

	case "grade":
		if err := cli.authorize(route.TeacherGrading); err != nil {
			return err
		}
		fs := cli.flagSet("assignments grade")
		id := fs.String("submission", "", "Submission id.")
		grade := fs.Int("grade", -1, "Grade.")
		remarks := fs.String("remarks", "", "Remarks for the student.")
		maxPoints := fs.Int("max", 0, "Max points of the assignment, to check the grade against.")
		if err := parse(fs, args); err != nil {
			return err
		}
		if err := required(fs, *id); err != nil {
			return err
		}
		if _, err := cli.assignSvc.Grade(ctx, assignment.GradeInput{SubmissionID: *id, Grade: *grade, Remarks: *remarks}, *maxPoints); err != nil {
			return cli.report("grading submission", err)
		}
		cli.notifier.Success("Grade submitted!")
		return nil
	}
	return errHelp
}
