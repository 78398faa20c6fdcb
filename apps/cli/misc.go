package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/trezcool/prodigy/core/ai"
	"github.com/trezcool/prodigy/core/calendar"
	"github.com/trezcool/prodigy/core/notification"
	"github.com/trezcool/prodigy/core/route"
)

var nowFunc = time.Now // mockable

func (cli *commandLine) notifications(ctx context.Context, args []string) error {
	if err := cli.authorize(route.Notifications); err != nil {
		return err
	}

	sub, args := subcommand(args, "list")
	switch sub {
	case "list":
		fs := cli.flagSet("notifications list")
		unread := fs.Bool("unread", false, "Only the unread notifications.")
		if err := parse(fs, args); err != nil {
			return err
		}
		notifs, err := cli.notifSvc.List(ctx)
		if err != nil {
			return cli.report("loading notifications", err)
		}
		if *unread {
			notifs = notification.Unread(notifs)
		}
		w := cli.newTable("ID", "", "TYPE", "TITLE", "AT")
		for _, n := range notifs {
			mark := " "
			if !n.Read {
				mark = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", n.ID, mark, n.Kind, n.Title, n.CreatedAt)
		}
		return w.Flush()

	case "read":
		fs := cli.flagSet("notifications read")
		id := fs.String("id", "", "Notification id.")
		if err := parse(fs, args); err != nil {
			return err
		}
		if err := required(fs, *id); err != nil {
			return err
		}
		if err := cli.notifSvc.MarkRead(ctx, *id); err != nil {
			return cli.report("updating notification", err)
		}
		return nil

	case "read-all":
		if err := cli.notifSvc.MarkAllRead(ctx); err != nil {
			return cli.report("updating notifications", err)
		}
		cli.notifier.Success("All notifications marked as read")
		return nil
	}
	return errHelp
}

func (cli *commandLine) ai(ctx context.Context, args []string) error {
	if err := cli.authorize(cli.byRole(route.TeacherAIAssistant, route.StudentAITutor)); err != nil {
		return err
	}

	tool, args := subcommand(args, ai.ToolChat)
	if tool == "history" {
		history, err := cli.aiSvc.History(ctx)
		if err != nil {
			return cli.report("loading history", err)
		}
		for _, ex := range history {
			fmt.Fprintf(cli.out, "> %s\n%s\n\n", ex.Prompt, ex.Response)
		}
		return nil
	}

	fs := cli.flagSet("ai " + tool)
	fileID := fs.String("file", "", "Ground the answer on an uploaded file.")
	if err := parse(fs, args); err != nil {
		return err
	}
	prompt := strings.Join(fs.Args(), " ")
	if err := required(fs, prompt); err != nil {
		return err
	}

	switch tool {
	case "assignment":
		tool, prompt = ai.ToolChat, ai.AssignmentPrompt(prompt)
	case "remediation":
		tool, prompt = ai.ToolChat, ai.RemediationPrompt(prompt)
	}
	reply, err := cli.aiSvc.Run(ctx, tool, ai.Request{Prompt: prompt, FileID: fileID})
	if err != nil {
		return cli.report("asking the AI", err)
	}
	fmt.Fprintln(cli.out, reply.Response)
	return nil
}

func (cli *commandLine) calendar(ctx context.Context) error {
	if err := cli.authorize(route.Calendar); err != nil {
		return err
	}
	events, err := cli.calendarSvc.Events(ctx)
	if err != nil {
		return cli.report("loading calendar", err)
	}
	now := nowFunc()
	fmt.Fprintln(cli.out, now.Format("January 2006"))
	for _, day := range calendar.ByDay(calendar.Month(events, now)) {
		fmt.Fprintln(cli.out, day.Day)
		for _, e := range day.Events {
			fmt.Fprintf(cli.out, "  - %s (%s)\n", e.Title, e.ClassName)
		}
	}
	return nil
}

func (cli *commandLine) leaderboard(ctx context.Context, args []string) error {
	if err := cli.authorize(route.Leaderboard); err != nil {
		return err
	}
	fs := cli.flagSet("leaderboard")
	classID := fs.String("class", "", "Only the students of this class.")
	if err := parse(fs, args); err != nil {
		return err
	}
	board, err := cli.boardSvc.Get(ctx, *classID)
	if err != nil {
		return cli.report("loading leaderboard", err)
	}
	w := cli.newTable("RANK", "STUDENT", "AVERAGE", "COMPLETED")
	for _, e := range board {
		fmt.Fprintf(w, "%d\t%s\t%.1f\t%d\n", board.Rank(e.StudentID), e.StudentName, e.AverageScore, e.AssignmentsCompleted)
	}
	return w.Flush()
}

func (cli *commandLine) progress(ctx context.Context) error {
	if err := cli.authorize(route.StudentProgress); err != nil {
		return err
	}
	stats, err := cli.assignSvc.StudentAnalytics(ctx, cli.user().ID)
	if err != nil {
		return cli.report("loading progress", err)
	}
	fmt.Fprintf(cli.out, "classes: %d\n", stats.TotalClasses)
	fmt.Fprintf(cli.out, "assignments: %d/%d completed\n", stats.CompletedAssignments, stats.TotalAssignments)
	fmt.Fprintf(cli.out, "average grade: %.1f\n", stats.AverageGrade)
	return nil
}

func (cli *commandLine) search(ctx context.Context, args []string) error {
	if err := cli.authorize(route.Search); err != nil {
		return err
	}
	res, err := cli.searchSvc.Search(ctx, strings.Join(args, " "))
	if err != nil {
		return cli.report("searching", err)
	}
	if res.Empty() {
		fmt.Fprintln(cli.out, "No results")
		return nil
	}
	for _, c := range res.Classes {
		fmt.Fprintf(cli.out, "class       %s  %s\n", c.ID, c.Name)
	}
	for _, a := range res.Assignments {
		fmt.Fprintf(cli.out, "assignment  %s  %s\n", a.ID, a.Title)
	}
	for _, f := range res.Files {
		fmt.Fprintf(cli.out, "file        %s  %s\n", f.ID, f.Filename)
	}
	for _, a := range res.Announcements {
		fmt.Fprintf(cli.out, "announce    %s  %s\n", a.ID, a.Title)
	}
	return nil
}
