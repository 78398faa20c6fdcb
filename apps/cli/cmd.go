package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/prodigy/core"
	"github.com/trezcool/prodigy/core/ai"
	"github.com/trezcool/prodigy/core/assignment"
	"github.com/trezcool/prodigy/core/calendar"
	"github.com/trezcool/prodigy/core/chat"
	"github.com/trezcool/prodigy/core/class"
	"github.com/trezcool/prodigy/core/dashboard"
	"github.com/trezcool/prodigy/core/drive"
	"github.com/trezcool/prodigy/core/leaderboard"
	"github.com/trezcool/prodigy/core/notification"
	"github.com/trezcool/prodigy/core/route"
	"github.com/trezcool/prodigy/core/search"
	"github.com/trezcool/prodigy/core/session"
	"github.com/trezcool/prodigy/services/backend"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	stdinFd          = int(os.Stdin.Fd())

	errHelp     = errors.New("help provided")
	errRedirect = errors.New("not allowed here")
)

type commandLine struct {
	out      io.Writer
	mgr      *session.Manager
	guard    *route.Guard
	table    *route.Table
	notifier core.Notifier
	outbox   *outbox

	profileSvc  *session.ProfileService
	classSvc    *class.Service
	assignSvc   *assignment.Service
	driveSvc    *drive.Service
	chatSvc     *chat.Service
	notifSvc    *notification.Service
	aiSvc       *ai.Service
	calendarSvc *calendar.Service
	boardSvc    *leaderboard.Service
	searchSvc   *search.Service
	dashboards  *dashboard.Builder
}

func newCommandLine(out io.Writer, mgr *session.Manager, api core.Backend, notifier core.Notifier, box *outbox) *commandLine {
	table := route.DefaultTable()
	return &commandLine{
		out:         out,
		mgr:         mgr,
		guard:       route.NewGuard(table, mgr),
		table:       table,
		notifier:    notifier,
		outbox:      box,
		profileSvc:  session.NewProfileService(api),
		classSvc:    class.NewService(api),
		assignSvc:   assignment.NewService(api),
		driveSvc:    drive.NewService(api),
		chatSvc:     chat.NewService(api),
		notifSvc:    notification.NewService(api),
		aiSvc:       ai.NewService(api),
		calendarSvc: calendar.NewService(api),
		boardSvc:    leaderboard.NewService(api),
		searchSvc:   search.NewService(api),
		dashboards:  dashboard.NewBuilder(api, notifier),
	}
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -email EMAIL                      - sign in (password prompted)")
	fmt.Fprintln(cli.out, "  signup -username U -email E -name N -role teacher|student")
	fmt.Fprintln(cli.out, "  logout                                  - sign out")
	fmt.Fprintln(cli.out, "  whoami                                  - show the signed in user")
	fmt.Fprintln(cli.out, "  profile [show|update]                   - show or edit your profile")
	fmt.Fprintln(cli.out, "  dashboard                               - your home view")
	fmt.Fprintln(cli.out, "  classes [list|show|create|join|delete|students|remove-student|announce]")
	fmt.Fprintln(cli.out, "  assignments [list|create|submit|submissions|grade]")
	fmt.Fprintln(cli.out, "  files [list|upload|delete|mkdir|rmdir]")
	fmt.Fprintln(cli.out, "  chat [conversations|messages|send|resend|discard]")
	fmt.Fprintln(cli.out, "  notifications [list|read|read-all]")
	fmt.Fprintln(cli.out, "  ai [chat|quiz|flashcards|summarize|history|assignment|remediation] PROMPT")
	fmt.Fprintln(cli.out, "  calendar | leaderboard [-class ID] | progress | search QUERY | help")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "login":
		return cli.login(ctx, rest)
	case "signup":
		return cli.signup(ctx, rest)
	case "logout":
		return cli.logout(ctx)
	case "whoami":
		return cli.whoami()
	case "profile":
		return cli.profile(ctx, rest)
	case "dashboard":
		return cli.dashboard(ctx)
	case "classes":
		return cli.classes(ctx, rest)
	case "assignments":
		return cli.assignments(ctx, rest)
	case "files":
		return cli.files(ctx, rest)
	case "chat":
		return cli.chat(ctx, rest)
	case "notifications":
		return cli.notifications(ctx, rest)
	case "ai":
		return cli.ai(ctx, rest)
	case "calendar":
		return cli.calendar(ctx)
	case "leaderboard":
		return cli.leaderboard(ctx, rest)
	case "progress":
		return cli.progress(ctx)
	case "search":
		return cli.search(ctx, rest)
	case "help":
		if err := cli.authorize(route.Help); err != nil {
			return err
		}
		cli.printUsage()
		return nil
	default:
		cli.printUsage()
		return errHelp
	}
}

// authorize runs the route guard for the named view.
func (cli *commandLine) authorize(name string, params ...string) error {
	path, err := cli.table.Path(name, params...)
	if err != nil {
		return err
	}
	return cli.authorizePath(path)
}

func (cli *commandLine) authorizePath(path string) error {
	out, err := cli.guard.Resolve(path)
	if err != nil {
		return err
	}
	switch out.Decision {
	case route.Render:
		return nil
	case route.Redirect:
		if out.Target == route.LoginPath {
			return errors.Wrap(errRedirect, "please log in first (prodigy login -email EMAIL)")
		}
		return errors.Wrapf(errRedirect, "%s is not available to your account, try %s", path, out.Target)
	}
	return errors.Wrapf(errRedirect, "session not resolved for %s", path)
}

// byRole picks the teacher or the student variant of a view.
func (cli *commandLine) byRole(teacherView, studentView string) string {
	if usr, ok := cli.mgr.User(); ok && usr.IsStudent() {
		return studentView
	}
	return teacherView
}

func (cli *commandLine) user() session.Profile {
	usr, _ := cli.mgr.User()
	return usr
}

// flagSet returns a FlagSet printing to the CLI output.
func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return err
	}
	return nil
}

// required fails with the usage of fs when any value is blank.
func required(fs *flag.FlagSet, values ...string) error {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			fs.Usage()
			return errHelp
		}
	}
	return nil
}

// subcommand splits args into a subcommand (def if absent) and its arguments.
func subcommand(args []string, def string) (string, []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return def, args
	}
	return args[0], args[1:]
}

func (cli *commandLine) newTable(header ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	return w
}

func (cli *commandLine) readPassword(prompt string) (string, error) {
	fmt.Fprint(cli.out, prompt)
	pwd, err := readPasswordFunc(stdinFd)
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	return string(pwd), nil
}

// report turns an action failure into one user notification and returns the error.
// A rejected credential ends the session: the user is sent back to login.
func (cli *commandLine) report(action string, err error) error {
	if err == nil {
		return nil
	}
	if core.IsUnauthorized(err) {
		return errors.Wrap(errRedirect, "session expired, please log in again")
	}
	return cli.fail(action, err)
}

// fail notifies the field errors of err, or its message.
func (cli *commandLine) fail(action string, err error) error {
	if fields := core.TranslateErrors(err); len(fields) > 0 {
		for fld, msg := range fields {
			cli.notifier.Error(fmt.Sprintf("%s: %s", fld, msg))
		}
		return errors.Wrap(err, action)
	}
	cli.notifier.Error(action + ": " + backend.Message(err))
	return errors.Wrap(err, action)
}
