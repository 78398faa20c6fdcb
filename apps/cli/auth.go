package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/trezcool/prodigy/core/route"
	"github.com/trezcool/prodigy/core/session"
)

func (cli *commandLine) login(ctx context.Context, args []string) error {
	if err := cli.authorize(route.Login); err != nil {
		return err
	}
	fs := cli.flagSet("login")
	email := fs.String("email", "", "Your email. The password will be prompted next.")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, *email); err != nil {
		return err
	}
	pwd, err := cli.readPassword("Enter password:")
	if err != nil {
		return err
	}

	usr, err := cli.mgr.Login(ctx, session.Credentials{Email: *email, Password: pwd})
	if err != nil {
		return cli.fail("login failed", err)
	}
	cli.notifier.Success("Welcome back, " + usr.DisplayName() + "!")
	return nil
}

func (cli *commandLine) signup(ctx context.Context, args []string) error {
	if err := cli.authorize(route.Signup); err != nil {
		return err
	}
	fs := cli.flagSet("signup")
	uname := fs.String("username", "", "Username (letters, digits and underscores).")
	email := fs.String("email", "", "Email address.")
	name := fs.String("name", "", "Full name.")
	role := fs.String("role", "", "teacher or student.")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, *uname, *email, *name, *role); err != nil {
		return err
	}
	pwd, err := cli.readPassword("Enter password:")
	if err != nil {
		return err
	}
	confirm, err := cli.readPassword("Confirm password:")
	if err != nil {
		return err
	}

	usr, err := cli.mgr.Signup(ctx, session.NewAccount{
		Username:        *uname,
		Email:           *email,
		Name:            *name,
		Password:        pwd,
		PasswordConfirm: confirm,
		Role:            session.Role(*role),
	})
	if err != nil {
		return cli.fail("signup failed", err)
	}
	cli.notifier.Success("Account created! Welcome, " + usr.DisplayName() + ".")
	return nil
}

func (cli *commandLine) logout(ctx context.Context) error {
	cli.mgr.Logout(ctx)
	cli.notifier.Success("Logged out")
	return nil
}

func (cli *commandLine) whoami() error {
	if err := cli.authorize(route.Settings); err != nil {
		return err
	}
	usr := cli.user()
	fmt.Fprintf(cli.out, "%s <%s> (%s)\n", usr.DisplayName(), usr.Email, usr.Role)
	fmt.Fprintf(cli.out, "home: %s\n", route.HomeFor(usr.Role))
	return nil
}

func (cli *commandLine) profile(ctx context.Context, args []string) error {
	if err := cli.authorize(route.Settings); err != nil {
		return err
	}
	sub, args := subcommand(args, "show")
	switch sub {
	case "show":
		usr := cli.user()
		w := cli.newTable("FIELD", "VALUE")
		fmt.Fprintf(w, "id\t%s\n", usr.ID)
		fmt.Fprintf(w, "username\t%s\n", usr.Username)
		fmt.Fprintf(w, "name\t%s\n", usr.Name)
		fmt.Fprintf(w, "email\t%s\n", usr.Email)
		fmt.Fprintf(w, "role\t%s\n", usr.Role)
		fmt.Fprintf(w, "avatar\t%s\n", usr.Avatar)
		return w.Flush()
	case "update":
		fs := cli.flagSet("profile update")
		name := fs.String("name", "", "New full name.")
		avatar := fs.String("avatar", "", "New avatar URL.")
		if err := parse(fs, args); err != nil {
			return err
		}
		var upd session.ProfileUpdate
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "name":
				upd.Name = name
			case "avatar":
				upd.Avatar = avatar
			}
		})
		saved, err := cli.profileSvc.Update(ctx, upd)
		if err != nil {
			return cli.report("saving profile", err)
		}
		if _, err := cli.mgr.UpdateUser(ctx, session.ProfileUpdate{Name: &saved.Name, Avatar: &saved.Avatar}); err != nil {
			return cli.report("saving profile", err)
		}
		cli.notifier.Success("Profile updated")
		return nil
	}
	return errHelp
}
