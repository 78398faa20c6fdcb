package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/prodigy/core/chat"
	"github.com/trezcool/prodigy/core/route"
)

func (cli *commandLine) chat(ctx context.Context, args []string) error {
	if err := cli.authorize(route.Chat); err != nil {
		return err
	}

	sub, args := subcommand(args, "conversations")
	switch sub {
	case "conversations":
		convs, err := cli.chatSvc.Conversations(ctx)
		if err != nil {
			return cli.report("loading conversations", err)
		}
		w := cli.newTable("USER", "NAME", "LAST MESSAGE", "AT")
		for _, c := range convs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.User.ID, c.User.DisplayName(), c.LastMessage, c.LastTime)
		}
		return w.Flush()

	case "messages":
		fs := cli.flagSet("chat messages")
		with := fs.String("with", "", "User id of the other person.")
		classID := fs.String("class", "", "Class id of a group chat.")
		if err := parse(fs, args); err != nil {
			return err
		}
		threads, err := cli.chatThreads()
		if err != nil {
			return cli.fail("loading unsent messages", err)
		}
		thread, err := threads.Conversation(ctx, chat.Filter{ReceiverID: *with, ClassID: *classID})
		if err != nil {
			return cli.report("loading messages", err)
		}
		me := cli.user().ID
		for _, e := range thread.Entries() {
			m := e.Message
			if e.Status == chat.Failed {
				fmt.Fprintf(cli.out, "[unsent %s] you: %s\n", e.LocalID, m.Content)
				continue
			}
			from := m.SenderName
			if m.SenderID == me {
				from = "you"
			}
			fmt.Fprintf(cli.out, "[%s] %s: %s\n", m.CreatedAt, from, m.Content)
		}
		return nil

	case "send":
		fs := cli.flagSet("chat send")
		to := fs.String("to", "", "User id of the receiver.")
		classID := fs.String("class", "", "Class id of a group chat.")
		content := fs.String("message", "", "Message.")
		if err := parse(fs, args); err != nil {
			return err
		}
		threads, err := cli.chatThreads()
		if err != nil {
			return cli.fail("loading unsent messages", err)
		}
		nm := chat.NewMessage{ReceiverID: *to, Content: *content, ClassID: classID}
		entry, err := threads.Of(chat.FilterOf(nm)).Send(ctx, nm)
		if err != nil {
			if entry.LocalID != "" {
				if serr := cli.keepUnsent(threads); serr != nil {
					return cli.fail("saving unsent message", serr)
				}
				fmt.Fprintf(cli.out, "Message kept as %s. Resend it with: chat resend -id %s\n", entry.LocalID, entry.LocalID)
			}
			return cli.report("sending message", err)
		}
		cli.notifier.Success("Message sent")
		return nil

	case "resend":
		fs := cli.flagSet("chat resend")
		id := fs.String("id", "", "Id of the unsent message. All of them when empty.")
		if err := parse(fs, args); err != nil {
			return err
		}
		return cli.resendMessages(ctx, *id)

	case "discard":
		fs := cli.flagSet("chat discard")
		id := fs.String("id", "", "Id of the unsent message.")
		if err := parse(fs, args); err != nil {
			return err
		}
		threads, err := cli.chatThreads()
		if err != nil {
			return cli.fail("loading unsent messages", err)
		}
		thread, err := threads.Find(*id)
		if err == nil {
			err = thread.Discard(*id)
		}
		if err != nil {
			return cli.fail("discarding message", err)
		}
		if err := cli.keepUnsent(threads); err != nil {
			return cli.fail("saving unsent messages", err)
		}
		cli.notifier.Success("Message discarded")
		return nil
	}
	return errHelp
}

// resendMessages retries the unsent message id, or all of them. The ones failing again stay in the outbox.
func (cli *commandLine) resendMessages(ctx context.Context, id string) error {
	threads, err := cli.chatThreads()
	if err != nil {
		return cli.fail("loading unsent messages", err)
	}
	var ids []string
	if id != "" {
		ids = append(ids, id)
	} else {
		for _, u := range threads.Unsent() {
			ids = append(ids, u.LocalID)
		}
	}
	if len(ids) == 0 {
		fmt.Fprintln(cli.out, "Nothing to resend")
		return nil
	}

	var sent int
	var lastErr error
	for _, localID := range ids {
		thread, err := threads.Find(localID)
		if err == nil {
			_, err = thread.Resend(ctx, localID)
		}
		if err != nil {
			if errors.Is(err, chat.ErrUnknownEntry) {
				return cli.fail("resending message", err)
			}
			lastErr = err
			continue
		}
		sent++
	}
	if err := cli.keepUnsent(threads); err != nil {
		return cli.fail("saving unsent messages", err)
	}
	if sent > 0 {
		cli.notifier.Success(fmt.Sprintf("%d message(s) sent", sent))
	}
	return cli.report("resending messages", lastErr)
}

// chatThreads returns the conversations of the signed in user, with the unsent messages of the outbox.
func (cli *commandLine) chatThreads() (*chat.Threads, error) {
	me := cli.user().ID
	unsent, err := cli.outbox.load(me)
	if err != nil {
		return nil, err
	}
	threads := chat.NewThreads(cli.chatSvc, me)
	threads.Restore(unsent...)
	return threads, nil
}

func (cli *commandLine) keepUnsent(threads *chat.Threads) error {
	return cli.outbox.save(cli.user().ID, threads.Unsent())
}
