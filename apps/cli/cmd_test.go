package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/prodigy/core/chat"
	"github.com/trezcool/prodigy/core/session"
	"github.com/trezcool/prodigy/services/backend"
	"github.com/trezcool/prodigy/services/notify"
	inmemstore "github.com/trezcool/prodigy/storage/session/inmem"
	"github.com/trezcool/prodigy/tests"
)

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
	wantOut string
	extra   interface{}
}

type testCLI struct {
	*commandLine
	buf   *bytes.Buffer
	flash *notify.Flash
	store session.Store
}

// setup starts a CLI talking to a fake backend, signed in as usr when not nil.
func setup(t *testing.T, mux *http.ServeMux, usr *session.Profile) *testCLI {
	ctx := context.Background()
	if usr != nil {
		signedIn := *usr
		mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer tok" {
				testutil.WriteJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "Invalid token"})
				return
			}
			testutil.WriteJSON(t, w, http.StatusOK, signedIn)
		})
	}

	client := testutil.NewBackend(t, mux)
	store := inmemstore.NewStore()
	if usr != nil {
		require.NoError(t, store.Save(ctx, "tok", *usr))
	}
	mgr := session.NewManager(store, client, logsvcNop{})
	t.Cleanup(mgr.Close)
	client.Authorize(mgr)
	mgr.Init(ctx)

	buf := new(bytes.Buffer)
	flash := new(notify.Flash)
	return &testCLI{
		commandLine: newCommandLine(buf, mgr, client, flash, newOutbox(t.TempDir())),
		buf:         buf,
		flash:       flash,
		store:       store,
	}
}

type logsvcNop struct{}

func (logsvcNop) Debug(string, ...interface{}) {}
func (logsvcNop) Info(string, ...interface{})  {}
func (logsvcNop) Warn(string, ...interface{})  {}
func (logsvcNop) Error(string, ...interface{}) {}
func (logsvcNop) Fatal(string, ...interface{}) {}

func runAll(t *testing.T, cli *testCLI, tests []cliTest) {
	for _, tt := range tests {
		args := append([]string{"prodigy"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			cli.buf.Reset()
			err := cli.run(context.Background(), args)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "cli.run() error = %v, wantErr %v", err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			if tt.wantOut != "" {
				assert.Contains(t, cli.buf.String(), tt.wantOut)
			}
		})
	}
}

func classesHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(t, w, http.StatusOK, []map[string]interface{}{
			{"id": "c1", "name": "Algebra", "class_code": "ABCD1234", "teacher_id": "2", "students": []string{"1"}},
		})
	}
}

func Test_commandLine_signedOut(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/classes", func(w http.ResponseWriter, r *http.Request) {
		t.Error("protected endpoint called while signed out")
	})
	cli := setup(t, mux, nil)

	runAll(t, cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "help is public", args: []string{"help"}, wantOut: "Usage:"},
		{name: "classes", args: []string{"classes"}, wantErr: errRedirect},
		{name: "dashboard", args: []string{"dashboard"}, wantErr: errRedirect},
		{name: "whoami", args: []string{"whoami"}, wantErr: errRedirect},
		{name: "files", args: []string{"files"}, wantErr: errRedirect},
		{name: "progress", args: []string{"progress"}, wantErr: errRedirect},
	})
}

func Test_commandLine_login(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds session.Credentials
		testutil.DecodeJSON(t, r, &creds)
		if creds.Password != "secret" {
			testutil.WriteJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
			return
		}
		testutil.WriteJSON(t, w, http.StatusOK, map[string]interface{}{"token": "tok", "user": testutil.Teacher})
	})
	cli := setup(t, mux, nil)

	readPasswordFunc = func(fd int) ([]byte, error) { return nil, nil }
	runAll(t, cli, []cliTest{
		{name: "no email", args: []string{"login"}, wantErr: errHelp},
		{name: "help", args: []string{"login", "-h"}, wantErr: errHelp},
	})

	err := cli.run(context.Background(), []string{"prodigy", "login", "-email", "lol"})
	require.Error(t, err)
	assert.Len(t, cli.flash.Drain(), 2) // email and password

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("lol"), nil }
	err = cli.run(context.Background(), []string{"prodigy", "login", "-email", testutil.Teacher.Email})
	var herr *backend.HTTPError
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, http.StatusUnauthorized, herr.Code)
	assert.Equal(t, []notify.FlashMessage{{Level: "error", Text: "login failed: Invalid credentials"}}, cli.flash.Drain())
	_, signedIn := cli.mgr.User()
	assert.False(t, signedIn)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("secret"), nil }
	require.NoError(t, cli.run(context.Background(), []string{"prodigy", "login", "-email", testutil.Teacher.Email}))
	usr, signedIn := cli.mgr.User()
	require.True(t, signedIn)
	assert.Equal(t, testutil.Teacher, usr)
	cred, stored, err := cli.store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", cred)
	assert.Equal(t, testutil.Teacher, *stored)

	cli.buf.Reset()
	require.NoError(t, cli.run(context.Background(), []string{"prodigy", "whoami"}))
	assert.Contains(t, cli.buf.String(), testutil.Teacher.Email)

	require.NoError(t, cli.run(context.Background(), []string{"prodigy", "logout"}))
	_, signedIn = cli.mgr.User()
	assert.False(t, signedIn)
}

func Test_commandLine_teacher(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/classes", classesHandler(t))
	mux.HandleFunc("/assignments", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(t, w, http.StatusOK, []map[string]interface{}{
			{"id": "a1", "class_id": "c1", "title": "Homework 1", "due_date": "2030-01-01", "max_points": 100},
		})
	})
	mux.HandleFunc("/submissions", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(t, w, http.StatusOK, []map[string]interface{}{
			{"id": "s1", "assignment_id": "a1", "student_id": "1", "content": "42", "grade": nil},
			{"id": "s2", "assignment_id": "a1", "student_id": "3", "content": "41", "grade": 80},
		})
	})
	mux.HandleFunc("/announcements", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(t, w, http.StatusOK, []interface{}{})
	})
	teacher := testutil.Teacher
	cli := setup(t, mux, &teacher)

	runAll(t, cli, []cliTest{
		{name: "list classes", args: []string{"classes"}, wantOut: "ABCD1234"},
		{name: "dashboard", args: []string{"dashboard"}, wantOut: "classes: 1  students: 1  assignments: 1  to grade: 1"},
		{name: "ungraded submissions", args: []string{"assignments", "submissions", "-ungraded"}, wantOut: "s1"},
		{name: "student view", args: []string{"progress"}, wantErr: errRedirect},
		{name: "join is for students", args: []string{"classes", "join", "-code", "ABCD1234"}, wantErr: errRedirect},
		{name: "show without id", args: []string{"classes", "show"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"classes", "lol"}, wantErr: errHelp},
	})
	assert.Empty(t, cli.flash.Drain())
}

func Test_commandLine_sessionExpired(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/classes", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "Token expired"})
	})
	student := testutil.Student
	cli := setup(t, mux, &student)
	_, signedIn := cli.mgr.User()
	require.True(t, signedIn)

	err := cli.run(context.Background(), []string{"prodigy", "classes"})
	assert.True(t, errors.Is(err, errRedirect), "cli.run() error = %v", err)
	assert.Empty(t, cli.flash.Drain())

	st := cli.mgr.State()
	assert.Nil(t, st.User)
	assert.False(t, st.Loading)
	cred, usr, err := cli.store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cred)
	assert.Nil(t, usr)

	// the next command is sent back to login
	err = cli.run(context.Background(), []string{"prodigy", "classes"})
	assert.True(t, errors.Is(err, errRedirect), "cli.run() error = %v", err)
}

func Test_commandLine_files(t *testing.T) {
	var uploaded string
	mux := http.NewServeMux()
	mux.HandleFunc("/files/upload", func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		uploaded = hdr.Filename
		testutil.WriteJSON(t, w, http.StatusOK, map[string]interface{}{"id": "f1", "filename": hdr.Filename, "file_size": 2048})
	})
	student := testutil.Student
	cli := setup(t, mux, &student)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 2048)), 0o600))

	runAll(t, cli, []cliTest{
		{name: "upload without path", args: []string{"files", "upload"}, wantErr: errHelp},
		{name: "upload missing file", args: []string{"files", "upload", "-path", path + ".lol"}, wantErr: os.ErrNotExist},
		{name: "upload", args: []string{"files", "upload", "-path", path}},
	})
	assert.Equal(t, "notes.txt", uploaded)
	assert.Equal(t, []notify.FlashMessage{{Level: "success", Text: "Uploaded notes.txt (2.0 KB)"}}, cli.flash.Drain())
}

func Test_commandLine_chatOutbox(t *testing.T) {
	var mu sync.Mutex
	down := true
	var delivered []string
	setDown := func(v bool) {
		mu.Lock()
		down = v
		mu.Unlock()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/messages", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case r.Method == http.MethodGet:
			testutil.WriteJSON(t, w, http.StatusOK, []map[string]string{
				{"id": "m1", "sender_id": "2", "sender_name": "Bob", "receiver_id": "1", "content": "hi", "created_at": "10:00"},
			})
		case down:
			testutil.WriteJSON(t, w, http.StatusServiceUnavailable, map[string]string{"detail": "try later"})
		default:
			var nm chat.NewMessage
			testutil.DecodeJSON(t, r, &nm)
			delivered = append(delivered, nm.Content)
			testutil.WriteJSON(t, w, http.StatusOK, map[string]string{"id": "m2", "sender_id": "1", "receiver_id": nm.ReceiverID, "content": nm.Content})
		}
	})
	student := testutil.Student
	cli := setup(t, mux, &student)
	ctx := context.Background()
	send := []string{"prodigy", "chat", "send", "-to", "2", "-message", "hello"}

	require.Error(t, cli.run(ctx, send))
	assert.Contains(t, cli.buf.String(), "Resend it with: chat resend -id ")
	unsent, err := cli.outbox.load(student.ID)
	require.NoError(t, err)
	require.Len(t, unsent, 1)
	assert.Equal(t, "hello", unsent[0].Draft.Content)
	assert.Contains(t, unsent[0].Error, "try later")
	other, err := cli.outbox.load(testutil.Teacher.ID)
	require.NoError(t, err)
	assert.Empty(t, other, "the outbox is kept per user")

	setDown(false)
	runAll(t, cli, []cliTest{
		{name: "unsent messages are listed", args: []string{"chat", "messages", "-with", "2"}, wantOut: "[unsent " + unsent[0].LocalID + "] you: hello"},
		{name: "history is listed", args: []string{"chat", "messages", "-with", "2"}, wantOut: "[10:00] Bob: hi"},
		{name: "resend unknown message", args: []string{"chat", "resend", "-id", "lol"}, wantErr: chat.ErrUnknownEntry},
		{name: "resend all", args: []string{"chat", "resend"}},
		{name: "nothing left", args: []string{"chat", "resend"}, wantOut: "Nothing to resend"},
	})
	assert.Equal(t, []string{"hello"}, delivered)
	unsent, err = cli.outbox.load(student.ID)
	require.NoError(t, err)
	assert.Empty(t, unsent)
	_, err = os.Stat(cli.outbox.path)
	assert.True(t, os.IsNotExist(err), "an empty outbox is removed")

	setDown(true)
	require.Error(t, cli.run(ctx, send))
	unsent, err = cli.outbox.load(student.ID)
	require.NoError(t, err)
	require.Len(t, unsent, 1)
	runAll(t, cli, []cliTest{
		{name: "discard", args: []string{"chat", "discard", "-id", unsent[0].LocalID}},
		{name: "discard again", args: []string{"chat", "discard", "-id", unsent[0].LocalID}, wantErr: chat.ErrUnknownEntry},
	})
	unsent, err = cli.outbox.load(student.ID)
	require.NoError(t, err)
	assert.Empty(t, unsent)
	assert.Equal(t, []string{"hello"}, delivered)
}
