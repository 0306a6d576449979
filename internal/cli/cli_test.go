// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/assistchat/internal/api"
	"github.com/jeranaias/assistchat/internal/chatstore"
	"github.com/jeranaias/assistchat/internal/config"
	"github.com/jeranaias/assistchat/internal/router"
)

// =============================================================================
// ARG PARSER TESTS (args.go)
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		bools    []string
		wantSub  string
		validate func(*testing.T, *ArgParser)
	}{
		{
			name:    "simple subcommand",
			args:    []string{"list"},
			wantSub: "list",
		},
		{
			name:    "subcommand with flag",
			args:    []string{"new", "--assistant", "3"},
			wantSub: "new",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("assistant") != "3" {
					t.Errorf("Flag(assistant) = %q, want %q", p.Flag("assistant"), "3")
				}
			},
		},
		{
			name:    "flag with equals",
			args:    []string{"use", "c-1", "--assistant=7"},
			wantSub: "use",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("assistant") != "7" || p.Positional(1) != "c-1" {
					t.Errorf("got assistant=%q id=%q", p.Flag("assistant"), p.Positional(1))
				}
			},
		},
		{
			name:    "declared boolean does not swallow positional",
			args:    []string{"--forget", "extra"},
			bools:   []string{"forget"},
			wantSub: "extra",
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("forget") {
					t.Error("BoolFlag(forget) should be true")
				}
			},
		},
		{
			name:    "undeclared trailing flag is boolean",
			args:    []string{"history", "--local"},
			wantSub: "history",
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("local") || !p.HasFlag("local") {
					t.Error("BoolFlag(local) should be true")
				}
			},
		},
		{
			name:    "explicit false",
			args:    []string{"--local=false"},
			bools:   []string{"local"},
			wantSub: "",
			validate: func(t *testing.T, p *ArgParser) {
				if p.BoolFlag("local") {
					t.Error("BoolFlag(local) should be false")
				}
			},
		},
		{
			name:    "double dash ends flags",
			args:    []string{"prompt", "3", "--", "--not-a-flag", "text"},
			wantSub: "prompt",
			validate: func(t *testing.T, p *ArgParser) {
				got := strings.Join(p.PositionalFrom(2), " ")
				if got != "--not-a-flag text" {
					t.Errorf("PositionalFrom(2) = %q", got)
				}
			},
		},
		{
			name:    "short flag alias",
			args:    []string{"-a", "4", "hello", "world"},
			wantSub: "hello",
			validate: func(t *testing.T, p *ArgParser) {
				id, err := p.FlagInt64("assistant", "a")
				if err != nil || id != 4 {
					t.Errorf("FlagInt64 = %d, %v", id, err)
				}
				if p.PositionalCount() != 2 {
					t.Errorf("PositionalCount() = %d, want 2", p.PositionalCount())
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewArgParser(tt.args, tt.bools...)
			if parser.Subcommand() != tt.wantSub {
				t.Errorf("Subcommand() = %q, want %q", parser.Subcommand(), tt.wantSub)
			}
			if tt.validate != nil {
				tt.validate(t, parser)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	for _, bad := range []string{"", "0", "-3", "x", "1.5"} {
		_, err := ParseID(bad, "id")
		var usage *UsageError
		assert.ErrorAs(t, err, &usage, "input %q", bad)
	}
	id, err := ParseID("42", "id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	ids, err := ParseIDList("10, 11,,12", "doc")
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11, 12}, ids)

	ids, err = ParseIDList("", "doc")
	require.NoError(t, err)
	assert.Equal(t, []int64{}, ids)
}

func TestParseParams(t *testing.T) {
	params, err := ParseParams([]string{"temperature=0.2", "stream=false", "model=gpt-x", `stop=["\n"]`})
	require.NoError(t, err)
	assert.Equal(t, 0.2, params["temperature"])
	assert.Equal(t, false, params["stream"])
	assert.Equal(t, "gpt-x", params["model"])
	assert.Equal(t, []any{"\n"}, params["stop"])

	_, err = ParseParams([]string{"novalue"})
	assert.Error(t, err)
}

// =============================================================================
// PARSE / EXIT CODE TESTS
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		argv    []string
		want    Command
		wantRaw []string
		check   func(*testing.T, Args)
	}{
		{argv: nil, want: CmdHelp},
		{argv: []string{"--version"}, want: CmdVersion},
		{argv: []string{"a"}, want: CmdAssistants, wantRaw: []string{}},
		{
			argv:    []string{"send", "--json", "-a", "3", "hi", "--api", "http://x/api"},
			want:    CmdSend,
			wantRaw: []string{"-a", "3", "hi"},
			check: func(t *testing.T, a Args) {
				assert.True(t, a.JSON)
				assert.Equal(t, "http://x/api", a.APIURL)
			},
		},
		{
			argv:    []string{"--config=/tmp/c.toml", "-q", "logout", "--forget"},
			want:    CmdLogout,
			wantRaw: []string{"--forget"},
			check: func(t *testing.T, a Args) {
				assert.True(t, a.Quiet)
				assert.Equal(t, "/tmp/c.toml", a.ConfigPath)
			},
		},
		{argv: []string{"frobnicate"}, want: CmdUnknown, wantRaw: []string{}},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.argv, " "), func(t *testing.T) {
			cmd, args := Parse(tt.argv)
			assert.Equal(t, tt.want, cmd)
			if tt.wantRaw != nil {
				assert.Equal(t, tt.wantRaw, append([]string{}, args.Raw...))
			}
			if tt.check != nil {
				tt.check(t, args)
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", &UsageError{Message: "x"}, ExitUsageError},
		{"route", fmt.Errorf("nav: %w", router.ErrRouteNotFound), ExitUsageError},
		{"access", &AccessError{Path: "/admin/users", Redirect: router.PathAssistants}, ExitAuthError},
		{"unauthorized", &api.APIError{Status: http.StatusUnauthorized}, ExitAuthError},
		{"api not found", &api.APIError{Status: http.StatusNotFound}, ExitNotFoundError},
		{"local not found", fmt.Errorf("x: %w", chatstore.ErrConversationNotFound), ExitNotFoundError},
		{"config", config.ValidateErrors{{Field: "ui.theme", Message: "bad"}}, ExitConfigError},
		{"deadline", context.DeadlineExceeded, ExitTimeoutError},
		{"dial", &net.OpError{Op: "dial", Err: io.ErrUnexpectedEOF}, ExitNetworkError},
		{"rejected", &api.APIError{Status: http.StatusOK, Message: "no"}, ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

// =============================================================================
// END-TO-END COMMAND TESTS
// =============================================================================

// backend is a minimal chat service. Accounts log in with password "pw";
// "root" is an admin.
type backend struct {
	mu      sync.Mutex
	nextID  int
	deleted []string
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	reply := func(w http.ResponseWriter, status int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer tok-") {
				reply(w, http.StatusUnauthorized, `{"detail":"Not authenticated"}`)
				return
			}
			next(w, r)
		}
	}
	adminOnly := func(next http.HandlerFunc) http.HandlerFunc {
		return authed(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer tok-root" {
				reply(w, http.StatusForbidden, `{"detail":"Admins only"}`)
				return
			}
			next(w, r)
		})
	}

	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		var in api.LoginData
		json.NewDecoder(r.Body).Decode(&in)
		if in.Password != "pw" {
			reply(w, http.StatusOK, `{"success":false,"message":"bad credentials"}`)
			return
		}
		role := "user"
		if in.Account == "root" {
			role = "admin"
		}
		reply(w, http.StatusOK, fmt.Sprintf(`{"success":true,"token":"tok-%s","role":%q}`, in.Account, role))
	})
	mux.HandleFunc("GET /api/assistants", authed(func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `[{"id":3,"name":"Helper","description":"Answers questions"}]`)
	}))
	mux.HandleFunc("GET /api/assistants/3", authed(func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `{"id":3,"name":"Helper","opening_message":"Hello!"}`)
	}))
	mux.HandleFunc("POST /api/conversation/3", authed(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.nextID++
		id := b.nextID
		b.mu.Unlock()
		reply(w, http.StatusOK, fmt.Sprintf(`{"success":true,"conversation_id":"c%d","opening_message":"Hello!"}`, id))
	}))
	mux.HandleFunc("DELETE /api/conversation/3/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.deleted = append(b.deleted, r.PathValue("id"))
		b.mu.Unlock()
		reply(w, http.StatusOK, `{"success":true,"message":"deleted"}`)
	}))
	mux.HandleFunc("POST /api/chat/3", authed(func(w http.ResponseWriter, r *http.Request) {
		var in api.SendMessageData
		json.NewDecoder(r.Body).Decode(&in)
		reply(w, http.StatusOK, fmt.Sprintf(`{"reply":%q,"conversation_id":%q}`, "echo: "+in.Message, in.ConversationID))
	}))
	mux.HandleFunc("GET /api/chat/history/3", authed(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("conversation_id") == "gone" {
			reply(w, http.StatusOK, `{"data":[]}`)
			return
		}
		reply(w, http.StatusOK, `{"data":[
			{"role":"assistant","content":"Hello!","message_type":"opening","hideName":true},
			{"role":"user","content":"from server"}]}`)
	}))
	mux.HandleFunc("POST /api/chat/3/attachments", authed(func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("file")
		if err != nil {
			reply(w, http.StatusBadRequest, `{"detail":"no file"}`)
			return
		}
		reply(w, http.StatusOK, fmt.Sprintf(`{"conversation_id":%q,"message":{"role":"user","content":%q,"message_type":"attachment","attachments":[{"id":"f1","filename":%q,"url":"/f/1"}]}}`,
			r.FormValue("conversation_id"), header.Filename, header.Filename))
	}))
	mux.HandleFunc("GET /api/admin/users", adminOnly(func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `[{"id":1,"username":"root","role":"admin"},{"id":2,"username":"alice","role":"user"}]`)
	}))
	return mux
}

// harness isolates home, config and storage for one test.
type harness struct {
	t       *testing.T
	backend *backend
	home    string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	b := &backend{}
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("ASSISTCHAT_API_URL", srv.URL+"/api")
	t.Setenv("ASSISTCHAT_STORAGE", "file")
	t.Setenv("ASSISTCHAT_DATA_DIR", filepath.Join(home, "data"))
	t.Setenv("ASSISTCHAT_LOG_LEVEL", "error")
	t.Setenv("ASSISTCHAT_TIMEOUT", "")
	return &harness{t: t, backend: b, home: home}
}

type result struct {
	code int
	out  string
	err  string
}

func (h *harness) run(stdin string, argv ...string) result {
	h.t.Helper()
	var out, errOut bytes.Buffer
	cmd, args := Parse(argv)
	code := Execute(context.Background(), cmd, args, IO{
		In:  strings.NewReader(stdin),
		Out: &out,
		Err: &errOut,
	})
	return result{code: code, out: out.String(), err: errOut.String()}
}

// data decodes the "data" member of a --json response into v.
func (r result) data(t *testing.T, v any) {
	t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(r.out), &resp), r.out)
	require.True(t, resp.Success, r.out)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

func TestExecute_GuardRequiresLogin(t *testing.T) {
	h := newHarness(t)

	for _, argv := range [][]string{
		{"assistants"},
		{"send", "--assistant", "3", "hi"},
		{"admin", "users"},
	} {
		r := h.run("", argv...)
		assert.Equal(t, ExitAuthError, r.code, argv)
		assert.Contains(t, r.err, "requires login", argv)
	}
}

func TestExecute_LoginLogoutFlow(t *testing.T) {
	h := newHarness(t)

	r := h.run("", "login", "alice", "--password", "wrong")
	assert.Equal(t, ExitGeneralError, r.code)
	assert.Contains(t, r.err, "bad credentials")

	r = h.run("", "login", "alice", "--password", "pw")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.out, "Logged in as alice (User)")

	r = h.run("", "login", "--json")
	require.Equal(t, ExitSuccess, r.code, r.err)
	var session SessionData
	r.data(t, &session)
	assert.Equal(t, SessionData{LoggedIn: true, Account: "alice", Role: "user"}, session)

	r = h.run("", "assistants", "--json")
	require.Equal(t, ExitSuccess, r.code, r.err)
	var list []map[string]any
	r.data(t, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Helper", list[0]["name"])

	r = h.run("", "admin", "users")
	assert.Equal(t, ExitAuthError, r.code)
	assert.Contains(t, r.err, "requires the admin role")

	r = h.run("", "logout")
	require.Equal(t, ExitSuccess, r.code)
	assert.Contains(t, r.out, "Logged out.")

	r = h.run("", "assistants")
	assert.Equal(t, ExitAuthError, r.code)

	// The remembered account is offered at the next login; the password
	// comes from stdin.
	r = h.run("pw\n", "login")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.err, "Logging in as alice")
}

func TestExecute_AdminArea(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, ExitSuccess, h.run("", "login", "root", "--password", "pw").code)

	r := h.run("", "admin", "users", "list")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.out, "alice")
	assert.Contains(t, r.out, "Admin")

	r = h.run("", "admin", "bogus")
	assert.Equal(t, ExitUsageError, r.code)
}

func TestExecute_ConversationLifecycle(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, ExitSuccess, h.run("", "login", "alice", "--password", "pw").code)

	// send without a current conversation starts one
	r := h.run("", "send", "--assistant", "3", "--json", "hello", "there")
	require.Equal(t, ExitSuccess, r.code, r.err)
	var sent SendData
	r.data(t, &sent)
	assert.Equal(t, "c1", sent.ConversationID)
	assert.Equal(t, "echo: hello there", sent.Reply.Content)
	assert.Contains(t, r.err, "Started conversation c1")

	// the selection is per process; the most recent conversation is used
	r = h.run("", "conversations", "list", "--json")
	require.Equal(t, ExitSuccess, r.code, r.err)
	var rows []ConversationSummary
	r.data(t, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, ConversationSummary{
		ID: "c1", AssistantID: 3, AssistantName: "Helper",
		Title: "hello there", Messages: 3,
	}, rows[0])

	r = h.run("", "history", "--assistant", "3", "--local", "--json")
	require.Equal(t, ExitSuccess, r.code, r.err)
	var conv ConversationData
	r.data(t, &conv)
	assert.Equal(t, "c1", conv.ID)
	require.Len(t, conv.Messages, 3)
	assert.True(t, conv.Messages[0].IsOpening())

	r = h.run("", "history", "--assistant", "3", "--json")
	require.Equal(t, ExitSuccess, r.code, r.err)
	r.data(t, &conv)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "from server", conv.Messages[1].Content)

	file := filepath.Join(h.home, "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("notes"), 0600))
	r = h.run("", "upload", "--assistant", "3", file)
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.out, "Uploaded notes.txt")

	r = h.run("", "export", "--assistant", "3", "--format", "json", "--stdout")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.out, `"generator": "assistchat"`)
	assert.Contains(t, r.out, `"filename": "notes.txt"`)

	outDir := filepath.Join(h.home, "exports")
	r = h.run("", "export", "--assistant", "3", "--output", outDir, "--json")
	require.Equal(t, ExitSuccess, r.code, r.err)
	var exported ExportData
	r.data(t, &exported)
	assert.Equal(t, "c1", exported.ConversationID)
	assert.Equal(t, "md", exported.Format)
	assert.Equal(t, 3, exported.Messages)
	assert.FileExists(t, exported.Path)
	assert.Equal(t, outDir, filepath.Dir(exported.Path))

	r = h.run("", "export", "--assistant", "3", "--format", "pdf")
	assert.Equal(t, ExitUsageError, r.code)

	r = h.run("", "conversations", "use", "nope", "--assistant", "3")
	assert.Equal(t, ExitNotFoundError, r.code)

	r = h.run("", "conversations", "new", "--assistant", "3")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.out, "Started conversation c2")

	// c2 is empty, so creating c3 prunes it
	r = h.run("", "conversations", "new", "--assistant", "3", "--json")
	require.Equal(t, ExitSuccess, r.code, r.err)
	r = h.run("", "conversations", "list", "--assistant", "3", "--json")
	r.data(t, &rows)
	require.Len(t, rows, 2)
	assert.Equal(t, "c3", rows[0].ID)
	assert.Equal(t, "c1", rows[1].ID)

	r = h.run("", "conversations", "delete", "c3", "--assistant", "3")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.out, "Deleted conversation c3")
	assert.Equal(t, []string{"c3"}, h.backend.deleted)
}

func TestExecute_HistoryImportsRemoteConversation(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, ExitSuccess, h.run("", "login", "alice", "--password", "pw").code)

	r := h.run("", "history", "--assistant", "3", "--conversation", "remote-9", "--json")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.err, "Imported conversation remote-9 (2 messages)")
	var conv ConversationData
	r.data(t, &conv)
	assert.Equal(t, "remote-9", conv.ID)
	require.Len(t, conv.Messages, 2)
	assert.True(t, conv.Messages[0].IsOpening())
	assert.Equal(t, "from server", conv.Messages[1].Content)

	r = h.run("", "conversations", "list", "--assistant", "3", "--json")
	require.Equal(t, ExitSuccess, r.code, r.err)
	var rows []ConversationSummary
	r.data(t, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, "remote-9", rows[0].ID)
	assert.Equal(t, "Helper", rows[0].AssistantName)

	// Known locally now, so no second import.
	r = h.run("", "history", "--assistant", "3", "--conversation", "remote-9")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.NotContains(t, r.err, "Imported")

	r = h.run("", "history", "--assistant", "3", "--conversation", "gone")
	assert.Equal(t, ExitNotFoundError, r.code)

	r = h.run("", "history", "--assistant", "3", "--conversation", "other", "--local")
	assert.Equal(t, ExitNotFoundError, r.code)
	assert.Empty(t, h.backend.deleted)
}

func TestExecute_ChatREPL(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, ExitSuccess, h.run("", "login", "alice", "--password", "pw").code)

	r := h.run("hi there\n/list\n/bogus\n/new\n/quit\nnever sent\n", "chat", "--assistant", "3")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.out, "Chatting with Helper")
	assert.Contains(t, r.out, "echo: hi there")
	assert.Contains(t, r.out, "* c1")
	assert.Contains(t, r.out, "Started conversation c2")
	assert.Contains(t, r.err, "unknown command /bogus")
	assert.NotContains(t, r.out, "never sent")

	r = h.run("", "chat", "--assistant", "3", "--json")
	assert.Equal(t, ExitUsageError, r.code)
}

func TestExecute_Status(t *testing.T) {
	h := newHarness(t)

	r := h.run("", "status", "--json")
	require.Equal(t, ExitSuccess, r.code, r.err)
	var status StatusData
	r.data(t, &status)
	assert.True(t, status.Backend.Reachable, "a 401 still proves the backend reachable")
	assert.False(t, status.Session.LoggedIn)
	assert.Equal(t, "file", status.Storage.Backend)

	require.Equal(t, ExitSuccess, h.run("", "login", "alice", "--password", "pw").code)
	r = h.run("", "status")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.out, "1 assistants")
	assert.Contains(t, r.out, "alice (User)")
}

func TestExecute_Config(t *testing.T) {
	h := newHarness(t)

	r := h.run("", "config", "set", "ui.theme", "dark")
	require.Equal(t, ExitSuccess, r.code, r.err)
	_, err := os.Stat(filepath.Join(h.home, ".assistchat", "config.toml"))
	require.NoError(t, err)

	r = h.run("", "config", "get", "ui.theme", "--json")
	require.Equal(t, ExitSuccess, r.code, r.err)
	var data ConfigData
	r.data(t, &data)
	assert.Equal(t, "dark", data.Value)

	r = h.run("", "config", "set", "ui.theme", "neon")
	assert.Equal(t, ExitConfigError, r.code)

	r = h.run("", "config", "get", "nope.key")
	assert.Equal(t, ExitUsageError, r.code)
}

func TestExecute_UnknownCommandAndVersion(t *testing.T) {
	h := newHarness(t)

	r := h.run("", "frobnicate", "--json")
	assert.Equal(t, ExitUsageError, r.code)
	assert.Contains(t, r.out, `"error_type": "usage_error"`)
	assert.Contains(t, r.out, `"command": "frobnicate"`)

	r = h.run("", "version", "--json")
	require.Equal(t, ExitSuccess, r.code)
	var v VersionData
	r.data(t, &v)
	assert.Equal(t, Version, v.Version)
}
