// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient starts a fake backend and returns a client pointed at it.
func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return NewClient(server.URL + "/api")
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

// =============================================================================
// DEFAULT HEADERS
// =============================================================================

func TestClient_DefaultHeaders(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		writeJSON(w, http.StatusOK, `[]`)
	})

	ctx := context.Background()
	_, err := client.ListAssistants(ctx)
	require.NoError(t, err)

	client.SetDefaultHeader("Authorization", "Bearer t1")
	assert.Equal(t, "Bearer t1", client.DefaultHeader("Authorization"))
	_, err = client.ListAssistants(ctx)
	require.NoError(t, err)

	client.DeleteDefaultHeader("Authorization")
	_, err = client.ListAssistants(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"", "Bearer t1", ""}, seen)
}

func TestClient_RequestIDsAreUnique(t *testing.T) {
	ids := make(map[string]bool)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ids[r.Header.Get("X-Request-ID")] = true
		writeJSON(w, http.StatusOK, `[]`)
	})
	for i := 0; i < 3; i++ {
		_, err := client.ListAssistants(context.Background())
		require.NoError(t, err)
	}
	assert.Len(t, ids, 3)
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		message  string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"detail":"Not authenticated"}`, ErrUnauthorized, "Not authenticated"},
		{"forbidden", http.StatusForbidden, `{"detail":"admins only"}`, ErrForbidden, "admins only"},
		{"not found", http.StatusNotFound, `{"message":"no such conversation"}`, ErrNotFound, "no such conversation"},
		{"server", http.StatusInternalServerError, `boom`, ErrServer, "boom"},
		{"rejected envelope", http.StatusOK, `{"success":false,"message":"bad password"}`, ErrRejected, "bad password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			_, err := client.Register(context.Background(), RegisterData{Username: "u", Password: "p"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.message, Message(err))

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, "/register", apiErr.Path)
			assert.NotEmpty(t, apiErr.RequestID)
		})
	}
}

func TestClient_SuccessEnvelopeIsNotAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"message":"registered"}`)
	})
	msg, err := client.Register(context.Background(), RegisterData{Username: "u", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "registered", msg)
}

// =============================================================================
// ENDPOINTS
// =============================================================================

func TestClient_Login(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body LoginData
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, LoginData{Account: "alice", Password: "secret"}, body)

		writeJSON(w, http.StatusOK, `{"success":true,"message":"ok","token":"tok","role":"admin"}`)
	})

	resp, err := client.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, "admin", resp.Role)
}

func TestClient_LoginWithoutToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true}`)
	})
	_, err := client.Login(context.Background(), "alice", "secret")
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestClient_CreateConversation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantID  string
		opening string
		wantErr error
	}{
		{"string id", `{"success":true,"conversation_id":"c1","opening_message":"Hi"}`, "c1", "Hi", nil},
		{"numeric id", `{"success":true,"conversation_id":42}`, "42", "", nil},
		{"missing id", `{"success":true}`, "", "", ErrMissingID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/conversation/7", r.URL.Path)
				writeJSON(w, http.StatusOK, tt.body)
			})

			resp, err := client.CreateConversation(context.Background(), 7)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, resp.ConversationID.String())
			assert.Equal(t, tt.opening, resp.OpeningMessage)
		})
	}
}

func TestClient_History(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"envelope", `{"success":true,"data":[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]}`},
		{"bare array", `[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/chat/history/3", r.URL.Path)
				assert.Equal(t, "c9", r.URL.Query().Get("conversation_id"))
				writeJSON(w, http.StatusOK, tt.body)
			})

			msgs, err := client.History(context.Background(), 3, "c9")
			require.NoError(t, err)
			require.Len(t, msgs, 2)
			assert.Equal(t, "hi", msgs[0].Content)
			assert.Equal(t, "hello", msgs[1].Content)
		})
	}
}

func TestClient_GetAssistantDetailIsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"detail":"Assistant not found"}`)
	})
	_, err := client.GetAssistant(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_SendMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat/5", r.URL.Path)
		var body SendMessageData
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body.Message)
		assert.Equal(t, "c1", body.ConversationID)
		writeJSON(w, http.StatusOK, `{"success":true,"reply":"hi there","conversation_id":"c1"}`)
	})

	resp, err := client.SendMessage(context.Background(), 5, "c1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", resp.Reply)
	assert.Equal(t, "c1", resp.ConversationID.String())
}

func TestClient_UploadAttachment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat/5/attachments", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "c1", r.FormValue("conversation_id"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "notes.txt", hdr.Filename)
		assert.Equal(t, "some notes", string(data))

		writeJSON(w, http.StatusOK, `{
			"conversation_id": "c1",
			"message": {"role":"user","content":"notes.txt","message_type":"attachment",
				"attachments":[{"id":"a1","filename":"notes.txt","url":"/files/a1"}]}
		}`)
	})

	resp, err := client.UploadAttachment(context.Background(), 5, "c1", "notes.txt", strings.NewReader("some notes"))
	require.NoError(t, err)
	assert.Equal(t, "c1", resp.ConversationID.String())
	require.Len(t, resp.Message.Attachments, 1)
	assert.Equal(t, "a1", resp.Message.Attachments[0].ID)
}

func TestClient_AdminUpdatePromptUsesQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/admin/assistants/2/prompt", r.URL.Path)
		assert.Equal(t, "be brief", r.URL.Query().Get("prompt_content"))
		writeJSON(w, http.StatusOK, `{"success":true,"message":"updated"}`)
	})

	msg, err := client.AdminUpdatePrompt(context.Background(), 2, "be brief")
	require.NoError(t, err)
	assert.Equal(t, "updated", msg)
}

func TestClient_AdminListUsers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":[{"id":1,"username":"root","role":"admin"}]}`)
	})
	users, err := client.AdminListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "root", users[0].Username)
}

func TestClient_ResponseTooLarge(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		chunk := []byte(strings.Repeat("x", 1024*1024))
		for i := 0; i < 11; i++ {
			w.Write(chunk)
		}
	})
	_, err := client.ListAssistants(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum size")
}
