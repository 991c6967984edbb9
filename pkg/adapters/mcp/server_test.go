package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/maitre"
	"github.com/aretw0/maitre/internal/testutils"
	"github.com/aretw0/maitre/pkg/adapters/memory"
	"github.com/aretw0/maitre/pkg/domain"
	"github.com/aretw0/maitre/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, ex *testutils.ScriptedExtractor, opts ...Option) *Server {
	t.Helper()
	eng, err := maitre.New(ex, &testutils.FlakyBooking{}, &testutils.RecordingNotifier{})
	require.NoError(t, err)
	return NewServer(eng, session.NewManager(memory.NewStore()), opts...)
}

func TestTools_BookingFlow(t *testing.T) {
	ex := &testutils.ScriptedExtractor{
		Extractions: []domain.Extraction{{Fields: testutils.CompleteDetails()}},
		Decisions:   []domain.Decision{{Proceed: true}},
	}
	var done []*domain.Session
	srv := newTestServer(t, ex, WithOnComplete(func(s *domain.Session) { done = append(done, s) }))
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	start, err := srv.handleStart(ctx, req, StartArgs{})
	require.NoError(t, err)
	assert.NotEmpty(t, start.SessionID)
	assert.Equal(t, maitre.Greeting, start.Reply)

	res, err := srv.handleMessage(ctx, req, MessageArgs{SessionID: start.SessionID, Message: "Mario's for 4"})
	require.NoError(t, err)
	assert.True(t, res.Session.AwaitingConfirmation)
	assert.False(t, res.Complete)

	res, err = srv.handleMessage(ctx, req, MessageArgs{SessionID: start.SessionID, Message: "yes"})
	require.NoError(t, err)
	assert.True(t, res.Complete)
	require.NotNil(t, res.Session.BookingRef)
	assert.Len(t, done, 1)

	got, err := srv.handleGet(ctx, req, SessionArgs{SessionID: start.SessionID})
	require.NoError(t, err)
	assert.Equal(t, res.Session.BookingRef, got.Session.BookingRef)
	assert.Contains(t, got.Status, "Party size: 4")

	_, err = srv.handleMessage(ctx, req, MessageArgs{SessionID: start.SessionID, Message: "again"})
	assert.ErrorIs(t, err, domain.ErrConversationComplete)
}

func TestTools_Errors(t *testing.T) {
	ex := &testutils.ScriptedExtractor{Err: errors.New("model offline")}
	srv := newTestServer(t, ex)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	_, err := srv.handleMessage(ctx, req, MessageArgs{Message: "hi"})
	assert.Error(t, err)

	_, err = srv.handleMessage(ctx, req, MessageArgs{SessionID: "missing", Message: "hi"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = srv.handleGet(ctx, req, SessionArgs{SessionID: "missing"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	start, err := srv.handleStart(ctx, req, StartArgs{SessionID: "s1"})
	require.NoError(t, err)
	_, err = srv.handleStart(ctx, req, StartArgs{SessionID: "s1"})
	assert.Error(t, err, "duplicate id")

	_, err = srv.handleMessage(ctx, req, MessageArgs{SessionID: start.SessionID, Message: "hi"})
	var extraction *maitre.ExtractionError
	assert.ErrorAs(t, err, &extraction)
}

func TestServer_ListsTools(t *testing.T) {
	srv := newTestServer(t, &testutils.ScriptedExtractor{})

	msg := srv.MCPServer().HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	var resp struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &resp))

	var names []string
	for _, tool := range resp.Result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"start_booking", "send_message", "get_booking", "get_graph"}, names)
}

func TestServer_CallToolOverJSONRPC(t *testing.T) {
	srv := newTestServer(t, &testutils.ScriptedExtractor{})

	msg := srv.MCPServer().HandleMessage(context.Background(), json.RawMessage(
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"start_booking","arguments":{"session_id":"abc"}}}`))
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `abc`)
	assert.NotContains(t, string(raw), `"isError":true`)
}
