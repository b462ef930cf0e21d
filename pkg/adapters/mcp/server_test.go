package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/autograde/pkg/catalog"
	"github.com/aretw0/autograde/pkg/domain"
	"github.com/aretw0/autograde/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cat := &catalog.Catalog{
		StartMessage: "Welcome.",
		EndMessage:   "Finished.",
		Exercises: []domain.Exercise{
			{
				Name:         "pwd",
				CommandRegex: domain.MustCompilePattern("pwd"),
				StartMessage: "Print your working directory.",
				WinMessage:   "Good.",
				Hint:         "Type pwd",
			},
			{
				Name:     "home",
				Sequence: 1,
				EnvVarConditions: []domain.EnvVarCondition{
					{Name: "EDITOR", State: domain.Present},
				},
				WinMessage: "Editor set.",
			},
		},
	}
	return NewServer(session.NewManager(cat))
}

func call(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func TestHandleSubmit(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	// 1. Rejection is a tool error carrying the reason
	res, err := s.handleSubmit(ctx, call(map[string]any{
		"session_id":    "s",
		"exercise_name": "pwd",
		"command":       "ls",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "command does not seem right")

	// 2. Success
	res, err = s.handleSubmit(ctx, call(map[string]any{
		"session_id":    "s",
		"exercise_name": "pwd",
		"command":       "pwd",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "Good.", text(t, res))

	// 3. Env arrives as an object; non-string values are coerced
	res, err = s.handleSubmit(ctx, call(map[string]any{
		"session_id":    "s",
		"exercise_name": "home",
		"env":           map[string]any{"EDITOR": "vim", "LINES": 42},
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError, text(t, res))
	assert.Equal(t, "Editor set.\nFinished.", text(t, res))
}

func TestHandleSubmit_BadArguments(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleSubmit(context.Background(), call(map[string]any{"session_id": "s"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleSubmit(context.Background(), call(map[string]any{
		"session_id":    "s",
		"exercise_name": "pwd",
		"unexpected":    true,
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "invalid arguments")
}

func TestHandleViews(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	args := call(map[string]any{"session_id": "s"})

	res, err := s.handleStart(ctx, args)
	require.NoError(t, err)
	assert.Equal(t, "Welcome.\nPrint your working directory.", text(t, res))

	res, err = s.handleHint(ctx, args)
	require.NoError(t, err)
	assert.Equal(t, "Type pwd", text(t, res))

	res, err = s.handleStatus(ctx, args)
	require.NoError(t, err)
	assert.Equal(t, "Exercise Status:\n-> pwd\n   home", text(t, res))
	assert.NotNil(t, res.StructuredContent)

	res, err = s.handleReset(ctx, args)
	require.NoError(t, err)
	assert.Equal(t, "0", text(t, res))
}

func TestHandleViews_MissingSession(t *testing.T) {
	s := newTestServer(t)
	res, err := s.handleHint(context.Background(), call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
