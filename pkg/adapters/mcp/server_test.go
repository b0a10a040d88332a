package mcp_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/aretw0/agentforge"
	mcpadapter "github.com/aretw0/agentforge/pkg/adapters/mcp"
	"github.com/aretw0/agentforge/pkg/domain"
	"github.com/aretw0/agentforge/pkg/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t   *testing.T
	srv *mcpadapter.Server
	seq int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	wiz, err := agentforge.New(agentforge.WithSequencerOptions(generation.WithSleeper(generation.NoSleep)))
	require.NoError(t, err)
	h := &harness{t: t, srv: mcpadapter.NewServer(wiz)}
	h.rpc("initialize", map[string]any{
		"protocolVersion": "2024-11-05",
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "test", "version": "0"},
	})
	return h
}

func (h *harness) rpc(method string, params any) map[string]any {
	h.t.Helper()
	h.seq++
	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      h.seq,
		"method":  method,
		"params":  params,
	})
	require.NoError(h.t, err)

	reply := h.srv.MCPServer().HandleMessage(context.Background(), msg)
	raw, err := json.Marshal(reply)
	require.NoError(h.t, err)

	var out map[string]any
	require.NoError(h.t, json.Unmarshal(raw, &out))
	require.Nil(h.t, out["error"], "rpc error: %s", raw)
	result, ok := out["result"].(map[string]any)
	require.True(h.t, ok, "no result in %s", raw)
	return result
}

// call invokes a tool and decodes its structured content (or its text) into v.
func (h *harness) call(name string, args map[string]any, v any) bool {
	h.t.Helper()
	result := h.rpc("tools/call", map[string]any{"name": name, "arguments": args})
	isErr, _ := result["isError"].(bool)

	var payload []byte
	if sc, ok := result["structuredContent"]; ok && sc != nil {
		payload, _ = json.Marshal(sc)
	} else {
		content := result["content"].([]any)
		require.NotEmpty(h.t, content)
		payload = []byte(content[0].(map[string]any)["text"].(string))
	}
	if isErr || v == nil {
		return !isErr
	}
	require.NoError(h.t, json.Unmarshal(payload, v), "payload: %s", payload)
	return true
}

func TestServer_ListTools(t *testing.T) {
	h := newHarness(t)
	result := h.rpc("tools/list", map[string]any{})

	var names []string
	for _, tool := range result["tools"].([]any) {
		names = append(names, tool.(map[string]any)["name"].(string))
	}
	assert.ElementsMatch(t, []string{
		"list_steps", "list_options", "derive_schema", "validate_fields",
		"start_session", "advance_session", "retreat_session", "generate_agent",
	}, names)
}

func TestServer_DeriveAndValidate(t *testing.T) {
	h := newHarness(t)

	var fields []domain.Field
	require.True(t, h.call("derive_schema", map[string]any{"input": "shopify-reviews", "output": "google-sheet"}, &fields))
	require.GreaterOrEqual(t, len(fields), 3)
	assert.Equal(t, domain.KeyStoreURL, fields[0].Name)
	assert.Equal(t, domain.KeyAPIKey, fields[1].Name)
	assert.Equal(t, domain.KeySheetID, fields[2].Name)

	var res mcpadapter.ValidationResponse
	require.True(t, h.call("validate_fields", map[string]any{
		"input":  "shopify-reviews",
		"output": "google-sheet",
		"values": map[string]any{"store-url": "not a url"},
	}, &res))
	assert.False(t, res.OK)
	assert.Contains(t, res.Errors, domain.KeyAPIKey)
	assert.Contains(t, res.Errors, domain.KeySheetID)
	assert.NotContains(t, res.Errors, domain.KeyStoreURL, "format problems are advisory")
	assert.Contains(t, res.Hints, domain.KeyStoreURL)
}

func TestServer_SessionFlow(t *testing.T) {
	h := newHarness(t)

	var resp mcpadapter.SessionResponse
	require.True(t, h.call("start_session", map[string]any{"session_id": "mcp-1"}, &resp))
	assert.Equal(t, domain.KeyInputSource, resp.View.StepID)

	resp = mcpadapter.SessionResponse{}
	require.True(t, h.call("retreat_session", map[string]any{"session_id": "mcp-1"}, &resp))
	assert.True(t, resp.Exit)

	steps := []map[string]any{
		{domain.KeyInputSource: "scheduled-check"},
		{domain.KeyOutputChannel: "dashboard-summary"},
		{domain.KeyAgentName: "  Daily digest  "},
	}
	for i, values := range steps {
		resp = mcpadapter.SessionResponse{}
		require.True(t, h.call("advance_session", map[string]any{"session_id": "mcp-1", "values": values}, &resp), "step %d", i)
		assert.Empty(t, resp.Errors)
	}
	assert.True(t, resp.View.Terminal)

	var cfg domain.AgentConfiguration
	require.True(t, h.call("generate_agent", map[string]any{"session_id": "mcp-1"}, &cfg))
	assert.Equal(t, "Daily digest", cfg.DisplayName)
	assert.NotEmpty(t, cfg.ID)

	assert.False(t, h.call("generate_agent", map[string]any{"session_id": "mcp-1"}, nil), "already generated")
}

func TestServer_AdvanceRejected(t *testing.T) {
	h := newHarness(t)
	h.call("start_session", map[string]any{"session_id": "mcp-2"}, nil)
	h.call("advance_session", map[string]any{"session_id": "mcp-2", "values": map[string]any{domain.KeyInputSource: "shopify-reviews"}}, nil)
	h.call("advance_session", map[string]any{"session_id": "mcp-2", "values": map[string]any{domain.KeyOutputChannel: "slack-message"}}, nil)

	var resp mcpadapter.SessionResponse
	require.True(t, h.call("advance_session", map[string]any{"session_id": "mcp-2", "values": map[string]any{}}, &resp))
	assert.Equal(t, 2, resp.State.CurrentStep)
	assert.Nil(t, resp.Diff)
	assert.Len(t, resp.Errors, 3)
}

func TestServer_UnknownSession(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.call("advance_session", map[string]any{"session_id": "nope", "values": map[string]any{}}, nil))
}

func TestServer_CatalogResource(t *testing.T) {
	h := newHarness(t)
	result := h.rpc("resources/read", map[string]any{"uri": mcpadapter.CatalogURI})

	contents := result["contents"].([]any)
	require.Len(t, contents, 1)
	text := contents[0].(map[string]any)["text"].(string)
	assert.Contains(t, text, "shopify-reviews")
	assert.Contains(t, fmt.Sprint(contents[0]), "application/json")
}
