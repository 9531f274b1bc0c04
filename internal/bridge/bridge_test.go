package bridge

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wantbot/internal/gateway"
)

type echoHandler struct {
	commands []gateway.Command
}

func (h *echoHandler) Handle(_ context.Context, cmd gateway.Command) gateway.Response {
	h.commands = append(h.commands, cmd)
	return gateway.Response{Text: "ok: " + cmd.RawText, Changed: true}
}

func TestRunRoundTrip(t *testing.T) {
	in := strings.NewReader(
		`{"user_id":"u1","display_name":"Ari","space_id":"s1","text":"+2 Opt"}` + "\n" +
			"this is not json\n" +
			`{"user_id":"u2","display_name":"Zoe","space_id":"s1","text":"help"}` + "\n")
	var out bytes.Buffer

	b := New(in, &out)
	handler := &echoHandler{}
	require.NoError(t, b.Run(context.Background(), handler))

	require.Len(t, handler.commands, 2, "bad lines are skipped, not fatal")
	assert.Equal(t, "+2 Opt", handler.commands[0].RawText)
	assert.Equal(t, "Zoe", handler.commands[1].DisplayName)

	var events []Outbound
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var ev Outbound
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
		events = append(events, ev)
	}
	require.Len(t, events, 2)
	assert.Equal(t, "response", events[0].Type)
	assert.Equal(t, "ok: +2 Opt", events[0].Text)
	assert.True(t, events[0].Changed)
}

func TestPublishSummaryEmitsEvent(t *testing.T) {
	var out bytes.Buffer
	b := New(strings.NewReader(""), &out)

	ref, err := b.PublishSummary(context.Background(), "s1", "msg-9", "the summary")
	require.NoError(t, err)
	assert.Equal(t, "msg-9", ref, "ref is connector-owned and echoed back")

	var ev Outbound
	require.NoError(t, json.Unmarshal(out.Bytes(), &ev))
	assert.Equal(t, "summary", ev.Type)
	assert.Equal(t, "s1", ev.SpaceID)
	assert.Equal(t, "msg-9", ev.Ref)
	assert.Equal(t, "the summary", ev.Text)
}
