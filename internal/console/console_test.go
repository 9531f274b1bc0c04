package console

import (
	"bytes"
	"context"
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
	return gateway.Response{Text: "echo: " + cmd.RawText}
}

func TestRunSession(t *testing.T) {
	in := strings.NewReader("+1 Opt\n\nexit\n")
	var out bytes.Buffer
	c := New(in, &out, "u1", "Ari", "s1")
	handler := &echoHandler{}

	err := c.Run(context.Background(), handler)
	require.NoError(t, err)

	require.Len(t, handler.commands, 1, "blank lines and exit are not dispatched")
	assert.Equal(t, "+1 Opt", handler.commands[0].RawText)
	assert.Equal(t, "Ari", handler.commands[0].DisplayName)
	assert.Contains(t, out.String(), "echo: +1 Opt")
	assert.Contains(t, out.String(), "wantbot console - type help for usage, exit to quit")
}

func TestRunEndsOnEOF(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader(""), &out, "u1", "Ari", "s1")

	err := c.Run(context.Background(), &echoHandler{})
	require.NoError(t, err)
}

func TestPublishSummaryEchoesRef(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader(""), &out, "u1", "Ari", "s1")

	ref, err := c.PublishSummary(context.Background(), "s1", "msg-7", "**Ari**\n1x Opt [xln]")
	require.NoError(t, err)
	assert.Equal(t, "msg-7", ref)
	assert.Contains(t, out.String(), "1x Opt [xln]")
}
