// Package console is a local line-based front-end for wantbot. It plays
// the role of the chat platform so the whole pipeline can be exercised
// without one: stdin lines become commands, responses and the shared
// summary render to stdout.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"wantbot/internal/gateway"
)

var (
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	responseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	summaryStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
)

// Console reads commands line by line and prints responses. It also
// implements gateway.Publisher by printing the summary panel, standing in
// for the pinned message a chat platform would own.
type Console struct {
	in  io.Reader
	out io.Writer

	UserID      string
	DisplayName string
	SpaceID     string

	mu sync.Mutex
}

// New creates a console front-end for one local user.
func New(in io.Reader, out io.Writer, userID, displayName, spaceID string) *Console {
	return &Console{
		in:          in,
		out:         out,
		UserID:      userID,
		DisplayName: displayName,
		SpaceID:     spaceID,
	}
}

// Run implements gateway.Frontend. It returns on EOF, an "exit" command,
// or context cancellation.
func (c *Console) Run(ctx context.Context, handler gateway.Handler) error {
	c.println(headerStyle.Render("wantbot console - type help for usage, exit to quit"))

	scanner := bufio.NewScanner(c.in)
	for {
		c.print(promptStyle.Render(c.DisplayName + "> "))
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		resp := handler.Handle(ctx, gateway.Command{
			RawText:     line,
			UserID:      c.UserID,
			DisplayName: c.DisplayName,
			SpaceID:     c.SpaceID,
		})
		c.println(responseStyle.Render(resp.Text))
	}
}

// PublishSummary implements gateway.Publisher by repainting the summary
// panel in place of a pinned message.
func (c *Console) PublishSummary(_ context.Context, _, ref, text string) (string, error) {
	c.println(summaryStyle.Render(text))
	return ref, nil
}

func (c *Console) print(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, s)
}

func (c *Console) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, s)
}
