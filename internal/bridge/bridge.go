// Package bridge adapts an external chat connector to the dispatcher over
// newline-delimited JSON on stdin/stdout. The connector owns the platform
// session, message identity and pinning; wantbot only exchanges commands,
// responses and summary events with it.
package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"wantbot/internal/gateway"
	"wantbot/internal/logging"
)

// Inbound is one command delivered by the connector.
type Inbound struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	SpaceID     string `json:"space_id"`
	Text        string `json:"text"`
}

// Outbound is an event sent back to the connector. Type is "response" for
// a reply to the issuing user and "summary" for the shared summary
// surface.
type Outbound struct {
	Type    string `json:"type"`
	SpaceID string `json:"space_id"`
	Text    string `json:"text"`
	Changed bool   `json:"changed,omitempty"`
	Ref     string `json:"ref,omitempty"`
}

// Bridge runs the JSON-lines protocol. It implements both
// gateway.Frontend and gateway.Publisher.
type Bridge struct {
	in  io.Reader
	out io.Writer
	mu  sync.Mutex // serializes writes; summaries and responses interleave
}

// New creates a bridge over the given streams.
func New(in io.Reader, out io.Writer) *Bridge {
	return &Bridge{in: in, out: out}
}

// Run implements gateway.Frontend: one JSON object per line in, one
// response event per command out. Unreadable lines are logged and
// skipped; the connector is external and must not be able to wedge the
// core.
func (b *Bridge) Run(ctx context.Context, handler gateway.Handler) error {
	scanner := bufio.NewScanner(b.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var in Inbound
		if err := json.Unmarshal(scanner.Bytes(), &in); err != nil {
			logging.Gateway("bridge: skipping unreadable line: %v", err)
			continue
		}

		resp := handler.Handle(ctx, gateway.Command{
			RawText:     in.Text,
			UserID:      in.UserID,
			DisplayName: in.DisplayName,
			SpaceID:     in.SpaceID,
		})
		if err := b.emit(Outbound{
			Type:    "response",
			SpaceID: in.SpaceID,
			Text:    resp.Text,
			Changed: resp.Changed,
		}); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// PublishSummary implements gateway.Publisher by emitting a summary event.
// The connector owns the summary message; the ref it reported last time is
// echoed back so it can update in place.
func (b *Bridge) PublishSummary(_ context.Context, spaceID, ref, text string) (string, error) {
	err := b.emit(Outbound{Type: "summary", SpaceID: spaceID, Text: text, Ref: ref})
	return ref, err
}

func (b *Bridge) emit(out Outbound) error {
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encoding outbound event: %w", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.out.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing outbound event: %w", err)
	}
	return nil
}
