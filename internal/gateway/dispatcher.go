package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"wantbot/internal/command"
	"wantbot/internal/logging"
	"wantbot/internal/render"
	"wantbot/internal/wantlist"
)

const helpText = `Manage your wants with + and -:
  +2 Lightning Bolt             add two copies
  +1 Lightning Bolt (M25, foil) add one, pinned to an edition and finish
  -1 Opt                        remove one copy
Several directives can be chained in one message:
  +1 Lightning Bolt (M25, foil) -2 Opt +3 Island
Other commands:
  clear  drop your entire want list
  help   show this message`

const syntaxErrorText = `I could not read any want directives in that. ` +
	`Try something like "+2 Lightning Bolt" or "help".`

const genericFailureText = "Something went wrong handling that command. Nothing was changed."

// Dispatcher is the Handler implementation gluing the core together.
type Dispatcher struct {
	store     *wantlist.Store
	executor  *wantlist.Executor
	renderer  *render.Renderer
	publisher Publisher
}

// NewDispatcher wires a dispatcher. A nil publisher falls back to
// NopPublisher.
func NewDispatcher(store *wantlist.Store, executor *wantlist.Executor, renderer *render.Renderer, publisher Publisher) *Dispatcher {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Dispatcher{
		store:     store,
		executor:  executor,
		renderer:  renderer,
		publisher: publisher,
	}
}

// Handle processes one command to completion. Per-operation failures are
// reported inline alongside sibling successes; anything unexpected
// escaping the per-operation boundary is caught here, logged, and turned
// into a generic failure so store state is never left half-reported.
func (d *Dispatcher) Handle(ctx context.Context, cmd Command) (resp Response) {
	reqID := uuid.NewString()[:8]

	defer func() {
		if r := recover(); r != nil {
			logging.Get(logging.CategoryGateway).Error("[%s] panic handling command: %v", reqID, r)
			resp = Response{Text: genericFailureText}
		}
	}()

	logging.Gateway("[%s] command from %s in %s: %q", reqID, cmd.UserID, cmd.SpaceID, cmd.RawText)

	text := strings.TrimSpace(cmd.RawText)
	switch strings.ToLower(text) {
	case "help":
		return Response{Text: helpText}
	case "clear":
		return d.handleClear(ctx, cmd, reqID)
	}

	ops := command.Parse(text)
	if len(ops) == 0 {
		logging.GatewayDebug("[%s] no operations parsed", reqID)
		return Response{Text: syntaxErrorText}
	}

	results, changed := d.executor.Execute(ctx, cmd.SpaceID, cmd.UserID, cmd.DisplayName, ops)

	lines := make([]string, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			lines = append(lines, fmt.Sprintf("✗ %v", res.Err))
		} else {
			lines = append(lines, fmt.Sprintf("✓ %s", res.Message))
		}
	}

	if changed {
		d.publish(ctx, cmd.SpaceID, reqID)
	}
	return Response{Text: strings.Join(lines, "\n"), Changed: changed}
}

func (d *Dispatcher) handleClear(ctx context.Context, cmd Command, reqID string) Response {
	removed := d.store.ClearUser(cmd.SpaceID, cmd.UserID)
	if removed == 0 {
		return Response{Text: "Your want list is already empty."}
	}
	d.publish(ctx, cmd.SpaceID, reqID)
	return Response{
		Text:    fmt.Sprintf("Cleared your want list (%d entries removed).", removed),
		Changed: true,
	}
}

// publish recomputes the shared summary and hands it to the publisher.
// Publish failures are logged and dropped.
func (d *Dispatcher) publish(ctx context.Context, spaceID, reqID string) {
	text := d.renderer.Summary(d.store.Snapshot(spaceID))
	ref := d.store.SummaryRef(spaceID)

	newRef, err := d.publisher.PublishSummary(ctx, spaceID, ref, text)
	if err != nil {
		logging.Get(logging.CategoryGateway).Warn("[%s] summary publish failed for %s: %v", reqID, spaceID, err)
		return
	}
	if newRef != ref {
		d.store.SetSummaryRef(spaceID, newRef)
	}
}
