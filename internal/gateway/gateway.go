// Package gateway dispatches raw commands from a front-end collaborator
// through the parser, executor and renderer, and hands changed summaries
// to the publishing collaborator. The chat platform itself (connection
// lifecycle, message identity, pinning) lives entirely behind the two
// interfaces defined here.
package gateway

import "context"

// Command is one raw command delivered by a front-end.
type Command struct {
	RawText     string
	UserID      string
	DisplayName string
	SpaceID     string
}

// Response is what the front-end relays back to the user.
type Response struct {
	Text    string
	Changed bool
}

// Handler processes commands. Implemented by Dispatcher; front-ends only
// see this.
type Handler interface {
	Handle(ctx context.Context, cmd Command) Response
}

// Frontend delivers commands to a Handler until its context ends.
type Frontend interface {
	Run(ctx context.Context, handler Handler) error
}

// Publisher owns the shared summary surface for each space: message
// identity, pinning and permissions are its problem. ref is the opaque
// handle from the previous publish (empty the first time); the returned
// handle is stored for the next one. The core is indifferent to publish
// failures.
type Publisher interface {
	PublishSummary(ctx context.Context, spaceID, ref, text string) (string, error)
}

// NopPublisher discards summaries. Useful for tests and for front-ends
// that render the summary themselves.
type NopPublisher struct{}

// PublishSummary implements Publisher.
func (NopPublisher) PublishSummary(_ context.Context, _, ref, _ string) (string, error) {
	return ref, nil
}
