package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"wantbot/internal/logging"
	"wantbot/internal/pacer"
)

// Resolver maps user-supplied, possibly fuzzy identifiers to canonical
// catalog identities. Every external call goes through the pacer, so the
// process-wide FIFO ordering over outbound calls holds across all
// concurrent commands.
type Resolver struct {
	client   Client
	pacer    *pacer.Pacer
	cards    *cardCache
	editions *editionCache
}

// ResolverConfig configures a Resolver. Now is injectable for cache
// freshness tests.
type ResolverConfig struct {
	Client Client
	Pacer  *pacer.Pacer
	Now    func() time.Time
}

// NewResolver creates a Resolver with empty caches.
func NewResolver(cfg ResolverConfig) *Resolver {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Resolver{
		client:   cfg.Client,
		pacer:    cfg.Pacer,
		cards:    newCardCache(now),
		editions: newEditionCache(now),
	}
}

// ResolveCard resolves a fuzzy card name, constrained to an edition when
// editionID is non-empty, to its canonical catalog identity.
func (r *Resolver) ResolveCard(ctx context.Context, name, editionID string) (Card, error) {
	key := cardCacheKey(name, editionID)
	if card, ok := r.cards.get(key); ok {
		logging.CatalogDebug("card cache hit for %q (%q)", name, editionID)
		return card, nil
	}

	var card Card
	err := r.pacer.Schedule(ctx, func(ctx context.Context) error {
		var lookupErr error
		card, lookupErr = r.client.NamedCard(ctx, name, editionID)
		return lookupErr
	})
	if err != nil {
		return Card{}, r.classifyCardError(err, name, editionID)
	}

	r.cards.put(key, card)
	logging.Catalog("resolved %q (%q) -> %q [%s]", name, editionID, card.Name, card.EditionCode)
	return card, nil
}

// classifyCardError rewrites catalog failures into the messages users see.
func (r *Resolver) classifyCardError(err error, name, editionID string) error {
	var catErr *Error
	if !errors.As(err, &catErr) {
		return &Error{Kind: KindNetwork, Err: err}
	}

	switch catErr.Kind {
	case KindNotFound:
		if editionID != "" {
			return notFound("no card named %q found in edition %q", name, editionID)
		}
		return notFound("no card named %q found", name)
	case KindAmbiguous:
		return ambiguous("%q matches more than one card, please be more specific", name)
	default:
		return catErr
	}
}

// ResolveEdition resolves an edition identifier (a code or a free-text
// name) to its canonical edition.
func (r *Resolver) ResolveEdition(ctx context.Context, identifier string) (Edition, error) {
	ident := strings.ToLower(strings.TrimSpace(identifier))
	if edition, ok := r.editions.get(ident); ok {
		logging.CatalogDebug("edition cache hit for %q", ident)
		return edition, nil
	}

	// Direct code lookup first, the common case for inputs like "m25".
	var edition Edition
	err := r.pacer.Schedule(ctx, func(ctx context.Context) error {
		var lookupErr error
		edition, lookupErr = r.client.Edition(ctx, ident)
		return lookupErr
	})
	if err == nil {
		r.cacheEdition(ident, edition)
		return edition, nil
	}

	var catErr *Error
	if !errors.As(err, &catErr) {
		return Edition{}, &Error{Kind: KindNetwork, Err: err}
	}
	if catErr.Kind != KindNotFound {
		return Edition{}, catErr
	}

	// Fall back to a catalog-wide search over all editions.
	return r.searchEditions(ctx, ident, identifier)
}

// searchEditions applies the fallback matching order: exact
// case-insensitive code or name match, then the first case-insensitive
// substring match on name or code.
func (r *Resolver) searchEditions(ctx context.Context, ident, original string) (Edition, error) {
	var editions []Edition
	err := r.pacer.Schedule(ctx, func(ctx context.Context) error {
		var lookupErr error
		editions, lookupErr = r.client.ListEditions(ctx)
		return lookupErr
	})
	if err != nil {
		var catErr *Error
		if errors.As(err, &catErr) {
			return Edition{}, catErr
		}
		return Edition{}, &Error{Kind: KindNetwork, Err: err}
	}

	for _, e := range editions {
		if strings.EqualFold(e.Code, ident) || strings.EqualFold(e.Name, ident) {
			r.cacheEdition(ident, e)
			return e, nil
		}
	}
	for _, e := range editions {
		name := strings.ToLower(e.Name)
		code := strings.ToLower(e.Code)
		if strings.Contains(name, ident) || strings.Contains(code, ident) {
			r.cacheEdition(ident, e)
			return e, nil
		}
	}

	return Edition{}, notFound("no edition matching %q found", original)
}

// cacheEdition stores a resolution under both the queried identifier and
// the canonical code.
func (r *Resolver) cacheEdition(ident string, edition Edition) {
	r.editions.put(edition, ident, strings.ToLower(edition.Code))
	logging.Catalog("resolved edition %q -> %q [%s]", ident, edition.Name, edition.Code)
}
