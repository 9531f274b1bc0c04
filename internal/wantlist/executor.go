package wantlist

import (
	"context"
	"fmt"
	"strings"

	"wantbot/internal/cardkey"
	"wantbot/internal/catalog"
	"wantbot/internal/command"
	"wantbot/internal/logging"
)

// CardResolver is the slice of the catalog resolver the executor needs.
type CardResolver interface {
	ResolveCard(ctx context.Context, name, editionID string) (catalog.Card, error)
	ResolveEdition(ctx context.Context, identifier string) (catalog.Edition, error)
}

// Result is the outcome of one operation. Exactly one of Message and Err
// is meaningful.
type Result struct {
	Op      command.Operation
	Message string
	Changed bool
	Err     error
}

// Executor applies parsed operations to the store. Operations in a batch
// run independently and in order; an earlier failure never blocks or rolls
// back later operations.
type Executor struct {
	store    *Store
	resolver CardResolver
}

// NewExecutor wires an executor to its store and resolver.
func NewExecutor(store *Store, resolver CardResolver) *Executor {
	return &Executor{store: store, resolver: resolver}
}

// Execute runs a whole batch for one user and reports every outcome plus
// whether anything changed. Emptied lists are pruned afterwards.
func (e *Executor) Execute(ctx context.Context, spaceID, userID, displayName string, ops []command.Operation) ([]Result, bool) {
	results := make([]Result, 0, len(ops))
	changed := false

	for _, op := range ops {
		var res Result
		switch op.Sign {
		case command.SignRemove:
			res = e.applyRemove(spaceID, userID, op)
		default:
			res = e.applyAdd(ctx, spaceID, userID, displayName, op)
		}
		if res.Changed {
			changed = true
		}
		results = append(results, res)
	}

	e.store.mu.Lock()
	e.store.pruneEmpty(spaceID, userID)
	e.store.mu.Unlock()

	return results, changed
}

// applyAdd validates, resolves, then merges one add into the user's list.
// The stored quantity is read before the resolver suspension and the write
// uses that read, so two interleaved adds to the same key are
// last-writer-wins. The capacity check guards an invariant and therefore
// runs at write time under the lock.
func (e *Executor) applyAdd(ctx context.Context, spaceID, userID, displayName string, op command.Operation) Result {
	if op.Quantity < 1 || op.Quantity > MaxQuantity {
		return Result{Op: op, Err: invalid("quantity must be between 1 and %d", MaxQuantity)}
	}
	if len(op.ItemName) > MaxNameLength {
		return Result{Op: op, Err: invalid("card name is too long (%d characters max)", MaxNameLength)}
	}

	before := e.store.snapshotItems(spaceID, userID)

	// An explicit edition is resolved first so "Masters 25" and "m25"
	// both canonicalize to the same code before constraining the card
	// lookup and deriving the key.
	edition := op.EditionID
	if edition != "" {
		ed, err := e.resolver.ResolveEdition(ctx, edition)
		if err != nil {
			return Result{Op: op, Err: fmt.Errorf("could not add %q: %w", op.ItemName, err)}
		}
		edition = strings.ToLower(ed.Code)
	}

	card, err := e.resolver.ResolveCard(ctx, op.ItemName, edition)
	if err != nil {
		return Result{Op: op, Err: fmt.Errorf("could not add %q: %w", op.ItemName, err)}
	}

	// The explicit edition wins over whatever printing the fuzzy lookup
	// happened to return.
	if edition == "" {
		edition = card.EditionCode
	}
	key := cardkey.Encode(card.Name, edition, op.Foil)

	e.store.mu.Lock()
	defer e.store.mu.Unlock()

	state := e.store.space(spaceID)
	list, ok := state.Users[userID]

	if ok {
		if _, held := list.Items[key]; !held && len(list.Items) >= MaxEntries {
			return Result{Op: op, Err: &CapacityError{Limit: MaxEntries}}
		}
	} else {
		list = &UserWantList{DisplayName: displayName, Items: make(map[cardkey.Key]int)}
		state.Users[userID] = list
	}
	list.DisplayName = displayName

	old, exists := before[key]

	quantity := op.Quantity
	if exists {
		quantity = old + op.Quantity
		if quantity > MaxQuantity {
			quantity = MaxQuantity
		}
	}
	list.Items[key] = quantity

	logging.Store("add %s: %s x%d (space %s, user %s)", key, card.Name, quantity, spaceID, userID)

	if exists {
		return Result{
			Op:      op,
			Message: fmt.Sprintf("%s: %d -> %d", describe(key), old, quantity),
			Changed: true,
		}
	}

	// First mention of a printing spells the edition name out; later
	// updates stick to the short code.
	message := fmt.Sprintf("Added %dx %s", quantity, describe(key))
	if card.EditionName != "" && strings.EqualFold(edition, card.EditionCode) {
		message += fmt.Sprintf(" (%s)", card.EditionName)
	}
	return Result{
		Op:      op,
		Message: message,
		Changed: true,
	}
}

// applyRemove decrements or deletes a matching entry. No resolution
// happens here: the match runs over the keys already stored.
func (e *Executor) applyRemove(spaceID, userID string, op command.Operation) Result {
	if op.Quantity <= 0 {
		return Result{Op: op, Err: invalid("quantity must be positive")}
	}

	e.store.mu.Lock()
	defer e.store.mu.Unlock()

	state, ok := e.store.spaces[spaceID]
	if !ok {
		return Result{Op: op, Err: invalid("your want list is empty")}
	}
	list, ok := state.Users[userID]
	if !ok || len(list.Items) == 0 {
		return Result{Op: op, Err: invalid("your want list is empty")}
	}

	key, found := matchKey(list, op)
	if !found {
		return Result{Op: op, Err: noMatch("no entry matching %q in your want list", op.ItemName)}
	}

	stored := list.Items[key]
	if op.Quantity >= stored {
		delete(list.Items, key)
		logging.Store("remove %s: deleted (space %s, user %s)", key, spaceID, userID)
		return Result{
			Op:      op,
			Message: fmt.Sprintf("Removed %s", describe(key)),
			Changed: true,
		}
	}

	list.Items[key] = stored - op.Quantity
	logging.Store("remove %s: %d -> %d (space %s, user %s)", key, stored, stored-op.Quantity, spaceID, userID)
	return Result{
		Op:      op,
		Message: fmt.Sprintf("Removed %dx %s, %d remaining", op.Quantity, describe(key), stored-op.Quantity),
		Changed: true,
	}
}

// matchKey finds the stored key a remove refers to: name matches
// case-insensitively, the edition matches the request exactly (a request
// without an edition matches only keys without one; there is no wildcard),
// and the finish flag matches exactly.
func matchKey(list *UserWantList, op command.Operation) (cardkey.Key, bool) {
	for key := range list.Items {
		name, edition, foil, err := key.Decode()
		if err != nil {
			continue
		}
		if !strings.EqualFold(name, op.ItemName) {
			continue
		}
		if foil != op.Foil {
			continue
		}
		if op.EditionID == "" {
			if edition != "" {
				continue
			}
		} else if !strings.EqualFold(edition, op.EditionID) {
			continue
		}
		return key, true
	}
	return "", false
}

// describe renders a key for user-facing messages.
func describe(key cardkey.Key) string {
	name, edition, foil, err := key.Decode()
	if err != nil {
		return string(key)
	}
	switch {
	case edition != "" && foil:
		return fmt.Sprintf("%s [%s, foil]", name, edition)
	case edition != "":
		return fmt.Sprintf("%s [%s]", name, edition)
	case foil:
		return fmt.Sprintf("%s [foil]", name)
	default:
		return name
	}
}
