// Package command turns free-text want commands into typed operations.
// A command batches one or more add/remove directives, each optionally
// qualified by an edition and a foil marker, with no required separator
// between directives.
package command

import "fmt"

// Sign says whether an operation adds to or removes from a want list.
type Sign int

const (
	SignAdd Sign = iota
	SignRemove
)

func (s Sign) String() string {
	if s == SignRemove {
		return "-"
	}
	return "+"
}

// Operation is one parsed directive. Operations are immutable once parsed
// and consumed exactly once by the executor.
type Operation struct {
	Sign     Sign
	Quantity int
	ItemName string
	// EditionID is the user-supplied edition identifier, lower-cased,
	// empty when the user gave none.
	EditionID string
	Foil      bool
}

func (op Operation) String() string {
	suffix := ""
	switch {
	case op.EditionID != "" && op.Foil:
		suffix = fmt.Sprintf(" (%s, foil)", op.EditionID)
	case op.EditionID != "":
		suffix = fmt.Sprintf(" (%s)", op.EditionID)
	case op.Foil:
		suffix = " (foil)"
	}
	return fmt.Sprintf("%s%d %s%s", op.Sign, op.Quantity, op.ItemName, suffix)
}
