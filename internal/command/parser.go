package command

import (
	"strconv"
	"strings"
	"unicode"

	"wantbot/internal/logging"
)

// Parse scans text for want operations. It never fails: a command that
// matches nothing yields an empty slice, which the caller reports as a
// syntax error.
//
// An operation is `<sign><digits><whitespace><itemSpec>` with sign + or -.
// The item spec runs greedily up to the start of the next operation or the
// end of input, and may end in a parenthesized, comma-separated modifier
// list: the literal `foil` selects the foil finish, any other token names
// an edition (the last non-foil token wins).
func Parse(text string) []Operation {
	ops := scan(text)
	if len(ops) == 0 {
		// The whole trimmed input as exactly one operation.
		if op, ok := parseOne(strings.TrimSpace(text)); ok {
			ops = append(ops, op)
		}
	}
	logging.CommandDebug("parsed %d operation(s) from %q", len(ops), text)
	return ops
}

// scan finds every operation boundary and parses the segment each one
// starts. Segments that fail to parse are dropped, not fatal.
func scan(text string) []Operation {
	starts := boundaries(text)
	var ops []Operation
	for i, start := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		if op, ok := parseOne(strings.TrimSpace(text[start:end])); ok {
			ops = append(ops, op)
		}
	}
	return ops
}

// boundaries returns the index of every point where a
// `<sign><digits><whitespace>` pattern begins.
func boundaries(text string) []int {
	var starts []int
	for i := 0; i < len(text); i++ {
		if matchesBoundary(text[i:]) {
			starts = append(starts, i)
		}
	}
	return starts
}

func matchesBoundary(s string) bool {
	if len(s) == 0 || (s[0] != '+' && s[0] != '-') {
		return false
	}
	j := 1
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j == 1 || j >= len(s) {
		return false
	}
	return unicode.IsSpace(rune(s[j]))
}

// parseOne parses a single trimmed `<sign><digits><whitespace><itemSpec>`
// segment.
func parseOne(segment string) (Operation, bool) {
	if len(segment) < 2 || (segment[0] != '+' && segment[0] != '-') {
		return Operation{}, false
	}

	sign := SignAdd
	if segment[0] == '-' {
		sign = SignRemove
	}

	rest := segment[1:]
	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	if digits == 0 || digits == len(rest) || !unicode.IsSpace(rune(rest[digits])) {
		return Operation{}, false
	}

	quantity, err := strconv.Atoi(rest[:digits])
	if err != nil {
		return Operation{}, false
	}

	name, edition, foil := parseItemSpec(strings.TrimSpace(rest[digits:]))
	if name == "" {
		return Operation{}, false
	}

	return Operation{
		Sign:      sign,
		Quantity:  quantity,
		ItemName:  name,
		EditionID: edition,
		Foil:      foil,
	}, true
}

// parseItemSpec splits an item spec into the card name and its modifiers.
// Only a trailing parenthesized group is treated as a modifier list.
func parseItemSpec(spec string) (name, edition string, foil bool) {
	if !strings.HasSuffix(spec, ")") {
		return spec, "", false
	}
	open := strings.LastIndex(spec, "(")
	if open < 0 {
		return spec, "", false
	}

	name = strings.TrimSpace(spec[:open])
	for _, token := range strings.Split(spec[open+1:len(spec)-1], ",") {
		token = strings.ToLower(strings.TrimSpace(token))
		switch {
		case token == "":
		case token == "foil":
			foil = true
		default:
			// Conflicting editions are not an error: last one wins.
			edition = token
		}
	}
	return name, edition, foil
}
