// Package cardkey defines the canonical identity used to index a want list.
// A key is the reversible encoding of (canonical card name, edition code,
// finish). Two printings that agree on all three fields always produce the
// same key; differing on any field produces a distinct key.
package cardkey

import (
	"fmt"
	"strings"
)

// delimiter never appears in catalog-sourced card names or edition codes,
// which is what makes Decode the exact inverse of Encode.
const delimiter = "|"

const foilMarker = "foil"

// Key is the canonical identity of one want-list entry.
type Key string

// Encode builds a Key from a canonical card name, an optional edition code
// (empty string means no edition) and the finish flag.
func Encode(name, editionCode string, foil bool) Key {
	finish := ""
	if foil {
		finish = foilMarker
	}
	return Key(name + delimiter + editionCode + delimiter + finish)
}

// Decode splits a Key back into its three fields. It returns an error only
// for strings that were never produced by Encode.
func (k Key) Decode() (name, editionCode string, foil bool, err error) {
	parts := strings.Split(string(k), delimiter)
	if len(parts) != 3 {
		return "", "", false, fmt.Errorf("malformed card key %q", string(k))
	}
	return parts[0], parts[1], parts[2] == foilMarker, nil
}

// Name returns just the card name field of the key.
func (k Key) Name() string {
	name, _, _, _ := k.Decode()
	return name
}

// EditionCode returns just the edition code field of the key, empty when
// the key carries no edition.
func (k Key) EditionCode() string {
	_, code, _, _ := k.Decode()
	return code
}

// Foil reports whether the key is for the foil finish.
func (k Key) Foil() bool {
	_, _, foil, _ := k.Decode()
	return foil
}
