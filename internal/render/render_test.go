package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"wantbot/internal/cardkey"
	"wantbot/internal/wantlist"
)

func snapshot(users ...wantlist.UserSnapshot) wantlist.SpaceSnapshot {
	return wantlist.SpaceSnapshot{Users: users}
}

func TestSummaryEmpty(t *testing.T) {
	r := New(language.English)
	got := r.Summary(snapshot())
	assert.Equal(t, got, r.Summary(snapshot()), "empty summary must be deterministic")
	assert.NotEmpty(t, got)
}

func TestSummaryOrdering(t *testing.T) {
	r := New(language.English)

	snap := snapshot(
		wantlist.UserSnapshot{
			DisplayName: "zoe",
			Items: map[cardkey.Key]int{
				cardkey.Encode("Opt", "xln", false): 4,
			},
		},
		wantlist.UserSnapshot{
			DisplayName: "Ari",
			Items: map[cardkey.Key]int{
				cardkey.Encode("Lightning Bolt", "m25", true):  1,
				cardkey.Encode("Lightning Bolt", "m25", false): 2,
				cardkey.Encode("Lightning Bolt", "", false):    3,
				cardkey.Encode("Lightning Bolt", "lea", false): 1,
				cardkey.Encode("Aether Vial", "dst", false):    1,
			},
		},
	)

	want := strings.Join([]string{
		"**Ari**",
		"1x Aether Vial [dst]",
		"1x Lightning Bolt [lea]",
		"2x Lightning Bolt [m25]",
		"1x Lightning Bolt [m25, foil]",
		"3x Lightning Bolt",
		"",
		"**zoe**",
		"4x Opt [xln]",
	}, "\n")

	assert.Equal(t, want, r.Summary(snap))
}

func TestSummaryDeterministic(t *testing.T) {
	r := New(language.English)
	snap := snapshot(
		wantlist.UserSnapshot{
			DisplayName: "Ari",
			Items: map[cardkey.Key]int{
				cardkey.Encode("Opt", "xln", false):            1,
				cardkey.Encode("Island", "", false):            2,
				cardkey.Encode("Lightning Bolt", "m25", true):  3,
				cardkey.Encode("Lightning Bolt", "m25", false): 4,
			},
		},
	)

	first := r.Summary(snap)
	for i := 0; i < 20; i++ {
		require.Equal(t, first, r.Summary(snap))
	}
}

func TestSummaryTruncation(t *testing.T) {
	r := New(language.English)

	items := make(map[cardkey.Key]int)
	for i := 0; i < 200; i++ {
		name := "Extremely Long Placeholder Card Name " + strings.Repeat("x", 20) + string(rune('a'+i%26)) + string(rune('a'+(i/26)%26))
		items[cardkey.Encode(name, "tst", false)] = 1
	}
	got := r.Summary(snapshot(wantlist.UserSnapshot{DisplayName: "Ari", Items: items}))

	assert.LessOrEqual(t, len(got), DefaultMaxLength)
	assert.True(t, strings.HasSuffix(got, truncationMarker), "marker must never be dropped")
}

func TestSummaryUnderLimitNotTruncated(t *testing.T) {
	r := New(language.English)
	got := r.Summary(snapshot(wantlist.UserSnapshot{
		DisplayName: "Ari",
		Items:       map[cardkey.Key]int{cardkey.Encode("Opt", "xln", false): 1},
	}))
	assert.False(t, strings.Contains(got, "truncated"))
}
