package cardkey

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		edition string
		foil    bool
	}{
		{"Lightning Bolt", "m25", true},
		{"Lightning Bolt", "m25", false},
		{"Lightning Bolt", "", false},
		{"Opt", "", true},
		{"Fire // Ice", "apc", false},
		{"Borrowing 100,000 Arrows", "chr", false},
		{"Ach! Hans, Run!", "unh", true},
		{"", "", false},
	}

	for _, c := range cases {
		key := Encode(c.name, c.edition, c.foil)
		name, edition, foil, err := key.Decode()
		if err != nil {
			t.Fatalf("Decode(%q) failed: %v", key, err)
		}
		if name != c.name || edition != c.edition || foil != c.foil {
			t.Errorf("round trip (%q, %q, %v) -> (%q, %q, %v)",
				c.name, c.edition, c.foil, name, edition, foil)
		}
	}
}

func TestDistinctFieldsDistinctKeys(t *testing.T) {
	base := Encode("Lightning Bolt", "m25", false)

	if Encode("Lightning Bolt", "m25", true) == base {
		t.Error("finish flag did not change the key")
	}
	if Encode("Lightning Bolt", "lea", false) == base {
		t.Error("edition did not change the key")
	}
	if Encode("Lightning Bolt", "", false) == base {
		t.Error("absent edition did not change the key")
	}
	if Encode("Chain Lightning", "m25", false) == base {
		t.Error("name did not change the key")
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, _, _, err := Key("not a key").Decode(); err == nil {
		t.Error("expected error for key without delimiters")
	}
	if _, _, _, err := Key("a|b|c|d").Decode(); err == nil {
		t.Error("expected error for key with too many fields")
	}
}

func TestFieldAccessors(t *testing.T) {
	key := Encode("Opt", "xln", true)
	if key.Name() != "Opt" {
		t.Errorf("Name() = %q", key.Name())
	}
	if key.EditionCode() != "xln" {
		t.Errorf("EditionCode() = %q", key.EditionCode())
	}
	if !key.Foil() {
		t.Error("Foil() = false")
	}
}
