package tokens

import "testing"

func TestStringIsStableAndDistinct(t *testing.T) {
	a := HostFunction(1)
	b := HostFunction(2)

	if a.String() == "" {
		t.Fatal("String() is empty")
	}
	if a.String() == b.String() {
		t.Fatalf("distinct tokens rendered identically: %q", a.String())
	}
	if a.String() != HostFunction(1).String() {
		t.Fatal("String() is not deterministic for the same value")
	}
}

func TestContainerAndStreamRenderIdenticallyForSameValue(t *testing.T) {
	c := Container(42)
	s := Stream(42)
	// Same underlying value, different logical meaning, but the encoding
	// is value-only so they render identically; callers must not rely on
	// String() to disambiguate token kind.
	if c.String() != s.String() {
		t.Fatalf("expected identical rendering for identical values, got %q vs %q", c.String(), s.String())
	}
}
