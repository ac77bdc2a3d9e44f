// ABOUTME: Tests for property merging
// ABOUTME: Request properties override context properties without aliasing
package chime

import "testing"

func TestPropsMerge(t *testing.T) {
	base := Props{PropApplicationName: "app", PropEventID: "bell"}
	over := Props{PropEventID: "message", PropDevice: "/dev/dsp1"}

	merged := base.Merge(over)

	want := Props{PropApplicationName: "app", PropEventID: "message", PropDevice: "/dev/dsp1"}
	if len(merged) != len(want) {
		t.Fatalf("expected %v, got %v", want, merged)
	}
	for k, v := range want {
		if merged.Get(k) != v {
			t.Errorf("%s: expected %q, got %q", k, v, merged.Get(k))
		}
	}

	merged[PropEventID] = "changed"
	if base[PropEventID] != "bell" || over[PropEventID] != "message" {
		t.Error("Merge aliased its inputs")
	}

	var empty Props
	if got := empty.Merge(nil); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil props, got %v", got)
	}
}
