package bypass

import "testing"

func TestShouldBypass(t *testing.T) {
	c := New(nil)

	tests := []struct {
		question string
		forceNew bool
		want     bool
	}{
		{"What is the capital of France?", false, false},
		{"What is the capital of France?", true, true},
		{"Tell me a RANDOM fact", false, true},
		{"Generate a poem", false, true},
		{"give me something fresh", false, true},
		{"I bought a brand new car", false, true},
		{"what does a newt eat", false, true},
		{"", false, false},
		{"", true, true},
	}
	for _, tc := range tests {
		got := c.ShouldBypass(tc.question, tc.forceNew)
		if got != tc.want {
			t.Errorf("ShouldBypass(%q, %v) = %v, want %v", tc.question, tc.forceNew, got, tc.want)
		}
	}
}

func TestNew_CustomKeywords(t *testing.T) {
	c := New([]string{" Latest ", "", "TODAY"})

	if len(c.Keywords()) != 2 {
		t.Fatalf("expected 2 keywords, got %v", c.Keywords())
	}
	if !c.ShouldBypass("what is the latest version", false) {
		t.Error("expected bypass on custom keyword")
	}
	if !c.ShouldBypass("news today", false) {
		t.Error("expected bypass on uppercased custom keyword")
	}
	if c.ShouldBypass("a new thing", false) {
		t.Error("default keywords must not apply when custom ones are set")
	}
}
