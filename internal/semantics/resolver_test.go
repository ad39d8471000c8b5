package semantics

import "testing"

func TestResolve_Matches(t *testing.T) {
	tests := []struct {
		prompt string
		want   string
	}{
		{"ocean waves", "ocean"},
		{"calm OCEAN sunset over the sea", "ocean"}, // two ocean keywords beat one sunset keyword
		{"winter snow", "winter"},
		{"a walk in the forest", "forest"},
		{"crackling campfire flames", "fire"},
		{"starry galaxy nebula", "space"},
		{"cherry blossom garden", "blossom"},
		{"midnight moonlight study", "night"},
	}
	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			ctx := Resolve(tt.prompt)
			if ctx == nil {
				t.Fatalf("Resolve(%q) = nil, want %q", tt.prompt, tt.want)
			}
			if ctx.Name != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.prompt, ctx.Name, tt.want)
			}
		})
	}
}

func TestResolve_NoMatch(t *testing.T) {
	for _, prompt := range []string{"", "abstract minimalism", "qwerty"} {
		if ctx := Resolve(prompt); ctx != nil {
			t.Errorf("Resolve(%q) = %q, want nil", prompt, ctx.Name)
		}
	}
}

func TestResolve_TieBreaksToFirstDeclared(t *testing.T) {
	// "frozen wave" matches one ocean keyword and one winter keyword.
	// Ocean is declared first, so it must win the tie.
	ctx := Resolve("frozen wave")
	if ctx == nil {
		t.Fatal("Resolve returned nil")
	}
	if ctx.Name != "ocean" {
		t.Errorf("tie resolved to %q, want first-declared %q", ctx.Name, "ocean")
	}
}

func TestResolve_MostMatchesWins(t *testing.T) {
	// Two winter keywords beat one ocean keyword regardless of order.
	ctx := Resolve("snow and ice by the sea")
	if ctx == nil {
		t.Fatal("Resolve returned nil")
	}
	if ctx.Name != "winter" {
		t.Errorf("Resolve = %q, want %q", ctx.Name, "winter")
	}
}

func TestContainsHue_Wraparound(t *testing.T) {
	f := ColorFamily{HueMin: 340, HueMax: 20}
	for _, h := range []float64{340, 350, 0, 10, 20} {
		if !f.ContainsHue(h) {
			t.Errorf("ContainsHue(%v) = false, want true", h)
		}
	}
	for _, h := range []float64{21, 180, 339} {
		if f.ContainsHue(h) {
			t.Errorf("ContainsHue(%v) = true, want false", h)
		}
	}
}

func TestContexts_DeclarationsAreWellFormed(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range Contexts() {
		if c.Name == "" {
			t.Fatal("context with empty name")
		}
		if seen[c.Name] {
			t.Fatalf("duplicate context %q", c.Name)
		}
		seen[c.Name] = true
		if len(c.Keywords) == 0 {
			t.Errorf("context %q has no keywords", c.Name)
		}
		if len(c.ColorFamilies) == 0 {
			t.Errorf("context %q has no color families", c.Name)
		}
		if len(c.AppropriateAnimations) == 0 {
			t.Errorf("context %q has no appropriate animations", c.Name)
		}
	}
}
