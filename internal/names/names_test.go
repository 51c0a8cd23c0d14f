package names

import "testing"

func strOf(p *string) string {
	if p == nil {
		return "<nil>"
	}
	return *p
}

func TestSmartTitleCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"JAN VAN DER BERG", "Jan van der Berg"},
		{"jan van der berg", "Jan van der Berg"},
		{"MARIA", "Maria"},
		{"o'neill", "O'Neill"},
		{"anne-marie JANSEN", "Anne-Marie Jansen"},
		{"mcdonald", "McDonald"},
		{"WILLEM III", "Willem III"},
		{"d'artagnan", "d'Artagnan"},
		{"Private", "Private"},
		{"VON HUMBOLDT alexander", "von Humboldt Alexander"},
	}

	for _, tt := range tests {
		got := SmartTitleCase(tt.in)
		if got == nil || *got != tt.want {
			t.Errorf("SmartTitleCase(%q) = %q, want %q", tt.in, strOf(got), tt.want)
		}
	}
}

func TestSmartTitleCaseParticleAtStartOfMultiTokenName(t *testing.T) {
	// Particles stay lowercase even at the start when the name has more
	// than one token, but a lone particle-looking token is capitalized.
	got := SmartTitleCase("van")
	if got == nil || *got != "Van" {
		t.Errorf("single token: got %q, want Van", strOf(got))
	}
}

func TestSmartTitleCaseEmpty(t *testing.T) {
	if got := SmartTitleCase(""); got != nil {
		t.Errorf("expected nil for empty input, got %q", *got)
	}
	if got := SmartTitleCase("   "); got != nil {
		t.Errorf("expected nil for whitespace input, got %q", *got)
	}
}

func TestFormatPublicNamesEpithetSurname(t *testing.T) {
	// A parenthetical-only surname is an epithet that drifted columns;
	// fold it back into the given name.
	_, given, sur := FormatPublicNames("", "hendrik", "(de jonge)")
	if sur != nil {
		t.Errorf("expected nil surname, got %q", *sur)
	}
	if given == nil || *given != "Hendrik (de Jonge)" {
		t.Errorf("given = %q, want %q", strOf(given), "Hendrik (de Jonge)")
	}
}

func TestFormatPublicNamesPassThrough(t *testing.T) {
	display, given, sur := FormatPublicNames("JAN JANSEN", "JAN", "JANSEN")
	if display == nil || *display != "Jan Jansen" {
		t.Errorf("display = %q", strOf(display))
	}
	if given == nil || *given != "Jan" {
		t.Errorf("given = %q", strOf(given))
	}
	if sur == nil || *sur != "Jansen" {
		t.Errorf("surname = %q", strOf(sur))
	}
}
