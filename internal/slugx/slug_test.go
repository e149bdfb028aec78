package slugx

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Spring Launch", "spring-launch"},
		{"  Spring   Launch  ", "spring-launch"},
		{"SPRING LAUNCH!", "spring-launch"},
		{"spring_launch", "spring-launch"},
		{"Q2 / 2026 — Plan", "q2-2026-plan"},
		{"Alpha", "alpha"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Make(tt.in); got != tt.want {
			t.Errorf("Make(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMake_CaseAndPunctuationInsensitive(t *testing.T) {
	variants := []string{"Spring Launch", "spring launch", "  SPRING-launch ", "Spring_Launch"}
	want := Make(variants[0])
	for _, v := range variants[1:] {
		if Make(v) != want {
			t.Errorf("Make(%q) = %q, want same slug as %q (%q)", v, Make(v), variants[0], want)
		}
	}
}
