package handlers

import (
	"strings"
	"testing"
)

func TestSanitizeLogInput(t *testing.T) {
	if got := sanitizeLogInput("hello\nworld\r"); got != "helloworld" {
		t.Errorf("expected %q, got %q", "helloworld", got)
	}
}

func TestParsePage(t *testing.T) {
	cases := map[string]int{
		"":    1,
		"abc": 1,
		"0":   1,
		"-3":  1,
		"1":   1,
		"7":   7,
	}
	for in, want := range cases {
		if got := parsePage(in); got != want {
			t.Errorf("parsePage(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestValidateUsername_Valid(t *testing.T) {
	cases := []string{"admin", "jón.jónsson", strings.Repeat("a", 64)}
	for _, c := range cases {
		if !validateUsername(c) {
			t.Errorf("expected %q to be valid", c)
		}
	}
}

func TestValidateUsername_Invalid(t *testing.T) {
	cases := []string{"", "ad\nmin", strings.Repeat("a", 65)}
	for _, c := range cases {
		if validateUsername(c) {
			t.Errorf("expected %q to be invalid", c)
		}
	}
}
