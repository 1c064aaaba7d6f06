package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		done, total, width int
		want               string
	}{
		{0, 0, 10, "░░░░░░░░░░   0%"},
		{5, 10, 10, "█████░░░░░  50%"},
		{3, 3, 5, "█████ 100%"},
		{1, 2, 1, "██░░░  50%"},
	}
	for _, tt := range tests {
		if got := ProgressBar(tt.done, tt.total, tt.width); got != tt.want {
			t.Errorf("ProgressBar(%d, %d, %d): got %q, want %q", tt.done, tt.total, tt.width, got, tt.want)
		}
	}
}

func TestByName_FallsBackToClassic(t *testing.T) {
	if got := ByName("sepia").Name; got != "classic" {
		t.Errorf("got %q", got)
	}
	if got := ByName("NEON").Name; got != "neon" {
		t.Errorf("got %q", got)
	}
}

func TestMonoPanelAndMessages(t *testing.T) {
	prev := current
	t.Cleanup(func() { current = prev })
	SetTheme("mono")

	out := PanelString([]string{"Tasks", "one"})
	if !strings.Contains(out, "Tasks") || !strings.Contains(out, "┌") {
		t.Errorf("panel: %q", out)
	}

	var so, se bytes.Buffer
	prevOut, prevErr := Stdout, Stderr
	Stdout, Stderr = &so, &se
	t.Cleanup(func() { Stdout, Stderr = prevOut, prevErr })
	OK("added")
	Fail("boom")
	if so.String() != "x added\n" {
		t.Errorf("OK: got %q", so.String())
	}
	if se.String() != "✖ boom\n" {
		t.Errorf("Fail: got %q", se.String())
	}
}
