package kb

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mattsse/chromiumoxide/cdp/input"
)

func TestEncodePrintable(t *testing.T) {
	events := Encode('a')
	if len(events) != 3 {
		t.Fatalf("events = %d, want keyDown,char,keyUp", len(events))
	}
	want := []*input.DispatchKeyEventParams{
		{
			Type:                  input.KeyDown,
			Key:                   "a",
			Code:                  "KeyA",
			Text:                  "a",
			UnmodifiedText:        "a",
			NativeVirtualKeyCode:  65,
			WindowsVirtualKeyCode: 65,
		},
		{
			Type:                  input.KeyChar,
			Key:                   "a",
			Code:                  "KeyA",
			Text:                  "a",
			UnmodifiedText:        "a",
			NativeVirtualKeyCode:  65,
			WindowsVirtualKeyCode: 65,
		},
		{
			Type:                  input.KeyUp,
			Key:                   "a",
			Code:                  "KeyA",
			NativeVirtualKeyCode:  65,
			WindowsVirtualKeyCode: 65,
		},
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("Encode('a') mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeShifted(t *testing.T) {
	events := Encode('A')
	if len(events) != 3 {
		t.Fatalf("events = %d", len(events))
	}
	for _, ev := range events {
		if ev.Modifiers&input.ModifierShift == 0 {
			t.Errorf("%s missing shift modifier", ev.Type)
		}
	}
	if events[0].Text != "A" || events[0].UnmodifiedText != "a" {
		t.Errorf("text = %q unmodified = %q", events[0].Text, events[0].UnmodifiedText)
	}
	if events[0].WindowsVirtualKeyCode != 65 {
		t.Errorf("vk = %d, want 65", events[0].WindowsVirtualKeyCode)
	}
}

func TestEncodeNonPrintable(t *testing.T) {
	events := Encode('\t')
	if len(events) != 2 {
		t.Fatalf("events = %d, want keyDown,keyUp only", len(events))
	}
	if events[0].Type != input.KeyDown || events[1].Type != input.KeyUp {
		t.Errorf("types = %s,%s", events[0].Type, events[1].Type)
	}
	if events[0].Text != "" {
		t.Errorf("non-printable key carries text %q", events[0].Text)
	}
}

func TestEncodeEnterCarriesText(t *testing.T) {
	events := Encode('\r')
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3 (Enter synthesises a char)", len(events))
	}
	if events[1].Text != "\r" {
		t.Errorf("char text = %q, want \\r", events[1].Text)
	}
}

func TestEncodeUnknownRune(t *testing.T) {
	events := Encode('•')
	if len(events) != 3 {
		t.Fatalf("events = %d", len(events))
	}
	if events[0].Text != "•" || events[0].Key != "•" {
		t.Errorf("fallback text = %q key = %q", events[0].Text, events[0].Key)
	}
}

func TestEncodeString(t *testing.T) {
	groups := EncodeString("ab")
	if len(groups) != 2 {
		t.Fatalf("groups = %d", len(groups))
	}
	if groups[0][0].Key != "a" || groups[1][0].Key != "b" {
		t.Errorf("keys = %q %q", groups[0][0].Key, groups[1][0].Key)
	}
}

func TestEncodeNamed(t *testing.T) {
	events := EncodeNamed("ArrowDown")
	if len(events) != 2 {
		t.Fatalf("events = %d", len(events))
	}
	if events[0].WindowsVirtualKeyCode != 40 {
		t.Errorf("vk = %d, want 40", events[0].WindowsVirtualKeyCode)
	}

	if EncodeNamed("NotAKey") != nil {
		t.Error("unknown key name produced events")
	}

	// Single-rune names press that character.
	events = EncodeNamed("x")
	if len(events) != 3 || events[0].Key != "x" {
		t.Errorf("single rune name events = %+v", events)
	}
}

func TestShiftPairsShareCode(t *testing.T) {
	for lower, upper := range map[rune]rune{'1': '!', ';': ':', '=': '+', '/': '?'} {
		l, u := Keys[lower], Keys[upper]
		if l.Code != u.Code {
			t.Errorf("%q/%q codes differ: %s %s", lower, upper, l.Code, u.Code)
		}
		if l.Windows != u.Windows {
			t.Errorf("%q/%q vk differ: %d %d", lower, upper, l.Windows, u.Windows)
		}
		if l.Shift || !u.Shift {
			t.Errorf("%q/%q shift flags wrong", lower, upper)
		}
	}
}
