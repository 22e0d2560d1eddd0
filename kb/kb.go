// Package kb provides the key definitions used to synthesise keyboard events
// for a US layout: DOM code, DOM key, text, and the legacy virtual key codes
// expected by Input.dispatchKeyEvent.
package kb

import (
	"github.com/mattsse/chromiumoxide/cdp/input"
)

// Key describes a single physical key and the values a trusted key event for
// it carries.
type Key struct {
	// Code is the key code ("KeyA", "Enter", ...).
	Code string

	// Key is the key value ("a", "Enter", ...).
	Key string

	// Text is the text for printable keys.
	Text string

	// Unmodified is the unmodified text for printable keys.
	Unmodified string

	// Native is the native scan code.
	Native int64

	// Windows is the windows virtual key code.
	Windows int64

	// Shift indicates whether the Shift modifier must be active.
	Shift bool

	// Print indicates whether the key produces a character.
	Print bool
}

// Encode synthesises the key events a trusted key press of r generates:
// keyDown, char (printable keys only), keyUp.
func Encode(r rune) []*input.DispatchKeyEventParams {
	k, ok := Keys[r]
	if !ok {
		// Not in the table; emit the bare character events so the rune
		// still reaches the page.
		k = &Key{Key: string(r), Text: string(r), Unmodified: string(r), Print: true}
	}

	var mod input.Modifier
	if k.Shift {
		mod = input.ModifierShift
	}

	keyDown := input.DispatchKeyEventParams{
		Type:                  input.KeyDown,
		Modifiers:             mod,
		Key:                   k.Key,
		Code:                  k.Code,
		NativeVirtualKeyCode:  k.Native,
		WindowsVirtualKeyCode: k.Windows,
	}
	keyUp := keyDown
	keyUp.Type = input.KeyUp
	if !k.Print {
		return []*input.DispatchKeyEventParams{&keyDown, &keyUp}
	}

	keyDown.Text = k.Text
	keyDown.UnmodifiedText = k.Unmodified
	keyChar := keyDown
	keyChar.Type = input.KeyChar
	return []*input.DispatchKeyEventParams{&keyDown, &keyChar, &keyUp}
}

// EncodeString synthesises the key event groups for every rune in s, one
// group per rune, in order.
func EncodeString(s string) [][]*input.DispatchKeyEventParams {
	groups := make([][]*input.DispatchKeyEventParams, 0, len(s))
	for _, r := range s {
		groups = append(groups, Encode(r))
	}
	return groups
}

// Keys is the rune to key definition map for a US keyboard layout.
var Keys = map[rune]*Key{
	'\b':   {"Backspace", "Backspace", "", "", 8, 8, false, false},
	'\t':   {"Tab", "Tab", "", "", 9, 9, false, false},
	'\r':   {"Enter", "Enter", "\r", "\r", 13, 13, false, true},
	'\x1b': {"Escape", "Escape", "", "", 27, 27, false, false},
	'\x7f': {"Delete", "Delete", "", "", 46, 46, false, false},
	' ':    {"Space", " ", " ", " ", 32, 32, false, true},
	'!':    {"Digit1", "!", "!", "1", 49, 49, true, true},
	'"':    {"Quote", "\"", "\"", "'", 222, 222, true, true},
	'#':    {"Digit3", "#", "#", "3", 51, 51, true, true},
	'$':    {"Digit4", "$", "$", "4", 52, 52, true, true},
	'%':    {"Digit5", "%", "%", "5", 53, 53, true, true},
	'&':    {"Digit7", "&", "&", "7", 55, 55, true, true},
	'\'':   {"Quote", "'", "'", "'", 222, 222, false, true},
	'(':    {"Digit9", "(", "(", "9", 57, 57, true, true},
	')':    {"Digit0", ")", ")", "0", 48, 48, true, true},
	'*':    {"Digit8", "*", "*", "8", 56, 56, true, true},
	'+':    {"Equal", "+", "+", "=", 187, 187, true, true},
	',':    {"Comma", ",", ",", ",", 188, 188, false, true},
	'-':    {"Minus", "-", "-", "-", 189, 189, false, true},
	'.':    {"Period", ".", ".", ".", 190, 190, false, true},
	'/':    {"Slash", "/", "/", "/", 191, 191, false, true},
	'0':    {"Digit0", "0", "0", "0", 48, 48, false, true},
	'1':    {"Digit1", "1", "1", "1", 49, 49, false, true},
	'2':    {"Digit2", "2", "2", "2", 50, 50, false, true},
	'3':    {"Digit3", "3", "3", "3", 51, 51, false, true},
	'4':    {"Digit4", "4", "4", "4", 52, 52, false, true},
	'5':    {"Digit5", "5", "5", "5", 53, 53, false, true},
	'6':    {"Digit6", "6", "6", "6", 54, 54, false, true},
	'7':    {"Digit7", "7", "7", "7", 55, 55, false, true},
	'8':    {"Digit8", "8", "8", "8", 56, 56, false, true},
	'9':    {"Digit9", "9", "9", "9", 57, 57, false, true},
	':':    {"Semicolon", ":", ":", ";", 186, 186, true, true},
	';':    {"Semicolon", ";", ";", ";", 186, 186, false, true},
	'<':    {"Comma", "<", "<", ",", 188, 188, true, true},
	'=':    {"Equal", "=", "=", "=", 187, 187, false, true},
	'>':    {"Period", ">", ">", ".", 190, 190, true, true},
	'?':    {"Slash", "?", "?", "/", 191, 191, true, true},
	'@':    {"Digit2", "@", "@", "2", 50, 50, true, true},
	'A':    {"KeyA", "A", "A", "a", 65, 65, true, true},
	'B':    {"KeyB", "B", "B", "b", 66, 66, true, true},
	'C':    {"KeyC", "C", "C", "c", 67, 67, true, true},
	'D':    {"KeyD", "D", "D", "d", 68, 68, true, true},
	'E':    {"KeyE", "E", "E", "e", 69, 69, true, true},
	'F':    {"KeyF", "F", "F", "f", 70, 70, true, true},
	'G':    {"KeyG", "G", "G", "g", 71, 71, true, true},
	'H':    {"KeyH", "H", "H", "h", 72, 72, true, true},
	'I':    {"KeyI", "I", "I", "i", 73, 73, true, true},
	'J':    {"KeyJ", "J", "J", "j", 74, 74, true, true},
	'K':    {"KeyK", "K", "K", "k", 75, 75, true, true},
	'L':    {"KeyL", "L", "L", "l", 76, 76, true, true},
	'M':    {"KeyM", "M", "M", "m", 77, 77, true, true},
	'N':    {"KeyN", "N", "N", "n", 78, 78, true, true},
	'O':    {"KeyO", "O", "O", "o", 79, 79, true, true},
	'P':    {"KeyP", "P", "P", "p", 80, 80, true, true},
	'Q':    {"KeyQ", "Q", "Q", "q", 81, 81, true, true},
	'R':    {"KeyR", "R", "R", "r", 82, 82, true, true},
	'S':    {"KeyS", "S", "S", "s", 83, 83, true, true},
	'T':    {"KeyT", "T", "T", "t", 84, 84, true, true},
	'U':    {"KeyU", "U", "U", "u", 85, 85, true, true},
	'V':    {"KeyV", "V", "V", "v", 86, 86, true, true},
	'W':    {"KeyW", "W", "W", "w", 87, 87, true, true},
	'X':    {"KeyX", "X", "X", "x", 88, 88, true, true},
	'Y':    {"KeyY", "Y", "Y", "y", 89, 89, true, true},
	'Z':    {"KeyZ", "Z", "Z", "z", 90, 90, true, true},
	'[':    {"BracketLeft", "[", "[", "[", 219, 219, false, true},
	'\\':   {"Backslash", "\\", "\\", "\\", 220, 220, false, true},
	']':    {"BracketRight", "]", "]", "]", 221, 221, false, true},
	'^':    {"Digit6", "^", "^", "6", 54, 54, true, true},
	'_':    {"Minus", "_", "_", "-", 189, 189, true, true},
	'`':    {"Backquote", "`", "`", "`", 192, 192, false, true},
	'a':    {"KeyA", "a", "a", "a", 65, 65, false, true},
	'b':    {"KeyB", "b", "b", "b", 66, 66, false, true},
	'c':    {"KeyC", "c", "c", "c", 67, 67, false, true},
	'd':    {"KeyD", "d", "d", "d", 68, 68, false, true},
	'e':    {"KeyE", "e", "e", "e", 69, 69, false, true},
	'f':    {"KeyF", "f", "f", "f", 70, 70, false, true},
	'g':    {"KeyG", "g", "g", "g", 71, 71, false, true},
	'h':    {"KeyH", "h", "h", "h", 72, 72, false, true},
	'i':    {"KeyI", "i", "i", "i", 73, 73, false, true},
	'j':    {"KeyJ", "j", "j", "j", 74, 74, false, true},
	'k':    {"KeyK", "k", "k", "k", 75, 75, false, true},
	'l':    {"KeyL", "l", "l", "l", 76, 76, false, true},
	'm':    {"KeyM", "m", "m", "m", 77, 77, false, true},
	'n':    {"KeyN", "n", "n", "n", 78, 78, false, true},
	'o':    {"KeyO", "o", "o", "o", 79, 79, false, true},
	'p':    {"KeyP", "p", "p", "p", 80, 80, false, true},
	'q':    {"KeyQ", "q", "q", "q", 81, 81, false, true},
	'r':    {"KeyR", "r", "r", "r", 82, 82, false, true},
	's':    {"KeyS", "s", "s", "s", 83, 83, false, true},
	't':    {"KeyT", "t", "t", "t", 84, 84, false, true},
	'u':    {"KeyU", "u", "u", "u", 85, 85, false, true},
	'v':    {"KeyV", "v", "v", "v", 86, 86, false, true},
	'w':    {"KeyW", "w", "w", "w", 87, 87, false, true},
	'x':    {"KeyX", "x", "x", "x", 88, 88, false, true},
	'y':    {"KeyY", "y", "y", "y", 89, 89, false, true},
	'z':    {"KeyZ", "z", "z", "z", 90, 90, false, true},
	'{':    {"BracketLeft", "{", "{", "[", 219, 219, true, true},
	'|':    {"Backslash", "|", "|", "\\", 220, 220, true, true},
	'}':    {"BracketRight", "}", "}", "]", 221, 221, true, true},
	'~':    {"Backquote", "~", "~", "`", 192, 192, true, true},
}

// Named keys addressable by Page.PressKey and Element.PressKey. Most are
// non-printable; Enter also carries text.
var Named = map[string]*Key{
	"Enter":      {"Enter", "Enter", "\r", "\r", 13, 13, false, true},
	"Tab":        {"Tab", "Tab", "", "", 9, 9, false, false},
	"Backspace":  {"Backspace", "Backspace", "", "", 8, 8, false, false},
	"Escape":     {"Escape", "Escape", "", "", 27, 27, false, false},
	"Delete":     {"Delete", "Delete", "", "", 46, 46, false, false},
	"ArrowLeft":  {"ArrowLeft", "ArrowLeft", "", "", 37, 37, false, false},
	"ArrowUp":    {"ArrowUp", "ArrowUp", "", "", 38, 38, false, false},
	"ArrowRight": {"ArrowRight", "ArrowRight", "", "", 39, 39, false, false},
	"ArrowDown":  {"ArrowDown", "ArrowDown", "", "", 40, 40, false, false},
	"Home":       {"Home", "Home", "", "", 36, 36, false, false},
	"End":        {"End", "End", "", "", 35, 35, false, false},
	"PageUp":     {"PageUp", "PageUp", "", "", 33, 33, false, false},
	"PageDown":   {"PageDown", "PageDown", "", "", 34, 34, false, false},
}

// EncodeNamed synthesises the key events for a named key like "Enter" or
// "ArrowDown". It returns nil when the name is unknown.
func EncodeNamed(name string) []*input.DispatchKeyEventParams {
	k, ok := Named[name]
	if !ok {
		if len([]rune(name)) == 1 {
			return Encode([]rune(name)[0])
		}
		return nil
	}
	keyDown := input.DispatchKeyEventParams{
		Type:                  input.KeyDown,
		Key:                   k.Key,
		Code:                  k.Code,
		NativeVirtualKeyCode:  k.Native,
		WindowsVirtualKeyCode: k.Windows,
	}
	keyUp := keyDown
	keyUp.Type = input.KeyUp
	if !k.Print {
		return []*input.DispatchKeyEventParams{&keyDown, &keyUp}
	}
	keyDown.Text = k.Text
	keyDown.UnmodifiedText = k.Unmodified
	keyChar := keyDown
	keyChar.Type = input.KeyChar
	return []*input.DispatchKeyEventParams{&keyDown, &keyChar, &keyUp}
}
