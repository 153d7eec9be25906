package hotkey

import (
	"testing"

	gohook "github.com/robotn/gohook"
)

func mustKeys(t *testing.T) *Keys {
	t.Helper()
	k, err := NewKeys("RAlt", "F9", "Esc")
	if err != nil {
		t.Fatalf("NewKeys failed: %v", err)
	}
	return k
}

func TestKeyNameToRawcodes(t *testing.T) {
	tests := []struct {
		keyName  string
		expected []uint16
	}{
		{"ctrl", []uint16{162, 163}},
		{"alt", []uint16{164, 165}},
		{"ralt", []uint16{165}},
		{"shift", []uint16{160, 161}},
		{"cmd", []uint16{91, 92}},
		{"q", []uint16{81}},
		{"a", []uint16{65}},
		{"z", []uint16{90}},
		{"0", []uint16{48}},
		{"9", []uint16{57}},
		{"f1", []uint16{112}},
		{"f9", []uint16{120}},
		{"f24", []uint16{135}},
		{"esc", []uint16{27}},
		{"space", []uint16{32}},
		{"f25", nil},
		{"unknown", nil},
	}

	for _, tt := range tests {
		t.Run(tt.keyName, func(t *testing.T) {
			result := keyNameToRawcodes(tt.keyName)
			if len(result) != len(tt.expected) {
				t.Fatalf("keyNameToRawcodes(%q) returned %v, expected %v", tt.keyName, result, tt.expected)
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("keyNameToRawcodes(%q)[%d] = %d, expected %d", tt.keyName, i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestParseHotkey(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"RAlt", []string{"ralt"}},
		{"AltGr", []string{"ralt"}},
		{"F9", []string{"f9"}},
		{"Ctrl+Alt+Q", []string{"ctrl", "alt", "q"}},
		{"Win+Shift+S", []string{"cmd", "shift", "s"}},
		{"Control + L", []string{"ctrl", "l"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseHotkey(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("parseHotkey(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("parseHotkey(%q)[%d] = %q, expected %q", tt.input, i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestNewKeysRejectsUnknownKey(t *testing.T) {
	if _, err := NewKeys("Hyper", "F9", "Esc"); err == nil {
		t.Fatal("expected an error for an unmappable key")
	}
	if _, err := NewKeys("RAlt", "", "Esc"); err == nil {
		t.Fatal("expected an error for an empty hotkey")
	}
}

func TestRepeatedKeyDownCountsOnePress(t *testing.T) {
	k := mustKeys(t)

	k.Down(165)
	k.Down(165) // auto-repeat
	k.Up(165)
	k.Down(165)

	if got := k.Presses(ToggleTracking); got != 2 {
		t.Fatalf("Presses = %d, expected 2", got)
	}
	if got := k.Presses(ToggleTracking); got != 0 {
		t.Fatalf("Presses after drain = %d, expected 0", got)
	}
	if !k.IsDown(ToggleTracking) {
		t.Fatal("expected toggle key to be held")
	}
}

func TestKeysTrackedIndependently(t *testing.T) {
	k := mustKeys(t)

	k.Down(120) // F9
	k.Down(27)  // Esc
	k.Up(120)
	k.Down(120)
	k.Up(27)

	if got := k.Presses(StartSelection); got != 2 {
		t.Errorf("StartSelection presses = %d, expected 2", got)
	}
	if got := k.Presses(Cancel); got != 1 {
		t.Errorf("Cancel presses = %d, expected 1", got)
	}
	if got := k.Presses(ToggleTracking); got != 0 {
		t.Errorf("ToggleTracking presses = %d, expected 0", got)
	}
	if k.IsDown(Cancel) || !k.IsDown(StartSelection) {
		t.Errorf("unexpected held state: cancel=%v select=%v", k.IsDown(Cancel), k.IsDown(StartSelection))
	}
}

func TestComboRequiresAllKeys(t *testing.T) {
	k, err := NewKeys("Ctrl+Shift+L", "F9", "Esc")
	if err != nil {
		t.Fatal(err)
	}

	k.Down(162)
	k.Down(76)
	if k.Presses(ToggleTracking) != 0 {
		t.Fatal("combo must not fire before all keys are down")
	}
	k.Down(161)
	if k.Presses(ToggleTracking) != 1 {
		t.Fatal("expected combo to fire once all keys are down")
	}
	k.Up(76)
	k.Down(76)
	if k.Presses(ToggleTracking) != 1 {
		t.Fatal("expected re-pressing the last key to fire again")
	}
}

func TestDispatch(t *testing.T) {
	k := mustKeys(t)

	Dispatch(k, gohook.Event{Kind: gohook.KeyHold, Rawcode: 120})
	Dispatch(k, gohook.Event{Kind: gohook.KeyDown, Rawcode: 120})
	Dispatch(k, gohook.Event{Kind: gohook.MouseMove, Rawcode: 120})
	Dispatch(k, gohook.Event{Kind: gohook.KeyUp, Rawcode: 120})

	if got := k.Presses(StartSelection); got != 1 {
		t.Fatalf("Presses = %d, expected 1", got)
	}
	if k.IsDown(StartSelection) {
		t.Fatal("expected key released")
	}
}
