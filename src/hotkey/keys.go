package hotkey

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync/atomic"
)

// Key is one of the logical hotkeys.
type Key int

const (
	ToggleTracking Key = iota
	StartSelection
	Cancel
	numKeys
)

func (k Key) String() string {
	switch k {
	case ToggleTracking:
		return "ToggleTracking"
	case StartSelection:
		return "StartSelection"
	case Cancel:
		return "Cancel"
	default:
		return "Key(" + strconv.Itoa(int(k)) + ")"
	}
}

// Keys holds the press/release state of the logical hotkeys. The listener
// goroutine calls Down and Up; the event loop drains press edges with
// Presses. The atomics are the only state shared between the two.
type Keys struct {
	bindings [numKeys]*binding
}

type binding struct {
	combo string
	parts []part

	down    atomic.Bool
	presses atomic.Uint32
}

// part is one physical key of a combination. Only the listener goroutine touches it.
type part struct {
	name     string
	rawcodes []uint16
	down     bool
}

// NewKeys builds key state for the three logical hotkeys from combo strings
// such as "RAlt", "F9" or "Ctrl+Shift+L".
func NewKeys(toggle, selection, cancel string) (*Keys, error) {
	k := &Keys{}
	for key, combo := range map[Key]string{ToggleTracking: toggle, StartSelection: selection, Cancel: cancel} {
		b, err := newBinding(combo)
		if err != nil {
			return nil, fmt.Errorf("%s hotkey: %w", key, err)
		}
		k.bindings[key] = b
	}
	return k, nil
}

func newBinding(combo string) (*binding, error) {
	names := parseHotkey(combo)
	b := &binding{combo: combo}
	for _, name := range names {
		codes := keyNameToRawcodes(name)
		if len(codes) == 0 {
			return nil, fmt.Errorf("cannot map key %q in %q", name, combo)
		}
		b.parts = append(b.parts, part{name: name, rawcodes: codes})
	}
	if len(b.parts) == 0 {
		return nil, fmt.Errorf("empty hotkey %q", combo)
	}
	return b, nil
}

// Combo returns the configured combination for key.
func (k *Keys) Combo(key Key) string { return k.bindings[key].combo }

// Down records a key-down (or auto-repeat) for rawcode. A logical key
// counts one press only on its released-to-pressed transition.
func (k *Keys) Down(rawcode uint16) {
	for key, b := range k.bindings {
		if !b.set(rawcode, true) {
			continue
		}
		if b.allDown() && !b.down.Swap(true) {
			b.presses.Add(1)
			log.Printf("hotkey: %s pressed (%s)", Key(key), b.combo)
		}
	}
}

// Up records a key-up for rawcode.
func (k *Keys) Up(rawcode uint16) {
	for key, b := range k.bindings {
		if !b.set(rawcode, false) {
			continue
		}
		if b.down.Swap(false) {
			log.Printf("hotkey: %s released", Key(key))
		}
	}
}

// Presses returns and clears the number of press edges seen for key since
// the previous call.
func (k *Keys) Presses(key Key) int {
	return int(k.bindings[key].presses.Swap(0))
}

// IsDown reports whether key is currently held.
func (k *Keys) IsDown(key Key) bool {
	return k.bindings[key].down.Load()
}

func (b *binding) set(rawcode uint16, down bool) bool {
	matched := false
	for i := range b.parts {
		for _, code := range b.parts[i].rawcodes {
			if code == rawcode {
				b.parts[i].down = down
				matched = true
				break
			}
		}
	}
	return matched
}

func (b *binding) allDown() bool {
	for _, p := range b.parts {
		if !p.down {
			return false
		}
	}
	return true
}

// parseHotkey converts a combination like "Ctrl+Alt+q" to normalized key names.
func parseHotkey(combo string) []string {
	var keys []string
	for _, p := range strings.Split(strings.ToLower(combo), "+") {
		p = strings.TrimSpace(p)
		switch p {
		case "":
			continue
		case "win", "cmd", "super":
			keys = append(keys, "cmd")
		case "control":
			keys = append(keys, "ctrl")
		case "altgr", "rightalt", "right_alt", "alt_r":
			keys = append(keys, "ralt")
		default:
			keys = append(keys, p)
		}
	}
	return keys
}

var specialRawcodes = map[string][]uint16{
	"ctrl":      {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"lctrl":     {162},
	"rctrl":     {163},
	"alt":       {164, 165}, // VK_LMENU, VK_RMENU
	"lalt":      {164},
	"ralt":      {165},
	"shift":     {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"lshift":    {160},
	"rshift":    {161},
	"cmd":       {91, 92}, // VK_LWIN, VK_RWIN
	"space":     {32},
	"enter":     {13},
	"return":    {13},
	"esc":       {27},
	"escape":    {27},
	"tab":       {9},
	"backspace": {8},
	"delete":    {46},
	"del":       {46},
	"insert":    {45},
	"ins":       {45},
	"home":      {36},
	"end":       {35},
	"pageup":    {33},
	"pgup":      {33},
	"pagedown":  {34},
	"pgdn":      {34},
	"left":      {37},
	"up":        {38},
	"right":     {39},
	"down":      {40},
	"pause":     {19},
	"scroll":    {145},
}

// keyNameToRawcodes maps a key name to Windows virtual key codes, which is
// what gohook reports as Rawcode there. Modifiers without a side match both.
func keyNameToRawcodes(name string) []uint16 {
	name = strings.ToLower(strings.TrimSpace(name))
	if codes, ok := specialRawcodes[name]; ok {
		return codes
	}
	if len(name) == 1 {
		c := name[0]
		switch {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16(c-'a') + 65}
		case c >= '0' && c <= '9':
			return []uint16{uint16(c-'0') + 48}
		}
	}
	if strings.HasPrefix(name, "f") {
		if n, err := strconv.Atoi(name[1:]); err == nil && n >= 1 && n <= 24 {
			return []uint16{uint16(111 + n)} // VK_F1 = 112
		}
	}
	log.Printf("WARNING: Unknown key name '%s', cannot map to rawcode", name)
	return nil
}
