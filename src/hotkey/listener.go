package hotkey

import (
	"log"

	gohook "github.com/robotn/gohook"
)

// Listen starts the system-wide keyboard hook and feeds key events into
// keys from its own goroutine. The returned function stops the hook.
func Listen(keys *Keys) (stop func()) {
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in hotkey goroutine: %v", r)
			}
		}()

		log.Printf("hotkey: starting gohook event loop (toggle=%s select=%s cancel=%s)",
			keys.Combo(ToggleTracking), keys.Combo(StartSelection), keys.Combo(Cancel))
		evChan := gohook.Start()
		if evChan == nil {
			log.Printf("ERROR: gohook.Start() returned nil channel")
			return
		}

		for ev := range evChan {
			Dispatch(keys, ev)
		}
		log.Printf("hotkey: event channel closed")
	}()

	return func() {
		gohook.End()
		<-done
	}
}

// Dispatch routes one hook event into keys. Auto-repeat arrives as further
// KeyHold/KeyDown events and is absorbed by the edge detection in Keys.
func Dispatch(keys *Keys, ev gohook.Event) {
	switch ev.Kind {
	case gohook.KeyDown, gohook.KeyHold:
		keys.Down(ev.Rawcode)
	case gohook.KeyUp:
		keys.Up(ev.Rawcode)
	}
}
