package notification

import (
	"log"
	"sync"

	"github.com/gen2brain/beeep"
)

const maxMessageLen = 200

// notify is swapped in tests.
var notify = func(title, message string) error {
	return beeep.Notify(title, message, "")
}

var mu sync.Mutex

// Show displays a desktop notification in the background. Failures are only logged.
func Show(title, message string) {
	message = truncate(message)
	go func() {
		mu.Lock()
		defer mu.Unlock()
		if err := notify(title, message); err != nil {
			log.Printf("Failed to show notification: %v", err)
		}
	}()
}

// ShowBlocking displays a desktop notification and returns once it was handed to the OS.
func ShowBlocking(title, message string) error {
	mu.Lock()
	defer mu.Unlock()
	return notify(title, truncate(message))
}

// Beep plays a short confirmation tone in the background.
func Beep() {
	go func() {
		if err := beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration/2); err != nil {
			log.Printf("Failed to beep: %v", err)
		}
	}()
}

func truncate(text string) string {
	r := []rune(text)
	if len(r) > maxMessageLen {
		return string(r[:maxMessageLen]) + "..."
	}
	return text
}
