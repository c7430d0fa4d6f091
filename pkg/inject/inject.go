// Package inject abstracts low-level input injection. The replayer talks to
// the Injector interface; the robotgo implementation drives the real desktop.
package inject

// Injector executes input events at absolute screen coordinates.
type Injector interface {
	Click(x, y int, button string) error
	Press(key string) error
	Write(text string) error
	Scroll(amount, x, y int) error
}
