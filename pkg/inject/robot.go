package inject

import (
	"fmt"

	"github.com/go-vgo/robotgo"
)

// RobotInjector drives the desktop via robotgo.
type RobotInjector struct{}

// NewRobotInjector creates a RobotInjector.
func NewRobotInjector() *RobotInjector {
	return &RobotInjector{}
}

// Click moves the cursor and clicks the given button ("left" when empty).
func (r *RobotInjector) Click(x, y int, button string) error {
	if button == "" {
		button = "left"
	}
	robotgo.Move(x, y)
	robotgo.Click(button)
	return nil
}

// Press taps a single key by name (e.g. "enter", "esc", "a").
func (r *RobotInjector) Press(key string) error {
	if key == "" {
		return fmt.Errorf("press: empty key")
	}
	return robotgo.KeyTap(key)
}

// Write types a string of text.
func (r *RobotInjector) Write(text string) error {
	robotgo.TypeStr(text)
	return nil
}

// Scroll moves the cursor to (x, y) and scrolls vertically by amount
// (negative scrolls down).
func (r *RobotInjector) Scroll(amount, x, y int) error {
	robotgo.Move(x, y)
	robotgo.Scroll(0, amount)
	return nil
}
