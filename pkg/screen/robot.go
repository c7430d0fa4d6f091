package screen

import (
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"
)

// RobotCapturer captures the full primary screen via robotgo.
type RobotCapturer struct{}

// NewRobotCapturer creates a RobotCapturer.
func NewRobotCapturer() *RobotCapturer {
	return &RobotCapturer{}
}

// Capture grabs the current screen contents.
func (c *RobotCapturer) Capture() (image.Image, error) {
	img, err := robotgo.CaptureImg()
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	return img, nil
}

// RobotWindowLocator resolves window titles to screen offsets via robotgo.
type RobotWindowLocator struct{}

// NewRobotWindowLocator creates a RobotWindowLocator.
func NewRobotWindowLocator() *RobotWindowLocator {
	return &RobotWindowLocator{}
}

// Offset returns the top-left screen position of the first window whose
// title matches, or (0, 0) when no such window exists.
func (l *RobotWindowLocator) Offset(title string) (int, int) {
	if title == "" {
		return 0, 0
	}
	ids, err := robotgo.FindIds(title)
	if err != nil || len(ids) == 0 {
		return 0, 0
	}
	x, y, _, _ := robotgo.GetBounds(ids[0])
	return x, y
}
