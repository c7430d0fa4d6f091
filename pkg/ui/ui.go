// Package ui models the structured UI snapshot returned by the screen
// analyzer and implements matching of recorded target descriptors against
// live elements.
package ui

// ElementKind identifies the category of a detected UI element.
type ElementKind string

const (
	KindButton    ElementKind = "button"
	KindIcon      ElementKind = "icon"
	KindTextField ElementKind = "text_field"
	KindUnknown   ElementKind = "unknown"
)

// ParseKind maps a recorded type string to an ElementKind. Anything
// unrecognized (including the empty string) is KindUnknown, which widens
// matching to all categories rather than failing.
func ParseKind(s string) ElementKind {
	switch s {
	case "button":
		return KindButton
	case "icon":
		return KindIcon
	case "text_field", "textfield", "text":
		return KindTextField
	default:
		return KindUnknown
	}
}

// Point is a screen position in pixel coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Button is a detected clickable element with a visible label.
type Button struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Icon is a detected iconographic element without a text label.
type Icon struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// TextField is a detected region of readable text.
type TextField struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Content    string  `json:"content"`
	Confidence float64 `json:"confidence"`
}

// Snapshot source tags reported by the analyzer.
const (
	SourceVisionLLM   = "vision_llm"
	SourceOCRFallback = "ocr_fallback"
	SourceFailed      = "failed"
)

// Snapshot is the full set of elements detected on one screen frame.
type Snapshot struct {
	Buttons    []Button    `json:"buttons"`
	Icons      []Icon      `json:"icons"`
	TextFields []TextField `json:"text_fields"`
	Source     string      `json:"source,omitempty"`
	Err        string      `json:"error,omitempty"`
}

// Empty reports whether the snapshot contains no elements at all.
func (s Snapshot) Empty() bool {
	return len(s.Buttons) == 0 && len(s.Icons) == 0 && len(s.TextFields) == 0
}

// Target describes the element a recorded action was aimed at.
type Target struct {
	Kind        ElementKind `json:"type"`
	Text        string      `json:"text,omitempty"`
	Description string      `json:"description,omitempty"`
	Confidence  float64     `json:"confidence,omitempty"`
	BoundingBox []int       `json:"bounding_box,omitempty"`
}

// candidate is the kind-erased view the matcher scores over.
type candidate struct {
	kind  ElementKind
	point Point
	text  string
	conf  float64
}

// candidates flattens the snapshot into scan order. Order is fixed
// (buttons, icons, text fields) because ties break to the first candidate.
func (s Snapshot) candidates(kind ElementKind) []candidate {
	var out []candidate
	all := kind == KindUnknown
	if all || kind == KindButton {
		for _, b := range s.Buttons {
			out = append(out, candidate{KindButton, Point{b.X, b.Y}, b.Text, b.Confidence})
		}
	}
	if all || kind == KindIcon {
		for _, ic := range s.Icons {
			out = append(out, candidate{KindIcon, Point{ic.X, ic.Y}, ic.Type, ic.Confidence})
		}
	}
	if all || kind == KindTextField {
		for _, tf := range s.TextFields {
			out = append(out, candidate{KindTextField, Point{tf.X, tf.Y}, tf.Content, tf.Confidence})
		}
	}
	return out
}
