package overlay

// Rect is a frame in screen points, origin top-left.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Label is a text sub-element of a widget.
type Label struct {
	Frame Rect   `json:"frame"`
	Text  string `json:"text"`
}
