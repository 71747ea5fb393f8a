package render

// DefaultScrollThreshold is the distance from the top of the viewport, in
// pixels, at which a heading becomes the active table of contents entry.
const DefaultScrollThreshold = 100

// Box is the vertical extent of a heading relative to the top of the viewport.
type Box struct {
	ID     string
	Top    float64
	Bottom float64
}

// ActiveHeading returns the id of the last heading whose top is at or above
// threshold and whose bottom has not scrolled past the top of the viewport.
func ActiveHeading(boxes []Box, threshold float64) (string, bool) {
	active := ""
	found := false
	for _, box := range boxes {
		if box.Top <= threshold && box.Bottom >= 0 {
			active = box.ID
			found = true
		}
	}
	return active, found
}

// LineBoxes positions source headings in a text viewport scrolled to offset.
// Each heading occupies one line.
func LineBoxes(headings []SourceHeading, offset int) []Box {
	boxes := make([]Box, 0, len(headings))
	for _, h := range headings {
		top := float64(h.Line - offset)
		boxes = append(boxes, Box{ID: h.ID, Top: top, Bottom: top + 1})
	}
	return boxes
}
