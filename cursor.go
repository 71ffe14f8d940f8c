package facepose

// Cursor is the keypoint index selected by the user. The upper bound depends on the
// face currently on screen, so it is applied lazily when the index is read.
type Cursor struct {
	idx int
}

// Prev moves the cursor to the previous keypoint. It never goes below zero.
func (c *Cursor) Prev() {
	c.idx--
	if c.idx < 0 {
		c.idx = 0
	}
}

// Next moves the cursor to the next keypoint.
func (c *Cursor) Next() {
	c.idx++
}

// Index clamps the cursor to count-1 and returns it.
// It returns false when there is no keypoint to select.
func (c *Cursor) Index(count int) (int, bool) {
	if count <= 0 {
		return 0, false
	}
	if c.idx >= count {
		c.idx = count - 1
	}
	return c.idx, true
}
