package changepoint

// Cursor walks a private copy of the candidate list forward only. The
// reconcile stage mutates the candidate under the cursor in place, so a
// cursor cannot be rewound; build a new one from the original candidates to
// start over.
type Cursor struct {
	items []Candidate
	pos   int
}

// NewCursor copies candidates into a new cursor.
func NewCursor(candidates []Candidate) *Cursor {
	items := make([]Candidate, len(candidates))
	copy(items, candidates)
	return &Cursor{items: items}
}

// Peek returns the current candidate. The pointer stays valid until the
// cursor is dropped; writes through it are visible to later Peek calls.
func (c *Cursor) Peek() (*Candidate, bool) {
	if c.pos >= len(c.items) {
		return nil, false
	}
	return &c.items[c.pos], true
}

// Advance moves past the current candidate. It is a no-op once consumed.
func (c *Cursor) Advance() {
	if c.pos < len(c.items) {
		c.pos++
	}
}

// Position returns how many candidates have been passed.
func (c *Cursor) Position() int { return c.pos }

// Remaining returns the number of candidates not yet passed.
func (c *Cursor) Remaining() int { return len(c.items) - c.pos }

// Len returns the total number of candidates.
func (c *Cursor) Len() int { return len(c.items) }

// Consumed reports whether every candidate has been passed.
func (c *Cursor) Consumed() bool { return c.pos >= len(c.items) }

// Candidates returns a snapshot of all candidates including any in-place edits.
func (c *Cursor) Candidates() []Candidate {
	out := make([]Candidate, len(c.items))
	copy(out, c.items)
	return out
}
