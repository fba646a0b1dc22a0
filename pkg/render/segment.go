package render

import "bytes"

// part is either literal markup or a hole referencing a slot whose
// content is filled in at flush time.
type part struct {
	literal []byte
	slot    int // non-zero for holes
}

// segment is an ordered run of markup with holes. The walk writes into a
// segment through io.Writer; holes mark reserved output positions.
type segment struct {
	parts []part
	cur   bytes.Buffer
}

func newSegment() *segment {
	return &segment{}
}

// Write implements io.Writer.
func (s *segment) Write(p []byte) (int, error) {
	return s.cur.Write(p)
}

// WriteString implements io.StringWriter.
func (s *segment) WriteString(str string) (int, error) {
	return s.cur.WriteString(str)
}

// hole reserves the current write position for slot.
func (s *segment) hole(slot int) {
	s.seal()
	s.parts = append(s.parts, part{slot: slot})
}

// splice appends other's parts, preserving its holes.
func (s *segment) splice(other *segment) {
	other.seal()
	if len(other.parts) == 0 {
		return
	}
	s.seal()
	s.parts = append(s.parts, other.parts...)
}

// seal moves buffered literal bytes into a part.
func (s *segment) seal() {
	if s.cur.Len() == 0 {
		return
	}
	lit := make([]byte, s.cur.Len())
	copy(lit, s.cur.Bytes())
	s.parts = append(s.parts, part{literal: lit})
	s.cur.Reset()
}

// holes returns the slot ids referenced directly by this segment.
func (s *segment) holes() []int {
	s.seal()
	var ids []int
	for _, p := range s.parts {
		if p.slot != 0 {
			ids = append(ids, p.slot)
		}
	}
	return ids
}

// flat returns the markup of a segment without holes.
func (s *segment) flat() (string, bool) {
	s.seal()
	var buf bytes.Buffer
	for _, p := range s.parts {
		if p.slot != 0 {
			return "", false
		}
		buf.Write(p.literal)
	}
	return buf.String(), true
}
