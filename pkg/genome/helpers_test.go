package genome

// scriptSource replays values in order and then repeats the last one.
type scriptSource struct {
	values []uint32
	calls  int
}

func (s *scriptSource) Uint32() uint32 {
	if len(s.values) == 0 {
		s.calls++
		return 0
	}
	i := min(s.calls, len(s.values)-1)
	s.calls++
	return s.values[i]
}

// counterSource returns 0, 1, 2, ... with the upper bits set to expose
// missing masks.
type counterSource struct{ n uint32 }

func (c *counterSource) Uint32() uint32 {
	v := 0xA5A50000 | c.n
	c.n++
	return v
}
