package contents

import "bytes"

// Insert inserts data at pos. Positions past the end are clamped.
//
// Insert is reserved for the edit engine; commands build transactions
// instead of mutating contents directly.
func (c *Contents) Insert(pos uint64, data []byte) {
	if len(data) == 0 {
		return
	}
	c.generation++
	pos = c.clamp(pos)

	if len(c.buckets) == 0 {
		c.buckets = c.split(data)
		c.reindex(0)
		return
	}

	i, off := c.find(pos)

	// Prefer appending to the previous bucket at a boundary.
	if off == 0 && i > 0 && len(c.buckets[i-1].data)+len(data) <= c.bucketSize {
		i--
		off = len(c.buckets[i].data)
	}

	b := &c.buckets[i]
	n := len(b.data)
	if n+len(data) <= c.bucketSize {
		b.data = b.data[:n+len(data)]
		copy(b.data[off+len(data):], b.data[off:n])
		copy(b.data[off:], data)
		b.newlines += bytes.Count(data, []byte{'\n'})
		c.reindex(i)
		return
	}

	combined := make([]byte, 0, n+len(data))
	combined = append(combined, b.data[:off]...)
	combined = append(combined, data...)
	combined = append(combined, b.data[off:]...)
	c.replaceBuckets(i, i+1, c.split(combined))
	c.reindex(i)
}

// Remove deletes n bytes starting at pos. The range is clamped to the
// contents.
func (c *Contents) Remove(pos uint64, n uint64) {
	pos = c.clamp(pos)
	if n > c.length-pos {
		n = c.length - pos
	}
	if n == 0 {
		return
	}
	c.generation++

	first, off := c.find(pos)
	if off == len(c.buckets[first].data) {
		first++
		off = 0
	}

	i := first
	remaining := n
	for remaining > 0 && i < len(c.buckets) {
		b := &c.buckets[i]
		take := uint64(len(b.data) - off)
		if take > remaining {
			take = remaining
		}
		end := off + int(take)
		b.newlines -= bytes.Count(b.data[off:end], []byte{'\n'})
		b.data = append(b.data[:off], b.data[end:]...)
		remaining -= take
		off = 0
		i++
	}

	// Drop emptied buckets.
	kept := c.buckets[:first]
	for j := first; j < len(c.buckets); j++ {
		if len(c.buckets[j].data) > 0 {
			kept = append(kept, c.buckets[j])
		}
	}
	for j := len(kept); j < len(c.buckets); j++ {
		c.buckets[j] = bucket{}
	}
	c.buckets = kept

	from := first
	if from > 0 {
		from--
	}
	c.merge(from)
	c.reindex(from)
}

// merge joins bucket i with its successor when both fit in one bucket.
func (c *Contents) merge(i int) {
	if i+1 >= len(c.buckets) {
		return
	}
	a, b := &c.buckets[i], c.buckets[i+1]
	if len(a.data)+len(b.data) > c.bucketSize {
		return
	}
	a.data = append(a.data, b.data...)
	a.newlines += b.newlines
	c.replaceBuckets(i+1, i+2, nil)
}

// replaceBuckets replaces buckets[from:to] with repl.
func (c *Contents) replaceBuckets(from, to int, repl []bucket) {
	tail := len(c.buckets) - to
	delta := len(repl) - (to - from)
	if delta > 0 {
		c.buckets = append(c.buckets, make([]bucket, delta)...)
	}
	copy(c.buckets[from+len(repl):], c.buckets[to:to+tail])
	copy(c.buckets[from:], repl)
	if delta < 0 {
		end := len(c.buckets) + delta
		for j := end; j < len(c.buckets); j++ {
			c.buckets[j] = bucket{}
		}
		c.buckets = c.buckets[:end]
	}
}
