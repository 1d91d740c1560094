package contents

import "github.com/rivo/uniseg"

// Iterator is a position in a Contents.
//
// An Iterator is a plain value: copying it forks the traversal. It is
// tied to the Contents generation it was created at and must not be used
// across a mutation; call Revalidate to re-resolve its absolute position.
type Iterator struct {
	contents   *Contents
	position   uint64
	bucket     int
	index      int
	generation uint64
}

// IteratorAt returns an iterator at pos, clamped to the contents.
func (c *Contents) IteratorAt(pos uint64) Iterator {
	it := Iterator{contents: c, generation: c.generation}
	if len(c.buckets) == 0 {
		return it
	}
	pos = c.clamp(pos)
	it.position = pos
	it.bucket, it.index = c.find(pos)
	return it
}

// Start returns an iterator at the beginning of the contents.
func (c *Contents) Start() Iterator {
	return c.IteratorAt(0)
}

// Contents returns the contents the iterator traverses.
func (it *Iterator) Contents() *Contents {
	return it.contents
}

// Position returns the absolute byte offset.
func (it *Iterator) Position() uint64 {
	return it.position
}

// AtBOB returns true at the beginning of the buffer.
func (it *Iterator) AtBOB() bool {
	return it.position == 0
}

// AtEOB returns true at the end of the buffer.
func (it *Iterator) AtEOB() bool {
	return it.position >= it.contents.length
}

// Valid returns false once the contents have been mutated since the
// iterator was created.
func (it *Iterator) Valid() bool {
	return it.generation == it.contents.generation
}

// Revalidate re-resolves the iterator's position against the current
// contents, clamping it to the new length.
func (it *Iterator) Revalidate() {
	*it = it.contents.IteratorAt(it.position)
}

// Get returns the byte under the iterator, or 0 at the end.
func (it *Iterator) Get() byte {
	if it.AtEOB() {
		return 0
	}
	return it.contents.buckets[it.bucket].data[it.index]
}

// Advance moves forward one byte. It is a no-op at the end.
func (it *Iterator) Advance() {
	if it.AtEOB() {
		return
	}
	it.position++
	it.index++
	if it.index >= len(it.contents.buckets[it.bucket].data) && it.bucket+1 < len(it.contents.buckets) {
		it.bucket++
		it.index = 0
	}
}

// Retreat moves back one byte. It is a no-op at the beginning.
func (it *Iterator) Retreat() {
	if it.AtBOB() {
		return
	}
	it.position--
	if it.index == 0 {
		it.bucket--
		it.index = len(it.contents.buckets[it.bucket].data) - 1
		return
	}
	it.index--
}

// AdvanceN moves forward n bytes, stopping at the end.
func (it *Iterator) AdvanceN(n uint64) {
	if remaining := it.contents.length - it.position; n > remaining {
		n = remaining
	}
	if n == 0 {
		return
	}
	it.position += n
	buckets := it.contents.buckets
	for {
		rest := uint64(len(buckets[it.bucket].data) - it.index)
		if n < rest || it.bucket+1 == len(buckets) {
			it.index += int(n)
			return
		}
		n -= rest
		it.bucket++
		it.index = 0
	}
}

// RetreatN moves back n bytes, stopping at the beginning.
func (it *Iterator) RetreatN(n uint64) {
	if n > it.position {
		n = it.position
	}
	if n == 0 {
		return
	}
	it.position -= n
	buckets := it.contents.buckets
	for uint64(it.index) < n {
		n -= uint64(it.index)
		it.bucket--
		it.index = len(buckets[it.bucket].data)
	}
	it.index -= int(n)
	if it.index == len(buckets[it.bucket].data) && it.bucket+1 < len(buckets) {
		it.bucket++
		it.index = 0
	}
}

// GoTo moves the iterator to pos, stepping when close and seeking
// otherwise.
func (it *Iterator) GoTo(pos uint64) {
	const nearby = 4096
	switch {
	case pos >= it.position && pos-it.position <= nearby:
		it.AdvanceN(pos - it.position)
	case pos < it.position && it.position-pos <= nearby:
		it.RetreatN(it.position - pos)
	default:
		*it = it.contents.IteratorAt(pos)
	}
}

// copyOut copies len(dst) bytes starting at the iterator into dst.
func (it Iterator) copyOut(dst []byte) {
	buckets := it.contents.buckets
	b, i := it.bucket, it.index
	for len(dst) > 0 && b < len(buckets) {
		n := copy(dst, buckets[b].data[i:])
		dst = dst[n:]
		b++
		i = 0
	}
}

// graphemeWindow bounds the bytes inspected for one grapheme cluster.
const graphemeWindow = 64

// AdvanceGrapheme moves forward one grapheme cluster.
func (it *Iterator) AdvanceGrapheme() {
	if it.AtEOB() {
		return
	}
	var buf [graphemeWindow]byte
	n := graphemeWindow
	if rest := it.contents.length - it.position; rest < uint64(n) {
		n = int(rest)
	}
	it.copyOut(buf[:n])
	cluster, _, _, _ := uniseg.FirstGraphemeCluster(buf[:n], -1)
	step := len(cluster)
	if step == 0 {
		step = 1
	}
	it.AdvanceN(uint64(step))
}

// RetreatGrapheme moves back one grapheme cluster.
func (it *Iterator) RetreatGrapheme() {
	if it.AtBOB() {
		return
	}
	back := uint64(graphemeWindow)
	if back > it.position {
		back = it.position
	}
	start := *it
	start.RetreatN(back)
	var buf [graphemeWindow]byte
	n := int(back)
	start.copyOut(buf[:n])

	rest := buf[:n]
	last := 0
	consumed := 0
	state := -1
	for len(rest) > 0 {
		var cluster []byte
		cluster, rest, _, state = uniseg.FirstGraphemeCluster(rest, state)
		if consumed+len(cluster) >= n {
			last = consumed
			break
		}
		consumed += len(cluster)
	}
	it.RetreatN(uint64(n - last))
}
