package contents

import (
	"bytes"
	"io"
	"sort"
	"strings"

	"github.com/dshills/stormcore/internal/engine/sso"
)

// DefaultBucketSize is the capacity of a bucket in bytes.
const DefaultBucketSize = 1024

// bucket is a fixed-capacity run of text.
type bucket struct {
	data     []byte // len(data) <= cap(data) == bucket size
	newlines int
}

// Allocator returns a byte slice of length n for a payload that does not
// fit inline. A nil Allocator uses make.
type Allocator func(n int) []byte

// Contents stores the text of a buffer as an ordered list of buckets.
//
// Contents is not safe for concurrent mutation; callers serialize writes
// with the buffer's handle. Reads never mutate internal state, so any
// number of readers may run concurrently.
type Contents struct {
	buckets []bucket

	// starts[i] is the absolute offset of buckets[i];
	// lines[i] is the number of '\n' before buckets[i].
	starts []uint64
	lines  []int

	length     uint64
	newlines   int
	bucketSize int
	generation uint64
}

// Option configures a Contents.
type Option func(*Contents)

// WithBucketSize sets the bucket capacity.
func WithBucketSize(size int) Option {
	return func(c *Contents) {
		if size > 0 {
			c.bucketSize = size
		}
	}
}

// New creates empty contents.
func New(opts ...Option) *Contents {
	c := &Contents{bucketSize: DefaultBucketSize}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromString creates contents holding s.
func FromString(s string, opts ...Option) *Contents {
	c := New(opts...)
	c.Insert(0, []byte(s))
	c.generation = 0
	return c
}

// FromBytes creates contents holding a copy of b.
func FromBytes(b []byte, opts ...Option) *Contents {
	c := New(opts...)
	c.Insert(0, b)
	c.generation = 0
	return c
}

// FromReader reads r to EOF into new contents.
func FromReader(r io.Reader, opts ...Option) (*Contents, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return FromBytes(data, opts...), nil
}

// Len returns the total length in bytes.
func (c *Contents) Len() uint64 {
	return c.length
}

// IsEmpty returns true if there is no text.
func (c *Contents) IsEmpty() bool {
	return c.length == 0
}

// BucketCount returns the number of buckets.
func (c *Contents) BucketCount() int {
	return len(c.buckets)
}

// BucketSize returns the bucket capacity.
func (c *Contents) BucketSize() int {
	return c.bucketSize
}

// Generation returns a counter incremented by every mutation.
func (c *Contents) Generation() uint64 {
	return c.generation
}

// LineCount returns the number of lines.
// Empty contents have one line.
func (c *Contents) LineCount() int {
	return c.newlines + 1
}

// LineAt returns the 0-indexed line containing pos.
func (c *Contents) LineAt(pos uint64) int {
	if len(c.buckets) == 0 {
		return 0
	}
	pos = c.clamp(pos)
	i, off := c.find(pos)
	return c.lines[i] + bytes.Count(c.buckets[i].data[:off], []byte{'\n'})
}

// GetOnce returns the byte at pos, or 0 past the end.
func (c *Contents) GetOnce(pos uint64) byte {
	if pos >= c.length {
		return 0
	}
	i, off := c.find(pos)
	return c.buckets[i].data[off]
}

// String returns the whole text.
// Prefer iterators for large buffers.
func (c *Contents) String() string {
	var sb strings.Builder
	sb.Grow(int(c.length))
	for _, b := range c.buckets {
		sb.Write(b.data)
	}
	return sb.String()
}

// Bytes returns a copy of the whole text.
func (c *Contents) Bytes() []byte {
	out := make([]byte, 0, c.length)
	for _, b := range c.buckets {
		out = append(out, b.data...)
	}
	return out
}

// WriteTo writes the text to w.
func (c *Contents) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, b := range c.buckets {
		n, err := w.Write(b.data)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// SliceString returns the text in [start, end) as a Go string.
func (c *Contents) SliceString(start, end uint64) string {
	start, end = c.clamp(start), c.clamp(end)
	if start >= end {
		return ""
	}
	buf := make([]byte, end-start)
	c.IteratorAt(start).copyOut(buf)
	return string(buf)
}

// Slice materializes [it.Position(), end) as an sso.String.
// Short slices are stored inline and do not allocate; longer ones use
// alloc, or make when alloc is nil.
func (c *Contents) Slice(alloc Allocator, it Iterator, end uint64) sso.String {
	end = c.clamp(end)
	if end <= it.position {
		return sso.String{}
	}
	n := int(end - it.position)
	if n <= sso.InlineSize {
		var buf [sso.InlineSize]byte
		it.copyOut(buf[:n])
		return sso.FromBytes(buf[:n])
	}
	var dst []byte
	if alloc != nil {
		dst = alloc(n)[:n]
	} else {
		dst = make([]byte, n)
	}
	it.copyOut(dst)
	return sso.Wrap(dst)
}

// clamp limits pos to [0, Len()].
func (c *Contents) clamp(pos uint64) uint64 {
	if pos > c.length {
		return c.length
	}
	return pos
}

// find returns the bucket index and offset for pos.
// pos == Len() maps to the end of the last bucket.
// The contents must not be empty.
func (c *Contents) find(pos uint64) (int, int) {
	i := sort.Search(len(c.starts), func(i int) bool {
		return c.starts[i] > pos
	}) - 1
	if i < 0 {
		i = 0
	}
	off := int(pos - c.starts[i])
	if off > len(c.buckets[i].data) {
		off = len(c.buckets[i].data)
	}
	return i, off
}

// reindex recomputes cumulative offsets and line counts from bucket i.
func (c *Contents) reindex(from int) {
	if cap(c.starts) < len(c.buckets) {
		starts := make([]uint64, len(c.buckets), 2*len(c.buckets))
		lines := make([]int, len(c.buckets), 2*len(c.buckets))
		copy(starts, c.starts)
		copy(lines, c.lines)
		c.starts, c.lines = starts, lines
	}
	c.starts = c.starts[:len(c.buckets)]
	c.lines = c.lines[:len(c.buckets)]
	if from > len(c.buckets) {
		from = len(c.buckets)
	}

	var pos uint64
	var lines int
	if from > 0 {
		prev := from - 1
		pos = c.starts[prev] + uint64(len(c.buckets[prev].data))
		lines = c.lines[prev] + c.buckets[prev].newlines
	}
	for i := from; i < len(c.buckets); i++ {
		c.starts[i] = pos
		c.lines[i] = lines
		pos += uint64(len(c.buckets[i].data))
		lines += c.buckets[i].newlines
	}
	c.length = pos
	c.newlines = lines
}

// newBucket creates a bucket holding a copy of data.
func (c *Contents) newBucket(data []byte) bucket {
	b := bucket{data: make([]byte, len(data), c.bucketSize)}
	copy(b.data, data)
	b.newlines = bytes.Count(data, []byte{'\n'})
	return b
}

// split cuts data into evenly sized buckets.
func (c *Contents) split(data []byte) []bucket {
	if len(data) == 0 {
		return nil
	}
	count := (len(data) + c.bucketSize - 1) / c.bucketSize
	size := (len(data) + count - 1) / count
	out := make([]bucket, 0, count)
	for len(data) > 0 {
		n := size
		if n > len(data) {
			n = len(data)
		}
		out = append(out, c.newBucket(data[:n]))
		data = data[n:]
	}
	return out
}
