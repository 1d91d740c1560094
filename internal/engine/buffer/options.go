package buffer

import (
	"github.com/google/uuid"

	"github.com/dshills/stormcore/internal/engine/contents"
)

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithName sets the buffer's display name, usually its file path.
func WithName(name string) Option {
	return func(b *Buffer) {
		b.name = name
	}
}

// WithID sets the buffer's identifier instead of generating one.
func WithID(id uuid.UUID) Option {
	return func(b *Buffer) {
		if id != uuid.Nil {
			b.id = id
		}
	}
}

// WithBucketSize sets the Contents bucket capacity.
func WithBucketSize(size int) Option {
	return func(b *Buffer) {
		if size > 0 {
			b.bucketSize = size
		}
	}
}

// WithMaxEditBytes bounds the payload bytes of transactions created by
// NewTransaction. Zero means unlimited.
func WithMaxEditBytes(n int) Option {
	return func(b *Buffer) {
		if n >= 0 {
			b.maxEditBytes = n
		}
	}
}

// WithListener registers a listener at construction time.
func WithListener(l Listener) Option {
	return func(b *Buffer) {
		if l != nil {
			b.listeners = append(b.listeners, l)
		}
	}
}

func (b *Buffer) contentsOptions() []contents.Option {
	return []contents.Option{contents.WithBucketSize(b.bucketSize)}
}
