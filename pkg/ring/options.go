package ring

import (
	"github.com/eunmann/alog/pkg/diskfree"
	"github.com/eunmann/alog/pkg/format"
)

// Option configures OpenOrCreate and Resize.
type Option func(*options)

type options struct {
	unit      uint32
	freeSpace func(path string) diskfree.Result
}

func newOptions(opts []Option) options {
	o := options{
		unit:      format.DefaultUnit,
		freeSpace: diskfree.Available,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithUnit sets the size rounding unit. Sizes are always a multiple of it.
func WithUnit(unit uint32) Option {
	return func(o *options) {
		if unit > format.HeaderSize {
			o.unit = unit
		}
	}
}

// WithFreeSpace replaces the filesystem free-space probe. A probe returning
// an unreliable result disables size capping.
func WithFreeSpace(fn func(path string) diskfree.Result) Option {
	return func(o *options) {
		if fn != nil {
			o.freeSpace = fn
		}
	}
}
