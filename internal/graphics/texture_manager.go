package graphics

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"tetris/internal/graphics/tex"
)

// ImageCache keeps recently decoded images so that loading the same path
// twice does not hit the disk again.
type ImageCache struct {
	cache *lru.Cache[string, *tex.Surface]
	load  func(string) (*tex.Surface, error)
}

// NewImageCache returns a cache holding at most size decoded images.
func NewImageCache(size int) (*ImageCache, error) {
	if size <= 0 {
		size = 1
	}
	c, err := lru.New[string, *tex.Surface](size)
	if err != nil {
		return nil, err
	}
	return &ImageCache{cache: c, load: LoadImage}, nil
}

// Get returns the decoded image for path, loading it on a miss.
func (ic *ImageCache) Get(path string) (*tex.Surface, error) {
	if s, ok := ic.cache.Get(path); ok {
		return s, nil
	}
	s, err := ic.load(path)
	if err != nil {
		return nil, err
	}
	ic.cache.Add(path, s)
	return s, nil
}

// Len returns the number of cached images.
func (ic *ImageCache) Len() int {
	return ic.cache.Len()
}

// Purge drops every cached image.
func (ic *ImageCache) Purge() {
	ic.cache.Purge()
}
