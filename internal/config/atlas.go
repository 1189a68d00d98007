package config

import "sync"

// DefaultCharset is rasterized for every font when it is loaded.
const DefaultCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ1234567890[]{}()/\\=+'\"<>,.-_?|!@#$%^&* :"

// Atlas is a snapshot of the glyph atlas settings.
type Atlas struct {
	InitialSize int // edge length of the first surface
	MaxSize     int // the atlas never grows past this edge length
	PointSize   float64
	Charset     string
}

// AtlasSettings holds glyph atlas configuration
type AtlasSettings struct {
	mu    sync.RWMutex
	atlas Atlas
}

var globalAtlasSettings = &AtlasSettings{
	atlas: Atlas{
		InitialSize: 512,
		MaxSize:     4096,
		PointSize:   48,
		Charset:     DefaultCharset,
	},
}

// GetAtlas returns the current atlas settings
func GetAtlas() Atlas {
	globalAtlasSettings.mu.RLock()
	defer globalAtlasSettings.mu.RUnlock()
	return globalAtlasSettings.atlas
}

// SetAtlasSize sets the initial and maximum atlas edge length
func SetAtlasSize(initial, maxSize int) {
	globalAtlasSettings.mu.Lock()
	defer globalAtlasSettings.mu.Unlock()

	initial = clamp(initial, 16, 16384)
	maxSize = clamp(maxSize, 16, 16384)
	if maxSize < initial {
		maxSize = initial
	}
	globalAtlasSettings.atlas.InitialSize = initial
	globalAtlasSettings.atlas.MaxSize = maxSize
}

// SetPointSize sets the reference size glyphs are rasterized at
func SetPointSize(size float64) {
	globalAtlasSettings.mu.Lock()
	defer globalAtlasSettings.mu.Unlock()
	if size < 6 {
		size = 6
	}
	if size > 256 {
		size = 256
	}
	globalAtlasSettings.atlas.PointSize = size
}

// SetCharset sets the characters rasterized on font load; empty restores the default
func SetCharset(s string) {
	globalAtlasSettings.mu.Lock()
	defer globalAtlasSettings.mu.Unlock()
	if s == "" {
		s = DefaultCharset
	}
	globalAtlasSettings.atlas.Charset = s
}
