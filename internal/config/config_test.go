package config

import "testing"

func TestSetAtlasSizeClamps(t *testing.T) {
	defer SetAtlasSize(GetAtlas().InitialSize, GetAtlas().MaxSize)

	SetAtlasSize(1024, 256)
	a := GetAtlas()
	if a.InitialSize != 1024 || a.MaxSize != 1024 {
		t.Fatalf("max below initial: got %d/%d", a.InitialSize, a.MaxSize)
	}
	SetAtlasSize(1, 1<<20)
	a = GetAtlas()
	if a.InitialSize != 16 || a.MaxSize != 16384 {
		t.Fatalf("clamp: got %d/%d", a.InitialSize, a.MaxSize)
	}
}

func TestSetCharsetDefault(t *testing.T) {
	defer SetCharset("")
	SetCharset("abc")
	if GetAtlas().Charset != "abc" {
		t.Fatalf("charset: got %q", GetAtlas().Charset)
	}
	SetCharset("")
	if GetAtlas().Charset != DefaultCharset {
		t.Fatalf("empty charset did not restore the default")
	}
}

func TestSetPointSize(t *testing.T) {
	defer SetPointSize(GetAtlas().PointSize)
	tests := []struct {
		in, want float64
	}{
		{1, 6},
		{48, 48},
		{1000, 256},
	}
	for _, tt := range tests {
		SetPointSize(tt.in)
		if got := GetAtlas().PointSize; got != tt.want {
			t.Fatalf("SetPointSize(%v): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetWindowSize(t *testing.T) {
	r := GetRender()
	defer SetWindowSize(r.WindowWidth, r.WindowHeight)
	SetWindowSize(10, 100000)
	r = GetRender()
	if r.WindowWidth != 64 || r.WindowHeight != 8192 {
		t.Fatalf("window size: got %dx%d", r.WindowWidth, r.WindowHeight)
	}
}

func TestSetFPSLimit(t *testing.T) {
	defer SetFPSLimit(GetRender().FPSLimit)
	tests := []struct {
		in, want int
	}{
		{0, 0},
		{-5, 0},
		{1, 10},
		{144, 144},
		{5000, 1000},
	}
	for _, tt := range tests {
		SetFPSLimit(tt.in)
		if got := GetRender().FPSLimit; got != tt.want {
			t.Fatalf("SetFPSLimit(%d): got %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSetImageCacheSize(t *testing.T) {
	defer SetImageCacheSize(GetRender().ImageCacheSize)
	SetImageCacheSize(0)
	if got := GetRender().ImageCacheSize; got != 1 {
		t.Fatalf("image cache size: got %d, want 1", got)
	}
	SetImageCacheSize(64)
	if got := GetRender().ImageCacheSize; got != 64 {
		t.Fatalf("image cache size: got %d, want 64", got)
	}
}
