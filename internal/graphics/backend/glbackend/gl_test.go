package glbackend

import (
	"bytes"
	"log/slog"
	"testing"
)

func TestNewLogger(t *testing.T) {
	if g := New(nil); g.log == nil {
		t.Fatalf("nil logger not replaced")
	}

	var buf bytes.Buffer
	lg := slog.New(slog.NewTextHandler(&buf, nil))
	g := New(lg)
	if g.log != lg {
		t.Fatalf("logger not kept")
	}
	// check makes no GL call unless Debug is set, so it is safe without a context.
	g.check("BufferData")
	if buf.Len() != 0 {
		t.Fatalf("check logged with Debug off: %q", buf.String())
	}
}
