package input

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func TestPressesAndRepeatsQueue(t *testing.T) {
	im := NewInputManager()
	im.HandleKeyEvent(glfw.KeyLeft, glfw.Press)
	im.HandleKeyEvent(glfw.KeyLeft, glfw.Repeat)
	im.HandleKeyEvent(glfw.KeyA, glfw.Press)

	if !im.IsActive(ActionMoveLeft) {
		t.Fatalf("move left not held")
	}
	if got := im.Drain(ActionMoveLeft); got != 3 {
		t.Fatalf("move left: got %d, want 3", got)
	}
	if got := im.Drain(ActionMoveLeft); got != 0 {
		t.Fatalf("second drain: got %d, want 0", got)
	}

	im.HandleKeyEvent(glfw.KeyLeft, glfw.Release)
	if im.IsActive(ActionMoveLeft) {
		t.Fatalf("move left still held after release")
	}
	if got := im.Drain(ActionMoveLeft); got != 0 {
		t.Fatalf("release queued %d activations", got)
	}
}

func TestBindings(t *testing.T) {
	im := NewInputManager()
	im.BindKey(glfw.KeyX, ActionRotate)
	im.BindKey(glfw.KeyX, ActionCount)
	im.HandleKeyEvent(glfw.KeyX, glfw.Press)
	if got := im.Drain(ActionRotate); got != 1 {
		t.Fatalf("rotate: got %d, want 1", got)
	}

	im.UnbindKey(glfw.KeyX)
	im.HandleKeyEvent(glfw.KeyX, glfw.Press)
	if got := im.Drain(ActionRotate); got != 0 {
		t.Fatalf("unbound key queued %d activations", got)
	}
	if got := im.Drain(ActionCount); got != 0 {
		t.Fatalf("sentinel action: got %d", got)
	}
}
