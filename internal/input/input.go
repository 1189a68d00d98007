package input

import (
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Action is a logical game command, not a physical key.
type Action int

const (
	ActionMoveLeft Action = iota
	ActionMoveRight
	ActionSoftDrop
	ActionRotate
	ActionHardDrop
	ActionRestart
	ActionQuit
	ActionCount // Sentinel value for array sizing
)

// InputManager maps keys to actions and queues presses between frames.
// Key callbacks run on the main thread during PollEvents, but the queue is
// locked so it can also be fed from elsewhere.
type InputManager struct {
	mu sync.Mutex

	// One key can trigger several actions.
	keyToActions map[glfw.Key][]Action

	held    [ActionCount]bool
	pending [ActionCount]int
}

// NewInputManager returns a manager with arrow-key bindings plus WASD.
func NewInputManager() *InputManager {
	im := &InputManager{keyToActions: make(map[glfw.Key][]Action)}

	im.BindKey(glfw.KeyLeft, ActionMoveLeft)
	im.BindKey(glfw.KeyA, ActionMoveLeft)
	im.BindKey(glfw.KeyRight, ActionMoveRight)
	im.BindKey(glfw.KeyD, ActionMoveRight)
	im.BindKey(glfw.KeyDown, ActionSoftDrop)
	im.BindKey(glfw.KeyS, ActionSoftDrop)
	im.BindKey(glfw.KeyUp, ActionRotate)
	im.BindKey(glfw.KeyW, ActionRotate)
	im.BindKey(glfw.KeySpace, ActionHardDrop)
	im.BindKey(glfw.KeyR, ActionRestart)
	im.BindKey(glfw.KeyEscape, ActionQuit)
	return im
}

// BindKey adds action to the actions triggered by key.
func (im *InputManager) BindKey(key glfw.Key, action Action) {
	if action < 0 || action >= ActionCount {
		return
	}
	im.mu.Lock()
	defer im.mu.Unlock()
	im.keyToActions[key] = append(im.keyToActions[key], action)
}

// UnbindKey removes all action bindings for a key.
func (im *InputManager) UnbindKey(key glfw.Key) {
	im.mu.Lock()
	defer im.mu.Unlock()
	delete(im.keyToActions, key)
}

// HandleKeyEvent records a key event. Presses and auto-repeats each queue
// one activation of every bound action.
func (im *InputManager) HandleKeyEvent(key glfw.Key, action glfw.Action) {
	im.mu.Lock()
	defer im.mu.Unlock()

	pressed := action == glfw.Press || action == glfw.Repeat
	for _, act := range im.keyToActions[key] {
		if pressed {
			im.pending[act]++
		}
		im.held[act] = pressed
	}
}

// SetKeyCallback installs HandleKeyEvent as the window's key callback.
func (im *InputManager) SetKeyCallback(window *glfw.Window) {
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		im.HandleKeyEvent(key, action)
	})
}

// Drain returns how many times action fired since the last Drain and resets
// the count.
func (im *InputManager) Drain(action Action) int {
	if action < 0 || action >= ActionCount {
		return 0
	}
	im.mu.Lock()
	defer im.mu.Unlock()
	n := im.pending[action]
	im.pending[action] = 0
	return n
}

// IsActive reports whether a key bound to action is held down.
func (im *InputManager) IsActive(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	im.mu.Lock()
	defer im.mu.Unlock()
	return im.held[action]
}
