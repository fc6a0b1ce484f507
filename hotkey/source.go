// Package hotkey turns the raw keyboard event stream into semantic
// transmission events. The Machine owns classification and admission;
// the Source owns the OS hook; the Listener supervises the hook.
package hotkey

// Key identifies a physical key. Values follow the Linux input-event
// key codes, which the gohook adapter normalizes to on every platform.
type Key uint16

const (
	KeyLeftCtrl   Key = 29
	KeyRightCtrl  Key = 97
	KeyLeftShift  Key = 42
	KeyRightShift Key = 54
	KeyLeftAlt    Key = 56
	KeyRightAlt   Key = 100

	KeyF8  Key = 66
	KeyF9  Key = 67
	KeyF10 Key = 68
)

// IsModifier reports whether k is one of the tracked modifier keys.
func (k Key) IsModifier() bool {
	switch k {
	case KeyLeftCtrl, KeyRightCtrl, KeyLeftShift, KeyRightShift, KeyLeftAlt, KeyRightAlt:
		return true
	}
	return false
}

// Handler receives raw key events. The return value asks the source to
// suppress the event from reaching other applications; sources honour it
// best-effort (not every hook mechanism can swallow events).
type Handler interface {
	KeyDown(k Key) (suppress bool)
	KeyUp(k Key) (suppress bool)
}

// Source delivers raw key events from a background OS hook.
// Start returns once the hook is installed; events arrive on the
// source's own thread. Err reports abnormal hook termination.
type Source interface {
	Start(h Handler) error
	Stop()
	Err() <-chan error
}
