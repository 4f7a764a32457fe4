package hotkey

// FakeHotkey stands in for a global key binding in tests. SimPress behaves
// like a physical key press, including the coalescing the interface promises.
type FakeHotkey struct {
	presses chan struct{}
}

func NewFake() *FakeHotkey {
	return &FakeHotkey{presses: make(chan struct{}, 1)}
}

func (f *FakeHotkey) Register() error          { return nil }
func (f *FakeHotkey) Unregister()              {}
func (f *FakeHotkey) Presses() <-chan struct{} { return f.presses }

func (f *FakeHotkey) SimPress() {
	select {
	case f.presses <- struct{}{}:
	default:
	}
}
