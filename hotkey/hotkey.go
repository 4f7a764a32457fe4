// Package hotkey registers the two global triggers: start listening and
// switch language.
package hotkey

type Binding int

const (
	BindListen Binding = iota // F9
	BindSwitchLanguage        // F10
)

type Hotkey interface {
	Register() error
	Unregister()
	// Presses delivers one value per key press; extra presses while the
	// consumer is busy are coalesced.
	Presses() <-chan struct{}
}
