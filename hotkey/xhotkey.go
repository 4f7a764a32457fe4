package hotkey

import (
	"golang.design/x/hotkey"
)

type xHotkey struct {
	hk      *hotkey.Hotkey
	presses chan struct{}
}

func New(b Binding) Hotkey {
	key := hotkey.KeyF9
	if b == BindSwitchLanguage {
		key = hotkey.KeyF10
	}
	return &xHotkey{
		hk:      hotkey.New(nil, key),
		presses: make(chan struct{}, 1),
	}
}

func (h *xHotkey) Register() error {
	if err := h.hk.Register(); err != nil {
		return err
	}
	go func() {
		for range h.hk.Keydown() {
			select {
			case h.presses <- struct{}{}:
			default:
			}
		}
	}()
	return nil
}

func (h *xHotkey) Unregister() {
	h.hk.Unregister()
}

func (h *xHotkey) Presses() <-chan struct{} {
	return h.presses
}
