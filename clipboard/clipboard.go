// Package clipboard inserts transcribed text at the cursor: clipboard
// write followed by a synthesized paste keystroke.
package clipboard

import (
	cb "github.com/atotto/clipboard"
)

func Read() (string, error) {
	return cb.ReadAll()
}

func Copy(text string) error {
	return cb.WriteAll(text)
}

// Insert copies text to the clipboard and sends the paste chord to the
// focused window.
func Insert(text string) error {
	if err := Copy(text); err != nil {
		return err
	}
	return Paste()
}
