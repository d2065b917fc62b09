package workflow

import "github.com/atotto/clipboard"

// Clipboard is the copy destination for generated biographies.
type Clipboard interface {
	WriteAll(text string) error
}

// clipboardWriteAll is swappable so tests run without a system clipboard.
var clipboardWriteAll = clipboard.WriteAll

// SystemClipboard copies through the host clipboard (xclip, xsel, pbcopy
// or the Windows clipboard, whichever atotto/clipboard finds).
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	return clipboardWriteAll(text)
}

// NopClipboard acknowledges copies without touching the host clipboard.
// Headless deployments use it: the browser does the real copying and the
// server only tracks the acknowledgment window.
type NopClipboard struct{}

func (NopClipboard) WriteAll(string) error { return nil }
