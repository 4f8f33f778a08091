//go:build !linux

package services

import (
	"errors"

	"golang.design/x/clipboard"
)

// clipboardAvailable indicates if clipboard functionality is available on this platform
const clipboardAvailable = true

var errClipboardUnavailable = errors.New("clipboard could not be initialized")

// initClipboard initializes the clipboard library
func initClipboard() error {
	return clipboard.Init()
}

// readClipboardImage returns PNG bytes or nil.
func readClipboardImage() []byte {
	return clipboard.Read(clipboard.FmtImage)
}

// readClipboardText returns UTF-8 text or nil.
func readClipboardText() []byte {
	return clipboard.Read(clipboard.FmtText)
}
