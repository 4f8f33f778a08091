//go:build linux

package services

import "errors"

// clipboardAvailable indicates if clipboard functionality is available on this platform
const clipboardAvailable = false

var errClipboardUnavailable = errors.New("clipboard not available on this platform (Linux without X11)")

// initClipboard returns an error indicating clipboard is not available
func initClipboard() error {
	return errClipboardUnavailable
}

func readClipboardImage() []byte { return nil }

func readClipboardText() []byte { return nil }
