// Package clipboard writes translations to the system clipboard outside the
// desktop webview.
package clipboard

import (
	"context"
	"errors"

	cb "github.com/atotto/clipboard"
)

var ErrUnsupported = errors.New("no clipboard utility available")

// System uses the platform clipboard (xclip, xsel or wl-copy on Linux).
type System struct{}

func (System) SetText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cb.Unsupported {
		return ErrUnsupported
	}
	return cb.WriteAll(text)
}
