package executor

import (
	"context"

	"git.home.luguber.info/inful/gallerygen/internal/gallery"
)

// Resetter scrubs one piece of process-global interpreter state between
// independent scripts, so execution of one script cannot leak
// configuration into the next.
type Resetter struct {
	Name  string
	Reset func(ctx context.Context, sess Session) error
}

// NewResetter resolves a configured resetter name to its implementation.
func NewResetter(name string) (Resetter, error) {
	switch name {
	case "matplotlib", "seaborn":
		target := name
		return Resetter{
			Name: name,
			Reset: func(ctx context.Context, sess Session) error {
				return sess.Reset(ctx, target)
			},
		}, nil
	default:
		return Resetter{}, gallery.Configf("unknown module resetter %q (known: matplotlib, seaborn)", name)
	}
}
