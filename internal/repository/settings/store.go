package settings

import (
	"context"
	"fmt"
	"io"

	"github.com/oshokin/sprint-start/internal/config"
	"github.com/oshokin/sprint-start/internal/service/sequence"
)

// Store is a ConfigStore that holds resources.
type Store interface {
	sequence.ConfigStore
	io.Closer
}

// Open returns the backend selected by kind.
func Open(ctx context.Context, kind, path string) (Store, error) {
	switch kind {
	case config.StoreFile, "":
		return NewFileRepository(path), nil
	case config.StoreBadger:
		return OpenBadger(ctx, path)
	default:
		return nil, fmt.Errorf("unknown store kind %q", kind)
	}
}

var (
	_ Store = (*FileRepository)(nil)
	_ Store = (*BadgerRepository)(nil)
)
