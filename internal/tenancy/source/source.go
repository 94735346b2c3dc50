// Package source loads tenant registries from the places operators keep them
// and hot-swaps them into a running resolver.
package source

import (
	"context"
	"errors"

	"github.com/wolfman30/clinic-tenancy/internal/tenancy"
)

// ErrRegistryNotFound means the source holds no registry document at all.
// Reloads treat it as a failure so an empty store never wipes the registry.
var ErrRegistryNotFound = errors.New("source: registry document not found")

// Source produces a validated registry.
type Source interface {
	Name() string
	Load(ctx context.Context) (*tenancy.Registry, error)
}
