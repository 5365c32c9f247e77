package graph

import (
	"context"
	"errors"

	"github.com/Alp4ka/unigraph/university"
)

type loadersKey struct{}

var errNoLoaders = errors.New("no loaders in request context")

// WithLoaders returns a copy of ctx carrying the loaders of one request.
func WithLoaders(ctx context.Context, loaders *university.Loaders) context.Context {
	return context.WithValue(ctx, loadersKey{}, loaders)
}

// LoadersFromContext returns the loaders stored by WithLoaders.
func LoadersFromContext(ctx context.Context) (*university.Loaders, error) {
	loaders, ok := ctx.Value(loadersKey{}).(*university.Loaders)
	if !ok || loaders == nil {
		return nil, errNoLoaders
	}

	return loaders, nil
}
