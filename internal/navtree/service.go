package navtree

import (
	"context"

	naverrors "github.com/standardbeagle/navpatch/internal/errors"
	"github.com/standardbeagle/navpatch/internal/types"
)

// Service answers outline queries for the documents of a host program.
type Service struct {
	host  types.ProgramHost
	cache *Cache
}

// NewService creates a service that reads documents from host and modules
// from cache.
func NewService(host types.ProgramHost, cache *Cache) *Service {
	return &Service{host: host, cache: cache}
}

// Cache returns the service's module cache.
func (s *Service) Cache() *Cache {
	return s.cache
}

// GetNavTreeItems returns the outline of fileName as produced by the module
// for flags. The host's cancellation token, or a token that is never
// cancelled, is passed to the module untouched; this method never checks it.
func (s *Service) GetNavTreeItems(ctx context.Context, fileName string, flags types.FeatureFlags) (types.NavigationTree, error) {
	program, ok := s.host.Program()
	if !ok || program == nil {
		return nil, naverrors.NewQueryError(fileName, naverrors.ErrNoProgram)
	}
	sourceFile, ok := program.SourceFile(fileName)
	if !ok {
		return nil, naverrors.NewQueryError(fileName, naverrors.ErrNoSourceFile)
	}

	var token types.CancellationToken = types.NoopCancellationToken{}
	if hostToken, ok := s.host.CancellationToken(); ok && hostToken != nil {
		token = hostToken
	}

	module, err := s.cache.Get(ctx, flags)
	if err != nil {
		return nil, err
	}

	tree, err := module.GetNavigationTree(sourceFile, token)
	if err != nil {
		return nil, naverrors.NewQueryError(fileName, err)
	}
	return tree, nil
}
