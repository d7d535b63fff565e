package catalog

import (
	"context"
	"time"

	"craftly-be/internal/logger"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

const cacheSize = 512

// Service fronts the repository with a bounded TTL cache. The cache is
// advisory and read-only; it is never used for order aggregates, which need
// read-after-write consistency.
type Service interface {
	Lookup(ctx context.Context, sku string) (*Product, error)
	LookupBySlug(ctx context.Context, slug string) (*Product, error)
}

type service struct {
	repo  Repository
	cache *expirable.LRU[string, *Product]
}

func NewService(repo Repository, ttl time.Duration) Service {
	return &service{
		repo:  repo,
		cache: expirable.NewLRU[string, *Product](cacheSize, nil, ttl),
	}
}

func (s *service) Lookup(ctx context.Context, sku string) (*Product, error) {
	if p, ok := s.cache.Get("sku:" + sku); ok {
		return p, nil
	}

	p, err := s.repo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}

	s.cache.Add("sku:"+sku, p)

	logger.FromCtx(ctx).Debug("catalog cache miss",
		zap.String("sku", sku),
		zap.String("product_id", p.ID),
	)

	return p, nil
}

func (s *service) LookupBySlug(ctx context.Context, slug string) (*Product, error) {
	if p, ok := s.cache.Get("slug:" + slug); ok {
		return p, nil
	}

	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	s.cache.Add("slug:"+slug, p)

	return p, nil
}
