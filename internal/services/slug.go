package services

import (
	"context"
	"fmt"

	"github.com/gosimple/slug"
	"github.com/yukikurage/listing-api/internal/metrics"
)

// SlugProber answers whether an active listing already uses a slug.
type SlugProber interface {
	ExistsActiveSlug(ctx context.Context, slug string) (bool, error)
}

// SlugAllocation is a slug plus the numeric title suffix that produced it.
// Suffix 0 means the bare title.
type SlugAllocation struct {
	Slug   string
	Suffix int
}

// SlugAllocator derives unique listing slugs from titles.
type SlugAllocator struct {
	prober SlugProber
}

// NewSlugAllocator creates a SlugAllocator.
func NewSlugAllocator(prober SlugProber) *SlugAllocator {
	return &SlugAllocator{prober: prober}
}

// NormalizeSlug lowercases title and collapses every non-alphanumeric run
// into a single dash, trimming dashes at both ends.
func NormalizeSlug(title string) string {
	return slug.Make(title)
}

// Allocate returns the first slug for title not used by an active listing.
func (a *SlugAllocator) Allocate(ctx context.Context, title string) (string, error) {
	alloc, err := a.AllocateFrom(ctx, title, 0)
	if err != nil {
		return "", err
	}
	return alloc.Slug, nil
}

// AllocateFrom probes title, then "title-1", "title-2", ... starting at
// suffix from. The suffix goes on the title before normalizing.
func (a *SlugAllocator) AllocateFrom(ctx context.Context, title string, from int) (SlugAllocation, error) {
	if NormalizeSlug(title) == "" {
		return SlugAllocation{}, fmt.Errorf("%w: title must contain letters or digits", ErrValidation)
	}

	for suffix := from; ; suffix++ {
		if err := ctx.Err(); err != nil {
			return SlugAllocation{}, err
		}

		candidate := NormalizeSlug(title)
		if suffix > 0 {
			candidate = NormalizeSlug(fmt.Sprintf("%s-%d", title, suffix))
		}

		exists, err := a.prober.ExistsActiveSlug(ctx, candidate)
		if err != nil {
			return SlugAllocation{}, fmt.Errorf("%w: probe slug %q: %w", ErrTransient, candidate, err)
		}
		if !exists {
			return SlugAllocation{Slug: candidate, Suffix: suffix}, nil
		}

		metrics.SlugCollisions.Inc()
	}
}
