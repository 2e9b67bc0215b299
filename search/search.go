// Package search fans an image reference out across reverse-image-search
// engines and folds the engines' result listings into a common candidate
// shape.
package search

import (
	"context"

	"imagecredit/attribution"
)

// Engine is one reverse-image-search provider.
type Engine interface {
	Name() string
	Search(ctx context.Context, ref attribution.ImageRef) ([]attribution.SearchHit, error)
}

// perEngineLimit caps how many candidate URLs a single engine contributes.
const perEngineLimit = 25
