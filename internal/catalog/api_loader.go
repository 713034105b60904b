package catalog

import (
	"context"

	"supply-desk/internal/model"
	"supply-desk/internal/upstream"
)

// apiLoader loads the brief catalog from the upstream REST API.
type apiLoader struct {
	client upstream.Client
}

// NewAPILoader creates a loader backed by GET /products/all/brief.
func NewAPILoader(client upstream.Client) Loader {
	return &apiLoader{client: client}
}

func (l *apiLoader) Load(ctx context.Context) ([]model.ProductBrief, error) {
	return l.client.ListProductsBrief(ctx)
}
