package handler

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/netforge-labs/topoforge/internal/domain/intent"
	"github.com/netforge-labs/topoforge/internal/domain/recommend"
	recommendsvc "github.com/netforge-labs/topoforge/internal/recommend"
)

// RecommendHandler exposes the recommendation engine (C8) as its own
// endpoint, for callers that want a ranked pattern list before committing
// to synthesis.
type RecommendHandler struct {
	recommender *recommendsvc.Recommender
	mapError    func(string, error) error
}

func NewRecommendHandler(r *recommendsvc.Recommender, mapError func(string, error) error) *RecommendHandler {
	return &RecommendHandler{recommender: r, mapError: mapError}
}

func (h *RecommendHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "recommend-pattern",
		Method:      http.MethodPost,
		Path:        "/api/v1/recommendations",
		Summary:     "Rank candidate topology patterns against an intent using accumulated history",
		Tags:        []string{"recommendations"},
	}, h.Recommend)
}

func (h *RecommendHandler) Recommend(ctx context.Context, input *struct {
	Body intent.Raw
}) (*struct {
	Body recommend.Result
}, error) {
	in, err := intent.Parse(input.Body)
	if err != nil {
		return nil, h.mapError("invalid intent", err)
	}

	result, err := h.recommender.Recommend(ctx, in)
	if err != nil {
		return nil, h.mapError("recommendation failed", err)
	}

	return &struct{ Body recommend.Result }{Body: result}, nil
}
