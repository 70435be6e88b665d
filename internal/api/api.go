package api

import (
	"context"
	"net/http"

	"imagegen-backend/internal/database"
	"imagegen-backend/internal/generation"
	"imagegen-backend/internal/messaging"
	"imagegen-backend/internal/votes"
	"imagegen-backend/pkg/api"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type BackendService struct {
	db         *gorm.DB
	client     *generation.Client
	dispatcher *messaging.Dispatcher
	ledger     *votes.Ledger
	aggregator *votes.Aggregator
}

func NewBackendService(db *gorm.DB, client *generation.Client, dispatcher *messaging.Dispatcher) *BackendService {
	return &BackendService{
		db:         db,
		client:     client,
		dispatcher: dispatcher,
		ledger:     votes.NewLedger(db),
		aggregator: votes.NewAggregator(db),
	}
}

func (s *BackendService) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(func(r *http.Request) (any, error) { return nil, nil }))
	r.Post("/generate", RestHandler(s.GenerateImage))
	r.Route("/vote", func(r chi.Router) {
		r.Post("/{image_id}", RestHandler(s.CastVote))
		r.Get("/my-votes", RestHandler(s.MyVotes))
		r.Get("/my-vote-counts", RestHandler(s.MyVoteCounts))
		r.Get("/voted-image-ids", RestHandler(s.VotedImageIds))
	})
	r.Get("/images/total", RestHandler(s.TotalImages))
}

// GenerateImage runs the two independent branches of the generation path:
// the job enqueue is dispatched on a detached goroutine and its outcome is
// discarded, while the backend call is awaited and its result returned. The
// two share no transaction; either may fail without affecting the other.
func (s *BackendService) GenerateImage(r *http.Request) (any, error) {
	userId, err := RequestUserId(r)
	if err != nil {
		return nil, err
	}

	req, err := ParseRequest[api.GenerateRequest](r)
	if err != nil {
		return nil, err
	}

	params, err := generation.Normalize(req)
	if err != nil {
		return nil, CodedError(http.StatusBadRequest, err)
	}

	// The enqueue branch gets a fresh context: the job must outlive this
	// request and carries no deadline of its own.
	go s.dispatcher.Enqueue(context.Background(), params, userId)

	result, err := s.client.Generate(r.Context(), params)
	if err != nil {
		return nil, CodedErrorf(http.StatusInternalServerError, "image generation failed")
	}

	return api.GenerateResponse{Images: result.Images, Info: result.Info}, nil
}

func (s *BackendService) CastVote(r *http.Request) (any, error) {
	userId, err := RequestUserId(r)
	if err != nil {
		return nil, err
	}

	imageId, err := URLParamUUID(r, "image_id")
	if err != nil {
		return nil, err
	}

	query, err := ParseRequestQueryParams[api.VoteListQuery](r)
	if err != nil {
		return nil, err
	}
	if !query.Type.Valid() {
		return nil, CodedErrorf(http.StatusBadRequest, "invalid vote type '%s'", query.Type)
	}

	vote, err := s.ledger.CastVote(r.Context(), userId, imageId, query.Type)
	if err != nil {
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to record vote")
	}

	return toApiVote(*vote), nil
}

func (s *BackendService) MyVotes(r *http.Request) (any, error) {
	userId, err := RequestUserId(r)
	if err != nil {
		return nil, err
	}

	kind, err := optionalVoteType(r)
	if err != nil {
		return nil, err
	}

	results, err := s.ledger.ListVotesByUser(r.Context(), userId, kind)
	if err != nil {
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to list votes")
	}

	response := api.VoteListResponse{
		Count:   len(results),
		Results: make([]api.Vote, len(results)),
	}
	for i, vote := range votes.Shuffle(results) {
		response.Results[i] = toApiVote(vote)
	}

	return response, nil
}

func (s *BackendService) MyVoteCounts(r *http.Request) (any, error) {
	userId, err := RequestUserId(r)
	if err != nil {
		return nil, err
	}

	counts, total, err := s.aggregator.CountsByUser(r.Context(), userId)
	if err != nil {
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to count votes")
	}

	response := api.VoteCountsResponse{Count: total}
	for _, kind := range api.AllVoteTypes {
		response.Results = append(response.Results, api.VoteCount{Vote: kind, Count: counts[kind]})
	}

	return response, nil
}

func (s *BackendService) VotedImageIds(r *http.Request) (any, error) {
	userId, err := RequestUserId(r)
	if err != nil {
		return nil, err
	}

	kind, err := optionalVoteType(r)
	if err != nil {
		return nil, err
	}

	ids, err := s.ledger.ListVotedImageIds(r.Context(), userId, kind)
	if err != nil {
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to list voted image ids")
	}

	return votes.Shuffle(ids), nil
}

func (s *BackendService) TotalImages(r *http.Request) (any, error) {
	total, err := database.CountImages(r.Context(), s.db)
	if err != nil {
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to count images")
	}
	return total, nil
}

// optionalVoteType reads the ?type= filter. Absent means all kinds; a value
// outside the enum is a client error rather than an empty result set.
func optionalVoteType(r *http.Request) (api.VoteType, error) {
	query, err := ParseRequestQueryParams[api.VoteListQuery](r)
	if err != nil {
		return "", err
	}
	if query.Type != "" && !query.Type.Valid() {
		return "", CodedErrorf(http.StatusBadRequest, "invalid vote type '%s'", query.Type)
	}
	return query.Type, nil
}

func toApiVote(vote database.Vote) api.Vote {
	result := api.Vote{
		Id:        vote.Id,
		Vote:      api.VoteType(vote.Vote),
		ImageId:   vote.ImageId,
		UserId:    vote.UserId,
		CreatedAt: vote.CreatedAt,
	}
	if vote.Image != nil {
		result.Image = &api.Image{
			Id:        vote.Image.Id,
			Prompt:    vote.Image.Prompt,
			Seed:      vote.Image.Seed,
			Sampler:   vote.Image.Sampler,
			Steps:     vote.Image.Steps,
			CfgScale:  vote.Image.CfgScale,
			Width:     vote.Image.Width,
			Height:    vote.Image.Height,
			CreatedAt: vote.Image.CreationTime,
		}
	}
	return result
}
