package services

import (
	"context"

	"github.com/baking-contest/webapp/types"
)

// EntryRepository defines persistence operations for contest entries.
type EntryRepository interface {
	Create(ctx context.Context, entry types.Entry) (types.Entry, error)
	List(ctx context.Context) ([]types.Entry, error)
	ListByUser(ctx context.Context, userID int) ([]types.Entry, error)
}

// EntryService encapsulates entry use-cases.
type EntryService struct {
	repo EntryRepository
}

func NewEntryService(repo EntryRepository) *EntryService {
	return &EntryService{repo: repo}
}

func (s *EntryService) Create(ctx context.Context, entry types.Entry) (types.Entry, error) {
	return s.repo.Create(ctx, entry)
}

func (s *EntryService) List(ctx context.Context) ([]types.Entry, error) {
	return s.repo.List(ctx)
}

func (s *EntryService) ListByUser(ctx context.Context, userID int) ([]types.Entry, error) {
	return s.repo.ListByUser(ctx, userID)
}
