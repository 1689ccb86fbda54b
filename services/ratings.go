package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"homescout/models"
	"homescout/storage"
)

// RatingService manages the per-user yes/maybe/no overlay. Clearing a
// rating removes the row; "unrated" is never stored as a value.
type RatingService struct {
	store *storage.PostgresStore
}

func NewRatingService(store *storage.PostgresStore) *RatingService {
	return &RatingService{store: store}
}

func (s *RatingService) Rate(ctx context.Context, userID string, listingID uuid.UUID, rating models.Rating) error {
	if !rating.IsValid() {
		return fmt.Errorf("invalid rating %q", rating)
	}

	listing, err := s.store.GetListingByID(ctx, listingID)
	if err != nil {
		return err
	}
	if listing == nil {
		return fmt.Errorf("listing %s not found", listingID)
	}

	return s.store.SetRating(ctx, userID, listingID, rating)
}

func (s *RatingService) Clear(ctx context.Context, userID string, listingID uuid.UUID) error {
	return s.store.DeleteRating(ctx, userID, listingID)
}

func (s *RatingService) SetNotes(ctx context.Context, userID string, listingID uuid.UUID, notes string) error {
	listing, err := s.store.GetListingByID(ctx, listingID)
	if err != nil {
		return err
	}
	if listing == nil {
		return fmt.Errorf("listing %s not found", listingID)
	}
	return s.store.SetNotes(ctx, userID, listingID, notes)
}
