package core

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxFavoriteNameLength is the longest accepted favorite name, in runes.
const MaxFavoriteNameLength = 100

func normalizeFavoriteName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrFavoriteNameRequired
	}
	if utf8.RuneCountInString(name) > MaxFavoriteNameLength {
		return "", fmt.Errorf("%w: name longer than %d characters", ErrFavoriteNameRequired, MaxFavoriteNameLength)
	}
	return name, nil
}

// SaveFavorite stores a named selection for owner. Facility ids are
// normalized like an export; field keys are stored exactly as given,
// including keys the catalog does not know. Returns
// ErrDuplicateFavoriteName when owner already has a favorite with that name.
func (s *Service) SaveFavorite(ctx context.Context, owner int64, name string, facilityIDs []int64, fieldKeys []string) (Favorite, error) {
	name, err := normalizeFavoriteName(name)
	if err != nil {
		return Favorite{}, err
	}
	ids, err := s.normalizeFacilityIDs(facilityIDs)
	if err != nil {
		return Favorite{}, err
	}
	if len(normalizeFieldKeys(fieldKeys)) == 0 {
		return Favorite{}, ErrNoFields
	}

	fav, err := s.favorites.Create(ctx, Favorite{
		OwnerUserID: owner,
		Name:        name,
		FacilityIDs: ids,
		FieldKeys:   append([]string(nil), fieldKeys...),
	})
	if err != nil {
		return Favorite{}, fmt.Errorf("save favorite: %w", err)
	}

	entry := newActivityEntry(ctx, ActionFavoriteCreate, owner)
	entry.FavoriteID = fav.ID
	entry.FacilityCount = len(fav.FacilityIDs)
	entry.FieldCount = len(fav.FieldKeys)
	s.recordActivity(ctx, entry)

	s.logger(ctx).Debug("favorite saved", "favorite_id", fav.ID, "owner_user_id", owner)
	return fav, nil
}

// ListFavorites returns owner's favorites.
func (s *Service) ListFavorites(ctx context.Context, owner int64) ([]Favorite, error) {
	favs, err := s.favorites.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	if favs == nil {
		favs = []Favorite{}
	}
	return favs, nil
}

// GetFavorite returns one of owner's favorites. Favorites of other owners
// yield ErrFavoriteNotFound.
func (s *Service) GetFavorite(ctx context.Context, owner, id int64) (Favorite, error) {
	fav, err := s.favorites.GetByOwner(ctx, id, owner)
	if err != nil {
		return Favorite{}, fmt.Errorf("get favorite: %w", err)
	}
	return fav, nil
}

// RenameFavorite changes the name of one of owner's favorites.
func (s *Service) RenameFavorite(ctx context.Context, owner, id int64, name string) (Favorite, error) {
	name, err := normalizeFavoriteName(name)
	if err != nil {
		return Favorite{}, err
	}

	fav, err := s.favorites.Rename(ctx, id, owner, name)
	if err != nil {
		return Favorite{}, fmt.Errorf("rename favorite: %w", err)
	}

	entry := newActivityEntry(ctx, ActionFavoriteRename, owner)
	entry.FavoriteID = id
	s.recordActivity(ctx, entry)
	return fav, nil
}

// DeleteFavorite removes one of owner's favorites.
func (s *Service) DeleteFavorite(ctx context.Context, owner, id int64) error {
	if err := s.favorites.Delete(ctx, id, owner); err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}

	entry := newActivityEntry(ctx, ActionFavoriteDelete, owner)
	entry.FavoriteID = id
	s.recordActivity(ctx, entry)
	return nil
}
