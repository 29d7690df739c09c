package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/facility-export/internal/core"
)

const favoriteNameConstraint = "export_favorites_owner_name_unique"

const favoriteColumns = `id, owner_user_id, name, facility_ids, field_keys, created_at, updated_at`

const (
	insertFavorite = `
INSERT INTO export_favorites (owner_user_id, name, facility_ids, field_keys)
VALUES ($1, $2, $3, $4)
RETURNING ` + favoriteColumns

	listFavoritesByOwner = `
SELECT ` + favoriteColumns + `
FROM export_favorites
WHERE owner_user_id = $1
ORDER BY created_at, id`

	getFavoriteByOwner = `
SELECT ` + favoriteColumns + `
FROM export_favorites
WHERE id = $1 AND owner_user_id = $2`

	renameFavorite = `
UPDATE export_favorites
SET name = $3, updated_at = NOW()
WHERE id = $1 AND owner_user_id = $2
RETURNING ` + favoriteColumns

	deleteFavorite = `
DELETE FROM export_favorites
WHERE id = $1 AND owner_user_id = $2`
)

// Favorites persists export favorites. It implements
// core.FavoriteRepository; every statement filters on the owner.
type Favorites struct {
	db DBTX
}

// NewFavorites creates a favorites store.
func NewFavorites(db DBTX) *Favorites {
	return &Favorites{db: db}
}

func scanFavorite(row pgx.Row) (core.Favorite, error) {
	var f core.Favorite
	err := row.Scan(&f.ID, &f.OwnerUserID, &f.Name, &f.FacilityIDs, &f.FieldKeys, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

// translateError maps driver errors onto core sentinels.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return core.ErrFavoriteNotFound
	case isUniqueViolation(err, favoriteNameConstraint):
		return core.ErrDuplicateFavoriteName
	default:
		return err
	}
}

func (s *Favorites) Create(ctx context.Context, fav core.Favorite) (core.Favorite, error) {
	ids := fav.FacilityIDs
	if ids == nil {
		ids = []int64{}
	}
	keys := fav.FieldKeys
	if keys == nil {
		keys = []string{}
	}

	created, err := scanFavorite(s.db.QueryRow(ctx, insertFavorite, fav.OwnerUserID, fav.Name, ids, keys))
	if err != nil {
		return core.Favorite{}, translateError(err)
	}
	return created, nil
}

func (s *Favorites) ListByOwner(ctx context.Context, owner int64) ([]core.Favorite, error) {
	rows, err := s.db.Query(ctx, listFavoritesByOwner, owner)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	defer rows.Close()

	favs := []core.Favorite{}
	for rows.Next() {
		f, err := scanFavorite(rows)
		if err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		favs = append(favs, f)
	}
	return favs, rows.Err()
}

func (s *Favorites) GetByOwner(ctx context.Context, id, owner int64) (core.Favorite, error) {
	f, err := scanFavorite(s.db.QueryRow(ctx, getFavoriteByOwner, id, owner))
	if err != nil {
		return core.Favorite{}, translateError(err)
	}
	return f, nil
}

func (s *Favorites) Rename(ctx context.Context, id, owner int64, name string) (core.Favorite, error) {
	f, err := scanFavorite(s.db.QueryRow(ctx, renameFavorite, id, owner, name))
	if err != nil {
		return core.Favorite{}, translateError(err)
	}
	return f, nil
}

func (s *Favorites) Delete(ctx context.Context, id, owner int64) error {
	tag, err := s.db.Exec(ctx, deleteFavorite, id, owner)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrFavoriteNotFound
	}
	return nil
}
