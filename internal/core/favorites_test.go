package core

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestSaveFavorite_RoundTrip(t *testing.T) {
	fx := newServiceFixture(t, ServiceOptions{})
	ctx := context.Background()

	saved, err := fx.svc.SaveFavorite(ctx, 10, "  月次報告  ", []int64{4, 2, 4}, []string{"land_monthly_rent", "facility_name"})
	if err != nil {
		t.Fatalf("SaveFavorite() error = %v", err)
	}
	if saved.Name != "月次報告" {
		t.Errorf("Name = %q, want trimmed", saved.Name)
	}

	got, err := fx.svc.GetFavorite(ctx, 10, saved.ID)
	if err != nil {
		t.Fatalf("GetFavorite() error = %v", err)
	}
	if !reflect.DeepEqual(got.FacilityIDs, []int64{4, 2}) {
		t.Errorf("FacilityIDs = %v, want [4 2]", got.FacilityIDs)
	}
	if !reflect.DeepEqual(got.FieldKeys, []string{"land_monthly_rent", "facility_name"}) {
		t.Errorf("FieldKeys = %v, order not preserved", got.FieldKeys)
	}
}

func TestSaveFavorite_KeepsRetiredFieldKeys(t *testing.T) {
	fx := newServiceFixture(t, ServiceOptions{})
	ctx := context.Background()
	keys := []string{"facility_name", "removed_field"}

	saved, err := fx.svc.SaveFavorite(ctx, 10, "Legacy", []int64{1}, keys)
	if err != nil {
		t.Fatalf("SaveFavorite() error = %v", err)
	}
	got, err := fx.svc.GetFavorite(ctx, 10, saved.ID)
	if err != nil {
		t.Fatalf("GetFavorite() error = %v", err)
	}
	if !reflect.DeepEqual(got.FieldKeys, keys) {
		t.Errorf("FieldKeys = %v, want %v", got.FieldKeys, keys)
	}

	// The stored selection still exports.
	if _, err := fx.svc.NewSelection(10, got.FacilityIDs, got.FieldKeys); err != nil {
		t.Errorf("NewSelection(favorite) error = %v", err)
	}
}

func TestSaveFavorite_DuplicateName(t *testing.T) {
	fx := newServiceFixture(t, ServiceOptions{})
	ctx := context.Background()
	ids, keys := []int64{1}, []string{"facility_name"}

	if _, err := fx.svc.SaveFavorite(ctx, 10, "Weekly", ids, keys); err != nil {
		t.Fatalf("first SaveFavorite() error = %v", err)
	}
	if _, err := fx.svc.SaveFavorite(ctx, 10, "Weekly", ids, keys); !errors.Is(err, ErrDuplicateFavoriteName) {
		t.Errorf("duplicate error = %v, want ErrDuplicateFavoriteName", err)
	}
	// Same name under another owner is fine.
	if _, err := fx.svc.SaveFavorite(ctx, 11, "Weekly", ids, keys); err != nil {
		t.Errorf("other owner SaveFavorite() error = %v", err)
	}
}

func TestSaveFavorite_Validation(t *testing.T) {
	fx := newServiceFixture(t, ServiceOptions{})
	ctx := context.Background()

	tests := []struct {
		name    string
		favName string
		ids     []int64
		keys    []string
		wantErr error
	}{
		{"blank name", "  ", []int64{1}, []string{"facility_name"}, ErrFavoriteNameRequired},
		{"long name", strings.Repeat("名", MaxFavoriteNameLength+1), []int64{1}, []string{"facility_name"}, ErrFavoriteNameRequired},
		{"no facilities", "x", nil, []string{"facility_name"}, ErrNoFacilities},
		{"no fields", "x", []int64{1}, nil, ErrNoFields},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.svc.SaveFavorite(ctx, 1, tt.favName, tt.ids, tt.keys)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SaveFavorite() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	favs, _ := fx.svc.ListFavorites(ctx, 1)
	if len(favs) != 0 {
		t.Errorf("rejected favorites were stored: %v", favs)
	}
}

func TestFavorites_OwnerScoping(t *testing.T) {
	fx := newServiceFixture(t, ServiceOptions{})
	ctx := context.Background()

	mine, err := fx.svc.SaveFavorite(ctx, 1, "Mine", []int64{1}, []string{"facility_name"})
	if err != nil {
		t.Fatalf("SaveFavorite() error = %v", err)
	}

	if _, err := fx.svc.GetFavorite(ctx, 2, mine.ID); !errors.Is(err, ErrFavoriteNotFound) {
		t.Errorf("cross-owner GetFavorite error = %v, want ErrFavoriteNotFound", err)
	}
	if _, err := fx.svc.RenameFavorite(ctx, 2, mine.ID, "Stolen"); !errors.Is(err, ErrFavoriteNotFound) {
		t.Errorf("cross-owner RenameFavorite error = %v, want ErrFavoriteNotFound", err)
	}
	if err := fx.svc.DeleteFavorite(ctx, 2, mine.ID); !errors.Is(err, ErrFavoriteNotFound) {
		t.Errorf("cross-owner DeleteFavorite error = %v, want ErrFavoriteNotFound", err)
	}

	others, err := fx.svc.ListFavorites(ctx, 2)
	if err != nil {
		t.Fatalf("ListFavorites() error = %v", err)
	}
	if others == nil || len(others) != 0 {
		t.Errorf("ListFavorites(other) = %v, want empty non-nil", others)
	}
}

func TestRenameAndDeleteFavorite(t *testing.T) {
	fx := newServiceFixture(t, ServiceOptions{})
	ctx := context.Background()

	a, _ := fx.svc.SaveFavorite(ctx, 1, "A", []int64{1}, []string{"facility_name"})
	b, _ := fx.svc.SaveFavorite(ctx, 1, "B", []int64{1}, []string{"facility_name"})

	renamed, err := fx.svc.RenameFavorite(ctx, 1, a.ID, "A2")
	if err != nil {
		t.Fatalf("RenameFavorite() error = %v", err)
	}
	if renamed.Name != "A2" {
		t.Errorf("Name = %q, want A2", renamed.Name)
	}
	if _, err := fx.svc.RenameFavorite(ctx, 1, b.ID, "A2"); !errors.Is(err, ErrDuplicateFavoriteName) {
		t.Errorf("rename to taken name error = %v", err)
	}

	if err := fx.svc.DeleteFavorite(ctx, 1, a.ID); err != nil {
		t.Fatalf("DeleteFavorite() error = %v", err)
	}
	if err := fx.svc.DeleteFavorite(ctx, 1, a.ID); !errors.Is(err, ErrFavoriteNotFound) {
		t.Errorf("second delete error = %v, want ErrFavoriteNotFound", err)
	}

	favs, _ := fx.svc.ListFavorites(ctx, 1)
	if len(favs) != 1 || favs[0].ID != b.ID {
		t.Errorf("ListFavorites() = %v, want only B", favs)
	}

	want := []ActivityAction{ActionFavoriteCreate, ActionFavoriteCreate, ActionFavoriteRename, ActionFavoriteDelete}
	if got := fx.activity.actions(); !reflect.DeepEqual(got, want) {
		t.Errorf("activity = %v, want %v", got, want)
	}
}
