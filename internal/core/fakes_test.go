package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

type fakeFacilityRepo struct {
	mu      sync.Mutex
	graphs  map[int64]*FacilityGraph
	err     error
	calls   int
	batches [][]int64
}

func newFakeFacilityRepo(graphs ...*FacilityGraph) *fakeFacilityRepo {
	f := &fakeFacilityRepo{graphs: make(map[int64]*FacilityGraph)}
	for _, g := range graphs {
		f.graphs[g.ID()] = g
	}
	return f
}

func (f *fakeFacilityRepo) LoadGraphs(ctx context.Context, ids []int64) (map[int64]*FacilityGraph, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.batches = append(f.batches, append([]int64(nil), ids...))
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[int64]*FacilityGraph, len(ids))
	for _, id := range ids {
		if g, ok := f.graphs[id]; ok {
			out[id] = g
		}
	}
	return out, nil
}

type fakeFavoriteRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]Favorite
}

func newFakeFavoriteRepo() *fakeFavoriteRepo {
	return &fakeFavoriteRepo{byID: make(map[int64]Favorite)}
}

func (f *fakeFavoriteRepo) nameTaken(owner int64, name string, except int64) bool {
	for id, fav := range f.byID {
		if id != except && fav.OwnerUserID == owner && fav.Name == name {
			return true
		}
	}
	return false
}

func (f *fakeFavoriteRepo) Create(ctx context.Context, fav Favorite) (Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.nameTaken(fav.OwnerUserID, fav.Name, 0) {
		return Favorite{}, ErrDuplicateFavoriteName
	}
	f.nextID++
	fav.ID = f.nextID
	fav.CreatedAt = time.Now()
	fav.UpdatedAt = fav.CreatedAt
	f.byID[fav.ID] = fav
	return fav, nil
}

func (f *fakeFavoriteRepo) ListByOwner(ctx context.Context, owner int64) ([]Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Favorite
	for _, fav := range f.byID {
		if fav.OwnerUserID == owner {
			out = append(out, fav)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeFavoriteRepo) GetByOwner(ctx context.Context, id, owner int64) (Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fav, ok := f.byID[id]
	if !ok || fav.OwnerUserID != owner {
		return Favorite{}, ErrFavoriteNotFound
	}
	return fav, nil
}

func (f *fakeFavoriteRepo) Rename(ctx context.Context, id, owner int64, name string) (Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fav, ok := f.byID[id]
	if !ok || fav.OwnerUserID != owner {
		return Favorite{}, ErrFavoriteNotFound
	}
	if f.nameTaken(owner, name, id) {
		return Favorite{}, ErrDuplicateFavoriteName
	}
	fav.Name = name
	fav.UpdatedAt = time.Now()
	f.byID[id] = fav
	return fav, nil
}

func (f *fakeFavoriteRepo) Delete(ctx context.Context, id, owner int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fav, ok := f.byID[id]
	if !ok || fav.OwnerUserID != owner {
		return ErrFavoriteNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeRenderer writes a tiny marker document. Facilities listed in failFor
// return an error; those in panicFor panic. gate, when set, blocks each
// render until a value is received.
type fakeRenderer struct {
	mu       sync.Mutex
	failFor  map[int64]bool
	panicFor map[int64]bool
	gate     chan struct{}
	rendered []int64
}

func (r *fakeRenderer) Render(w io.Writer, doc FacilityDocument) error {
	if r.gate != nil {
		<-r.gate
	}
	if r.panicFor[doc.FacilityID] {
		panic("renderer exploded")
	}
	if r.failFor[doc.FacilityID] {
		return errors.New("font missing glyph")
	}
	r.mu.Lock()
	r.rendered = append(r.rendered, doc.FacilityID)
	r.mu.Unlock()
	_, err := fmt.Fprintf(w, "%%PDF-fake %d %s\n", doc.FacilityID, doc.Title)
	return err
}

type recordingActivity struct {
	mu      sync.Mutex
	entries []ActivityEntry
}

func (r *recordingActivity) Record(ctx context.Context, e ActivityEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *recordingActivity) actions() []ActivityAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ActivityAction, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Action
	}
	return out
}

func facilityGraph(id int64, name string) *FacilityGraph {
	return &FacilityGraph{Facility: Record{
		"id":            id,
		"facility_name": name,
		"office_code":   fmt.Sprintf("13700%05d", id),
	}}
}
