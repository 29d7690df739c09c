package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/JonMunkholm/facility-export/internal/logging"
)

// DefaultMaxFacilities caps a single selection when nothing is configured.
const DefaultMaxFacilities = 1000

// DefaultChunkSize is how many facilities are pre-loaded per round trip.
const DefaultChunkSize = 200

// FacilityRepository loads facilities with every related entity.
type FacilityRepository interface {
	// LoadGraphs returns the graphs for ids that exist. Missing ids are
	// absent from the map, not an error.
	LoadGraphs(ctx context.Context, ids []int64) (map[int64]*FacilityGraph, error)
}

// FavoriteRepository persists favorites. Every method is owner scoped; a
// favorite owned by someone else behaves as if it did not exist.
type FavoriteRepository interface {
	Create(ctx context.Context, fav Favorite) (Favorite, error)
	ListByOwner(ctx context.Context, owner int64) ([]Favorite, error)
	GetByOwner(ctx context.Context, id, owner int64) (Favorite, error)
	Rename(ctx context.Context, id, owner int64, name string) (Favorite, error)
	Delete(ctx context.Context, id, owner int64) error
}

// DocumentRenderer turns a facility document into bytes, e.g. a PDF.
type DocumentRenderer interface {
	Render(w io.Writer, doc FacilityDocument) error
}

// ServiceOptions configures a Service.
type ServiceOptions struct {
	MaxFacilities int
	ChunkSize     int
	Renderer      DocumentRenderer
	Activity      ActivityRecorder
	Now           func() time.Time
}

// Service provides the export operations: selection validation, CSV
// streaming, previews, single documents and favorites.
type Service struct {
	facilities FacilityRepository
	favorites  FavoriteRepository
	builder    *Builder
	renderer   DocumentRenderer
	activity   ActivityRecorder
	now        func() time.Time

	maxFacilities int
	chunkSize     int
}

// NewService creates a new Service instance.
func NewService(facilities FacilityRepository, favorites FavoriteRepository, builder *Builder, opts ServiceOptions) *Service {
	if opts.MaxFacilities <= 0 {
		opts.MaxFacilities = DefaultMaxFacilities
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Activity == nil {
		opts.Activity = discardActivity{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		facilities:    facilities,
		favorites:     favorites,
		builder:       builder,
		renderer:      opts.Renderer,
		activity:      opts.Activity,
		now:           opts.Now,
		maxFacilities: opts.MaxFacilities,
		chunkSize:     opts.ChunkSize,
	}
}

// Catalog returns the field catalog used for exports.
func (s *Service) Catalog() *Catalog {
	return s.builder.Catalog()
}

// MaxFacilities returns the selection size limit.
func (s *Service) MaxFacilities() int {
	return s.maxFacilities
}

// NewSelection validates and normalizes a selection. Facility ids are
// de-duplicated keeping first occurrence; field keys are trimmed and
// de-duplicated keeping caller order. Keys missing from the catalog stay in
// the selection and are skipped when rows are built, so a selection that
// names a retired field still exports. At least one key must resolve.
func (s *Service) NewSelection(owner int64, facilityIDs []int64, fieldKeys []string) (ExportSelection, error) {
	ids, err := s.normalizeFacilityIDs(facilityIDs)
	if err != nil {
		return ExportSelection{}, err
	}

	keys := normalizeFieldKeys(fieldKeys)
	if len(keys) == 0 {
		return ExportSelection{}, ErrNoFields
	}
	if err := s.requireKnownField(keys); err != nil {
		return ExportSelection{}, err
	}

	return ExportSelection{OwnerUserID: owner, FacilityIDs: ids, FieldKeys: keys}, nil
}

func (s *Service) normalizeFacilityIDs(facilityIDs []int64) ([]int64, error) {
	ids := make([]int64, 0, len(facilityIDs))
	seen := make(map[int64]bool, len(facilityIDs))
	for _, id := range facilityIDs {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, ErrNoFacilities
	}
	if len(ids) > s.maxFacilities {
		return nil, fmt.Errorf("%w: %d selected, limit is %d", ErrTooManyFacilities, len(ids), s.maxFacilities)
	}
	return ids, nil
}

func normalizeFieldKeys(fieldKeys []string) []string {
	keys := make([]string, 0, len(fieldKeys))
	seen := make(map[string]bool, len(fieldKeys))
	for _, k := range fieldKeys {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

// requireKnownField fails when none of keys is in the catalog.
func (s *Service) requireKnownField(keys []string) error {
	if unknown := s.Catalog().UnknownKeys(keys); len(unknown) == len(keys) {
		return &UnknownFieldsError{Keys: unknown}
	}
	return nil
}

// Headers returns the column labels for sel.
func (s *Service) Headers(sel ExportSelection) []FieldLabel {
	return s.builder.Headers(sel.FieldKeys)
}

// loadGraphs pre-loads facilities in chunks so related entities are fetched
// once per chunk rather than once per facility.
func (s *Service) loadGraphs(ctx context.Context, ids []int64, fn func(chunk []int64, graphs map[int64]*FacilityGraph) error) error {
	for start := 0; start < len(ids); start += s.chunkSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+s.chunkSize, len(ids))
		chunk := ids[start:end]

		graphs, err := s.facilities.LoadGraphs(ctx, chunk)
		if err != nil {
			return fmt.Errorf("load facilities: %w", err)
		}
		if err := fn(chunk, graphs); err != nil {
			return err
		}
	}
	return nil
}

// StreamRows builds one row per existing facility in selection order and
// hands it to fn. Facilities that no longer exist are skipped.
func (s *Service) StreamRows(ctx context.Context, sel ExportSelection, fn func(ExportRow) error) error {
	logger := logging.FromContext(ctx)

	return s.loadGraphs(ctx, sel.FacilityIDs, func(chunk []int64, graphs map[int64]*FacilityGraph) error {
		for _, id := range chunk {
			g, ok := graphs[id]
			if !ok {
				logger.Warn("facility missing from export", "facility_id", id)
				continue
			}
			if err := fn(s.builder.Build(g, sel.FieldKeys)); err != nil {
				return err
			}
		}
		return nil
	})
}

// ExportCSV writes sel as CSV to w and returns the number of data rows.
func (s *Service) ExportCSV(ctx context.Context, sel ExportSelection, w io.Writer) (int, error) {
	start := time.Now()

	cw := NewCSVWriter(w)
	if err := cw.WriteHeader(s.Headers(sel)); err != nil {
		return 0, err
	}
	if err := s.StreamRows(ctx, sel, cw.WriteRow); err != nil {
		return cw.Rows(), err
	}
	if err := cw.Flush(); err != nil {
		return cw.Rows(), err
	}

	entry := newActivityEntry(ctx, ActionExportCSV, sel.OwnerUserID)
	entry.FacilityCount = cw.Rows()
	entry.FieldCount = len(sel.FieldKeys)
	s.activity.Record(ctx, entry)

	logging.FromContext(ctx).Info("csv export completed",
		"rows", cw.Rows(),
		"fields", len(sel.FieldKeys),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return cw.Rows(), nil
}

// RenderedDocument is a rendered single-facility report.
type RenderedDocument struct {
	FacilityID int64
	OfficeCode string
	Data       []byte
}

// DocumentFields returns keys, or every catalog key when keys is empty.
// Unknown keys are kept and skipped at render time.
func (s *Service) DocumentFields(keys []string) ([]string, error) {
	keys = normalizeFieldKeys(keys)
	if len(keys) == 0 {
		return s.Catalog().AllKeys(), nil
	}
	if err := s.requireKnownField(keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// RenderFacility renders one facility's report with the configured renderer.
func (s *Service) RenderFacility(ctx context.Context, owner, facilityID int64, keys []string, secure bool) (*RenderedDocument, error) {
	if s.renderer == nil {
		return nil, fmt.Errorf("no document renderer configured")
	}
	keys, err := s.DocumentFields(keys)
	if err != nil {
		return nil, err
	}

	graphs, err := s.facilities.LoadGraphs(ctx, []int64{facilityID})
	if err != nil {
		return nil, fmt.Errorf("load facility: %w", err)
	}
	g, ok := graphs[facilityID]
	if !ok {
		return nil, ErrFacilityNotFound
	}

	doc := s.builder.BuildDocument(g, keys, s.now())
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, doc); err != nil {
		return nil, fmt.Errorf("render facility %d: %w", facilityID, err)
	}

	entry := newActivityEntry(ctx, ActionExportPDF, owner)
	entry.FacilityID = facilityID
	entry.FieldCount = len(keys)
	entry.Secure = secure
	s.activity.Record(ctx, entry)

	return &RenderedDocument{FacilityID: facilityID, OfficeCode: doc.OfficeCode, Data: buf.Bytes()}, nil
}

// recordActivity forwards to the configured recorder.
func (s *Service) recordActivity(ctx context.Context, entry ActivityEntry) {
	s.activity.Record(ctx, entry)
}

// logger returns a context logger for service operations.
func (s *Service) logger(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
