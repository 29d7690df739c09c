package core

import (
	"context"
	"errors"
	"time"
)

// DefaultPreviewLimit is how many facilities a preview renders.
const DefaultPreviewLimit = 20

// errPreviewFull stops row streaming once the preview limit is reached.
var errPreviewFull = errors.New("preview full")

// PreviewResponse is a sample of an export, rendered exactly as the CSV
// would render it.
type PreviewResponse struct {
	Headers          []FieldLabel `json:"headers"`
	Rows             []ExportRow  `json:"rows"`
	TotalFacilities  int          `json:"totalFacilities"`
	Truncated        bool         `json:"truncated"`
	ProcessingTimeMs int64        `json:"processingTimeMs"`
}

// Preview builds up to limit rows of sel.
func (s *Service) Preview(ctx context.Context, sel ExportSelection, limit int) (*PreviewResponse, error) {
	start := time.Now()
	if limit <= 0 || limit > DefaultPreviewLimit {
		limit = DefaultPreviewLimit
	}

	ids := sel.FacilityIDs
	if len(ids) > limit {
		ids = ids[:limit]
	}
	sample := ExportSelection{OwnerUserID: sel.OwnerUserID, FacilityIDs: ids, FieldKeys: sel.FieldKeys}

	resp := &PreviewResponse{
		Headers:         s.Headers(sel),
		Rows:            make([]ExportRow, 0, len(ids)),
		TotalFacilities: len(sel.FacilityIDs),
		Truncated:       len(sel.FacilityIDs) > limit,
	}

	err := s.StreamRows(ctx, sample, func(row ExportRow) error {
		resp.Rows = append(resp.Rows, row)
		if len(resp.Rows) >= limit {
			return errPreviewFull
		}
		return nil
	})
	if err != nil && !errors.Is(err, errPreviewFull) {
		return nil, err
	}

	resp.ProcessingTimeMs = time.Since(start).Milliseconds()
	return resp, nil
}
