package core

import (
	"context"
	"log/slog"
	"time"
)

// ActivityAction represents the type of export activity being recorded.
type ActivityAction string

const (
	ActionExportCSV      ActivityAction = "export_csv"
	ActionExportPDF      ActivityAction = "export_pdf"
	ActionBatchStart     ActivityAction = "batch_start"
	ActionBatchDownload  ActivityAction = "batch_download"
	ActionFavoriteCreate ActivityAction = "favorite_create"
	ActionFavoriteRename ActivityAction = "favorite_rename"
	ActionFavoriteDelete ActivityAction = "favorite_delete"
)

// ActivitySeverity represents the severity level of an activity entry.
type ActivitySeverity string

const (
	SeverityLow    ActivitySeverity = "low"
	SeverityMedium ActivitySeverity = "medium"
	SeverityHigh   ActivitySeverity = "high"
)

// ActivityEntry is one recorded export activity.
type ActivityEntry struct {
	Action        ActivityAction   `json:"action"`
	Severity      ActivitySeverity `json:"severity"`
	OwnerUserID   int64            `json:"ownerUserId"`
	IPAddress     string           `json:"ipAddress,omitempty"`
	UserAgent     string           `json:"userAgent,omitempty"`
	FacilityCount int              `json:"facilityCount,omitempty"`
	FieldCount    int              `json:"fieldCount,omitempty"`
	FacilityID    int64            `json:"facilityId,omitempty"`
	BatchID       string           `json:"batchId,omitempty"`
	FavoriteID    int64            `json:"favoriteId,omitempty"`
	Secure        bool             `json:"secure,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// ActivityRecorder records export activity. Implementations must not fail
// the operation being recorded.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry)
}

// determineSeverity returns the appropriate severity for an action.
func determineSeverity(action ActivityAction) ActivitySeverity {
	switch action {
	case ActionExportCSV, ActionExportPDF, ActionBatchDownload:
		return SeverityHigh
	case ActionFavoriteCreate, ActionFavoriteRename, ActionFavoriteDelete:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// newActivityEntry fills the request metadata carried by ctx.
func newActivityEntry(ctx context.Context, action ActivityAction, owner int64) ActivityEntry {
	return ActivityEntry{
		Action:      action,
		Severity:    determineSeverity(action),
		OwnerUserID: owner,
		IPAddress:   GetIPAddressFromContext(ctx),
		UserAgent:   GetUserAgentFromContext(ctx),
		CreatedAt:   time.Now(),
	}
}

// SlogActivityRecorder writes activity as structured log entries.
type SlogActivityRecorder struct {
	logger *slog.Logger
}

// NewSlogActivityRecorder creates a recorder. A nil logger uses the default.
func NewSlogActivityRecorder(logger *slog.Logger) *SlogActivityRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogActivityRecorder{logger: logger}
}

// Record logs entry at a level matching its severity.
func (r *SlogActivityRecorder) Record(ctx context.Context, entry ActivityEntry) {
	if entry.Severity == "" {
		entry.Severity = determineSeverity(entry.Action)
	}

	attrs := []slog.Attr{
		slog.String("action", string(entry.Action)),
		slog.String("severity", string(entry.Severity)),
		slog.Int64("owner_user_id", entry.OwnerUserID),
	}
	if entry.IPAddress != "" {
		attrs = append(attrs, slog.String("ip", entry.IPAddress))
	}
	if entry.UserAgent != "" {
		attrs = append(attrs, slog.String("user_agent", entry.UserAgent))
	}
	if entry.FacilityCount > 0 {
		attrs = append(attrs, slog.Int("facility_count", entry.FacilityCount))
	}
	if entry.FieldCount > 0 {
		attrs = append(attrs, slog.Int("field_count", entry.FieldCount))
	}
	if entry.FacilityID != 0 {
		attrs = append(attrs, slog.Int64("facility_id", entry.FacilityID))
	}
	if entry.BatchID != "" {
		attrs = append(attrs, slog.String("batch_id", entry.BatchID))
	}
	if entry.FavoriteID != 0 {
		attrs = append(attrs, slog.Int64("favorite_id", entry.FavoriteID))
	}
	if entry.Secure {
		attrs = append(attrs, slog.Bool("secure", true))
	}

	level := slog.LevelInfo
	if entry.Severity == SeverityLow {
		level = slog.LevelDebug
	}
	r.logger.LogAttrs(ctx, level, "export activity", attrs...)
}

// discardActivity is used when no recorder is configured.
type discardActivity struct{}

func (discardActivity) Record(context.Context, ActivityEntry) {}
