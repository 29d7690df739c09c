package web

import (
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/facility-export/internal/core"
	"github.com/JonMunkholm/facility-export/internal/logging"
)

// batchStartResponse is returned when a batch is accepted.
type batchStartResponse struct {
	BatchID    string           `json:"batch_id"`
	TotalCount int              `json:"total_count"`
	Status     core.BatchStatus `json:"status"`
}

// handleStartBatch accepts a batch PDF export. Without field_keys every
// catalog field is rendered.
func (s *Server) handleStartBatch(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeSelection(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	keys, err := s.service.DocumentFields(req.FieldKeys)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	sel, err := s.service.NewSelection(ownerID(r), req.FacilityIDs, keys)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	p, err := s.batches.Start(WithRequestMetadata(r.Context(), r), sel, req.Secure)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSONStatus(w, http.StatusAccepted, batchStartResponse{
		BatchID:    p.BatchID,
		TotalCount: p.TotalCount,
		Status:     p.Status,
	})
}

// handleBatchProgress returns the progress of a batch.
func (s *Server) handleBatchProgress(w http.ResponseWriter, r *http.Request) {
	p, err := s.batches.Progress(r.Context(), ownerID(r), chi.URLParam(r, "batchID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, p)
}

// handleBatchResult returns the outcome of a batch, including the
// per-facility errors of a finished one.
func (s *Server) handleBatchResult(w http.ResponseWriter, r *http.Request) {
	res, err := s.batches.Result(ownerID(r), chi.URLParam(r, "batchID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if res.Errors == nil {
		res.Errors = []core.FacilityError{}
	}
	writeJSON(w, res)
}

// handleBatchDownload serves the archive, or the single document of a
// one-facility batch.
func (s *Server) handleBatchDownload(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")
	res, err := s.batches.Download(WithRequestMetadata(r.Context(), r), ownerID(r), batchID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	f, err := os.Open(res.DownloadPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Purged between the status check and the open.
			err = core.ErrBatchNotFound
		}
		s.respondError(w, r, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	contentType := "application/zip"
	if res.SinglePath != "" {
		contentType = "application/pdf"
	}
	if res.Secure {
		setNoCache(w)
	}
	setAttachment(w, contentType, res.DownloadName())

	logging.ForBatch(r.Context(), batchID).Info("batch download", "bytes", info.Size())
	http.ServeContent(w, r, res.DownloadName(), info.ModTime(), f)
}

// handleCancelBatch requests cancellation of a running batch.
func (s *Server) handleCancelBatch(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")
	if err := s.batches.Cancel(ownerID(r), batchID); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusAccepted, map[string]string{
		"batch_id": batchID,
		"status":   "cancelling",
	})
}
