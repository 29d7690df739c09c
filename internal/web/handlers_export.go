package web

import (
	"net/http"

	"github.com/JonMunkholm/facility-export/internal/core"
	"github.com/JonMunkholm/facility-export/internal/logging"
	"github.com/JonMunkholm/facility-export/internal/web/views"
)

// selectionFromRequest decodes and validates the request selection.
func (s *Server) selectionFromRequest(w http.ResponseWriter, r *http.Request) (selectionRequest, core.ExportSelection, error) {
	req, err := s.decodeSelection(w, r)
	if err != nil {
		return req, core.ExportSelection{}, err
	}
	sel, err := s.service.NewSelection(ownerID(r), req.FacilityIDs, req.FieldKeys)
	return req, sel, err
}

// handlePreview returns the first rows of an export exactly as the CSV
// would contain them. HTMX requests get a table fragment.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	_, sel, err := s.selectionFromRequest(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	preview, err := s.service.Preview(WithRequestMetadata(r.Context(), r), sel, core.DefaultPreviewLimit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := views.PreviewTable(preview).Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render preview", "error", err)
		}
		return
	}
	writeJSON(w, preview)
}

// handleExportCSV streams the selection as a CSV download.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	_, sel, err := s.selectionFromRequest(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	setAttachment(w, "text/csv; charset=UTF-8", "facility_export_"+timestamp(s.now())+".csv")

	cw := &commitWriter{w: w}
	if _, err := s.service.ExportCSV(WithRequestMetadata(r.Context(), r), sel, cw); err != nil {
		if !cw.committed {
			w.Header().Del("Content-Disposition")
			s.respondError(w, r, err)
			return
		}
		// Part of the file is already on the wire; abort the connection so
		// the client never sees a truncated CSV as complete.
		logging.FromContext(r.Context()).Error("csv export aborted", "error", err)
		panic(http.ErrAbortHandler)
	}
}

// handleFacilityPDF renders one facility's report. fields is an optional
// comma-separated key list; secure=1 marks a confidential download.
func (s *Server) handleFacilityPDF(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	q := r.URL.Query()
	keys := splitList(q["fields"])
	secure := isTruthy(q.Get("secure"))

	doc, err := s.service.RenderFacility(WithRequestMetadata(r.Context(), r), ownerID(r), id, keys, secure)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	name := "facility_report_" + core.SafeFileCode(doc.OfficeCode) + "_" + timestamp(s.now()) + ".pdf"
	if secure {
		name = "secure_" + name
		setNoCache(w)
	}
	setAttachment(w, "application/pdf", name)
	w.Write(doc.Data)
}

// commitWriter records whether any byte reached the client.
type commitWriter struct {
	w         http.ResponseWriter
	committed bool
}

func (c *commitWriter) Write(p []byte) (int, error) {
	if len(p) > 0 {
		c.committed = true
	}
	return c.w.Write(p)
}

// Flush forwards to the underlying writer when it can flush.
func (c *commitWriter) Flush() {
	_ = http.NewResponseController(c.w).Flush()
}
