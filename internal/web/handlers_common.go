package web

// handlers_common.go holds request decoding, validation and download
// header helpers shared by the export handlers.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/facility-export/internal/core"
)

// MaxRequestBodySize bounds JSON and form bodies (1MB).
const MaxRequestBodySize = 1 << 20

// downloadTimestamp is the timestamp layout used in download filenames.
const downloadTimestamp = "20060102_150405"

// selectionRequest is the body of preview, CSV and batch requests.
type selectionRequest struct {
	FacilityIDs []int64  `json:"facility_ids" validate:"required,min=1"`
	FieldKeys   []string `json:"field_keys" validate:"omitempty,dive,required,max=100"`
	Secure      bool     `json:"secure"`
}

// favoriteRequest is the body of favorite create and rename requests.
type favoriteRequest struct {
	Name        string   `json:"name" validate:"required,max=100"`
	FacilityIDs []int64  `json:"facility_ids"`
	FieldKeys   []string `json:"field_keys"`
}

// newValidator returns a validator that reports fields by their JSON name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest validates req and converts failures to a validationError
// wrapping the sentinel for the first failing field.
func (s *Server) validateRequest(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}

	fields := make(map[string]string, len(verrs))
	var cause error
	for _, fe := range verrs {
		name := fe.Field()
		if i := strings.IndexByte(name, '['); i > 0 {
			name = name[:i]
		}
		if _, seen := fields[name]; !seen {
			fields[name] = fieldMessage(fe)
		}
		if cause == nil {
			cause = sentinelForField(name)
		}
	}
	return &validationError{fields: fields, cause: cause}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must have at least " + fe.Param() + " entries"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}

func sentinelForField(name string) error {
	switch name {
	case "facility_ids":
		return core.ErrNoFacilities
	case "field_keys":
		return core.ErrNoFields
	case "name":
		return core.ErrFavoriteNameRequired
	default:
		return errInvalidRequest
	}
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errInvalidRequest)
		}
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return nil
}

// isJSONBody reports whether the request body is JSON.
func isJSONBody(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// decodeSelection reads a selection from a JSON or form body. Form bodies
// accept repeated facility_ids/field_keys values or comma-separated lists.
func (s *Server) decodeSelection(w http.ResponseWriter, r *http.Request) (selectionRequest, error) {
	var req selectionRequest
	if isJSONBody(r) {
		if err := decodeJSON(w, r, &req); err != nil {
			return req, err
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
		if err := r.ParseForm(); err != nil {
			return req, fmt.Errorf("%w: %v", errInvalidRequest, err)
		}
		ids, err := parseIDList(formValues(r.PostForm, "facility_ids"))
		if err != nil {
			return req, err
		}
		req.FacilityIDs = ids
		req.FieldKeys = splitList(formValues(r.PostForm, "field_keys"))
		req.Secure = isTruthy(r.PostForm.Get("secure"))
	}

	return req, s.validateRequest(&req)
}

// formValues returns the values of name, also accepting the name[] form.
func formValues(form url.Values, name string) []string {
	return append(form[name], form[name+"[]"]...)
}

// splitList flattens comma-separated values, dropping blanks.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseIDList(values []string) ([]int64, error) {
	parts := splitList(values)
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, &validationError{
				fields: map[string]string{"facility_ids": "must be integers"},
				cause:  errInvalidRequest,
			}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", errInvalidRequest, name)
	}
	return id, nil
}

// setAttachment sets the download headers for a file named name.
func setAttachment(w http.ResponseWriter, contentType, name string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
}

// setNoCache forbids any intermediary from storing the response. Used for
// secure downloads.
func setNoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
}

// timestamp formats t for download filenames.
func timestamp(t time.Time) string {
	return t.Format(downloadTimestamp)
}
