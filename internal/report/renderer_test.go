package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/facility-export/internal/core"
)

func testDocument(entries int) core.FacilityDocument {
	section := core.DocumentSection{Group: core.GroupFacility, Title: "Facility"}
	for i := 0; i < entries; i++ {
		section.Entries = append(section.Entries, core.DocumentEntry{
			Label: "Name",
			Value: strings.Repeat("Sunrise Care Home ", 1+i%5),
		})
	}
	return core.FacilityDocument{
		FacilityID:  1,
		OfficeCode:  "1370001234",
		Title:       "Sunrise report",
		GeneratedAt: time.Date(2024, time.April, 1, 10, 30, 0, 0, time.UTC),
		Sections:    []core.DocumentSection{section},
	}
}

func TestRender_ProducesPDF(t *testing.T) {
	r, err := New(Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, testDocument(3)); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header: %q", buf.Bytes()[:min(16, buf.Len())])
	}
	if !bytes.Contains(buf.Bytes(), []byte("%%EOF")) {
		t.Error("output has no PDF trailer")
	}
}

func TestRender_Deterministic(t *testing.T) {
	r, _ := New(Options{})
	doc := testDocument(2)

	var a, b bytes.Buffer
	if err := r.Render(&a, doc); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if err := r.Render(&b, doc); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("rendering the same document twice produced different bytes")
	}
}

func TestRender_ManyEntriesPaginate(t *testing.T) {
	r, _ := New(Options{})

	var buf bytes.Buffer
	if err := r.Render(&buf, testDocument(120)); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if n := bytes.Count(buf.Bytes(), []byte("/Type /Page\n")); n < 2 {
		t.Errorf("expected multiple pages, got %d", n)
	}
}

func TestNew_MissingFont(t *testing.T) {
	if _, err := New(Options{FontPath: "/nonexistent/font.ttf"}); err == nil {
		t.Error("New() expected error for missing font")
	}
}
