package views

import (
	"context"
	"strings"
	"testing"

	"github.com/JonMunkholm/facility-export/internal/core"
)

func TestErrorAlert_Escapes(t *testing.T) {
	var b strings.Builder
	if err := ErrorAlert(`<script>x</script>`, "Retry", "EXP001").Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := b.String()
	if strings.Contains(out, "<script>") {
		t.Errorf("markup not escaped: %s", out)
	}
	if !strings.Contains(out, "Code: EXP001") || !strings.Contains(out, "Retry") {
		t.Errorf("missing code or action: %s", out)
	}
}

func TestPreviewTable(t *testing.T) {
	p := &core.PreviewResponse{
		Headers: []core.FieldLabel{{Key: "facility_name", Label: "施設名"}, {Key: "land_ownership_type", Label: "土地所有形態"}},
		Rows: []core.ExportRow{
			{FacilityID: 1, Cells: []core.RowCell{{Key: "facility_name", Value: "A & B"}, {Key: "land_ownership_type", Value: ""}}},
		},
		TotalFacilities: 30,
		Truncated:       true,
	}

	var b strings.Builder
	if err := PreviewTable(p).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := b.String()

	for _, want := range []string{
		`<th data-key="facility_name">施設名</th>`,
		`<tr data-facility-id="1">`,
		`<td>A &amp; B</td><td></td>`,
		`1 / 30 件を表示（先頭のみ）`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}
