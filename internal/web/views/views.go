// Package views holds the HTML fragments returned to HTMX requests.
package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/facility-export/internal/core"
)

// ErrorAlert renders an inline error message with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div class="alert alert-error" role="alert">`)
		fmt.Fprintf(&b, `<p class="alert-message">%s</p>`, templ.EscapeString(message))
		if action != "" {
			fmt.Fprintf(&b, `<p class="alert-action">%s</p>`, templ.EscapeString(action))
		}
		if code != "" {
			fmt.Fprintf(&b, `<p class="alert-code">Code: %s</p>`, templ.EscapeString(code))
		}
		b.WriteString(`</div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// PreviewTable renders preview rows as a table fragment. Cell values are
// the exact strings the CSV would contain.
func PreviewTable(p *core.PreviewResponse) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div class="export-preview">`)
		b.WriteString(`<table class="preview-table"><thead><tr>`)
		for _, h := range p.Headers {
			fmt.Fprintf(&b, `<th data-key="%s">%s</th>`, templ.EscapeString(h.Key), templ.EscapeString(h.Label))
		}
		b.WriteString(`</tr></thead><tbody>`)
		for _, row := range p.Rows {
			fmt.Fprintf(&b, `<tr data-facility-id="%d">`, row.FacilityID)
			for _, c := range row.Cells {
				fmt.Fprintf(&b, `<td>%s</td>`, templ.EscapeString(c.Value))
			}
			b.WriteString(`</tr>`)
		}
		b.WriteString(`</tbody></table>`)

		fmt.Fprintf(&b, `<p class="preview-summary">%d / %d 件を表示`, len(p.Rows), p.TotalFacilities)
		if p.Truncated {
			b.WriteString(`（先頭のみ）`)
		}
		b.WriteString(`</p></div>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}
