package core

// convert.go turns stored facility values into display strings.
//
// Stored data is messy: dates arrive as time.Time, pgtype.Date or strings
// from attribute documents; money as pgtype.Numeric, floats or "1,500円".
// Every Format* function is total. Malformed or absent input resolves to the
// configured empty value, never to an error, so one bad cell cannot abort an
// export of hundreds of facilities.

import (
	"encoding/json"
	"html"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/width"
)

// FormatOptions controls value rendering.
type FormatOptions struct {
	DatePattern      string // YYYY, MM and DD tokens are substituted
	EmptyValue       string // rendered for absent or rejected values
	TextMaxLength    int    // in runes
	TruncationMarker string
	CurrencyMax      int64
}

// DefaultFormatOptions returns the options used when nothing is configured.
func DefaultFormatOptions() FormatOptions {
	return FormatOptions{
		DatePattern:      "YYYY年MM月DD日",
		EmptyValue:       "—",
		TextMaxLength:    100,
		TruncationMarker: "...",
		CurrencyMax:      1_000_000_000_000_000,
	}
}

var (
	// decimalRegex matches a plain decimal after cleanup.
	decimalRegex = regexp.MustCompile(`^([+-]?)(\d+)(?:\.(\d*))?$`)

	// tagRegex catches markup that survives sanitizing, such as tags that
	// were entity-escaped in the source.
	tagRegex = regexp.MustCompile(`<[^>]*>`)

	// tagOpenRegex matches an unterminated tag opener left after unescaping.
	tagOpenRegex = regexp.MustCompile(`<+([!/?A-Za-z])`)

	// newlineReplacer folds CRLF and lone CR to LF. The CSV writer emits
	// every LF as CRLF.
	newlineReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

	// dateLayouts are tried in order for string-typed dates.
	dateLayouts = []string{
		"2006-01-02",
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006/01/02",
		"2006/1/2",
		"2006.01.02",
		"20060102",
	}

	currencyNoise = strings.NewReplacer(",", "", "円", "", "¥", "", "￥", "", " ", "", "　", "")
)

// Formatter renders raw values per ValueType. It is safe for concurrent use.
type Formatter struct {
	opts   FormatOptions
	policy *bluemonday.Policy
	lang   language.Tag
}

// NewFormatter creates a formatter. Zero fields in opts take their defaults.
func NewFormatter(opts FormatOptions) *Formatter {
	def := DefaultFormatOptions()
	if opts.DatePattern == "" {
		opts.DatePattern = def.DatePattern
	}
	if opts.TextMaxLength <= 0 {
		opts.TextMaxLength = def.TextMaxLength
	}
	if opts.CurrencyMax <= 0 {
		opts.CurrencyMax = def.CurrencyMax
	}
	return &Formatter{
		opts:   opts,
		policy: bluemonday.StrictPolicy(),
		lang:   language.Japanese,
	}
}

// EmptyValue returns the placeholder for absent values.
func (f *Formatter) EmptyValue() string {
	return f.opts.EmptyValue
}

// Format renders the value of d found on rec.
func (f *Formatter) Format(d FieldDescriptor, rec Record) string {
	switch d.Type {
	case ValueText:
		return f.FormatText(rec[d.Attr])
	case ValueDate:
		return f.FormatDate(rec[d.Attr])
	case ValueCurrency:
		return f.FormatCurrency(rec[d.Attr])
	case ValueInteger:
		return f.FormatInteger(rec[d.Attr])
	case ValueEnum:
		return f.FormatEnum(rec[d.Attr], d.Enum)
	case ValuePeriod:
		return f.FormatPeriod(rec[d.Attr], rec[d.EndAttr])
	default:
		return f.opts.EmptyValue
	}
}

// FormatDate renders a date using the configured pattern.
func (f *Formatter) FormatDate(raw any) string {
	t, ok := toTime(raw)
	if !ok {
		return f.opts.EmptyValue
	}
	return f.applyDatePattern(t)
}

// FormatPeriod renders a start/end pair joined by 〜.
func (f *Formatter) FormatPeriod(start, end any) string {
	s, sok := toTime(start)
	e, eok := toTime(end)

	switch {
	case sok && eok:
		return f.applyDatePattern(s) + " 〜 " + f.applyDatePattern(e)
	case sok:
		return f.applyDatePattern(s) + " 〜"
	case eok:
		return "〜 " + f.applyDatePattern(e)
	default:
		return f.opts.EmptyValue
	}
}

func (f *Formatter) applyDatePattern(t time.Time) string {
	r := strings.NewReplacer(
		"YYYY", strconv.Itoa(t.Year()),
		"MM", twoDigits(int(t.Month())),
		"DD", twoDigits(t.Day()),
	)
	return r.Replace(f.opts.DatePattern)
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// toTime extracts a calendar date from a driver value.
func toTime(raw any) (time.Time, bool) {
	var t time.Time
	switch v := raw.(type) {
	case time.Time:
		t = v
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		t = *v
	case pgtype.Date:
		if !v.Valid || v.InfinityModifier != pgtype.Finite {
			return time.Time{}, false
		}
		t = v.Time
	case pgtype.Timestamp:
		if !v.Valid || v.InfinityModifier != pgtype.Finite {
			return time.Time{}, false
		}
		t = v.Time
	case pgtype.Timestamptz:
		if !v.Valid || v.InfinityModifier != pgtype.Finite {
			return time.Time{}, false
		}
		t = v.Time
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		parsed := false
		for _, layout := range dateLayouts {
			if p, err := time.Parse(layout, s); err == nil {
				t, parsed = p, true
				break
			}
		}
		if !parsed {
			return time.Time{}, false
		}
	default:
		return time.Time{}, false
	}
	if t.IsZero() {
		return time.Time{}, false
	}
	return t, true
}

// FormatCurrency renders yen with grouped thousands. Fractional digits are
// kept only when the source carries them. Negative values and values above
// the configured maximum render as the empty value.
func (f *Formatter) FormatCurrency(raw any) string {
	dec, ok := toDecimalString(raw)
	if !ok {
		return f.opts.EmptyValue
	}

	m := decimalRegex.FindStringSubmatch(dec)
	if m == nil {
		return f.opts.EmptyValue
	}
	sign, intPart, frac := m[1], strings.TrimLeft(m[2], "0"), strings.TrimRight(m[3], "0")
	if intPart == "" {
		intPart = "0"
	}
	if sign == "-" && (intPart != "0" || frac != "") {
		return f.opts.EmptyValue
	}

	n, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return f.opts.EmptyValue
	}
	switch n.Cmp(big.NewInt(f.opts.CurrencyMax)) {
	case 1:
		return f.opts.EmptyValue
	case 0:
		if frac != "" {
			return f.opts.EmptyValue
		}
	}

	out := message.NewPrinter(f.lang).Sprintf("%d", n.Int64())
	if frac != "" {
		out += "." + frac
	}
	return out
}

// toDecimalString normalizes numeric driver values to a plain decimal.
func toDecimalString(raw any) (string, bool) {
	switch v := raw.(type) {
	case pgtype.Numeric:
		return numericToDecimal(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", false
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", false
		}
		return strconv.FormatFloat(f, 'f', -1, 32), true
	case json.Number:
		return toDecimalString(string(v))
	case string:
		s := currencyNoise.Replace(strings.TrimSpace(v))
		if s == "" {
			return "", false
		}
		return s, true
	default:
		if n, ok := asInt64(raw); ok {
			return strconv.FormatInt(n, 10), true
		}
		return "", false
	}
}

func numericToDecimal(n pgtype.Numeric) (string, bool) {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite {
		return "", false
	}
	if n.Int == nil {
		return "0", true
	}

	digits := new(big.Int).Abs(n.Int).String()
	if n.Exp >= 0 {
		digits += strings.Repeat("0", int(n.Exp))
	} else {
		scale := int(-n.Exp)
		if len(digits) <= scale {
			digits = strings.Repeat("0", scale-len(digits)+1) + digits
		}
		digits = digits[:len(digits)-scale] + "." + digits[len(digits)-scale:]
	}
	if n.Int.Sign() < 0 {
		digits = "-" + digits
	}
	return digits, true
}

// FormatInteger renders a whole number without grouping.
func (f *Formatter) FormatInteger(raw any) string {
	n, ok := asInt64(raw)
	if !ok {
		if dec, dok := toDecimalString(raw); dok {
			if m := decimalRegex.FindStringSubmatch(dec); m != nil && strings.TrimRight(m[3], "0") == "" {
				if v, err := strconv.ParseInt(m[1]+m[2], 10, 64); err == nil {
					return strconv.FormatInt(v, 10)
				}
			}
		}
		return f.opts.EmptyValue
	}
	return strconv.FormatInt(n, 10)
}

// FormatEnum maps a stored code to its label. Unknown codes are returned
// as-is.
func (f *Formatter) FormatEnum(raw any, table map[string]string) string {
	if isAbsent(raw) {
		return f.opts.EmptyValue
	}
	code := strings.TrimSpace(asString(raw))
	if code == "" {
		return f.opts.EmptyValue
	}
	if label, ok := table[code]; ok {
		return label
	}
	return f.FormatText(code)
}

// FormatText sanitizes free text: markup and control characters are
// removed, full-width ASCII is folded, line breaks become LF, and the result
// is trimmed and truncated. A present but blank value renders as "".
func (f *Formatter) FormatText(raw any) string {
	if isAbsent(raw) {
		return f.opts.EmptyValue
	}

	var s string
	switch v := raw.(type) {
	case time.Time, pgtype.Date:
		return f.FormatDate(v)
	case pgtype.Numeric:
		dec, ok := numericToDecimal(v)
		if !ok {
			return f.opts.EmptyValue
		}
		s = dec
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		s = asString(raw)
	}

	return f.sanitizeText(s)
}

func (f *Formatter) sanitizeText(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	s = f.policy.Sanitize(s)
	s = html.UnescapeString(s)
	s = width.Fold.String(s)
	for {
		stripped := tagRegex.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = stripped
	}
	s = tagOpenRegex.ReplaceAllString(s, "$1")
	s = newlineReplacer.Replace(s)
	// Entities such as &#27; decode to control bytes, so this runs last.
	s = stripControl(s)
	s = strings.TrimSpace(s)

	if utf8.RuneCountInString(s) > f.opts.TextMaxLength {
		runes := []rune(s)
		s = strings.TrimRightFunc(string(runes[:f.opts.TextMaxLength]), isSpace) + f.opts.TruncationMarker
	}
	return s
}

// stripControl drops C0 controls and DEL, keeping tab, newline and carriage
// return.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '　'
}
