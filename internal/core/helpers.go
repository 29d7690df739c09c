package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// asString renders a scalar driver value as text. Absent values yield "".
func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case pgtype.Text:
		if !x.Valid {
			return ""
		}
		return x.String
	case bool:
		return strconv.FormatBool(x)
	case pgtype.Bool:
		if !x.Valid {
			return ""
		}
		return strconv.FormatBool(x.Bool)
	case pgtype.Numeric:
		s, _ := numericToDecimal(x)
		return s
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	default:
		if n, ok := asInt64(v); ok {
			return strconv.FormatInt(n, 10)
		}
		return fmt.Sprint(v)
	}
}

// asInt64 converts integral driver values. Floats qualify only when they
// have no fractional part.
func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint32:
		return int64(x), true
	case pgtype.Int2:
		return int64(x.Int16), x.Valid
	case pgtype.Int4:
		return int64(x.Int32), x.Valid
	case pgtype.Int8:
		return x.Int64, x.Valid
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || x != math.Trunc(x) {
			return 0, false
		}
		if x > math.MaxInt64 || x < math.MinInt64 {
			return 0, false
		}
		return int64(x), true
	case json.Number:
		n, err := x.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// isAbsent reports whether v carries no value: nil or an invalid pgtype.
func isAbsent(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case pgtype.Text:
		return !x.Valid
	case pgtype.Date:
		return !x.Valid
	case pgtype.Timestamp:
		return !x.Valid
	case pgtype.Timestamptz:
		return !x.Valid
	case pgtype.Numeric:
		return !x.Valid
	case pgtype.Int2:
		return !x.Valid
	case pgtype.Int4:
		return !x.Valid
	case pgtype.Int8:
		return !x.Valid
	case pgtype.Bool:
		return !x.Valid
	default:
		return false
	}
}
