package connection

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// FormatValue renders a database value for display. JSON documents keep
// their JSON form and NULL is spelled out.
func FormatValue(val any) string {
	switch v := val.(type) {
	case nil:
		return "NULL"
	case map[string]any, []any:
		jsonBytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(jsonBytes)
	case []byte:
		return string(v)
	case [16]byte:
		return uuid.UUID(v).String()
	case pgtype.Numeric:
		dv, err := v.Value()
		if err != nil || dv == nil {
			return "NULL"
		}
		return fmt.Sprintf("%v", dv)
	case time.Time:
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
