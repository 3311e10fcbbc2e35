package settings

import (
	"database/sql"
	"fmt"
	"time"

	"quickstart/internal/sections"
)

const recordColumns = "run_id, section, validated, user_entered, data, updated_at"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (Record, error) {
	var (
		rec         Record
		validated   sql.NullInt64
		userEntered sql.NullInt64
		payload     string
		updatedRaw  sql.NullString
	)
	if err := scanner.Scan(&rec.RunID, &rec.Section, &validated, &userEntered, &payload, &updatedRaw); err != nil {
		return Record{}, err
	}
	rec.Validated = validated.Int64 != 0
	rec.UserEntered = userEntered.Int64 != 0

	data := sections.NewMap()
	if err := data.UnmarshalJSON([]byte(payload)); err != nil {
		return Record{}, fmt.Errorf("decode section data: %w", err)
	}
	rec.Data = data
	rec.UpdatedAt = parseTime(updatedRaw)
	return rec, nil
}

func parseTime(value sql.NullString) time.Time {
	if !value.Valid || value.String == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339Nano, value.String)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
