package repositories

import (
	"database/sql"
	"fmt"
)

// sequenceTables maps a history table to the single-row counter that numbers its rows.
var sequenceTables = map[string]string{
	"sessions": "sessions_sequence",
}

// NextSequence bumps the counter of table and returns the new value.
//
// The increment and read are one UPDATE ... RETURNING statement, so concurrent recorders never share a number.
// Only tables with a counter created by the migrations are accepted.
func NextSequence(db *sql.DB, table string) (int, error) {
	counter, ok := sequenceTables[table]
	if !ok {
		return 0, fmt.Errorf("no sequence for table %q", table)
	}

	var sequence int
	query := "UPDATE " + counter + " SET value = value + 1 WHERE id = 1 RETURNING value"
	if err := db.QueryRow(query).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to advance %s: %w", counter, err)
	}
	return sequence, nil
}
