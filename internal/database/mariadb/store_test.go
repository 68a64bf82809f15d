package mariadb

import (
	"strings"
	"testing"
)

// MariaDB rejects expression key parts in CREATE TABLE, so the one-OPEN
// constraint must stay a generated column with a plain unique key on it.
func TestSessionSchemaUsesGeneratedColumn(t *testing.T) {
	var sessions string
	for _, stmt := range schema {
		if strings.Contains(stmt, "access_sessions") {
			sessions = stmt
			break
		}
	}
	if sessions == "" {
		t.Fatal("no access_sessions DDL in schema")
	}

	if !strings.Contains(sessions, "open_subject    BIGINT AS (CASE WHEN status = 'OPEN' THEN subject_id END) VIRTUAL") {
		t.Error("missing generated open_subject column")
	}
	if !strings.Contains(sessions, "UNIQUE KEY access_sessions_one_open_idx (open_subject)") {
		t.Error("missing unique key on open_subject")
	}
	if strings.Contains(sessions, "((") {
		t.Error("DDL contains a functional key part, which MariaDB does not parse")
	}
}
