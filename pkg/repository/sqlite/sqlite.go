package sqlite

import (
	"database/sql"

	"github.com/m-mizutani/goerr/v2"
	"github.com/stylemail-dev/stylemail/pkg/domain/interfaces"
	_ "modernc.org/sqlite"
)

// currentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const currentSchemaVersion = 1

type SQLite struct {
	db           *sql.DB
	styleSample  *styleSampleRepository
	artifact     *artifactRepository
	emailHistory *emailHistoryRepository
	nudge        *nudgeRepository
}

var _ interfaces.Repository = &SQLite{}

// New opens (or creates) the SQLite database at the given path and
// applies schema migrations. WAL mode and a busy timeout are set via
// the DSN so they apply to every pooled connection.
func New(path string) (*SQLite, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite database", goerr.V("path", path))
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to migrate sqlite schema", goerr.V("path", path))
	}

	return &SQLite{
		db:           db,
		styleSample:  newStyleSampleRepository(db),
		artifact:     newArtifactRepository(db),
		emailHistory: newEmailHistoryRepository(db),
		nudge:        newNudgeRepository(db),
	}, nil
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return goerr.Wrap(err, "failed to read user_version")
	}

	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS style_samples (
		  user_id     TEXT NOT NULL,
		  seq         INTEGER NOT NULL,
		  text        TEXT NOT NULL,
		  embedding   TEXT NOT NULL,
		  created_at  TIMESTAMP NOT NULL,
		  PRIMARY KEY (user_id, seq)
		);

		CREATE TABLE IF NOT EXISTS artifacts (
		  employee_id   TEXT NOT NULL,
		  kind          TEXT NOT NULL,
		  summary       TEXT,
		  subject       TEXT,
		  body          TEXT,
		  nudge_snippet TEXT,
		  created_at    TIMESTAMP NOT NULL,
		  PRIMARY KEY (employee_id, kind)
		);

		CREATE TABLE IF NOT EXISTS nudge_emails (
		  id            TEXT PRIMARY KEY,
		  employee_id   TEXT NOT NULL,
		  subject       TEXT NOT NULL,
		  body          TEXT NOT NULL,
		  nudge_snippet TEXT,
		  sent          INTEGER NOT NULL DEFAULT 0,
		  sent_at       TIMESTAMP,
		  created_at    TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_nudge_emails_employee
		  ON nudge_emails(employee_id, created_at DESC);

		CREATE TABLE IF NOT EXISTS nudges (
		  id                    INTEGER PRIMARY KEY AUTOINCREMENT,
		  employee_id           TEXT NOT NULL,
		  nudge_type            TEXT,
		  title                 TEXT NOT NULL,
		  message               TEXT,
		  instructions          TEXT,
		  metric_name           TEXT,
		  metric_value          REAL,
		  threshold             REAL,
		  operator              TEXT,
		  unit                  TEXT,
		  date_range_from       TIMESTAMP,
		  date_range_to         TIMESTAMP,
		  prior_date_range_from TIMESTAMP,
		  prior_date_range_to   TIMESTAMP,
		  status                TEXT NOT NULL DEFAULT 'active',
		  created_at            TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_nudges_employee ON nudges(employee_id, id);
		`
		if _, err := db.Exec(schema); err != nil {
			return goerr.Wrap(err, "failed to apply schema v1")
		}
		if _, err := db.Exec("PRAGMA user_version = 1"); err != nil {
			return goerr.Wrap(err, "failed to bump user_version")
		}
	}

	return nil
}

func (s *SQLite) StyleSample() interfaces.StyleSampleRepository {
	return s.styleSample
}

func (s *SQLite) Artifact() interfaces.ArtifactRepository {
	return s.artifact
}

func (s *SQLite) EmailHistory() interfaces.EmailHistoryRepository {
	return s.emailHistory
}

func (s *SQLite) Nudge() interfaces.NudgeRepository {
	return s.nudge
}

func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
