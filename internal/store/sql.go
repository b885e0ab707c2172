package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/copilot-learning/backend/internal/models"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// SQLStore implements Store over database/sql. Queries are written with ?
// placeholders and rebound for Postgres.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

func (s *SQLStore) Name() string { return string(s.dialect) }

func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	return nil
}

func (s *SQLStore) q(query string) string {
	return rebind(s.dialect, query)
}

// rebind rewrites ? placeholders to $1, $2, ... for Postgres.
func rebind(d Dialect, query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ── Learners ─────────────────────────────────────────────

const learnerColumns = `id, name, email, phone, created_at, last_active`

func (s *SQLStore) UpsertLearner(ctx context.Context, l *models.Learner) error {
	var phone sql.NullString
	if l.Phone != nil {
		phone = sql.NullString{String: *l.Phone, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, s.q(
		`INSERT INTO learners (`+learnerColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE
		 SET name = excluded.name, email = excluded.email, phone = excluded.phone,
		     last_active = excluded.last_active`),
		l.ID, l.Name, l.Email, phone, l.CreatedAt.UTC(), l.LastActive.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert learner: %w", err)
	}
	return nil
}

func (s *SQLStore) GetLearner(ctx context.Context, id string) (*models.Learner, error) {
	row := s.db.QueryRowContext(ctx, s.q(
		`SELECT `+learnerColumns+` FROM learners WHERE id = ?`), id)
	return scanLearner(row)
}

func (s *SQLStore) FindLearnerByEmail(ctx context.Context, email string) (*models.Learner, error) {
	row := s.db.QueryRowContext(ctx, s.q(
		`SELECT `+learnerColumns+` FROM learners WHERE LOWER(email) = LOWER(?)`), email)
	return scanLearner(row)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLearner(row scanner) (*models.Learner, error) {
	var l models.Learner
	var phone sql.NullString
	err := row.Scan(&l.ID, &l.Name, &l.Email, &phone, &l.CreatedAt, &l.LastActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan learner: %w", err)
	}
	if phone.Valid {
		l.Phone = &phone.String
	}
	return &l, nil
}

func (s *SQLStore) TouchLearner(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, s.q(
		`UPDATE learners SET last_active = ? WHERE id = ?`), at.UTC(), id)
	if err != nil {
		return fmt.Errorf("touch learner: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) DeleteLearner(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete learner: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM answer_events WHERE learner_id = ?`,
		`DELETE FROM section_completions WHERE learner_id = ?`,
		`DELETE FROM certificate_records WHERE learner_id = ?`,
		`DELETE FROM learners WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, s.q(stmt), id); err != nil {
			return fmt.Errorf("delete learner: %w", err)
		}
	}
	if err := s.tombstone(ctx, tx, id, TombstoneLearner); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) ListLearners(ctx context.Context) ([]models.Learner, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+learnerColumns+` FROM learners ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list learners: %w", err)
	}
	defer rows.Close()

	learners := []models.Learner{}
	for rows.Next() {
		l, err := scanLearner(rows)
		if err != nil {
			return nil, err
		}
		learners = append(learners, *l)
	}
	return learners, rows.Err()
}

// ── Event Logs ───────────────────────────────────────────

const answerColumns = `id, learner_id, section_id, question_id, answer, is_correct, response_time, timed_out, created_at`

const completionColumns = `id, learner_id, section_id, section_title, total_questions, questions_correct,
	score, accuracy, time_spent, completed_at`

// Appends ignore an existing id so replaying a log is harmless.
func (s *SQLStore) AppendAnswer(ctx context.Context, ev models.AnswerEvent) error {
	_, err := s.db.ExecContext(ctx, s.q(
		`INSERT INTO answer_events (`+answerColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO NOTHING`),
		ev.ID, ev.LearnerID, ev.SectionID, ev.QuestionID, ev.Answer,
		ev.IsCorrect, ev.ResponseTime, ev.TimedOut, ev.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("append answer: %w", err)
	}
	return nil
}

func (s *SQLStore) AppendCompletion(ctx context.Context, ev models.SectionCompletionEvent) error {
	_, err := s.db.ExecContext(ctx, s.q(
		`INSERT INTO section_completions (`+completionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO NOTHING`),
		ev.ID, ev.LearnerID, ev.SectionID, ev.SectionTitle, ev.TotalQuestions,
		ev.CorrectCount, ev.Score, ev.Accuracy, ev.TimeSpent, ev.CompletedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("append completion: %w", err)
	}
	return nil
}

func (s *SQLStore) ListAnswers(ctx context.Context, learnerID string) ([]models.AnswerEvent, error) {
	return s.queryAnswers(ctx,
		`SELECT `+answerColumns+` FROM answer_events WHERE learner_id = ? ORDER BY created_at`, learnerID)
}

func (s *SQLStore) ListAllAnswers(ctx context.Context) ([]models.AnswerEvent, error) {
	return s.queryAnswers(ctx, `SELECT `+answerColumns+` FROM answer_events ORDER BY created_at`)
}

func (s *SQLStore) queryAnswers(ctx context.Context, query string, args ...any) ([]models.AnswerEvent, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	events := []models.AnswerEvent{}
	for rows.Next() {
		var ev models.AnswerEvent
		if err := rows.Scan(&ev.ID, &ev.LearnerID, &ev.SectionID, &ev.QuestionID, &ev.Answer,
			&ev.IsCorrect, &ev.ResponseTime, &ev.TimedOut, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (s *SQLStore) ListCompletions(ctx context.Context, learnerID string) ([]models.SectionCompletionEvent, error) {
	return s.queryCompletions(ctx,
		`SELECT `+completionColumns+` FROM section_completions WHERE learner_id = ? ORDER BY completed_at`, learnerID)
}

func (s *SQLStore) ListAllCompletions(ctx context.Context) ([]models.SectionCompletionEvent, error) {
	return s.queryCompletions(ctx, `SELECT `+completionColumns+` FROM section_completions ORDER BY completed_at`)
}

func (s *SQLStore) queryCompletions(ctx context.Context, query string, args ...any) ([]models.SectionCompletionEvent, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	events := []models.SectionCompletionEvent{}
	for rows.Next() {
		var ev models.SectionCompletionEvent
		if err := rows.Scan(&ev.ID, &ev.LearnerID, &ev.SectionID, &ev.SectionTitle, &ev.TotalQuestions,
			&ev.CorrectCount, &ev.Score, &ev.Accuracy, &ev.TimeSpent, &ev.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (s *SQLStore) DeleteProgress(ctx context.Context, learnerID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete progress: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM answer_events WHERE learner_id = ?`), learnerID); err != nil {
		return fmt.Errorf("delete answers: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM section_completions WHERE learner_id = ?`), learnerID); err != nil {
		return fmt.Errorf("delete completions: %w", err)
	}
	if err := s.tombstone(ctx, tx, learnerID, TombstoneProgress); err != nil {
		return err
	}
	return tx.Commit()
}

// ── Tombstones ───────────────────────────────────────────

// tombstone records a deletion in the same transaction. Only the sqlite cache
// keeps tombstones; the remote store is the target of replication, not a source.
func (s *SQLStore) tombstone(ctx context.Context, tx *sql.Tx, learnerID string, kind TombstoneKind) error {
	if s.dialect != SQLite {
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO tombstones (learner_id, kind, created_at) VALUES (?, ?, ?)`,
		learnerID, string(kind), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record %s tombstone: %w", kind, err)
	}
	return nil
}

func (s *SQLStore) ListTombstones(ctx context.Context) ([]Tombstone, error) {
	if s.dialect != SQLite {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, learner_id, kind, created_at FROM tombstones ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tombstones: %w", err)
	}
	defer rows.Close()

	var out []Tombstone
	for rows.Next() {
		var t Tombstone
		var kind string
		if err := rows.Scan(&t.ID, &t.LearnerID, &kind, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tombstone: %w", err)
		}
		t.Kind = TombstoneKind(kind)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLStore) PurgeTombstones(ctx context.Context, ids []int64) error {
	if s.dialect != SQLite || len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin purge tombstones: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tombstones WHERE id = ?`, id); err != nil {
			return fmt.Errorf("purge tombstone %d: %w", id, err)
		}
	}
	return tx.Commit()
}

// ── Certificates ─────────────────────────────────────────

func (s *SQLStore) GetCertificates(ctx context.Context, learnerID string) (*models.CertificateRecord, error) {
	var master sql.NullString
	var sections string
	err := s.db.QueryRowContext(ctx, s.q(
		`SELECT master, sections FROM certificate_records WHERE learner_id = ?`), learnerID,
	).Scan(&master, &sections)
	if errors.Is(err, sql.ErrNoRows) {
		return emptyRecord(learnerID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get certificates: %w", err)
	}

	rec, err := decodeRecord(learnerID, master, sections)
	if err != nil {
		log.Printf("[store] certificate record for %s unreadable, treating as empty: %v", learnerID, err)
	}
	return rec, nil
}

// decodeRecord always returns a usable record; unreadable parts come back empty
// alongside an ErrMalformedData error.
func decodeRecord(learnerID string, master sql.NullString, sections string) (*models.CertificateRecord, error) {
	rec := emptyRecord(learnerID)
	var errs []error

	if master.Valid && master.String != "" && master.String != "null" {
		var m models.MasterCertificate
		if err := json.Unmarshal([]byte(master.String), &m); err != nil {
			errs = append(errs, fmt.Errorf("%w: master: %v", ErrMalformedData, err))
		} else {
			rec.Master = &m
		}
	}

	if sections != "" {
		var list []models.SectionCertificate
		if err := json.Unmarshal([]byte(sections), &list); err != nil {
			errs = append(errs, fmt.Errorf("%w: sections: %v", ErrMalformedData, err))
		} else if list != nil {
			rec.Sections = list
		}
	}
	return rec, errors.Join(errs...)
}

func (s *SQLStore) SaveCertificates(ctx context.Context, rec *models.CertificateRecord) error {
	var master sql.NullString
	if rec.Master != nil {
		b, err := json.Marshal(rec.Master)
		if err != nil {
			return fmt.Errorf("encode master certificate: %w", err)
		}
		master = sql.NullString{String: string(b), Valid: true}
	}

	sections := rec.Sections
	if sections == nil {
		sections = []models.SectionCertificate{}
	}
	b, err := json.Marshal(sections)
	if err != nil {
		return fmt.Errorf("encode section certificates: %w", err)
	}

	_, err = s.db.ExecContext(ctx, s.q(
		`INSERT INTO certificate_records (learner_id, master, sections, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (learner_id) DO UPDATE
		 SET master = excluded.master, sections = excluded.sections, updated_at = excluded.updated_at`),
		rec.LearnerID, master, string(b), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save certificates: %w", err)
	}
	return nil
}
