package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/glp1rx/assessment-backend/pkg/model"
)

// State keys persisted per session. Names are kept compatible with the
// storage the web client used before the backend took ownership of state.
const (
	StateKeyAnswers  = "glp1_patient_answers"
	StateKeyMessages = "glp1_chat_messages"
)

// SessionRepository manages assessment sessions, their transcripts and
// per-session state blobs
type SessionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *pgxpool.Pool, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{
		db:     db,
		logger: logger,
	}
}

// CreateSession creates a new assessment session
func (r *SessionRepository) CreateSession(ctx context.Context, session *model.Session) error {
	query := `
		INSERT INTO assessment_sessions (id, patient_id, mode, remote_session_id, status, eligibility, started_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`

	_, err := r.db.Exec(ctx, query,
		session.ID,
		session.PatientID,
		session.Mode,
		session.RemoteSessionID,
		session.Status,
		session.Eligibility,
		session.StartedAt,
	)

	if err != nil {
		r.logger.Error("failed to create session", zap.Error(err), zap.String("session_id", session.ID))
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by ID
func (r *SessionRepository) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	query := `
		SELECT id, patient_id, mode, remote_session_id, status, eligibility, started_at, updated_at, completed_at, expired_at
		FROM assessment_sessions
		WHERE id = $1
	`

	var session model.Session
	err := r.db.QueryRow(ctx, query, sessionID).Scan(
		&session.ID,
		&session.PatientID,
		&session.Mode,
		&session.RemoteSessionID,
		&session.Status,
		&session.Eligibility,
		&session.StartedAt,
		&session.UpdatedAt,
		&session.CompletedAt,
		&session.ExpiredAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("session not found: %s", sessionID)
		}
		r.logger.Error("failed to get session", zap.Error(err), zap.String("session_id", sessionID))
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}

// UpdateSession updates an existing session's status fields
func (r *SessionRepository) UpdateSession(ctx context.Context, session *model.Session) error {
	query := `
		UPDATE assessment_sessions
		SET remote_session_id = $1, status = $2, eligibility = $3, completed_at = $4, expired_at = $5, updated_at = NOW()
		WHERE id = $6
	`

	result, err := r.db.Exec(ctx, query,
		session.RemoteSessionID,
		session.Status,
		session.Eligibility,
		session.CompletedAt,
		session.ExpiredAt,
		session.ID,
	)

	if err != nil {
		r.logger.Error("failed to update session", zap.Error(err), zap.String("session_id", session.ID))
		return fmt.Errorf("failed to update session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("session not found: %s", session.ID)
	}

	return nil
}

// GetSessionsByPatientID retrieves all sessions belonging to a patient,
// newest first
func (r *SessionRepository) GetSessionsByPatientID(ctx context.Context, patientID string) ([]model.Session, error) {
	query := `
		SELECT id, patient_id, mode, remote_session_id, status, eligibility, started_at, updated_at, completed_at, expired_at
		FROM assessment_sessions
		WHERE patient_id = $1
		ORDER BY started_at DESC
	`

	rows, err := r.db.Query(ctx, query, patientID)
	if err != nil {
		r.logger.Error("failed to get sessions", zap.Error(err), zap.String("patient_id", patientID))
		return nil, fmt.Errorf("failed to get sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		var session model.Session
		err := rows.Scan(
			&session.ID,
			&session.PatientID,
			&session.Mode,
			&session.RemoteSessionID,
			&session.Status,
			&session.Eligibility,
			&session.StartedAt,
			&session.UpdatedAt,
			&session.CompletedAt,
			&session.ExpiredAt,
		)
		if err != nil {
			r.logger.Error("failed to scan session", zap.Error(err))
			continue
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating sessions", zap.Error(err))
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}

// SaveConversationEntry appends one transcript entry
func (r *SessionRepository) SaveConversationEntry(ctx context.Context, entry *model.ConversationEntry) error {
	query := `
		INSERT INTO conversation_entries (id, session_id, role, content, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.SessionID,
		entry.Role,
		entry.Content,
		entry.Metadata,
		entry.CreatedAt,
	)

	if err != nil {
		r.logger.Error("failed to save conversation entry",
			zap.Error(err),
			zap.String("session_id", entry.SessionID),
			zap.String("entry_id", entry.ID),
		)
		return fmt.Errorf("failed to save conversation entry: %w", err)
	}

	return nil
}

// GetConversationEntries retrieves the full transcript of a session in
// insertion order. Ordering relies on the serial seq column rather than
// created_at, which can tie when two turns land in the same microsecond.
func (r *SessionRepository) GetConversationEntries(ctx context.Context, sessionID string) ([]model.ConversationEntry, error) {
	query := `
		SELECT id, session_id, role, content, metadata, created_at
		FROM conversation_entries
		WHERE session_id = $1
		ORDER BY seq ASC
	`

	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		r.logger.Error("failed to get conversation entries", zap.Error(err), zap.String("session_id", sessionID))
		return nil, fmt.Errorf("failed to get conversation entries: %w", err)
	}
	defer rows.Close()

	var entries []model.ConversationEntry
	for rows.Next() {
		var entry model.ConversationEntry
		err := rows.Scan(
			&entry.ID,
			&entry.SessionID,
			&entry.Role,
			&entry.Content,
			&entry.Metadata,
			&entry.CreatedAt,
		)
		if err != nil {
			r.logger.Error("failed to scan conversation entry", zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating conversation entries", zap.Error(err))
		return nil, fmt.Errorf("error iterating conversation entries: %w", err)
	}

	return entries, nil
}

// DeleteConversationEntries removes the whole transcript of a session
func (r *SessionRepository) DeleteConversationEntries(ctx context.Context, sessionID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM conversation_entries WHERE session_id = $1`, sessionID)
	if err != nil {
		r.logger.Error("failed to delete conversation entries", zap.Error(err), zap.String("session_id", sessionID))
		return fmt.Errorf("failed to delete conversation entries: %w", err)
	}
	return nil
}

// SetState upserts one state blob under the given key. The value is stored
// as an opaque byte slice; callers encrypt sensitive payloads before
// handing them over.
func (r *SessionRepository) SetState(ctx context.Context, sessionID, key string, value []byte) error {
	query := `
		INSERT INTO session_state (session_id, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (session_id, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`

	_, err := r.db.Exec(ctx, query, sessionID, key, value)
	if err != nil {
		r.logger.Error("failed to set session state",
			zap.Error(err),
			zap.String("session_id", sessionID),
			zap.String("key", key),
		)
		return fmt.Errorf("failed to set session state: %w", err)
	}

	return nil
}

// GetState reads one state blob. It returns nil without error when the key
// has never been written, mirroring a cache miss.
func (r *SessionRepository) GetState(ctx context.Context, sessionID, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRow(ctx,
		`SELECT value FROM session_state WHERE session_id = $1 AND key = $2`,
		sessionID, key,
	).Scan(&value)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("failed to get session state",
			zap.Error(err),
			zap.String("session_id", sessionID),
			zap.String("key", key),
		)
		return nil, fmt.Errorf("failed to get session state: %w", err)
	}

	return value, nil
}

// DeleteState removes all state blobs of a session
func (r *SessionRepository) DeleteState(ctx context.Context, sessionID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM session_state WHERE session_id = $1`, sessionID)
	if err != nil {
		r.logger.Error("failed to delete session state", zap.Error(err), zap.String("session_id", sessionID))
		return fmt.Errorf("failed to delete session state: %w", err)
	}
	return nil
}

// ExpireStaleSessions marks active sessions idle longer than maxAge as
// expired and returns how many rows were touched. updated_at is bumped on
// every turn, so it is the last-activity marker.
func (r *SessionRepository) ExpireStaleSessions(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)

	result, err := r.db.Exec(ctx, `
		UPDATE assessment_sessions
		SET status = $1, expired_at = NOW(), updated_at = NOW()
		WHERE status = $2 AND updated_at < $3
	`, model.SessionStatusExpired, model.SessionStatusActive, cutoff)

	if err != nil {
		r.logger.Error("failed to expire stale sessions", zap.Error(err))
		return 0, fmt.Errorf("failed to expire stale sessions: %w", err)
	}

	return result.RowsAffected(), nil
}

// DeletePatientData removes every session, transcript, state blob and report
// row belonging to a patient. Used by the privacy erasure flow.
func (r *SessionRepository) DeletePatientData(ctx context.Context, patientID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	statements := []string{
		`DELETE FROM conversation_entries WHERE session_id IN (SELECT id FROM assessment_sessions WHERE patient_id = $1)`,
		`DELETE FROM session_state WHERE session_id IN (SELECT id FROM assessment_sessions WHERE patient_id = $1)`,
		`DELETE FROM assessment_reports WHERE patient_id = $1`,
		`DELETE FROM assessment_sessions WHERE patient_id = $1`,
	}

	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt, patientID); err != nil {
			r.logger.Error("failed to delete patient data", zap.Error(err), zap.String("patient_id", patientID))
			return fmt.Errorf("failed to delete patient data: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit deletion: %w", err)
	}

	return nil
}
