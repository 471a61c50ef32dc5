// Package store manages all SQLite persistence for aurora.
//
// The store is the consumer of reconciliation outcomes. Every replica
// appends the events it sees to a local log; each conversation keeps a
// head row holding the current winner and the merged clock of everything
// applied so far. SQLite runs in WAL mode so a watcher can tail the log
// while another process ingests.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/daviddao/aurora/pkg/clock"
	"github.com/daviddao/aurora/pkg/model"
	"github.com/daviddao/aurora/pkg/reconcile"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a replica, event or head does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned by SetDeliveryState when the
	// requested state cannot follow the stored one.
	ErrInvalidTransition = errors.New("invalid delivery state transition")
)

// Store manages all SQLite operations with WAL mode for concurrent access.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Record is an event as stored in the log.
type Record struct {
	Seq        int64          `json:"seq"`
	ReceivedAt time.Time      `json:"received_at"`
	Event      model.Envelope `json:"event"`
}

// ApplyResult describes the effect of ApplyEvent.
type ApplyResult struct {
	// Inserted is false when the event was already in the log. Duplicates
	// leave the head untouched.
	Inserted bool `json:"inserted"`
	// Outcome is the reconciliation of the previous head against the new
	// event. Nil for the first event of a conversation and for duplicates.
	Outcome *reconcile.Outcome `json:"outcome,omitempty"`
	Head    model.Head         `json:"head"`
}

// New opens (or creates) the SQLite database and initializes the schema.
func New(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(60000)&_pragma=synchronous(NORMAL)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// retryOnContention wraps retryOp from retry.go with the default config.
// Every write goes through it.
func retryOnContention(ctx context.Context, fn func() error) error {
	return retryOp(ctx, defaultRetryConfig, fn)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS replicas (
		id         TEXT PRIMARY KEY,
		clock      TEXT NOT NULL,
		registered TEXT NOT NULL,
		last_seen  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		seq             INTEGER PRIMARY KEY AUTOINCREMENT,
		id              TEXT NOT NULL UNIQUE,
		conversation_id TEXT NOT NULL,
		sender_id       TEXT NOT NULL,
		created_at      INTEGER NOT NULL,
		clock           TEXT NOT NULL,
		body            TEXT NOT NULL,
		mentions        TEXT NOT NULL,
		reply_to        TEXT,
		delivery_state  TEXT NOT NULL,
		encrypted       INTEGER NOT NULL DEFAULT 0,
		received_at     TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_conversation ON events(conversation_id, seq);

	CREATE TABLE IF NOT EXISTS heads (
		conversation_id TEXT PRIMARY KEY,
		event_id        TEXT NOT NULL REFERENCES events(id),
		clock           TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// ---------------------------------------------------------------------------
// Replicas
// ---------------------------------------------------------------------------

// RegisterReplica creates a replica with a fresh clock, or refreshes
// last_seen if it already exists. Idempotent via ON CONFLICT; an existing
// clock is never reset.
func (s *Store) RegisterReplica(ctx context.Context, id string) (*model.Replica, error) {
	vc, err := clock.New(id)
	if err != nil {
		return nil, err
	}
	encoded, err := encodeClock(vc)
	if err != nil {
		return nil, err
	}
	now := s.timestamp()
	err = retryOnContention(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO replicas (id, clock, registered, last_seen)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET last_seen = excluded.last_seen`,
			id, encoded, now, now,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetReplica(ctx, id)
}

// GetReplica retrieves a replica by ID.
func (s *Store) GetReplica(ctx context.Context, id string) (*model.Replica, error) {
	return getReplica(ctx, s.db, id)
}

func getReplica(ctx context.Context, q querier, id string) (*model.Replica, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, clock, registered, last_seen FROM replicas WHERE id = ?`, id,
	)
	r, err := scanReplica(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("replica %s: %w", id, ErrNotFound)
	}
	return r, err
}

// UpdateReplicaClock overwrites a replica's clock.
func (s *Store) UpdateReplicaClock(ctx context.Context, id string, vc clock.VectorClock) error {
	encoded, err := encodeClock(vc)
	if err != nil {
		return err
	}
	now := s.timestamp()
	return retryOnContention(ctx, func() error {
		res, err := s.db.ExecContext(ctx,
			`UPDATE replicas SET clock = ?, last_seen = ? WHERE id = ?`,
			encoded, now, id,
		)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("replica %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

// TickReplica advances a replica's own component by one and returns the
// new clock. The read-modify-write runs in a single transaction.
func (s *Store) TickReplica(ctx context.Context, id string) (clock.VectorClock, error) {
	return s.updateClock(ctx, id, func(vc clock.VectorClock) clock.VectorClock {
		return vc.Tick(id)
	})
}

// MergeReplicaClock folds other into a replica's clock (component-wise
// max) and returns the result.
func (s *Store) MergeReplicaClock(ctx context.Context, id string, other clock.VectorClock) (clock.VectorClock, error) {
	return s.updateClock(ctx, id, func(vc clock.VectorClock) clock.VectorClock {
		return vc.Merge(other)
	})
}

func (s *Store) updateClock(ctx context.Context, id string, fn func(clock.VectorClock) clock.VectorClock) (clock.VectorClock, error) {
	var next clock.VectorClock
	err := retryOnContention(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

		r, err := getReplica(ctx, tx, id)
		if err != nil {
			return err
		}
		next = fn(r.Clock)
		if err := s.setReplicaClock(ctx, tx, id, next); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

// setReplicaClock writes vc as the replica clock and marks it seen.
func (s *Store) setReplicaClock(ctx context.Context, q querier, id string, vc clock.VectorClock) error {
	encoded, err := encodeClock(vc)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`UPDATE replicas SET clock = ?, last_seen = ? WHERE id = ?`,
		encoded, s.timestamp(), id,
	)
	return err
}

// ListReplicas returns all registered replicas ordered by ID.
func (s *Store) ListReplicas(ctx context.Context) ([]model.Replica, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, clock, registered, last_seen FROM replicas ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var replicas []model.Replica
	for rows.Next() {
		r, err := scanReplica(rows)
		if err != nil {
			return nil, err
		}
		replicas = append(replicas, *r)
	}
	return replicas, rows.Err()
}

// ---------------------------------------------------------------------------
// Events
// ---------------------------------------------------------------------------

const eventColumns = `seq, id, conversation_id, sender_id, created_at, clock, body,
	mentions, COALESCE(reply_to, ''), delivery_state, encrypted, received_at`

// InsertEvent appends an event to the log. Inserting an ID that is already
// present is a no-op and reports inserted == false.
func (s *Store) InsertEvent(ctx context.Context, e model.Envelope) (bool, error) {
	if err := e.Validate(); err != nil {
		return false, err
	}
	var inserted bool
	err := retryOnContention(ctx, func() error {
		var err error
		inserted, err = insertEvent(ctx, s.db, e, s.timestamp())
		return err
	})
	return inserted, err
}

func insertEvent(ctx context.Context, q querier, e model.Envelope, receivedAt string) (bool, error) {
	vc, err := encodeClock(e.VectorClock)
	if err != nil {
		return false, err
	}
	mentions := e.Payload.Mentions
	if mentions == nil {
		mentions = []string{}
	}
	mentionsJSON, err := json.Marshal(mentions)
	if err != nil {
		return false, fmt.Errorf("encode mentions: %w", err)
	}
	var replyTo any
	if e.Payload.ReplyToEventID != "" {
		replyTo = e.Payload.ReplyToEventID
	}
	res, err := q.ExecContext(ctx,
		`INSERT INTO events (id, conversation_id, sender_id, created_at, clock, body,
		                     mentions, reply_to, delivery_state, encrypted, received_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		e.ID, e.ConversationID, e.SenderID, e.CreatedAt, vc, e.Payload.Body,
		string(mentionsJSON), replyTo, string(e.DeliveryState), boolToInt(e.Encrypted), receivedAt,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetEvent retrieves a stored event by its envelope ID.
func (s *Store) GetEvent(ctx context.Context, id string) (*Record, error) {
	return getEvent(ctx, s.db, id)
}

func getEvent(ctx context.Context, q querier, id string) (*Record, error) {
	row := q.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	return rec, err
}

// ListConversation returns every event of a conversation in arrival order.
// Use reconcile.Linearize for the canonical order.
func (s *Store) ListConversation(ctx context.Context, conversationID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE conversation_id = ? ORDER BY seq ASC`,
		conversationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ListEventsSince returns events with seq > since, ordered by seq. This is
// how the log is tailed.
func (s *Store) ListEventsSince(ctx context.Context, since int64, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE seq > ? ORDER BY seq ASC LIMIT ?`,
		since, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// MaxSeq returns the highest sequence number, or 0 if the log is empty.
func (s *Store) MaxSeq(ctx context.Context) int64 {
	var seq int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM events`).Scan(&seq); err != nil {
		return 0
	}
	return seq
}

// CountEvents returns the total number of events in the log.
func (s *Store) CountEvents(ctx context.Context) int64 {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return 0
	}
	return count
}

// ListConversations returns the distinct conversation IDs in the log.
func (s *Store) ListConversations(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT conversation_id FROM events ORDER BY conversation_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetDeliveryState moves a stored event to state. The transition is
// checked against the stored state with DeliveryState.CanTransition.
func (s *Store) SetDeliveryState(ctx context.Context, id string, state model.DeliveryState) error {
	if !state.Valid() {
		return fmt.Errorf("%w: unknown state %q", ErrInvalidTransition, state)
	}
	return retryOnContention(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

		var current string
		err = tx.QueryRowContext(ctx, `SELECT delivery_state FROM events WHERE id = ?`, id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("event %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return err
		}
		from := model.DeliveryState(current)
		if !from.CanTransition(state) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, state)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE events SET delivery_state = ? WHERE id = ?`, string(state), id,
		); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// ---------------------------------------------------------------------------
// Heads
// ---------------------------------------------------------------------------

// GetHead returns the current head of a conversation.
func (s *Store) GetHead(ctx context.Context, conversationID string) (*model.Head, error) {
	return getHead(ctx, s.db, conversationID)
}

func getHead(ctx context.Context, q querier, conversationID string) (*model.Head, error) {
	var h model.Head
	var clockStr, updatedStr string
	err := q.QueryRowContext(ctx,
		`SELECT conversation_id, event_id, clock, updated_at FROM heads WHERE conversation_id = ?`,
		conversationID,
	).Scan(&h.ConversationID, &h.EventID, &clockStr, &updatedStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("head of %s: %w", conversationID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if h.Clock, err = decodeClock(clockStr); err != nil {
		return nil, fmt.Errorf("head of %s: %w", conversationID, err)
	}
	if h.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedStr); err != nil {
		return nil, fmt.Errorf("parse updated_at for head of %s: %w", conversationID, err)
	}
	return &h, nil
}

// ListHeads returns the head of every conversation ordered by ID.
func (s *Store) ListHeads(ctx context.Context) ([]model.Head, error) {
	ids, err := s.ListConversations(ctx)
	if err != nil {
		return nil, err
	}
	heads := make([]model.Head, 0, len(ids))
	for _, id := range ids {
		h, err := s.GetHead(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		heads = append(heads, *h)
	}
	return heads, nil
}

// ApplyEvent appends e to the log and reconciles it against the head of
// its conversation, all in one transaction.
//
// The first event of a conversation becomes its head. After that the head
// becomes the winner of reconcile.CheckedPair(head, e), and the head clock
// absorbs e's clock. The head clock is order independent; the head winner
// is the fold of pairwise outcomes in arrival order. See
// frontier.ComputeStatus for a winner that does not depend on arrival.
func (s *Store) ApplyEvent(ctx context.Context, e model.Envelope) (ApplyResult, error) {
	if err := e.Validate(); err != nil {
		return ApplyResult{}, err
	}
	var res ApplyResult
	err := retryOnContention(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

		if res, err = s.applyEvent(ctx, tx, e); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return ApplyResult{}, err
	}
	return res, nil
}

// ApplyEventAs is ApplyEvent for a received event: the clock of the local
// replica absorbs e's clock in the same transaction. An unknown replica
// fails with ErrNotFound and nothing is written.
func (s *Store) ApplyEventAs(ctx context.Context, replicaID string, e model.Envelope) (ApplyResult, error) {
	if err := e.Validate(); err != nil {
		return ApplyResult{}, err
	}
	var res ApplyResult
	err := retryOnContention(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

		r, err := getReplica(ctx, tx, replicaID)
		if err != nil {
			return err
		}
		if res, err = s.applyEvent(ctx, tx, e); err != nil {
			return err
		}
		if err := s.setReplicaClock(ctx, tx, replicaID, r.Clock.Merge(e.VectorClock)); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return ApplyResult{}, err
	}
	return res, nil
}

// SendEvent produces a local event on replicaID. In one transaction it
// ticks the replica clock, passes the ticked clock to build, and applies
// the envelope build returns. If build or the apply fails, the clock is
// left as it was. build may run more than once under contention.
func (s *Store) SendEvent(ctx context.Context, replicaID string, build func(clock.VectorClock) (model.Envelope, error)) (model.Envelope, ApplyResult, error) {
	var (
		env model.Envelope
		res ApplyResult
	)
	err := retryOnContention(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

		r, err := getReplica(ctx, tx, replicaID)
		if err != nil {
			return err
		}
		ticked := r.Clock.Tick(replicaID)
		if env, err = build(ticked); err != nil {
			return err
		}
		if err := env.Validate(); err != nil {
			return err
		}
		if res, err = s.applyEvent(ctx, tx, env); err != nil {
			return err
		}
		if err := s.setReplicaClock(ctx, tx, replicaID, ticked.Merge(env.VectorClock)); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return model.Envelope{}, ApplyResult{}, err
	}
	return env, res, nil
}

// applyEvent inserts e and moves the conversation head inside tx.
func (s *Store) applyEvent(ctx context.Context, tx *sql.Tx, e model.Envelope) (ApplyResult, error) {
	var res ApplyResult
	now := s.timestamp()
	inserted, err := insertEvent(ctx, tx, e, now)
	if err != nil {
		return res, fmt.Errorf("insert event %s: %w", e.ID, err)
	}
	res.Inserted = inserted

	prev, err := getHead(ctx, tx, e.ConversationID)
	switch {
	case errors.Is(err, ErrNotFound):
		res.Head = model.Head{
			ConversationID: e.ConversationID,
			EventID:        e.ID,
			Clock:          e.VectorClock.Copy(),
		}
	case err != nil:
		return res, err
	case !res.Inserted:
		res.Head = *prev
		return res, nil
	default:
		current, err := getEvent(ctx, tx, prev.EventID)
		if err != nil {
			return res, fmt.Errorf("load head event: %w", err)
		}
		out, err := reconcile.CheckedPair(current.Event, e)
		if err != nil {
			return res, err
		}
		res.Outcome = &out
		res.Head = model.Head{
			ConversationID: e.ConversationID,
			EventID:        out.Winner.ID,
			Clock:          clock.Merge(prev.Clock, out.MergedClock),
		}
	}

	encoded, err := encodeClock(res.Head.Clock)
	if err != nil {
		return res, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO heads (conversation_id, event_id, clock, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(conversation_id) DO UPDATE SET
		   event_id = excluded.event_id,
		   clock = excluded.clock,
		   updated_at = excluded.updated_at`,
		res.Head.ConversationID, res.Head.EventID, encoded, now,
	); err != nil {
		return res, fmt.Errorf("write head: %w", err)
	}
	if res.Head.UpdatedAt, err = time.Parse(time.RFC3339Nano, now); err != nil {
		return res, err
	}
	return res, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanReplica(row scanner) (*model.Replica, error) {
	var r model.Replica
	var clockStr, regStr, lsStr string
	if err := row.Scan(&r.ID, &clockStr, &regStr, &lsStr); err != nil {
		return nil, err
	}
	var err error
	if r.Clock, err = decodeClock(clockStr); err != nil {
		return nil, fmt.Errorf("replica %s: %w", r.ID, err)
	}
	if r.Registered, err = time.Parse(time.RFC3339Nano, regStr); err != nil {
		return nil, fmt.Errorf("parse registered time for replica %s: %w", r.ID, err)
	}
	if r.LastSeen, err = time.Parse(time.RFC3339Nano, lsStr); err != nil {
		return nil, fmt.Errorf("parse last_seen time for replica %s: %w", r.ID, err)
	}
	return &r, nil
}

func scanRecord(row scanner) (*Record, error) {
	var rec Record
	e := &rec.Event
	var clockStr, mentionsStr, stateStr, receivedStr string
	var encrypted int
	if err := row.Scan(&rec.Seq, &e.ID, &e.ConversationID, &e.SenderID, &e.CreatedAt,
		&clockStr, &e.Payload.Body, &mentionsStr, &e.Payload.ReplyToEventID,
		&stateStr, &encrypted, &receivedStr); err != nil {
		return nil, err
	}
	e.DeliveryState = model.DeliveryState(stateStr)
	e.Encrypted = encrypted != 0
	var err error
	if e.VectorClock, err = decodeClock(clockStr); err != nil {
		return nil, fmt.Errorf("event %s: %w", e.ID, err)
	}
	if err := json.Unmarshal([]byte(mentionsStr), &e.Payload.Mentions); err != nil {
		return nil, fmt.Errorf("decode mentions for event %s: %w", e.ID, err)
	}
	if rec.ReceivedAt, err = time.Parse(time.RFC3339Nano, receivedStr); err != nil {
		return nil, fmt.Errorf("parse received_at time for event %s: %w", e.ID, err)
	}
	return &rec, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Envelopes strips the log metadata from records.
func Envelopes(records []Record) []model.Envelope {
	out := make([]model.Envelope, len(records))
	for i, r := range records {
		out[i] = r.Event
	}
	return out
}

func encodeClock(vc clock.VectorClock) (string, error) {
	if vc == nil {
		vc = clock.VectorClock{}
	}
	b, err := json.Marshal(vc)
	if err != nil {
		return "", fmt.Errorf("encode clock: %w", err)
	}
	return string(b), nil
}

func decodeClock(s string) (clock.VectorClock, error) {
	vc := clock.VectorClock{}
	if err := json.Unmarshal([]byte(s), &vc); err != nil {
		return nil, fmt.Errorf("decode clock: %w", err)
	}
	return vc, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
