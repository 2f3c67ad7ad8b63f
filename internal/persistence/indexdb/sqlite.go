package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"dungeonsync.gg/internal/session"
)

// SQLiteIndex is an append-only read model of session activity. It is never
// read back into the live session; the session stays in-memory only.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqEvent reqKind = iota + 1
	reqRoll
	reqSync
)

type req struct {
	kind reqKind

	event session.EventEntry
	roll  session.RollEntry
	done  chan struct{}
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		// Buffered: bursty dispatch (position spam) must not stall the session loop.
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS session_events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			time TEXT NOT NULL,
			conn_id TEXT NOT NULL,
			user_id TEXT,
			type TEXT NOT NULL,
			suppressed INTEGER NOT NULL,
			error_code TEXT,
			raw_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_user_time ON session_events(user_id, time);`,
		`CREATE INDEX IF NOT EXISTS idx_events_type ON session_events(type);`,
		`CREATE TABLE IF NOT EXISTS rolls (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			time TEXT NOT NULL,
			initiator_id TEXT NOT NULL,
			phase TEXT NOT NULL,
			dice_type TEXT,
			result INTEGER NOT NULL,
			success INTEGER NOT NULL,
			crit_success INTEGER NOT NULL,
			crit_failure INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_rolls_initiator_time ON rolls(initiator_id, time);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) WriteEvent(entry session.EventEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqEvent, event: entry}:
	default:
		// Drop if the indexer falls behind; JSONL journals remain the source of truth.
	}
	return nil
}

func (s *SQLiteIndex) WriteRoll(entry session.RollEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqRoll, roll: entry}:
	default:
	}
	return nil
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertEvent, _ := s.db.Prepare(`INSERT INTO session_events(time,conn_id,user_id,type,suppressed,error_code,raw_json) VALUES(?,?,?,?,?,?,?)`)
	insertRoll, _ := s.db.Prepare(`INSERT INTO rolls(time,initiator_id,phase,dice_type,result,success,crit_success,crit_failure) VALUES(?,?,?,?,?,?,?,?)`)
	defer func() {
		if insertEvent != nil {
			_ = insertEvent.Close()
		}
		if insertRoll != nil {
			_ = insertRoll.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
	}

	flushTimer := time.NewTicker(500 * time.Millisecond)
	defer flushTimer.Stop()

	for {
		select {
		case r, ok := <-s.ch:
			if !ok {
				commit()
				return
			}
			if r.kind == reqSync {
				commit()
				close(r.done)
				continue
			}
			begin()
			if tx == nil {
				continue
			}
			switch r.kind {
			case reqEvent:
				raw, _ := json.Marshal(r.event)
				_, _ = tx.Stmt(insertEvent).Exec(
					r.event.Time, r.event.ConnID, r.event.UserID, r.event.Type,
					boolInt(r.event.Suppress), r.event.ErrorCode, string(raw),
				)
			case reqRoll:
				_, _ = tx.Stmt(insertRoll).Exec(
					r.roll.Time, r.roll.InitiatorID, r.roll.Phase, r.roll.DiceType,
					r.roll.Result, boolInt(r.roll.Success),
					boolInt(r.roll.IsCriticalSuccess), boolInt(r.roll.IsCriticalFailure),
				)
			}
			opCount++
			if opCount >= commitEvery {
				commit()
			}
		case <-flushTimer.C:
			if tx != nil && time.Since(lastCommit) >= commitMaxWait {
				commit()
			}
		}
	}
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// RollRow is the read-model view of one roll lifecycle entry.
type RollRow struct {
	Time        string
	InitiatorID string
	Phase       string
	DiceType    string
	Result      int
	Success     bool
}

// RollHistory returns the most recent roll entries for an initiator, newest
// first. Empty initiator returns across all participants.
func (s *SQLiteIndex) RollHistory(initiatorID string, limit int) ([]RollRow, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT time,initiator_id,phase,dice_type,result,success FROM rolls`
	args := []any{}
	if initiatorID != "" {
		q += ` WHERE initiator_id = ?`
		args = append(args, initiatorID)
	}
	q += ` ORDER BY seq DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RollRow
	for rows.Next() {
		var r RollRow
		var success int
		if err := rows.Scan(&r.Time, &r.InitiatorID, &r.Phase, &r.DiceType, &r.Result, &success); err != nil {
			return nil, err
		}
		r.Success = success != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// EventCounts returns the number of indexed events per message type.
func (s *SQLiteIndex) EventCounts() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT type, COUNT(*) FROM session_events GROUP BY type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		out[t] = n
	}
	return out, rows.Err()
}

// Flush blocks until every entry enqueued before the call is committed.
// Intended for tests and shutdown paths that query the read model.
func (s *SQLiteIndex) Flush() {
	if s == nil || s.closed.Load() {
		return
	}
	done := make(chan struct{})
	s.ch <- req{kind: reqSync, done: done}
	<-done
}
