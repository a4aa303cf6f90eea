package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	_ "modernc.org/sqlite"

	"overseer.ai/internal/dispatch"
)

// SQLiteIndex is a secondary read-model of dispatch decisions. Writes go
// through a buffered channel drained by one goroutine so the simulation
// loop never blocks on the database; when the buffer fills, decisions
// are dropped (the zstd trace log remains the source of truth).
type SQLiteIndex struct {
	db *sql.DB

	ch    chan dispatch.Decision
	flush chan chan struct{}
	wg    sync.WaitGroup
	once  sync.Once

	closed atomic.Bool
}

func Open(path string) (*SQLiteIndex, error) {
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
		db:    db,
		ch:    make(chan dispatch.Decision, 65536),
		flush: make(chan chan struct{}),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL suits the append-only decision stream; NORMAL durability is
	// fine for a secondary index.
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
		`CREATE TABLE IF NOT EXISTS modules (
			id TEXT PRIMARY KEY,
			category TEXT NOT NULL,
			priority REAL NOT NULL,
			cache_interval INTEGER NOT NULL,
			cooldown INTEGER NOT NULL,
			progressive INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS decisions (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			tick INTEGER NOT NULL,
			agent_id TEXT NOT NULL,
			category TEXT NOT NULL,
			module_id TEXT NOT NULL,
			target_id TEXT,
			outcome TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_module_tick ON decisions(module_id, tick);`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_agent_tick ON decisions(agent_id, tick);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// WriteDecision implements dispatch.TraceSink.
func (s *SQLiteIndex) WriteDecision(d dispatch.Decision) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- d:
	default:
		// Drop when the indexer falls behind.
	}
	return nil
}

// UpsertModules records the registered module set, so inspection tools
// can see modules that never produced a decision.
func (s *SQLiteIndex) UpsertModules(descs []dispatch.Descriptor) error {
	if s == nil {
		return nil
	}
	for _, d := range descs {
		prog := 0
		if d.Progressive {
			prog = 1
		}
		_, err := s.db.Exec(
			`INSERT INTO modules(id, category, priority, cache_interval, cooldown, progressive)
			 VALUES(?,?,?,?,?,?)
			 ON CONFLICT(id) DO UPDATE SET
			   category=excluded.category, priority=excluded.priority,
			   cache_interval=excluded.cache_interval, cooldown=excluded.cooldown,
			   progressive=excluded.progressive;`,
			d.ID, d.Category, d.Priority, int64(d.CacheInterval), int64(d.Cooldown), prog,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

type SummaryRow struct {
	ModuleID string
	Outcome  string
	Count    int64
}

// Summary aggregates decision counts per (module, outcome).
func (s *SQLiteIndex) Summary() ([]SummaryRow, error) {
	rows, err := s.db.Query(
		`SELECT module_id, outcome, COUNT(*) FROM decisions
		 GROUP BY module_id, outcome ORDER BY module_id, outcome;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SummaryRow
	for rows.Next() {
		var r SummaryRow
		if err := rows.Scan(&r.ModuleID, &r.Outcome, &r.Count); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Flush blocks until everything buffered so far is written.
func (s *SQLiteIndex) Flush() {
	if s == nil || s.closed.Load() {
		return
	}
	done := make(chan struct{})
	s.flush <- done
	<-done
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

func (s *SQLiteIndex) loop() {
	for {
		select {
		case d, ok := <-s.ch:
			if !ok {
				return
			}
			s.insert(d)
		case done := <-s.flush:
			s.drain()
			close(done)
		}
	}
}

func (s *SQLiteIndex) drain() {
	for {
		select {
		case d, ok := <-s.ch:
			if !ok {
				return
			}
			s.insert(d)
		default:
			return
		}
	}
}

func (s *SQLiteIndex) insert(d dispatch.Decision) {
	_, err := s.db.Exec(
		`INSERT INTO decisions(tick, agent_id, category, module_id, target_id, outcome)
		 VALUES(?,?,?,?,?,?);`,
		int64(d.Tick), d.AgentID, d.Category, d.ModuleID, d.TargetID, d.Outcome,
	)
	_ = err // decisions are best-effort; the trace log is authoritative
}
