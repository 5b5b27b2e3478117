// Package store persists canonical replies in a SQLite database, one row
// per reply.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dioptra-io/iris-converters/trace"
)

const timeFormat = time.RFC3339Nano

const schema = `
CREATE TABLE IF NOT EXISTS replies (
	measurement_id TEXT NOT NULL,
	agent_id       TEXT NOT NULL,
	protocol       TEXT NOT NULL,
	src_addr       TEXT NOT NULL,
	dst_addr       TEXT NOT NULL,
	src_port       INTEGER NOT NULL,
	dst_port       INTEGER NOT NULL,
	capture_time   TEXT NOT NULL,
	probe_ttl      INTEGER NOT NULL,
	quoted_ttl     INTEGER NOT NULL,
	reply_ttl      INTEGER NOT NULL,
	reply_size     INTEGER NOT NULL,
	reply_addr     TEXT NOT NULL,
	icmp_type      INTEGER NOT NULL,
	icmp_code      INTEGER NOT NULL,
	rtt            REAL NOT NULL,
	mpls_labels    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS replies_measurement ON replies (measurement_id, agent_id);
`

const insertReply = `INSERT INTO replies (
	measurement_id, agent_id, protocol, src_addr, dst_addr, src_port, dst_port,
	capture_time, probe_ttl, quoted_ttl, reply_ttl, reply_size, reply_addr,
	icmp_type, icmp_code, rtt, mpls_labels
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type Store struct {
	sqlDB *sql.DB
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.ExecContext(ctx, schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// InsertTraceroute inserts every reply of t in one transaction.
func (s *Store) InsertTraceroute(ctx context.Context, t *trace.Traceroute) (err error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertReply)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	src, dst := trace.FormatAddr(t.SrcAddr), trace.FormatAddr(t.DstAddr)
	proto := strings.ToLower(t.Protocol.String())
	for i := range t.Flows {
		f := &t.Flows[i]
		for j := range f.Replies {
			r := &f.Replies[j]
			_, err = stmt.ExecContext(ctx,
				t.MeasurementID, t.AgentID, proto, src, dst, f.SrcPort, f.DstPort,
				r.Timestamp.UTC().Format(timeFormat), r.ProbeTTL, r.QuotedTTL, r.TTL, r.Size,
				trace.FormatAddr(r.Addr), r.ICMPType, r.ICMPCode, r.RTT, trace.FormatMPLS(r.MPLSLabels),
			)
			if err != nil {
				return fmt.Errorf("insert flow %d reply %d: %w", i, j, err)
			}
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Count returns the number of stored replies.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM replies").Scan(&n); err != nil {
		return 0, fmt.Errorf("count replies: %w", err)
	}
	return n, nil
}
