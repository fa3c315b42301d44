package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/okian/scout/internal/domain/attribute"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/pkg/metrics"

	// Pure Go SQLite driver, registered as "sqlite".
	_ "modernc.org/sqlite"
)

// descriptiveColumns precede the attribute columns in every query.
var descriptiveColumns = []string{
	"id", "name", "alt_pos", "accelerate", "club", "nation", "league", "foot",
	"height", "revision", "age", "club_id", "league_id", "roles", "playstyles",
}

// Statements are assembled once from the fixed schema. No caller input is
// ever concatenated into SQL.
var (
	attributeColumns = attribute.All()
	allColumns       = append(append([]string{}, descriptiveColumns...), attributeColumns...)

	createTableSQL = buildCreateTable()
	insertSQL      = fmt.Sprintf("INSERT INTO players (%s) VALUES (%s)",
		strings.Join(allColumns, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(allColumns)), ", "))
	selectSQL   = fmt.Sprintf("SELECT %s FROM players", strings.Join(allColumns, ", "))
	selectByID  = selectSQL + " WHERE id = ?"
	selectAll   = selectSQL + " ORDER BY id"
	deleteAll   = "DELETE FROM players"
	countPlayer = "SELECT COUNT(*) FROM players"
)

func buildCreateTable() string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS players (\n  id INTEGER PRIMARY KEY")
	for _, c := range descriptiveColumns[1:] {
		typ := "TEXT"
		if c == "club_id" || c == "league_id" {
			typ = "INTEGER"
		}
		fmt.Fprintf(&b, ",\n  %s %s", c, typ)
	}
	for _, c := range attributeColumns {
		fmt.Fprintf(&b, ",\n  %s REAL", c)
	}
	b.WriteString("\n)")
	return b.String()
}

// SQLiteStore persists players in a SQLite database file.
type SQLiteStore struct {
	db           *sql.DB
	maxOpenConns int
	closed       atomic.Bool
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(ctx context.Context, path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	s := NewSQLiteStore(db, opts...)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore wraps an already opened database. The schema is not
// created; call Migrate for that.
func NewSQLiteStore(db *sql.DB, opts ...SQLiteOption) *SQLiteStore {
	s := &SQLiteStore{db: db, maxOpenConns: 1}
	for _, opt := range opts {
		opt(s)
	}
	db.SetMaxOpenConns(s.maxOpenConns)
	return s
}

// Migrate creates the players table when it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create players table: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

// ReplaceAll deletes every row and inserts players in one transaction. On
// any failure the previous contents are kept.
func (s *SQLiteStore) ReplaceAll(ctx context.Context, players []model.Player) (err error) {
	if s.closed.Load() {
		return ErrClosed
	}
	start := time.Now()
	defer func() {
		if err != nil {
			metrics.RecordErrorByComponent("repository", "sqlite_replace")
			return
		}
		metrics.RecordRepositoryReplaceDuration("sqlite", float64(time.Since(start).Milliseconds()))
	}()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, deleteAll); err != nil {
		return fmt.Errorf("clear players: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(allColumns))
	for i := range players {
		bindPlayer(args, &players[i])
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert player %d: %w", players[i].ID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Get returns the player with id.
func (s *SQLiteStore) Get(ctx context.Context, id int) (model.Player, error) {
	if s.closed.Load() {
		return model.Player{}, ErrClosed
	}
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency("sqlite", float64(time.Since(start).Microseconds())/1000)
	}()

	row := s.db.QueryRowContext(ctx, selectByID, id)
	p, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Player{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return model.Player{}, fmt.Errorf("get player %d: %w", id, err)
	}
	return p, nil
}

// All returns every stored player ordered by id.
func (s *SQLiteStore) All(ctx context.Context) ([]model.Player, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, selectAll)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var out []model.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return out, nil
}

// Count returns the number of rows in the players table.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	var n int
	if err := s.db.QueryRowContext(ctx, countPlayer).Scan(&n); err != nil {
		return 0, fmt.Errorf("count players: %w", err)
	}
	return n, nil
}

func bindPlayer(args []any, p *model.Player) {
	args[0] = p.ID
	args[1] = p.Name
	args[2] = p.AltPositions
	args[3] = p.AcceleRate
	args[4] = p.Club
	args[5] = p.Nation
	args[6] = p.League
	args[7] = p.Foot
	args[8] = p.Height
	args[9] = p.Revision
	args[10] = p.Age
	args[11] = p.ClubID
	args[12] = p.LeagueID
	args[13] = p.Roles
	args[14] = p.Playstyles
	base := len(descriptiveColumns)
	for i, name := range attributeColumns {
		if v, ok := p.Value(name); ok {
			args[base+i] = v
		} else {
			args[base+i] = nil
		}
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row scanner) (model.Player, error) {
	var (
		p     model.Player
		text  [12]sql.NullString
		ids   [2]sql.NullInt64
		attrs = make([]sql.NullFloat64, len(attributeColumns))
	)
	dest := []any{
		&p.ID, &text[0], &text[1], &text[2], &text[3], &text[4], &text[5], &text[6],
		&text[7], &text[8], &text[9], &ids[0], &ids[1], &text[10], &text[11],
	}
	for i := range attrs {
		dest = append(dest, &attrs[i])
	}
	if err := row.Scan(dest...); err != nil {
		return model.Player{}, err
	}

	p.Name, p.AltPositions, p.AcceleRate = text[0].String, text[1].String, text[2].String
	p.Club, p.Nation, p.League = text[3].String, text[4].String, text[5].String
	p.Foot, p.Height, p.Revision, p.Age = text[6].String, text[7].String, text[8].String, text[9].String
	p.Roles, p.Playstyles = text[10].String, text[11].String
	p.ClubID, p.LeagueID = int(ids[0].Int64), int(ids[1].Int64)

	p.Attributes = make(map[string]float64, len(attrs))
	for i, a := range attrs {
		if a.Valid {
			p.Attributes[attributeColumns[i]] = a.Float64
		}
	}
	return p, nil
}
