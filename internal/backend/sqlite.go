package backend

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"chatsearch/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
    chat_id   INTEGER NOT NULL,
    id        INTEGER NOT NULL,
    thread_id INTEGER NOT NULL DEFAULT 0,
    author    TEXT NOT NULL DEFAULT '',
    kind      TEXT NOT NULL DEFAULT 'text',
    text      TEXT NOT NULL DEFAULT '',
    date      INTEGER NOT NULL,
    PRIMARY KEY (chat_id, id)
);

CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
    text,
    content='messages',
    content_rowid='rowid'
);

CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
    INSERT INTO messages_fts(rowid, text) VALUES (new.rowid, new.text);
END;

CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, text) VALUES ('delete', old.rowid, old.text);
END;

CREATE TRIGGER IF NOT EXISTS messages_au AFTER UPDATE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, text) VALUES ('delete', old.rowid, old.text);
    INSERT INTO messages_fts(rowid, text) VALUES (new.rowid, new.text);
END;
`

const tokenPrefix = "before:"

// SQLite is a local message index that serves both query shapes from one
// FTS5 table. Restricted searches ignore threads and never report a total.
type SQLite struct {
	db     *sql.DB
	logger *zap.Logger
	closed atomic.Bool
}

// OpenSQLite opens (creating if needed) the index at dbPath
func OpenSQLite(dbPath string, logger *zap.Logger) (*SQLite, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	logger.Debug("index opened", zap.String("path", dbPath))
	return &SQLite{db: db, logger: logger}, nil
}

// Close closes the underlying database
func (s *SQLite) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

// Import upserts messages into the index
func (s *SQLite) Import(ctx context.Context, messages []domain.Message) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	if len(messages) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (chat_id, id, thread_id, author, kind, text, date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chat_id, id) DO UPDATE SET
			thread_id = excluded.thread_id,
			author = excluded.author,
			kind = excluded.kind,
			text = excluded.text,
			date = excluded.date`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range messages {
		kind := m.Kind
		if kind == domain.ContentAny {
			kind = domain.ContentText
		}
		if _, err := stmt.ExecContext(ctx,
			m.ID.ChatID, m.ID.MessageID, m.ThreadID, m.Author, string(kind), m.Text, m.Date.Unix(),
		); err != nil {
			return 0, fmt.Errorf("inserting message %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing import: %w", err)
	}
	committed = true

	s.logger.Info("messages imported", zap.Int("count", len(messages)))
	return len(messages), nil
}

// SearchStandard pages by message id, newest first, and counts all matches
func (s *SQLite) SearchStandard(ctx context.Context, q StandardQuery) (StandardPage, error) {
	if s.closed.Load() {
		return StandardPage{}, ErrClosed
	}
	f := filter{
		chatID:   q.ChatID,
		threadID: q.ThreadID,
		query:    q.Query,
		author:   q.Author,
		kind:     q.Kind,
	}

	total, err := s.count(ctx, f)
	if err != nil {
		return StandardPage{}, err
	}
	if total == 0 {
		return StandardPage{Messages: []domain.Message{}}, nil
	}

	f.beforeID = q.BeforeMessageID
	messages, err := s.page(ctx, f, q.Limit)
	if err != nil {
		return StandardPage{}, err
	}
	return StandardPage{Messages: messages, TotalCount: total}, nil
}

// SearchRestricted pages with an opaque token, newest first
func (s *SQLite) SearchRestricted(ctx context.Context, q RestrictedQuery) (RestrictedPage, error) {
	if s.closed.Load() {
		return RestrictedPage{}, ErrClosed
	}
	before, err := decodeToken(q.Token)
	if err != nil {
		return RestrictedPage{}, err
	}
	f := filter{
		chatID:   q.ChatID,
		query:    q.Query,
		author:   q.Author,
		kind:     q.Kind,
		beforeID: before,
	}

	messages, err := s.page(ctx, f, q.Limit)
	if err != nil {
		return RestrictedPage{}, err
	}

	page := RestrictedPage{Messages: messages}
	if q.Limit > 0 && len(messages) == q.Limit {
		page.NextToken = encodeToken(messages[len(messages)-1].ID.MessageID)
	}
	return page, nil
}

// CountRestricted sizes a restricted result set, ignoring the token
func (s *SQLite) CountRestricted(ctx context.Context, q RestrictedQuery) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	return s.count(ctx, filter{
		chatID: q.ChatID,
		query:  q.Query,
		author: q.Author,
		kind:   q.Kind,
	})
}

type filter struct {
	chatID   int64
	threadID int64
	query    string
	author   string
	kind     domain.ContentKind
	beforeID int64
}

// matchesNothing reports a query that had text but no searchable words
func (f filter) matchesNothing() bool {
	return strings.TrimSpace(f.query) != "" && sanitizeFTSQuery(f.query) == ""
}

// where builds the FROM and WHERE clauses shared by page and count queries
func (f filter) where() (string, []any) {
	var (
		from  = "messages m"
		conds = []string{"m.chat_id = ?"}
		args  = []any{f.chatID}
	)

	if match := sanitizeFTSQuery(f.query); match != "" {
		from = "messages_fts fts JOIN messages m ON m.rowid = fts.rowid"
		conds = append(conds, "messages_fts MATCH ?")
		args = append(args, match)
	}
	if f.threadID != 0 {
		conds = append(conds, "m.thread_id = ?")
		args = append(args, f.threadID)
	}
	if f.author != "" {
		conds = append(conds, "m.author = ? COLLATE NOCASE")
		args = append(args, f.author)
	}
	if f.kind != domain.ContentAny {
		conds = append(conds, "m.kind = ?")
		args = append(args, string(f.kind))
	}
	if f.beforeID > 0 {
		conds = append(conds, "m.id < ?")
		args = append(args, f.beforeID)
	}

	return from + " WHERE " + strings.Join(conds, " AND "), args
}

func (s *SQLite) count(ctx context.Context, f filter) (int, error) {
	if f.matchesNothing() {
		return 0, nil
	}
	clause, args := f.where()
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+clause, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("counting search results: %w", err)
	}
	return total, nil
}

func (s *SQLite) page(ctx context.Context, f filter, limit int) ([]domain.Message, error) {
	if f.matchesNothing() {
		return []domain.Message{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	clause, args := f.where()
	query := "SELECT m.chat_id, m.id, m.thread_id, m.author, m.kind, m.text, m.date FROM " +
		clause + " ORDER BY m.id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching messages: %w", err)
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var (
			m    domain.Message
			kind string
			date int64
		)
		if err := rows.Scan(&m.ID.ChatID, &m.ID.MessageID, &m.ThreadID, &m.Author, &kind, &m.Text, &date); err != nil {
			return nil, fmt.Errorf("scanning search result row: %w", err)
		}
		m.Kind = domain.ContentKind(kind)
		m.Date = time.Unix(date, 0).UTC()
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search result rows: %w", err)
	}
	return messages, nil
}

// sanitizeFTSQuery quotes every word and turns it into a prefix match so user
// input can never be parsed as FTS5 operators
func sanitizeFTSQuery(query string) string {
	words := strings.Fields(query)
	safe := make([]string, 0, len(words))
	for _, w := range words {
		cleaned := strings.ReplaceAll(w, "\"", "")
		cleaned = strings.ReplaceAll(cleaned, "*", "")
		if cleaned == "" {
			continue
		}
		safe = append(safe, "\""+cleaned+"\"*")
	}
	return strings.Join(safe, " ")
}

func encodeToken(beforeID int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(tokenPrefix + strconv.FormatInt(beforeID, 10)))
}

func decodeToken(token string) (int64, error) {
	if token == "" {
		return 0, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	rest, ok := strings.CutPrefix(string(raw), tokenPrefix)
	if !ok {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}
