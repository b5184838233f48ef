package book

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	jsoniter "github.com/json-iterator/go"
)

const (
	logMsgSQLExecuted = "executed sql for: "
	logMsgQueryFailed = "document store request failed: "
	logAttrQuery      = "query"
	logAttrDurationMS = "duration_ms"
	logAttrError      = "error"

	// first title match in default order, see updatePriceSQL and deleteByTitleSQL
	firstByTitle = `SELECT id, doc FROM %[1]s WHERE doc->>'title' = $1 ORDER BY id LIMIT 1`

	updatePriceSQL = `
		WITH target AS (` + firstByTitle + `),
		changed AS (
			UPDATE %[1]s b
			SET doc = jsonb_set(b.doc, '{price}', to_jsonb($2::numeric))
			FROM target t
			WHERE b.id = t.id AND t.doc->'price' IS DISTINCT FROM to_jsonb($2::numeric)
			RETURNING b.id
		)
		SELECT (SELECT COUNT(*) FROM target), (SELECT COUNT(*) FROM changed)`

	deleteByTitleSQL = `
		DELETE FROM %[1]s
		WHERE id = (SELECT id FROM (` + firstByTitle + `) first_match)`

	explainPrefix = "EXPLAIN (ANALYZE, BUFFERS, FORMAT JSON) "
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Logger receives SQL timing at debug level and store failures at error level.
// *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Option configures a PostgresRepo.
type Option func(*PostgresRepo) error

// WithTableName sets the table holding the book documents.
func WithTableName(tableName string) Option {
	return func(r *PostgresRepo) error {
		if strings.TrimSpace(tableName) == "" {
			return fmt.Errorf("%w: empty table name", ErrInvalidArgument)
		}
		r.table = tableName
		return nil
	}
}

// WithLogger sets the logger for the repository.
func WithLogger(logger Logger) Option {
	return func(r *PostgresRepo) error {
		r.logger = logger
		return nil
	}
}

// PostgresRepo stores books as JSONB documents, one per row.
type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
	table   string
	logger  Logger
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration, options ...Option) (*PostgresRepo, error) {
	r := &PostgresRepo{db: db, timeout: timeout, table: defaultTableName}
	for _, opt := range options {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) tableIdent() string {
	return pgx.Identifier{r.table}.Sanitize()
}

func (r *PostgresRepo) Find(ctx context.Context, q Query) ([]Book, error) {
	docs, err := r.findDocuments(ctx, "find", q)
	if err != nil {
		return nil, err
	}

	out := make([]Book, 0, len(docs))
	for _, d := range docs {
		var b Book
		if err := jsonAPI.Unmarshal(d.raw, &b); err != nil {
			return nil, fmt.Errorf("decode book %d: %w", d.id, err)
		}
		b.ID = d.id
		out = append(out, b)
	}
	return out, nil
}

func (r *PostgresRepo) FindSummaries(ctx context.Context, q Query) ([]Summary, error) {
	docs, err := r.findDocuments(ctx, "find summaries", q)
	if err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(docs))
	for _, d := range docs {
		var s Summary
		if err := jsonAPI.Unmarshal(d.raw, &s); err != nil {
			return nil, fmt.Errorf("decode summary %d: %w", d.id, err)
		}
		out = append(out, s)
	}
	return out, nil
}

type rawDocument struct {
	id  int64
	raw []byte
}

func (r *PostgresRepo) findDocuments(ctx context.Context, action string, q Query) ([]rawDocument, error) {
	ds, err := buildFind(r.table, q)
	if err != nil {
		return nil, err
	}
	sqlQuery, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", action, err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	rows, err := r.db.Query(timeoutCtx, sqlQuery, args...)
	if err != nil {
		return nil, r.storeError(action, err)
	}
	defer rows.Close()

	var docs []rawDocument
	for rows.Next() {
		var d rawDocument
		if err := rows.Scan(&d.id, &d.raw); err != nil {
			return nil, r.storeError(action, err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, r.storeError(action, err)
	}
	r.logQuery(action, sqlQuery, time.Since(start))
	return docs, nil
}

func (r *PostgresRepo) InsertMany(ctx context.Context, books []Book) (int64, error) {
	if len(books) == 0 {
		return 0, nil
	}

	docs := make([][]byte, 0, len(books))
	for _, b := range books {
		b.ID = 0
		d, err := jsonAPI.Marshal(b)
		if err != nil {
			return 0, fmt.Errorf("encode book %q: %w", b.Title, err)
		}
		docs = append(docs, d)
	}

	sqlQuery, args, err := buildInsert(r.table, docs).Prepared(true).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build insert query: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	tag, err := r.db.Exec(timeoutCtx, sqlQuery, args...)
	if err != nil {
		return 0, r.storeError("insert", err)
	}
	r.logQuery("insert", sqlQuery, time.Since(start))
	return tag.RowsAffected(), nil
}

func (r *PostgresRepo) UpdatePriceByTitle(ctx context.Context, title string, price float64) (UpdateResult, error) {
	sqlQuery := fmt.Sprintf(updatePriceSQL, r.tableIdent())

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	var res UpdateResult
	if err := r.db.QueryRow(timeoutCtx, sqlQuery, title, price).Scan(&res.MatchedCount, &res.ModifiedCount); err != nil {
		return UpdateResult{}, r.storeError("update price", err)
	}
	r.logQuery("update price", sqlQuery, time.Since(start))
	return res, nil
}

func (r *PostgresRepo) DeleteByTitle(ctx context.Context, title string) (DeleteResult, error) {
	sqlQuery := fmt.Sprintf(deleteByTitleSQL, r.tableIdent())

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	tag, err := r.db.Exec(timeoutCtx, sqlQuery, title)
	if err != nil {
		return DeleteResult{}, r.storeError("delete", err)
	}
	r.logQuery("delete", sqlQuery, time.Since(start))
	return DeleteResult{DeletedCount: tag.RowsAffected()}, nil
}

func (r *PostgresRepo) AveragePriceByGenre(ctx context.Context) ([]GenreAverage, error) {
	rows, done, err := r.aggregate(ctx, "average price by genre", buildAveragePriceByGenre(r.table))
	if err != nil {
		return nil, err
	}
	defer done()

	out := make([]GenreAverage, 0)
	for rows.Next() {
		var genre *string
		var avg *float64
		if err := rows.Scan(&genre, &avg); err != nil {
			return nil, r.storeError("average price by genre", err)
		}
		row := GenreAverage{}
		if genre != nil {
			row.Genre = *genre
		}
		if avg != nil {
			row.AveragePrice = *avg
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, r.storeError("average price by genre", err)
	}
	return out, nil
}

func (r *PostgresRepo) TopAuthor(ctx context.Context) (AuthorCount, error) {
	rows, done, err := r.aggregate(ctx, "top author", buildTopAuthor(r.table))
	if err != nil {
		return AuthorCount{}, err
	}
	defer done()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return AuthorCount{}, r.storeError("top author", err)
		}
		return AuthorCount{}, ErrNotFound
	}
	var author *string
	var res AuthorCount
	if err := rows.Scan(&author, &res.BookCount); err != nil {
		return AuthorCount{}, r.storeError("top author", err)
	}
	if author != nil {
		res.Author = *author
	}
	return res, nil
}

func (r *PostgresRepo) CountByDecade(ctx context.Context) ([]DecadeCount, error) {
	rows, done, err := r.aggregate(ctx, "count by decade", buildCountByDecade(r.table))
	if err != nil {
		return nil, err
	}
	defer done()

	out := make([]DecadeCount, 0)
	for rows.Next() {
		var row DecadeCount
		if err := rows.Scan(&row.Decade, &row.BookCount); err != nil {
			return nil, r.storeError("count by decade", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, r.storeError("count by decade", err)
	}
	return out, nil
}

// aggregate runs a grouping query. The returned func releases the rows and
// the timeout context and must be called once the rows are consumed.
func (r *PostgresRepo) aggregate(ctx context.Context, action string, ds *goqu.SelectDataset) (pgx.Rows, func(), error) {
	sqlQuery, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, nil, fmt.Errorf("build %s query: %w", action, err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	start := time.Now()
	rows, err := r.db.Query(timeoutCtx, sqlQuery, args...)
	if err != nil {
		cancel()
		return nil, nil, r.storeError(action, err)
	}
	return rows, func() {
		rows.Close()
		cancel()
		r.logQuery(action, sqlQuery, time.Since(start))
	}, nil
}

func (r *PostgresRepo) EnsureIndex(ctx context.Context, spec IndexSpec) (string, error) {
	name, ddl, err := buildCreateIndex(r.table, spec)
	if err != nil {
		return "", err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	if _, err := r.db.Exec(timeoutCtx, ddl); err != nil {
		return "", r.storeError("ensure index", err)
	}
	r.logQuery("ensure index", ddl, time.Since(start))
	return name, nil
}

type explainOutput struct {
	Plan          planNode `json:"Plan"`
	PlanningTime  float64  `json:"Planning Time"`
	ExecutionTime float64  `json:"Execution Time"`
}

type planNode struct {
	NodeType   string     `json:"Node Type"`
	IndexName  string     `json:"Index Name"`
	ActualRows float64    `json:"Actual Rows"`
	Plans      []planNode `json:"Plans"`
}

func (n planNode) firstIndex() string {
	if n.IndexName != "" {
		return n.IndexName
	}
	for _, child := range n.Plans {
		if name := child.firstIndex(); name != "" {
			return name
		}
	}
	return ""
}

// Explain runs q under EXPLAIN ANALYZE. The query is rendered with inlined
// values because EXPLAIN is sent as a plain statement.
func (r *PostgresRepo) Explain(ctx context.Context, q Query) (Explain, error) {
	ds, err := buildFind(r.table, q)
	if err != nil {
		return Explain{}, err
	}
	sqlQuery, _, err := ds.ToSQL()
	if err != nil {
		return Explain{}, fmt.Errorf("build explain query: %w", err)
	}
	sqlQuery = explainPrefix + sqlQuery

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	var raw []byte
	if err := r.db.QueryRow(timeoutCtx, sqlQuery).Scan(&raw); err != nil {
		return Explain{}, r.storeError("explain", err)
	}
	r.logQuery("explain", sqlQuery, time.Since(start))

	return decodeExplain(raw)
}

func decodeExplain(raw []byte) (Explain, error) {
	var outputs []explainOutput
	if err := jsonAPI.Unmarshal(raw, &outputs); err != nil {
		return Explain{}, fmt.Errorf("decode explain output: %w", err)
	}
	if len(outputs) == 0 {
		return Explain{}, errors.New("decode explain output: empty plan")
	}

	out := outputs[0]
	return Explain{
		Plan:            raw,
		PlanningTimeMS:  out.PlanningTime,
		ExecutionTimeMS: out.ExecutionTime,
		NodeType:        out.Plan.NodeType,
		IndexName:       out.Plan.firstIndex(),
		ActualRows:      int64(math.Round(out.Plan.ActualRows)),
	}, nil
}

func (r *PostgresRepo) Ping(ctx context.Context) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.Ping(timeoutCtx); err != nil {
		return r.storeError("ping", err)
	}
	return nil
}

func (r *PostgresRepo) storeError(action string, err error) error {
	if r.logger != nil {
		r.logger.Error(logMsgQueryFailed+action, logAttrError, err.Error())
	}
	wrapped := fmt.Errorf("%s: %w", action, err)
	if isUnavailable(err) {
		return errors.Join(ErrStoreUnavailable, wrapped)
	}
	return wrapped
}

// isUnavailable reports whether err means the store could not serve the
// request at all, as opposed to rejecting it.
func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"), // connection exception
			pgErr.Code == "57P01", // admin_shutdown
			pgErr.Code == "57P03", // cannot_connect_now
			pgErr.Code == "53300": // too_many_connections
			return true
		}
	}
	return strings.Contains(err.Error(), "closed pool")
}

func (r *PostgresRepo) logQuery(action, sqlQuery string, d time.Duration) {
	if r.logger != nil {
		r.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, float64(d.Microseconds())/1000, logAttrQuery, sqlQuery)
	}
}
