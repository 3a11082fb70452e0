package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"domgen/internal/config"
	"domgen/internal/dataset"
	"domgen/internal/domain"
)

// SQLSink persists the generated domain into two SQL tables. Both are
// recreated on every run; the generation is a one-shot batch and the
// tables are derived data.
type SQLSink struct {
	db     *sql.DB
	driver string
	cfg    config.SinkConfig
}

// NewSQL builds a sink writing to the configured tables.
func NewSQL(db *sql.DB, driver string, cfg config.SinkConfig) *SQLSink {
	return &SQLSink{db: db, driver: driver, cfg: cfg}
}

// Store recreates the domain tables and inserts all cells plus the
// long-format expansion inside one transaction.
func (s *SQLSink) Store(ctx context.Context, cells []domain.Cell) error {
	if len(cells) == 0 {
		return errors.New("generated domain is empty")
	}
	if err := s.createTables(ctx); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin sink transaction")
	}
	if err := s.insertCells(ctx, tx, cells); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := s.insertPosValues(ctx, tx, ExpandPosValues(cells)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit sink transaction")
	}
	return nil
}

func (s *SQLSink) createTables(ctx context.Context) error {
	domainTable := dataset.QuoteIdent(s.driver, s.cfg.DomainTable)
	posTable := dataset.QuoteIdent(s.driver, s.cfg.PosValuesTable)
	stmts := []string{
		fmt.Sprintf("DROP TABLE IF EXISTS %s", domainTable),
		fmt.Sprintf("DROP TABLE IF EXISTS %s", posTable),
		fmt.Sprintf(`CREATE TABLE %s (
			entity_id BIGINT NOT NULL,
			cell_id BIGINT NOT NULL,
			variable_id BIGINT,
			attribute VARCHAR(255) NOT NULL,
			domain TEXT NOT NULL,
			domain_size INT NOT NULL,
			init_value TEXT NOT NULL,
			init_index INT NOT NULL,
			fixed INT NOT NULL
		)`, domainTable),
		fmt.Sprintf(`CREATE TABLE %s (
			variable_id BIGINT NOT NULL,
			cell_id BIGINT NOT NULL,
			entity_id BIGINT NOT NULL,
			attribute VARCHAR(255) NOT NULL,
			candidate_value TEXT NOT NULL,
			candidate_rank INT NOT NULL
		)`, posTable),
		fmt.Sprintf("CREATE INDEX %s ON %s (entity_id)",
			dataset.QuoteIdent(s.driver, s.cfg.DomainTable+"_entity_idx"), domainTable),
		fmt.Sprintf("CREATE INDEX %s ON %s (cell_id)",
			dataset.QuoteIdent(s.driver, s.cfg.DomainTable+"_cell_idx"), domainTable),
		fmt.Sprintf("CREATE INDEX %s ON %s (entity_id, attribute)",
			dataset.QuoteIdent(s.driver, s.cfg.PosValuesTable+"_entity_attr_idx"), posTable),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "prepare sink tables: %s", firstLine(stmt))
		}
	}
	return nil
}

func (s *SQLSink) insertCells(ctx context.Context, tx *sql.Tx, cells []domain.Cell) error {
	cols := []string{"entity_id", "cell_id", "variable_id", "attribute", "domain", "domain_size", "init_value", "init_index", "fixed"}
	for start := 0; start < len(cells); start += s.cfg.BatchSize {
		end := start + s.cfg.BatchSize
		if end > len(cells) {
			end = len(cells)
		}
		batch := cells[start:end]
		args := make([]any, 0, len(batch)*len(cols))
		for _, cell := range batch {
			var vid sql.NullInt64
			if cell.VID != domain.NoVID {
				vid = sql.NullInt64{Int64: cell.VID, Valid: true}
			}
			fixed := 0
			if cell.Fixed {
				fixed = 1
			}
			args = append(args, cell.TID, cell.CID, vid, cell.Attribute,
				SerializeDomain(cell.Domain), len(cell.Domain), cell.InitValue, cell.InitIndex, fixed)
		}
		stmt := insertStmt(s.driver, s.cfg.DomainTable, cols, len(batch))
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return errors.Wrap(err, "insert cell domains")
		}
	}
	return nil
}

func (s *SQLSink) insertPosValues(ctx context.Context, tx *sql.Tx, values []PosValue) error {
	cols := []string{"variable_id", "cell_id", "entity_id", "attribute", "candidate_value", "candidate_rank"}
	for start := 0; start < len(values); start += s.cfg.BatchSize {
		end := start + s.cfg.BatchSize
		if end > len(values) {
			end = len(values)
		}
		batch := values[start:end]
		args := make([]any, 0, len(batch)*len(cols))
		for _, pv := range batch {
			args = append(args, pv.VID, pv.CID, pv.TID, pv.Attribute, pv.Value, pv.Rank)
		}
		stmt := insertStmt(s.driver, s.cfg.PosValuesTable, cols, len(batch))
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return errors.Wrap(err, "insert pos values")
		}
	}
	return nil
}

// insertStmt builds a multi-row INSERT with driver-appropriate
// placeholders: ? for mysql, $n for postgres.
func insertStmt(driver, table string, cols []string, rows int) string {
	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = dataset.QuoteIdent(driver, col)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ",
		dataset.QuoteIdent(driver, table), strings.Join(quoted, ", "))
	arg := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for c := range cols {
			if c > 0 {
				b.WriteString(", ")
			}
			if driver == "mysql" {
				b.WriteString("?")
			} else {
				fmt.Fprintf(&b, "$%d", arg)
			}
			arg++
		}
		b.WriteString(")")
	}
	return b.String()
}

func firstLine(stmt string) string {
	if idx := strings.IndexByte(stmt, '\n'); idx >= 0 {
		return stmt[:idx]
	}
	return stmt
}
