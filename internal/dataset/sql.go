package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	// Drivers selected via config at run time.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// Open opens a database handle for the configured driver and verifies the
// connection.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	switch driver {
	case "mysql", "postgres":
	default:
		return nil, errors.Errorf("unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	return db, nil
}

// SQLProvider serves a dataset stored in a SQL table. The raw table is
// loaded once at construction; statistics are computed in memory from the
// loaded rows.
type SQLProvider struct {
	db       *sql.DB
	driver   string
	table    string
	entityID string
	dkTable  string

	attrs []string
	rows  []Row
}

// NewSQL loads the raw table and returns a provider over it. entityID
// names the entity id column; dkTable names the table of flagged cells.
func NewSQL(ctx context.Context, db *sql.DB, driver, table, entityID, dkTable string) (*SQLProvider, error) {
	if table == "" {
		return nil, errors.New("dataset table is not configured")
	}
	p := &SQLProvider{db: db, driver: driver, table: table, entityID: entityID, dkTable: dkTable}
	if err := p.load(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *SQLProvider) load(ctx context.Context) error {
	query := fmt.Sprintf("SELECT * FROM %s ORDER BY %s",
		QuoteIdent(p.driver, p.table), QuoteIdent(p.driver, p.entityID))
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return errors.Wrapf(err, "load raw table %s", p.table)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return errors.Wrap(err, "read raw table columns")
	}
	tidIdx := -1
	for i, col := range cols {
		if col == p.entityID {
			tidIdx = i
			break
		}
	}
	if tidIdx < 0 {
		return errors.Errorf("raw table %s has no entity id column %q", p.table, p.entityID)
	}

	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		dest := make([]any, len(cols))
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return errors.Wrap(err, "scan raw row")
		}
		if !vals[tidIdx].Valid {
			return errors.Errorf("raw table %s has a NULL entity id", p.table)
		}
		var tid int64
		if _, err := fmt.Sscan(vals[tidIdx].String, &tid); err != nil {
			return errors.Wrapf(err, "parse entity id %q", vals[tidIdx].String)
		}
		row := Row{TID: tid, Values: make(map[string]string, len(cols)-1)}
		for i, col := range cols {
			if i == tidIdx {
				continue
			}
			if vals[i].Valid {
				row.Values[col] = vals[i].String
			} else {
				row.Values[col] = NullValue
			}
		}
		p.rows = append(p.rows, row)
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "iterate raw table")
	}

	attrs := make([]string, 0, len(cols)-1)
	for _, col := range cols {
		if col != p.entityID {
			attrs = append(attrs, col)
		}
	}
	sort.Strings(attrs)
	p.attrs = attrs
	return nil
}

// Attributes returns the sorted data attributes.
func (p *SQLProvider) Attributes() []string {
	return p.attrs
}

// Rows returns the loaded records in entity id order.
func (p *SQLProvider) Rows(context.Context) ([]Row, error) {
	return p.rows, nil
}

// Statistics computes frequency statistics over the loaded rows.
func (p *SQLProvider) Statistics(context.Context) (Statistics, error) {
	return BuildStatistics(p.rows, p.attrs), nil
}

// CellID derives a stable cell id from the entity id and the attribute's
// position in the sorted attribute list.
func (p *SQLProvider) CellID(tid int64, attr string) (int64, error) {
	idx := sort.SearchStrings(p.attrs, attr)
	if idx >= len(p.attrs) || p.attrs[idx] != attr {
		return 0, errors.Errorf("unknown attribute %q", attr)
	}
	return tid*int64(len(p.attrs)) + int64(idx), nil
}

// ActiveAttributes reads the distinct attributes from the flagged-cell
// table. An empty set aborts the run: generation without error detection
// output is meaningless.
func (p *SQLProvider) ActiveAttributes(ctx context.Context) ([]string, error) {
	if p.dkTable == "" {
		return nil, errors.New("flagged-cell table is not configured")
	}
	query := fmt.Sprintf("SELECT DISTINCT attribute FROM %s", QuoteIdent(p.driver, p.dkTable))
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, "query flagged cells from %s", p.dkTable)
	}
	defer func() { _ = rows.Close() }()

	var active []string
	for rows.Next() {
		var attr string
		if err := rows.Scan(&attr); err != nil {
			return nil, errors.Wrap(err, "scan flagged attribute")
		}
		active = append(active, attr)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate flagged attributes")
	}
	if len(active) == 0 {
		return nil, errors.New("no attribute contains flagged cells")
	}
	sort.Strings(active)
	return active, nil
}

// QuoteIdent quotes a SQL identifier for the given driver.
func QuoteIdent(driver, ident string) string {
	if driver == "mysql" {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
