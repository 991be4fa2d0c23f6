package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/laborboard/pkg/domain/labor"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS employees (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT,
	revenue_center TEXT NOT NULL,
	unpaid_break_minutes REAL NOT NULL DEFAULT 0,
	is_active TEXT NOT NULL DEFAULT 'true'
);
CREATE INDEX IF NOT EXISTS idx_employees_center ON employees(revenue_center);
CREATE TABLE IF NOT EXISTS revenue_centers (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	sales REAL NOT NULL DEFAULT 0,
	divisor REAL NOT NULL DEFAULT 1
);`

const employeeColumns = "id, name, start_time, end_time, revenue_center, unpaid_break_minutes, is_active"

// SQLiteRepository stores records in a SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLiteRepository opens the database at path and creates the tables.
// ":memory:" gives a private in-memory database.
func OpenSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	// One connection: in-memory databases are per connection and sqlite
	// serializes writers anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) ListEmployees() ([]labor.Employee, error) {
	return r.queryEmployees("SELECT " + employeeColumns + " FROM employees")
}

func (r *SQLiteRepository) ListActiveEmployees() ([]labor.Employee, error) {
	return r.queryEmployees("SELECT "+employeeColumns+" FROM employees WHERE is_active = ?", labor.ActiveFlag(true).String())
}

func (r *SQLiteRepository) ListEmployeesByCenter(center string, activeOnly bool) ([]labor.Employee, error) {
	if activeOnly {
		return r.queryEmployees("SELECT "+employeeColumns+" FROM employees WHERE revenue_center = ? AND is_active = ?",
			center, labor.ActiveFlag(true).String())
	}
	return r.queryEmployees("SELECT "+employeeColumns+" FROM employees WHERE revenue_center = ?", center)
}

func (r *SQLiteRepository) GetEmployee(id string) (labor.Employee, error) {
	row := r.db.QueryRow("SELECT "+employeeColumns+" FROM employees WHERE id = ?", id)
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return labor.Employee{}, fmt.Errorf("%w: %s", labor.ErrEmployeeNotFound, id)
	}
	return e, err
}

func (r *SQLiteRepository) CreateEmployee(e labor.Employee) error {
	stmt, err := r.db.Prepare("INSERT INTO employees(" + employeeColumns + ") VALUES(?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(e.ID, e.Name, formatTime(e.StartTime), formatEndTime(e.EndTime),
		e.RevenueCenter, e.UnpaidBreakMinutes, e.IsActive.String())
	if err != nil {
		return fmt.Errorf("failed to insert employee %s: %w", e.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateEmployee(e labor.Employee) error {
	stmt, err := r.db.Prepare(`UPDATE employees SET name = ?, start_time = ?, end_time = ?,
		revenue_center = ?, unpaid_break_minutes = ?, is_active = ? WHERE id = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(e.Name, formatTime(e.StartTime), formatEndTime(e.EndTime),
		e.RevenueCenter, e.UnpaidBreakMinutes, e.IsActive.String(), e.ID)
	if err != nil {
		return fmt.Errorf("failed to update employee %s: %w", e.ID, err)
	}
	return requireRow(res, fmt.Errorf("%w: %s", labor.ErrEmployeeNotFound, e.ID))
}

func (r *SQLiteRepository) DeleteEmployee(id string) error {
	res, err := r.db.Exec("DELETE FROM employees WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete employee %s: %w", id, err)
	}
	return requireRow(res, fmt.Errorf("%w: %s", labor.ErrEmployeeNotFound, id))
}

func (r *SQLiteRepository) ListCenters() ([]labor.RevenueCenter, error) {
	rows, err := r.db.Query("SELECT id, name, sales, divisor FROM revenue_centers ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list revenue centers: %w", err)
	}
	defer rows.Close()

	list := []labor.RevenueCenter{}
	for rows.Next() {
		var c labor.RevenueCenter
		if err := rows.Scan(&c.ID, &c.Name, &c.Sales, &c.Divisor); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *SQLiteRepository) GetCenter(name string) (labor.RevenueCenter, error) {
	var c labor.RevenueCenter
	row := r.db.QueryRow("SELECT id, name, sales, divisor FROM revenue_centers WHERE name = ?", name)
	err := row.Scan(&c.ID, &c.Name, &c.Sales, &c.Divisor)
	if errors.Is(err, sql.ErrNoRows) {
		return labor.RevenueCenter{}, fmt.Errorf("%w: %s", labor.ErrCenterNotFound, name)
	}
	return c, err
}

func (r *SQLiteRepository) CreateCenter(c labor.RevenueCenter) error {
	if _, err := r.GetCenter(c.Name); err == nil {
		return fmt.Errorf("%w: %s", labor.ErrCenterExists, c.Name)
	}
	_, err := r.db.Exec("INSERT INTO revenue_centers(id, name, sales, divisor) VALUES(?, ?, ?, ?)",
		c.ID, c.Name, c.Sales, c.Divisor)
	if err != nil {
		return fmt.Errorf("failed to insert revenue center %s: %w", c.Name, err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateCenter(c labor.RevenueCenter) error {
	res, err := r.db.Exec("UPDATE revenue_centers SET sales = ?, divisor = ? WHERE name = ?",
		c.Sales, c.Divisor, c.Name)
	if err != nil {
		return fmt.Errorf("failed to update revenue center %s: %w", c.Name, err)
	}
	return requireRow(res, fmt.Errorf("%w: %s", labor.ErrCenterNotFound, c.Name))
}

func (r *SQLiteRepository) queryEmployees(query string, args ...interface{}) ([]labor.Employee, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	list := []labor.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortEmployees(list)
	return list, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEmployee(s rowScanner) (labor.Employee, error) {
	var (
		e      labor.Employee
		start  string
		end    sql.NullString
		active string
	)
	if err := s.Scan(&e.ID, &e.Name, &start, &end, &e.RevenueCenter, &e.UnpaidBreakMinutes, &active); err != nil {
		return labor.Employee{}, err
	}
	// Unparseable stored timestamps decode to the zero time, which the
	// engine treats as invalid.
	e.StartTime, _ = time.Parse(time.RFC3339Nano, start)
	if end.Valid {
		if t, err := time.Parse(time.RFC3339Nano, end.String); err == nil {
			e.EndTime = &t
		}
	}
	e.IsActive = labor.ParseActiveFlag(active)
	return e, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func formatEndTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
