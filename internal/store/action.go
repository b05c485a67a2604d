package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// AlertAction represents a metric-to-plugin binding stored in the database.
// The bound plugin action runs when the metric transitions into alert.
type AlertAction struct {
	ID         string
	Metric     string
	PluginName string
	ActionName string
	Config     json.RawMessage
	Enabled    bool
	CreatedAt  time.Time
}

// AlertActionRepository provides CRUD operations for alert actions.
type AlertActionRepository struct {
	db *sql.DB
}

// AlertActions returns the alert action repository for this store.
func (s *Store) AlertActions() *AlertActionRepository {
	return &AlertActionRepository{db: s.db}
}

const alertActionColumns = `id, metric, plugin_name, action_name, config, enabled, created_at`

// rowScanner is the part of sql.Row and sql.Rows the scan helper needs.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanAlertAction reads one alert_actions row. Config round-trips through
// TEXT and enabled through an integer column.
func scanAlertAction(row rowScanner) (*AlertAction, error) {
	var (
		a       AlertAction
		config  string
		enabled int
	)
	if err := row.Scan(&a.ID, &a.Metric, &a.PluginName, &a.ActionName, &config, &enabled, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Config = json.RawMessage(config)
	a.Enabled = enabled != 0
	return &a, nil
}

// configText returns the stored form of an action config, defaulting to an
// empty object.
func configText(c json.RawMessage) string {
	if len(c) == 0 {
		return "{}"
	}
	return string(c)
}

// requireRow turns a write that touched no rows into ErrNotFound.
func requireRow(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Create inserts a new alert action. At most one action can be bound per
// metric; binding an already-bound metric fails on the table constraint.
func (r *AlertActionRepository) Create(a *AlertAction) error {
	a.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO alert_actions (`+alertActionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Metric, a.PluginName, a.ActionName, configText(a.Config), a.Enabled, a.CreatedAt,
	)
	return err
}

// GetByID retrieves an alert action by its ID.
func (r *AlertActionRepository) GetByID(id string) (*AlertAction, error) {
	a, err := scanAlertAction(r.db.QueryRow(
		`SELECT `+alertActionColumns+` FROM alert_actions WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

// GetByMetric retrieves the alert action bound to a metric. An unbound
// metric yields nil, nil rather than an error.
func (r *AlertActionRepository) GetByMetric(metric string) (*AlertAction, error) {
	a, err := scanAlertAction(r.db.QueryRow(
		`SELECT `+alertActionColumns+` FROM alert_actions WHERE metric = ?`, metric,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// List retrieves all alert actions, newest first.
func (r *AlertActionRepository) List() ([]*AlertAction, error) {
	rows, err := r.db.Query(
		`SELECT ` + alertActionColumns + ` FROM alert_actions ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []*AlertAction
	for rows.Next() {
		a, err := scanAlertAction(rows)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// Update rewrites an existing alert action in place.
func (r *AlertActionRepository) Update(a *AlertAction) error {
	return requireRow(r.db.Exec(
		`UPDATE alert_actions SET metric = ?, plugin_name = ?, action_name = ?, config = ?, enabled = ?
		 WHERE id = ?`,
		a.Metric, a.PluginName, a.ActionName, configText(a.Config), a.Enabled, a.ID,
	))
}

// Delete removes an alert action by its ID.
func (r *AlertActionRepository) Delete(id string) error {
	return requireRow(r.db.Exec(`DELETE FROM alert_actions WHERE id = ?`, id))
}
