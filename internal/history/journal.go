package history

import (
	"context"
	"fmt"
	"time"

	"github.com/hearthctl/homie-core/internal/homie"
	"github.com/hearthctl/homie-core/internal/infrastructure/config"
	"github.com/hearthctl/homie-core/internal/infrastructure/database"
)

const (
	defaultQueryLimit = 50
	maxQueryLimit     = 200

	hoursPerDay = 24
)

// ValueEntry is one row of the property change journal.
type ValueEntry struct {
	ID         int64
	Ref        homie.PropertyRef
	Datatype   homie.DataType
	Value      string
	ObservedAt time.Time
}

// StateEntry is one row of the device state journal.
type StateEntry struct {
	ID         int64
	Ref        homie.DeviceRef
	State      homie.DeviceStatus
	ObservedAt time.Time
}

// AlertEntry is one row of the alert journal. An empty Message records the
// alert being cleared.
type AlertEntry struct {
	ID         int64
	Ref        homie.DeviceRef
	AlertID    homie.ID
	Message    string
	ObservedAt time.Time
}

// Journal writes observed bus activity to SQLite.
//
// All methods are safe for concurrent use; the underlying connection pool is
// limited to a single writer, which matches SQLite's locking model.
type Journal struct {
	db        *database.DB
	retention time.Duration
}

// Open opens the journal database, runs pending migrations and returns a
// ready journal.
//
// Parameters:
//   - ctx: Context for the migration run
//   - cfg: History configuration from config.yaml
//
// Returns:
//   - *Journal: Ready journal
//   - error: If opening or migrating the database fails
func Open(ctx context.Context, cfg config.HistoryConfig) (*Journal, error) {
	db, err := database.Open(database.Config{
		Path:        cfg.Path,
		WALMode:     cfg.WALMode,
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("migrating history database: %w", err)
	}

	return &Journal{
		db:        db,
		retention: time.Duration(cfg.RetentionDays) * hoursPerDay * time.Hour,
	}, nil
}

// OpenExisting opens the journal database without applying pending schema
// migrations. The maintenance commands use it so a status check shows the
// schema as it is and a rollback is not immediately re-applied.
func OpenExisting(cfg config.HistoryConfig) (*Journal, error) {
	db, err := database.Open(database.Config{
		Path:        cfg.Path,
		WALMode:     cfg.WALMode,
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	return &Journal{
		db:        db,
		retention: time.Duration(cfg.RetentionDays) * hoursPerDay * time.Hour,
	}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// MigrationStatus reports the applied and pending schema migrations of the
// journal database.
func (j *Journal) MigrationStatus(ctx context.Context) ([]database.MigrationRecord, []database.Migration, error) {
	return j.db.GetMigrationStatus(ctx)
}

// RollbackMigration undoes the newest applied schema migration. Journal
// writes against a rolled-back schema will fail until Migrate runs again,
// so this belongs in the maintenance path only.
func (j *Journal) RollbackMigration(ctx context.Context) error {
	return j.db.MigrateDown(ctx)
}

// HealthCheck verifies the journal database is reachable.
func (j *Journal) HealthCheck(ctx context.Context) error {
	return j.db.HealthCheck(ctx)
}

// RecordValue appends a property value observation.
func (j *Journal) RecordValue(ctx context.Context, ref homie.PropertyRef, value homie.Value, at time.Time) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO property_history (domain, device_id, node_id, property_id, datatype, value, observed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(ref.Domain),
		string(ref.DeviceID),
		string(ref.NodeID),
		string(ref.PropertyID),
		string(value.Type),
		value.String(),
		at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting property history: %w", err)
	}
	return nil
}

// RecordState appends a device lifecycle transition.
func (j *Journal) RecordState(ctx context.Context, ref homie.DeviceRef, state homie.DeviceStatus, at time.Time) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO device_state_history (domain, device_id, state, observed_at)
		 VALUES (?, ?, ?, ?)`,
		string(ref.Domain),
		string(ref.DeviceID),
		string(state),
		at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting device state history: %w", err)
	}
	return nil
}

// RecordAlert appends an alert raise or clear event.
func (j *Journal) RecordAlert(ctx context.Context, ref homie.DeviceRef, alertID homie.ID, message string, at time.Time) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO alert_history (domain, device_id, alert_id, message, observed_at)
		 VALUES (?, ?, ?, ?, ?)`,
		string(ref.Domain),
		string(ref.DeviceID),
		string(alertID),
		message,
		at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting alert history: %w", err)
	}
	return nil
}

// PropertyHistory returns recent value observations for a property, newest
// first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - ref: Property to query
//   - limit: Maximum entries to return (default 50, max 200)
func (j *Journal) PropertyHistory(ctx context.Context, ref homie.PropertyRef, limit int) ([]ValueEntry, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if limit > maxQueryLimit {
		limit = maxQueryLimit
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, datatype, value, observed_at
		 FROM property_history
		 WHERE domain = ? AND device_id = ? AND node_id = ? AND property_id = ?
		 ORDER BY observed_at DESC, id DESC
		 LIMIT ?`,
		string(ref.Domain),
		string(ref.DeviceID),
		string(ref.NodeID),
		string(ref.PropertyID),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying property history: %w", err)
	}
	defer rows.Close()

	entries := make([]ValueEntry, 0, limit)
	for rows.Next() {
		entry := ValueEntry{Ref: ref}
		var datatype, observedAt string
		if err := rows.Scan(&entry.ID, &datatype, &entry.Value, &observedAt); err != nil {
			return nil, fmt.Errorf("scanning property history: %w", err)
		}
		entry.Datatype = homie.DataType(datatype)
		entry.ObservedAt, err = parseTimestamp(observedAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating property history: %w", err)
	}
	return entries, nil
}

// StateHistory returns recent lifecycle transitions for a device, newest
// first.
func (j *Journal) StateHistory(ctx context.Context, ref homie.DeviceRef, limit int) ([]StateEntry, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if limit > maxQueryLimit {
		limit = maxQueryLimit
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, state, observed_at
		 FROM device_state_history
		 WHERE domain = ? AND device_id = ?
		 ORDER BY observed_at DESC, id DESC
		 LIMIT ?`,
		string(ref.Domain),
		string(ref.DeviceID),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying device state history: %w", err)
	}
	defer rows.Close()

	entries := make([]StateEntry, 0, limit)
	for rows.Next() {
		entry := StateEntry{Ref: ref}
		var state, observedAt string
		if err := rows.Scan(&entry.ID, &state, &observedAt); err != nil {
			return nil, fmt.Errorf("scanning device state history: %w", err)
		}
		entry.State = homie.DeviceStatus(state)
		entry.ObservedAt, err = parseTimestamp(observedAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating device state history: %w", err)
	}
	return entries, nil
}

// AlertHistory returns recent alert events for a device, newest first.
func (j *Journal) AlertHistory(ctx context.Context, ref homie.DeviceRef, limit int) ([]AlertEntry, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if limit > maxQueryLimit {
		limit = maxQueryLimit
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, alert_id, message, observed_at
		 FROM alert_history
		 WHERE domain = ? AND device_id = ?
		 ORDER BY observed_at DESC, id DESC
		 LIMIT ?`,
		string(ref.Domain),
		string(ref.DeviceID),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying alert history: %w", err)
	}
	defer rows.Close()

	entries := make([]AlertEntry, 0, limit)
	for rows.Next() {
		entry := AlertEntry{Ref: ref}
		var alertID, observedAt string
		if err := rows.Scan(&entry.ID, &alertID, &entry.Message, &observedAt); err != nil {
			return nil, fmt.Errorf("scanning alert history: %w", err)
		}
		entry.AlertID = homie.ID(alertID)
		entry.ObservedAt, err = parseTimestamp(observedAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating alert history: %w", err)
	}
	return entries, nil
}

// Prune deletes journal rows older than the configured retention window.
// It is a no-op when retention is zero or negative.
//
// Returns:
//   - int64: Total number of rows deleted across all tables
func (j *Journal) Prune(ctx context.Context) (int64, error) {
	if j.retention <= 0 {
		return 0, nil
	}

	cutoff := time.Now().UTC().Add(-j.retention).Format(time.RFC3339)
	var total int64
	for _, table := range []string{"property_history", "device_state_history", "alert_history"} {
		result, err := j.db.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE observed_at < ?", table), //nolint:gosec // Table names are fixed
			cutoff,
		)
		if err != nil {
			return total, fmt.Errorf("pruning %s: %w", table, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("checking rows affected: %w", err)
		}
		total += n
	}
	return total, nil
}

// parseTimestamp parses an observed_at value stored in SQLite.
func parseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing observed_at: %w", err)
	}
	return t, nil
}
