// Package backup owns the point-in-time snapshots taken around migration
// steps and the format-independent safety-net export used for manual
// recovery. Snapshots are plain file copies of the store, tagged with the
// schema version and a timestamp.
package backup

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Handle identifies a snapshot on disk.
type Handle struct {
	Path    string
	Version int
	TakenAt time.Time
}

// RestoreError reports an unusable snapshot. It is fatal: the engine never
// retries a restore, an operator has to step in with the safety-net export.
type RestoreError struct {
	Handle Handle
	Err    error
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf("restore from %s failed: %v", e.Handle.Path, e.Err)
}

func (e *RestoreError) Unwrap() error { return e.Err }

// Manager snapshots and restores the store file. It owns the backups/ and
// exports/ directories next to the store.
type Manager struct {
	storePath string
	clock     func() time.Time
}

// NewManager creates a manager for the store at storePath.
func NewManager(storePath string) *Manager {
	return &Manager{storePath: storePath, clock: time.Now}
}

// backupDir is where snapshots live, created lazily.
func (m *Manager) backupDir() string {
	return filepath.Join(filepath.Dir(m.storePath), "backups")
}

func (m *Manager) exportDir() string {
	return filepath.Join(filepath.Dir(m.storePath), "exports")
}

// Snapshot captures a full copy of the store, tagged with the schema
// version it was taken at. Cheap enough to run before every migration step.
func (m *Manager) Snapshot(version int) (Handle, error) {
	dir := m.backupDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Handle{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	takenAt := m.clock().UTC()
	name := fmt.Sprintf("backup_v%d_%s.db", version, takenAt.Format("20060102_150405.000000000"))
	path := filepath.Join(dir, name)

	if err := copyFile(m.storePath, path); err != nil {
		return Handle{}, fmt.Errorf("failed to snapshot store: %w", err)
	}

	return Handle{Path: path, Version: version, TakenAt: takenAt}, nil
}

// Restore replaces the live store with the snapshot, atomically: the
// snapshot is copied to a temp file next to the store, then renamed over
// it. Fails with *RestoreError only when the snapshot itself is unusable.
func (m *Manager) Restore(handle Handle) error {
	src, err := os.Open(handle.Path)
	if err != nil {
		return &RestoreError{Handle: handle, Err: err}
	}
	defer src.Close()

	tmp := m.storePath + ".restore-tmp"
	dst, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create temp restore file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(tmp)
		return &RestoreError{Handle: handle, Err: err}
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize temp restore file: %w", err)
	}

	if err := os.Rename(tmp, m.storePath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to swap restored store into place: %w", err)
	}

	return nil
}

// Discard removes a snapshot that is no longer needed.
func (m *Manager) Discard(handle Handle) error {
	if err := os.Remove(handle.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to discard backup: %w", err)
	}
	return nil
}

// List returns all snapshots on disk, newest first.
func (m *Manager) List() ([]Handle, error) {
	entries, err := os.ReadDir(m.backupDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	var handles []Handle
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "backup_v") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		var version int
		fmt.Sscanf(entry.Name(), "backup_v%d_", &version)
		handles = append(handles, Handle{
			Path:    filepath.Join(m.backupDir(), entry.Name()),
			Version: version,
			TakenAt: info.ModTime().UTC(),
		})
	}

	sort.Slice(handles, func(i, j int) bool {
		return handles[i].TakenAt.After(handles[j].TakenAt)
	})
	return handles, nil
}

// Prune discards snapshots older than the retention window, always keeping
// the most recent one regardless of age.
func (m *Manager) Prune(retention time.Duration) error {
	handles, err := m.List()
	if err != nil {
		return err
	}

	cutoff := m.clock().UTC().Add(-retention)
	for i, handle := range handles {
		if i == 0 {
			continue // most recent survives the window
		}
		if handle.TakenAt.Before(cutoff) {
			if err := m.Discard(handle); err != nil {
				return err
			}
		}
	}
	return nil
}

// exportTables is the fixed set of domain tables included in the safety
// net. Table names never come from user input.
var exportTables = []string{
	"gtd_items",
	"contexts",
	"item_contexts",
	"organizations",
	"stakeholders",
	"item_stakeholders",
}

// ExportSafetyNet writes a JSON dump of every domain table, readable
// outside the engine for last-resort manual recovery. Returns the path of
// the export file.
func (m *Manager) ExportSafetyNet(database *sql.DB) (string, error) {
	dir := m.exportDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	export := make(map[string][]map[string]any)
	for _, table := range exportTables {
		// Tables from later schema versions may not exist yet.
		var n int
		if err := database.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&n); err != nil {
			return "", fmt.Errorf("failed to check table %s: %w", table, err)
		}
		if n == 0 {
			continue
		}

		rows, err := dumpTable(database, table)
		if err != nil {
			return "", err
		}
		export[table] = rows
	}

	path := filepath.Join(dir, fmt.Sprintf("db_export_%s.json", m.clock().UTC().Format("20060102_150405")))
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal export: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}

	return path, nil
}

func dumpTable(database *sql.DB, table string) ([]map[string]any, error) {
	rows, err := database.Query("SELECT * FROM " + table)
	if err != nil {
		return nil, fmt.Errorf("failed to export table %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}

	result := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", table, err)
		}

		record := make(map[string]any, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				record[col] = string(b)
			} else {
				record[col] = values[i]
			}
		}
		result = append(result, record)
	}

	return result, rows.Err()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
