package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"forum/internal/middleware"

	"gorm.io/gorm"
)

// MigrationLog records an applied migration.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the database table name for MigrationLog.
func (MigrationLog) TableName() string {
	return "migration_logs"
}

const ensureMigrationLogTableSQL = `
CREATE TABLE IF NOT EXISTS migration_logs (
	version BIGINT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_migration_logs_applied_at ON migration_logs (applied_at);`

// Migrator applies and reverts a fixed set of migrations against one database.
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
}

// NewMigrator returns a Migrator for migs, which must be sorted by version.
func NewMigrator(db *gorm.DB, migs []Migration) *Migrator {
	return &Migrator{db: db, migrations: migs}
}

// Applied returns the recorded versions in ascending order. A missing log table means none.
func (m *Migrator) Applied(ctx context.Context) ([]int, error) {
	var versions []int
	err := m.db.WithContext(ctx).Model(&MigrationLog{}).Order("version ASC").Pluck("version", &versions).Error
	if err != nil {
		if isMissingTableError(err) {
			return []int{}, nil
		}
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	return versions, nil
}

// Pending returns the migrations not yet recorded.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}
	var pending []Migration
	for _, mig := range m.migrations {
		if !done[mig.Version] {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

// Up applies every pending migration, each in its own transaction.
func (m *Migrator) Up(ctx context.Context) error {
	if err := m.db.WithContext(ctx).Exec(ensureMigrationLogTableSQL).Error; err != nil {
		return fmt.Errorf("failed to ensure migration logs table: %w", err)
	}

	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}
	if err := validateAppliedVersions(applied, m.migrations); err != nil {
		return err
	}

	pending, err := m.Pending(ctx)
	if err != nil {
		return err
	}
	for _, mig := range pending {
		middleware.Logger.Info("Applying migration", slog.Int("version", mig.Version), slog.String("name", mig.Name))
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(mig.UpScript).Error; err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", mig, err)
			}
			if err := tx.Create(&MigrationLog{Version: mig.Version, Name: mig.Name}).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", mig, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Down reverts the given applied version.
func (m *Migrator) Down(ctx context.Context, version int) error {
	var target *Migration
	for i := range m.migrations {
		if m.migrations[i].Version == version {
			target = &m.migrations[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("migration version %d not found", version)
	}

	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}
	found := false
	for _, v := range applied {
		if v == version {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("migration %d has not been applied", version)
	}

	middleware.Logger.Info("Rolling back migration", slog.Int("version", version), slog.String("name", target.Name))
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(target.DownScript).Error; err != nil {
			return fmt.Errorf("failed to run rollback SQL for migration %s: %w", target, err)
		}
		if err := tx.Where("version = ?", version).Delete(&MigrationLog{}).Error; err != nil {
			return fmt.Errorf("failed to remove migration record %d: %w", version, err)
		}
		return nil
	})
}

// RunMigrations applies the compiled-in migrations.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	return NewMigrator(db, GetMigrations()).Up(ctx)
}

// RollbackMigration reverts one compiled-in migration.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	return NewMigrator(db, GetMigrations()).Down(ctx, version)
}

func isMissingTableError(err error) bool {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true
	}
	msg := err.Error()
	return (strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist")) ||
		strings.Contains(msg, "no such table")
}

func validateAppliedVersions(applied []int, registered []Migration) error {
	known := make(map[int]struct{}, len(registered))
	for _, m := range registered {
		known[m.Version] = struct{}{}
	}

	var unknown []int
	for _, version := range applied {
		if _, ok := known[version]; !ok {
			unknown = append(unknown, version)
		}
	}
	if len(unknown) == 0 {
		return nil
	}

	sort.Ints(unknown)
	parts := make([]string, 0, len(unknown))
	for _, version := range unknown {
		parts = append(parts, fmt.Sprintf("%06d", version))
	}
	return fmt.Errorf("migration_logs contains unknown versions not present in code: %s", strings.Join(parts, ", "))
}
