package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"belleza-be/internal/admin"
	"belleza-be/internal/config"
	"belleza-be/internal/db"
	"belleza-be/internal/logger"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type options struct {
	mode          string
	dir           string
	adminEmail    string
	adminName     string
	adminPassword string
}

func main() {
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.mode, "mode", "up", "migration mode: up or down")
	flag.StringVar(&opts.dir, "dir", "./migrations", "directory holding *.sql migrations")
	flag.StringVar(&opts.adminEmail, "admin-email", os.Getenv("ADMIN_EMAIL"), "seed an admin user with this email after migrating up")
	flag.StringVar(&opts.adminName, "admin-name", "Admin", "display name of the seeded admin")
	flag.StringVar(&opts.adminPassword, "admin-password", os.Getenv("ADMIN_PASSWORD"), "password of the seeded admin")
	flag.Parse()

	log := logger.L()
	defer logger.Sync()

	database, err := openDB()
	if err != nil {
		log.Fatal("failed to connect db", zap.Error(err))
	}
	defer database.Close()

	if err := run(database, opts.mode, opts.dir); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	if opts.mode == "up" && opts.adminEmail != "" {
		svc := admin.NewService(admin.NewRepository(database), 0)
		if err := seedAdmin(context.Background(), svc, opts); err != nil {
			log.Fatal("failed to seed admin", zap.Error(err))
		}
	}
}

// openDB prefers DB_URL and falls back to the DB_* variables the server uses.
func openDB() (*sql.DB, error) {
	if dbURL := os.Getenv("DB_URL"); dbURL != "" {
		return sql.Open("postgres", dbURL)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return db.NewDatabase(cfg)
}

type adminSeeder interface {
	EnsureAdmin(ctx context.Context, email, name, password string) (*admin.Admin, error)
}

func seedAdmin(ctx context.Context, svc adminSeeder, opts options) error {
	if opts.adminPassword == "" {
		return errors.New("admin password is required to seed an admin")
	}
	a, err := svc.EnsureAdmin(ctx, opts.adminEmail, opts.adminName, opts.adminPassword)
	if err != nil {
		return err
	}
	logger.L().Info("admin ready", zap.String("admin_id", a.ID), zap.String("email", a.Email))
	return nil
}

func run(db *sql.DB, mode, migrationsDir string) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	sort.Strings(files)

	switch mode {
	case "up":
		return runMigrationsUp(db, files)
	case "down":
		return runMigrationsDown(db, files)
	default:
		return fmt.Errorf("unknown mode: %s (use 'up' or 'down')", mode)
	}
}

// execInTx runs a migration body and its bookkeeping statement atomically.
func execInTx(db *sql.DB, body, record, version string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(body); err != nil {
		return err
	}
	if _, err := tx.Exec(record, version); err != nil {
		return err
	}
	return tx.Commit()
}

func runMigrationsUp(db *sql.DB, files []string) error {
	log := logger.L()
	applied := 0

	for _, file := range files {
		version := filepath.Base(file)

		var exists bool
		err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if exists {
			log.Debug("skipping applied migration", zap.String("version", version))
			continue
		}

		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}

		log.Info("applying migration", zap.String("version", version))
		upSQL := extractMigrationPart(string(content), "Up")
		if err := execInTx(db, upSQL, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			return fmt.Errorf("migration failed (%s): %w", version, err)
		}
		applied++
	}

	log.Info("migrations up to date", zap.Int("applied", applied))
	return nil
}

func runMigrationsDown(db *sql.DB, files []string) error {
	log := logger.L()

	var lastVersion string
	err := db.QueryRow(`SELECT version FROM schema_migrations ORDER BY applied_at DESC, version DESC LIMIT 1`).Scan(&lastVersion)
	if errors.Is(err, sql.ErrNoRows) {
		log.Info("no migrations to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get last applied migration: %w", err)
	}

	filePath := ""
	for _, f := range files {
		if filepath.Base(f) == lastVersion {
			filePath = f
			break
		}
	}
	if filePath == "" {
		return fmt.Errorf("migration file not found for version: %s", lastVersion)
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	log.Info("rolling back migration", zap.String("version", lastVersion))
	downSQL := extractMigrationPart(string(content), "Down")
	if err := execInTx(db, downSQL, `DELETE FROM schema_migrations WHERE version = $1`, lastVersion); err != nil {
		return fmt.Errorf("rollback failed (%s): %w", lastVersion, err)
	}
	return nil
}

// extractMigrationPart returns the statements between "-- +migrate <section>"
// and the next marker.
func extractMigrationPart(content string, section string) string {
	var part strings.Builder
	inPart := false

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "-- +migrate") {
			if inPart {
				break
			}
			inPart = strings.Contains(line, "-- +migrate "+section)
			continue
		}
		if inPart {
			part.WriteString(line + "\n")
		}
	}
	return part.String()
}
