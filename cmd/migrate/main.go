// Command migrate applies, inspects and rolls back the forum's schema migrations.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"forum/internal/config"
	"forum/internal/database"
)

var errUsage = errors.New("invalid arguments")

func main() {
	flag.Usage = func() { writeUsage(os.Stderr, database.GetMigrations()) }
	if err := run(); err != nil {
		if errors.Is(err, errUsage) {
			flag.Usage()
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

// writeUsage lists the commands and the migrations embedded in this binary.
func writeUsage(w io.Writer, migs []database.Migration) {
	fmt.Fprintln(w, "usage: go run ./cmd/migrate <command> [version]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  up              apply pending SQL migrations (users, communities, posts, comments, likes)")
	fmt.Fprintln(w, "  auto            run GORM AutoMigrate for every forum model")
	fmt.Fprintln(w, "  status          show schema mode and applied/pending migrations")
	fmt.Fprintln(w, "  down <version>  roll back one applied migration")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "migrations:")
	for _, m := range migs {
		fmt.Fprintf(w, "  %s\n", m)
	}
}

// writeStatus prints the schema policy followed by every migration marked applied or pending.
func writeStatus(w io.Writer, status *database.SchemaStatus, migs []database.Migration) {
	fmt.Fprintf(w, "mode=%s env=%s run_sql=%t run_auto=%t applied=%d pending=%d\n",
		status.Mode, status.Environment, status.WillRunSQL, status.WillRunAutoMigrate,
		len(status.AppliedVersions), len(status.PendingMigrations))

	applied := make(map[int]bool, len(status.AppliedVersions))
	for _, v := range status.AppliedVersions {
		applied[v] = true
	}
	for _, m := range migs {
		state := "pending"
		if applied[m.Version] {
			state = "applied"
		}
		fmt.Fprintf(w, "  [%s] %s\n", state, m)
	}
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return errUsage
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	ctx := context.Background()
	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "up":
		if err := database.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		log.Println("forum sql migrations applied")
	case "auto":
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return fmt.Errorf("auto schema apply failed: %w", err)
		}
		log.Println("forum automigrations applied")
	case "status":
		status, err := database.GetSchemaStatus(ctx, db, cfg)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		writeStatus(os.Stdout, status, database.GetMigrations())
	case "down":
		if flag.NArg() < 2 {
			return errUsage
		}
		version, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", flag.Arg(1), err)
		}
		m := database.GetMigrationByVersion(version)
		if m == nil {
			return fmt.Errorf("unknown migration version %d", version)
		}
		if err := database.RollbackMigration(ctx, db, version); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		log.Printf("rolled back %s", m)
	default:
		return errUsage
	}

	return nil
}
