// Package pgtest поднимает для интеграционного теста отдельную базу с примененными миграциями.
// Тесты пропускаются, если не задана переменная окружения TEST_DATABASE_URI.
package pgtest

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/fsdevblog/gamestore/internal/repository/pgrepo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	// драйверы migrate, используемые pgrepo.Migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	_ "github.com/golang-migrate/migrate/v4/source/file"       //nolint:revive
)

const DSNEnv = "TEST_DATABASE_URI"

// NewPool создает базу с уникальным именем, применяет миграции и возвращает пул соединений к ней.
// База удаляется по завершении теста.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	baseDSN := os.Getenv(DSNEnv)
	if baseDSN == "" {
		t.Skipf("%s is not set", DSNEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin, err := pgx.Connect(ctx, baseDSN)
	if err != nil {
		t.Fatalf("connect admin: %v", err)
	}

	dbName := uniqueDBName(t.Name())
	if _, err = admin.Exec(ctx, fmt.Sprintf(`CREATE DATABASE %q WITH TEMPLATE template0 ENCODING 'UTF8'`, dbName)); err != nil {
		_ = admin.Close(ctx)
		t.Fatalf("create database: %v", err)
	}

	testDSN, err := replaceDBInDSN(baseDSN, dbName)
	if err != nil {
		_ = admin.Close(ctx)
		t.Fatalf("test dsn: %v", err)
	}

	migrationsDir, err := migrationsAbsPath()
	if err != nil {
		_ = admin.Close(ctx)
		t.Fatalf("resolve migrations path: %v", err)
	}
	if err = pgrepo.Migrate(migrationsDir, testDSN); err != nil {
		_ = admin.Close(ctx)
		t.Fatalf("migrate: %v", err)
	}

	pool, err := pgxpool.New(ctx, testDSN)
	if err != nil {
		_ = admin.Close(ctx)
		t.Fatalf("open test pool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		dctx, dcancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer dcancel()
		_, _ = admin.Exec(dctx, fmt.Sprintf(`DROP DATABASE IF EXISTS %q WITH (FORCE)`, dbName))
		_ = admin.Close(dctx)
	})

	return pool
}

func replaceDBInDSN(dsn, newDB string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	u.Path = "/" + newDB
	return u.String(), nil
}

func migrationsAbsPath() (string, error) {
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("runtime.Caller failed")
	}
	// internal/repository/pgrepo/pgtest -> internal
	internalDir := filepath.Join(filepath.Dir(thisFile), "..", "..", "..")
	abs, err := filepath.Abs(filepath.Join(internalDir, "db", "migrations"))
	if err != nil {
		return "", fmt.Errorf("abs migrations path: %w", err)
	}
	return abs, nil
}

func uniqueDBName(testName string) string {
	name := strings.ToLower(testName)
	name = strings.NewReplacer("/", "_", " ", "_", "-", "_", ":", "_").Replace(name)
	const maxPrefix = 30
	if len(name) > maxPrefix {
		name = name[:maxPrefix]
	}
	return fmt.Sprintf("test_%s_%s", name, strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
