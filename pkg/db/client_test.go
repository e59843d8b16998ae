package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/angelmondragon/records-backend/pkg/config"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testModel struct {
	ID    int
	Name  string
	Email string `gorm:"uniqueIndex"`
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:db_client_test?mode=memory&cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.Migrator().DropTable(&testModel{}); err != nil {
		t.Fatalf("failed to reset sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestPing(t *testing.T) {
	client := NewFromGorm(newTestDB(t), config.DriverSQLite)
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
	if client.Driver() != config.DriverSQLite {
		t.Fatalf("unexpected driver %q", client.Driver())
	}
}

func TestCloseReleasesPool(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:db_client_close?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	client := NewFromGorm(conn, config.DriverSQLite)
	if err := client.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected ping on a closed pool to fail")
	}
}

func TestDialectorSelection(t *testing.T) {
	cases := map[string]string{
		"postgres": "postgres",
		"MYSQL":    "mysql",
		"sqlite":   "sqlite",
		"":         "postgres",
	}
	for driver, want := range cases {
		d, err := Dialector(config.DBConfig{Driver: driver, DSN: "x"})
		if err != nil {
			t.Fatalf("driver %q: unexpected error %v", driver, err)
		}
		if d.Name() != want {
			t.Fatalf("driver %q: expected dialector %q, got %q", driver, want, d.Name())
		}
	}
	if _, err := Dialector(config.DBConfig{Driver: "oracle", DSN: "x"}); err == nil {
		t.Fatal("expected unsupported driver error")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	db := newTestDB(t)
	if err := db.Create(&testModel{Name: "one", Email: "dup@x.io"}).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	err := db.Create(&testModel{Name: "two", Email: "dup@x.io"}).Error
	if !IsUniqueViolation(err, "") {
		t.Fatalf("expected sqlite unique violation, got %v", err)
	}
	if !IsUniqueViolation(err, "email") {
		t.Fatalf("expected violation to mention email column, got %v", err)
	}
	if IsUniqueViolation(err, "username") {
		t.Fatalf("did not expect username match for %v", err)
	}

	pgErr := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_username", Message: `duplicate key value violates unique constraint "idx_users_username"`})
	if !IsUniqueViolation(pgErr, "username") {
		t.Fatal("expected postgres unique violation")
	}
	myErr := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'x' for key 'users.idx_users_email'"}
	if !IsUniqueViolation(myErr, "email") {
		t.Fatal("expected mysql unique violation")
	}
	if IsUniqueViolation(&mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"}, "") {
		t.Fatal("unexpected match for non-unique mysql error")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil should not be a violation")
	}
}
