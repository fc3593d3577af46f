// Package testhelpers provides shared utilities for sfbilling tests.
package testhelpers

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/sfbilling/sfbilling/internal/migrations"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AssertNoError fails the test immediately if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test immediately if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
}

// AssertNotNil fails the test immediately if v is nil.
func AssertNotNil(t *testing.T, v any) {
	t.Helper()
	if v == nil {
		t.Fatal("expected a non-nil value")
	}
}

// AssertEqual fails the test if expected and actual differ.
func AssertEqual[T comparable](t *testing.T, expected, actual T) {
	t.Helper()
	if expected != actual {
		t.Errorf("expected %v, got %v", expected, actual)
	}
}

// AssertTrue fails the test if cond is false.
func AssertTrue(t *testing.T, cond bool, msg string) {
	t.Helper()
	if !cond {
		t.Error(msg)
	}
}

// CommandAnnotationTest is one expected annotation of a cobra command.
type CommandAnnotationTest struct {
	Key      string
	Expected string
}

// TestCommandAnnotations checks a command's annotations against the expected values.
func TestCommandAnnotations(t *testing.T, annotations map[string]string, tests []CommandAnnotationTest) {
	t.Helper()
	for _, tt := range tests {
		if got := annotations[tt.Key]; got != tt.Expected {
			t.Errorf("annotation %s: expected %q, got %q", tt.Key, tt.Expected, got)
		}
	}
}

// CreateTestDB opens a fresh in-memory sqlite database with the schema migrated.
func CreateTestDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	// a single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := migrations.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// SetupTestDB is CreateTestDB for use inside a test.
// The database is closed when the test finishes.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := CreateTestDB()
	AssertNoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
