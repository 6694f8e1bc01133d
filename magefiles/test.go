//go:build mage

package main

import (
	"errors"
	"os"

	"github.com/magefile/mage/sh"
)

const (
	coverProfile   = "coverage.out"
	envPostgresDSN = "FARMKEEPER_TEST_POSTGRES_DSN"
)

// Test runs all tests.
func Test() error {
	return sh.RunV(binGo, "test", "./...")
}

// TestRace runs all tests with the race detector.
func TestRace() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Cover writes a coverage profile and prints per-function coverage.
func Cover() error {
	if err := sh.RunV(binGo, "test", "-coverprofile="+coverProfile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func="+coverProfile)
}

// TestPostgres runs the postgres store tests against a live server.
func TestPostgres() error {
	if os.Getenv(envPostgresDSN) == "" {
		return errors.New(envPostgresDSN + " is not set")
	}
	return sh.RunV(binGo, "test", "-count=1", "./internal/store/postgres/...")
}
