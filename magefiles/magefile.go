//go:build mage

// Package main provides build targets for the farmkeeper project using Mage.
//
// Usage:
//
//	mage build          Compile the farmkeeper binary to bin/
//	mage test           Run all tests
//	mage testRace       Run all tests with the race detector
//	mage cover          Write coverage.out and print per-function coverage
//	mage testPostgres   Run the postgres store tests against $FARMKEEPER_TEST_POSTGRES_DSN
//	mage lint           Run golangci-lint
//	mage clean          Remove build artifacts
//	mage install        Install farmkeeper to GOPATH/bin
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "farmkeeper"
	binaryDir  = "bin"
	cmdDir     = "./cmd/farmkeeper"
)

// Build compiles a trimmed farmkeeper binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	out := filepath.Join(binaryDir, binaryName)
	return sh.RunV(binGo, "build", "-trimpath", "-o", out, cmdDir)
}

// Clean removes build artifacts.
func Clean() error {
	for _, p := range []string{binaryDir, coverProfile} {
		if err := os.RemoveAll(p); err != nil {
			return err
		}
	}
	return sh.RunV(binGo, "clean")
}

// Install runs the tests, then installs farmkeeper to GOPATH/bin.
func Install() error {
	mg.SerialDeps(Test)
	return sh.RunV(binGo, "install", "-trimpath", cmdDir)
}
