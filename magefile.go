//go:build mage

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "bomdia"

// Default target to run when none is specified
var Default = Build

// Build builds the bomdia binary
func Build() error {
	mg.Deps(Vet)
	return sh.RunV("go", "build", "-o", binary, "./cmd/bomdia")
}

// Test runs all tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Install installs bomdia into $GOPATH/bin
func Install() error {
	mg.Deps(Test)
	return sh.RunV("go", "install", "./cmd/bomdia")
}

// Clean removes the built binary
func Clean() error {
	return os.RemoveAll(filepath.Join(".", binary))
}
