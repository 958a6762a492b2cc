//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Search builds the CLI and searches every source for query.
func Search(query string) error {
	mg.Deps(Build)
	return sh.RunV(binPath, "search", query)
}

// Demo builds the CLI and prints the offline sample assets.
func Demo() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "demo")
}
