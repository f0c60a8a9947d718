// Luhn ISBN Validator - checksum verification for card numbers and ISBNs.
// Copyright (c) 2026 khairate89
// Licensed under the Apache License 2.0

// Package main is the entry point for the checkdigit CLI.
package main

import (
	"os"

	"github.com/khairate89/luhn-isbn-validator/cmd/checkdigit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
