package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// readSource reads name, or standard input when name is "-".
func readSource(name string) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(data), nil
}

// sourceDir is where config lookup starts for name.
func sourceDir(name string) string {
	if name == "-" {
		return "."
	}
	return filepath.Dir(name)
}
