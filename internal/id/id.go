// Package id generates short random identifiers for files and events.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// fileAlphabet avoids characters that are awkward on case-insensitive filesystems.
const fileAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

const fileIDLength = 16

// Generate creates a prefixed NanoID such as "evt-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Filename returns "<prefix>_<id><ext>" using a lowercase alphanumeric id,
// e.g. "sunset_k3v9x0c2m1q8w7ze.jpg".
func Filename(prefix, ext string) (string, error) {
	id, err := gonanoid.Generate(fileAlphabet, fileIDLength)
	if err != nil {
		return "", fmt.Errorf("generate file id: %w", err)
	}
	if prefix == "" {
		return id + ext, nil
	}
	return prefix + "_" + id + ext, nil
}
