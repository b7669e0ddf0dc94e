// Package id generates compact unique identifiers.
//
// Identifiers are random UUIDv4 values encoded as 26-character lowercase
// base32 strings without padding, so they are URL- and filename-safe.
package id

import (
	"encoding/base32"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a new random identifier.
func NewID() (string, error) {
	value, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return strings.ToLower(encoding.EncodeToString(value[:])), nil
}
