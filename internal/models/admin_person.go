package models

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
	saltLen      = 16
)

// AdminPerson represents an administrator. The email address is also the
// storage key.
type AdminPerson struct {
	EmailAddress string
	FirstName    string
	LastName     string
	PasswordHash string // "salt:hash", both hex encoded
}

// SetPassword derives and stores a salted scrypt hash. The plaintext is
// never retained.
func (a *AdminPerson) SetPassword(password string) error {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	a.PasswordHash = hex.EncodeToString(salt) + ":" + hex.EncodeToString(key)
	return nil
}

// ValidatePassword checks a candidate password against the stored hash.
// A missing hash always fails.
func (a *AdminPerson) ValidatePassword(password string) (bool, error) {
	if a.PasswordHash == "" {
		return false, nil
	}
	saltHex, keyHex, ok := strings.Cut(a.PasswordHash, ":")
	if !ok {
		return false, fmt.Errorf("malformed password hash for %s", a.EmailAddress)
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false, fmt.Errorf("malformed password salt for %s: %w", a.EmailAddress, err)
	}
	want, err := hex.DecodeString(keyHex)
	if err != nil {
		return false, fmt.Errorf("malformed password hash for %s: %w", a.EmailAddress, err)
	}
	got, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// FullName returns "First Last".
func (a *AdminPerson) FullName() string {
	return a.FirstName + " " + a.LastName
}

// ToItem converts the admin to the generic key-value item shape.
func (a *AdminPerson) ToItem() Item {
	return Item{
		"email_address": a.EmailAddress,
		"firstName":     a.FirstName,
		"lastName":      a.LastName,
		"passwordHash":  a.PasswordHash,
	}
}

// AdminPersonFromItem builds an AdminPerson from the generic key-value item
// shape.
func AdminPersonFromItem(item Item) *AdminPerson {
	return &AdminPerson{
		EmailAddress: itemString(item, "email_address"),
		FirstName:    itemString(item, "firstName"),
		LastName:     itemString(item, "lastName"),
		PasswordHash: itemString(item, "passwordHash"),
	}
}
