// Package middleware carries the fiber request-scoped concerns: API-key
// authentication and per-client rate limiting. Both are simplified from
// the teacher's originals, which validated keys against a partner/api_key
// database schema with per-scope permissions: a transit routing API has no
// notion of partner tiers or scopes, just "is this a key we issued." The
// bearer-token extraction and sha256-hash-compare idiom is unchanged.
package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// KeySet is the set of valid API keys, stored as sha256 hashes so a leaked
// log line or config dump never reveals a usable key.
type KeySet struct {
	hashes map[string]struct{}
}

// NewKeySet hashes each raw key in keys into a lookup set.
func NewKeySet(keys []string) *KeySet {
	ks := &KeySet{hashes: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		ks.hashes[hashKey(k)] = struct{}{}
	}
	return ks
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Valid reports whether key is a member of the set.
func (ks *KeySet) Valid(key string) bool {
	_, ok := ks.hashes[hashKey(key)]
	return ok
}

const clientIDLocal = "client_id"

// RequireAPIKey validates the Authorization: Bearer <key> header against
// keys, storing the raw key as the client identifier for downstream rate
// limiting when it's valid.
func RequireAPIKey(keys *KeySet) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "missing_api_key",
				"message": "API key is required. Use Authorization: Bearer YOUR_API_KEY",
			})
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "invalid_auth_format",
				"message": "Authorization header must be in format: Bearer YOUR_API_KEY",
			})
		}

		key := strings.TrimSpace(parts[1])
		if !keys.Valid(key) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "invalid_api_key",
				"message": "The provided API key is invalid",
			})
		}

		c.Locals(clientIDLocal, key)
		return c.Next()
	}
}
