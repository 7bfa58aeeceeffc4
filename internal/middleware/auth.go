package middleware

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/bilgisen/aidigest/internal/logger"
	"github.com/gofiber/fiber/v2"
)

// AuthConfig defines the config for the auth middleware
type AuthConfig struct {
	// Next skips the middleware when it returns true.
	Next func(c *fiber.Ctx) bool

	// Validator reports whether the presented key is accepted. Required.
	Validator func(key string) (bool, error)

	// ErrorHandler runs for a missing or rejected key.
	// Default: 401 with a JSON error.
	ErrorHandler fiber.ErrorHandler

	// Header carrying the key. Default: "X-API-Key".
	Header string
}

var errMissingKey = errors.New("missing API key")

func defaultAuthError(c *fiber.Ctx, err error) error {
	logger.Get().Warn().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Str("ip", c.IP()).
		Err(err).
		Msg("Authentication failed")

	status := fiber.StatusForbidden
	message := "Admin access required"
	if errors.Is(err, errMissingKey) {
		status = fiber.StatusUnauthorized
		message = "API key is required"
	}
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

// NewAuth checks a request header against cfg.Validator.
func NewAuth(cfg AuthConfig) fiber.Handler {
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultAuthError
	}
	if cfg.Header == "" {
		cfg.Header = "X-API-Key"
	}

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		key := strings.TrimSpace(strings.TrimPrefix(c.Get(cfg.Header), "Bearer "))
		if key == "" {
			return cfg.ErrorHandler(c, errMissingKey)
		}

		valid, err := cfg.Validator(key)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}
		if !valid {
			return cfg.ErrorHandler(c, errors.New("invalid API key"))
		}
		return c.Next()
	}
}

// AdminOnly guards admin routes with a shared key. An empty adminKey leaves
// the routes open.
func AdminOnly(adminKey string) fiber.Handler {
	return NewAuth(AuthConfig{
		Next: func(*fiber.Ctx) bool { return adminKey == "" },
		Validator: func(key string) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), []byte(adminKey)) == 1, nil
		},
	})
}
