package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables holding the platform account.
const (
	EnvUsername = "INSTAGRAM_USERNAME"
	EnvPassword = "INSTAGRAM_PASSWORD"
)

// Credentials is the platform account used by the browser session.
type Credentials struct {
	Username string
	Password string
}

// LoadCredentials reads the account from the environment.
// Variables already set in the environment win over the .env files;
// missing .env files are not an error. With no arguments ".env" in the
// current directory is tried.
func LoadCredentials(envFiles ...string) (Credentials, error) {
	_ = godotenv.Load(envFiles...) //nolint:errcheck // .env is optional

	creds := Credentials{
		Username: strings.TrimSpace(os.Getenv(EnvUsername)),
		Password: os.Getenv(EnvPassword),
	}

	var missing []string
	if creds.Username == "" {
		missing = append(missing, EnvUsername)
	}
	if creds.Password == "" {
		missing = append(missing, EnvPassword)
	}
	if len(missing) > 0 {
		return Credentials{}, fmt.Errorf("%w (unset: %s)", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return creds, nil
}

// String never reveals the password.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{Username: %q, Password: %q}", c.Username, "***")
}

// LogValue implements slog.LogValuer so that credentials passed to a
// logger by accident are masked even without SecureHandler.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("username_set", c.Username != ""),
		slog.Bool("password_set", c.Password != ""),
	)
}
