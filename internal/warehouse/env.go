package warehouse

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables carrying warehouse credentials. A .env file in the
// working directory is honored for local development; real environment
// variables win over it.
const (
	EnvUser  = "SQLSTASH_USER"
	EnvToken = "SQLSTASH_TOKEN"
)

// LoadCredentials reads the warehouse user and token from the environment,
// loading .env first when present.
func LoadCredentials() (user, token string, err error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	user = os.Getenv(EnvUser)
	token = os.Getenv(EnvToken)
	if user == "" || token == "" {
		return "", "", fmt.Errorf("warehouse credentials missing: set %s and %s", EnvUser, EnvToken)
	}
	return user, token, nil
}
