package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/gatekeeper/internal/timex"
)

const envPrefix = "GATEKEEPER_"

// parseEnv overlays GATEKEEPER_* environment variables. A .env file in the
// working directory is loaded first when present; it never overrides
// variables that are already set.
func parseEnv(c *Config) error {
	_ = godotenv.Load()

	setString(&c.EndpointAddrHTTP, getEnv("HTTP_ADDRESS"))
	setString(&c.EndpointAddrGRPC, getEnv("GRPC_ADDRESS"))
	setString(&c.LogLevel, getEnv("LOG_LEVEL"))
	setString(&c.StoreBackend, getEnv("STORE_BACKEND"))
	setString(&c.DatabaseDSN, getEnv("DATABASE_DSN"))
	setString(&c.RedisURL, getEnv("REDIS_URL"))
	setString(&c.SessionSecret, getEnv("SESSION_SECRET"))
	setString(&c.SecretKey, getEnv("SECRET_KEY"))
	setString(&c.CORSAllowedOrigins, getEnv("CORS_ALLOWED_ORIGINS"))

	if err := envInt("FAILED_LOGIN_ATTEMPTS", &c.FailedLoginAttempts); err != nil {
		return err
	}
	if err := envInt("FAILED_LOGINS_WARNING", &c.FailedLoginsWarning); err != nil {
		return err
	}
	if err := envDuration("ACCOUNT_LOCKED_TIME", &c.AccountLockedTime); err != nil {
		return err
	}
	if err := envDuration("PERSIST_TIMEOUT", &c.PersistTimeout); err != nil {
		return err
	}
	if err := envInt("MAX_UPDATE_RETRIES", &c.MaxUpdateRetries); err != nil {
		return err
	}
	if err := envBool("COUNT_VERIFIER_ERRORS", &c.CountVerifierErrors); err != nil {
		return err
	}
	return nil
}

func getEnv(key string) string {
	return os.Getenv(envPrefix + key)
}

func envInt(key string, dst *int) error {
	raw := getEnv(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: %s%s=%q is not an integer", ErrInvalidConfig, envPrefix, key, raw)
	}
	*dst = v
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	raw := getEnv(key)
	if raw == "" {
		return nil
	}
	v, err := timex.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%w: %s%s=%q is not a duration", ErrInvalidConfig, envPrefix, key, raw)
	}
	*dst = v
	return nil
}

func envBool(key string, dst *bool) error {
	raw := getEnv(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("%w: %s%s=%q is not a boolean", ErrInvalidConfig, envPrefix, key, raw)
	}
	*dst = v
	return nil
}
