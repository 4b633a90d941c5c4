package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/gatekeeper/internal/flagx"
	"github.com/dmitrijs2005/gatekeeper/internal/timex"
)

// FileConfig is the on-disk shape of the configuration. Durations use
// timex.Duration so "20m", "20 minutes" and integer nanoseconds are all accepted. Only
// fields present in the file override the current values.
type FileConfig struct {
	EndpointAddrHTTP string `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	EndpointAddrGRPC string `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	LogLevel         string `json:"log_level" yaml:"log_level"`

	StoreBackend string `json:"store_backend" yaml:"store_backend"`
	DatabaseDSN  string `json:"database_dsn" yaml:"database_dsn"`
	RedisURL     string `json:"redis_url" yaml:"redis_url"`

	SessionSecret               string          `json:"session_secret" yaml:"session_secret"`
	SecretKey                   string          `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	CORSAllowedOrigins          string          `json:"cors_allowed_origins" yaml:"cors_allowed_origins"`

	LoginRoute      string `json:"login_route" yaml:"login_route"`
	LogoutRoute     string `json:"logout_route" yaml:"logout_route"`
	DefaultRedirect string `json:"default_redirect" yaml:"default_redirect"`

	FailedLoginAttempts *int            `json:"failed_login_attempts" yaml:"failed_login_attempts"`
	FailedLoginsWarning *int            `json:"failed_logins_warning" yaml:"failed_logins_warning"`
	AccountLockedTime   *timex.Duration `json:"account_locked_time" yaml:"account_locked_time"`

	PersistTimeout      *timex.Duration `json:"persist_timeout" yaml:"persist_timeout"`
	MaxUpdateRetries    *int            `json:"max_update_retries" yaml:"max_update_retries"`
	CountVerifierErrors *bool           `json:"count_verifier_errors" yaml:"count_verifier_errors"`
}

// parseFile loads the file named by -c/-config into config. Files ending in
// .yaml or .yml are decoded as YAML, anything else as JSON. Without the flag
// nothing happens. An unreadable or malformed file panics, like a bad flag.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(config)
}

func (fc *FileConfig) apply(c *Config) {
	setString(&c.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&c.EndpointAddrGRPC, fc.EndpointAddrGRPC)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.StoreBackend, fc.StoreBackend)
	setString(&c.DatabaseDSN, fc.DatabaseDSN)
	setString(&c.RedisURL, fc.RedisURL)
	setString(&c.SessionSecret, fc.SessionSecret)
	setString(&c.SecretKey, fc.SecretKey)
	setString(&c.CORSAllowedOrigins, fc.CORSAllowedOrigins)
	setString(&c.LoginRoute, fc.LoginRoute)
	setString(&c.LogoutRoute, fc.LogoutRoute)
	setString(&c.DefaultRedirect, fc.DefaultRedirect)

	if fc.AccessTokenValidityDuration != nil {
		c.AccessTokenValidityDuration = fc.AccessTokenValidityDuration.Duration
	}
	if fc.FailedLoginAttempts != nil {
		c.FailedLoginAttempts = *fc.FailedLoginAttempts
	}
	if fc.FailedLoginsWarning != nil {
		c.FailedLoginsWarning = *fc.FailedLoginsWarning
	}
	if fc.AccountLockedTime != nil {
		c.AccountLockedTime = fc.AccountLockedTime.Duration
	}
	if fc.PersistTimeout != nil {
		c.PersistTimeout = fc.PersistTimeout.Duration
	}
	if fc.MaxUpdateRetries != nil {
		c.MaxUpdateRetries = *fc.MaxUpdateRetries
	}
	if fc.CountVerifierErrors != nil {
		c.CountVerifierErrors = *fc.CountVerifierErrors
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
