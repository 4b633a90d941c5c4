package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-g", "127.0.0.1:9091", "-b", "redis", "-d", "db", "-r", "redis://r:6379/0",
			"-s", "secret", "-k", "cookie", "-t", "30", "-l", "6", "-w", "2", "-x", "45m", "-v", "debug",
		}, expectPanic: false,
			expected: &Config{
				EndpointAddrHTTP:            "127.0.0.1:9090",
				EndpointAddrGRPC:            "127.0.0.1:9091",
				StoreBackend:                "redis",
				DatabaseDSN:                 "db",
				RedisURL:                    "redis://r:6379/0",
				SecretKey:                   "secret",
				SessionSecret:               "cookie",
				AccessTokenValidityDuration: 30 * time.Minute,
				FailedLoginAttempts:         6,
				FailedLoginsWarning:         2,
				AccountLockedTime:           45 * time.Minute,
				LogLevel:                    "debug",
			}},
		{name: "config flag is ignored", args: []string{"cmd", "-c", "gatekeeper.yaml", "-l", "9"},
			expected: &Config{FailedLoginAttempts: 9}},
		{name: "lock duration in words", args: []string{"cmd", "-x", "2 days"},
			expected: &Config{AccountLockedTime: 48 * time.Hour}},
		{name: "bad duration panics", args: []string{"cmd", "-x", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(tt.expected, config))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
