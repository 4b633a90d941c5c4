package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/flagx"
	"github.com/dmitrijs2005/gatekeeper/internal/timex"
)

var serverFlags = []string{"-a", "-g", "-b", "-d", "-r", "-s", "-k", "-t", "-l", "-w", "-x", "-v"}

// ValueFlags lists every server flag that takes a value, including the
// config file flags read by flagx.ConfigFileFlags.
var ValueFlags = append(append([]string{}, serverFlags...), "-c", "-config")

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., ":8080")
//	-g string     gRPC bind address (e.g., ":50051")
//	-b string     store backend: postgres, sqlite or redis
//	-d string     PostgreSQL DSN
//	-r string     Redis URL
//	-s string     JWT HMAC secret key
//	-k string     session cookie secret
//	-t int        access token validity, minutes
//	-l int        failed attempts before the account is locked
//	-w int        failed attempts before the warning message
//	-x duration   lock duration (e.g., "20m", "20 minutes", "1d")
//	-v string     log level
//
// Notes:
//   - os.Args is filtered with flagx.FilterArgs first so -c/-config and
//     foreign flags do not break parsing.
//   - Token validity is given in whole minutes and only replaces the current
//     value when -t is present, so a finer value from a file survives.
//   - The lock duration accepts anything timex.ParseDuration does.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to serve login routes on")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port to serve gRPC health on")
	fs.StringVar(&config.StoreBackend, "b", config.StoreBackend, "account store backend (postgres|sqlite|redis)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisURL, "r", config.RedisURL, "redis URL")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.SessionSecret, "k", config.SessionSecret, "session secret")

	accessTokenMinutes := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.IntVar(&config.FailedLoginAttempts, "l", config.FailedLoginAttempts, "failed login attempts before lock")
	fs.IntVar(&config.FailedLoginsWarning, "w", config.FailedLoginsWarning, "failed login attempts before warning")
	fs.Func("x", "account lock duration", func(v string) error {
		d, err := timex.ParseDuration(v)
		if err != nil {
			return err
		}
		config.AccountLockedTime = d
		return nil
	})
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.AccessTokenValidityDuration = time.Duration(*accessTokenMinutes) * time.Minute
		}
	})
}
