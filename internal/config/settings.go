package config

import (
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitedeploy/internal/errors"
	"git.home.luguber.info/inful/sitedeploy/internal/logging"
	"git.home.luguber.info/inful/sitedeploy/internal/retry"
)

// strippedChars are trimmed from both ends of every string setting.
const strippedChars = "\n\r\t .-_"

const defaultDebounce = 500 * time.Millisecond

// Overrides holds values from flags and environment variables. Nil and empty values
// leave the lower layers untouched.
type Overrides struct {
	DryRun       *bool
	Verbosity    *int
	Minify       *bool
	Host         string
	Username     string
	Directory    string
	IdentityFile string
	HistoryDB    string
	MetricsFile  string
	LogFormat    string
	Sites        []string
}

// Settings are the resolved values a run works with.
type Settings struct {
	DryRun bool
	// Verbosity as given, before mapping to a log level.
	RawVerbosity int
	Verbosity    logging.Verbosity
	Minify       bool
	Host         string
	Username     string
	Directory    string
	IdentityFile string
	HistoryDB    string
	MetricsFile  string
	LogFormat    logging.Format
	Sites        []string
	Debounce     time.Duration
	WatchPaths   []string
	Retry        retry.Policy
}

// Normalize trims newlines, tabs, spaces, dots, dashes and underscores from both ends
// of s.
func Normalize(s string) string {
	return strings.Trim(s, strippedChars)
}

// ResolveVerbosity maps the raw verbosity to a level:
//
//	raw >= 2  -> trace
//	raw == 1  -> debug
//	raw == 0  -> debug on dry runs, info otherwise
//	raw <= -1 -> quiet
//
// A negative verbosity combined with a dry run is rejected.
func ResolveVerbosity(raw int, dryRun bool) (logging.Verbosity, error) {
	switch {
	case raw < 0 && dryRun:
		return 0, errors.ValidationError("negative verbosity cannot be combined with dry run").
			WithContext("verbosity", raw).Build()
	case raw >= 2:
		return logging.VerbosityTrace, nil
	case raw == 1:
		return logging.VerbosityDebug, nil
	case raw == 0 && dryRun:
		return logging.VerbosityDebug, nil
	case raw == 0:
		return logging.VerbosityInfo, nil
	default:
		return logging.VerbosityQuiet, nil
	}
}

// Resolve layers o over c and validates the result. A nil c is treated as empty.
// Relative output paths are resolved against root.
func Resolve(c *Config, o Overrides, root string) (Settings, error) {
	if c == nil {
		c = &Config{}
	}
	s := Settings{
		Host:         pick(o.Host, c.Remote.Host),
		Username:     pick(o.Username, c.Remote.Username),
		Directory:    pick(o.Directory, c.Remote.Directory),
		IdentityFile: strings.TrimSpace(firstNonEmpty(o.IdentityFile, c.Remote.IdentityFile)),
		HistoryDB:    rooted(root, firstNonEmpty(o.HistoryDB, c.Output.HistoryDB)),
		MetricsFile:  rooted(root, firstNonEmpty(o.MetricsFile, c.Output.MetricsFile)),
		LogFormat:    logging.NormalizeFormat(firstNonEmpty(o.LogFormat, c.Logging.Format)),
		Sites:        firstNonEmptySlice(o.Sites, c.Sites),
		Debounce:     defaultDebounce,
		WatchPaths:   c.Watch.Paths,
	}
	s.DryRun = boolValue(o.DryRun, c.DryRun, false)
	s.Minify = boolValue(o.Minify, c.Minify, true)
	s.RawVerbosity = intValue(o.Verbosity, c.Verbosity, 0)

	if d := strings.TrimSpace(c.Watch.Debounce); d != "" {
		parsed, err := time.ParseDuration(d)
		if err != nil || parsed < 0 {
			return Settings{}, errors.ConfigError("invalid watch debounce").
				WithContext("debounce", d).Build()
		}
		s.Debounce = parsed
	}

	policy, err := resolveRetry(c.Remote.Retry)
	if err != nil {
		return Settings{}, err
	}
	s.Retry = policy

	v, err := ResolveVerbosity(s.RawVerbosity, s.DryRun)
	if err != nil {
		return Settings{}, err
	}
	s.Verbosity = v
	return s, nil
}

func resolveRetry(rc RetryConfig) (retry.Policy, error) {
	if rc.Attempts == 0 {
		return retry.Policy{}, nil
	}
	mode, err := retry.ParseMode(rc.Backoff)
	if err != nil {
		return retry.Policy{}, err
	}
	initial, err := optionalDuration("initial", rc.Initial)
	if err != nil {
		return retry.Policy{}, err
	}
	maxDelay, err := optionalDuration("max", rc.Max)
	if err != nil {
		return retry.Policy{}, err
	}
	p := retry.NewPolicy(mode, initial, maxDelay, rc.Attempts)
	if rc.Attempts < 0 {
		p.MaxRetries = rc.Attempts
	}
	return p, p.Validate()
}

func optionalDuration(key, raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, errors.ConfigError("invalid retry duration").
			WithContext(key, raw).Build()
	}
	return d, nil
}

func pick(values ...string) string {
	for _, v := range values {
		if n := Normalize(v); n != "" {
			return n
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstNonEmptySlice(values ...[]string) []string {
	for _, v := range values {
		if len(v) > 0 {
			return v
		}
	}
	return nil
}

func boolValue(override, file *bool, def bool) bool {
	switch {
	case override != nil:
		return *override
	case file != nil:
		return *file
	default:
		return def
	}
}

func intValue(override, file *int, def int) int {
	switch {
	case override != nil:
		return *override
	case file != nil:
		return *file
	default:
		return def
	}
}

func rooted(root, p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) || root == "" {
		return p
	}
	return filepath.Join(root, p)
}
