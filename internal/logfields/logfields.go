package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeySite       = "site"
	KeyPage       = "page"
	KeyPath       = "path"
	KeyHost       = "host"
	KeyRemotePath = "remote_path"
	KeyDryRun     = "dry_run"
	KeyStage      = "stage"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyCategory   = "category"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr          { return slog.String(KeyRunID, id) }
func Site(name string) slog.Attr         { return slog.String(KeySite, name) }
func Page(p string) slog.Attr            { return slog.String(KeyPage, p) }
func Path(p string) slog.Attr            { return slog.String(KeyPath, p) }
func Host(h string) slog.Attr            { return slog.String(KeyHost, h) }
func RemotePath(p string) slog.Attr      { return slog.String(KeyRemotePath, p) }
func DryRun(enabled bool) slog.Attr      { return slog.Bool(KeyDryRun, enabled) }
func Stage(name string) slog.Attr        { return slog.String(KeyStage, name) }
func Count(n int) slog.Attr              { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr    { return slog.Float64(KeyDurationMS, ms) }
func Category(category string) slog.Attr { return slog.String(KeyCategory, category) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
