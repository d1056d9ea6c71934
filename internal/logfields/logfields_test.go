package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"RunID", KeyRunID, "0b5e", RunID("0b5e")},
		{"Site", KeySite, "car-points", Site("car-points")},
		{"Page", KeyPage, "index.html", Page("index.html")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"Host", KeyHost, "192.168.0.1", Host("192.168.0.1")},
		{"RemotePath", KeyRemotePath, "/srv/x", RemotePath("/srv/x")},
		{"Stage", KeyStage, "deploy", Stage("deploy")},
		{"Category", KeyCategory, "transfer", Category("transfer")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

func TestNonStringHelpers(t *testing.T) {
	if v := DryRun(true); v.Key != KeyDryRun || !v.Value.Bool() {
		t.Fatalf("DryRun mismatch: %v", v)
	}
	if v := Count(3); v.Key != KeyCount || v.Value.Int64() != 3 {
		t.Fatalf("Count mismatch: %v", v)
	}
	if v := DurationMS(12.5); v.Key != KeyDurationMS {
		t.Fatalf("DurationMS key mismatch: %s", v.Key)
	}
}

// TestErrorHelper ensures Error() handles nil and non-nil errors predictably.
func TestErrorHelper(t *testing.T) {
	attr := Error(nil)
	if attr.Key != KeyError {
		t.Fatalf("Error key mismatch: %s", attr.Key)
	}
	if attr.Value.String() != "" {
		t.Fatalf("Expected empty error string, got %s", attr.Value.String())
	}
	attr = Error(errors.New("err-test"))
	if attr.Value.String() != "err-test" {
		t.Fatalf("Expected 'err-test', got %s", attr.Value.String())
	}
}
