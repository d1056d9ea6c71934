// Package validate provides wrapper types that can only be obtained through a checking
// constructor, so a value of the type is proof that validation happened before any
// network or process invocation uses it.
package validate

import (
	"context"
	"net"
	"os"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/sitedeploy/internal/errors"
)

// Resolver looks up the addresses of a host.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Hostname is a host name or IP address that resolved at construction time.
type Hostname struct {
	value string
}

// NewHostname validates raw using the system resolver.
func NewHostname(ctx context.Context, raw string) (Hostname, error) {
	return NewHostnameWith(ctx, raw, net.DefaultResolver)
}

// NewHostnameWith validates raw using resolver. Surrounding whitespace is ignored.
func NewHostnameWith(ctx context.Context, raw string, resolver Resolver) (Hostname, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Hostname{}, errors.ValidationError("invalid hostname").
			WithContext("hostname", raw).
			WithContext("reason", "empty").
			Build()
	}
	if net.ParseIP(value) != nil {
		return Hostname{value: value}, nil
	}
	if _, err := resolver.LookupHost(ctx, value); err != nil {
		return Hostname{}, errors.WrapError(err, errors.CategoryValidation, "invalid hostname").
			Fatal().
			WithContext("hostname", value).
			Build()
	}
	return Hostname{value: value}, nil
}

func (h Hostname) String() string { return h.value }

// IsZero reports whether h was never validated.
func (h Hostname) IsZero() bool { return h.value == "" }

var usernamePattern = regexp.MustCompile(`\A[a-z_](?:[a-z0-9_-]{0,31}|[a-z0-9_-]{0,30}\$)\z`)

// Username is a POSIX login name.
type Username struct {
	value string
}

// NewUsername validates raw against the portable login-name rules used by useradd.
func NewUsername(raw string) (Username, error) {
	value := strings.TrimSpace(raw)
	if !usernamePattern.MatchString(value) {
		return Username{}, errors.ValidationError("invalid username").
			WithContext("username", raw).
			Build()
	}
	return Username{value: value}, nil
}

func (u Username) String() string { return u.value }

var privateKeyPattern = regexp.MustCompile(
	`(?s)\A\s*-----BEGIN ((?:[A-Z0-9]+ )*)PRIVATE KEY-----\r?\n(.*\S.*)\r?\n-----END ((?:[A-Z0-9]+ )*)PRIVATE KEY-----\s*\z`)

// IdentityFile is the path of a readable file holding a PEM/OpenSSH private key.
type IdentityFile struct {
	path string
}

// NewIdentityFile checks that raw names a regular file whose contents look like a
// private key with matching BEGIN/END armour.
func NewIdentityFile(raw string) (IdentityFile, error) {
	path := strings.TrimSpace(raw)
	info, err := os.Stat(path)
	if err != nil {
		return IdentityFile{}, errors.WrapError(err, errors.CategoryValidation, "invalid identity file").
			Fatal().
			WithContext("path", path).
			Build()
	}
	if !info.Mode().IsRegular() {
		return IdentityFile{}, errors.ValidationError("invalid identity file").
			WithContext("path", path).
			WithContext("reason", "not a regular file").
			Build()
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return IdentityFile{}, errors.WrapError(err, errors.CategoryValidation, "invalid identity file").
			Fatal().
			WithContext("path", path).
			Build()
	}
	if !IsPrivateKey(string(content)) {
		return IdentityFile{}, errors.ValidationError("invalid identity file").
			WithContext("path", path).
			WithContext("reason", "not a private key").
			Build()
	}
	return IdentityFile{path: path}, nil
}

// IsPrivateKey reports whether content is a single armoured private key block.
func IsPrivateKey(content string) bool {
	m := privateKeyPattern.FindStringSubmatch(content)
	return m != nil && m[1] == m[3]
}

func (f IdentityFile) String() string { return f.path }
