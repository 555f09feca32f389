// Package auth maps credentials to roles and carries the explicit session
// context passed into every operation that needs the current user.
package auth

import (
	"crypto/subtle"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Role is the access level of an authenticated user.
type Role string

// Recognised roles.
const (
	RoleEmployee Role = "Employee"
	RoleAdmin    Role = "Admin"
)

// ValidRole reports whether r is a recognised role.
func ValidRole(r Role) bool {
	return r == RoleEmployee || r == RoleAdmin
}

// Session identifies the authenticated user for one operation. It replaces
// ambient login state: callers construct it once after authentication and
// pass it explicitly.
type Session struct {
	Username string
	Role     Role
}

// IsAdmin reports whether the session carries the Admin role.
func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

// ErrInvalidCredentials is returned when the username/password pair does not
// resolve to a user.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Authenticator maps a username/password pair to a role.
type Authenticator interface {
	Authenticate(username, password string) (Role, error)
}

// CSVAuthenticator authenticates against a flat credential table with columns
// Username, Password, Role. Passwords may be bcrypt hashes or, for legacy
// tables, plaintext compared in constant time.
type CSVAuthenticator struct {
	users map[string]userEntry
}

type userEntry struct {
	password string
	role     Role
}

// LoadUsers parses a credential table.
func LoadUsers(r io.Reader) (*CSVAuthenticator, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return &CSVAuthenticator{users: map[string]userEntry{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read user header: %w", err)
	}
	idx := map[string]int{}
	for i, col := range header {
		idx[strings.TrimSpace(col)] = i
	}
	for _, required := range []string{"Username", "Password", "Role"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("user table missing %q column", required)
		}
	}
	users := map[string]userEntry{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read user row: %w", err)
		}
		role := Role(strings.TrimSpace(row[idx["Role"]]))
		if !ValidRole(role) {
			return nil, fmt.Errorf("user %q has unknown role %q", row[idx["Username"]], role)
		}
		users[row[idx["Username"]]] = userEntry{password: row[idx["Password"]], role: role}
	}
	return &CSVAuthenticator{users: users}, nil
}

// OpenUsers loads a credential table from disk.
func OpenUsers(path string) (*CSVAuthenticator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open users: %w", err)
	}
	defer func() { _ = f.Close() }()
	return LoadUsers(f)
}

// dummyHash is a well-formed cost-10 bcrypt hash that matches no issued
// password. It must parse, or the comparison below returns before doing any
// work.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Authenticate implements Authenticator.
func (a *CSVAuthenticator) Authenticate(username, password string) (Role, error) {
	entry, ok := a.users[username]
	if !ok {
		// Burn a full comparison so unknown users cost the same as bad
		// passwords.
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return "", ErrInvalidCredentials
	}
	if strings.HasPrefix(entry.password, "$2") {
		if err := bcrypt.CompareHashAndPassword([]byte(entry.password), []byte(password)); err != nil {
			return "", ErrInvalidCredentials
		}
		return entry.role, nil
	}
	if subtle.ConstantTimeCompare([]byte(entry.password), []byte(password)) != 1 {
		return "", ErrInvalidCredentials
	}
	return entry.role, nil
}

// HashPassword returns a bcrypt hash suitable for the credential table.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
