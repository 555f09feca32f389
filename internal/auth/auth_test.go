package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestAuthenticatePlaintextAndBcrypt(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	table := "Username,Password,Role\n" +
		"ada,legacy-pass,Employee\n" +
		"root," + hash + ",Admin\n"
	a, err := LoadUsers(strings.NewReader(table))
	if err != nil {
		t.Fatalf("load users: %v", err)
	}

	role, err := a.Authenticate("ada", "legacy-pass")
	if err != nil || role != RoleEmployee {
		t.Fatalf("plaintext login: role=%q err=%v", role, err)
	}
	role, err = a.Authenticate("root", "s3cret")
	if err != nil || role != RoleAdmin {
		t.Fatalf("bcrypt login: role=%q err=%v", role, err)
	}

	for _, tc := range [][2]string{
		{"ada", "wrong"},
		{"root", "wrong"},
		{"ghost", "anything"},
	} {
		if _, err := a.Authenticate(tc[0], tc[1]); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("%s/%s: expected invalid credentials, got %v", tc[0], tc[1], err)
		}
	}
}

func TestDummyHashIsWellFormed(t *testing.T) {
	cost, err := bcrypt.Cost([]byte(dummyHash))
	if err != nil {
		t.Fatalf("the unknown-user comparison needs a parseable hash: %v", err)
	}
	if cost != bcrypt.DefaultCost {
		t.Fatalf("expected cost %d, got %d", bcrypt.DefaultCost, cost)
	}
}

func TestLoadUsersRejectsUnknownRole(t *testing.T) {
	_, err := LoadUsers(strings.NewReader("Username,Password,Role\nada,pw,Manager\n"))
	if err == nil {
		t.Fatalf("unknown roles must be rejected at load time")
	}
}

func TestLoadUsersMissingColumn(t *testing.T) {
	_, err := LoadUsers(strings.NewReader("Username,Password\nada,pw\n"))
	if err == nil {
		t.Fatalf("expected an error for a table without a Role column")
	}
}

func TestSessionIsAdmin(t *testing.T) {
	if (Session{Role: RoleEmployee}).IsAdmin() {
		t.Fatalf("employee sessions must not be admin")
	}
	if !(Session{Role: RoleAdmin}).IsAdmin() {
		t.Fatalf("admin sessions must be admin")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	token, err := IssueToken(Session{Username: "root", Role: RoleAdmin}, secret, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	sess, err := VerifyToken(token, secret)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if sess.Username != "root" || sess.Role != RoleAdmin {
		t.Fatalf("session did not round-trip: %+v", sess)
	}
}

func TestTokenRejections(t *testing.T) {
	secret := []byte("test-secret")
	token, err := IssueToken(Session{Username: "ada", Role: RoleEmployee}, secret, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := VerifyToken(token, []byte("other-secret")); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret must fail, got %v", err)
	}
	if _, err := VerifyToken("not-a-token", secret); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage must fail, got %v", err)
	}

	expired, err := IssueToken(Session{Username: "ada", Role: RoleEmployee}, secret, -time.Minute)
	if err != nil {
		t.Fatalf("issue expired: %v", err)
	}
	if _, err := VerifyToken(expired, secret); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired tokens must fail, got %v", err)
	}
}

func TestIssueTokenRequiresSecretAndRole(t *testing.T) {
	if _, err := IssueToken(Session{Username: "ada", Role: RoleEmployee}, nil, time.Hour); err == nil {
		t.Fatalf("empty secret must be rejected")
	}
	if _, err := IssueToken(Session{Username: "ada", Role: "Manager"}, []byte("s"), time.Hour); err == nil {
		t.Fatalf("unknown role must be rejected")
	}
}
