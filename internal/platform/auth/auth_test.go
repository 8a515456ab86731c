package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

type mockUserRepo struct {
	users  map[string]*User
	nextID int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*User), nextID: 1}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	u.ID = m.nextID
	m.nextID++
	u.CreatedAt = time.Now()
	m.users[u.Username] = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

func seedUser(t *testing.T, repo *mockUserRepo, username, password, role string) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &User{Username: username, PasswordHash: string(hash), Role: role}
	repo.Create(context.Background(), u)
	return u
}

var testSecret = []byte("test-secret")

func TestLogin_Success(t *testing.T) {
	repo := newMockUserRepo()
	seedUser(t, repo, "frontdesk", "letmein123", "receptionist")
	svc := NewService(repo, testSecret, time.Hour)

	token, user, err := svc.Login(context.Background(), "frontdesk", "letmein123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}
	if user.Role != "receptionist" {
		t.Errorf("unexpected role: %s", user.Role)
	}

	claims, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.Username != "frontdesk" || claims.Role != "receptionist" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newMockUserRepo()
	seedUser(t, repo, "frontdesk", "letmein123", "receptionist")
	svc := NewService(repo, testSecret, time.Hour)

	if _, _, err := svc.Login(context.Background(), "frontdesk", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	svc := NewService(newMockUserRepo(), testSecret, time.Hour)
	if _, _, err := svc.Login(context.Background(), "ghost", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	u := &User{ID: 1, Username: "a", Role: "admin"}
	token, err := IssueToken(testSecret, u, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := ParseToken([]byte("other-secret"), token); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestParseToken_Expired(t *testing.T) {
	u := &User{ID: 1, Username: "a", Role: "admin"}
	token, err := IssueToken(testSecret, u, -time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := ParseToken(testSecret, token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestCreateUser_Validation(t *testing.T) {
	svc := NewService(newMockUserRepo(), testSecret, time.Hour)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, "", "password123", "admin", nil); err == nil {
		t.Error("expected error for empty username")
	}
	if _, err := svc.CreateUser(ctx, "u", "short", "admin", nil); err == nil {
		t.Error("expected error for short password")
	}
	if _, err := svc.CreateUser(ctx, "u", "password123", "superuser", nil); err == nil {
		t.Error("expected error for invalid role")
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewService(repo, testSecret, time.Hour)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, "u", "password123", "receptionist", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.CreateUser(ctx, "u", "password456", "doctor", nil); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewService(repo, testSecret, time.Hour)
	ctx := context.Background()

	first, err := svc.EnsureAdmin(ctx, "admin", "adminpass1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.EnsureAdmin(ctx, "admin", "differentpass")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected the same account, got %d and %d", first.ID, second.ID)
	}
}

func requireRoleTest(t *testing.T, actor *Actor, roles []string) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if actor != nil {
		req = req.WithContext(WithActor(req.Context(), actor))
	}
	c := e.NewContext(req, httptest.NewRecorder())
	h := RequireRole(roles...)(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return h(c)
}

func TestRequireRole(t *testing.T) {
	if err := requireRoleTest(t, &Actor{Role: "receptionist"}, []string{"receptionist"}); err != nil {
		t.Errorf("expected receptionist to pass: %v", err)
	}
	if err := requireRoleTest(t, &Actor{Role: "admin"}, []string{"receptionist"}); err != nil {
		t.Errorf("expected admin to pass any check: %v", err)
	}

	err := requireRoleTest(t, &Actor{Role: "doctor"}, []string{"receptionist"})
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403 for doctor, got %v", err)
	}

	err = requireRoleTest(t, nil, []string{"receptionist"})
	he, ok = err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for anonymous, got %v", err)
	}
}

func TestJWTMiddleware_RoundTrip(t *testing.T) {
	did := int64(7)
	u := &User{ID: 3, Username: "dr.mehta", Role: "doctor", DoctorID: &did}
	token, err := IssueToken(testSecret, u, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	c := e.NewContext(req, httptest.NewRecorder())

	var got *Actor
	h := JWTMiddleware(testSecret)(func(c echo.Context) error {
		got = ActorFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected actor in context")
	}
	if got.UserID != 3 || got.Role != "doctor" || got.DoctorID == nil || *got.DoctorID != 7 {
		t.Errorf("unexpected actor: %+v", got)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	h := JWTMiddleware(testSecret)(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	err := h(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}
