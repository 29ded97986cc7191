package jwt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/gatehouse-dev/gatehouse/pkg/auth"
	"github.com/gatehouse-dev/gatehouse/pkg/entity"
)

type testUser struct {
	ID   string
	Name string
}

type userFinder struct {
	users map[string]testUser
	err   error
}

func (f *userFinder) Find(_ context.Context, id string) (testUser, error) {
	if f.err != nil {
		return testUser{}, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return testUser{}, entity.ErrNotFound
	}
	return u, nil
}

var testSecret = []byte("test-secret")

func signToken(t *testing.T, claims jwtlib.MapClaims, secret []byte) string {
	t.Helper()
	s, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return s
}

func TestAuthenticate_ValidToken(t *testing.T) {
	u := testUser{ID: "u-1", Name: "alice"}
	a := New(Config{Secret: testSecret}, &userFinder{users: map[string]testUser{"u-1": u}}, ParseStringID)

	tok := signToken(t, jwtlib.MapClaims{
		"sub": "u-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	got, ok, err := a.Authenticate(context.Background(), tok)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if !ok || got != u {
		t.Errorf("got (%+v, %v), want (%+v, true)", got, ok, u)
	}
}

func TestAuthenticate_WrongSecretRejected(t *testing.T) {
	a := New(Config{Secret: testSecret}, &userFinder{users: map[string]testUser{"u-1": {ID: "u-1"}}}, ParseStringID)

	tok := signToken(t, jwtlib.MapClaims{
		"sub": "u-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}, []byte("other-secret"))

	_, ok, err := a.Authenticate(context.Background(), tok)
	if err != nil {
		t.Fatalf("forged token must not surface an error, got %v", err)
	}
	if ok {
		t.Error("ok = true for token signed with the wrong secret")
	}
}

func TestAuthenticate_ExpiredRejected(t *testing.T) {
	a := New(Config{Secret: testSecret, Leeway: time.Second}, &userFinder{users: map[string]testUser{"u-1": {ID: "u-1"}}}, ParseStringID)

	tok := signToken(t, jwtlib.MapClaims{
		"sub": "u-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}, testSecret)

	_, ok, err := a.Authenticate(context.Background(), tok)
	if err != nil || ok {
		t.Errorf("got (ok=%v, err=%v), want definitive rejection", ok, err)
	}
}

func TestAuthenticate_IssuerChecked(t *testing.T) {
	a := New(Config{Secret: testSecret, Issuer: "gatehouse"}, &userFinder{users: map[string]testUser{"u-1": {ID: "u-1"}}}, ParseStringID)

	tok := signToken(t, jwtlib.MapClaims{
		"sub": "u-1",
		"iss": "someone-else",
		"exp": time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	_, ok, _ := a.Authenticate(context.Background(), tok)
	if ok {
		t.Error("ok = true for wrong issuer")
	}
}

func TestAuthenticate_UnknownSubjectIsNoMatch(t *testing.T) {
	a := New(Config{Secret: testSecret}, &userFinder{users: map[string]testUser{}}, ParseStringID)

	tok := signToken(t, jwtlib.MapClaims{
		"sub": "ghost",
		"exp": time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	_, ok, err := a.Authenticate(context.Background(), tok)
	if err != nil {
		t.Fatalf("missing subject must degrade to no match, got %v", err)
	}
	if ok {
		t.Error("ok = true for subject with no stored user")
	}
}

func TestAuthenticate_StoreFailurePropagates(t *testing.T) {
	a := New(Config{Secret: testSecret}, &userFinder{err: fmt.Errorf("dial: %w", entity.ErrUnavailable)}, ParseStringID)

	tok := signToken(t, jwtlib.MapClaims{
		"sub": "u-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	_, _, err := a.Authenticate(context.Background(), tok)
	if !errors.Is(err, entity.ErrUnavailable) {
		t.Errorf("err = %v, want entity.ErrUnavailable", err)
	}
}

func TestMiddleware_PopulatesSlot(t *testing.T) {
	u := testUser{ID: "u-1", Name: "alice"}
	a := New(Config{Secret: testSecret}, &userFinder{users: map[string]testUser{"u-1": u}}, ParseStringID)

	var got *testUser
	handler := a.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := auth.PrincipalFrom[testUser](r.Context()); ok {
			got = &p
		}
		w.WriteHeader(http.StatusOK)
	}))

	tok := signToken(t, jwtlib.MapClaims{
		"sub": "u-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	req := httptest.NewRequest("GET", "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got == nil || *got != u {
		t.Errorf("principal = %v, want %+v", got, u)
	}
}

func TestMiddleware_RejectedTokenLeavesSlotEmpty(t *testing.T) {
	a := New(Config{Secret: testSecret}, &userFinder{}, ParseStringID)

	slotSet := false
	handler := a.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, slotSet = auth.PrincipalFrom[testUser](r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/profile", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (extraction never rejects)", rec.Code)
	}
	if slotSet {
		t.Error("slot populated from a rejected credential")
	}
}

func TestMiddleware_StoreFailureIs503(t *testing.T) {
	a := New(Config{Secret: testSecret}, &userFinder{err: fmt.Errorf("dial: %w", entity.ErrUnavailable)}, ParseStringID)

	handler := a.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler ran despite store failure")
	}))

	tok := signToken(t, jwtlib.MapClaims{
		"sub": "u-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	req := httptest.NewRequest("GET", "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
