package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gatehouse-dev/gatehouse/pkg/entity"
)

type tokenStub struct {
	byValue map[string]testToken
	err     error
}

func (s *tokenStub) FindByValue(_ context.Context, value string) (testToken, error) {
	if s.err != nil {
		return testToken{}, s.err
	}
	tok, ok := s.byValue[value]
	if !ok {
		return testToken{}, entity.ErrNotFound
	}
	return tok, nil
}

func bearerHandler(lookup TokenLookup[testToken], users *userFinder, captured **testUser) http.Handler {
	authn := newTestAuthenticator(users)
	mw := Bearer(lookup, authn)
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := PrincipalFrom[testUser](r.Context()); ok {
			*captured = &u
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestBearer_PopulatesSlot(t *testing.T) {
	u1 := testUser{ID: 1, Name: "alice"}
	lookup := &tokenStub{byValue: map[string]testToken{
		"secret-1": {ID: "abc", Value: "secret-1", OwnerID: 1},
	}}

	var got *testUser
	handler := bearerHandler(lookup, &userFinder{users: map[int]testUser{1: u1}}, &got)

	req := httptest.NewRequest("GET", "/profile", nil)
	req.Header.Set("Authorization", "Bearer secret-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got == nil || *got != u1 {
		t.Errorf("principal = %v, want %+v", got, u1)
	}
}

func TestBearer_NoHeaderLeavesSlotEmpty(t *testing.T) {
	var got *testUser
	handler := bearerHandler(&tokenStub{}, &userFinder{}, &got)

	req := httptest.NewRequest("GET", "/profile", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (extraction never rejects)", rec.Code)
	}
	if got != nil {
		t.Errorf("principal = %+v, want empty slot", *got)
	}
}

func TestBearer_UnknownValueLeavesSlotEmpty(t *testing.T) {
	var got *testUser
	handler := bearerHandler(&tokenStub{byValue: map[string]testToken{}}, &userFinder{}, &got)

	req := httptest.NewRequest("GET", "/profile", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got != nil {
		t.Errorf("principal = %+v, want empty slot", *got)
	}
}

func TestBearer_NonBearerSchemePassesThrough(t *testing.T) {
	var got *testUser
	handler := bearerHandler(&tokenStub{}, &userFinder{}, &got)

	req := httptest.NewRequest("GET", "/profile", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || got != nil {
		t.Errorf("got (%d, %v), want pass-through with empty slot", rec.Code, got)
	}
}

func TestBearer_LookupFailureIs503(t *testing.T) {
	lookup := &tokenStub{err: fmt.Errorf("dial: %w", entity.ErrUnavailable)}

	var got *testUser
	handler := bearerHandler(lookup, &userFinder{}, &got)

	req := httptest.NewRequest("GET", "/profile", nil)
	req.Header.Set("Authorization", "Bearer secret-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 (outage must not pass as unauthenticated)", rec.Code)
	}
	if got != nil {
		t.Error("handler ran despite store failure")
	}
}

func TestBearer_ResolutionFailureIs503(t *testing.T) {
	lookup := &tokenStub{byValue: map[string]testToken{
		"secret-1": {ID: "abc", Value: "secret-1", OwnerID: 1},
	}}
	users := &userFinder{err: fmt.Errorf("dial: %w", entity.ErrUnavailable)}

	var got *testUser
	handler := bearerHandler(lookup, users, &got)

	req := httptest.NewRequest("GET", "/profile", nil)
	req.Header.Set("Authorization", "Bearer secret-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
