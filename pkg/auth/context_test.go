package auth

import (
	"context"
	"testing"
)

type otherPrincipal struct{ Name string }

func TestPrincipalFrom_EmptySlot(t *testing.T) {
	_, ok := PrincipalFrom[testUser](context.Background())
	if ok {
		t.Error("ok = true for empty slot")
	}
}

func TestPrincipalFrom_SetAndGet(t *testing.T) {
	u := testUser{ID: 1, Name: "alice"}
	ctx := WithPrincipal(context.Background(), u)

	got, ok := PrincipalFrom[testUser](ctx)
	if !ok {
		t.Fatal("ok = false after WithPrincipal")
	}
	if got != u {
		t.Errorf("principal = %+v, want %+v", got, u)
	}
}

func TestPrincipalFrom_TypeMismatchReadsAsEmpty(t *testing.T) {
	ctx := WithPrincipal(context.Background(), testUser{ID: 1})

	_, ok := PrincipalFrom[otherPrincipal](ctx)
	if ok {
		t.Error("ok = true reading a different principal type")
	}
}

func TestPrincipalFrom_TypesCoexist(t *testing.T) {
	ctx := WithPrincipal(context.Background(), testUser{ID: 1, Name: "alice"})
	ctx = WithPrincipal(ctx, otherPrincipal{Name: "svc"})

	u, ok := PrincipalFrom[testUser](ctx)
	if !ok || u.Name != "alice" {
		t.Errorf("testUser slot = (%+v, %v), want alice", u, ok)
	}
	o, ok := PrincipalFrom[otherPrincipal](ctx)
	if !ok || o.Name != "svc" {
		t.Errorf("otherPrincipal slot = (%+v, %v), want svc", o, ok)
	}
}
