package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"dcatracker/internal/domain"
	"dcatracker/internal/sqlinline"
)

func TestEnsureUserReportsCreation(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	avatar := "https://cdn.example.com/ana.png"
	sql := &fakeSQL{rows: [][]any{{"u-1", "ana@example.com", "Ana", &avatar, created, true}}}

	u, isNew, err := NewUserRepository(sql).Ensure(context.Background(), domain.NewUser("u-1", "ana@example.com", "Ana", avatar))
	if err != nil {
		t.Fatalf("Ensure returned error: %v", err)
	}
	if sql.lastQuery != sqlinline.QEnsureUser {
		t.Fatalf("unexpected query %q", sql.lastQuery)
	}
	if !isNew || u.ID != "u-1" || u.Avatar == nil || *u.Avatar != avatar {
		t.Fatalf("unexpected result %+v created=%v", u, isNew)
	}
}

func TestEnsureUserReadsBackAfterConcurrentInsert(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sql := &fakeSQL{rowQueue: [][]any{
		nil,
		{"u-1", "ana@example.com", "Ana", (*string)(nil), created},
	}}

	u, isNew, err := NewUserRepository(sql).Ensure(context.Background(), domain.NewUser("u-1", "ana@example.com", "Ana", ""))
	if err != nil {
		t.Fatalf("Ensure returned error: %v", err)
	}
	if isNew {
		t.Fatal("row committed by another request reported as created")
	}
	if u.ID != "u-1" || !u.CreatedAt.Equal(created) {
		t.Fatalf("unexpected user %+v", u)
	}
	if len(sql.queries) != 2 || sql.queries[0] != sqlinline.QEnsureUser || sql.queries[1] != sqlinline.QSelectUserByID {
		t.Fatalf("unexpected statements %q", sql.queries)
	}
}

func TestEnsureUserMissingAfterFallback(t *testing.T) {
	sql := &fakeSQL{rowQueue: [][]any{nil, nil}}
	_, _, err := NewUserRepository(sql).Ensure(context.Background(), domain.NewUser("u-1", "ana@example.com", "Ana", ""))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Ensure() error = %v, want ErrNotFound", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	_, err := NewUserRepository(&fakeSQL{}).GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByID() error = %v, want ErrNotFound", err)
	}
}
