package auth

import (
	"context"
	"testing"
	"time"

	"github.com/ThonyMarckDEV/rci-backend/internal/ids"
)

func TestAuditListNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	entryIDs := make([]string, 3)
	for i := range entryIDs {
		entryIDs[i] = ids.New()
		err := store.Audit().Append(ctx, &AuditEntry{
			ID:         entryIDs[i],
			UserID:     "u-1",
			UserName:   "Ada Lovelace",
			Role:       RoleAdmin,
			Action:     "did something",
			OccurredAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	page, err := store.Audit().List(ctx, 2, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 || page[0].ID != entryIDs[2] || page[1].ID != entryIDs[1] {
		t.Fatalf("first page not newest-first: %+v", page)
	}

	// The cursor resumes below the last id of the previous page.
	rest, err := store.Audit().List(ctx, 2, page[1].ID)
	if err != nil {
		t.Fatalf("list after cursor: %v", err)
	}
	if len(rest) != 1 || rest[0].ID != entryIDs[0] {
		t.Fatalf("second page: %+v", rest)
	}
}
