package repo

import (
	"context"
	"testing"
	"time"
)

func TestCreatePhoto_And_Exists(t *testing.T) {
	db := newGalleryDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "ann")

	p, err := CreatePhoto(ctx, db, u.ID, "1700000000000.jpg")
	if err != nil {
		t.Fatalf("CreatePhoto: %v", err)
	}
	if p.ID == 0 || p.UserID != u.ID || p.CreatedAt.IsZero() {
		t.Fatalf("unexpected photo: %+v", p)
	}

	ok, err := PhotoExists(ctx, db, p.ID)
	if err != nil || !ok {
		t.Fatalf("PhotoExists(%d) = %v, %v", p.ID, ok, err)
	}
	ok, err = PhotoExists(ctx, db, p.ID+100)
	if err != nil || ok {
		t.Fatalf("PhotoExists(missing) = %v, %v", ok, err)
	}
}

func TestListPhotosNewestFirst_OrderAndOwner(t *testing.T) {
	db := newGalleryDB(t)
	ctx := context.Background()
	ann := seedUser(t, db, "ann")
	bob := seedUser(t, db, "bob")

	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	old := seedPhoto(t, db, ann.ID, "old.jpg", base)
	newest := seedPhoto(t, db, bob.ID, "new.jpg", base.Add(time.Hour))
	// Same timestamp as old: id DESC breaks the tie.
	tie := seedPhoto(t, db, bob.ID, "tie.jpg", base)

	got, err := ListPhotosNewestFirst(ctx, db)
	if err != nil {
		t.Fatalf("ListPhotosNewestFirst: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	wantIDs := []uint{newest.ID, tie.ID, old.ID}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Fatalf("row %d: want id %d, got %+v", i, id, got)
		}
	}
	if got[0].Username != "bob" || got[2].Username != "ann" || got[2].ImageURL != "old.jpg" {
		t.Fatalf("unexpected owners: %+v", got)
	}
}

func TestListPhotosNewestFirst_EmptyIsNonNil(t *testing.T) {
	db := newGalleryDB(t)
	got, err := ListPhotosNewestFirst(context.Background(), db)
	if err != nil {
		t.Fatalf("ListPhotosNewestFirst: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestListPhotosNewestFirst_Error_NoTable(t *testing.T) {
	db := newTestDB(t)
	if _, err := ListPhotosNewestFirst(context.Background(), db); err == nil {
		t.Fatalf("expected error when photos table is missing")
	}
}
