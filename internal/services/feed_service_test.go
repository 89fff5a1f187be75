package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-gallery-backend/internal/domain"
)

type fakeStatsRepo struct {
	likes    map[uint]int64
	comments map[uint]int64
	liked    map[uint]bool
	failOn   string
	calls    int
}

var errFakeStats = errors.New("stats unavailable")

func (f *fakeStatsRepo) LikeCounts(_ context.Context, _ *gorm.DB, _ []uint) (map[uint]int64, error) {
	f.calls++
	if f.failOn == "likes" {
		return nil, errFakeStats
	}
	return f.likes, nil
}

func (f *fakeStatsRepo) CommentCounts(_ context.Context, _ *gorm.DB, _ []uint) (map[uint]int64, error) {
	f.calls++
	if f.failOn == "comments" {
		return nil, errFakeStats
	}
	return f.comments, nil
}

func (f *fakeStatsRepo) LikedPhotoIDs(_ context.Context, _ *gorm.DB, _ uint, _ []uint) (map[uint]bool, error) {
	f.calls++
	if f.failOn == "liked" {
		return nil, errFakeStats
	}
	return f.liked, nil
}

func TestProjector_EmptyInput(t *testing.T) {
	fr := &fakeStatsRepo{}
	p := &Projector{DB: newSvcDB(t), Repo: fr}

	out, err := p.Project(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", out)
	}
	if fr.calls != 0 {
		t.Fatalf("expected no aggregate queries for empty input, got %d", fr.calls)
	}
}

func TestProjector_PreservesInputOrderAndDefaults(t *testing.T) {
	fr := &fakeStatsRepo{
		likes:    map[uint]int64{5: 3, 2: 1},
		comments: map[uint]int64{2: 7},
		liked:    map[uint]bool{5: true},
	}
	p := &Projector{DB: newSvcDB(t), Repo: fr}
	now := time.Now().UTC()

	// Deliberately not sorted by id.
	in := []domain.PhotoWithOwner{
		{ID: 5, ImageURL: "5.jpg", CreatedAt: now, Username: "e"},
		{ID: 9, ImageURL: "9.jpg", CreatedAt: now.Add(-time.Minute), Username: "i"},
		{ID: 2, ImageURL: "2.jpg", CreatedAt: now.Add(-time.Hour), Username: "b"},
	}
	out, err := p.Project(context.Background(), 1, in)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d items, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i].ID != in[i].ID || out[i].ImageURL != in[i].ImageURL || out[i].Username != in[i].Username || !out[i].CreatedAt.Equal(in[i].CreatedAt) {
			t.Fatalf("item %d does not mirror input: %+v vs %+v", i, out[i], in[i])
		}
	}
	want := []struct {
		likes, comments int64
		liked           bool
	}{{3, 0, true}, {0, 0, false}, {1, 7, false}}
	for i, w := range want {
		if out[i].LikeCount != w.likes || out[i].CommentCount != w.comments || out[i].IsLiked != w.liked {
			t.Fatalf("item %d stats: got %+v want %+v", i, out[i], w)
		}
	}
}

func TestProjector_AnyFailureFailsAll(t *testing.T) {
	for _, stage := range []string{"likes", "comments", "liked"} {
		t.Run(stage, func(t *testing.T) {
			fr := &fakeStatsRepo{failOn: stage}
			p := &Projector{DB: newSvcDB(t), Repo: fr}
			out, err := p.Project(context.Background(), 1, []domain.PhotoWithOwner{{ID: 1}, {ID: 2}})
			if !errors.Is(err, errFakeStats) {
				t.Fatalf("expected stats error, got %v", err)
			}
			if out != nil {
				t.Fatalf("expected no partial result, got %+v", out)
			}
		})
	}
}

func TestFeedService_GetFeed_EmptyStore(t *testing.T) {
	s := NewFeedService(newSvcDB(t))
	out, err := s.GetFeed(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil feed, got %#v", out)
	}
}

func TestFeedService_GetFeed_EndToEnd(t *testing.T) {
	db := newSvcDB(t)
	ctx := context.Background()
	ann := mkUser(t, db, "ann")
	bob := mkUser(t, db, "bob")
	base := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	older := mkPhoto(t, db, ann.ID, base)
	newer := mkPhoto(t, db, bob.ID, base.Add(time.Hour))

	likes := &LikeService{DB: db}
	comments := &CommentService{DB: db}
	if _, err := likes.Toggle(ctx, ann.ID, older.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := likes.Toggle(ctx, bob.ID, older.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	// bob likes then unlikes newer: counted as zero.
	likes.Toggle(ctx, bob.ID, newer.ID)
	likes.Toggle(ctx, bob.ID, newer.ID)
	if _, err := comments.Create(ctx, ann.ID, newer.ID, "nice"); err != nil {
		t.Fatalf("comment: %v", err)
	}

	s := NewFeedService(db)
	feed, err := s.GetFeed(ctx, bob.ID)
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	if len(feed) != 2 || feed[0].ID != newer.ID || feed[1].ID != older.ID {
		t.Fatalf("expected newest first, got %+v", feed)
	}
	if feed[0].Username != "bob" || feed[0].LikeCount != 0 || feed[0].CommentCount != 1 || feed[0].IsLiked {
		t.Fatalf("unexpected newer row: %+v", feed[0])
	}
	if feed[1].Username != "ann" || feed[1].LikeCount != 2 || feed[1].CommentCount != 0 || !feed[1].IsLiked {
		t.Fatalf("unexpected older row: %+v", feed[1])
	}

	// Another viewer sees the same counts with its own flag.
	anon := mkUser(t, db, "carol")
	feed2, err := s.GetFeed(ctx, anon.ID)
	if err != nil {
		t.Fatalf("GetFeed(carol): %v", err)
	}
	if feed2[1].LikeCount != 2 || feed2[1].IsLiked {
		t.Fatalf("viewer flag leaked across users: %+v", feed2[1])
	}
}

func TestFeedService_GetFeed_ListingErrorFailsAll(t *testing.T) {
	db := newSvcDB(t)
	if err := db.Migrator().DropTable(&domain.Photo{}); err != nil {
		t.Fatalf("drop photos: %v", err)
	}
	if _, err := NewFeedService(db).GetFeed(context.Background(), 1); err == nil {
		t.Fatalf("expected error when photos cannot be listed")
	}
}

func TestFeedService_Fingerprint_ChangesOnToggle(t *testing.T) {
	db := newSvcDB(t)
	ctx := context.Background()
	ann := mkUser(t, db, "ann")
	p := mkPhoto(t, db, ann.ID, time.Now().UTC())
	s := NewFeedService(db)

	before, err := s.Fingerprint(ctx, ann.ID)
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if _, err := (&LikeService{DB: db}).Toggle(ctx, ann.ID, p.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	after, err := s.Fingerprint(ctx, ann.ID)
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if before.ActiveLikes == after.ActiveLikes || after.ViewerLikes != 1 {
		t.Fatalf("fingerprint did not change: before=%+v after=%+v", before, after)
	}
}

func TestFeedService_GetFeed_Timeout(t *testing.T) {
	db := newSvcDB(t)
	ann := mkUser(t, db, "ann")
	mkPhoto(t, db, ann.ID, time.Now().UTC())
	s := NewFeedService(db)
	s.Timeout = time.Nanosecond

	if _, err := s.GetFeed(context.Background(), ann.ID); err == nil {
		t.Fatalf("expected an error once the deadline has passed")
	}
	if _, err := s.Fingerprint(context.Background(), ann.ID); err == nil {
		t.Fatalf("expected Fingerprint to honour the deadline")
	}

	s.Timeout = time.Minute
	feed, err := s.GetFeed(context.Background(), ann.ID)
	if err != nil || len(feed) != 1 {
		t.Fatalf("GetFeed with a generous deadline: %+v, %v", feed, err)
	}
}
