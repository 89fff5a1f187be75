package domain

import "time"

// Like is the single ledger row for one (user, photo) pair. The row is
// created on the first like and reused forever after: unliking stamps
// DeletedAt, liking again clears it. At most one row exists per pair
// (unique index ux_likes_user_photo).
//
// DeletedAt is a plain nullable timestamp rather than gorm.DeletedAt so that
// GORM does not hide unliked rows from ledger reads.
type Like struct {
	ID        string     `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    uint       `json:"user_id"    gorm:"not null;uniqueIndex:ux_likes_user_photo,priority:1"`
	PhotoID   uint       `json:"photo_id"   gorm:"not null;uniqueIndex:ux_likes_user_photo,priority:2;index:idx_likes_photo"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName returns the database table name for Like.
func (Like) TableName() string { return "likes" }

// LikeState is the logical state of a (user, photo) pair.
type LikeState int

const (
	// LikeAbsent means no ledger row exists yet.
	LikeAbsent LikeState = iota
	// LikeLiked means the row exists with a NULL deleted_at.
	LikeLiked
	// LikeUnliked means the row exists and deleted_at is set.
	LikeUnliked
)

// String implements fmt.Stringer.
func (s LikeState) String() string {
	switch s {
	case LikeLiked:
		return "liked"
	case LikeUnliked:
		return "unliked"
	default:
		return "absent"
	}
}

// StateOf maps a ledger row (nil when absent) to its logical state.
func StateOf(l *Like) LikeState {
	switch {
	case l == nil:
		return LikeAbsent
	case l.DeletedAt == nil:
		return LikeLiked
	default:
		return LikeUnliked
	}
}

// Next returns the state a toggle moves s to. Absent behaves like Unliked.
func (s LikeState) Next() LikeState {
	if s == LikeLiked {
		return LikeUnliked
	}
	return LikeLiked
}

// Transition names the edge a toggle took; it doubles as a metrics label.
type Transition string

const (
	TransitionCreated     Transition = "created"
	TransitionUnliked     Transition = "unliked"
	TransitionReactivated Transition = "reactivated"
	// TransitionConverged is reported when a first-time like lost the insert
	// race to a concurrent writer and settled on the existing row instead.
	TransitionConverged Transition = "converged"
)

// ToggleResult is what the like ledger reports back for one toggle.
type ToggleResult struct {
	Transition Transition
	State      LikeState
	// Created is true only when this call inserted the pair's row.
	Created bool
}

// Liked reports whether the pair ended the toggle in the liked state.
func (r ToggleResult) Liked() bool { return r.State == LikeLiked }

// FeedItem is one row of the photo feed: the photo as listed plus its stats.
type FeedItem struct {
	ID           uint      `json:"id"`
	ImageURL     string    `json:"image_url"`
	CreatedAt    time.Time `json:"created_at"`
	Username     string    `json:"username"`
	LikeCount    int64     `json:"likeCount"`
	CommentCount int64     `json:"commentCount"`
	IsLiked      bool      `json:"isLiked"`
}
