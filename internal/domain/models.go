// Package domain defines the persistence models for TILs, their images,
// users, activity snapshots, the coin ledger, and guestbooks. These types are
// mapped with GORM and form the core data layer of the learning-tracker
// application.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Coin verbs tag the source of a ledger entry.
const (
	// CoinVerbGithub marks coins minted from GitHub commit activity.
	CoinVerbGithub = "github"
	// CoinVerbBaekjoon marks coins minted from problem-solving progress.
	CoinVerbBaekjoon = "baekjoon"
)

// User tiers, ordered by required experience.
const (
	TierBronze   = "bronze"
	TierSilver   = "silver"
	TierGold     = "gold"
	TierPlatinum = "platinum"
	TierDiamond  = "diamond"
)

// tierThresholds maps minimum accumulated experience to a tier name.
// Order matters: evaluated highest first.
var tierThresholds = []struct {
	MinExp int
	Tier   string
}{
	{5000, TierDiamond},
	{1500, TierPlatinum},
	{500, TierGold},
	{100, TierSilver},
	{0, TierBronze},
}

// User carries the application-level profile extensions for an account whose
// identity is established upstream (session mechanics are out of scope here).
//
// Fields:
//   - ID: stable identifier supplied by the auth layer (varchar 64).
//   - Username: GitHub login used for the GraphQL contributions query.
//   - GithubAccessToken: bearer token for the GitHub API; never serialized.
//   - GithubInitialCommits / GithubInitialDate: baseline recorded by the
//     first sync so later deltas are meaningful.
//   - TotalCoins: denormalized running sum of the user's coin ledger.
//   - Exp / Tier: progression state; Tier is derived from Exp thresholds.
type User struct {
	ID                   string     `json:"id"                     gorm:"type:varchar(64);primaryKey"`
	Username             string     `json:"username"               gorm:"type:varchar(255);index"`
	GithubAccessToken    string     `json:"-"                      gorm:"type:varchar(255)"`
	GithubInitialCommits int        `json:"github_initial_commits" gorm:"not null;default:0"`
	GithubInitialDate    *time.Time `json:"github_initial_date,omitempty" gorm:"type:date"`
	TotalCoins           int        `json:"total_coins"            gorm:"not null;default:0"`
	Exp                  int        `json:"exp"                    gorm:"not null;default:0"`
	Tier                 string     `json:"tier"                   gorm:"type:varchar(16);not null;default:'bronze'"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// IncreaseExp adds amount to the user's experience and recomputes the tier.
// Negative amounts are ignored; experience never decreases.
func (u *User) IncreaseExp(amount int) {
	if amount <= 0 {
		return
	}
	u.Exp += amount
	u.Tier = TierForExp(u.Exp)
}

// TierForExp returns the tier name corresponding to an experience total.
func TierForExp(exp int) string {
	for _, t := range tierThresholds {
		if exp >= t.MinExp {
			return t.Tier
		}
	}
	return TierBronze
}

// TIL represents a "Today I Learned" note owned by a single user. A TIL is
// hard-deleted on request; deletion cascades to its attached images.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - UserID: identifier of the owner; indexed for listing.
//   - Content: the note body.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type TIL struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(64);not null;index:idx_user_tils"`
	Content   string    `json:"content"    gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Images are the attached image rows; cascade-deleted with the TIL.
	Images []TILImage `json:"images,omitempty" gorm:"foreignKey:TILID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for TIL.
func (TIL) TableName() string { return "tils" }

// TILImage is an uploaded image, first created as a temporary, unattached row
// and later linked to a TIL. Invariant: a non-temporary image always has a
// non-nil TILID.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - TILID: nullable foreign key; nil while the upload is still temporary.
//   - URL: public object-store URL; the storage key is derivable from it.
//   - IsTemporary: true until the image is attached to a TIL.
type TILImage struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	TILID       *string   `json:"til_id,omitempty" gorm:"type:char(36);index"`
	URL         string    `json:"url"          gorm:"type:varchar(512);not null"`
	IsTemporary bool      `json:"is_temporary" gorm:"not null;default:true;index"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for TILImage.
func (TILImage) TableName() string { return "til_images" }

// GithubSnapshot records a user's cumulative commit count on a given date.
// Rows are upserted by (user_id, date); the most recent prior snapshot is
// found by ordering (date desc, id desc).
type GithubSnapshot struct {
	ID        uint      `json:"id"         gorm:"primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(64);not null;uniqueIndex:ux_github_user_date,priority:1"`
	Date      time.Time `json:"date"       gorm:"type:date;not null;uniqueIndex:ux_github_user_date,priority:2"`
	CommitNum int       `json:"commit_num" gorm:"not null"`
}

// TableName returns the database table name for GithubSnapshot.
func (GithubSnapshot) TableName() string { return "github_snapshots" }

// Coin is an append-only ledger entry describing a signed coin delta earned
// by (or charged to) a user. Entries are never mutated or deleted; the user's
// running total is maintained denormalized on the User row.
type Coin struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"   gorm:"type:varchar(64);not null;index:idx_user_coins,priority:1"`
	Verb      string    `json:"verb"      gorm:"type:varchar(32);not null"`
	Coins     int       `json:"coins"     gorm:"not null"`
	Timestamp time.Time `json:"timestamp" gorm:"not null;index:idx_user_coins,priority:2"`
}

// TableName returns the database table name for Coin.
func (Coin) TableName() string { return "coins" }

// Baekjoon is a dated snapshot of a user's problem-solving progress.
// The application only reads and serializes these rows; they are written by
// an external collector.
type Baekjoon struct {
	ID     uint      `json:"-"      gorm:"primaryKey"`
	UserID string    `json:"-"      gorm:"type:varchar(64);not null;index"`
	Solved int       `json:"solved" gorm:"not null;default:0"`
	Score  int       `json:"score"  gorm:"not null;default:0"`
	Tier   int       `json:"tier"   gorm:"not null;default:0"`
	Date   time.Time `json:"date"   gorm:"type:date;not null"`
}

// TableName returns the database table name for Baekjoon.
func (Baekjoon) TableName() string { return "baekjoons" }

// Guestbook is a message left by one user (the guest) on another user's
// profile (the host). Entries are soft-deleted so history can be audited.
//
// Fields:
//   - GuestID: author of the message.
//   - HostID: owner of the profile the message was left on.
//   - DeletedAt: soft deletion marker; reads exclude soft-deleted rows.
type Guestbook struct {
	ID        string         `json:"id"         gorm:"type:char(36);primaryKey"`
	GuestID   string         `json:"guest_id"   gorm:"type:varchar(64);not null;index"`
	HostID    string         `json:"host_id"    gorm:"type:varchar(64);not null;index:idx_host_entries"`
	Content   string         `json:"content"    gorm:"type:text;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for Guestbook.
func (Guestbook) TableName() string { return "guestbooks" }

// Challenge condition and status values.
const (
	ChallengeConditionGithubCommits  = "github_commits"
	ChallengeConditionProblemSolving = "problem_solving"

	ChallengeStatusOngoing   = "ongoing"
	ChallengeStatusCompleted = "completed"
	ChallengeStatusRejected  = "rejected"
)

// Challenge is a site-wide competition definition. Only listing is exposed
// here; lifecycle management happens elsewhere.
type Challenge struct {
	ID        uint      `json:"id"        gorm:"primaryKey"`
	Title     string    `json:"title"     gorm:"type:varchar(255);not null"`
	Condition string    `json:"condition" gorm:"type:varchar(20);not null;check:condition IN ('github_commits','problem_solving')"`
	Status    string    `json:"status"    gorm:"type:varchar(20);not null;default:'ongoing';check:status IN ('ongoing','completed','rejected')"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Challenge.
func (Challenge) TableName() string { return "challenges" }

// DateOf truncates a time to its UTC calendar date. Snapshot rows are keyed
// by date, so all writers must normalize through this helper.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
