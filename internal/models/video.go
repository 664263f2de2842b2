package models

import "time"

// Comment is a timestamped annotation pinned to a playback position.
type Comment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Timestamp float64   `json:"timestamp"` // playback position in seconds
	CreatedAt time.Time `json:"createdAt"`
}

// Video is one playable item plus its locally tracked watch state.
// Duration and CurrentTime are nil until playback has reported them at
// least once.
type Video struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Thumbnail     string     `json:"thumbnail"`
	VideoURL      string     `json:"videoUrl"`
	Duration      *float64   `json:"duration,omitempty"`
	CurrentTime   *float64   `json:"currentTime,omitempty"`
	IsWatched     bool       `json:"isWatched"`
	LastWatchedAt *time.Time `json:"lastWatchedAt,omitempty"`
	Comments      []Comment  `json:"comments"`
}

// Filter selects a view of the video collection.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterWatched   Filter = "watched"
	FilterUnwatched Filter = "unwatched"
)

// ParseFilter maps a query-string value to a Filter. Empty input means
// "all"; anything unrecognized is rejected.
func ParseFilter(s string) (Filter, bool) {
	switch Filter(s) {
	case FilterAll, "":
		return FilterAll, true
	case FilterWatched:
		return FilterWatched, true
	case FilterUnwatched:
		return FilterUnwatched, true
	default:
		return "", false
	}
}
