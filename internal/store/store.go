package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"vidshelf-backend/internal/models"
	"vidshelf-backend/internal/storage"
)

// Notifier receives an event after every applied mutation. The
// websocket hub implements it; a nil notifier disables eventing.
type Notifier interface {
	Publish(msg models.WSMessage)
}

// Store is the single source of truth for video and comment state.
// All mutation goes through it: an operation applies to the in-memory
// collection synchronously, then hands a full snapshot of the
// collection to the persist writer. Persistence failures are logged
// and never rolled back.
type Store struct {
	kv        storage.KV
	key       string
	threshold float64
	log       logrus.FieldLogger
	notifier  Notifier
	now       func() time.Time

	mu        sync.RWMutex
	videos    []models.Video
	currentID string

	writer *writer
}

// New builds a store over the given storage key. threshold is the
// completion ratio at which a video is auto-marked watched.
func New(kv storage.KV, key string, threshold float64, log logrus.FieldLogger) *Store {
	return &Store{
		kv:        kv,
		key:       key,
		threshold: threshold,
		log:       log,
		now:       time.Now,
		writer:    newWriter(kv, key, log),
	}
}

// SetNotifier wires the event sink. Call before serving traffic.
func (s *Store) SetNotifier(n Notifier) {
	s.notifier = n
}

// Load populates the collection from storage. An absent key seeds the
// demo library and persists it; an unreadable or unparsable payload
// does the same, so every load leaves storage in a readable state. In
// the fallback cases the causing error is returned for the caller to
// report, but the store is usable either way.
func (s *Store) Load(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.log.WithError(err).Error("failed to read persisted videos, seeding demo library")
		s.resetToSeed()
		return err
	}
	if !ok {
		s.log.Info("no persisted videos found, seeding demo library")
		s.resetToSeed()
		return nil
	}

	videos, err := decodeVideos(raw)
	if err != nil {
		s.log.WithError(err).Error("persisted videos are unreadable, seeding demo library")
		s.resetToSeed()
		return err
	}

	s.mu.Lock()
	s.videos = videos
	s.mu.Unlock()
	return nil
}

func (s *Store) resetToSeed() {
	s.mu.Lock()
	s.videos = seedVideos()
	s.persistLocked()
	s.mu.Unlock()
}

// Filtered returns a copy of the collection in insertion order,
// restricted by filter. Watched and unwatched partition the full set.
func (s *Store) Filtered(filter models.Filter) []models.Video {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Video, 0, len(s.videos))
	for _, v := range s.videos {
		switch filter {
		case models.FilterWatched:
			if !v.IsWatched {
				continue
			}
		case models.FilterUnwatched:
			if v.IsWatched {
				continue
			}
		}
		out = append(out, cloneVideo(v))
	}
	return out
}

// Video returns a copy of the video with the given id.
func (s *Store) Video(id string) (models.Video, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return cloneVideo(s.videos[i]), true
	}
	return models.Video{}, false
}

// SetCurrent selects the video with the given id. The selection is a
// stored id, not a copy: Current always resolves against the live
// collection, so it can never drift from later mutations.
func (s *Store) SetCurrent(id string) (models.Video, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Video{}, false
	}
	s.currentID = id
	return cloneVideo(s.videos[i]), true
}

// ClearCurrent drops the selection.
func (s *Store) ClearCurrent() {
	s.mu.Lock()
	s.currentID = ""
	s.mu.Unlock()
}

// Current resolves the selected video, if any.
func (s *Store) Current() (models.Video, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.currentID == "" {
		return models.Video{}, false
	}
	if i := s.indexOf(s.currentID); i >= 0 {
		return cloneVideo(s.videos[i]), true
	}
	return models.Video{}, false
}

// UpdateProgress records a playback report. currentTime is clamped to
// [0, duration] when the duration is known. Crossing the completion
// threshold marks the video watched; the watched flag is monotonic and
// a later low report never clears it. Unknown ids leave the collection
// untouched and report found=false.
func (s *Store) UpdateProgress(id string, currentTime, duration float64) (models.Video, bool) {
	s.mu.Lock()

	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Video{}, false
	}

	if duration < 0 {
		duration = 0
	}
	if currentTime < 0 {
		currentTime = 0
	}
	if duration > 0 && currentTime > duration {
		currentTime = duration
	}

	v := &s.videos[i]
	v.CurrentTime = &currentTime
	v.Duration = &duration
	// Zero or unknown duration never marks a video watched.
	if duration > 0 && currentTime/duration >= s.threshold {
		v.IsWatched = true
	}
	now := s.now()
	v.LastWatchedAt = &now

	out := cloneVideo(*v)
	s.persistLocked()
	s.mu.Unlock()

	s.publish(models.WSMessage{Type: "progress", Payload: models.ProgressEvent{
		VideoID:     id,
		CurrentTime: currentTime,
		Duration:    duration,
		IsWatched:   out.IsWatched,
	}})
	return out, true
}

// MarkWatched sets the watched flag regardless of progress.
func (s *Store) MarkWatched(id string) (models.Video, bool) {
	s.mu.Lock()

	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Video{}, false
	}

	v := &s.videos[i]
	v.IsWatched = true
	now := s.now()
	v.LastWatchedAt = &now

	out := cloneVideo(*v)
	s.persistLocked()
	s.mu.Unlock()

	s.publish(models.WSMessage{Type: "watched", Payload: models.ProgressEvent{
		VideoID:   id,
		IsWatched: true,
	}})
	return out, true
}

// AddComment appends a comment at the given playback position and
// returns it with its generated id.
func (s *Store) AddComment(videoID, text string, timestamp float64) (models.Comment, bool) {
	s.mu.Lock()

	i := s.indexOf(videoID)
	if i < 0 {
		s.mu.Unlock()
		return models.Comment{}, false
	}

	comment := models.Comment{
		ID:        uuid.NewString(),
		Text:      text,
		Timestamp: timestamp,
		CreatedAt: s.now(),
	}
	s.videos[i].Comments = append(s.videos[i].Comments, comment)

	s.persistLocked()
	s.mu.Unlock()

	s.publish(models.WSMessage{Type: "comment_added", Payload: models.CommentEvent{
		VideoID:   videoID,
		CommentID: comment.ID,
	}})
	return comment, true
}

// DeleteComment removes the comment with the given id. Unknown video
// or comment ids leave the collection untouched.
func (s *Store) DeleteComment(videoID, commentID string) bool {
	s.mu.Lock()

	i := s.indexOf(videoID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}

	comments := s.videos[i].Comments
	found := false
	for j, c := range comments {
		if c.ID == commentID {
			s.videos[i].Comments = append(comments[:j:j], comments[j+1:]...)
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return false
	}

	s.persistLocked()
	s.mu.Unlock()

	s.publish(models.WSMessage{Type: "comment_deleted", Payload: models.CommentEvent{
		VideoID:   videoID,
		CommentID: commentID,
	}})
	return true
}

// Close flushes the pending snapshot and stops the persist writer.
func (s *Store) Close() {
	s.writer.close()
}

// persistLocked snapshots the whole collection and hands it to the
// writer. Callers must hold s.mu.
func (s *Store) persistLocked() {
	snapshot, err := encodeVideos(s.videos)
	if err != nil {
		s.log.WithError(err).Error("failed to encode video snapshot")
		return
	}
	s.writer.enqueue(snapshot)
}

func (s *Store) indexOf(id string) int {
	for i := range s.videos {
		if s.videos[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) publish(msg models.WSMessage) {
	if s.notifier != nil {
		s.notifier.Publish(msg)
	}
}

func cloneVideo(v models.Video) models.Video {
	out := v
	if v.Duration != nil {
		d := *v.Duration
		out.Duration = &d
	}
	if v.CurrentTime != nil {
		ct := *v.CurrentTime
		out.CurrentTime = &ct
	}
	if v.LastWatchedAt != nil {
		ts := *v.LastWatchedAt
		out.LastWatchedAt = &ts
	}
	out.Comments = make([]models.Comment, len(v.Comments))
	copy(out.Comments, v.Comments)
	return out
}
