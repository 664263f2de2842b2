package store

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"vidshelf-backend/internal/models"
	"vidshelf-backend/internal/storage"
)

const testKey = "video_store"

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestStore(t *testing.T) (*Store, *storage.MemoryKV) {
	t.Helper()

	kv := storage.NewMemoryKV()
	s := New(kv, testKey, 0.9, testLogger())
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return s, kv
}

// persisted decodes whatever the store has written to the key after a
// flush. Close stops the writer, so call it once per store.
func persisted(t *testing.T, s *Store, kv *storage.MemoryKV) []models.Video {
	t.Helper()

	s.Close()
	raw, ok, err := kv.Get(context.Background(), testKey)
	if err != nil || !ok {
		t.Fatalf("expected persisted payload, ok=%v err=%v", ok, err)
	}
	videos, err := decodeVideos(raw)
	if err != nil {
		t.Fatalf("persisted payload is unreadable: %v", err)
	}
	return videos
}

func TestLoadSeedsEmptyStorage(t *testing.T) {
	s, kv := newTestStore(t)

	videos := s.Filtered(models.FilterAll)
	if len(videos) != 2 {
		t.Fatalf("expected 2 seeded videos, got %d", len(videos))
	}
	for i, id := range []string{"1", "2"} {
		if videos[i].ID != id {
			t.Errorf("expected video %d to have id %q, got %q", i, id, videos[i].ID)
		}
		if len(videos[i].Comments) != 0 {
			t.Errorf("expected video %q to have no comments", id)
		}
		if videos[i].IsWatched {
			t.Errorf("expected video %q to be unwatched", id)
		}
	}

	// The seed is persisted so the next load reads it back.
	stored := persisted(t, s, kv)
	if diff := cmp.Diff(videos, stored); diff != "" {
		t.Errorf("persisted seed mismatch (-memory +stored):\n%s", diff)
	}
}

func TestLoadReadsBackPersistedState(t *testing.T) {
	s, kv := newTestStore(t)
	s.UpdateProgress("1", 42, 120)
	s.AddComment("1", "first", 10)
	s.Close()

	reloaded := New(kv, testKey, 0.9, testLogger())
	if err := reloaded.Load(context.Background()); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	defer reloaded.Close()

	v, ok := reloaded.Video("1")
	if !ok {
		t.Fatal("expected video 1 after reload")
	}
	if v.CurrentTime == nil || *v.CurrentTime != 42 {
		t.Errorf("expected currentTime 42 after reload, got %v", v.CurrentTime)
	}
	if len(v.Comments) != 1 || v.Comments[0].Text != "first" {
		t.Errorf("expected one comment 'first' after reload, got %+v", v.Comments)
	}
}

func TestLoadCorruptPayloadSeedsAndPersists(t *testing.T) {
	kv := storage.NewMemoryKV()
	kv.Set(context.Background(), testKey, "{{{ not valid")

	s := New(kv, testKey, 0.9, testLogger())
	if err := s.Load(context.Background()); err == nil {
		t.Error("expected load to report the decode failure")
	}

	videos := s.Filtered(models.FilterAll)
	if len(videos) != 2 || videos[0].ID != "1" || videos[1].ID != "2" {
		t.Fatalf("expected seeded library after corrupt payload, got %+v", videos)
	}

	// The broken key is overwritten so subsequent loads are clean.
	stored := persisted(t, s, kv)
	if len(stored) != 2 {
		t.Errorf("expected re-seeded storage, got %d entries", len(stored))
	}
}

func TestLoadReadFailureSeeds(t *testing.T) {
	kv := storage.NewMemoryKV()
	kv.GetErr = errors.New("storage down")

	s := New(kv, testKey, 0.9, testLogger())
	defer s.Close()

	if err := s.Load(context.Background()); err == nil {
		t.Error("expected load to report the read failure")
	}
	if got := len(s.Filtered(models.FilterAll)); got != 2 {
		t.Errorf("expected seeded library after read failure, got %d videos", got)
	}
}

func TestUpdateProgressWatchedThreshold(t *testing.T) {
	tests := []struct {
		name        string
		currentTime float64
		duration    float64
		watched     bool
	}{
		{"below threshold", 50, 100, false},
		{"just below threshold", 89.9, 100, false},
		{"at threshold", 90, 100, true},
		{"above threshold", 95, 100, true},
		{"zero duration never watched", 95, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newTestStore(t)
			defer s.Close()

			v, ok := s.UpdateProgress("1", tc.currentTime, tc.duration)
			if !ok {
				t.Fatal("expected video 1 to be found")
			}
			if v.IsWatched != tc.watched {
				t.Errorf("expected isWatched=%v for %v/%v, got %v", tc.watched, tc.currentTime, tc.duration, v.IsWatched)
			}
			if v.LastWatchedAt == nil {
				t.Error("expected lastWatchedAt to be set")
			}
		})
	}
}

func TestUpdateProgressScenario(t *testing.T) {
	s, _ := newTestStore(t)
	defer s.Close()

	v, ok := s.UpdateProgress("1", 95, 100)
	if !ok {
		t.Fatal("expected video 1 to be found")
	}
	if *v.CurrentTime != 95 || *v.Duration != 100 || !v.IsWatched {
		t.Errorf("expected currentTime=95 duration=100 watched, got %+v", v)
	}
}

func TestWatchedIsMonotonic(t *testing.T) {
	s, _ := newTestStore(t)
	defer s.Close()

	if v, _ := s.UpdateProgress("1", 95, 100); !v.IsWatched {
		t.Fatal("expected video to be watched after 95/100")
	}

	// A later low report never clears the flag.
	v, _ := s.UpdateProgress("1", 5, 100)
	if !v.IsWatched {
		t.Error("expected watched flag to survive a low progress report")
	}
}

func TestUpdateProgressClamps(t *testing.T) {
	tests := []struct {
		name        string
		currentTime float64
		duration    float64
		wantTime    float64
	}{
		{"beyond duration clamps down", 150, 100, 100},
		{"negative clamps to zero", -5, 100, 0},
		{"in range passes through", 42, 100, 42},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newTestStore(t)
			defer s.Close()

			v, _ := s.UpdateProgress("1", tc.currentTime, tc.duration)
			if *v.CurrentTime != tc.wantTime {
				t.Errorf("expected currentTime %v, got %v", tc.wantTime, *v.CurrentTime)
			}
		})
	}
}

func TestMarkWatched(t *testing.T) {
	s, _ := newTestStore(t)
	defer s.Close()

	v, ok := s.MarkWatched("2")
	if !ok {
		t.Fatal("expected video 2 to be found")
	}
	if !v.IsWatched {
		t.Error("expected isWatched=true regardless of progress")
	}
	if v.LastWatchedAt == nil {
		t.Error("expected lastWatchedAt to be set")
	}
}

func TestFilteredPartition(t *testing.T) {
	s, _ := newTestStore(t)
	defer s.Close()
	s.MarkWatched("1")

	all := s.Filtered(models.FilterAll)
	watched := s.Filtered(models.FilterWatched)
	unwatched := s.Filtered(models.FilterUnwatched)

	if len(watched)+len(unwatched) != len(all) {
		t.Errorf("watched (%d) + unwatched (%d) != all (%d)", len(watched), len(unwatched), len(all))
	}

	seen := make(map[string]int)
	for _, v := range watched {
		if !v.IsWatched {
			t.Errorf("video %q in watched view is not watched", v.ID)
		}
		seen[v.ID]++
	}
	for _, v := range unwatched {
		if v.IsWatched {
			t.Errorf("video %q in unwatched view is watched", v.ID)
		}
		seen[v.ID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("video %q appears in %d views", id, n)
		}
	}
}

func TestUnknownIDIsNoOp(t *testing.T) {
	s, _ := newTestStore(t)
	defer s.Close()
	before := s.Filtered(models.FilterAll)

	if _, ok := s.UpdateProgress("missing", 50, 100); ok {
		t.Error("expected UpdateProgress on unknown id to report not found")
	}
	if _, ok := s.MarkWatched("missing"); ok {
		t.Error("expected MarkWatched on unknown id to report not found")
	}
	if _, ok := s.AddComment("missing", "text", 1); ok {
		t.Error("expected AddComment on unknown id to report not found")
	}
	if s.DeleteComment("missing", "c1") {
		t.Error("expected DeleteComment on unknown video to report not found")
	}
	if s.DeleteComment("1", "missing") {
		t.Error("expected DeleteComment on unknown comment to report not found")
	}

	after := s.Filtered(models.FilterAll)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("collection changed by no-op mutations (-before +after):\n%s", diff)
	}
}

func TestAddCommentAppends(t *testing.T) {
	s, _ := newTestStore(t)
	defer s.Close()

	first, ok := s.AddComment("1", "existing", 5)
	if !ok {
		t.Fatal("expected video 1 to be found")
	}
	second, ok := s.AddComment("1", "nice", 30)
	if !ok {
		t.Fatal("expected video 1 to be found")
	}
	if first.ID == second.ID {
		t.Error("expected distinct comment ids")
	}

	v, _ := s.Video("1")
	if len(v.Comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(v.Comments))
	}
	last := v.Comments[1]
	if last.ID != second.ID || last.Text != "nice" || last.Timestamp != 30 {
		t.Errorf("expected new comment appended last, got %+v", last)
	}
}

func TestAddThenDeleteCommentRestoresSequence(t *testing.T) {
	s, _ := newTestStore(t)
	defer s.Close()
	s.AddComment("1", "keep me", 10)

	before, _ := s.Video("1")

	added, ok := s.AddComment("1", "transient", 20)
	if !ok {
		t.Fatal("expected video 1 to be found")
	}
	if !s.DeleteComment("1", added.ID) {
		t.Fatal("expected delete of just-added comment to succeed")
	}

	after, _ := s.Video("1")
	if diff := cmp.Diff(before.Comments, after.Comments); diff != "" {
		t.Errorf("comment sequence not restored (-before +after):\n%s", diff)
	}
}

func TestMutationPersistsFullSnapshot(t *testing.T) {
	s, kv := newTestStore(t)

	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.UpdateProgress("1", 95, 100)
	s.AddComment("2", "note", 3)

	stored := persisted(t, s, kv)
	if diff := cmp.Diff(s.Filtered(models.FilterAll), stored); diff != "" {
		t.Errorf("persisted snapshot diverges from memory (-memory +stored):\n%s", diff)
	}
}

func TestWriteFailureKeepsMemoryState(t *testing.T) {
	s, kv := newTestStore(t)
	defer s.Close()
	kv.SetErr = errors.New("disk full")

	v, ok := s.UpdateProgress("1", 95, 100)
	if !ok {
		t.Fatal("expected mutation to apply despite write failure")
	}
	if !v.IsWatched {
		t.Error("expected in-memory state to reflect the mutation")
	}
}

func TestCurrentResolvesLiveRecord(t *testing.T) {
	s, _ := newTestStore(t)
	defer s.Close()

	if _, ok := s.SetCurrent("missing"); ok {
		t.Error("expected selecting an unknown id to fail")
	}
	if _, ok := s.SetCurrent("1"); !ok {
		t.Fatal("expected selecting video 1 to succeed")
	}

	// The selection tracks the canonical record, not a stale copy.
	s.UpdateProgress("1", 95, 100)
	current, ok := s.Current()
	if !ok {
		t.Fatal("expected a current video")
	}
	if current.CurrentTime == nil || *current.CurrentTime != 95 {
		t.Errorf("expected current selection to see latest progress, got %v", current.CurrentTime)
	}

	s.ClearCurrent()
	if _, ok := s.Current(); ok {
		t.Error("expected no current video after clearing")
	}
}

func TestWriterCoalescesToLatestSnapshot(t *testing.T) {
	kv := storage.NewMemoryKV()
	w := newWriter(kv, testKey, testLogger())

	for i := 0; i < 100; i++ {
		w.enqueue("stale")
	}
	w.enqueue("latest")
	w.close()

	val, ok, err := kv.Get(context.Background(), testKey)
	if err != nil || !ok {
		t.Fatalf("expected a persisted value, ok=%v err=%v", ok, err)
	}
	if val != "latest" {
		t.Errorf("expected last snapshot to win, got %q", val)
	}
}

type captureNotifier struct {
	messages []models.WSMessage
}

func (c *captureNotifier) Publish(msg models.WSMessage) {
	c.messages = append(c.messages, msg)
}

func TestMutationsPublishEvents(t *testing.T) {
	s, _ := newTestStore(t)
	defer s.Close()

	n := &captureNotifier{}
	s.SetNotifier(n)

	s.UpdateProgress("1", 95, 100)
	s.MarkWatched("2")
	added, _ := s.AddComment("1", "hi", 1)
	s.DeleteComment("1", added.ID)
	s.UpdateProgress("missing", 1, 2) // no event for a no-op

	want := []string{"progress", "watched", "comment_added", "comment_deleted"}
	if len(n.messages) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(n.messages))
	}
	for i, typ := range want {
		if n.messages[i].Type != typ {
			t.Errorf("event %d: expected type %q, got %q", i, typ, n.messages[i].Type)
		}
	}
}
