package store

import (
	"encoding/json"
	"fmt"
	"time"

	"vidshelf-backend/internal/models"
)

// Persisted wire format. Kept separate from the API models so the
// stored payload stays stable even if response shapes move: timestamps
// are explicit RFC 3339 strings, optional fields are omitted entirely,
// and comments is always present (empty array, never null).

type commentRecord struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp"`
	CreatedAt string  `json:"createdAt"`
}

type videoRecord struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Thumbnail     string          `json:"thumbnail"`
	VideoURL      string          `json:"videoUrl"`
	Duration      *float64        `json:"duration,omitempty"`
	CurrentTime   *float64        `json:"currentTime,omitempty"`
	IsWatched     bool            `json:"isWatched,omitempty"`
	LastWatchedAt string          `json:"lastWatchedAt,omitempty"`
	Comments      []commentRecord `json:"comments"`
}

func encodeVideos(videos []models.Video) (string, error) {
	records := make([]videoRecord, 0, len(videos))
	for _, v := range videos {
		rec := videoRecord{
			ID:          v.ID,
			Title:       v.Title,
			Thumbnail:   v.Thumbnail,
			VideoURL:    v.VideoURL,
			Duration:    v.Duration,
			CurrentTime: v.CurrentTime,
			IsWatched:   v.IsWatched,
			Comments:    make([]commentRecord, 0, len(v.Comments)),
		}
		if v.LastWatchedAt != nil {
			rec.LastWatchedAt = v.LastWatchedAt.Format(time.RFC3339Nano)
		}
		for _, c := range v.Comments {
			rec.Comments = append(rec.Comments, commentRecord{
				ID:        c.ID,
				Text:      c.Text,
				Timestamp: c.Timestamp,
				CreatedAt: c.CreatedAt.Format(time.RFC3339Nano),
			})
		}
		records = append(records, rec)
	}

	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode videos: %w", err)
	}
	return string(data), nil
}

func decodeVideos(data string) ([]models.Video, error) {
	var records []videoRecord
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		return nil, fmt.Errorf("decode videos: %w", err)
	}

	videos := make([]models.Video, 0, len(records))
	for _, rec := range records {
		v := models.Video{
			ID:          rec.ID,
			Title:       rec.Title,
			Thumbnail:   rec.Thumbnail,
			VideoURL:    rec.VideoURL,
			Duration:    rec.Duration,
			CurrentTime: rec.CurrentTime,
			IsWatched:   rec.IsWatched,
			Comments:    make([]models.Comment, 0, len(rec.Comments)),
		}
		if rec.LastWatchedAt != "" {
			ts, err := time.Parse(time.RFC3339Nano, rec.LastWatchedAt)
			if err != nil {
				return nil, fmt.Errorf("decode video %q lastWatchedAt: %w", rec.ID, err)
			}
			v.LastWatchedAt = &ts
		}
		for _, c := range rec.Comments {
			created, err := time.Parse(time.RFC3339Nano, c.CreatedAt)
			if err != nil {
				return nil, fmt.Errorf("decode comment %q createdAt: %w", c.ID, err)
			}
			v.Comments = append(v.Comments, models.Comment{
				ID:        c.ID,
				Text:      c.Text,
				Timestamp: c.Timestamp,
				CreatedAt: created,
			})
		}
		videos = append(videos, v)
	}
	return videos, nil
}
