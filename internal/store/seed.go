package store

import "vidshelf-backend/internal/models"

// seedVideos returns the demo library written to storage on first run
// or after an unreadable payload: two videos, no progress, no comments.
func seedVideos() []models.Video {
	return []models.Video{
		{
			ID:        "1",
			Title:     "React Native Basics - Learn how to build amazing mobile apps",
			Thumbnail: "https://i.ytimg.com/vi/VozPNrt-LfE/maxresdefault.jpg",
			VideoURL:  "https://www.w3schools.com/html/mov_bbb.mp4",
			Comments:  []models.Comment{},
		},
		{
			ID:        "2",
			Title:     "Advanced Navigation - Master React Navigation in 2024",
			Thumbnail: "https://i.ytimg.com/vi/9XZEdCHZv4I/maxresdefault.jpg",
			VideoURL:  "https://www.w3schools.com/html/movie.mp4",
			Comments:  []models.Comment{},
		},
	}
}
