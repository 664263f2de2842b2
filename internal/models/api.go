package models

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

// WSMessage is the envelope pushed to websocket clients on store changes.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ProgressEvent notifies clients that a video's playback position changed.
type ProgressEvent struct {
	VideoID     string  `json:"video_id"`
	CurrentTime float64 `json:"current_time"`
	Duration    float64 `json:"duration"`
	IsWatched   bool    `json:"is_watched"`
}

// CommentEvent notifies clients that a comment was added or removed.
type CommentEvent struct {
	VideoID   string `json:"video_id"`
	CommentID string `json:"comment_id"`
}
