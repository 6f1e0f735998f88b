package genjob

import (
	"encoding/json"
	"strings"
)

// Job statuses reported by the generation providers.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

// Envelope is the superset of the JSON shapes returned by the generation
// providers. Each provider populates a different subset: video responses
// carry video_url or a result array, image responses carry image_url, music
// responses carry records or data track lists, and tts responses carry a
// plain url. Submission acknowledgements carry success/ok flags plus a
// request id under one of several names.
type Envelope struct {
	Success   bool   `json:"success"`
	OK        bool   `json:"ok"`
	Status    string `json:"status"`
	RequestID string `json:"requestId"`
	ID        string `json:"id"`
	JobID     string `json:"jobId"`

	URL      string   `json:"url"`
	VideoURL string   `json:"video_url"`
	ImageURL string   `json:"image_url"`
	AudioURL string   `json:"audio_url"`
	Result   []string `json:"result"`

	Records json.RawMessage `json:"records"`
	Data    json.RawMessage `json:"data"`

	Position int    `json:"position"`
	Message  string `json:"message"`
	Error    string `json:"error"`
}

// Track is one generated music track as returned in a records/data list.
type Track struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Prompt     string  `json:"prompt"`
	Tags       string  `json:"tags"`
	Model      string  `json:"model"`
	AudioURL   string  `json:"audio_url"`
	ImageURL   string  `json:"image_url"`
	Duration   float64 `json:"duration"`
	CreateTime int64   `json:"create_time"`
}

// RequestRef returns the provider-assigned job token, trying the known field
// names in order.
func (e *Envelope) RequestRef() string {
	for _, ref := range []string{e.RequestID, e.ID, e.JobID} {
		if ref = strings.TrimSpace(ref); ref != "" {
			return ref
		}
	}
	return ""
}

// Accepted reports whether the provider acknowledged the submission.
func (e *Envelope) Accepted() bool {
	return e.Success || e.OK || e.Status == StatusProcessing || e.Status == StatusQueued
}

// Done reports a terminal success status.
func (e *Envelope) Done() bool {
	return e.Status == StatusDone
}

// Failed reports a terminal failure status.
func (e *Envelope) Failed() bool {
	return e.Status == StatusFailed
}

// MediaURL returns the first populated direct media field, or empty when the
// envelope carries none.
func (e *Envelope) MediaURL() string {
	for _, u := range []string{e.VideoURL, e.ImageURL, e.AudioURL, e.URL} {
		if u = strings.TrimSpace(u); u != "" {
			return u
		}
	}
	if len(e.Result) > 0 {
		return strings.TrimSpace(e.Result[0])
	}
	return ""
}

// Immediate reports whether the envelope already carries a finished result,
// either via a terminal done status or a direct media field without an error
// marker.
func (e *Envelope) Immediate() bool {
	if e.Done() {
		return true
	}
	return e.Error == "" && !e.Failed() && (e.MediaURL() != "" || e.hasTracks())
}

func (e *Envelope) hasTracks() bool {
	tracks, err := e.Tracks()
	return err == nil && len(tracks) > 0
}

// Tracks decodes the records list, falling back to data when records is
// absent. A nil slice with nil error means the envelope has no track list.
func (e *Envelope) Tracks() ([]Track, error) {
	for _, raw := range []json.RawMessage{e.Records, e.Data} {
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		// Some providers put a non-list object under data; skip those.
		if raw[0] != '[' {
			continue
		}
		var tracks []Track
		if err := json.Unmarshal(raw, &tracks); err != nil {
			return nil, err
		}
		if len(tracks) > 0 {
			return tracks, nil
		}
	}
	return nil, nil
}

// ErrorText returns the most descriptive error message in the envelope.
func (e *Envelope) ErrorText() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}
