package genjob

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Kind tags the normalized media result union.
type Kind string

const (
	KindVideo  Kind = "video"
	KindImage  Kind = "image"
	KindAudio  Kind = "audio"
	KindTracks Kind = "tracks"
)

// Result is the normalized outcome of one generation job. URL is set for the
// single-artifact kinds; Tracks for KindTracks.
type Result struct {
	Kind   Kind
	URL    string
	Tracks []Track
}

// Normalizer maps a terminal provider envelope into a Result. Each feature
// supplies its own normalizer instead of probing optional fields at every
// call site.
type Normalizer func(*Envelope) (*Result, error)

// NormalizeVideo reads video_url, falling back to the first result entry.
func NormalizeVideo(env *Envelope) (*Result, error) {
	u := env.VideoURL
	if u == "" && len(env.Result) > 0 {
		u = env.Result[0]
	}
	if u == "" {
		return nil, fmt.Errorf("%w: no video url in response", ErrGenerationFailed)
	}
	return &Result{Kind: KindVideo, URL: u}, nil
}

// NormalizeImage reads image_url.
func NormalizeImage(env *Envelope) (*Result, error) {
	if env.ImageURL == "" {
		return nil, fmt.Errorf("%w: no image url in response", ErrGenerationFailed)
	}
	return &Result{Kind: KindImage, URL: env.ImageURL}, nil
}

// NormalizeAudio reads url, falling back to audio_url. Used by tts.
func NormalizeAudio(env *Envelope) (*Result, error) {
	u := env.URL
	if u == "" {
		u = env.AudioURL
	}
	if u == "" {
		return nil, fmt.Errorf("%w: no audio url in response", ErrGenerationFailed)
	}
	return &Result{Kind: KindAudio, URL: u}, nil
}

// NormalizeTracks decodes the records/data track list. Used by music.
func NormalizeTracks(env *Envelope) (*Result, error) {
	tracks, err := env.Tracks()
	if err != nil {
		return nil, &TransportError{Op: "normalize", Err: err}
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: no tracks were returned", ErrGenerationFailed)
	}
	return &Result{Kind: KindTracks, Tracks: tracks}, nil
}

// Job describes one submission: a POST with Payload, or a GET with Query
// when Query is non-nil.
type Job struct {
	Endpoint string
	Payload  any
	Query    url.Values
}

// Pipeline bundles the client and poll budget into the reusable
// submit-then-poll flow every generation tool shares.
type Pipeline struct {
	Client      *Client
	Interval    time.Duration
	MaxWait     time.Duration
	MaxAttempts int
}

// Run submits the job, polls until terminal when queued, and normalizes the
// terminal envelope.
func (p *Pipeline) Run(ctx context.Context, job Job, normalize Normalizer) (*Result, error) {
	var (
		sub *Submission
		err error
	)
	if job.Query != nil {
		sub, err = p.Client.SubmitQuery(ctx, job.Endpoint, job.Query)
	} else {
		sub, err = p.Client.Submit(ctx, job.Endpoint, job.Payload)
	}
	if err != nil {
		return nil, err
	}

	env := sub.Immediate
	if env == nil {
		poller := &Poller{Client: p.Client, Interval: p.Interval, MaxWait: p.MaxWait, MaxAttempts: p.MaxAttempts}
		env, err = poller.Wait(ctx, job.Endpoint, sub.RequestID)
		if err != nil {
			return nil, err
		}
	}
	return normalize(env)
}
