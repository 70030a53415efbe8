package adobe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/mdextract"
	"github.com/tidwall/gjson"
)

// Backoff is a bounded exponential delay: Initial, doubled after every
// poll, never above Max.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration
}

// DefaultBackoff starts at one second and caps at ten.
func DefaultBackoff() Backoff {
	return Backoff{Initial: time.Second, Max: 10 * time.Second}
}

// next returns the delay that follows d.
func (b Backoff) next(d time.Duration) time.Duration {
	limit := b.Max
	if limit <= 0 {
		limit = DefaultBackoff().Max
	}
	return min(d*2, limit)
}

func (b Backoff) first() time.Duration {
	if b.Initial <= 0 {
		return DefaultBackoff().Initial
	}
	if b.Max > 0 && b.Initial > b.Max {
		return b.Max
	}
	return b.Initial
}

// JobState is the lifecycle of a submitted extract job.
type JobState int

// JobState constants.
const (
	JobSubmitted JobState = iota
	JobPolling
	JobComplete
	JobFailed
)

func (s JobState) String() string {
	switch s {
	case JobSubmitted:
		return "submitted"
	case JobPolling:
		return "polling"
	case JobComplete:
		return "complete"
	case JobFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// job tracks one extract job through its states.
type job struct {
	state       JobState
	location    string
	delay       time.Duration
	downloadURI string
	err         error
}

// poll drives the job from Submitted to Complete or Failed and returns the
// result download URI. Transient status failures consume the poll budget;
// a failure reported by the service ends polling at once.
func (c *Client) poll(ctx context.Context, token, location string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.pollTimeout())
	defer cancel()

	j := &job{state: JobSubmitted, location: location}
	for {
		switch j.state {
		case JobSubmitted:
			j.delay = c.Backoff.first()
			j.state = JobPolling

		case JobPolling:
			if err := wait(ctx, j.delay); err != nil {
				return "", pollTimeoutError(ctx, err)
			}
			c.step(ctx, token, j)
			j.delay = c.Backoff.next(j.delay)

		case JobComplete:
			return j.downloadURI, nil

		case JobFailed:
			return "", j.err
		}
	}
}

// step performs one status request and advances the job.
func (c *Client) step(ctx context.Context, token string, j *job) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.location, nil)
	if err != nil {
		j.state, j.err = JobFailed, mdextract.Wrap(mdextract.EINTERNAL, err)
		return
	}
	c.authorize(req, token)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		if ctx.Err() == nil {
			c.logger().Warn("job status poll failed", "location", j.location, "err", err)
		}
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	switch {
	case err != nil || resp.StatusCode >= 500:
		c.logger().Warn("job status poll failed", "location", j.location, "status", resp.StatusCode, "err", err)
		return
	case resp.StatusCode != http.StatusOK:
		j.state, j.err = JobFailed, backendError(resp.StatusCode, body)
		return
	}

	switch status := gjson.GetBytes(body, "status").String(); status {
	case "done":
		uri := gjson.GetBytes(body, "resource.downloadUri").String()
		if uri == "" {
			uri = gjson.GetBytes(body, "content.downloadUri").String()
		}
		if uri == "" {
			j.state, j.err = JobFailed, mdextract.Errorf(mdextract.EBACKEND, "PDF Services job finished without a result")
			return
		}
		j.state, j.downloadURI = JobComplete, uri
	case "failed":
		msg := gjson.GetBytes(body, "error.message").String()
		if msg == "" {
			msg = "extraction job failed"
		}
		j.state, j.err = JobFailed, mdextract.Errorf(mdextract.EBACKEND, "PDF Services error: %s", msg)
	default:
		c.logger().Debug("job in progress", "location", j.location, "status", status)
	}
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func pollTimeoutError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) && errors.Is(context.Cause(ctx), context.DeadlineExceeded) {
		return mdextract.Errorf(mdextract.EBACKEND, "PDF Services job did not finish in time")
	}
	return err
}
