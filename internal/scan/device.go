package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPDevice talks to the MFS100 client service running next to the reader.
type HTTPDevice struct {
	base   string
	client *http.Client
}

// NewHTTPDevice returns a device rooted at base, e.g.
// "http://localhost:8004/mfs100". The client timeout covers the capture
// timeout plus transport overhead.
func NewHTTPDevice(base string) *HTTPDevice {
	return &HTTPDevice{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: CaptureTimeout*time.Millisecond + 5*time.Second},
	}
}

type captureRequest struct {
	Quality int `json:"Quality"`
	TimeOut int `json:"TimeOut"`
}

type matchRequest struct {
	Quality         int    `json:"Quality"`
	TimeOut         int    `json:"TimeOut"`
	ProbTemplate    string `json:"ProbTemplate"`
	GalleryTemplate string `json:"GalleryTemplate"`
	BioType         string `json:"BioType"`
}

// Capture asks the reader for one fingerprint.
func (d *HTTPDevice) Capture(ctx context.Context, quality, timeout int) (Capture, error) {
	var c Capture
	status, err := d.post(ctx, "/capture", captureRequest{Quality: quality, TimeOut: timeout}, &c)
	if err != nil {
		return Capture{}, err
	}
	if status < 200 || status >= 300 {
		return Capture{}, fmt.Errorf("device returned status %d", status)
	}
	return c, nil
}

// Match asks the reader to compare two ANSI templates.
func (d *HTTPDevice) Match(ctx context.Context, quality, timeout int, probe, gallery string) (MatchResult, error) {
	var m MatchResult
	req := matchRequest{
		Quality:         quality,
		TimeOut:         timeout,
		ProbTemplate:    probe,
		GalleryTemplate: gallery,
		BioType:         "ANSI",
	}
	status, err := d.post(ctx, "/match", req, &m)
	if err != nil {
		return MatchResult{}, err
	}
	m.HTTPOK = status >= 200 && status < 300
	return m, nil
}

func (d *HTTPDevice) post(ctx context.Context, path string, body, out any) (int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("encoding device request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.base+path, bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("creating device request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("calling device %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decoding device response: %w", err)
	}
	return resp.StatusCode, nil
}
