package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/erazemk/armoury/internal/model"
)

// Fixed capture parameters for the fingerprint reader.
const (
	CaptureQuality = 80
	CaptureTimeout = 5000 // milliseconds
)

// ErrNoMatch is returned when no officer's template matches the capture.
var ErrNoMatch = errors.New("no matching officer found")

// Capture is the reader's response to a capture request.
type Capture struct {
	ErrorCode        string `json:"ErrorCode"`
	ErrorDescription string `json:"ErrorDescription"`
	BitmapData       string `json:"BitmapData"`
	AnsiTemplate     string `json:"AnsiTemplate"`
	Quality          int    `json:"Quality"`
	Nfiq             int    `json:"Nfiq"`
}

// OK reports whether the capture succeeded.
func (c Capture) OK() bool { return c.ErrorCode == "0" }

// MatchResult is the reader's response to a match request.
type MatchResult struct {
	HTTPOK           bool   `json:"-"`
	ErrorCode        string `json:"ErrorCode"`
	ErrorDescription string `json:"ErrorDescription"`
	Status           bool   `json:"Status"`
}

// Matched reports whether the device confirmed the templates match.
func (m MatchResult) Matched() bool {
	return m.HTTPOK && m.ErrorCode == "0" && m.Status
}

// Device is a fingerprint reader.
type Device interface {
	Capture(ctx context.Context, quality, timeout int) (Capture, error)
	Match(ctx context.Context, quality, timeout int, probe, gallery string) (MatchResult, error)
}

// CaptureError reports a capture the device rejected.
type CaptureError struct {
	Code        string
	Description string
}

func (e *CaptureError) Error() string {
	desc := e.Description
	if desc == "" {
		desc = "Unknown error"
	}
	return "fingerprint capture failed: " + desc
}

// CaptureFinger runs one capture with the fixed quality and timeout.
func CaptureFinger(ctx context.Context, dev Device) (Capture, error) {
	c, err := dev.Capture(ctx, CaptureQuality, CaptureTimeout)
	if err != nil {
		return Capture{}, fmt.Errorf("capturing fingerprint: %w", err)
	}
	if !c.OK() {
		return Capture{}, &CaptureError{Code: c.ErrorCode, Description: c.ErrorDescription}
	}
	return c, nil
}

// MatchOfficer compares probe against each officer's stored template in
// order and returns the first officer the device confirms. Officers without
// a template are skipped; a failed match call is logged and the next officer
// is tried.
func MatchOfficer(ctx context.Context, dev Device, probe string, officers []model.Officer) (*model.Officer, error) {
	if probe == "" {
		return nil, errors.New("no fingerprint data captured")
	}
	for i := range officers {
		o := officers[i]
		if !o.HasFingerprint() {
			slog.Warn("officer has no fingerprint on file", "officer", o.ID)
			continue
		}
		res, err := dev.Match(ctx, CaptureQuality, CaptureTimeout, probe, o.FingerPrintData)
		if err != nil {
			slog.Error("fingerprint match failed", "officer", o.ID, "error", err)
			continue
		}
		if res.Matched() {
			return &o, nil
		}
	}
	return nil, ErrNoMatch
}
