package scan

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/erazemk/armoury/internal/model"
)

func testAssets() []model.Asset {
	return []model.Asset{
		{ID: "A1", Type: "AK-47", Category: model.CategoryArmoury, Status: "Available"},
		{ID: "A2", Type: "INSAS", Category: model.CategoryArmoury, Status: "issued"},
		{ID: "B1", Type: "9mm", Category: model.CategoryAmmunition, Status: "available"},
	}
}

func TestBufferKey(t *testing.T) {
	var b Buffer
	for _, k := range []string{" ", "A", "Shift", "1", " "} {
		if _, done := b.Key(k); done {
			t.Fatalf("unexpected completion on %q", k)
		}
	}
	id, done := b.Key(KeyEnter)
	if !done || id != "A1" {
		t.Errorf("expected A1, got %q (done=%v)", id, done)
	}
	if b.Pending() != "" {
		t.Errorf("expected buffer reset, got %q", b.Pending())
	}
}

func TestBufferFeed(t *testing.T) {
	var b Buffer
	ids := b.Feed("A1\nA2\r\nZ")
	if !slices.Equal(ids, []string{"A1", "A2", ""}) {
		t.Errorf("unexpected ids %q", ids)
	}
	if b.Pending() != "Z" {
		t.Errorf("expected pending Z, got %q", b.Pending())
	}
}

func TestPickedScan(t *testing.T) {
	p := NewPicked(ModeIssue)
	coll := testAssets()

	tests := []struct {
		id      string
		outcome Outcome
		message string
	}{
		{"A1", Added, "Weapon added successfully"},
		{"A1", AlreadyAdded, "Weapon already added"},
		{"A2", Unavailable, "Selected armoury already issued"},
		{"Z9", NotFound, "Weapon not found, scan again"},
		{"", NotFound, "Weapon not found, scan again"},
	}
	for _, tt := range tests {
		res := p.Scan(coll, tt.id)
		if res.Outcome != tt.outcome || res.Message != tt.message {
			t.Errorf("scan %q: expected %s %q, got %s %q", tt.id, tt.outcome, tt.message, res.Outcome, res.Message)
		}
	}
	if !slices.Equal(p.IDs(""), []string{"A1"}) {
		t.Errorf("expected only A1 picked, got %v", p.IDs(""))
	}
}

func TestSessionKeysBatchesDoNotInterleave(t *testing.T) {
	coll := testAssets()
	for i := 0; i < 50; i++ {
		s := newSession(ModeIssue, time.Now())

		var wg sync.WaitGroup
		for _, id := range []string{"A1", "B1"} {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				s.Keys([]string{id[:1], id[1:], KeyEnter}, coll)
			}(id)
		}
		wg.Wait()

		got := s.picked.IDs("")
		slices.Sort(got)
		if !slices.Equal(got, []string{"A1", "B1"}) {
			t.Fatalf("run %d: expected A1 and B1 picked, got %v (pending %q)", i, got, s.buf.Pending())
		}
	}
}

func TestSessionKeysInOrder(t *testing.T) {
	s := newSession(ModeIssue, time.Now())
	res := s.Keys([]string{"A", "1", KeyEnter, "Z", "9", KeyEnter, "A"}, testAssets())
	if len(res) != 2 || res[0].Outcome != Added || res[1].Outcome != NotFound {
		t.Fatalf("unexpected results %+v", res)
	}
	if s.buf.Pending() != "A" {
		t.Errorf("expected trailing key kept pending, got %q", s.buf.Pending())
	}
}

func TestPickedReturnMode(t *testing.T) {
	p := NewPicked(ModeReturn)
	coll := testAssets()
	if res := p.Scan(coll, "A2"); res.Outcome != Added {
		t.Errorf("expected issued asset accepted for return, got %s", res.Outcome)
	}
	if res := p.Scan(coll, "A1"); res.Outcome != Unavailable || res.Message != "Selected armoury is not issued" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestPickedRemoveAndClear(t *testing.T) {
	p := NewPicked(ModeIssue)
	coll := testAssets()
	p.Scan(coll, "A1")
	p.Scan(coll, "B1")
	if !p.Remove("A1") || p.Remove("A1") {
		t.Error("expected Remove to succeed once")
	}
	if !slices.Equal(p.IDs(model.CategoryAmmunition), []string{"B1"}) {
		t.Errorf("unexpected ids %v", p.IDs(model.CategoryAmmunition))
	}
	p.Clear()
	if p.Len() != 0 {
		t.Errorf("expected empty list, got %d", p.Len())
	}
}

type fakeDevice struct {
	capture  Capture
	capErr   error
	matches  map[string]MatchResult
	matchErr map[string]error
	calls    []string
}

func (d *fakeDevice) Capture(ctx context.Context, quality, timeout int) (Capture, error) {
	if quality != CaptureQuality || timeout != CaptureTimeout {
		return Capture{}, errors.New("unexpected capture parameters")
	}
	return d.capture, d.capErr
}

func (d *fakeDevice) Match(ctx context.Context, quality, timeout int, probe, gallery string) (MatchResult, error) {
	d.calls = append(d.calls, gallery)
	if err := d.matchErr[gallery]; err != nil {
		return MatchResult{}, err
	}
	return d.matches[gallery], nil
}

var matched = MatchResult{HTTPOK: true, ErrorCode: "0", Status: true}

func TestMatchOfficerFirstMatchWins(t *testing.T) {
	officers := []model.Officer{
		{ID: "0", Name: "No print"},
		{ID: "1", Name: "One", FingerPrintData: "T1"},
		{ID: "2", Name: "Two", FingerPrintData: "T2"},
	}
	dev := &fakeDevice{matches: map[string]MatchResult{"T1": matched, "T2": matched}}

	o, err := MatchOfficer(context.Background(), dev, "probe", officers)
	if err != nil {
		t.Fatalf("MatchOfficer: %v", err)
	}
	if o.ID != "1" {
		t.Errorf("expected officer 1, got %s", o.ID)
	}
	if !slices.Equal(dev.calls, []string{"T1"}) {
		t.Errorf("expected a single match call, got %v", dev.calls)
	}
}

func TestMatchOfficerContinuesAfterError(t *testing.T) {
	officers := []model.Officer{
		{ID: "1", FingerPrintData: "T1"},
		{ID: "2", FingerPrintData: "T2"},
	}
	dev := &fakeDevice{
		matches:  map[string]MatchResult{"T2": matched},
		matchErr: map[string]error{"T1": errors.New("timeout")},
	}
	o, err := MatchOfficer(context.Background(), dev, "probe", officers)
	if err != nil || o.ID != "2" {
		t.Errorf("expected officer 2, got %v, %v", o, err)
	}
}

func TestMatchOfficerRequiresAllConditions(t *testing.T) {
	officers := []model.Officer{{ID: "1", FingerPrintData: "T1"}}
	for _, res := range []MatchResult{
		{HTTPOK: false, ErrorCode: "0", Status: true},
		{HTTPOK: true, ErrorCode: "-1", Status: true},
		{HTTPOK: true, ErrorCode: "0", Status: false},
	} {
		dev := &fakeDevice{matches: map[string]MatchResult{"T1": res}}
		if _, err := MatchOfficer(context.Background(), dev, "probe", officers); !errors.Is(err, ErrNoMatch) {
			t.Errorf("%+v: expected ErrNoMatch, got %v", res, err)
		}
	}
}

func TestSessionAuthenticate(t *testing.T) {
	officers := []model.Officer{{ID: "1", Name: "One", FingerPrintData: "T1"}}
	dev := &fakeDevice{
		capture: Capture{ErrorCode: "0", AnsiTemplate: "probe", BitmapData: "bmp"},
		matches: map[string]MatchResult{"T1": matched},
	}
	s := NewRegistry(time.Minute).Open(ModeIssue)

	o, err := s.Authenticate(context.Background(), dev, officers)
	if err != nil || o.ID != "1" {
		t.Fatalf("expected officer 1, got %v, %v", o, err)
	}
	if st := s.State(); st.Bitmap != "bmp" || st.Officer == nil {
		t.Errorf("unexpected state %+v", st)
	}

	dev.matches = nil
	if _, err := s.Authenticate(context.Background(), dev, officers); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
	if st := s.State(); st.Bitmap != "" || st.Officer != nil {
		t.Errorf("expected auth state reset, got %+v", st)
	}
}

func TestSessionCaptureFailureResets(t *testing.T) {
	dev := &fakeDevice{capture: Capture{ErrorCode: "-1307", ErrorDescription: "Device not connected"}}
	s := NewRegistry(time.Minute).Open(ModeIssue)

	_, err := s.Authenticate(context.Background(), dev, nil)
	var capErr *CaptureError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected CaptureError, got %v", err)
	}
	if capErr.Error() != "fingerprint capture failed: Device not connected" {
		t.Errorf("unexpected message %q", capErr.Error())
	}
}

func TestSessionIssueRequest(t *testing.T) {
	s := NewRegistry(time.Minute).Open(ModeIssue)
	coll := testAssets()

	if _, err := s.IssueRequest(); !errors.Is(err, ErrNoOfficer) {
		t.Errorf("expected ErrNoOfficer, got %v", err)
	}
	s.officer = &model.Officer{ID: "o1"}
	if _, err := s.IssueRequest(); !errors.Is(err, ErrNoAssets) {
		t.Errorf("expected ErrNoAssets, got %v", err)
	}

	s.Feed("A1\nB1\n", coll)
	req, err := s.IssueRequest()
	if err != nil {
		t.Fatalf("IssueRequest: %v", err)
	}
	if req.OfficerID != "o1" || !slices.Equal(req.WeaponIDs, []string{"A1"}) || !slices.Equal(req.AmmunitionIDs, []string{"B1"}) {
		t.Errorf("unexpected request %+v", req)
	}
	if req.MunitionIDs == nil {
		t.Error("expected empty, non-nil munition ids")
	}
}

func TestSessionReturnRequest(t *testing.T) {
	s := NewRegistry(time.Minute).Open(ModeReturn)
	s.officer = &model.Officer{ID: "o1"}
	s.Feed("A2\n", testAssets())

	txs := []model.Transaction{
		{ID: "t1", Officer: model.Officer{ID: "o1"}, Weapons: []model.Asset{{ID: "A2"}}},
		{ID: "t2", Officer: model.Officer{ID: "o1"}, Weapons: []model.Asset{{ID: "A2"}}, Returned: true},
		{ID: "t3", Officer: model.Officer{ID: "o2"}, Weapons: []model.Asset{{ID: "A2"}}},
	}
	req, err := s.ReturnRequest(txs)
	if err != nil {
		t.Fatalf("ReturnRequest: %v", err)
	}
	if !slices.Equal(req.TransactionIDs, []string{"t1"}) || !slices.Equal(req.WeaponIDs, []string{"A2"}) {
		t.Errorf("unexpected request %+v", req)
	}
}

func TestRegistryLifecycle(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(10 * time.Minute)
	r.now = func() time.Time { return now }

	a := r.Open(ModeIssue)
	b := r.Open(ModeReturn)

	now = now.Add(8 * time.Minute)
	if _, err := r.Get(a.ID); err != nil {
		t.Fatalf("Get: %v", err)
	}

	now = now.Add(5 * time.Minute)
	if n := r.Sweep(); n != 1 {
		t.Errorf("expected 1 expired session, got %d", n)
	}
	if _, err := r.Get(b.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected idle session expired, got %v", err)
	}

	if err := r.Close(a.ID); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := r.Close(a.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound on second close, got %v", err)
	}
}

func TestHTTPDevice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["Quality"] != float64(CaptureQuality) || body["TimeOut"] != float64(CaptureTimeout) {
			http.Error(w, "bad parameters", http.StatusBadRequest)
			return
		}
		switch r.URL.Path {
		case "/mfs100/capture":
			json.NewEncoder(w).Encode(Capture{ErrorCode: "0", AnsiTemplate: "probe", BitmapData: "bmp"})
		case "/mfs100/match":
			if body["BioType"] != "ANSI" {
				http.Error(w, "bad biotype", http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"ErrorCode": "0",
				"Status":    body["GalleryTemplate"] == body["ProbTemplate"],
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dev := NewHTTPDevice(srv.URL + "/mfs100/")
	ctx := context.Background()

	c, err := CaptureFinger(ctx, dev)
	if err != nil {
		t.Fatalf("CaptureFinger: %v", err)
	}
	if c.AnsiTemplate != "probe" {
		t.Errorf("unexpected template %q", c.AnsiTemplate)
	}

	m, err := dev.Match(ctx, CaptureQuality, CaptureTimeout, "probe", "probe")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if !m.Matched() {
		t.Errorf("expected match, got %+v", m)
	}

	m, _ = dev.Match(ctx, CaptureQuality, CaptureTimeout, "probe", "other")
	if m.Matched() {
		t.Error("expected no match for different templates")
	}
}
