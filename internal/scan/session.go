package scan

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/armoury/internal/model"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("scan session not found")

// Validation errors for submitting a session.
var (
	ErrNoOfficer = errors.New("authenticate an officer first")
	ErrNoAssets  = errors.New("select at least one item")
)

// Session is the state of one open scan page: the barcode buffer, the
// picked assets and the authenticated officer.
type Session struct {
	ID   string
	Mode Mode

	mu       sync.Mutex
	buf      Buffer
	picked   *Picked
	officer  *model.Officer
	capture  *Capture
	lastSeen time.Time
}

// State is a snapshot of a session for rendering.
type State struct {
	ID      string         `json:"id"`
	Mode    Mode           `json:"mode"`
	Pending string         `json:"pending,omitempty"`
	Assets  []model.Asset  `json:"assets"`
	Officer *model.Officer `json:"officer,omitempty"`
	Bitmap  string         `json:"bitmap,omitempty"`
}

func newSession(mode Mode, now time.Time) *Session {
	return &Session{
		ID:       uuid.NewString(),
		Mode:     mode,
		picked:   NewPicked(mode),
		lastSeen: now,
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Keys feeds a batch of key events in order and returns a scan result
// against coll for every identifier they complete. The batch is applied
// under one lock, so concurrent batches never interleave their keys.
func (s *Session) Keys(keys []string, coll []model.Asset) []Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	var results []Result
	for _, k := range keys {
		if id, done := s.buf.Key(k); done {
			results = append(results, s.picked.Scan(coll, id))
		}
	}
	return results
}

// Feed feeds raw reader text and returns a result per completed identifier.
func (s *Session) Feed(text string, coll []model.Asset) []Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	var results []Result
	for _, id := range s.buf.Feed(text) {
		results = append(results, s.picked.Scan(coll, id))
	}
	return results
}

// Add picks an asset selected by hand.
func (s *Session) Add(a model.Asset) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.picked.Add(a)
}

// Remove drops a picked asset.
func (s *Session) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.picked.Remove(id)
}

// Clear drops every picked asset and the authenticated officer.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.picked.Clear()
	s.buf.Reset()
	s.officer = nil
	s.capture = nil
}

// Authenticate captures a fingerprint and matches it against officers. On
// any failure the captured image, template and officer are reset.
func (s *Session) Authenticate(ctx context.Context, dev Device, officers []model.Officer) (*model.Officer, error) {
	c, err := CaptureFinger(ctx, dev)
	if err != nil {
		s.resetAuth()
		return nil, err
	}

	s.mu.Lock()
	s.capture = &c
	s.mu.Unlock()

	officer, err := MatchOfficer(ctx, dev, c.AnsiTemplate, officers)
	if err != nil {
		s.resetAuth()
		return nil, err
	}

	s.mu.Lock()
	s.officer = officer
	s.mu.Unlock()
	return officer, nil
}

// CaptureOnly stores a capture without matching, for officer registration.
func (s *Session) CaptureOnly(ctx context.Context, dev Device) (Capture, error) {
	c, err := CaptureFinger(ctx, dev)
	if err != nil {
		s.resetAuth()
		return Capture{}, err
	}
	s.mu.Lock()
	s.capture = &c
	s.mu.Unlock()
	return c, nil
}

func (s *Session) resetAuth() {
	s.mu.Lock()
	s.officer = nil
	s.capture = nil
	s.mu.Unlock()
}

// Officer returns the authenticated officer, or nil.
func (s *Session) Officer() *model.Officer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.officer
}

// Template returns the last captured ANSI template.
func (s *Session) Template() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.capture == nil {
		return ""
	}
	return s.capture.AnsiTemplate
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		ID:      s.ID,
		Mode:    s.Mode,
		Pending: s.buf.Pending(),
		Assets:  s.picked.Assets(),
		Officer: s.officer,
	}
	if s.capture != nil {
		st.Bitmap = s.capture.BitmapData
	}
	return st
}

// IssueRequest builds the issue payload. It requires an authenticated
// officer and at least one picked asset.
func (s *Session) IssueRequest() (model.IssueRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.officer == nil {
		return model.IssueRequest{}, ErrNoOfficer
	}
	req := model.IssueRequest{
		OfficerID:     s.officer.ID,
		WeaponIDs:     nonNil(s.picked.IDs(model.CategoryArmoury)),
		AmmunitionIDs: nonNil(s.picked.IDs(model.CategoryAmmunition)),
		MunitionIDs:   nonNil(s.picked.IDs(model.CategoryMunition)),
	}
	if req.Empty() {
		return model.IssueRequest{}, ErrNoAssets
	}
	return req, nil
}

// ReturnRequest builds the return payload. Transaction ids are the open
// transactions of the officer holding any picked asset.
func (s *Session) ReturnRequest(txs []model.Transaction) (model.ReturnRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.officer == nil {
		return model.ReturnRequest{}, ErrNoOfficer
	}
	if s.picked.Len() == 0 {
		return model.ReturnRequest{}, ErrNoAssets
	}

	ids := s.picked.IDs("")
	req := model.ReturnRequest{OfficerID: s.officer.ID, WeaponIDs: ids, TransactionIDs: []string{}}
	for _, tx := range txs {
		if tx.Returned || tx.Officer.ID != s.officer.ID {
			continue
		}
		if slices.ContainsFunc(tx.Weapons, func(a model.Asset) bool { return slices.Contains(ids, a.ID) }) {
			req.TransactionIDs = append(req.TransactionIDs, tx.ID)
		}
	}
	return req, nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// Registry owns open scan sessions and expires idle ones.
type Registry struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry returns a registry expiring sessions idle for longer than ttl.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{ttl: ttl, now: time.Now, sessions: make(map[string]*Session)}
}

// Open starts a session in mode.
func (r *Registry) Open(mode Mode) *Session {
	s := newSession(mode, r.now())
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the session with id and marks it in use.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch(r.now())
	return s, nil
}

// Close releases the session with id.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than the ttl and returns how many
// were closed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Sweep(); n > 0 {
				slog.Info("expired idle scan sessions", "count", n)
			}
		}
	}
}
