package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erazemk/armoury/internal/model"
)

func newTestClient(t *testing.T, h http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, opts...)
}

func TestListAssets(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/weapons", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"_id":"A1","type":"AK-47","category":"armoury","status":"available","createdOn":"2024-03-05T10:00:00Z"}]`))
	})
	c := newTestClient(t, mux)

	assets, err := c.ListAssets(context.Background())
	if err != nil {
		t.Fatalf("ListAssets: %v", err)
	}
	if len(assets) != 1 || assets[0].ID != "A1" || !assets[0].Available() {
		t.Errorf("unexpected assets %+v", assets)
	}
	if assets[0].CreatedOn.Year() != 2024 {
		t.Errorf("expected createdOn decoded, got %v", assets[0].CreatedOn)
	}
}

func TestGetAssetNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/weapons/single/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "A1" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"_id":"A1"}`))
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	a, err := c.GetAsset(ctx, "A1")
	if err != nil || a == nil || a.ID != "A1" {
		t.Fatalf("expected asset A1, got %v, %v", a, err)
	}

	a, err = c.GetAsset(ctx, "missing")
	if err != nil || a != nil {
		t.Errorf("expected (nil, nil), got %v, %v", a, err)
	}
}

func TestStatusError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/weapons/{id}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "asset is issued", http.StatusConflict)
	})
	c := newTestClient(t, mux)

	err := c.DeleteAsset(context.Background(), "A2")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != http.StatusConflict || se.Body != "asset is issued" {
		t.Errorf("unexpected status error %+v", se)
	}
}

func TestIssueSendsPayloadAndToken(t *testing.T) {
	var got model.IssueRequest
	var auth string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/transactions/issue", func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	})
	c := newTestClient(t, mux, WithTokenSource(func() (string, error) { return "tok", nil }))

	req := model.IssueRequest{OfficerID: "o1", WeaponIDs: []string{"A1"}, AmmunitionIDs: []string{}, MunitionIDs: []string{}}
	if err := c.Issue(context.Background(), req); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if got.OfficerID != "o1" || len(got.WeaponIDs) != 1 {
		t.Errorf("unexpected payload %+v", got)
	}
	if auth != "Bearer tok" {
		t.Errorf("expected bearer token, got %q", auth)
	}
}

func TestTokenSourceError(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler(), WithTokenSource(func() (string, error) {
		return "", errors.New("no secret")
	}))
	if _, err := c.ListOfficers(context.Background()); err == nil {
		t.Error("expected token error")
	}
}

func TestUpdateAsset(t *testing.T) {
	var body map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /api/weapons/update/{id}", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, mux)

	err := c.UpdateAsset(context.Background(), "A1", map[string]any{"repairHistory": []string{"barrel"}})
	if err != nil {
		t.Fatalf("UpdateAsset: %v", err)
	}
	if _, ok := body["repairHistory"]; !ok {
		t.Errorf("expected repairHistory in body, got %v", body)
	}
}
