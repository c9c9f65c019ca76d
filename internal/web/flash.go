package web

import (
	"net/http"
	"net/url"
	"strings"
)

const flashCookie = "flash"

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash is a one-shot toast shown on the next rendered page.
type Flash struct {
	Kind    string
	Message string
}

func setFlash(w http.ResponseWriter, kind, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(kind + "|" + message),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns and clears the pending flash, or nil.
func popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})

	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		return nil
	}
	kind, msg, ok := strings.Cut(raw, "|")
	if !ok || msg == "" {
		return nil
	}
	return &Flash{Kind: kind, Message: msg}
}

// redirectFlash sets a flash and redirects to target.
func redirectFlash(w http.ResponseWriter, r *http.Request, target, kind, message string) {
	setFlash(w, kind, message)
	http.Redirect(w, r, target, http.StatusSeeOther)
}
