package scan

import (
	"fmt"
	"slices"
	"strings"

	"github.com/erazemk/armoury/internal/model"
)

// Outcome is the result of looking up a scanned identifier.
type Outcome string

// Scan outcomes.
const (
	Added        Outcome = "added"
	AlreadyAdded Outcome = "already_added"
	Unavailable  Outcome = "unavailable"
	NotFound     Outcome = "not_found"
)

// Result describes one scan.
type Result struct {
	Outcome Outcome      `json:"outcome"`
	Message string       `json:"message"`
	Asset   *model.Asset `json:"asset,omitempty"`
}

// OK reports whether the scan added an asset.
func (r Result) OK() bool { return r.Outcome == Added }

// Mode selects which assets a scan accepts.
type Mode string

// Scan modes.
const (
	ModeIssue  Mode = "issue"
	ModeReturn Mode = "return"
)

// eligible reports whether a can be picked in mode m.
func (m Mode) eligible(a model.Asset) bool {
	if m == ModeReturn {
		return strings.EqualFold(a.Status, model.AssetStatusIssued)
	}
	return a.Available()
}

func (m Mode) unavailableMessage(a model.Asset) string {
	if m == ModeReturn {
		return fmt.Sprintf("Selected %s is not issued", a.Category)
	}
	return fmt.Sprintf("Selected %s already issued", a.Category)
}

// Picked is the ordered list of assets scanned into an issue or return.
type Picked struct {
	mode   Mode
	assets []model.Asset
}

// NewPicked returns an empty list for mode.
func NewPicked(mode Mode) *Picked {
	return &Picked{mode: mode}
}

// Scan looks id up in coll and adds the asset when it is eligible and not
// yet picked. An empty id is NotFound.
func (p *Picked) Scan(coll []model.Asset, id string) Result {
	id = strings.TrimSpace(id)
	if id == "" {
		return Result{Outcome: NotFound, Message: "Weapon not found, scan again"}
	}

	i := slices.IndexFunc(coll, func(a model.Asset) bool { return a.ID == id })
	if i < 0 {
		return Result{Outcome: NotFound, Message: "Weapon not found, scan again"}
	}
	asset := coll[i]

	if !p.mode.eligible(asset) {
		return Result{Outcome: Unavailable, Message: p.mode.unavailableMessage(asset), Asset: &asset}
	}
	if p.Has(id) {
		return Result{Outcome: AlreadyAdded, Message: "Weapon already added", Asset: &asset}
	}

	p.assets = append(p.assets, asset)
	return Result{Outcome: Added, Message: "Weapon added successfully", Asset: &asset}
}

// Add picks an asset chosen by hand, such as an ammunition lot. It reports
// false when the asset is already picked.
func (p *Picked) Add(a model.Asset) bool {
	if p.Has(a.ID) {
		return false
	}
	p.assets = append(p.assets, a)
	return true
}

// Has reports whether id is picked.
func (p *Picked) Has(id string) bool {
	return slices.ContainsFunc(p.assets, func(a model.Asset) bool { return a.ID == id })
}

// Remove drops id from the list and reports whether it was present.
func (p *Picked) Remove(id string) bool {
	n := len(p.assets)
	p.assets = slices.DeleteFunc(p.assets, func(a model.Asset) bool { return a.ID == id })
	return len(p.assets) != n
}

// Clear empties the list.
func (p *Picked) Clear() {
	p.assets = nil
}

// Len returns the number of picked assets.
func (p *Picked) Len() int { return len(p.assets) }

// Assets returns a copy of the picked assets in scan order.
func (p *Picked) Assets() []model.Asset {
	return slices.Clone(p.assets)
}

// IDs returns the ids of picked assets in category category, or of all
// assets when category is empty.
func (p *Picked) IDs(category string) []string {
	var ids []string
	for _, a := range p.assets {
		if category == "" || strings.EqualFold(a.Category, category) {
			ids = append(ids, a.ID)
		}
	}
	return ids
}
