package web

import (
	"net/http"

	"github.com/erazemk/armoury/internal/export"
	"github.com/erazemk/armoury/internal/model"
	"github.com/erazemk/armoury/internal/store"
)

// AmmunitionPage handles GET /ammunition.
func (s *Server) AmmunitionPage(w http.ResponseWriter, r *http.Request) {
	pd := s.page(w, r, "Ammunition", "ammunition")
	list, flash := loadList(r, "/ammunition", s.workspace(r).Ammunition)

	s.Templates.Render(w, "ammunition.html", &struct {
		PageData
		List     *List[model.Item]
		Statuses []string
	}{
		PageData: withFlash(pd, flash),
		List:     list,
		Statuses: model.Statuses,
	})
}

// AmmunitionFiltersSubmit handles POST /ammunition/filters.
func (s *Server) AmmunitionFiltersSubmit(w http.ResponseWriter, r *http.Request) {
	filtersSubmit(s, w, r, s.workspace(r).Ammunition, store.ViewAmmunition, "/ammunition")
}

// AmmunitionSelectSubmit handles POST /ammunition/select.
func (s *Server) AmmunitionSelectSubmit(w http.ResponseWriter, r *http.Request) {
	selectSubmit(w, r, s.workspace(r).Ammunition, "/ammunition")
}

// AmmunitionActionSubmit handles POST /ammunition/actions.
func (s *Server) AmmunitionActionSubmit(w http.ResponseWriter, r *http.Request) {
	v := s.workspace(r).Ammunition
	action := r.FormValue("action")
	if action == "delete" {
		deleteSelected(s, w, r, v, s.Backend.DeleteItem, "item", "/ammunition")
		return
	}

	selected := v.Selected()
	if len(selected) == 0 {
		redirectFlash(w, r, "/ammunition", FlashError, "Please select at least one item")
		return
	}
	s.sendTable(w, r, action, export.ItemTable("Ammunition", selected))
}
