package api

import (
	"net/http"
	"strconv"

	"github.com/erazemk/armoury/internal/listview"
	"github.com/erazemk/armoury/internal/workspace"
)

// ViewsHandler serves list data as JSON. Requests are stateless: query,
// filter, order and page come from the URL and never touch the caller's
// workspace state.
type ViewsHandler struct {
	Workspaces *workspace.Registry
}

type viewResponse[T any] struct {
	Records []T `json:"records"`
	Page    int `json:"page"`
	Pages   int `json:"pages"`
	Total   int `json:"total"`
}

// Get handles GET /api/views/{view}. Supported parameters are q (search),
// filter (AIP-160 expression), order_by (AIP-132), page and page_size.
func (h *ViewsHandler) Get(w http.ResponseWriter, r *http.Request) {
	c := h.Workspaces.Collections()
	switch r.PathValue("view") {
	case "armoury", "assets":
		serveView(w, r, workspace.AssetSchema, c.Assets)
	case "ammunition", "items":
		serveView(w, r, workspace.ItemSchema, c.Items)
	case "transactions":
		serveView(w, r, workspace.TransactionSchema, c.Transactions)
	case "officers":
		serveView(w, r, workspace.OfficerSchema, c.Officers)
	default:
		jsonError(w, http.StatusNotFound, "unknown view")
	}
}

func serveView[T any](w http.ResponseWriter, r *http.Request, schema *listview.Schema[T], coll *listview.Collection[T]) {
	q := r.URL.Query()

	x, err := listview.ParseExpr(schema, q.Get("filter"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	sort, err := listview.ParseOrderBy(q.Get("order_by"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid order_by")
		return
	}
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))

	recs, _, err := coll.Get(r.Context())
	if err != nil && recs == nil {
		jsonError(w, http.StatusBadGateway, "failed to load records")
		return
	}

	recs = listview.Apply(schema, recs, q.Get("q"), nil)
	recs, err = listview.ApplyExpr(schema, x, recs)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	listview.SortRecords(schema, recs, sort)

	p := listview.Paginate(recs, page, size)
	items := p.Items
	if items == nil {
		items = []T{}
	}
	jsonResponse(w, http.StatusOK, viewResponse[T]{Records: items, Page: p.Number, Pages: p.Pages, Total: p.Total})
}
