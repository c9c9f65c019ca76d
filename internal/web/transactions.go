package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/erazemk/armoury/internal/export"
	"github.com/erazemk/armoury/internal/model"
	"github.com/erazemk/armoury/internal/store"
)

// TransactionsPage handles GET /transactions.
func (s *Server) TransactionsPage(w http.ResponseWriter, r *http.Request) {
	pd := s.page(w, r, "Transactions", "transactions")
	list, flash := loadList(r, "/transactions", s.workspace(r).Transactions)

	s.Templates.Render(w, "transactions.html", &struct {
		PageData
		List *List[model.Transaction]
	}{
		PageData: withFlash(pd, flash),
		List:     list,
	})
}

// TransactionsFiltersSubmit handles POST /transactions/filters.
func (s *Server) TransactionsFiltersSubmit(w http.ResponseWriter, r *http.Request) {
	filtersSubmit(s, w, r, s.workspace(r).Transactions, store.ViewTransactions, "/transactions")
}

// TransactionsSelectSubmit handles POST /transactions/select.
func (s *Server) TransactionsSelectSubmit(w http.ResponseWriter, r *http.Request) {
	selectSubmit(w, r, s.workspace(r).Transactions, "/transactions")
}

// TransactionsActionSubmit handles POST /transactions/actions.
func (s *Server) TransactionsActionSubmit(w http.ResponseWriter, r *http.Request) {
	v := s.workspace(r).Transactions
	action := r.FormValue("action")
	if action == "delete" {
		deleteSelected(s, w, r, v, s.Backend.DeleteTransaction, "transaction", "/transactions")
		return
	}

	selected := v.Selected()
	if len(selected) == 0 {
		redirectFlash(w, r, "/transactions", FlashError, "Please select at least one transaction")
		return
	}
	s.sendTable(w, r, action, export.TransactionTable("Transactions", selected))
}

// ReturnPage handles GET /return: open transactions awaiting return.
func (s *Server) ReturnPage(w http.ResponseWriter, r *http.Request) {
	pd := s.page(w, r, "Return", "return")
	list, flash := loadList(r, "/return", s.workspace(r).Open)

	s.Templates.Render(w, "return.html", &struct {
		PageData
		List *List[model.Transaction]
	}{
		PageData: withFlash(pd, flash),
		List:     list,
	})
}

// ReturnPDF handles GET /return/{id}/pdf: the detail sheet of one
// transaction.
func (s *Server) ReturnPDF(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	txs, _, err := s.Workspaces.Collections().Transactions.Get(r.Context())
	if err != nil && txs == nil {
		slog.Error("failed to load transactions", "error", err)
		http.Error(w, "failed to load transactions", http.StatusBadGateway)
		return
	}

	i := slices.IndexFunc(txs, func(tx model.Transaction) bool { return tx.ID == id })
	if i < 0 {
		http.Error(w, "transaction not found", http.StatusNotFound)
		return
	}
	tx := txs[i]

	title := "Transaction Details"
	if tx.Officer.Name != "" {
		title = fmt.Sprintf("Transaction Details - %s", tx.Officer.Name)
	}
	data, err := export.DetailPDF(title, export.TransactionDetails(tx))
	if err != nil {
		slog.Error("failed to render transaction pdf", "id", id, "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	s.record(r, model.ActionExport, "transaction "+id, "pdf")
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename("transaction_"+id, "pdf")))
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write pdf", "error", err)
	}
}
