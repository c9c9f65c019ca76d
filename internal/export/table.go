// Package export serializes list rows for download: CSV, xlsx workbooks,
// PDF tables and printable HTML.
package export

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/erazemk/armoury/internal/model"
)

// DateLayout formats dates in exported rows.
const DateLayout = "02/01/2006"

// Table is a titled grid of already formatted cells.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// AssetHeaders are the columns of asset exports.
var AssetHeaders = []string{"Type", "Category", "Register No", "Coy", "Status", "Created On", "Issued"}

// ItemHeaders are the columns of ammunition lot exports.
var ItemHeaders = []string{"Title", "Description", "Category", "Status", "Quantity", "Created On"}

// TransactionHeaders are the columns of transaction exports.
var TransactionHeaders = []string{
	"Officer Name", "Metal No", "Rank", "Duty", "Status", "No of Weapons",
	"Register No", "Phone Number", "Issue Date", "Returned",
}

// AssetTable builds a table of assets.
func AssetTable(title string, assets []model.Asset) Table {
	t := Table{Title: title, Headers: AssetHeaders}
	for _, a := range assets {
		t.Rows = append(t.Rows, []string{
			a.Type,
			a.Category,
			a.RegisterNumber,
			a.Coy,
			a.Status,
			FormatDate(a.CreatedOn),
			yesNo(a.IsIssued),
		})
	}
	return t
}

// ItemTable builds a table of ammunition lots.
func ItemTable(title string, items []model.Item) Table {
	t := Table{Title: title, Headers: ItemHeaders}
	for _, it := range items {
		t.Rows = append(t.Rows, []string{
			it.Title,
			it.Description,
			it.Category,
			it.Status,
			strconv.Itoa(it.Quantity),
			FormatDate(it.CreatedOn),
		})
	}
	return t
}

// TransactionTable builds a table of transactions.
func TransactionTable(title string, txs []model.Transaction) Table {
	t := Table{Title: title, Headers: TransactionHeaders}
	for _, tx := range txs {
		o := tx.Officer
		t.Rows = append(t.Rows, []string{
			o.Name,
			o.MetalNo,
			o.Rank,
			o.Duty,
			o.Status,
			strconv.Itoa(len(tx.Weapons)),
			o.RegisterNo,
			o.PhoneNumber,
			FormatDate(tx.IssueDate),
			yesNo(tx.Returned),
		})
	}
	return t
}

// TransactionDetails returns the field/details grid of one transaction.
func TransactionDetails(tx model.Transaction) [][2]string {
	types := make([]string, 0, len(tx.Weapons))
	for _, w := range tx.Weapons {
		types = append(types, w.Type)
	}
	return [][2]string{
		{"Officer Name", orNA(tx.Officer.Name)},
		{"Metal No", orNA(tx.Officer.MetalNo)},
		{"Rank", orNA(tx.Officer.Rank)},
		{"Duty", orNA(tx.Officer.Duty)},
		{"Status", orNA(tx.Officer.Status)},
		{"Issue Date", orNA(FormatDate(tx.IssueDate))},
		{"Return Date", orNA(FormatDate(tx.ReturnDate))},
		{"Weapons", orNA(strings.Join(types, ", "))},
	}
}

// FormatDate formats t with DateLayout in local time, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(time.Local).Format(DateLayout)
}

// Title capitalizes a category for sheet names and headings.
func Title(s string) string {
	return cases.Title(language.English).String(s)
}

// Filename turns a title into a safe download name with ext.
func Filename(title, ext string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		name = "export"
	}
	return name + "." + ext
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
