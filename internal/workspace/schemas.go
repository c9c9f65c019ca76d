package workspace

import (
	"github.com/erazemk/armoury/internal/listview"
	"github.com/erazemk/armoury/internal/model"
)

// AssetSchema describes assets to the list engine.
var AssetSchema = &listview.Schema[model.Asset]{
	Fields: map[string]listview.Kind{
		"type":           listview.Exact,
		"status":         listview.Exact,
		"category":       listview.Exact,
		"createdOn":      listview.Date,
		"registerNumber": listview.Contains,
		"coy":            listview.Contains,
		"isIssued":       listview.Bool,
	},
	Search: []string{"type", "registerNumber", "coy"},
	Value:  assetValue,
	ID:     func(a model.Asset) string { return a.ID },
}

func assetValue(a model.Asset, key string) any {
	switch key {
	case "type":
		return a.Type
	case "status":
		return a.Status
	case "category":
		return a.Category
	case "createdOn":
		return a.CreatedOn
	case "registerNumber":
		return a.RegisterNumber
	case "buttNo":
		return a.ButtNo
	case "coy":
		return a.Coy
	case "isIssued":
		return a.IsIssued
	case "rackNumber":
		return a.RackNumber
	}
	return nil
}

// ItemSchema describes ammunition lots to the list engine.
var ItemSchema = &listview.Schema[model.Item]{
	Fields: map[string]listview.Kind{
		"title":       listview.Contains,
		"description": listview.Contains,
		"status":      listview.Exact,
		"category":    listview.Exact,
		"createdOn":   listview.Date,
		"quantity":    listview.Int,
	},
	Search: []string{"title", "description"},
	Value: func(it model.Item, key string) any {
		switch key {
		case "title":
			return it.Title
		case "description":
			return it.Description
		case "type":
			return it.Type
		case "status":
			return it.Status
		case "category":
			return it.Category
		case "createdOn":
			return it.CreatedOn
		case "quantity":
			return it.Quantity
		}
		return nil
	},
	ID: func(it model.Item) string { return it.ID },
}

// TransactionSchema describes transactions to the list engine. Officer
// fields use dotted keys for sorting and plain keys for filtering.
var TransactionSchema = &listview.Schema[model.Transaction]{
	Fields: map[string]listview.Kind{
		"officerName": listview.Contains,
		"metalNo":     listview.Contains,
		"rank":        listview.Exact,
		"duty":        listview.Contains,
		"status":      listview.Exact,
		"weaponType":  listview.Any,
		"issueDate":   listview.Date,
		"returned":    listview.Bool,
	},
	Search: []string{"officer.name", "officer.metalNo", "officer.registerNo"},
	Value:  transactionValue,
	ID:     func(tx model.Transaction) string { return tx.ID },
}

func transactionValue(tx model.Transaction, key string) any {
	switch key {
	case "officerName", "officer.name":
		return tx.Officer.Name
	case "metalNo", "officer.metalNo":
		return tx.Officer.MetalNo
	case "officer.registerNo":
		return tx.Officer.RegisterNo
	case "rank", "officer.rank":
		return tx.Officer.Rank
	case "duty", "officer.duty":
		return tx.Officer.Duty
	case "status", "officer.status":
		return tx.Officer.Status
	case "weaponType":
		types := make([]string, len(tx.Weapons))
		for i, w := range tx.Weapons {
			types[i] = w.Type
		}
		return types
	case "weapons":
		return len(tx.Weapons)
	case "issueDate":
		return tx.IssueDate
	case "returnDate":
		return tx.ReturnDate
	case "returned":
		return tx.Returned
	}
	return nil
}

// OfficerSchema describes officers to the list engine.
var OfficerSchema = &listview.Schema[model.Officer]{
	Fields: map[string]listview.Kind{
		"rank": listview.Exact,
		"duty": listview.Contains,
	},
	Search: []string{"name", "metalNo", "registerNo"},
	Value: func(o model.Officer, key string) any {
		switch key {
		case "name":
			return o.Name
		case "metalNo":
			return o.MetalNo
		case "registerNo":
			return o.RegisterNo
		case "rank":
			return o.Rank
		case "duty":
			return o.Duty
		}
		return nil
	},
	ID: func(o model.Officer) string { return o.ID },
}
