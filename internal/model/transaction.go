package model

import "time"

// Transaction records assets issued to an officer and their return.
type Transaction struct {
	ID         string    `json:"_id"`
	Officer    Officer   `json:"officer"`
	Weapons    []Asset   `json:"weapons"`
	IssueDate  time.Time `json:"issueDate"`
	ReturnDate time.Time `json:"returnDate"`
	Returned   bool      `json:"returned"`
}

// IssueRequest is the payload for issuing assets to an officer.
type IssueRequest struct {
	OfficerID     string   `json:"officerId"`
	WeaponIDs     []string `json:"weaponIds"`
	AmmunitionIDs []string `json:"ammunitionIds"`
	MunitionIDs   []string `json:"munitionIds"`
}

// Empty reports whether the request carries no assets.
func (r IssueRequest) Empty() bool {
	return len(r.WeaponIDs) == 0 && len(r.AmmunitionIDs) == 0 && len(r.MunitionIDs) == 0
}

// ReturnRequest is the payload for returning assets.
type ReturnRequest struct {
	OfficerID      string   `json:"officerId"`
	TransactionIDs []string `json:"transactionIds"`
	WeaponIDs      []string `json:"weaponIds"`
}
