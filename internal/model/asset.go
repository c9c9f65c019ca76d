package model

import (
	"strings"
	"time"
)

// Asset is a tracked weapon, ammunition lot or munition unit as served by the backend.
type Asset struct {
	ID                      string        `json:"_id"`
	Type                    string        `json:"type"`
	Category                string        `json:"category"`
	RegisterNumber          string        `json:"registerNumber"`
	ButtNo                  string        `json:"buttno,omitempty"`
	Coy                     string        `json:"coy"`
	Status                  string        `json:"status"`
	IsIssued                bool          `json:"isIssued"`
	CreatedOn               time.Time     `json:"createdOn"`
	FixedToOfficer          *FixedOfficer `json:"fixedToOfficer,omitempty"`
	RackNumber              string        `json:"rackNumber,omitempty"`
	LastAuditBy             string        `json:"lastAuditBy,omitempty"`
	UpcomingMaintenanceDate string        `json:"upcomingMaintenanceDate,omitempty"`
	RepairHistory           []string      `json:"repairHistory,omitempty"`
	Remarks                 []Remark      `json:"remarks,omitempty"`
}

// FixedOfficer is the officer an asset is permanently assigned to.
type FixedOfficer struct {
	Rank        string `json:"rank"`
	MetalNo     string `json:"metalno"`
	OfficerName string `json:"officername"`
}

// Remark is a dated free-text note attached to an asset.
type Remark struct {
	Name string `json:"name"`
	Text string `json:"text"`
	Date string `json:"date"`
}

// Available reports whether the asset can be issued.
func (a Asset) Available() bool {
	return strings.EqualFold(a.Status, AssetStatusAvailable)
}

// Asset statuses.
const (
	AssetStatusAvailable = "available"
	AssetStatusIssued    = "issued"
	AssetStatusRepair    = "repair"
)

// Asset categories.
const (
	CategoryArmoury    = "armoury"
	CategoryAmmunition = "ammunition"
	CategoryMunition   = "munition"
)

// Categories lists asset categories in report order.
var Categories = []string{CategoryArmoury, CategoryAmmunition, CategoryMunition}

// Statuses lists asset statuses in chart order.
var Statuses = []string{AssetStatusAvailable, AssetStatusIssued, AssetStatusRepair}

// Item is an ammunition lot tracked by quantity.
type Item struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	Quantity    int       `json:"quantity"`
	CreatedOn   time.Time `json:"createdOn"`
}

// AsAsset returns the item as an ammunition asset so it can join an issue.
func (it Item) AsAsset() Asset {
	category := it.Category
	if category == "" {
		category = CategoryAmmunition
	}
	return Asset{
		ID:        it.ID,
		Type:      it.Title,
		Category:  category,
		Status:    it.Status,
		CreatedOn: it.CreatedOn,
	}
}
