package model

import "time"

// Activity actions.
const (
	ActionIssue    = "issue"
	ActionReturn   = "return"
	ActionDelete   = "delete"
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionRegister = "register"
	ActionExport   = "export"
)

// Activity is a locally recorded dashboard action.
type Activity struct {
	ID        int64     `json:"id"`
	Workspace string    `json:"workspace"`
	Action    string    `json:"action"`
	Subject   string    `json:"subject"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}
