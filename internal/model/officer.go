package model

// Officer is a person assets can be issued to.
type Officer struct {
	ID              string `json:"_id"`
	Name            string `json:"name"`
	Rank            string `json:"rank"`
	MetalNo         string `json:"metalNo"`
	Duty            string `json:"duty"`
	PhoneNumber     string `json:"phonenumber"`
	RegisterNo      string `json:"registerNo"`
	KGIDNo          string `json:"kgidNo,omitempty"`
	Status          string `json:"status,omitempty"`
	Remarks         string `json:"remarks,omitempty"`
	FingerPrintData string `json:"fingerPrintData,omitempty"`
}

// HasFingerprint reports whether a biometric template is on file.
func (o Officer) HasFingerprint() bool {
	return o.FingerPrintData != ""
}
