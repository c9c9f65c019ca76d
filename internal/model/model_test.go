package model

import "testing"

func TestAssetAvailable(t *testing.T) {
	tests := []struct {
		status   string
		expected bool
	}{
		{AssetStatusAvailable, true},
		{"Available", true},
		{AssetStatusIssued, false},
		{AssetStatusRepair, false},
		{"", false},
	}

	for _, tt := range tests {
		got := Asset{Status: tt.status}.Available()
		if got != tt.expected {
			t.Errorf("Asset{Status: %q}.Available() = %v, want %v", tt.status, got, tt.expected)
		}
	}
}

func TestIssueRequestEmpty(t *testing.T) {
	if !(IssueRequest{OfficerID: "o1"}).Empty() {
		t.Error("expected request without assets to be empty")
	}
	if (IssueRequest{OfficerID: "o1", MunitionIDs: []string{"m1"}}).Empty() {
		t.Error("expected request with a munition to be non-empty")
	}
}

func TestOfficerHasFingerprint(t *testing.T) {
	if (Officer{}).HasFingerprint() {
		t.Error("expected officer without template to have no fingerprint")
	}
	if !(Officer{FingerPrintData: "Rk1S"}).HasFingerprint() {
		t.Error("expected officer with template to have a fingerprint")
	}
}
