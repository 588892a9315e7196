package dto

import (
	"testing"
	"time"
)

func ptr[T any](v T) *T { return &v }

func TestRegisterRequest_Validate(t *testing.T) {
	tests := []struct {
		name string
		req  RegisterRequest
		want bool
	}{
		{"valid", RegisterRequest{Pseudo: "PlayerOne", PhoneNumber: "0601020304"}, true},
		{"missing pseudo", RegisterRequest{PhoneNumber: "0601020304"}, false},
		{"missing phone", RegisterRequest{Pseudo: "PlayerOne"}, false},
		{"blank after trim", RegisterRequest{Pseudo: "   ", PhoneNumber: "0601020304"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Normalize()
			if got, msg := tt.req.Validate(); got != tt.want {
				t.Errorf("Validate() = %v (%q), want %v", got, msg, tt.want)
			}
		})
	}
}

func TestRegisterRequest_NormalizeDropsBlankPicture(t *testing.T) {
	req := RegisterRequest{Pseudo: " PlayerOne ", PhoneNumber: "06", ProfilePicture: ptr("  ")}
	req.Normalize()
	if req.Pseudo != "PlayerOne" {
		t.Errorf("expected trimmed pseudo, got %q", req.Pseudo)
	}
	if req.ProfilePicture != nil {
		t.Error("expected blank profile picture to be dropped")
	}
}

func TestScanRequest(t *testing.T) {
	if ok, _ := (&ScanRequest{BadgeCode: "ABCDEFGHIJ"}).Validate(); ok {
		t.Error("expected missing user id to fail")
	}
	if ok, _ := (&ScanRequest{UserID: "u"}).Validate(); ok {
		t.Error("expected missing badge code to fail")
	}

	shapes := map[string]bool{
		"ABCDEFGHIJ":  true,
		"ÉÉÉÉÉÉÉÉÉÉ":  true,
		"SHORT":       false,
		"ABCDEFGHIJK": false,
	}
	for code, want := range shapes {
		if got := (&ScanRequest{BadgeCode: code}).HasValidBadgeShape(); got != want {
			t.Errorf("HasValidBadgeShape(%q) = %v, want %v", code, got, want)
		}
	}
}

func TestRecordScoreRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     RecordScoreRequest
		want    bool
		wantMsg string
	}{
		{"valid", RecordScoreRequest{UserID: "u", GameZone: "foot", Score: ptr(80.0), Location: "Gonfreville"}, true, ""},
		{"zero score accepted", RecordScoreRequest{UserID: "u", GameZone: "tir", Score: ptr(0.0), Location: "Gonfreville"}, true, ""},
		{"missing score", RecordScoreRequest{UserID: "u", GameZone: "foot", Location: "Gonfreville"}, false, "User ID, game zone, score, and location are required"},
		{"missing location", RecordScoreRequest{UserID: "u", GameZone: "foot", Score: ptr(1.0)}, false, "User ID, game zone, score, and location are required"},
		{"unknown zone", RecordScoreRequest{UserID: "u", GameZone: "bowling", Score: ptr(1.0), Location: "x"}, false, "Game zone must be one of foot, basket, tir, petanque, minigolf"},
		{"negative score accepted", RecordScoreRequest{UserID: "u", GameZone: "foot", Score: ptr(-1.0), Location: "x"}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, msg := tt.req.Validate()
			if got != tt.want || msg != tt.wantMsg {
				t.Errorf("Validate() = (%v, %q), want (%v, %q)", got, msg, tt.want, tt.wantMsg)
			}
		})
	}
}

func TestAssignChallengeRequest_Validate(t *testing.T) {
	expiry := time.Now().Add(24 * time.Hour)
	valid := AssignChallengeRequest{Title: "Foot Master", Description: "Score 100", Reward: "Free game", Target: 100, ExpiryDate: &expiry}

	if ok, msg := valid.Validate(); !ok {
		t.Fatalf("expected valid request, got %q", msg)
	}

	noTarget := valid
	noTarget.Target = 0
	if ok, _ := noTarget.Validate(); ok {
		t.Error("expected zero target to fail")
	}

	noExpiry := valid
	noExpiry.ExpiryDate = nil
	if ok, _ := noExpiry.Validate(); ok {
		t.Error("expected missing expiry to fail")
	}
}

func TestRankingQuery_Validate(t *testing.T) {
	if ok, _ := (&RankingQuery{}).Validate(); ok {
		t.Error("expected missing zone to fail")
	}
	if ok, _ := (&RankingQuery{GameZone: "bowling"}).Validate(); ok {
		t.Error("expected unknown zone to fail")
	}
	if ok, _ := (&RankingQuery{GameZone: "foot", Limit: 500}).Validate(); ok {
		t.Error("expected oversized limit to fail")
	}
	if ok, msg := (&RankingQuery{GameZone: "foot", Location: "Gonfreville"}).Validate(); !ok {
		t.Errorf("expected valid query, got %q", msg)
	}
}

func TestSimpleRequests_Validate(t *testing.T) {
	if ok, _ := (&IssueSanctionRequest{UserID: "u", Reason: "cheating"}).Validate(); ok {
		t.Error("expected missing admin id to fail")
	}
	if ok, _ := (&NotifyRequest{UserID: "u", Message: "hi"}).Validate(); ok {
		t.Error("expected missing type to fail")
	}
	if ok, _ := (&ScoreFilter{}).Validate(); ok {
		t.Error("expected missing user id to fail")
	}
}
