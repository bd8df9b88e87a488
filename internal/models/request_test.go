package models

import (
	"testing"
)

func TestRankRequest_Validate(t *testing.T) {
	r := &RankRequest{JobDescription: "  Go engineer \n"}
	if err := r.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if r.JobDescription != "Go engineer" {
		t.Errorf("JobDescription = %q, want trimmed", r.JobDescription)
	}
	if err := (&RankRequest{}).Validate(); err == nil {
		t.Error("expected error for empty job description")
	}
}
