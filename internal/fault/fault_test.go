package fault

import (
	"errors"
	"fmt"
	"testing"
)

func TestPredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"not found", NotFound("no purchases for user %s", "u1"), IsNotFound, true},
		{"validation", Validation("end_date cannot be less than start_date"), IsValidation, true},
		{"liquidity", LiquidityConflict("qty 10 exceeds remaining 5"), IsLiquidityConflict, true},
		{"consistency", Consistency("latest pointer missing"), IsConsistency, true},
		{"batch", Batch("file.csv", errors.New("boom")), IsBatch, true},
		{"cache decode", CacheDecode("k", errors.New("bad json")), IsCacheDecode, true},
		{"wrong kind", NotFound("x"), IsValidation, false},
		{"plain error", errors.New("x"), IsNotFound, false},
		{"nil", nil, IsNotFound, false},
	}

	for _, tt := range tests {
		if got := tt.check(tt.err); got != tt.want {
			t.Errorf("%s: predicate = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestWrappedClassification(t *testing.T) {
	inner := LiquidityConflict("qty 10 exceeds remaining 5")
	outer := fmt.Errorf("place purchase: %w", inner)

	if !IsLiquidityConflict(outer) {
		t.Error("wrapped liquidity conflict not detected")
	}
	if IsNotFound(outer) {
		t.Error("wrapped liquidity conflict misclassified as not found")
	}
}

func TestBatchPreservesCause(t *testing.T) {
	cause := Validation("missing required header %q", "LTP")
	err := Batch("day1/ACC.csv", cause)

	if !IsBatch(err) {
		t.Fatal("expected batch classification")
	}
	if !IsValidation(err) {
		t.Error("batch error should still expose its validation cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestErrorMessage(t *testing.T) {
	err := Batch("a.csv", errors.New("short write"))
	want := "batch a.csv: short write"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
