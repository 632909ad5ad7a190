package policy

import (
	"math"
	"testing"
)

func ptr(v float64) *float64 { return &v }

func TestComputeRefundPercent(t *testing.T) {
	tests := []struct {
		name     string
		total    *float64
		refunded *float64
		want     float64
		wantOK   bool
	}{
		{"simple quarter", ptr(100), ptr(25), 25, true},
		{"scenario A", ptr(560), ptr(85.06), 15.189285714285715, true},
		{"over-refund exceeds 100", ptr(100), ptr(150), 150, true},
		{"zero refunded", ptr(100), ptr(0), 0, true},
		{"missing total", nil, ptr(50), 0, false},
		{"zero total", ptr(0), ptr(50), 0, false},
		{"negative total", ptr(-10), ptr(50), 0, false},
		{"missing refunded", ptr(100), nil, 0, false},
		{"both missing", nil, nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ComputeRefundPercent(tt.total, tt.refunded)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("percent = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateCapFlags(t *testing.T) {
	tests := []struct {
		name     string
		total    *float64
		refunded *float64
		wantSoft bool
		wantHard bool
	}{
		{"scenario A soft only", ptr(560), ptr(85.06), true, false},
		{"scenario B both", ptr(100), ptr(25), true, true},
		{"well under caps", ptr(100), ptr(5), false, false},
		{"exactly at encouraged cap is compliant", ptr(100), ptr(15), false, false},
		{"exactly at max cap is not a hard violation", ptr(100), ptr(20), true, false},
		{"just above encouraged cap", ptr(100), ptr(15.01), true, false},
		{"indeterminate inputs never flag", nil, ptr(50), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := Evaluate(tt.total, tt.refunded, DefaultEncouragedCapPercent, DefaultMaxCapPercent)
			if facts.SoftCapExceeded != tt.wantSoft {
				t.Errorf("SoftCapExceeded = %v, want %v", facts.SoftCapExceeded, tt.wantSoft)
			}
			if facts.HardCapExceeded != tt.wantHard {
				t.Errorf("HardCapExceeded = %v, want %v", facts.HardCapExceeded, tt.wantHard)
			}
		})
	}
}

func TestEvaluateCarriesCapsAndPercent(t *testing.T) {
	facts := Evaluate(ptr(560), ptr(85.06), 15, 20)
	if facts.RefundPercent == nil {
		t.Fatal("expected a determinate refund percent")
	}
	if math.Abs(*facts.RefundPercent-15.19) > 0.01 {
		t.Errorf("percent = %v, want ~15.19", *facts.RefundPercent)
	}
	if facts.EncouragedCapPercent != 15 || facts.MaxCapPercent != 20 {
		t.Errorf("caps = %v/%v, want 15/20", facts.EncouragedCapPercent, facts.MaxCapPercent)
	}

	facts = Evaluate(nil, ptr(50), 15, 20)
	if facts.RefundPercent != nil {
		t.Errorf("expected absent percent, got %v", *facts.RefundPercent)
	}
}
