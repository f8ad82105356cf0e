package identifier

import (
	"regexp"
	"testing"
	"time"
)

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	}
}

func TestBatchNumber_Format(t *testing.T) {
	g := New(WithClock(fixedClock()), WithSeed(1))

	got := g.BatchNumber()
	pattern := `^BTN-20260115-[A-Z0-9]{4}$`
	if matched, _ := regexp.MatchString(pattern, got); !matched {
		t.Errorf("BatchNumber() = %v, want match for %v", got, pattern)
	}
}

func TestBatchNumber_SeededDeterminism(t *testing.T) {
	a := New(WithClock(fixedClock()), WithSeed(42))
	b := New(WithClock(fixedClock()), WithSeed(42))

	if got, want := a.BatchNumber(), b.BatchNumber(); got != want {
		t.Errorf("same seed produced different batch numbers: %v vs %v", got, want)
	}
}

func TestBatchNumber_SuffixVaries(t *testing.T) {
	g := New(WithClock(fixedClock()), WithSeed(7))

	first := g.BatchNumber()
	second := g.BatchNumber()
	if first == second {
		t.Errorf("consecutive batch numbers should differ, both were %v", first)
	}
}

func TestLotNumber(t *testing.T) {
	g := New(WithClock(fixedClock()))

	if got, want := g.LotNumber(), "LOT-20260115"; got != want {
		t.Errorf("LotNumber() = %v, want %v", got, want)
	}
}

func TestQRCodeID(t *testing.T) {
	g := New()

	got := g.QRCodeID()
	pattern := `^[A-F0-9]{8}$`
	if matched, _ := regexp.MatchString(pattern, got); !matched {
		t.Errorf("QRCodeID() = %v, want match for %v", got, pattern)
	}

	if g.QRCodeID() == got {
		t.Error("QRCodeID() should be unique per call")
	}
}

func TestDefaultSupplierBatch(t *testing.T) {
	if DefaultSupplierBatch != "General" {
		t.Errorf("DefaultSupplierBatch = %v, want General", DefaultSupplierBatch)
	}
}
