package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	body := "calendar_step_days: 30\nfundraise:\n  success_rate: 0.5\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	tun, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tun.CalendarStepDays != 30 {
		t.Fatalf("calendar_step_days = %d, want 30", tun.CalendarStepDays)
	}
	if tun.Fundraise.SuccessRate != 0.5 {
		t.Fatalf("fundraise.success_rate = %v, want 0.5", tun.Fundraise.SuccessRate)
	}
	// Untouched fields keep their defaults.
	if tun.Research.RefundFraction != Default().Research.RefundFraction {
		t.Fatalf("refund_fraction = %v, default lost", tun.Research.RefundFraction)
	}
}

func TestLoadRejectsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("leak:\n  probability: 1.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("probability 1.5 accepted")
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !os.IsNotExist(err) {
		t.Fatalf("err = %v, want not-exist", err)
	}
}
