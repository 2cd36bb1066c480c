package core

import (
	"testing"
	"time"
)

func TestClockFuncNowNilFallsBackToUTCTime(t *testing.T) {
	got := ClockFunc(nil).Now()
	if got.IsZero() {
		t.Fatal("expected non-zero time from nil ClockFunc")
	}
	if got.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %s", got.Location())
	}
}

func TestClockFuncNowDelegatesToFunction(t *testing.T) {
	expected := time.Date(2024, 7, 4, 12, 34, 56, 0, time.FixedZone("offset", -5*3600))
	got := ClockFunc(func() time.Time { return expected }).Now()
	if !got.Equal(expected.UTC()) || got.Location() != time.UTC {
		t.Fatalf("expected %s, got %s", expected.UTC(), got)
	}
}

func TestNoopLogger(t *testing.T) {
	logger := noopLogger{}
	logger.Debug("debug", "k", "v")
	logger.Info("info", "k", "v")
	logger.Warn("warn", "k", "v")
	logger.Error("error", "k", "v")
}

func TestStorageErrorMessage(t *testing.T) {
	err := &StorageError{Op: "write", Block: 3, Err: errDevice}
	if err.Error() != "genome write block 3: device not ready" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
