package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("RESERVATION_DUPLICATE_POLICY", "")
	t.Setenv("RESERVATION_STRICT_TRANSITIONS", "")
	t.Setenv("RESERVATION_ADMISSION_LOCK", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.Port != "3000" {
		t.Errorf("port = %q", cfg.App.Port)
	}
	if cfg.Reservation.DuplicatePolicy != DuplicatePolicyActive {
		t.Errorf("duplicate policy = %q", cfg.Reservation.DuplicatePolicy)
	}
	if cfg.Reservation.StrictTransitions || cfg.Reservation.AdmissionLock {
		t.Error("strict transitions and admission lock must default to off")
	}
	if cfg.Broker.ConfirmedQueue != "reservation.confirmed" {
		t.Errorf("queue = %q", cfg.Broker.ConfirmedQueue)
	}
}

func TestLoadReservationPolicies(t *testing.T) {
	t.Setenv("RESERVATION_DUPLICATE_POLICY", "ANY")
	t.Setenv("RESERVATION_STRICT_TRANSITIONS", "true")
	t.Setenv("RESERVATION_ADMISSION_LOCK", "1")
	t.Setenv("RESERVATION_LOCK_TTL_MS", "250")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Reservation.DuplicatePolicy != DuplicatePolicyAny {
		t.Errorf("duplicate policy = %q", cfg.Reservation.DuplicatePolicy)
	}
	if !cfg.Reservation.StrictTransitions || !cfg.Reservation.AdmissionLock {
		t.Errorf("policies not applied: %+v", cfg.Reservation)
	}
	if cfg.Reservation.LockTTL() != 250*time.Millisecond {
		t.Errorf("lock ttl = %s", cfg.Reservation.LockTTL())
	}
}

func TestLoadRejectsUnknownDuplicatePolicy(t *testing.T) {
	t.Setenv("RESERVATION_DUPLICATE_POLICY", "sometimes")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}

func TestRequestTimeout(t *testing.T) {
	if got := (AppConfig{RequestTimeoutSeconds: 0}).RequestTimeout(); got != 0 {
		t.Errorf("zero timeout = %s", got)
	}
	if got := (AppConfig{RequestTimeoutSeconds: 5}).RequestTimeout(); got != 5*time.Second {
		t.Errorf("timeout = %s", got)
	}
}
