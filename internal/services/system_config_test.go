package services

import (
	"testing"
)

func TestSystemConfig_SetAndGet(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSystemConfigService(env.db)

	if err := svc.Set("log_retention_days", "14"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, err := svc.Get("log_retention_days")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "14" {
		t.Errorf("value = %q, expected %q", value, "14")
	}

	// Set on an existing key updates in place.
	if err := svc.Set("log_retention_days", "60"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, err = svc.Get("log_retention_days")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "60" {
		t.Errorf("value = %q, expected %q", value, "60")
	}
}

func TestSystemConfig_GetWithDefault(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSystemConfigService(env.db)

	if got := svc.GetWithDefault("missing_key", "fallback"); got != "fallback" {
		t.Errorf("GetWithDefault = %q, expected %q", got, "fallback")
	}

	if err := svc.Set("present_key", "stored"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := svc.GetWithDefault("present_key", "fallback"); got != "stored" {
		t.Errorf("GetWithDefault = %q, expected %q", got, "stored")
	}
}
