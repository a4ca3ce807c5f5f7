package secret

import "testing"

func TestEnvStore(t *testing.T) {
	s := NewEnvStore("TEST_SECRET_")
	t.Setenv("TEST_SECRET_BILLING_DB", "hunter2")

	got, err := s.Get("billing-db")
	if err != nil || string(got) != "hunter2" {
		t.Fatalf("Get = %q, %v", got, err)
	}

	if err := s.Delete("billing-db"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err = s.Get("billing-db")
	if err != nil || got != nil {
		t.Errorf("expected missing key to read as nil, got %q, %v", got, err)
	}
}

func TestNew_Backends(t *testing.T) {
	if _, ok := New(BackendEnv).(*EnvStore); !ok {
		t.Error("env backend should return an EnvStore")
	}
	if _, ok := New(BackendKeychain).(*KeychainStore); !ok {
		t.Error("keychain backend should return a KeychainStore")
	}
}
