package services

import (
	"testing"
)

func TestServiceState_IsActive(t *testing.T) {
	tests := []struct {
		state    ServiceState
		expected bool
	}{
		{StateUninitialized, false},
		{StateStarting, false},
		{StateRunning, true},
		{StateAlreadyRunning, true},
		{StateHealthVerified, true},
		{StateStopping, false},
		{StateStopped, false},
		{StateFailed, false},
	}

	for _, test := range tests {
		if got := test.state.IsActive(); got != test.expected {
			t.Errorf("ServiceState(%s).IsActive() = %v, expected %v", test.state, got, test.expected)
		}
	}
}

func TestStartResult_String(t *testing.T) {
	tests := []struct {
		result   StartResult
		expected string
	}{
		{StartResultStarted, "started"},
		{StartResultAlreadyRunning, "already running"},
		{StartResult(42), "unknown"},
	}

	for _, test := range tests {
		if got := test.result.String(); got != test.expected {
			t.Errorf("StartResult(%d).String() = %s, expected %s", test.result, got, test.expected)
		}
	}
}

func TestCredentials_StringRedactsPassword(t *testing.T) {
	creds := Credentials{Username: "default", Password: "hunter2"}

	s := creds.String()
	if s != "default (password redacted)" {
		t.Errorf("Credentials.String() = %q", s)
	}

	if got := (Credentials{Username: "default"}).String(); got != "default (no password)" {
		t.Errorf("Credentials.String() without password = %q", got)
	}
}
