package logger

import "testing"

func TestNew_InvalidLevelFallsBack(t *testing.T) {
	log := New(LoggingConfig{Level: "noisy"})
	if log == nil {
		t.Fatal("New returned nil")
	}
	log.Info("still works")
}

func TestNewDefault(t *testing.T) {
	log := NewDefault("test-component")
	if log == nil {
		t.Fatal("NewDefault returned nil")
	}
	log.WithError(nil).WithFields(map[string]interface{}{"k": "v"}).Debug("fields attach")
}
