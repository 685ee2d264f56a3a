package logging

import "testing"

func TestNewProductionBuildsALogger(t *testing.T) {
	l, err := NewProduction()
	if err != nil {
		t.Fatalf("NewProduction returned error: %v", err)
	}
	if l == nil {
		t.Fatal("expected a non-nil logger")
	}
	l.Infof("test message %d", 1)
}

func TestNewDevelopmentBuildsALogger(t *testing.T) {
	l, err := NewDevelopment()
	if err != nil {
		t.Fatalf("NewDevelopment returned error: %v", err)
	}
	l.Debugf("debug message")
}

func TestNopDiscardsSilently(t *testing.T) {
	var n Nop
	n.Debugf("x")
	n.Infof("x")
	n.Warnf("x")
	n.Errorf("x")
	if n.Sugar() == nil {
		t.Error("expected Nop.Sugar() to return a usable logger")
	}
}
