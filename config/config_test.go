package config

import "testing"

func TestDefaultsSetsTimingFields(t *testing.T) {
	opts := Defaults()
	if opts.TickInterval <= 0 {
		t.Fatalf("TickInterval must be positive, got %v", opts.TickInterval)
	}
	if opts.RPCTimeout <= 0 {
		t.Fatalf("RPCTimeout must be positive, got %v", opts.RPCTimeout)
	}
	if opts.RPCEndpoint == "" {
		t.Fatal("RPCEndpoint must not be empty")
	}
	if opts.DataDir == "" {
		t.Fatal("DataDir must not be empty")
	}
}
