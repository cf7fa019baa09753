package db

import (
	"context"
	"testing"
)

func TestConnFromContext_Empty(t *testing.T) {
	if conn := ConnFromContext(context.Background()); conn != nil {
		t.Error("expected nil connection for empty context")
	}
}

func TestConn_FallsBackWithoutRequestConn(t *testing.T) {
	var fallback Querier
	if got := Conn(context.Background(), fallback); got != fallback {
		t.Error("expected fallback querier")
	}
}
