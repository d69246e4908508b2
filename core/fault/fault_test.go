package fault

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestStatusErrorClassification(t *testing.T) {
	err := fmt.Errorf("fetch detail: %w", &StatusError{Code: 404, URL: "/api/vehicle-detail/x"})
	if !errors.Is(err, ErrNetwork) || !errors.Is(err, ErrNotFound) {
		t.Fatalf("404 should be network and not found")
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Code != 404 {
		t.Fatalf("expected StatusError in chain")
	}
	if Kind(err) != "not_found" {
		t.Fatalf("kind %s", Kind(err))
	}
	if errors.Is(&StatusError{Code: 500}, ErrNotFound) {
		t.Fatalf("500 is not a not-found")
	}
}

func TestWrappers(t *testing.T) {
	n := Network("stats", io.EOF)
	if !errors.Is(n, ErrNetwork) || !errors.Is(n, io.EOF) || Kind(n) != "network" {
		t.Fatalf("network wrap broken: %v", n)
	}
	m := Malformed("stats", io.ErrUnexpectedEOF)
	if !errors.Is(m, ErrMalformed) || Kind(m) != "malformed" {
		t.Fatalf("malformed wrap broken: %v", m)
	}
	if Kind(nil) != "none" || Kind(errors.New("x")) != "other" {
		t.Fatalf("unexpected kinds")
	}
}
