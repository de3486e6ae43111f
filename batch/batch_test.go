package batch

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

var errOdd = errors.New("odd")

func TestRunContinuesAfterFailures(t *testing.T) {
	var visited []int
	failures := Run([]int{1, 2, 3, 4, 5}, func(n int) error {
		visited = append(visited, n)
		if n%2 == 1 {
			return fmt.Errorf("item %d: %w", n, errOdd)
		}
		return nil
	})

	if len(visited) != 5 {
		t.Fatalf("visited %v, want all 5 items", visited)
	}
	if got := Items(failures); fmt.Sprint(got) != "[1 3 5]" {
		t.Fatalf("failed items = %v, want [1 3 5]", got)
	}
	for _, f := range failures {
		if !errors.Is(f, errOdd) {
			t.Fatalf("failure %v does not wrap errOdd", f)
		}
	}
}

func TestRunRecoversPanics(t *testing.T) {
	failures := Run([]string{"a", "b"}, func(s string) error {
		if s == "a" {
			panic("boom")
		}
		return nil
	})
	if len(failures) != 1 || failures[0].Item != "a" {
		t.Fatalf("failures = %v, want one failure for a", failures)
	}
	if !strings.Contains(failures[0].Err.Error(), "boom") {
		t.Fatalf("panic error = %q, want boom", failures[0].Err)
	}
}

func TestJoin(t *testing.T) {
	if err := Join[int]("noop", nil, nil); err != nil {
		t.Fatalf("Join(nil) = %v, want nil", err)
	}

	failures := []Failure[string]{
		{Item: "t.en.xml", Err: errOdd},
		{Item: "t.de.xml", Err: errors.New("disk full")},
	}
	err := Join("restore", failures, func(s string) string { return s })
	if !errors.Is(err, errOdd) {
		t.Fatal("joined error should wrap every failure")
	}
	var be *Error[string]
	if !errors.As(err, &be) || len(be.Failures) != 2 {
		t.Fatalf("errors.As(*Error) failed for %v", err)
	}
	msg := err.Error()
	for _, want := range []string{"restore failed for 2 item(s)", "t.en.xml: odd", "t.de.xml: disk full"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error %q does not contain %q", msg, want)
		}
	}
}
