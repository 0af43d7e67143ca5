package domain_test

import (
	"testing"

	"github.com/arborhq/arbor/pkg/domain"
)

func TestRecord_PrependsMostRecentFirst(t *testing.T) {
	mtr := domain.NewMTR()
	mtr = mtr.Record("root", "method1", 10)
	mtr = mtr.Record("fetch", "method2", 20)

	if len(mtr) != 2 {
		t.Fatalf("expected 2 choices, got %d", len(mtr))
	}
	if mtr[0].Task != "fetch" || mtr[1].Task != "root" {
		t.Fatalf("expected most-recent-first storage, got %+v", mtr)
	}

	rooted := mtr.Reversed()
	if rooted[0].Task != "root" || rooted[1].Task != "fetch" {
		t.Fatalf("expected root-to-leaf reading order, got %+v", rooted)
	}
}

func TestRecord_DoesNotAliasReceiver(t *testing.T) {
	base := domain.NewMTR().Record("root", "a", 1)
	left := base.Record("x", "m", 2)
	right := base.Record("y", "m", 3)

	if len(base) != 1 {
		t.Fatalf("receiver mutated: %+v", base)
	}
	if left[0].Task != "x" || right[0].Task != "y" {
		t.Fatalf("branches share storage: left=%+v right=%+v", left, right)
	}
}

func TestComparePriority_BothEmpty(t *testing.T) {
	if got := domain.ComparePriority(domain.NewMTR(), domain.NewMTR()); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestComparePriority_LongerOutranksPrefix(t *testing.T) {
	full := domain.NewMTR().Record("root", "a", 10).Record("sub", "b", 10)
	prefix := domain.NewMTR().Record("root", "a", 10)

	if got := domain.ComparePriority(full, prefix); got != 1 {
		t.Fatalf("expected full decomposition to outrank prefix, got %d", got)
	}
	if got := domain.ComparePriority(prefix, full); got != -1 {
		t.Fatalf("expected prefix to be outranked, got %d", got)
	}
}

func TestComparePriority_LowerPriorityNumberWins(t *testing.T) {
	a := domain.NewMTR().Record("root", "MethodA", 10)
	b := domain.NewMTR().Record("root", "MethodB", 20)

	if got := domain.ComparePriority(a, b); got != 1 {
		t.Fatalf("expected MethodA's record to outrank, got %d", got)
	}
	if got := domain.ComparePriority(b, a); got != -1 {
		t.Fatalf("expected MethodB's record to be outranked, got %d", got)
	}
}

func TestComparePriority_EqualPriorityRecurses(t *testing.T) {
	a := domain.NewMTR().Record("root", "m", 10).Record("sub", "fast", 1)
	b := domain.NewMTR().Record("root", "m", 10).Record("sub", "slow", 5)

	if got := domain.ComparePriority(a, b); got != 1 {
		t.Fatalf("expected deeper choice to decide, got %d", got)
	}
}

func TestComparePriority_BranchMismatchPriorityFirst(t *testing.T) {
	a := domain.NewMTR().Record("root", "m", 10).Record("alpha", "m", 7)
	b := domain.NewMTR().Record("root", "m", 10).Record("beta", "m", 3)

	if got := domain.ComparePriority(a, b); got != -1 {
		t.Fatalf("expected priority to decide branch mismatch, got %d", got)
	}
}

func TestComparePriority_BranchMismatchLexicalTie(t *testing.T) {
	a := domain.NewMTR().Record("root", "m", 10).Record("alpha", "m", 5)
	b := domain.NewMTR().Record("root", "m", 10).Record("beta", "m", 5)

	if got := domain.ComparePriority(a, b); got != 1 {
		t.Fatalf("expected lexically smaller task to outrank, got %d", got)
	}
	if got := domain.ComparePriority(b, a); got != -1 {
		t.Fatalf("expected lexically larger task to be outranked, got %d", got)
	}
}

func TestComparePriority_IdenticalRecords(t *testing.T) {
	a := domain.NewMTR().Record("root", "m", 10).Record("sub", "n", 5)
	b := domain.NewMTR().Record("root", "m", 10).Record("sub", "n", 5)

	if got := domain.ComparePriority(a, b); got != 0 {
		t.Fatalf("expected equal records, got %d", got)
	}
}
