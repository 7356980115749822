package di_test

import (
	"testing"

	"github.com/solarb/arbitrage-detector/internal/di"
)

func TestContainer_RegisterAndGet(t *testing.T) {
	c := di.NewContainer()
	c.Register("config", 42)

	got := c.Get("config")
	if got != 42 {
		t.Errorf("expected 42, got %v", got)
	}
}

func TestContainer_GetMissingPanics(t *testing.T) {
	c := di.NewContainer()

	defer func() {
		if recover() == nil {
			t.Error("expected panic for unregistered service")
		}
	}()
	c.Get("nope")
}

type widget struct{ n int }

func TestRegisterToken_LazyAndMemoized(t *testing.T) {
	c := di.NewContainer()
	calls := 0

	di.RegisterToken(c, "widget", func(sr di.ServiceRegistry) *widget {
		calls++
		return &widget{n: 7}
	})

	if calls != 0 {
		t.Fatal("factory must not run before first Get")
	}

	a := di.MustGet[*widget](c, "widget")
	b := di.MustGet[*widget](c, "widget")

	if calls != 1 {
		t.Errorf("expected factory to run exactly once, ran %d times", calls)
	}
	if a != b {
		t.Error("expected the same memoized instance on repeated Get")
	}
	if a.n != 7 {
		t.Errorf("expected n=7, got %d", a.n)
	}
}

func TestRegisterToken_CanResolveDependencies(t *testing.T) {
	c := di.NewContainer()
	c.Register("base", 10)

	di.RegisterToken(c, "doubled", func(sr di.ServiceRegistry) int {
		return di.MustGet[int](sr, "base") * 2
	})

	got := di.MustGet[int](c, "doubled")
	if got != 20 {
		t.Errorf("expected 20, got %d", got)
	}
}

func TestMustGet_WrongTypePanics(t *testing.T) {
	c := di.NewContainer()
	c.Register("config", "not-an-int")

	defer func() {
		if recover() == nil {
			t.Error("expected panic for type mismatch")
		}
	}()
	di.MustGet[int](c, "config")
}
