package main

import (
	"strings"
	"testing"

	"overture/internal/testsupport"
)

func TestCacheCommandsRoundTrip(t *testing.T) {
	ctx := seedContext(t, khinsiderFake())

	if _, err := runCLI(t, ctx, "resolve", "Celeste"); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	out, err := runCLI(t, ctx, "cache", "list")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	// Listings show the normalized title key the entry is stored under.
	if !strings.Contains(out, "celeste") || !strings.Contains(out, "khinsider") {
		t.Fatalf("cache list missing resolved entry:\n%s", out)
	}

	out, err = runCLI(t, ctx, "cache", "remove", "Celeste")
	if err != nil {
		t.Fatalf("cache remove: %v", err)
	}
	if !strings.Contains(out, "Removed cached results") {
		t.Fatalf("cache remove missing confirmation:\n%s", out)
	}

	out, err = runCLI(t, ctx, "cache", "list")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	if !strings.Contains(out, "Result cache is empty") {
		t.Fatalf("cache list should report empty after remove:\n%s", out)
	}
}

func TestCacheClearDropsEverything(t *testing.T) {
	ctx := seedContext(t, khinsiderFake())

	if _, err := runCLI(t, ctx, "resolve", "Celeste"); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	out, err := runCLI(t, ctx, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(out, "Result cache cleared") {
		t.Fatalf("cache clear missing confirmation:\n%s", out)
	}
	if got := ctx.store.Count(); got != 0 {
		t.Fatalf("expected empty store after clear, got %d entries", got)
	}
}

func TestCachePruneReportsRemovals(t *testing.T) {
	ctx := seedContext(t, khinsiderFake())

	out, err := runCLI(t, ctx, "cache", "prune")
	if err != nil {
		t.Fatalf("cache prune: %v", err)
	}
	if !strings.Contains(out, "Removed 0 expired entries") {
		t.Fatalf("cache prune missing count:\n%s", out)
	}
}

func TestCacheRemoveUnknownTitleErrors(t *testing.T) {
	ctx := seedContext(t, khinsiderFake())

	_, err := runCLI(t, ctx, "cache", "remove", "Portal")
	if err == nil {
		t.Fatal("expected an error for a title with no cached results")
	}
}

func TestCacheCommandsDisabledNote(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCacheDisabled())
	ctx := seedContextCfg(t, cfg, khinsiderFake())

	out, err := runCLI(t, ctx, "cache", "list")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	if !strings.Contains(out, "Result cache is disabled") {
		t.Fatalf("cache list missing disabled note:\n%s", out)
	}
}
