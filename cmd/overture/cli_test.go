package main

import (
	"bytes"
	"testing"
	"time"

	"overture/internal/catalog"
	"overture/internal/config"
	"overture/internal/logging"
	"overture/internal/resolver"
	"overture/internal/testsupport"
)

// seedContext builds a command context whose session is preassembled from
// fakes, so commands run without config discovery or the network.
func seedContext(t *testing.T, providers ...catalog.Provider) *commandContext {
	t.Helper()
	return seedContextCfg(t, testsupport.NewConfig(t), providers...)
}

func seedContextCfg(t *testing.T, cfg *config.Config, providers ...catalog.Provider) *commandContext {
	t.Helper()

	logger := logging.NewNop()
	store := testsupport.NewStore(t, cfg)
	registry := testsupport.NewRegistry(t, cfg, providers...)
	engine, err := resolver.New(cfg, registry, store, logger)
	if err != nil {
		t.Fatalf("resolver.New: %v", err)
	}
	return &commandContext{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		registry: registry,
		engine:   engine,
	}
}

// runCLI executes one command line against a seeded context and returns
// everything written to stdout and stderr.
func runCLI(t *testing.T, ctx *commandContext, args ...string) (string, error) {
	t.Helper()

	var configFlag string
	root := buildRootCommand(ctx, &configFlag)
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// khinsiderFake scripts a provider that resolves "Celeste" to one album
// with two listed tracks and succeeds on every fetch.
func khinsiderFake() *testsupport.FakeProvider {
	return &testsupport.FakeProvider{
		Kind: catalog.SourceKhinsider,
		Caps: catalog.Capabilities{Search: true},
		Results: map[string][]catalog.Album{
			"Celeste": {{
				ID:     "album/celeste-ost",
				Name:   "Celeste Original Soundtrack",
				Source: catalog.SourceKhinsider,
				Year:   "2018",
			}},
		},
		TrackLists: map[string][]catalog.Track{
			"album/celeste-ost": {
				{ID: "/album/celeste-ost/01-prologue.mp3", Name: "Prologue", Length: 66 * time.Second, Source: catalog.SourceKhinsider},
				{ID: "/album/celeste-ost/02-first-steps.mp3", Name: "First Steps", Length: 222 * time.Second, Source: catalog.SourceKhinsider},
			},
		},
		FetchOK: true,
	}
}
