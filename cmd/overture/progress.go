package main

import (
	"os"

	"github.com/cheggaaa/pb/v3"

	"overture/internal/catalog"
	"overture/internal/sources/khinsider"
	"overture/internal/textutil"
)

const progressTemplate = `{{ string . "prefix" }} {{ bar . }} {{ percent . }} {{ speed . }}`

// attachProgress wires a byte progress bar into the khinsider transfer
// callback. Only single-transfer interactive runs get one; parallel
// fetches would interleave their updates. The returned func detaches the
// callback and stops the bar.
func (c *commandContext) attachProgress(enabled bool) func() {
	if !enabled || !isInteractive() || c.registry == nil {
		return func() {}
	}
	provider, ok := c.registry.Lookup(catalog.SourceKhinsider)
	if !ok {
		return func() {}
	}
	kh, ok := provider.(*khinsider.Provider)
	if !ok {
		return func() {}
	}

	bar := pb.New64(0)
	bar.SetTemplateString(progressTemplate)
	bar.SetWriter(os.Stdout)
	started := false
	kh.Progress = func(track catalog.Track, written, total int64) {
		if !started {
			bar.Set("prefix", textutil.Truncate(track.Name, 32))
			bar.Start()
			started = true
		}
		if total > 0 {
			bar.SetTotal(total)
		}
		bar.SetCurrent(written)
	}
	return func() {
		kh.Progress = nil
		if started {
			bar.Finish()
		}
	}
}
