package game

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/pthm-cable/weatherloop/config"
	"github.com/pthm-cable/weatherloop/export"
	"github.com/pthm-cable/weatherloop/telemetry"
)

// exportJob is an export running on its own goroutine against a config
// snapshot. Only the progress counters are shared with the preview.
type exportJob struct {
	cancel context.CancelFunc
	done   atomic.Int64
	total  atomic.Int64
	result chan exportOutcome
}

type exportOutcome struct {
	res *export.Result
	err error
}

// progress returns the completed fraction. A nil job reports zero.
func (j *exportJob) progress() float32 {
	if j == nil {
		return 0
	}
	total := j.total.Load()
	if total == 0 {
		return 0
	}
	return float32(j.done.Load()) / float32(total)
}

// startExport snapshots the live parameters and exports them in the
// background. The preview keeps running.
func (g *Game) startExport() {
	if g.export != nil {
		g.setStatus("export already running")
		return
	}

	cfg := g.loop.Snapshot()
	ctx, cancel := context.WithCancel(g.ctx)
	job := &exportJob{cancel: cancel, result: make(chan exportOutcome, 1)}
	g.export = job
	g.setStatus("exporting " + cfg.Derived.Kind.String())

	go func() {
		res, err := g.runExport(ctx, cfg, job)
		job.result <- exportOutcome{res: res, err: err}
	}()
}

func (g *Game) runExport(ctx context.Context, cfg *config.Config, job *exportJob) (*export.Result, error) {
	var om *telemetry.OutputManager
	if g.opts.OutputDir != "" {
		dir := filepath.Join(g.opts.OutputDir, "export-"+time.Now().Format("20060102-150405"))
		var err error
		if om, err = telemetry.NewOutputManager(dir); err != nil {
			return nil, err
		}
		defer om.Close()
	}

	p := &export.Pipeline{
		Logger: g.logger,
		Output: om,
		Progress: func(done, total int) {
			job.done.Store(int64(done))
			job.total.Store(int64(total))
		},
	}
	return p.ExportFile(ctx, cfg, g.opts.ExportPath)
}

// pollExport reports a finished export without blocking.
func (g *Game) pollExport() {
	if g.export == nil {
		return
	}
	select {
	case out := <-g.export.result:
		g.export.cancel()
		g.export = nil
		if out.err != nil {
			g.setError("export failed: " + out.err.Error())
			return
		}
		g.setStatus(fmt.Sprintf("exported %s (%d frames, %d KB)", out.res.Path, out.res.Frames, out.res.Bytes/1024))
	default:
	}
}

// stopExport cancels a running export and waits for it to abort.
func (g *Game) stopExport() {
	if g.export == nil {
		return
	}
	g.export.cancel()
	<-g.export.result
	g.export = nil
}
