package kerr

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"gonum.org/v1/gonum/stat"
)

// ProgressFunc is invoked from a single goroutine on a ticker, never from a
// worker goroutine, so it never sits in the per-ray hot path (SPEC_FULL.md
// §4.11, grounded on mission.go's ticker-driven LogStatus).
type ProgressFunc func(done, total int)

// RenderStats collects the advisory, relaxed-atomic counters of §5: final
// values are exact, intermediate values (if read mid-render through a
// ProgressFunc) are not guaranteed to be.
type RenderStats struct {
	DiscHits      int64
	PixelsDone    int64
	PerOrderHits  []int64
	QualityLE1e12 int64 // |g_μν k^μ k^ν| <= 1e-12
	QualityLE1e9  int64 // in (1e-12, 1e-9]
	QualityOver   int64 // > 1e-9
}

// RenderOutput bundles everything one Render call produces.
type RenderOutput struct {
	Maps          *TransferMaps
	HighPrecision *HighPrecisionTable // nil unless requested.
	Stats         RenderStats
}

// Render executes the C5 multi-order driver: one pinhole ray per pixel,
// fanned out over a worker pool, each ray independently initialised and
// integrated, each pixel owning disjoint slots of the output buffers
// (spec.md §4.5/§5). logger defaults to a no-op logger if nil; progress
// defaults to no reporting if nil.
func Render(ctx context.Context, bh BlackHole, cam Camera, rc RenderConfig, dir OrbitDirection, tol Tolerances, exportPrecision bool, logger kitlog.Logger, progress ProgressFunc) (*RenderOutput, error) {
	if logger == nil {
		logger = NopLogger()
	}

	diagCtx, cancelDiag := context.WithTimeout(ctx, tol.DiagnosticTimeout)
	runDiagnostics(diagCtx, bh, cam, logger)
	cancelDiag()

	maps := NewTransferMaps(rc)
	var hp *HighPrecisionTable
	if exportPrecision {
		hp = NewHighPrecisionTable(rc)
	}

	perOrderHits := make([]int64, rc.MaxOrders)
	var discHits, done, qualityLE1e12, qualityLE1e9, qualityOver int64
	total := int64(rc.Width) * int64(rc.Height)

	var progressWG sync.WaitGroup
	stopProgress := make(chan struct{})
	if progress != nil {
		progressWG.Add(1)
		go func() {
			defer progressWG.Done()
			ticker := time.NewTicker(250 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					progress(int(atomic.LoadInt64(&done)), int(total))
				case <-stopProgress:
					progress(int(atomic.LoadInt64(&done)), int(total))
					return
				}
			}
		}()
	}

	rows := make(chan int)
	workers := runtime.NumCPU()
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range rows {
				renderRow(bh, cam, rc, dir, tol, maps, hp, y,
					&discHits, &done, perOrderHits, &qualityLE1e12, &qualityLE1e9, &qualityOver)
			}
		}()
	}

	var ctxErr error
rowLoop:
	for y := 0; y < rc.Height; y++ {
		select {
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break rowLoop
		default:
			rows <- y
		}
	}
	close(rows)
	wg.Wait()
	if progress != nil {
		close(stopProgress)
		progressWG.Wait()
	}

	stats := RenderStats{
		DiscHits:      atomic.LoadInt64(&discHits),
		PixelsDone:    atomic.LoadInt64(&done),
		PerOrderHits:  perOrderHits,
		QualityLE1e12: atomic.LoadInt64(&qualityLE1e12),
		QualityLE1e9:  atomic.LoadInt64(&qualityLE1e9),
		QualityOver:   atomic.LoadInt64(&qualityOver),
	}
	logger.Log("level", "info", "component", "driver", "disc_hits", stats.DiscHits, "pixels_done", stats.PixelsDone)
	if hp != nil {
		logMeanPhiWraps(hp, logger)
	}

	return &RenderOutput{Maps: maps, HighPrecision: hp, Stats: stats}, ctxErr
}

// logMeanPhiWraps reports the mean φ-winding per order as an S5-style
// sanity signal (order k+1's photon-ring rays should wind further than
// order k's): a cheap post-render summary, not part of the hot path.
func logMeanPhiWraps(hp *HighPrecisionTable, logger kitlog.Logger) {
	for order, slots := range hp.slots {
		var wraps []float64
		for _, s := range slots {
			if s != nil && s.hit {
				wraps = append(wraps, s.crossing.PhiWraps)
			}
		}
		if len(wraps) == 0 {
			continue
		}
		logger.Log("level", "info", "component", "driver", "order", order, "mean_phi_wraps", stat.Mean(wraps, nil))
	}
}

// renderRow runs the per-pixel pipeline (§4.5 steps 1-5) for one image row.
func renderRow(bh BlackHole, cam Camera, rc RenderConfig, dir OrbitDirection, tol Tolerances,
	maps *TransferMaps, hp *HighPrecisionTable, y int,
	discHits, done *int64, perOrderHits []int64, qualityLE1e12, qualityLE1e9, qualityOver *int64) {
	for x := 0; x < rc.Width; x++ {
		ray := PixelRay(cam, rc, x, y)
		ps, signθ0, err := InitTetrad(bh, ray.Origin, ray.Direction, false)
		if err != nil {
			// Degenerate tetrad at this pixel's direction: every slot for
			// this pixel is left at its zero sentinel; the high-precision
			// table, if enabled, records it explicitly as Aborted.
			if hp != nil {
				hp.WriteTermination(x, y, TerminationRecord{Reason: Aborted})
			}
			atomic.AddInt64(done, 1)
			continue
		}

		results := IntegrateRay(bh, ps, signθ0, dir, rc, tol)
		for k, res := range results {
			switch {
			case res.Crossing != nil:
				c := *res.Crossing
				maps.WriteHit(x, y, k, c)
				if hp != nil {
					hp.WriteHit(x, y, k, c)
				}
				atomic.AddInt64(&perOrderHits[k], 1)
				if k == 0 {
					atomic.AddInt64(discHits, 1)
				}
				switch {
				case c.NullError <= 1e-12:
					atomic.AddInt64(qualityLE1e12, 1)
				case c.NullError <= 1e-9:
					atomic.AddInt64(qualityLE1e9, 1)
				default:
					atomic.AddInt64(qualityOver, 1)
				}
			case res.Termination != nil && k == 0 && hp != nil:
				hp.WriteTermination(x, y, *res.Termination)
			}
		}
		atomic.AddInt64(done, 1)
	}
}

// runDiagnostics implements spec.md §4.5's optional startup sanity check: a
// coarse grid sample of the fraction of rays that can reach the equator
// (Θ(θ₀) > 0) and fall inward (R(r₀) > 0). Near-zero fractions almost
// certainly indicate a broken initializer; this only logs, it never aborts
// the render. ctx bounds how long this is allowed to run (Tolerances.
// DiagnosticTimeout, via Render) — a timeout only truncates the sample, it
// never turns into an error, since the diagnostic is advisory.
func runDiagnostics(ctx context.Context, bh BlackHole, cam Camera, logger kitlog.Logger) {
	const grid = 16
	rc := RenderConfig{Width: grid, Height: grid, MaxOrders: 1}
	thetaOK, rOK, sampled := 0, 0, 0
rows:
	for y := 0; y < grid; y++ {
		select {
		case <-ctx.Done():
			logger.Log("level", "warn", "component", "diagnostics", "msg", "diagnostic grid timed out, using partial sample")
			break rows
		default:
		}
		for x := 0; x < grid; x++ {
			ray := PixelRay(cam, rc, x, y)
			ps, _, err := InitTetrad(bh, ray.Origin, ray.Direction, false)
			if err != nil {
				continue
			}
			sampled++
			if polarPotential(bh, ps, ps.Theta) > 0 {
				thetaOK++
			}
			if radialPotential(bh, ps, ps.R) > 0 {
				rOK++
			}
		}
	}
	if sampled == 0 {
		logger.Log("level", "warn", "component", "diagnostics", "msg", "no sampled ray produced a valid tetrad")
		return
	}
	thetaFrac := float64(thetaOK) / float64(sampled)
	rFrac := float64(rOK) / float64(sampled)
	logger.Log("level", "info", "component", "diagnostics", "theta_frac", thetaFrac, "r_frac", rFrac)
	if thetaFrac < 1e-6 || rFrac < 1e-6 {
		logger.Log("level", "warn", "component", "diagnostics", "msg", "near-zero reachability fraction, initializer is likely wrong")
	}
}
