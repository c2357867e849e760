package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"github.com/piwi3910/RectFit/internal/api"
	"github.com/piwi3910/RectFit/internal/engine"
	"github.com/piwi3910/RectFit/internal/export"
	"github.com/piwi3910/RectFit/internal/gcode"
	"github.com/piwi3910/RectFit/internal/importer"
	"github.com/piwi3910/RectFit/internal/model"
	"github.com/piwi3910/RectFit/internal/store"
)

// parse parses the command line, treating --help as success.
func parse(fs *pflag.FlagSet, args []string) (help bool, err error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// ─── fit ───────────────────────────────────────────────────

func runFit(ctx context.Context, e *env, args []string) error {
	fs, configPath, verbose := e.newFlagSet("fit")
	input := fs.StringP("input", "i", "", "polygon file (.csv, .xlsx, .dxf, .geojson)")
	outputs := fs.StringSliceP("output", "o", nil, "output files: .pdf report, .labels.pdf, .svg, .xlsx, .nc/.gcode")
	profile := fs.String("profile", "", "GCode profile name, overrides the config")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}
	if *input == "" {
		return errors.New("fit: --input is required")
	}
	if err := e.setup(*configPath, *verbose); err != nil {
		return err
	}

	regions, err := e.importRegions(*input)
	if err != nil {
		return err
	}
	entries := e.fitRegions(ctx, regions)
	e.printEntries(entries)
	if len(entries) == 0 {
		return errors.New("fit: no rectangle found for any region")
	}

	cut := e.cfg.GCode.CutSettings
	if *profile != "" {
		cut.GCodeProfile = *profile
	}
	for _, out := range *outputs {
		if err := e.writeOutput(out, entries, cut); err != nil {
			return err
		}
		e.logger.Info("wrote output", "path", out)
	}
	return nil
}

func (e *env) importRegions(path string) ([]model.Region, error) {
	res := importer.Import(path)
	for _, w := range res.Warnings {
		e.logger.Warn(w, "file", path)
	}
	if len(res.Regions) == 0 {
		if len(res.Errors) == 0 {
			return nil, fmt.Errorf("no regions found in %s", path)
		}
		return nil, fmt.Errorf("failed to import %s: %s", path, strings.Join(res.Errors, "; "))
	}
	for _, msg := range res.Errors {
		e.logger.Warn(msg, "file", path)
	}
	return res.Regions, nil
}

// fitRegions fits each region in order. Regions without a feasible
// rectangle are logged and left out.
func (e *env) fitRegions(ctx context.Context, regions []model.Region) []export.Entry {
	opt := engine.New(e.cfg.Engine, e.engineOptions(engine.NewGridCache())...)
	entries := make([]export.Entry, 0, len(regions))
	for _, r := range regions {
		res, err := opt.Fit(ctx, r.Outline)
		if err != nil {
			e.logger.Warn("fit failed", "region", r.Label, "error", err)
			continue
		}
		if res.Truncated {
			e.logger.Info("search truncated by time budget", "region", r.Label)
		}
		entries = append(entries, export.Entry{
			Key:     regionKey(r),
			Label:   r.Label,
			Outline: r.Outline,
			Result:  res,
		})
	}
	return entries
}

// regionKey is the store key of a single region.
func regionKey(r model.Region) string {
	if r.Label != "" {
		return store.Key([]string{r.Label})
	}
	return store.Key([]string{r.ID})
}

func (e *env) printEntries(entries []export.Entry) {
	fmt.Fprintf(e.stdout, "%-24s %10s %10s %8s %12s %8s  %-26s %8s\n",
		"REGION", "WIDTH", "HEIGHT", "ANGLE", "AREA", "COVER%", "METHOD", "MS")
	for _, en := range entries {
		r := en.Result.Rectangle
		fmt.Fprintf(e.stdout, "%-24s %10.2f %10.2f %8.2f %12.2f %8.1f  %-26s %8.1f\n",
			en.Label, r.Width, r.Height, r.AngleDeg, r.Area, en.Coverage(),
			en.Result.Method, float64(en.Result.Elapsed.Microseconds())/1000)
	}
}

// writeOutput dispatches on the output file name.
func (e *env) writeOutput(path string, entries []export.Entry, cut model.CutSettings) error {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".labels.pdf"):
		return export.ExportLabels(path, entries)
	case strings.HasSuffix(lower, ".pdf"):
		return export.ExportPDF(path, entries)
	case strings.HasSuffix(lower, ".xlsx"):
		return export.ExportXLSX(path, entries)
	case strings.HasSuffix(lower, ".svg"):
		for i, en := range entries {
			if err := export.ExportSVG(numberedPath(path, i, len(entries)), en); err != nil {
				return err
			}
		}
		return nil
	case strings.HasSuffix(lower, ".nc"), strings.HasSuffix(lower, ".gcode"),
		strings.HasSuffix(lower, ".ngc"), strings.HasSuffix(lower, ".tap"):
		return e.writeGCode(path, entries, cut)
	}
	return fmt.Errorf("unsupported output type %q", filepath.Ext(path))
}

func (e *env) writeGCode(path string, entries []export.Entry, cut model.CutSettings) error {
	var custom []model.GCodeProfile
	if p := e.cfg.GCode.ProfilesPath; p != "" {
		var err error
		if custom, err = gcode.LoadCustomProfiles(p); err != nil {
			return err
		}
	}
	gen := gcode.NewWithProfiles(cut, custom)

	for i, en := range entries {
		code := gen.Generate(en.Label, en.Result.Rectangle)
		excursions := gcode.CheckSlabClearance(gcode.Parse(code), en.Outline, cut.ToolDiameter)
		for _, w := range gcode.FormatClearanceWarnings(excursions) {
			e.logger.Warn(w, "region", en.Label)
		}
		out := numberedPath(path, i, len(entries))
		if err := os.WriteFile(out, []byte(code), 0644); err != nil {
			return fmt.Errorf("failed to write GCode file: %w", err)
		}
	}
	return nil
}

// numberedPath inserts a 1-based index before the extension when more
// than one file is written.
func numberedPath(path string, i, n int) string {
	if n <= 1 {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(path, ext), i+1, ext)
}

// ─── batch ─────────────────────────────────────────────────

func runBatch(ctx context.Context, e *env, args []string) error {
	fs, configPath, verbose := e.newFlagSet("batch")
	input := fs.StringP("input", "i", "", "polygon file (.csv, .xlsx, .dxf, .geojson)")
	storePath := fs.String("store", "", "result store (.json, .db); defaults to the config")
	workers := fs.IntP("workers", "w", runtime.NumCPU(), "parallel fits")
	report := fs.StringP("output", "o", "", "optional XLSX report")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}
	if *input == "" {
		return errors.New("batch: --input is required")
	}
	if err := e.setup(*configPath, *verbose); err != nil {
		return err
	}
	if *storePath == "" {
		*storePath = e.cfg.Store.Path
	}

	regions, err := e.importRegions(*input)
	if err != nil {
		return err
	}
	jobs := make([]engine.Job, len(regions))
	for i, r := range regions {
		jobs[i] = engine.Job{Key: regionKey(r), Outline: r.Outline}
	}

	st, err := store.Open(*storePath)
	if err != nil {
		return err
	}
	defer st.Close()

	start := time.Now()
	results, err := engine.PrecomputeAll(ctx, e.cfg.Engine, jobs, *workers, e.engineOptions(nil)...)
	if err != nil {
		return fmt.Errorf("batch cancelled: %w", err)
	}

	var entries []export.Entry
	failed := 0
	for i, jr := range results {
		if jr.Err != nil {
			failed++
			e.logger.Warn("fit failed", "key", jr.Key, "error", jr.Err)
			continue
		}
		if err := st.Put(store.NewRecord(jr.Key, jr.Result)); err != nil {
			return err
		}
		r := regions[i]
		entries = append(entries, export.Entry{Key: jr.Key, Label: r.Label, Outline: r.Outline, Result: jr.Result})
	}
	e.logger.Info("batch complete",
		"stored", len(entries), "failed", failed, "store", *storePath, "elapsed", time.Since(start))
	fmt.Fprintf(e.stdout, "stored %d of %d results in %s\n", len(entries), len(jobs), *storePath)

	if *report != "" {
		return export.ExportXLSX(*report, entries)
	}
	return nil
}

// ─── sweep ─────────────────────────────────────────────────

func runSweep(ctx context.Context, e *env, args []string) error {
	fs, configPath, verbose := e.newFlagSet("sweep")
	input := fs.StringP("input", "i", "", "polygon file (.csv, .xlsx, .dxf, .geojson)")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}
	if *input == "" {
		return errors.New("sweep: --input is required")
	}
	if err := e.setup(*configPath, *verbose); err != nil {
		return err
	}

	regions, err := e.importRegions(*input)
	if err != nil {
		return err
	}
	scenarios := engine.BuildDefaultScenarios(e.cfg.Engine)
	cache := engine.NewGridCache()
	for _, r := range regions {
		results := engine.CompareScenarios(ctx, scenarios, r.Outline, e.engineOptions(cache)...)

		fmt.Fprintf(e.stdout, "%s\n", r.Label)
		for _, res := range results {
			if res.Err != nil {
				fmt.Fprintf(e.stdout, "  %-28s %v\n", res.Scenario.Name, res.Err)
				continue
			}
			fmt.Fprintf(e.stdout, "  %-28s %12.2f %7.1f%%  %-26s %8.1fms%s\n",
				res.Scenario.Name, res.Area, res.Coverage, res.Result.Method,
				float64(res.Elapsed.Microseconds())/1000, truncatedMark(res.Truncated))
		}
		sum := engine.Summarize(results)
		fmt.Fprintf(e.stdout, "  runs %d, failed %d, area %.2f ± %.2f, elapsed %.1f ± %.1f ms, best %q\n",
			sum.Runs, sum.Failures, sum.MeanArea, sum.StdDevArea, sum.MeanElapsedMs, sum.StdDevElapsed, sum.Best)
	}
	return nil
}

func truncatedMark(t bool) string {
	if t {
		return " (truncated)"
	}
	return ""
}

// ─── serve ─────────────────────────────────────────────────

func runServe(ctx context.Context, e *env, args []string) error {
	fs, configPath, verbose := e.newFlagSet("serve")
	addr := fs.String("addr", "", "listen address; defaults to the config")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}
	if err := e.setup(*configPath, *verbose); err != nil {
		return err
	}
	if *addr == "" {
		*addr = e.cfg.Server.Addr
	}

	var st store.Store
	if p := e.cfg.Store.Path; p != "" {
		var err error
		if st, err = store.Open(p); err != nil {
			return err
		}
		defer st.Close()
	}

	gin.SetMode(e.cfg.Server.Mode)
	srv := &http.Server{
		Addr:              *addr,
		Handler:           api.NewRouter(e.cfg.Engine, st, e.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	e.logger.Info("listening", "addr", *addr, "store", e.cfg.Store.Path)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
