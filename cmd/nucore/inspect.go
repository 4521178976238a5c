package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"nucore/internal/diag"
	"nucore/internal/diagfmt"
	"nucore/internal/observ"
	"nucore/internal/pipeline"
	"nucore/internal/plugin"
	"nucore/internal/source"
	"nucore/internal/trace"
	"nucore/internal/value"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] <file>...",
	Short: "Show the type and contents of structured documents",
	Long: `Load TOML documents or wire frames (.msgpack, .mp, .json) and print the
type and abbreviated contents of each. Files are processed in parallel`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().String("path", "", "cell path to follow inside each document, e.g. package.authors.0?")
	inspectCmd.Flags().Bool("rows", false, "stream the selected list and print one row per line")
	inspectCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	inspectCmd.Flags().Int("width", 80, "abbreviate values to this many columns")
	inspectCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	inspectCmd.Flags().Bool("lift", false, "turn version and UUID strings into custom values")
}

// inspectResult is what one worker produced for one file.
type inspectResult struct {
	Path  string
	Type  string
	Value string
	Rows  []string

	Timing   *observ.Report
	Bag      *diag.Bag
	File     *source.File
	PathBag  *diag.Bag // cell path diagnostics point into the --path text
	PathFile *source.File
}

func (r *inspectResult) failed() bool {
	return r.Bag.HasErrors() || r.PathBag.HasErrors()
}

type inspectPayload struct {
	Path        string                   `json:"path"`
	Type        string                   `json:"type,omitempty"`
	Value       string                   `json:"value,omitempty"`
	Rows        []string                 `json:"rows,omitempty"`
	Diagnostics []diagfmt.DiagnosticJSON `json:"diagnostics,omitempty"`
	Timings     *observ.Report           `json:"timings,omitempty"`
}

// defaultMaxRows caps --rows output for long but bounded streams.
const defaultMaxRows = 10_000

type inspectOptions struct {
	path     *value.CellPath
	pathText string
	rows     bool
	maxRows  int // 0 means defaultMaxRows
	timings  bool
	settings settings
}

func runInspect(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd, s)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := inspectOptions{settings: s}
	if opts.pathText, err = cmd.Flags().GetString("path"); err != nil {
		return fmt.Errorf("failed to get path flag: %w", err)
	}
	if opts.rows, err = cmd.Flags().GetBool("rows"); err != nil {
		return fmt.Errorf("failed to get rows flag: %w", err)
	}
	if opts.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}

	if opts.pathText != "" {
		cp, err := value.ParseCellPath(opts.pathText)
		if err != nil {
			d := diag.From(err, source.Unknown)
			diagfmt.PrettyOne(cmd.ErrOrStderr(), d, source.NewFile("--path", []byte(opts.pathText)), prettyOpts(s))
			return fmt.Errorf("invalid cell path %q", opts.pathText)
		}
		opts.path = &cp
	}

	span, ctx := trace.BeginCtx(cmd.Context(), trace.ScopeCommand, "inspect")
	reg := newRegistry(trace.FromContext(ctx))
	results, err := inspectFiles(ctx, args, reg, opts, jobs)
	if err != nil {
		span.End("aborted")
		return err
	}

	failed := 0
	for i := range results {
		if results[i].failed() {
			failed++
		}
	}
	if s.Format == "json" {
		if err := renderInspectJSON(cmd.OutOrStdout(), results, s); err != nil {
			return err
		}
	} else {
		renderInspectPretty(cmd.OutOrStdout(), cmd.ErrOrStderr(), results, s)
	}
	span.End(fmt.Sprintf("%d/%d failed", failed, len(results)))
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(results))
	}
	return nil
}

// inspectFiles loads and inspects every file on a bounded worker pool.
// Results keep the order of paths.
func inspectFiles(ctx context.Context, paths []string, reg *plugin.Registry, opts inspectOptions, jobs int) ([]inspectResult, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]inspectResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = inspectOne(gctx, path, reg, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// inspectOne never fails; problems end up in the result's bags.
func inspectOne(ctx context.Context, path string, reg *plugin.Registry, opts inspectOptions) (res inspectResult) {
	span, _ := trace.BeginCtx(ctx, trace.ScopeCommand, "file")
	span.WithExtra("path", path)
	s := opts.settings
	res = inspectResult{
		Path:    path,
		Bag:     diag.NewBag(s.MaxDiagnostics),
		PathBag: diag.NewBag(s.MaxDiagnostics),
	}
	if opts.path != nil {
		res.PathFile = source.NewFile("--path", []byte(opts.pathText))
	}
	var timer *observ.Timer
	if opts.timings {
		timer = observ.NewTimer()
		defer func() {
			report := timer.Report()
			res.Timing = &report
		}()
	}

	endLoad := timer.Track("load")
	doc, err := loadDocument(path, reg, s.Lift)
	res.File = doc.File
	if err != nil {
		endLoad("error")
		res.Bag.Add(diag.From(err, source.Unknown))
		span.End("load failed")
		return res
	}
	endLoad("")

	meta := pipeline.FileMetadata(path)
	data := pipeline.FromValue(doc.Value, meta)
	if opts.path != nil {
		endFollow := timer.Track("follow")
		v, err := data.FollowCellPath(*opts.path, source.Unknown, reg)
		if err != nil {
			endFollow("error")
			res.PathBag.Add(diag.From(err, source.Unknown))
			span.End("path failed")
			return res
		}
		endFollow(opts.pathText)
		data = pipeline.FromValue(v, meta)
	}

	v, _ := data.Value()
	res.Type = v.Type().String()
	res.Value = v.Abbreviate(s.Width, reg)
	if opts.rows {
		endRows := timer.Track("rows")
		defer func() { endRows(fmt.Sprintf("%d rows", len(res.Rows))) }()
		if r, ok := v.AsRange(); ok && r.Bound() == value.BoundUnbounded {
			if _, err := data.TryExpandRange(); err != nil {
				res.Bag.Add(diag.From(err, v.Span()))
				span.End("unbounded rows")
				return res
			}
		}
		limit := opts.maxRows
		if limit <= 0 {
			limit = defaultMaxRows
		}
		rows := pipeline.FromStream(data.Values(), meta).WithContext(ctx)
		for row := range rows.Values() {
			if len(res.Rows) == limit {
				res.Bag.Add(diag.New(diag.RunGeneric, v.Span(),
					fmt.Sprintf("output stopped after %d rows", limit), "this value has more rows").
					WithSeverity(diag.SevWarning))
				break
			}
			if e, ok := row.AsError(); ok {
				res.Bag.Add(e)
				continue
			}
			res.Rows = append(res.Rows, row.Abbreviate(s.Width, reg))
		}
	}
	span.End(res.Type)
	return res
}

func prettyOpts(s settings) diagfmt.PrettyOpts {
	return diagfmt.PrettyOpts{
		Color:     s.useColor(os.Stderr),
		Context:   1,
		ShowNotes: true,
	}
}

func renderInspectPretty(out, errOut io.Writer, results []inspectResult, s settings) {
	opts := prettyOpts(s)
	for i := range results {
		r := &results[i]
		r.Bag.Sort()
		if r.Type == "" {
			diagfmt.Pretty(errOut, r.Bag, r.File, opts)
			diagfmt.Pretty(errOut, r.PathBag, r.PathFile, opts)
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", r.Path, r.Type)
		if len(r.Rows) == 0 {
			fmt.Fprintf(out, "  %s\n", r.Value)
		}
		for n, row := range r.Rows {
			fmt.Fprintf(out, "  %d  %s\n", n, row)
		}
		// ошибки в строках не прерывают вывод
		diagfmt.Pretty(errOut, r.Bag, r.File, opts)
		if r.Timing != nil {
			fmt.Fprint(errOut, r.Timing.Summary(r.Path))
		}
	}
}

func renderInspectJSON(out io.Writer, results []inspectResult, s settings) error {
	payload := make([]inspectPayload, 0, len(results))
	jsonOpts := diagfmt.JSONOpts{IncludePositions: true, Max: s.MaxDiagnostics, IncludeCauses: true}
	for i := range results {
		r := &results[i]
		p := inspectPayload{Path: r.Path, Type: r.Type, Value: r.Value, Rows: r.Rows, Timings: r.Timing}
		p.Diagnostics = append(p.Diagnostics, diagfmt.BuildDiagnosticsOutput(r.Bag, r.File, jsonOpts).Diagnostics...)
		p.Diagnostics = append(p.Diagnostics, diagfmt.BuildDiagnosticsOutput(r.PathBag, r.PathFile, jsonOpts).Diagnostics...)
		payload = append(payload, p)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
