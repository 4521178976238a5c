package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nucore/internal/trace"
)

// setupTracing initializes the tracer described by s and attaches it to the
// command context. It returns a cleanup function that flushes and closes it.
func setupTracing(cmd *cobra.Command, s settings) (func(), error) {
	ringSize, err := cmd.Root().PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	level, err := trace.ParseLevel(s.Trace.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}

	// If level is off and no output specified, skip tracing
	if level == trace.LevelOff && s.Trace.Output == "" {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	mode, err := trace.ParseMode(s.Trace.Mode)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: s.Trace.Output,
		RingSize:   ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)

	cleanup := func() {
		// ring mode keeps only the tail; show it on exit
		if ring, ok := tracer.(*trace.RingTracer); ok {
			if err := ring.Dump(cmd.ErrOrStderr(), trace.FormatText); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
			}
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}
