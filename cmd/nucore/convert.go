package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"nucore/internal/diag"
	"nucore/internal/diagfmt"
	"nucore/internal/plugin"
	"nucore/internal/source"
	"nucore/internal/trace"
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] <input>",
	Short: "Convert a document into a plugin wire frame",
	Long: `Read a TOML document or a wire frame and write it as a single frame in the
chosen codec. The codec defaults to the output file extension, then to
[wire].codec from nucore.toml`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringP("output", "o", "-", "output file (- for stdout)")
	convertCmd.Flags().String("codec", "msgpack", "wire codec (msgpack|json)")
	convertCmd.Flags().Bool("lift", false, "turn version and UUID strings into custom values")
	convertCmd.Flags().Bool("base", false, "replace custom values with their base values before writing")
}

func runConvert(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd, s)
	if err != nil {
		return err
	}
	defer cleanup()

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	toBase, err := cmd.Flags().GetBool("base")
	if err != nil {
		return fmt.Errorf("failed to get base flag: %w", err)
	}

	codec, err := plugin.CodecByName(s.Codec)
	if err != nil {
		return err
	}
	if c, ok := codecForPath(output); ok && !cmd.Flags().Changed("codec") {
		codec = c
	}

	tracer := trace.FromContext(cmd.Context())
	reg := newRegistry(tracer)
	doc, err := loadDocument(args[0], reg, s.Lift)
	if err != nil {
		reportError(cmd.ErrOrStderr(), err, doc.File, s)
		return fmt.Errorf("cannot convert %s", args[0])
	}

	v := doc.Value
	if toBase {
		if v, err = reg.ToBaseValue(v); err != nil {
			reportError(cmd.ErrOrStderr(), err, doc.File, s)
			return fmt.Errorf("cannot convert %s", args[0])
		}
	}
	frame, err := reg.Marshal(v, codec)
	if err != nil {
		reportError(cmd.ErrOrStderr(), err, doc.File, s)
		return fmt.Errorf("cannot convert %s", args[0])
	}

	if err := writeOutput(cmd.OutOrStdout(), output, frame); err != nil {
		return err
	}
	trace.Point(tracer, trace.ScopeCommand, "convert", codec.Name())
	if output != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s, %s)\n", output, codec.Name(), humanize.IBytes(uint64(len(frame))))
	}
	return nil
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "-" || path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// reportError renders err as a diagnostic; f may be nil for wire inputs.
func reportError(w io.Writer, err error, f *source.File, s settings) {
	diagfmt.PrettyOne(w, diag.From(err, source.Unknown), f, prettyOpts(s))
}
