package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"nucore/internal/trace"
	"nucore/internal/types"
	"nucore/internal/value"
)

var typeCmd = &cobra.Command{
	Use:   "type [flags] <file>",
	Short: "Print the inferred type of a document",
	Long: `Print the type the shell infers for a document. With --like, also check
whether the document fits where a value shaped like another document is
expected, directly or through the implicit coercions`,
	Args: cobra.ExactArgs(1),
	RunE: runType,
}

func init() {
	typeCmd.Flags().String("like", "", "document whose inferred type the input is checked against")
	typeCmd.Flags().Bool("lift", false, "turn version and UUID strings into custom values")
}

// fitReport describes how a value relates to an expected type.
type fitReport struct {
	Got      types.Type
	Want     types.Type
	Subtype  bool
	Accepted bool
	Coerced  *value.Value // set when only a coercion makes it fit
	Err      error
}

func checkFit(v value.Value, want types.Type) fitReport {
	r := fitReport{Got: v.Type(), Want: want}
	r.Subtype = r.Got.IsSubtypeOf(want)
	r.Accepted = value.Accepts(want, v)
	if r.Accepted {
		return r
	}
	c, err := v.CoerceInto(want)
	if err != nil {
		r.Err = err
		return r
	}
	r.Coerced = &c
	return r
}

func (r fitReport) fits() bool {
	return r.Accepted || r.Coerced != nil
}

func runType(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd, s)
	if err != nil {
		return err
	}
	defer cleanup()

	like, err := cmd.Flags().GetString("like")
	if err != nil {
		return fmt.Errorf("failed to get like flag: %w", err)
	}

	reg := newRegistry(trace.FromContext(cmd.Context()))
	doc, err := loadDocument(args[0], reg, s.Lift)
	if err != nil {
		reportError(cmd.ErrOrStderr(), err, doc.File, s)
		return fmt.Errorf("cannot type %s", args[0])
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, doc.Value.Type().String())
	if like == "" {
		return nil
	}

	ref, err := loadDocument(like, reg, s.Lift)
	if err != nil {
		reportError(cmd.ErrOrStderr(), err, ref.File, s)
		return fmt.Errorf("cannot type %s", like)
	}
	r := checkFit(doc.Value, ref.Value.Type())
	renderFit(out, r, s.Width, reg)
	if !r.fits() {
		reportError(cmd.ErrOrStderr(), r.Err, doc.File, s)
		return fmt.Errorf("%s does not fit %s", args[0], like)
	}
	return nil
}

func renderFit(out io.Writer, r fitReport, width int, ops value.CustomOps) {
	yesNo := func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	}
	fmt.Fprintf(out, "expected: %s\n", r.Want.String())
	fmt.Fprintf(out, "subtype:  %s\n", yesNo(r.Subtype))
	fmt.Fprintf(out, "accepted: %s\n", yesNo(r.Accepted))
	if r.Coerced != nil {
		fmt.Fprintf(out, "coerced:  %s\n", r.Coerced.Abbreviate(width, ops))
	}
}
