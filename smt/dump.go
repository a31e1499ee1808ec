package smt

import (
	"fmt"
	"io"
)

// WriteSMT2 renders a minimal SMT-LIB2 script asserting each of terms, in
// order. It exists to back the mus_dump_smt2 configuration option: a
// debugging aid, not a parser round-trip target, so it does not attempt to
// emit declare-sort/declare-fun preambles for every symbol — callers that
// need a fully replayable script should use a real SMT solver's own
// dump_smt2 instead.
func WriteSMT2(w io.Writer, terms []Term) error {
	for _, t := range terms {
		if _, err := fmt.Fprintf(w, "(assert %s)\n", t.String()); err != nil {
			return err
		}
	}
	return nil
}
