package musspec

import (
	"context"
	"os"
	"os/exec"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fmcheck/mus-engine/mus"
)

// This spec re-invokes the test binary in a subprocess, focused on itself
// via -ginkgo.focus, to drive a satisfiable query through Engine.CheckUntil
// without the real os.Exit(1) path killing the outer ginkgo run.
var _ = Describe("CheckUntil on a satisfiable query", func() {
	It("aborts the host process with exit code 1, mirroring the documented MUST backend limitation", func() {
		if os.Getenv("MUS_E2E_EXIT_SUBPROCESS") == "1" {
			solver, prop := satisfiableLatchFixture()
			engine, err := mus.New(solver, prop)
			if err != nil {
				os.Exit(2)
			}
			_, _ = engine.CheckUntil(context.Background(), 10)
			os.Exit(0) // unreachable if CheckUntil behaves as documented
		}

		cmd := exec.Command(os.Args[0], "-test.run=TestMus", "-ginkgo.focus=aborts the host process with exit code 1")
		cmd.Env = append(os.Environ(), "MUS_E2E_EXIT_SUBPROCESS=1")
		err := cmd.Run()

		var exitErr *exec.ExitError
		Expect(err).To(BeAssignableToTypeOf(exitErr))
		Expect(err.(*exec.ExitError).ExitCode()).To(Equal(1))
	})
})
