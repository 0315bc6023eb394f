// Command caseform converts power flow cases between formats: raw
// network JSON documents, case containers (directory or zip archive),
// MATPOWER M-files and column oriented JSON datasets.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// runError marks a failure inside a verb, as opposed to a usage error.
type runError struct {
	err error
}

func (e *runError) Error() string {
	return e.err.Error()
}

func (e *runError) Unwrap() error {
	return e.err
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "caseform",
		Short:         "Convert power flow cases between raw, case, MPC and dataset formats",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newConvertCmd(), newReverseCmd(), newValidateCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var rerr *runError
		if errors.As(err, &rerr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
