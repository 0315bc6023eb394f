package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ohowland/caseform/internal/pkg/casedata"
	"github.com/ohowland/caseform/internal/pkg/convert"
)

func newReverseCmd() *cobra.Command {
	var (
		output string
		pretty bool
	)

	cmd := &cobra.Command{
		Use:   "reverse INPUT",
		Short: "Disassemble a case container into a raw network document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runReverse(args[0], output, pretty); err != nil {
				return &runError{err}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "raw network JSON output path")
	cmd.MarkFlagRequired("output")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	return cmd
}

func runReverse(input, output string, pretty bool) error {
	cs, err := readCase(input)
	if err != nil {
		return err
	}

	busIndex := casedata.BusIndex(cs.Buses)
	net, err := convert.ToRaw(cs.Case, cs.Buses, cs.Gens, cs.Branches, cs.DCLines, busIndex)
	if err != nil {
		return err
	}

	data, err := marshalJSON(net, pretty)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0o664); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", output)
	return nil
}
