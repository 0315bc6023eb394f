package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ohowland/caseform/internal/pkg/casedata"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate INPUT",
		Short: "Check a case container against the record invariants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runValidate(args[0]); err != nil {
				return &runError{err}
			}
			return nil
		},
	}
}

func runValidate(input string) error {
	cs, err := readCase(input)
	if err != nil {
		return err
	}

	if err := casedata.ValidateBusNumbers(cs.Buses, cs.Gens, cs.Branches, cs.DCLines); err != nil {
		return err
	}
	for _, g := range cs.Gens {
		if err := casedata.ValidateGen(g); err != nil {
			return err
		}
	}
	for _, br := range cs.Branches {
		if err := casedata.ValidateBranch(br); err != nil {
			return err
		}
	}
	for _, c := range cs.GenCosts {
		if err := casedata.ValidateGenCost(c); err != nil {
			return err
		}
	}

	fmt.Printf("%s: %d buses, %d gens, %d branches, %d dclines ok\n",
		cs.Case.Name, len(cs.Buses), len(cs.Gens), len(cs.Branches), len(cs.DCLines))
	return nil
}
