package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ohowland/caseform/internal/pkg/caseio"
	"github.com/ohowland/caseform/internal/pkg/convert"
	"github.com/ohowland/caseform/internal/pkg/raw"
)

func newConvertCmd() *cobra.Command {
	var (
		output string
		name   string
		pretty bool
	)

	cmd := &cobra.Command{
		Use:   "convert INPUT",
		Short: "Convert a raw network document or case container to another format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runConvert(args[0], output, name, pretty); err != nil {
				return &runError{err}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path, format selected by extension")
	cmd.MarkFlagRequired("output")
	cmd.Flags().StringVar(&name, "name", "", "case name (defaults to the input file name)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	return cmd
}

func runConvert(input, output, name string, pretty bool) error {
	cs, err := loadInput(input, name)
	if err != nil {
		return err
	}
	if err := writeCase(output, cs, pretty); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", output)
	return nil
}

// loadInput reads the convert input: a raw network document runs the
// conversion engine, anything else loads as a case container.
func loadInput(path, name string) (*caseio.CaseSet, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() && filepath.Ext(path) == ".json" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		net := raw.Network{}
		if err := json.Unmarshal(data, &net); err != nil {
			return nil, fmt.Errorf("malformed JSON: %v", err)
		}
		if name == "" {
			name = caseName(path)
		}
		res, err := convert.ToCase(name, &net)
		if err != nil {
			return nil, err
		}
		return &caseio.CaseSet{
			Case:     res.Case,
			Buses:    res.Buses,
			Gens:     res.Gens,
			Branches: res.Branches,
			DCLines:  res.DCLines,
		}, nil
	}

	return readCase(path)
}
