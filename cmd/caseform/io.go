package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ohowland/caseform/internal/pkg/caseio"
)

// readCase loads a case container from a directory or a .case/.zip
// archive.
func readCase(path string) (*caseio.CaseSet, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return caseio.ReadDir(path)
	}
	switch ext := filepath.Ext(path); ext {
	case ".case", ".zip":
		return caseio.ReadZip(path)
	default:
		return nil, fmt.Errorf("unsupported case container %s", path)
	}
}

// writeCase stores a case in the format selected by the output path
// extension: none for a directory, .case/.zip for an archive, .m for a
// MATPOWER M-file, .json for a column oriented dataset.
func writeCase(path string, cs *caseio.CaseSet, pretty bool) error {
	switch ext := filepath.Ext(path); ext {
	case "":
		return caseio.WriteDir(path, cs)
	case ".case", ".zip":
		return caseio.WriteZip(path, cs)
	case ".m":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := caseio.WriteMPC(f, cs); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	case ".json":
		ds := caseio.NewDataset(cs.Case, cs.Buses, cs.Gens, cs.Branches)
		data, err := marshalJSON(ds, pretty)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o664)
	default:
		return fmt.Errorf("unsupported output format %s", ext)
	}
}

func marshalJSON(v interface{}, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// caseName derives a case name from a file path.
func caseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
