// Package caseio stores power flow cases on disk. A case is a set of
// CSV record collections bundled either as files in a directory or as
// entries of a zip archive. case.csv and bus.csv are mandatory when
// reading, the remaining collections default to empty, and empty
// collections are skipped when writing. The package also renders a
// case as a MATPOWER M-file and as a column oriented JSON dataset.
package caseio

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ohowland/caseform/internal/pkg/casedata"
)

// Collection file names inside a case directory or zip archive.
const (
	CaseFile    = "case.csv"
	BusFile     = "bus.csv"
	GenFile     = "gen.csv"
	BranchFile  = "branch.csv"
	GenCostFile = "gencost.csv"
	DCLineFile  = "dcline.csv"
	ReadmeFile  = "README"
	LicenseFile = "LICENSE"
)

// CaseSet is one complete case: the header record, the record
// collections and any bundled documentation.
type CaseSet struct {
	Case     casedata.Case      `json:"case"`
	Buses    []casedata.Bus     `json:"bus"`
	Gens     []casedata.Gen     `json:"gen,omitempty"`
	Branches []casedata.Branch  `json:"branch,omitempty"`
	GenCosts []casedata.GenCost `json:"gencost,omitempty"`
	DCLines  []casedata.DCLine  `json:"dcline,omitempty"`
	README   string             `json:"readme,omitempty"`
	License  string             `json:"license,omitempty"`
}

// ReadDir loads a case from the collection files in dirPath. case.csv
// and bus.csv must exist.
func ReadDir(dirPath string) (*CaseSet, error) {
	cs := &CaseSet{}

	caseFile, err := os.Open(filepath.Join(dirPath, CaseFile))
	if err != nil {
		return nil, err
	}
	cs.Case, err = decodeCase(caseFile)
	caseFile.Close()
	if err != nil {
		return nil, err
	}

	busFile, err := os.Open(filepath.Join(dirPath, BusFile))
	if err != nil {
		return nil, err
	}
	cs.Buses, err = decodeBuses(busFile)
	busFile.Close()
	if err != nil {
		return nil, err
	}

	if err := readDirOptional(dirPath, GenFile, func(r io.Reader) error {
		cs.Gens, err = decodeGens(r)
		return err
	}); err != nil {
		return nil, err
	}
	if err := readDirOptional(dirPath, BranchFile, func(r io.Reader) error {
		cs.Branches, err = decodeBranches(r)
		return err
	}); err != nil {
		return nil, err
	}
	if err := readDirOptional(dirPath, GenCostFile, func(r io.Reader) error {
		cs.GenCosts, err = decodeGenCosts(r)
		return err
	}); err != nil {
		return nil, err
	}
	if err := readDirOptional(dirPath, DCLineFile, func(r io.Reader) error {
		cs.DCLines, err = decodeDCLines(r)
		return err
	}); err != nil {
		return nil, err
	}
	if err := readDirOptional(dirPath, ReadmeFile, func(r io.Reader) error {
		b, err := io.ReadAll(r)
		cs.README = string(b)
		return err
	}); err != nil {
		return nil, err
	}
	if err := readDirOptional(dirPath, LicenseFile, func(r io.Reader) error {
		b, err := io.ReadAll(r)
		cs.License = string(b)
		return err
	}); err != nil {
		return nil, err
	}

	return cs, nil
}

// readDirOptional opens name under dirPath and hands it to decode. A
// missing file is not an error, the collection stays empty.
func readDirOptional(dirPath, name string, decode func(io.Reader) error) error {
	f, err := os.Open(filepath.Join(dirPath, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	return decode(f)
}

// WriteDir stores the case as collection files under dirPath, creating
// the directory if needed. Empty collections are skipped.
func WriteDir(dirPath string, cs *CaseSet) error {
	if err := os.MkdirAll(dirPath, 0o775); err != nil {
		return err
	}

	data, err := encodeCase(cs.Case)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dirPath, CaseFile), data, 0o664); err != nil {
		return err
	}

	for _, col := range collections(cs) {
		if col.empty {
			continue
		}
		data, err := col.encode()
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dirPath, col.name), data, 0o664); err != nil {
			return err
		}
	}

	if cs.README != "" {
		if err := os.WriteFile(filepath.Join(dirPath, ReadmeFile), []byte(cs.README), 0o664); err != nil {
			return err
		}
	}
	if cs.License != "" {
		if err := os.WriteFile(filepath.Join(dirPath, LicenseFile), []byte(cs.License), 0o664); err != nil {
			return err
		}
	}
	return nil
}

// ReadZip loads a case from the zip archive at zipPath.
func ReadZip(zipPath string) (*CaseSet, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return readArchive(&zr.Reader)
}

// ReadZipFile loads a case from an in-memory or seekable zip archive.
func ReadZipFile(r io.ReaderAt, size int64) (*CaseSet, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	return readArchive(zr)
}

func readArchive(zr *zip.Reader) (*CaseSet, error) {
	cs := &CaseSet{}

	caseFile, err := zr.Open(CaseFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("zip archive must contain %s file", CaseFile)
		}
		return nil, fmt.Errorf("case file read error: %v", err)
	}
	cs.Case, err = decodeCase(caseFile)
	caseFile.Close()
	if err != nil {
		return nil, err
	}

	busFile, err := zr.Open(BusFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("zip archive must contain %s file", BusFile)
		}
		return nil, fmt.Errorf("bus file read error: %v", err)
	}
	cs.Buses, err = decodeBuses(busFile)
	busFile.Close()
	if err != nil {
		return nil, err
	}

	if err := readArchiveOptional(zr, GenFile, func(r io.Reader) error {
		cs.Gens, err = decodeGens(r)
		return err
	}); err != nil {
		return nil, err
	}
	if err := readArchiveOptional(zr, BranchFile, func(r io.Reader) error {
		cs.Branches, err = decodeBranches(r)
		return err
	}); err != nil {
		return nil, err
	}
	if err := readArchiveOptional(zr, GenCostFile, func(r io.Reader) error {
		cs.GenCosts, err = decodeGenCosts(r)
		return err
	}); err != nil {
		return nil, err
	}
	if err := readArchiveOptional(zr, DCLineFile, func(r io.Reader) error {
		cs.DCLines, err = decodeDCLines(r)
		return err
	}); err != nil {
		return nil, err
	}
	if err := readArchiveOptional(zr, ReadmeFile, func(r io.Reader) error {
		b, err := io.ReadAll(r)
		cs.README = string(b)
		return err
	}); err != nil {
		return nil, err
	}
	if err := readArchiveOptional(zr, LicenseFile, func(r io.Reader) error {
		b, err := io.ReadAll(r)
		cs.License = string(b)
		return err
	}); err != nil {
		return nil, err
	}

	return cs, nil
}

// readArchiveOptional opens name inside the archive and hands it to
// decode. A missing entry is not an error, the collection stays empty.
func readArchiveOptional(zr *zip.Reader, name string, decode func(io.Reader) error) error {
	f, err := zr.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s read error: %v", name, err)
	}
	defer f.Close()
	return decode(f)
}

// WriteZip stores the case as a zip archive at zipPath.
func WriteZip(zipPath string, cs *CaseSet) error {
	f, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	if err := WriteZipTo(f, cs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteZipTo streams the case as a zip archive into w. Empty
// collections are skipped.
func WriteZipTo(w io.Writer, cs *CaseSet) error {
	zw := zip.NewWriter(w)

	data, err := encodeCase(cs.Case)
	if err != nil {
		return err
	}
	if err := writeArchiveFile(zw, CaseFile, data); err != nil {
		return err
	}

	for _, col := range collections(cs) {
		if col.empty {
			continue
		}
		data, err := col.encode()
		if err != nil {
			return err
		}
		if err := writeArchiveFile(zw, col.name, data); err != nil {
			return err
		}
	}

	if cs.README != "" {
		if err := writeArchiveFile(zw, ReadmeFile, []byte(cs.README)); err != nil {
			return err
		}
	}
	if cs.License != "" {
		if err := writeArchiveFile(zw, LicenseFile, []byte(cs.License)); err != nil {
			return err
		}
	}
	return zw.Close()
}

func writeArchiveFile(zw *zip.Writer, name string, data []byte) error {
	hdr := &zip.FileHeader{Name: name, Method: zip.Deflate}
	hdr.SetMode(0o664)
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// collection pairs a file name with the encoder of its records.
type collection struct {
	name   string
	empty  bool
	encode func() ([]byte, error)
}

func collections(cs *CaseSet) []collection {
	return []collection{
		{BusFile, len(cs.Buses) == 0, func() ([]byte, error) { return encodeBuses(cs.Buses) }},
		{GenFile, len(cs.Gens) == 0, func() ([]byte, error) { return encodeGens(cs.Gens) }},
		{BranchFile, len(cs.Branches) == 0, func() ([]byte, error) { return encodeBranches(cs.Branches) }},
		{GenCostFile, len(cs.GenCosts) == 0, func() ([]byte, error) { return encodeGenCosts(cs.GenCosts) }},
		{DCLineFile, len(cs.DCLines) == 0, func() ([]byte, error) { return encodeDCLines(cs.DCLines) }},
	}
}
