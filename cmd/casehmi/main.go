// Command casehmi is a read-only terminal browser for case containers.
// Tab cycles the bus, branch and gen tables; q or Escape quits.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/ohowland/caseform/internal/pkg/casedata"
	"github.com/ohowland/caseform/internal/pkg/caseio"
)

type page func(cs *caseio.CaseSet) (title string, content tview.Primitive)

var app = tview.NewApplication()

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: casehmi CASE")
		os.Exit(1)
	}

	cs, err := readCase(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	pages := tview.NewPages()
	titles := make([]string, 0, 3)
	for _, p := range []page{busPage, branchPage, genPage} {
		title, content := p(cs)
		pages.AddPage(title, content, true, len(titles) == 0)
		titles = append(titles, title)
	}

	current := 0
	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyTab:
			current = (current + 1) % len(titles)
			pages.SwitchToPage(titles[current])
			return nil
		case event.Key() == tcell.KeyEscape, event.Rune() == 'q':
			app.Stop()
			return nil
		}
		return event
	})

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(pages, 0, 1, true)

	if err := app.SetRoot(layout, true).Run(); err != nil {
		panic(err)
	}
}

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

func busPage(cs *caseio.CaseSet) (string, tview.Primitive) {
	table := tview.NewTable().
		SetFixed(1, 1)

	headers := []string{"bus", "type", "pd", "qd", "gs", "bs", "vm", "va", "kv", "vmax", "vmin"}
	for col, h := range headers {
		table.SetCell(0, col, headerCell(h))
	}

	for n, b := range cs.Buses {
		row := n + 1
		table.SetCell(row, 0, keyCell(strconv.Itoa(b.BusI)))
		table.SetCell(row, 1, valueCell(busType(b)))
		values := []float64{b.PD, b.QD, b.GS, b.BS, b.VM, b.VA, b.BaseKV, b.VMax, b.VMin}
		for col, v := range values {
			table.SetCell(row, col+2, valueCell(ftoa(v)))
		}
	}

	table.SetBorder(true).SetTitle(fmt.Sprintf(" %s: buses ", cs.Case.Name))
	table.SetBorders(false).
		SetSelectable(true, false).
		SetSeparator(' ')

	return "Buses", table
}

func branchPage(cs *caseio.CaseSet) (string, tview.Primitive) {
	table := tview.NewTable().
		SetFixed(1, 1)

	headers := []string{"from", "to", "kind", "r", "x", "b", "rate_a", "tap", "shift", "status"}
	for col, h := range headers {
		table.SetCell(0, col, headerCell(h))
	}

	for n, br := range cs.Branches {
		row := n + 1
		kind := "line"
		if br.IsTransformer() {
			kind = "xfmr"
		}
		table.SetCell(row, 0, keyCell(strconv.Itoa(br.FBus)))
		table.SetCell(row, 1, keyCell(strconv.Itoa(br.TBus)))
		table.SetCell(row, 2, valueCell(kind))
		values := []float64{br.BrR, br.BrX, br.BrB, br.RateA, br.Tap, br.Shift}
		for col, v := range values {
			table.SetCell(row, col+3, valueCell(ftoa(v)))
		}
		table.SetCell(row, 9, valueCell(strconv.Itoa(br.BrStatus)))
	}

	table.SetBorder(true).SetTitle(fmt.Sprintf(" %s: branches ", cs.Case.Name))
	table.SetBorders(false).
		SetSelectable(true, false).
		SetSeparator(' ')

	return "Branches", table
}

func genPage(cs *caseio.CaseSet) (string, tview.Primitive) {
	table := tview.NewTable().
		SetFixed(1, 1)

	headers := []string{"bus", "pg", "qg", "qmax", "qmin", "vg", "mbase", "pmax", "pmin", "status"}
	for col, h := range headers {
		table.SetCell(0, col, headerCell(h))
	}

	for n, g := range cs.Gens {
		row := n + 1
		table.SetCell(row, 0, keyCell(strconv.Itoa(g.GenBus)))
		values := []float64{g.PG, g.QG, g.QMax, g.QMin, g.VG, g.MBase, g.PMax, g.PMin}
		for col, v := range values {
			table.SetCell(row, col+1, valueCell(ftoa(v)))
		}
		table.SetCell(row, 9, valueCell(strconv.Itoa(g.GenStatus)))
	}

	table.SetBorder(true).SetTitle(fmt.Sprintf(" %s: gens ", cs.Case.Name))
	table.SetBorders(false).
		SetSelectable(true, false).
		SetSeparator(' ')

	return "Gens", table
}

func headerCell(text string) *tview.TableCell {
	return tview.NewTableCell(text).
		SetTextColor(tcell.ColorYellow).
		SetAlign(tview.AlignRight).
		SetSelectable(false)
}

func keyCell(text string) *tview.TableCell {
	return tview.NewTableCell(text).
		SetTextColor(tcell.ColorDarkCyan).
		SetAlign(tview.AlignRight)
}

func valueCell(text string) *tview.TableCell {
	return tview.NewTableCell(text).
		SetTextColor(tcell.ColorWhite).
		SetAlign(tview.AlignRight)
}

func busType(b casedata.Bus) string {
	switch {
	case b.IsRef():
		return "REF"
	case b.IsPV():
		return "PV"
	case b.IsPQ():
		return "PQ"
	}
	return "NONE"
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
