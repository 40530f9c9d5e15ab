package main

import (
	"fmt"
	"image/color"
	"io"
	"time"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"csvplot/cmd/csvplot/uihelpers"
	"csvplot/src/export"
	"csvplot/src/tabledata"
)

type uiState struct {
	app    fyne.App
	window fyne.Window

	// data pipeline state; replaced wholesale on each successful parse
	model     *tabledata.TableModel
	filters   tabledata.FilterSet
	selection tabledata.Selection
	lastError string
	darkMode  bool

	// widgets
	table        *widget.Table
	filterBox    *fyne.Container
	xSelect      *widget.Select
	ySelect      *widget.Select
	orientSelect *widget.Select
	chartCanvas  *canvas.Image
	errorLabel   *widget.Label
	statsLabel   *widget.Label
	csvEntry     *widget.Entry
}

// dark/light theme wrappers forcing a variant over the default theme
type darkTheme struct{}

func (d *darkTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	return theme.DefaultTheme().Color(name, theme.VariantDark)
}
func (d *darkTheme) Font(style fyne.TextStyle) fyne.Resource { return theme.DefaultTheme().Font(style) }
func (d *darkTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}
func (d *darkTheme) Size(name fyne.ThemeSizeName) float32 { return theme.DefaultTheme().Size(name) }

type lightTheme struct{}

func (l *lightTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	return theme.DefaultTheme().Color(name, theme.VariantLight)
}
func (l *lightTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}
func (l *lightTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}
func (l *lightTheme) Size(name fyne.ThemeSizeName) float32 { return theme.DefaultTheme().Size(name) }

func main() {
	a := app.NewWithID("com.csvplot.viewer")
	w := a.NewWindow("CSV Plot")
	w.Resize(fyne.NewSize(1100, 800))

	state := &uiState{
		app:     a,
		window:  w,
		filters: tabledata.FilterSet{},
	}
	loadPrefs(state)
	applyTheme(state)

	// CSV input
	state.csvEntry = widget.NewMultiLineEntry()
	state.csvEntry.SetPlaceHolder("Paste CSV here (first row = header)")
	state.csvEntry.Wrapping = fyne.TextWrapOff
	parseBtn := widget.NewButton("Parse", func() { applyCSV(state, state.csvEntry.Text) })
	openBtn := widget.NewButton("Open…", func() { openFileDialog(state) })

	// error + stats lines
	state.errorLabel = widget.NewLabel("")
	state.errorLabel.Importance = widget.DangerImportance
	state.statsLabel = widget.NewLabel("")

	// axis selectors (callbacks assigned after the chart canvas exists)
	state.xSelect = widget.NewSelect([]string{}, nil)
	state.xSelect.PlaceHolder = "X column"
	state.ySelect = widget.NewSelect([]string{}, nil)
	state.ySelect.PlaceHolder = "Y column"
	state.orientSelect = widget.NewSelect([]string{"Vertical", "Horizontal"}, nil)
	if state.selection.Orientation == tabledata.OrientationHorizontal {
		state.orientSelect.Selected = "Horizontal"
	} else {
		state.orientSelect.Selected = "Vertical"
	}
	darkChk := widget.NewCheck("Dark mode", nil)
	darkChk.SetChecked(state.darkMode)

	// data table: row 0 is the header, then one row per filtered record
	state.table = widget.NewTable(
		func() (int, int) {
			cols := 1
			if state.model != nil && len(state.model.Columns) > 0 {
				cols = len(state.model.Columns)
			}
			return len(filteredRows(state)) + 1, cols
		},
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.TableCellID, o fyne.CanvasObject) {
			lbl := o.(*widget.Label)
			lbl.TextStyle = fyne.TextStyle{Bold: id.Row == 0}
			if state.model == nil || id.Col >= len(state.model.Columns) {
				lbl.SetText("")
				return
			}
			col := state.model.Columns[id.Col]
			if id.Row == 0 {
				lbl.SetText(col)
				return
			}
			rows := filteredRows(state)
			rix := id.Row - 1
			if rix < 0 || rix >= len(rows) {
				lbl.SetText("")
				return
			}
			lbl.SetText(rows[rix][col])
		},
	)
	state.filterBox = container.NewVBox()

	// chart placeholder
	state.chartCanvas = canvas.NewImageFromImage(blank(800, 400, state.darkMode))
	state.chartCanvas.FillMode = canvas.ImageFillContain
	state.chartCanvas.SetMinSize(fyne.NewSize(800, 400))
	exportBtn := widget.NewButton("Export PNG", func() { exportChartPNG(state) })

	// wire callbacks now that the canvas exists
	state.xSelect.OnChanged = func(v string) {
		state.selection.XColumn = v
		redrawChart(state)
	}
	state.ySelect.OnChanged = func(v string) {
		state.selection.YColumn = v
		redrawChart(state)
	}
	state.orientSelect.OnChanged = func(v string) {
		if v == "Horizontal" {
			state.selection.Orientation = tabledata.OrientationHorizontal
		} else {
			state.selection.Orientation = tabledata.OrientationVertical
		}
		savePrefs(state)
		redrawChart(state)
	}
	// The theme toggle only restyles; TableModel, FilterSet and
	// Selection are never touched here.
	darkChk.OnChanged = func(b bool) {
		state.darkMode = b
		savePrefs(state)
		applyTheme(state)
		redrawChart(state)
	}

	top := container.NewHBox(
		openBtn,
		widget.NewLabel("X:"), state.xSelect,
		widget.NewLabel("Y:"), state.ySelect,
		widget.NewLabel("Bars:"), state.orientSelect,
		darkChk,
		exportBtn,
	)

	inputTab := container.NewBorder(nil, parseBtn, nil, nil, state.csvEntry)
	tableTab := container.NewBorder(state.filterBox, nil, nil, nil, state.table)
	chartTab := container.NewBorder(nil, state.statsLabel, nil, nil, container.NewVScroll(state.chartCanvas))
	tabs := container.NewAppTabs(
		container.NewTabItem("Input", inputTab),
		container.NewTabItem("Table", tableTab),
		container.NewTabItem("Chart", chartTab),
	)
	tabs.SetTabLocation(container.TabLocationTop)

	content := container.NewBorder(top, state.errorLabel, nil, nil, tabs)
	w.SetContent(content)

	buildMenus(state)

	// Redraw the chart on window resize so it scales with width
	if w.Canvas() != nil {
		prevW := int(w.Canvas().Size().Width)
		done := make(chan struct{})
		w.SetOnClosed(func() {
			savePrefs(state)
			close(done)
		})
		go func() {
			t := time.NewTicker(300 * time.Millisecond)
			defer t.Stop()
			for {
				select {
				case <-done:
					return
				case <-t.C:
					c := w.Canvas()
					if c == nil {
						continue
					}
					curW := int(c.Size().Width)
					if curW != prevW {
						prevW = curW
						fyne.Do(func() {
							updateColumnWidths(state)
							redrawChart(state)
						})
					}
				}
			}
		}()
	}

	w.ShowAndRun()
}

func buildMenus(state *uiState) {
	if state == nil || state.window == nil || state.app == nil {
		return
	}
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open…", func() { openFileDialog(state) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Chart PNG…", func() { exportChartPNG(state) }),
		fyne.NewMenuItem("Export Table XLSX…", func() { exportTableXLSX(state) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { state.window.Close() }),
	)
	state.window.SetMainMenu(fyne.NewMainMenu(fileMenu))

	canv := state.window.Canvas()
	if canv != nil {
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierSuper}, func(fyne.Shortcut) { openFileDialog(state) })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { openFileDialog(state) })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyE, Modifier: fyne.KeyModifierSuper}, func(fyne.Shortcut) { exportChartPNG(state) })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyE, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { exportChartPNG(state) })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyW, Modifier: fyne.KeyModifierSuper}, func(fyne.Shortcut) { state.window.Close() })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyW, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { state.window.Close() })
	}
}

func applyTheme(state *uiState) {
	if state.darkMode {
		state.app.Settings().SetTheme(&darkTheme{})
	} else {
		state.app.Settings().SetTheme(&lightTheme{})
	}
}

// filteredRows derives the current view; never cached, so the table and
// chart always reflect the latest TableModel and FilterSet.
func filteredRows(state *uiState) []tabledata.Row {
	if state == nil || state.model == nil {
		return nil
	}
	return tabledata.FilteredRows(state.model, state.filters)
}

// applyCSV parses text and replaces the model on success. On error the
// previous model, columns and filters stay exactly as they were.
func applyCSV(state *uiState, text string) {
	model, err := tabledata.ParseString(text)
	if err != nil {
		setError(state, err.Error())
		return
	}
	state.model = model
	clearError(state)
	fmt.Printf("[csvplot] parsed %d columns, %d rows\n", len(model.Columns), len(model.Rows))

	// Selections are intentionally left alone: a stale X/Y column simply
	// projects an empty/zero series until the user picks a new one.
	state.xSelect.Options = model.Columns
	state.xSelect.Refresh()
	state.ySelect.Options = model.Columns
	state.ySelect.Refresh()

	rebuildFilterRow(state)
	updateColumnWidths(state)
	state.table.Refresh()
	redrawChart(state)
}

// rebuildFilterRow creates one filter entry per current column,
// prefilled from the FilterSet so needles survive a re-parse.
func rebuildFilterRow(state *uiState) {
	state.filterBox.Objects = nil
	if state.model == nil || len(state.model.Columns) == 0 {
		state.filterBox.Refresh()
		return
	}
	entries := make([]fyne.CanvasObject, 0, len(state.model.Columns))
	for _, col := range state.model.Columns {
		col := col
		e := widget.NewEntry()
		e.SetPlaceHolder("filter " + col)
		if needle, ok := state.filters[col]; ok {
			e.SetText(needle)
		}
		e.OnChanged = func(v string) {
			state.filters[col] = v
			state.table.Refresh()
			redrawChart(state)
		}
		entries = append(entries, e)
	}
	state.filterBox.Objects = []fyne.CanvasObject{container.NewGridWithColumns(len(entries), entries...)}
	state.filterBox.Refresh()
}

func updateColumnWidths(state *uiState) {
	if state == nil || state.table == nil || state.model == nil {
		return
	}
	n := len(state.model.Columns)
	if n == 0 {
		return
	}
	var winW float32 = 1100
	if state.window != nil && state.window.Canvas() != nil {
		winW = state.window.Canvas().Size().Width
	}
	cw := uihelpers.ComputeTableColumnWidth(winW, n)
	for i := 0; i < n; i++ {
		state.table.SetColumnWidth(i, float32(cw))
	}
}

func chartSize(state *uiState) (int, int) {
	if state == nil || state.window == nil || state.window.Canvas() == nil {
		return uihelpers.ComputeChartDimensions(1000)
	}
	return uihelpers.ComputeChartDimensions(int(state.window.Canvas().Size().Width*0.95) - 12)
}

// redrawChart recomputes the filtered view and its projection, renders
// the bar chart and updates the stats caption. Pure derivation: nothing
// here is cached between calls.
func redrawChart(state *uiState) {
	if state == nil || state.chartCanvas == nil {
		return
	}
	w, h := chartSize(state)
	rows := filteredRows(state)
	series := tabledata.Project(rows, state.selection)
	img := blank(w, h, state.darkMode)
	if chartReady(state) {
		img = renderBarChart(series, state.selection.YColumn, state.selection.Orientation, state.darkMode, w, h)
	}
	state.chartCanvas.Image = img
	state.chartCanvas.SetMinSize(fyne.NewSize(float32(w), float32(h)))
	state.chartCanvas.Refresh()

	if state.statsLabel != nil {
		if state.selection.YColumn != "" && len(rows) > 0 {
			state.statsLabel.SetText(tabledata.FormatSummary(tabledata.ColumnStats(rows, state.selection.YColumn)))
		} else {
			state.statsLabel.SetText("")
		}
	}
}

// file open dialog, restricted to .csv
func openFileDialog(state *uiState) {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			setError(state, fmt.Sprintf("read %s: %v", rc.URI().Name(), err))
			return
		}
		fmt.Printf("[csvplot] opened %s (%d bytes)\n", rc.URI().Name(), len(data))
		state.csvEntry.SetText(string(data))
		applyCSV(state, string(data))
	}, state.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".csv"}))
	d.Show()
}

// chartReady reports whether the canvas holds a rendered chart rather
// than the opaque placeholder. Only a rendered chart may be exported:
// the placeholder is theme-tinted and would survive the white
// composite, breaking the white-background export guarantee.
func chartReady(state *uiState) bool {
	if state == nil || state.model == nil || state.chartCanvas == nil || state.chartCanvas.Image == nil {
		return false
	}
	return state.selection.XColumn != "" && state.selection.YColumn != "" && len(filteredRows(state)) > 0
}

// exportChartPNG composites the current chart onto an opaque white
// background and encodes it before the save dialog opens, so a download
// can only ever deliver a complete file.
func exportChartPNG(state *uiState) {
	if state == nil || state.window == nil {
		return
	}
	if !chartReady(state) {
		dialog.ShowInformation("Export", "No chart to export.", state.window)
		return
	}
	data, err := export.ChartPNG(state.chartCanvas.Image)
	if err != nil {
		setError(state, err.Error())
		return
	}
	fs := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		defer wc.Close()
		if _, err := wc.Write(data); err != nil {
			setError(state, fmt.Sprintf("export: %v", err))
			return
		}
		clearError(state)
		fmt.Printf("[csvplot] exported chart to %s (%d bytes)\n", wc.URI().Name(), len(data))
	}, state.window)
	fs.SetFileName(export.DefaultFileName)
	fs.Show()
}

// exportTableXLSX saves the filtered view as a one-sheet workbook.
func exportTableXLSX(state *uiState) {
	if state == nil || state.window == nil || state.model == nil {
		dialog.ShowInformation("Export", "No table to export.", state.window)
		return
	}
	rows := filteredRows(state)
	fs := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		defer wc.Close()
		if err := tabledata.WriteXLSX(state.model.Columns, rows, wc); err != nil {
			setError(state, err.Error())
			return
		}
		clearError(state)
		fmt.Printf("[csvplot] exported %d filtered rows to %s\n", len(rows), wc.URI().Name())
	}, state.window)
	fs.SetFileName("table.xlsx")
	fs.Show()
}

// single error slot: each operation overwrites it, success clears it
func setError(state *uiState, msg string) {
	state.lastError = msg
	if state.errorLabel != nil {
		state.errorLabel.SetText(msg)
	}
	fmt.Printf("[csvplot] error: %s\n", msg)
}

func clearError(state *uiState) {
	state.lastError = ""
	if state.errorLabel != nil {
		state.errorLabel.SetText("")
	}
}

// prefs: view settings only; data never persists across sessions
func savePrefs(state *uiState) {
	if state == nil || state.app == nil {
		return
	}
	prefs := state.app.Preferences()
	prefs.SetBool("darkMode", state.darkMode)
	prefs.SetString("orientation", state.selection.Orientation.String())
}

func loadPrefs(state *uiState) {
	if state == nil || state.app == nil {
		return
	}
	prefs := state.app.Preferences()
	state.darkMode = prefs.BoolWithFallback("darkMode", true)
	if prefs.StringWithFallback("orientation", "vertical") == "horizontal" {
		state.selection.Orientation = tabledata.OrientationHorizontal
	}
}
