package main

import (
	"reflect"
	"testing"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"csvplot/src/tabledata"
)

// newTestState builds a uiState with enough widgets wired for the data
// pipeline to run headlessly (no window, no app).
func newTestState() *uiState {
	s := &uiState{filters: tabledata.FilterSet{}}
	s.xSelect = widget.NewSelect([]string{}, nil)
	s.ySelect = widget.NewSelect([]string{}, nil)
	s.errorLabel = widget.NewLabel("")
	s.statsLabel = widget.NewLabel("")
	s.filterBox = container.NewVBox()
	s.chartCanvas = canvas.NewImageFromImage(blank(100, 60, false))
	s.table = widget.NewTable(
		func() (int, int) { return len(filteredRows(s)) + 1, 1 },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(widget.TableCellID, fyne.CanvasObject) {},
	)
	return s
}

func TestApplyCSV_ReplacesModelAndClearsError(t *testing.T) {
	s := newTestState()
	s.lastError = "stale error"
	applyCSV(s, "a,b\n1,2\n3,4\n")
	if s.model == nil {
		t.Fatalf("model not set")
	}
	if !reflect.DeepEqual(s.model.Columns, []string{"a", "b"}) {
		t.Fatalf("columns mismatch: %v", s.model.Columns)
	}
	if s.lastError != "" {
		t.Fatalf("error state not cleared: %q", s.lastError)
	}
	if !reflect.DeepEqual(s.xSelect.Options, []string{"a", "b"}) {
		t.Fatalf("x options not updated: %v", s.xSelect.Options)
	}
	if !reflect.DeepEqual(s.ySelect.Options, []string{"a", "b"}) {
		t.Fatalf("y options not updated: %v", s.ySelect.Options)
	}
}

func TestApplyCSV_MalformedKeepsPriorModel(t *testing.T) {
	s := newTestState()
	applyCSV(s, "a,b\n1,2\n")
	prev := s.model
	applyCSV(s, "a,b\n1\n")
	if s.model != prev {
		t.Fatalf("model replaced on parse error")
	}
	if s.lastError == "" {
		t.Fatalf("error state not set on parse error")
	}
	// a following good parse clears the error again
	applyCSV(s, "a,b\n5,6\n")
	if s.lastError != "" {
		t.Fatalf("error state not cleared on success: %q", s.lastError)
	}
}

func TestApplyCSV_SelectionSurvivesReparse(t *testing.T) {
	s := newTestState()
	applyCSV(s, "a,b\n1,2\n")
	s.selection.XColumn = "a"
	s.selection.YColumn = "b"
	// re-parse with column b gone: the selection intentionally stays
	applyCSV(s, "a,c\n7,8\n")
	if s.selection.YColumn != "b" {
		t.Fatalf("stale selection must be preserved, got %q", s.selection.YColumn)
	}
	series := tabledata.Project(filteredRows(s), s.selection)
	if len(series.Values) != 1 || series.Values[0] != 0 {
		t.Fatalf("stale selection must project zero values: %v", series.Values)
	}
}

func TestFilterEntries_MutateFilterSetOneKeyAtATime(t *testing.T) {
	s := newTestState()
	applyCSV(s, "a,b\n1,2\n21,4\n3,2\n")
	grid, ok := s.filterBox.Objects[0].(*fyne.Container)
	if !ok {
		t.Fatalf("filter row not built")
	}
	if len(grid.Objects) != 2 {
		t.Fatalf("expected one entry per column, got %d", len(grid.Objects))
	}
	entry := grid.Objects[0].(*widget.Entry)
	entry.SetText("1")
	if s.filters["a"] != "1" {
		t.Fatalf("filter set not updated: %v", s.filters)
	}
	rows := filteredRows(s)
	if len(rows) != 2 || rows[0]["a"] != "1" || rows[1]["a"] != "21" {
		t.Fatalf("filtered view mismatch: %v", rows)
	}
	// filters survive a re-parse and prefill the rebuilt entries
	applyCSV(s, "a,b\n1,2\n9,9\n")
	grid = s.filterBox.Objects[0].(*fyne.Container)
	if got := grid.Objects[0].(*widget.Entry).Text; got != "1" {
		t.Fatalf("rebuilt entry not prefilled: %q", got)
	}
	if len(filteredRows(s)) != 1 {
		t.Fatalf("filter not applied after re-parse")
	}
}

func TestRedrawChart_ThemeFlagDoesNotTouchData(t *testing.T) {
	s := newTestState()
	applyCSV(s, "a,b\n1,2\n3,4\n")
	s.selection = tabledata.Selection{XColumn: "a", YColumn: "b"}
	s.filters["a"] = "1"
	modelBefore := s.model
	filtersBefore := tabledata.FilterSet{"a": "1"}
	selBefore := s.selection

	s.darkMode = true
	redrawChart(s)
	s.darkMode = false
	redrawChart(s)

	if s.model != modelBefore {
		t.Fatalf("theme redraw replaced the model")
	}
	if !reflect.DeepEqual(s.filters, filtersBefore) {
		t.Fatalf("theme redraw changed filters: %v", s.filters)
	}
	if s.selection != selBefore {
		t.Fatalf("theme redraw changed selection: %+v", s.selection)
	}
}

func TestChartReady_GatesExportOnRenderedChart(t *testing.T) {
	s := newTestState()
	// nothing parsed yet: only the placeholder is on the canvas
	if chartReady(s) {
		t.Fatalf("placeholder must not be exportable")
	}
	applyCSV(s, "a,b\n1,2\n3,4\n")
	// parsed but no axis selection: canvas still shows the placeholder
	if chartReady(s) {
		t.Fatalf("chart without a selection must not be exportable")
	}
	s.selection = tabledata.Selection{XColumn: "a", YColumn: "b"}
	redrawChart(s)
	if !chartReady(s) {
		t.Fatalf("rendered chart must be exportable")
	}
	// a filter that rejects every row brings the placeholder back
	s.filters["a"] = "no such cell"
	redrawChart(s)
	if chartReady(s) {
		t.Fatalf("empty filtered view must not be exportable")
	}
}

// The export gate exists because the placeholder is opaque and
// theme-tinted: composited over white it would win, and the exported
// corner pixel would not be the guaranteed white.
func TestPlaceholderIsOpaqueAndTinted(t *testing.T) {
	for _, dark := range []bool{true, false} {
		r, g, b, a := blank(64, 48, dark).At(0, 0).RGBA()
		if a>>8 != 255 {
			t.Fatalf("placeholder must be opaque (dark=%v)", dark)
		}
		if r>>8 == 255 && g>>8 == 255 && b>>8 == 255 {
			t.Fatalf("placeholder must not pass as a white export background (dark=%v)", dark)
		}
	}
}

func TestRedrawChart_StatsCaption(t *testing.T) {
	s := newTestState()
	applyCSV(s, "x,y\na,10\nb,x\nc,20\n")
	s.selection = tabledata.Selection{XColumn: "x", YColumn: "y"}
	redrawChart(s)
	want := "y: n=2 min=10 max=20 mean=15 median=15"
	if got := s.statsLabel.Text; got != want {
		t.Fatalf("stats caption %q, want %q", got, want)
	}
}
