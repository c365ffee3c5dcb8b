package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/lcamargo/docchat/internal/model"
	"github.com/lcamargo/docchat/internal/tui/ui"
	"github.com/rivo/tview"
)

// FilesView is the document table of the active collection.
type FilesView struct {
	*tview.Table
	theme *ui.Theme
	files []model.FileEntry
}

// NewFilesView creates the document table.
func NewFilesView(theme *ui.Theme) *FilesView {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true).SetTitle(" Documents ")
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetTitleColor(theme.TitleColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	return &FilesView{Table: table, theme: theme}
}

// Update refreshes the table. Pending rows render dimmed with an uploading
// marker.
func (fv *FilesView) Update(collectionName string, files []model.FileEntry) {
	fv.files = files
	fv.Clear()
	fv.SetTitle(fmt.Sprintf(" Documents: %s (%d) ", tview.Escape(collectionName), len(files)))

	headers := []string{" NAME", " KIND", " SIZE", " CHUNKS"}
	for col, h := range headers {
		fv.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(fv.theme.TableHeaderFg).
			SetBackgroundColor(fv.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold))
	}

	for i, f := range files {
		row := i + 1
		name := f.Filename
		color := fv.theme.FgColor
		chunks := fmt.Sprintf(" %d", f.ChunkCount)
		if f.Pending {
			name += " (uploading...)"
			color = fv.theme.PendingColor
			chunks = " -"
		}
		fv.SetCell(row, 0, tview.NewTableCell(" "+tview.Escape(name)).
			SetExpansion(1).SetTextColor(color))
		fv.SetCell(row, 1, tview.NewTableCell(" "+fileKind(f.Filename, f.Type)).
			SetTextColor(color))
		fv.SetCell(row, 2, tview.NewTableCell(" "+formatSize(f.Size)).
			SetTextColor(color))
		fv.SetCell(row, 3, tview.NewTableCell(chunks).
			SetTextColor(color))
	}
}

// Selected returns the document under the cursor, or nil.
func (fv *FilesView) Selected() *model.FileEntry {
	row, _ := fv.GetSelection()
	idx := row - 1
	if idx >= 0 && idx < len(fv.files) {
		f := fv.files[idx]
		return &f
	}
	return nil
}
