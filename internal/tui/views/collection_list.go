package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lcamargo/docchat/internal/model"
	"github.com/lcamargo/docchat/internal/tui/ui"
	"github.com/rivo/tview"
)

// CollectionList is the sidebar table of collections.
type CollectionList struct {
	*tview.Table
	theme    *ui.Theme
	all      []*model.Collection
	visible  []*model.Collection
	filter   string
	pageMeta model.PaginationMeta
}

// NewCollectionList creates the sidebar table.
func NewCollectionList(theme *ui.Theme) *CollectionList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetTitleColor(theme.TitleColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	return &CollectionList{Table: table, theme: theme}
}

// SetFilter sets a case-insensitive name substring filter and re-renders.
func (cl *CollectionList) SetFilter(q string) {
	cl.filter = strings.ToLower(strings.TrimSpace(q))
	cl.render()
}

// Update refreshes the table with a new page of collections.
func (cl *CollectionList) Update(collections []*model.Collection, meta model.PaginationMeta) {
	cl.all = collections
	cl.pageMeta = meta
	cl.render()
}

func (cl *CollectionList) render() {
	cl.Clear()
	cl.visible = cl.visible[:0]
	for _, c := range cl.all {
		if cl.filter != "" && !strings.Contains(strings.ToLower(c.Name), cl.filter) {
			continue
		}
		cl.visible = append(cl.visible, c)
	}

	title := fmt.Sprintf(" Collections (%d/%d) ", cl.pageMeta.Page, max(cl.pageMeta.TotalPages, 1))
	if cl.filter != "" {
		title = fmt.Sprintf(" Collections /%s ", cl.filter)
	}
	cl.SetTitle(title)

	headers := []string{" NAME", " DOCS", " MSGS"}
	for col, h := range headers {
		cl.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(cl.theme.TableHeaderFg).
			SetBackgroundColor(cl.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold))
	}

	for i, c := range cl.visible {
		row := i + 1
		name := c.Name
		color := cl.theme.FgColor
		if !c.IsPublic {
			name = "* " + name
			color = cl.theme.LockedColor
		}
		cl.SetCell(row, 0, tview.NewTableCell(" "+tview.Escape(name)).
			SetExpansion(1).SetMaxWidth(28).SetTextColor(color))
		cl.SetCell(row, 1, tview.NewTableCell(fmt.Sprintf(" %d", c.DocumentCount)).
			SetTextColor(cl.theme.FgColor))
		cl.SetCell(row, 2, tview.NewTableCell(fmt.Sprintf(" %d", c.MessageCount)).
			SetTextColor(cl.theme.FgColor))
	}

	if row, _ := cl.GetSelection(); row < 1 && len(cl.visible) > 0 {
		cl.Select(1, 0)
	}
}

// Selected returns the collection under the cursor, or nil.
func (cl *CollectionList) Selected() *model.Collection {
	row, _ := cl.GetSelection()
	idx := row - 1
	if idx >= 0 && idx < len(cl.visible) {
		return cl.visible[idx]
	}
	return nil
}
