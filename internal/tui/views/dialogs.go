package views

import (
	"fmt"
	"strings"

	"github.com/lcamargo/docchat/internal/model"
	"github.com/lcamargo/docchat/internal/tui/ui"
	"github.com/rivo/tview"
)

// Center wraps a primitive so it floats centered over the page behind it.
func Center(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().
			SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 0, true).
			AddItem(nil, 0, 1, false), width, 0, true).
		AddItem(nil, 0, 1, false)
}

// CodeDialog asks for a private collection's access code. The input is
// masked by default with a show/hide toggle, and submits are ignored
// while a verification is in flight.
type CodeDialog struct {
	*tview.Flex
	form      *tview.Form
	errLine   *tview.TextView
	code      *tview.InputField
	verifying bool
	onSubmit  func(code string)
	onCancel  func()
	onChange  func()
}

// NewCodeDialog creates the access code dialog.
func NewCodeDialog(theme *ui.Theme) *CodeDialog {
	d := &CodeDialog{}

	d.code = tview.NewInputField().
		SetLabel("Access code ").
		SetMaskCharacter('*').
		SetFieldWidth(30)
	d.code.SetChangedFunc(func(string) {
		d.SetError("")
		if d.onChange != nil {
			d.onChange()
		}
	})

	d.errLine = tview.NewTextView().SetDynamicColors(true)
	d.errLine.SetBackgroundColor(theme.BgColor)

	d.form = tview.NewForm().
		AddFormItem(d.code).
		AddCheckbox("Show code", false, func(checked bool) {
			if checked {
				d.code.SetMaskCharacter(0)
			} else {
				d.code.SetMaskCharacter('*')
			}
		}).
		AddButton("Unlock", func() {
			if d.verifying || d.onSubmit == nil {
				return
			}
			d.onSubmit(d.code.GetText())
		}).
		AddButton("Cancel", func() {
			if d.onCancel != nil {
				d.onCancel()
			}
		})
	d.form.SetBorder(true)
	d.form.SetBorderColor(theme.BorderFocusColor)
	d.form.SetBackgroundColor(theme.BgColor)
	d.form.SetTitleColor(theme.TitleColor)

	inner := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(d.form, 0, 1, true).
		AddItem(d.errLine, 1, 0, false)

	d.Flex = Center(inner, 48, 12).(*tview.Flex)
	return d
}

// SetCollection updates the dialog title for the challenged collection.
func (d *CodeDialog) SetCollection(name string) {
	d.form.SetTitle(fmt.Sprintf(" Unlock %s ", tview.Escape(name)))
}

// SetError sets or clears the error line.
func (d *CodeDialog) SetError(msg string) {
	d.errLine.Clear()
	if msg != "" {
		_, _ = fmt.Fprintf(d.errLine, " [orangered]%s[-]", tview.Escape(msg))
	}
}

// SetVerifying toggles the submit guard.
func (d *CodeDialog) SetVerifying(v bool) {
	d.verifying = v
}

// Reset clears the input and error for the next challenge.
func (d *CodeDialog) Reset() {
	d.code.SetText("")
	d.SetError("")
	d.verifying = false
	d.form.SetFocus(0)
}

// SetOnSubmit sets the unlock callback.
func (d *CodeDialog) SetOnSubmit(fn func(code string)) { d.onSubmit = fn }

// SetOnCancel sets the dismiss callback.
func (d *CodeDialog) SetOnCancel(fn func()) { d.onCancel = fn }

// SetOnChange sets the callback fired when the code input is edited.
func (d *CodeDialog) SetOnChange(fn func()) { d.onChange = fn }

// Form returns the focusable form.
func (d *CodeDialog) Form() *tview.Form { return d.form }

// CreateDialog collects the fields for a new collection.
type CreateDialog struct {
	*tview.Flex
	form     *tview.Form
	onCreate func(req model.CreateCollectionRequest)
	onCancel func()
}

// NewCreateDialog creates the new-collection form.
func NewCreateDialog(theme *ui.Theme) *CreateDialog {
	d := &CreateDialog{}

	var name, desc, code string
	public := true

	d.form = tview.NewForm().
		AddInputField("Name", "", 30, nil, func(v string) { name = v }).
		AddInputField("Description", "", 30, nil, func(v string) { desc = v }).
		AddCheckbox("Public", true, func(v bool) { public = v }).
		AddPasswordField("Access code (private)", "", 30, '*', func(v string) { code = v }).
		AddButton("Create", func() {
			if d.onCreate == nil || strings.TrimSpace(name) == "" {
				return
			}
			req := model.CreateCollectionRequest{
				Name:        strings.TrimSpace(name),
				Description: strings.TrimSpace(desc),
				IsPublic:    public,
			}
			if !public {
				req.Code = code
			}
			d.onCreate(req)
		}).
		AddButton("Cancel", func() {
			if d.onCancel != nil {
				d.onCancel()
			}
		})
	d.form.SetBorder(true).SetTitle(" New collection ")
	d.form.SetBorderColor(theme.BorderFocusColor)
	d.form.SetBackgroundColor(theme.BgColor)
	d.form.SetTitleColor(theme.TitleColor)

	d.Flex = Center(d.form, 52, 15).(*tview.Flex)
	return d
}

// SetOnCreate sets the create callback.
func (d *CreateDialog) SetOnCreate(fn func(req model.CreateCollectionRequest)) { d.onCreate = fn }

// SetOnCancel sets the dismiss callback.
func (d *CreateDialog) SetOnCancel(fn func()) { d.onCancel = fn }

// Form returns the focusable form.
func (d *CreateDialog) Form() *tview.Form { return d.form }

// UploadDialog asks for local file paths to upload.
type UploadDialog struct {
	*tview.Flex
	form     *tview.Form
	paths    *tview.InputField
	onUpload func(paths []string)
	onCancel func()
}

// NewUploadDialog creates the upload path prompt.
func NewUploadDialog(theme *ui.Theme) *UploadDialog {
	d := &UploadDialog{}

	d.paths = tview.NewInputField().
		SetLabel("Paths ").
		SetPlaceholder("/path/one.pdf, /path/two.txt").
		SetFieldWidth(44)

	d.form = tview.NewForm().
		AddFormItem(d.paths).
		AddButton("Upload", func() {
			if d.onUpload == nil {
				return
			}
			var out []string
			for _, p := range strings.Split(d.paths.GetText(), ",") {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
			if len(out) > 0 {
				d.onUpload(out)
			}
		}).
		AddButton("Cancel", func() {
			if d.onCancel != nil {
				d.onCancel()
			}
		})
	d.form.SetBorder(true).SetTitle(" Upload documents ")
	d.form.SetBorderColor(theme.BorderFocusColor)
	d.form.SetBackgroundColor(theme.BgColor)
	d.form.SetTitleColor(theme.TitleColor)

	d.Flex = Center(d.form, 56, 9).(*tview.Flex)
	return d
}

// Reset clears the path input.
func (d *UploadDialog) Reset() {
	d.paths.SetText("")
	d.form.SetFocus(0)
}

// SetOnUpload sets the upload callback.
func (d *UploadDialog) SetOnUpload(fn func(paths []string)) { d.onUpload = fn }

// SetOnCancel sets the dismiss callback.
func (d *UploadDialog) SetOnCancel(fn func()) { d.onCancel = fn }

// Form returns the focusable form.
func (d *UploadDialog) Form() *tview.Form { return d.form }

// NewConfirm builds a yes/no modal.
func NewConfirm(text string, onYes, onNo func()) *tview.Modal {
	return tview.NewModal().
		SetText(text).
		AddButtons([]string{"Yes", "No"}).
		SetDoneFunc(func(_ int, label string) {
			if label == "Yes" {
				onYes()
			} else {
				onNo()
			}
		})
}
