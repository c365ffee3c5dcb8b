package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lcamargo/docchat/internal/bus"
	"github.com/lcamargo/docchat/internal/gate"
	"github.com/lcamargo/docchat/internal/model"
	"github.com/lcamargo/docchat/internal/reconcile"
	"github.com/lcamargo/docchat/internal/store"
	"github.com/lcamargo/docchat/internal/tui/keys"
	tuimodel "github.com/lcamargo/docchat/internal/tui/model"
	"github.com/lcamargo/docchat/internal/tui/ui"
	"github.com/lcamargo/docchat/internal/tui/views"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

// App is the TUI shell. All state lives in the store and the gate; the
// shell renders snapshots and redraws on bus events.
type App struct {
	app      *tview.Application
	pages    *tview.Pages
	theme    *ui.Theme
	registry *keys.Registry
	flash    *tuimodel.Flash

	store  *store.Store
	gate   *gate.Gate
	rec    *reconcile.Reconciler
	bus    *bus.Bus
	logger *zap.Logger

	sidebar   *views.CollectionList
	chat      *views.ChatView
	filesView *views.FilesView
	composer  *views.Composer
	statusBar *views.StatusBar
	filter    *tview.InputField

	codeDlg   *views.CodeDialog
	createDlg *views.CreateDialog
	uploadDlg *views.UploadDialog

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(s *store.Store, g *gate.Gate, rec *reconcile.Reconciler, b *bus.Bus, backendURL string, logger *zap.Logger) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:       tview.NewApplication(),
		pages:     tview.NewPages(),
		theme:     theme,
		registry:  keys.NewRegistry(),
		flash:     &tuimodel.Flash{},
		store:     s,
		gate:      g,
		rec:       rec,
		bus:       b,
		logger:    logger,
		sidebar:   views.NewCollectionList(theme),
		chat:      views.NewChatView(theme),
		filesView: views.NewFilesView(theme),
		composer:  views.NewComposer(),
		statusBar: views.NewStatusBar(),
		codeDlg:   views.NewCodeDialog(theme),
		createDlg: views.NewCreateDialog(theme),
		uploadDlg: views.NewUploadDialog(theme),
		ctx:       ctx,
		cancel:    cancel,
	}

	a.filter = tview.NewInputField().
		SetLabel(" / ").
		SetFieldWidth(0).
		SetChangedFunc(func(q string) {
			a.sidebar.SetFilter(q)
		})

	a.statusBar.SetBackend(backendURL)
	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupBindings() {
	a.registry.AddGlobal(&keys.Action{
		Rune: 'q', Key: tcell.KeyRune,
		Description: "q:quit", Visible: true,
		Handler: func() { a.app.Stop() },
	})
	a.registry.AddGlobal(&keys.Action{
		Rune: 'r', Key: tcell.KeyRune,
		Description: "r:refresh", Visible: true,
		Handler: func() { a.reload() },
	})
	a.registry.AddView("main", &keys.Action{
		Rune: 'n', Key: tcell.KeyRune,
		Description: "n:new", Visible: true,
		Handler: func() { a.showCreate() },
	})
	a.registry.AddView("main", &keys.Action{
		Rune: 'd', Key: tcell.KeyRune,
		Description: "d:delete", Visible: true,
		Handler: func() { a.confirmDeleteCollection() },
	})
	a.registry.AddView("main", &keys.Action{
		Rune: 'f', Key: tcell.KeyRune,
		Description: "f:files", Visible: true,
		Handler: func() { a.showFiles() },
	})
	a.registry.AddView("main", &keys.Action{
		Rune: 'u', Key: tcell.KeyRune,
		Description: "u:upload", Visible: true,
		Handler: func() { a.showUpload() },
	})
	a.registry.AddView("main", &keys.Action{
		Rune: '/', Key: tcell.KeyRune,
		Description: "/:filter", Visible: true,
		Handler: func() { a.app.SetFocus(a.filter) },
	})
	a.registry.AddView("main", &keys.Action{
		Rune: ']', Key: tcell.KeyRune,
		Description: "]:next", Visible: true,
		Handler: func() { a.page(1) },
	})
	a.registry.AddView("main", &keys.Action{
		Rune: '[', Key: tcell.KeyRune,
		Description: "[:prev", Visible: true,
		Handler: func() { a.page(-1) },
	})
	a.registry.AddView("files", &keys.Action{
		Rune: 'd', Key: tcell.KeyRune,
		Description: "d:delete", Visible: true,
		Handler: func() { a.confirmDeleteDocument() },
	})
	a.registry.AddView("files", &keys.Action{
		Rune: 'u', Key: tcell.KeyRune,
		Description: "u:upload", Visible: true,
		Handler: func() { a.showUpload() },
	})
}

func (a *App) setupCallbacks() {
	a.sidebar.SetSelectedFunc(func(row, col int) {
		c := a.sidebar.Selected()
		if c == nil {
			return
		}
		a.runGated(c, gate.ActionEnter, "")
	})

	a.composer.SetOnSend(func(text string) {
		a.ask(text)
	})

	a.codeDlg.SetOnSubmit(func(code string) {
		go func() {
			if err := a.gate.Submit(a.ctx, code); err != nil {
				a.flashErr("Unlock failed: " + err.Error())
			}
		}()
	})
	a.codeDlg.SetOnCancel(func() {
		a.gate.Dismiss()
	})
	a.codeDlg.SetOnChange(func() {
		a.gate.ClearError()
	})

	a.createDlg.SetOnCreate(func(req model.CreateCollectionRequest) {
		a.pages.HidePage("create")
		a.app.SetFocus(a.sidebar)
		go func() {
			if _, err := a.store.Create(a.ctx, req); err != nil {
				a.flashErr("Create failed: " + err.Error())
				return
			}
			a.flashInfo("Collection created")
		}()
	})
	a.createDlg.SetOnCancel(func() {
		a.pages.HidePage("create")
		a.app.SetFocus(a.sidebar)
	})

	a.uploadDlg.SetOnUpload(func(paths []string) {
		a.pages.HidePage("upload")
		a.app.SetFocus(a.sidebar)
		a.upload(paths)
	})
	a.uploadDlg.SetOnCancel(func() {
		a.pages.HidePage("upload")
		a.app.SetFocus(a.sidebar)
	})
}

func (a *App) setupLayout() {
	left := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.filter, 1, 0, false).
		AddItem(a.sidebar, 0, 1, true)

	right := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.chat, 0, 1, false).
		AddItem(a.composer, 1, 0, false)

	main := tview.NewFlex().
		AddItem(left, 34, 0, true).
		AddItem(right, 0, 1, false)

	a.pages.AddPage("main", main, true, true)
	a.pages.AddPage("files", a.filesView, true, false)
	a.pages.AddPage("code", a.codeDlg, true, false)
	a.pages.AddPage("create", a.createDlg, true, false)
	a.pages.AddPage("upload", a.uploadDlg, true, false)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(root, true)
	a.statusBar.SetHints(a.registry.Hints("main"))

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		currentPage, _ := a.pages.GetFrontPage()

		if event.Key() == tcell.KeyEscape {
			switch currentPage {
			case "files":
				a.toMain()
				return nil
			case "code":
				a.gate.Dismiss()
				return nil
			case "create", "upload":
				a.pages.HidePage(currentPage)
				a.app.SetFocus(a.sidebar)
				return nil
			case "main":
				if a.app.GetFocus() == a.filter {
					a.filter.SetText("")
					a.app.SetFocus(a.sidebar)
					return nil
				}
				if a.store.ActiveID() != "" {
					a.store.ClearActive()
					a.refresh()
					return nil
				}
			}
		}

		// Text inputs get every key.
		focused := a.app.GetFocus()
		if _, ok := focused.(*tview.InputField); ok {
			return event
		}

		if currentPage == "main" && event.Key() == tcell.KeyRune {
			switch event.Rune() {
			case 'i':
				a.app.SetFocus(a.composer.InputField)
				return nil
			case '1', '2', '3', '4':
				if a.emptyThread() {
					a.ask(views.SuggestedQuestions[int(event.Rune()-'1')])
					return nil
				}
			}
		}

		if a.registry.HandleEvent(currentPage, event) {
			return nil
		}

		return event
	})
}

// Run starts the event loops and the terminal UI. It blocks until quit.
func (a *App) Run() error {
	a.startBusLoop()
	a.startTickLoop()

	go func() {
		if err := a.store.LoadCollections(a.ctx, 1); err != nil {
			a.flashErr("Load failed: " + err.Error())
		}
		if id := a.store.ActiveID(); id != "" {
			if err := a.store.LoadDetail(a.ctx, id); err != nil {
				a.flashErr("Load failed: " + err.Error())
			}
		}
	}()

	return a.app.Run()
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

func (a *App) startBusLoop() {
	events, unsub := a.bus.Subscribe("", 64)
	go func() {
		defer unsub()
		for {
			select {
			case evt, ok := <-events:
				if !ok {
					return
				}
				a.app.QueueUpdateDraw(func() {
					a.handleEvent(evt)
				})
			case <-a.ctx.Done():
				return
			}
		}
	}()
}

// startTickLoop redraws the status bar so flash expiry is visible.
func (a *App) startTickLoop() {
	ticker := time.NewTicker(time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				a.app.QueueUpdateDraw(func() {
					a.statusBar.SetFlash(a.flash.Get())
				})
			case <-a.ctx.Done():
				return
			}
		}
	}()
}

func (a *App) handleEvent(evt bus.Event) {
	if st, ok := evt.Payload.(gate.State); ok && evt.Kind == bus.KindGateChanged {
		a.handleGate(st)
		return
	}
	a.refresh()
}

func (a *App) handleGate(st gate.State) {
	switch st {
	case gate.Challenging:
		a.codeDlg.SetVerifying(false)
		a.codeDlg.SetError(a.gate.ErrorMessage())
		if c := a.gate.PendingCollection(); c != nil {
			a.codeDlg.SetCollection(c.Name)
		}
		if name, _ := a.pages.GetFrontPage(); name != "code" {
			a.codeDlg.Reset()
			a.codeDlg.SetError(a.gate.ErrorMessage())
			a.pages.ShowPage("code")
		}
		a.app.SetFocus(a.codeDlg.Form())
	case gate.Verifying:
		a.codeDlg.SetVerifying(true)
	case gate.Idle:
		a.pages.HidePage("code")
		a.app.SetFocus(a.sidebar)
		a.refresh()
	}
}

// refresh re-renders every visible view from store snapshots.
func (a *App) refresh() {
	collections := a.store.Collections()
	a.sidebar.Update(collections, a.store.Pagination())

	active := a.store.Active()
	if active != nil {
		a.chat.ShowThread(active.Name, active.Messages, a.store.Loading())
		a.filesView.Update(active.Name, active.Files)
	} else if msgs := a.store.SessionMessages(); len(msgs) > 0 {
		a.chat.ShowThread("docchat", msgs, a.store.Loading())
	} else {
		a.chat.ShowWelcome(collections)
	}

	a.statusBar.SetLoading(a.store.Loading())
	a.statusBar.SetFlash(a.flash.Get())
}

func (a *App) reload() {
	go func() {
		page := a.store.Pagination().Page
		if page < 1 {
			page = 1
		}
		if err := a.store.LoadCollections(a.ctx, page); err != nil {
			a.flashErr("Refresh failed: " + err.Error())
		}
		if id := a.store.ActiveID(); id != "" {
			if err := a.store.LoadDetail(a.ctx, id); err != nil {
				a.flashErr("Refresh failed: " + err.Error())
			}
		}
	}()
}

func (a *App) page(delta int) {
	go func() {
		if err := a.store.SetPage(a.ctx, a.store.Pagination().Page+delta); err != nil {
			a.flashErr("Page load failed: " + err.Error())
		}
	}()
}

func (a *App) ask(text string) {
	go func() {
		if err := a.rec.Ask(a.ctx, text); err != nil {
			a.flashErr("Ask failed: " + err.Error())
		}
	}()
}

func (a *App) upload(paths []string) {
	active := a.store.Active()
	if active == nil {
		a.flashErr("Select a collection first")
		return
	}
	var files []model.LocalFile
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			a.flashErr("Cannot read " + p)
			return
		}
		files = append(files, model.LocalFile{
			Filename: filepath.Base(p),
			Path:     p,
			Size:     info.Size(),
		})
	}
	go func() {
		if err := a.rec.Upload(a.ctx, active.ID, files); err != nil {
			a.flashErr("Upload failed: " + err.Error())
			return
		}
		a.flashInfo(fmt.Sprintf("Uploaded %d file(s)", len(files)))
	}()
}

func (a *App) runGated(c *model.Collection, action gate.Action, documentID string) {
	go func() {
		if err := a.gate.Request(a.ctx, c, action, documentID); err != nil {
			a.flashErr(err.Error())
		}
	}()
}

func (a *App) confirmDeleteCollection() {
	c := a.sidebar.Selected()
	if c == nil {
		return
	}
	a.confirm(fmt.Sprintf("Delete collection %q and its chat history?", c.Name), func() {
		a.runGated(c, gate.ActionDeleteCollection, "")
	})
}

func (a *App) confirmDeleteDocument() {
	active := a.store.Active()
	doc := a.filesView.Selected()
	if active == nil || doc == nil || doc.Pending {
		return
	}
	a.confirm(fmt.Sprintf("Delete document %q?", doc.Filename), func() {
		a.runGated(active, gate.ActionDeleteDocument, doc.ID)
	})
}

func (a *App) confirm(text string, onYes func()) {
	modal := views.NewConfirm(text, func() {
		a.pages.RemovePage("confirm")
		onYes()
	}, func() {
		a.pages.RemovePage("confirm")
		a.app.SetFocus(a.sidebar)
	})
	a.pages.AddPage("confirm", modal, true, true)
	a.app.SetFocus(modal)
}

func (a *App) showCreate() {
	a.pages.ShowPage("create")
	a.app.SetFocus(a.createDlg.Form())
}

func (a *App) showUpload() {
	if a.store.Active() == nil {
		a.flashErr("Select a collection first")
		return
	}
	a.uploadDlg.Reset()
	a.pages.ShowPage("upload")
	a.app.SetFocus(a.uploadDlg.Form())
}

func (a *App) showFiles() {
	active := a.store.Active()
	if active == nil {
		a.flashErr("Select a collection first")
		return
	}
	a.filesView.Update(active.Name, active.Files)
	a.pages.SwitchToPage("files")
	a.statusBar.SetHints(a.registry.Hints("files"))
	a.app.SetFocus(a.filesView)
}

func (a *App) toMain() {
	a.pages.SwitchToPage("main")
	a.statusBar.SetHints(a.registry.Hints("main"))
	a.app.SetFocus(a.sidebar)
}

func (a *App) emptyThread() bool {
	if active := a.store.Active(); active != nil {
		return len(active.Messages) == 0
	}
	return len(a.store.SessionMessages()) == 0
}

func (a *App) flashInfo(msg string) {
	a.flash.Set(msg, 5*time.Second)
	a.queueStatus()
}

func (a *App) flashErr(msg string) {
	a.flash.SetErr(msg, 5*time.Second)
	a.queueStatus()
}

// queueStatus schedules a status bar redraw off the event loop so flash
// helpers are safe to call from UI callbacks and worker goroutines alike.
func (a *App) queueStatus() {
	go a.app.QueueUpdateDraw(func() {
		a.statusBar.SetFlash(a.flash.Get())
	})
}
