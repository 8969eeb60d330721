// internal/app/app.go
package app

import (
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/sylvim/inkblock/internal/config"
	"github.com/sylvim/inkblock/internal/core"
	"github.com/sylvim/inkblock/internal/event"
	"github.com/sylvim/inkblock/internal/input"
	"github.com/sylvim/inkblock/internal/logger"
	"github.com/sylvim/inkblock/internal/statusbar"
	"github.com/sylvim/inkblock/internal/theme"
	"github.com/sylvim/inkblock/internal/tui"
)

// App encapsulates the core components and main loop of the editor.
type App struct {
	tuiManager     *tui.TUI
	view           *tui.View
	editor         *core.Editor
	statusBar      *statusbar.StatusBar
	eventManager   *event.Manager
	inputProcessor *input.InputProcessor
	activeTheme    *theme.Theme
	filePath       string

	// Channels managed by the App
	quit          chan struct{}
	redrawRequest chan struct{}
	deferred      chan func() // Engine callbacks deferred past the current turn

	mouse mouseState
}

// NewApp creates and initializes a new application instance.
func NewApp(cfg *config.Config, filePath string) (*App, error) {
	activeTheme := theme.GetCurrentTheme()
	if cfg.UI.ThemeFile != "" {
		if loaded, err := theme.LoadFromFile(cfg.UI.ThemeFile); err != nil {
			logger.Warnf("App: theme file not usable: %v", err)
		} else {
			activeTheme = loaded
			theme.SetCurrentTheme(loaded)
		}
	}

	tuiManager, err := tui.New()
	if err != nil {
		return nil, fmt.Errorf("TUI initialization failed: %w", err)
	}

	view := tui.NewView(tuiManager, activeTheme, cfg.Engine.ScrollMargin)
	eventManager := event.NewManager()
	deferred := make(chan func(), 16)

	editor := core.NewEditor(core.Options{
		Events:          eventManager,
		Surface:         view,
		Geometry:        view,
		HistoryDepth:    cfg.Engine.HistoryDepth,
		EditDebounce:    cfg.Engine.EditDebounce(),
		SanitizeDepth:   cfg.Engine.SanitizeDepth,
		SystemClipboard: cfg.Engine.SystemClipboard,
		Scheduler:       func(fn func()) { deferred <- fn },
	})
	view.Bind(editor)

	appInstance := &App{
		tuiManager:     tuiManager,
		view:           view,
		editor:         editor,
		statusBar:      statusbar.New(statusbar.DefaultConfig()),
		eventManager:   eventManager,
		inputProcessor: input.NewInputProcessor(),
		activeTheme:    activeTheme,
		filePath:       filePath,
		quit:           make(chan struct{}),
		redrawRequest:  make(chan struct{}, 1),
		deferred:       deferred,
	}

	if filePath != "" {
		appInstance.loadDocument(filePath)
	}
	appInstance.statusBar.SetFileInfo(filePath)

	// Any document or selection change invalidates the screen.
	for _, t := range []event.Type{
		event.TypeBlockInserted, event.TypeBlockRemoved, event.TypeBlockMoved,
		event.TypeBlockUpdated, event.TypeBlockTransformed,
		event.TypeDocumentReplaced, event.TypeSelectionChanged,
	} {
		eventManager.Subscribe(t, func(event.Event) bool {
			appInstance.requestRedraw()
			return false
		})
	}

	return appInstance, nil
}

// loadDocument reads a markup file into the editor. A missing file means a
// fresh document saved to that path later.
func (a *App) loadDocument(path string) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Infof("App: %s does not exist yet, starting empty", path)
		return
	}
	if err != nil {
		logger.Errorf("App: cannot read %s: %v", path, err)
		a.statusBar.SetTemporaryMessage("Cannot read %s: %v", path, err)
		return
	}
	if err := a.editor.LoadMarkup(string(raw)); err != nil {
		logger.Errorf("App: cannot parse %s: %v", path, err)
		a.statusBar.SetTemporaryMessage("Cannot parse %s: %v", path, err)
	}
}

// saveDocument writes the canonical export to the document path.
func (a *App) saveDocument() {
	if a.filePath == "" {
		a.statusBar.SetTemporaryMessage("No file path; start with a filename argument")
		return
	}
	if err := os.WriteFile(a.filePath, []byte(a.editor.ExportMarkup()), 0644); err != nil {
		logger.Errorf("App: save failed: %v", err)
		a.statusBar.SetTemporaryMessage("Save failed: %v", err)
		return
	}
	a.statusBar.SetTemporaryMessage("Saved %s", a.filePath)
}

// Run starts the application's main event and drawing loops.
func (a *App) Run() error {
	defer a.tuiManager.Close()
	defer a.editor.Close()

	go a.eventLoop()

	a.eventManager.Dispatch(event.TypeAppReady, event.AppReadyData{})
	a.statusBar.SetTemporaryMessage("inkblock - Ctrl+S Save | Ctrl+Q Quit")
	a.requestRedraw()

	for {
		select {
		case <-a.quit:
			a.eventManager.Dispatch(event.TypeAppQuit, event.AppQuitData{})
			logger.Infof("Exiting application.")
			return nil
		case fn := <-a.deferred:
			fn()
			a.requestRedraw()
		case <-a.redrawRequest:
			a.draw()
		}
	}
}

// eventLoop handles TUI events, delegating keys and mouse to handlers.
func (a *App) eventLoop() {
	for {
		ev := a.tuiManager.PollEvent()
		if ev == nil {
			return
		}

		needsRedraw := false
		switch eventData := ev.(type) {
		case *tcell.EventResize:
			a.tuiManager.GetScreen().Sync()
			needsRedraw = true
		case *tcell.EventKey:
			needsRedraw = a.handleKeyEvent(eventData)
		case *tcell.EventMouse:
			needsRedraw = a.handleMouseEvent(eventData)
		}

		if needsRedraw {
			a.requestRedraw()
		}
	}
}

// draw clears the screen and redraws all components.
func (a *App) draw() {
	a.updateStatusBarContent()

	screen := a.tuiManager.GetScreen()
	width, height := a.tuiManager.Size()

	a.tuiManager.Clear()
	a.view.Render()
	a.statusBar.Draw(screen, width, height, a.activeTheme)
	a.tuiManager.Show()
}

// updateStatusBarContent pushes current editor state to the status bar.
func (a *App) updateStatusBarContent() {
	doc := a.editor.Document()
	undoDepth, redoDepth := a.editor.History().Depths()
	a.statusBar.SetHistoryInfo(undoDepth, redoDepth)
	a.statusBar.SetSelectionInfo(a.editor.Selection().Count())

	if id, _, _, ok := a.view.Caret(); ok {
		if n, exists := doc.ByID(id); exists {
			a.statusBar.SetBlockInfo(n.Type, doc.IndexOf(id), doc.Len())
			return
		}
	}
	a.statusBar.SetBlockInfo("-", 0, doc.Len())
}

// requestRedraw sends a redraw signal non-blockingly.
func (a *App) requestRedraw() {
	select {
	case a.redrawRequest <- struct{}{}:
	default: // Don't block if a redraw is already pending
	}
}
