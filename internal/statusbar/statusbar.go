// internal/statusbar/statusbar.go
package statusbar

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/sylvim/inkblock/internal/config"
	"github.com/sylvim/inkblock/internal/theme"
)

// Config defines the behavior of the status bar.
type Config struct {
	MessageTimeout time.Duration
}

// DefaultConfig provides sensible defaults.
func DefaultConfig() Config {
	return Config{MessageTimeout: config.MessageTimeout}
}

// StatusBar renders the bottom status line: document path, active block,
// selection and history state, or a temporary message.
type StatusBar struct {
	config Config
	mu     sync.RWMutex

	filePath   string
	blockType  string
	blockIndex int
	blockCount int
	selected   int
	undoDepth  int
	redoDepth  int

	tempMessage     string
	tempMessageTime time.Time
}

// New creates a new StatusBar with the given configuration.
func New(cfg Config) *StatusBar {
	return &StatusBar{config: cfg}
}

// SetFileInfo updates the document path shown in the status bar.
func (sb *StatusBar) SetFileInfo(path string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.filePath = path
}

// SetBlockInfo updates the active block's type and position.
func (sb *StatusBar) SetBlockInfo(blockType string, index, count int) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.blockType = blockType
	sb.blockIndex = index
	sb.blockCount = count
}

// SetSelectionInfo updates the multi-selection size.
func (sb *StatusBar) SetSelectionInfo(selected int) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.selected = selected
}

// SetHistoryInfo updates the undo/redo stack depths.
func (sb *StatusBar) SetHistoryInfo(undoDepth, redoDepth int) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.undoDepth = undoDepth
	sb.redoDepth = redoDepth
}

// SetTemporaryMessage displays a message for a configured duration.
func (sb *StatusBar) SetTemporaryMessage(format string, args ...interface{}) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.tempMessage = fmt.Sprintf(format, args...)
	sb.tempMessageTime = time.Now()
}

// ResetTemporaryMessage clears any temporary message being displayed.
func (sb *StatusBar) ResetTemporaryMessage() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.tempMessage = ""
	sb.tempMessageTime = time.Time{}
}

// getDefaultDisplayText builds the default status line text.
func (sb *StatusBar) getDefaultDisplayText() string {
	fPath := sb.filePath
	if fPath == "" {
		fPath = "[No Name]"
	}

	selection := ""
	if sb.selected > 0 {
		selection = fmt.Sprintf(" -- %d selected", sb.selected)
	}

	return fmt.Sprintf("%s -- %s %d/%d%s -- undo:%d redo:%d",
		fPath, sb.blockType, sb.blockIndex+1, sb.blockCount, selection,
		sb.undoDepth, sb.redoDepth)
}

// Draw renders the status bar onto the last screen line.
func (sb *StatusBar) Draw(screen tcell.Screen, width, height int, activeTheme *theme.Theme) {
	if height <= 0 || width <= 0 {
		return
	}
	y := height - 1

	sb.mu.Lock()
	isTempMsgActive := !sb.tempMessageTime.IsZero() && time.Since(sb.tempMessageTime) <= sb.config.MessageTimeout
	if !sb.tempMessageTime.IsZero() && !isTempMsgActive {
		sb.tempMessage = ""
		sb.tempMessageTime = time.Time{}
	}

	var style tcell.Style
	var text string
	if isTempMsgActive {
		text = sb.tempMessage
		style = activeTheme.GetStyle("StatusBarMessage")
	} else {
		text = sb.getDefaultDisplayText()
		style = activeTheme.GetStyle("StatusBar")
	}
	sb.mu.Unlock()

	for x := 0; x < width; x++ {
		screen.SetContent(x, y, ' ', nil, style)
	}

	gr := uniseg.NewGraphemes(text)
	currentX := 0
	for gr.Next() {
		clusterWidth := gr.Width()
		if currentX+clusterWidth > width {
			break
		}
		runes := gr.Runes()
		if len(runes) > 0 {
			screen.SetContent(currentX, y, runes[0], runes[1:], style)
		}
		currentX += clusterWidth
	}
}
