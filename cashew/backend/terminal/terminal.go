package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-cashew/cashew"
	"github.com/valerio/go-cashew/cashew/backend"
	"github.com/valerio/go-cashew/cashew/disasm"
	"github.com/valerio/go-cashew/cashew/video"
)

const (
	width  = video.Width
	height = video.Height

	registerHeight = 5
	disasmHeight   = 8
	minTermWidth   = width + 2
	minTermHeight  = height/2 + 2
)

// Key expiry timeout - slightly longer than typical key repeat interval.
// Terminals report presses only, so a key counts as held until it expires.
const keyTimeout = 100 * time.Millisecond

// Backend implements the Backend interface using tcell for terminal rendering
type Backend struct {
	screen    tcell.Screen
	logs      *logRing
	logLevel  *slog.LevelVar // filter of the log panel
	config    backend.Config

	keyStates map[cashew.Button]time.Time // Last time each key was pressed
	pending   backend.Input               // Commands seen since the last Update
	stopped   atomic.Bool
	now       func() time.Time
}

// Option customizes a terminal Backend.
type Option func(*Backend)

// WithScreen draws on screen instead of the real terminal.
func WithScreen(screen tcell.Screen) Option {
	return func(t *Backend) { t.screen = screen }
}

// New creates a new terminal backend
func New(opts ...Option) *Backend {
	t := &Backend{
		logLevel:  new(slog.LevelVar),
		keyStates: make(map[cashew.Button]time.Time),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Init takes over the terminal and routes logging into the on screen panel.
func (t *Backend) Init(config backend.Config) error {
	t.config = config

	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		t.screen = screen
	}
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	t.logs = newLogRing(100)
	slog.SetDefault(slog.New(newPanelHandler(t.logs, slog.LevelDebug)))
	slog.Info("Terminal backend initialized", "title", config.Title)

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	go t.handleSignals()

	return nil
}

// Update renders a frame and processes events
func (t *Backend) Update(frame *video.FrameBuffer) (backend.Input, error) {
	now := t.now()

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	input := t.pending
	t.pending = backend.Input{}
	input.Quit = input.Quit || t.stopped.Load()

	for button, pressed := range t.keyStates {
		if now.Sub(pressed) < keyTimeout {
			input.Buttons |= button
		} else {
			delete(t.keyStates, button)
		}
	}

	if input.Quit {
		return input, nil
	}

	t.render(frame)
	t.screen.Show()

	return input, nil
}

// Cleanup cleans up terminal resources
func (t *Backend) Cleanup() error {
	if t.screen != nil {
		slog.Info("Cleaning up terminal backend")
		t.screen.Fini()
	}
	return nil
}

func (t *Backend) handleSignals() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)

	<-signals
	t.stopped.Store(true)
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	button, cmd := lookupKey(ev)

	if button != 0 {
		if button&directions != 0 {
			for d := range t.keyStates {
				if d&directions != 0 {
					delete(t.keyStates, d)
				}
			}
		}
		t.keyStates[button] = now
		return
	}

	switch cmd {
	case commandQuit:
		t.pending.Quit = true
	case commandReset:
		slog.Info("Reset requested")
		t.pending.Reset = true
	case commandSnapshot:
		t.pending.Snapshot = true
	case commandDebugToggle:
		t.config.ShowDebug = !t.config.ShowDebug
		slog.Info("Debug display toggled", "enabled", t.config.ShowDebug)
	case commandLogMore:
		t.changeLogLevel(-4)
	case commandLogLess:
		t.changeLogLevel(4)
	}
}

// changeLogLevel moves the panel filter by delta, between debug and error.
func (t *Backend) changeLogLevel(delta slog.Level) {
	old := t.logLevel.Level()
	level := min(max(old+delta, slog.LevelDebug), slog.LevelError)
	if level == old {
		return
	}
	t.logLevel.Set(level)
	slog.Info("Log filter changed", "from", old, "to", level)
}

func (t *Backend) render(frame *video.FrameBuffer) {
	termWidth, termHeight := t.screen.Size()
	t.screen.Clear()

	if termWidth < minTermWidth || termHeight < minTermHeight {
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		t.drawText(0, termHeight/2, termWidth, style,
			fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight))
		return
	}

	dividerX := width + 1
	t.drawBorders(termWidth, termHeight, dividerX)
	t.drawGameBoy(frame)

	panelX := dividerX + 2
	panelWidth := termWidth - panelX
	logsY := 1
	if t.config.ShowDebug && t.config.Debug != nil {
		t.drawRegisters(panelX, 1, panelWidth)
		t.drawDisassembly(panelX, registerHeight+1, panelWidth)
		logsY = registerHeight + disasmHeight + 2
	}
	t.drawLogs(panelX, logsY, panelWidth, termHeight-1)
}

func (t *Backend) drawText(x, y, maxWidth int, style tcell.Style, text string) {
	for i, ch := range []rune(text) {
		if i >= maxWidth {
			return
		}
		t.screen.SetContent(x+i, y, ch, nil, style)
	}
}

func (t *Backend) drawBorders(termWidth, termHeight, dividerX int) {
	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)

	for y := 0; y < termHeight-1; y++ {
		t.screen.SetContent(dividerX, y, '│', nil, borderStyle)
	}

	title := " Game Boy "
	if t.config.Title != "" {
		title = " " + t.config.Title + " "
	}
	t.drawText(1, 0, dividerX-1, titleStyle, title)
	t.drawText(dividerX+2, 0, termWidth-dividerX-2, titleStyle,
		fmt.Sprintf(" Logs [%s] (-/+ filter) ", t.logLevel.Level()))

	help := " Z/X=A/B Enter=Start Space=Select Arrows/WASD R=reset F10=registers F12=snapshot Esc=quit "
	t.drawText(0, termHeight-1, termWidth, borderStyle, help)
}

// drawGameBoy packs two pixel rows per terminal row with an upper half block:
// the foreground paints the top pixel, the background the bottom one.
func (t *Backend) drawGameBoy(frame *video.FrameBuffer) {
	img := frame.Image()
	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x++ {
			top := img.RGBAAt(x, y)
			bottom := img.RGBAAt(x, y+1)

			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
			t.screen.SetContent(x, y/2+1, '▀', nil, style)
		}
	}
}

func (t *Backend) drawRegisters(startX, startY, panelWidth int) {
	if panelWidth <= 0 {
		return
	}

	r := t.config.Debug.Registers()
	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	lines := []string{
		fmt.Sprintf("AF: %02X%02X  BC: %02X%02X", r.A, r.F, r.B, r.C),
		fmt.Sprintf("DE: %02X%02X  HL: %02X%02X", r.D, r.E, r.H, r.L),
		fmt.Sprintf("SP: %04X  PC: %04X", r.SP, r.PC),
		fmt.Sprintf("Flags: %s", flagString(r.F)),
	}
	for i, line := range lines {
		t.drawText(startX, startY+i, panelWidth, style, line)
	}
}

func (t *Backend) drawDisassembly(startX, startY, panelWidth int) {
	if panelWidth <= 0 {
		return
	}

	pc := t.config.Debug.Registers().PC
	for i, line := range disasm.Range(pc, disasmHeight, t.config.Debug) {
		style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
		if i == 0 {
			style = style.Foreground(tcell.ColorYellow)
		}
		t.drawText(startX, startY+i, panelWidth, style, disasm.Format(line, i == 0))
	}
}

func flagString(f uint8) string {
	flags := []byte("----")
	for i, name := range "ZNHC" {
		if f&(0x80>>i) != 0 {
			flags[i] = byte(name)
		}
	}
	return string(flags)
}

func (t *Backend) drawLogs(startX, startY, panelWidth, endY int) {
	if panelWidth <= 0 || startY >= endY {
		return
	}

	records := t.logs.tail(endY-startY, t.logLevel.Level())
	for i, rec := range records {
		style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
		switch {
		case rec.level >= slog.LevelError:
			style = style.Foreground(tcell.ColorRed)
		case rec.level >= slog.LevelWarn:
			style = style.Foreground(tcell.ColorYellow)
		case rec.level < slog.LevelInfo:
			style = style.Foreground(tcell.ColorGray)
		}
		t.drawText(startX, startY+i, panelWidth, style, rec.String())
	}
}
