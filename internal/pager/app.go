package pager

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/JackWReid/peek/internal/config"
	"github.com/JackWReid/peek/internal/terminal"
	"github.com/JackWReid/peek/internal/textfile"
	"github.com/JackWReid/peek/internal/viewer"
)

// App is the top-level viewer state: one file shown on one terminal.
type App struct {
	cfg    config.Config
	log    *slog.Logger
	path   string
	offset int64

	term    *terminal.Terminal
	session *viewer.Session

	last    viewer.Command // Last command handled, shown in the footer.
	message string         // Temporary notice, cleared by the next key.
	quit    bool
}

// New returns an app that will show path starting at byte offset.
func New(path string, offset int64, cfg config.Config, log *slog.Logger) *App {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &App{cfg: cfg, log: log, path: path, offset: offset}
}

// Run indexes the file, then takes over the controlling terminal until the
// user quits or ctx is cancelled. Open errors are returned before the
// terminal is touched.
func (a *App) Run(ctx context.Context) error {
	f, err := a.openFile(ctx)
	if err != nil {
		return err
	}
	t, err := terminal.NewTerminal(a.cfg)
	if err != nil {
		f.Close()
		return err
	}
	return a.run(ctx, t, f)
}

// RunOn is Run with a terminal the caller has already set up. The terminal
// is restored before RunOn returns.
func (a *App) RunOn(ctx context.Context, t *terminal.Terminal) error {
	f, err := a.openFile(ctx)
	if err != nil {
		t.Restore()
		return err
	}
	return a.run(ctx, t, f)
}

func (a *App) run(ctx context.Context, t *terminal.Terminal, f *textfile.File) error {
	defer t.Restore()
	a.term = t

	if err := a.startSession(f); err != nil {
		return err
	}
	defer a.session.Close()

	var fileEvents <-chan fsnotify.Event
	var fileErrors <-chan error
	if w, err := a.watch(); err != nil {
		a.log.Warn("not watching file", "path", a.path, "err", err)
	} else {
		defer w.Close()
		fileEvents, fileErrors = w.Events, w.Errors
	}

	events := make(chan terminal.InputEvent)
	done := make(chan struct{})
	defer close(done)
	go pollEvents(t, events, done)

	a.redraw()

	for !a.quit {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			a.handleInput(ev)
		case ev, ok := <-fileEvents:
			if !ok {
				fileEvents = nil
				continue
			}
			a.handleFileEvent(ev)
		case err, ok := <-fileErrors:
			if !ok {
				fileErrors = nil
				continue
			}
			a.log.Warn("watching file", "err", err)
		}
	}
	return nil
}

// pollEvents forwards terminal events until the screen is finalised or done
// is closed.
func pollEvents(t *terminal.Terminal, out chan<- terminal.InputEvent, done <-chan struct{}) {
	for {
		ev := t.PollEvent()
		select {
		case out <- ev:
		case <-done:
			return
		}
		if ev.Kind == terminal.EventClosed {
			return
		}
	}
}

func (a *App) openFile(ctx context.Context) (*textfile.File, error) {
	start := time.Now()
	f, err := textfile.Open(ctx, a.path)
	if err != nil {
		return nil, err
	}
	a.log.Info("opened file",
		"path", f.Path,
		"bytes", f.Size(),
		"lines", f.NumLines(),
		"took", time.Since(start))
	return f, nil
}

// startSession builds the session sized to the terminal's text area. The
// session owns f from here on.
func (a *App) startSession(f *textfile.File) error {
	w, h := a.term.TextSize()
	s, err := viewer.OpenFile(f, viewer.Options{Width: w, Height: h, Offset: a.offset})
	if err != nil {
		return err
	}
	a.session = s
	return nil
}

func (a *App) watch() (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory so replacements by rename are seen too.
	if err := w.Add(a.session.File().Dir); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

func (a *App) handleInput(ev terminal.InputEvent) {
	switch ev.Kind {
	case terminal.EventClosed:
		a.quit = true
	case terminal.EventResize:
		a.resize()
	case terminal.EventCommand:
		a.handleCommand(ev.Command)
	default:
		a.log.Debug("unbound key", "key", ev.Name)
	}
}

func (a *App) handleCommand(cmd viewer.Command) {
	a.log.Debug("command", "cmd", cmd.String())
	a.message = ""

	dirty, err := a.session.Handle(cmd)
	if a.session.Done() {
		a.quit = true
		return
	}
	a.last = cmd
	if err != nil {
		a.log.Warn("command failed", "cmd", cmd.String(), "err", err)
		a.message = err.Error()
		dirty = viewer.All(a.windowHeight())
	}
	a.render(dirty)
}

func (a *App) handleFileEvent(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != a.session.File().Path {
		return
	}
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		a.message = "file removed from disk"
	case ev.Has(fsnotify.Write):
		a.message = "file changed on disk"
	default:
		return
	}
	a.log.Info("file changed", "path", ev.Name, "op", ev.Op.String())
	a.drawFooter()
	a.term.Show()
}

func (a *App) resize() {
	a.term.Resize()
	w, h := a.term.TextSize()
	if _, err := a.session.Resize(w, h); err != nil {
		a.log.Warn("resize failed", "width", w, "height", h, "err", err)
		a.message = err.Error()
	}
	a.log.Debug("resized", "width", w, "height", h)
	a.redraw()
}

// redraw paints every part of the screen.
func (a *App) redraw() {
	a.term.DrawHeader(a.session.File().Path)
	a.render(viewer.All(a.windowHeight()))
}

func (a *App) render(dirty viewer.Dirty) {
	a.session.Render(a.term, dirty)
	a.drawFooter()
	a.term.Show()
}

func (a *App) drawFooter() {
	f := a.session.File()
	a.term.DrawFooter(terminal.Status{
		Window:     a.session.Window(),
		Cursor:     a.session.Position(),
		TotalBytes: f.Size(),
		TotalLines: f.NumLines(),
		Last:       a.last,
		Message:    a.message,
	})
}

func (a *App) windowHeight() int {
	_, h := a.session.Size()
	return h
}
