// Package render draws arranged paint sessions in the terminal. It is a
// debugging surface: each drawable's map footprint is painted in chain
// order, so occlusion mistakes show up as the wrong tile color on top.
package render

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-isopaint/isopaint"
)

var quadrantColors = []tcell.Color{
	tcell.ColorBlue,
	tcell.ColorGreen,
	tcell.ColorRed,
	tcell.ColorYellow,
	tcell.ColorFuchsia,
	tcell.ColorAqua,
	tcell.ColorOlive,
	tcell.ColorSilver,
}

// Shade runes cycle with a primitive's position in the draw order so
// pulled-forward primitives stand out from their bucket neighbors.
var orderChars = []rune{'░', '▒', '▓', '█'}

// Visualizer renders a master session under a switchable rotation. The
// master is never arranged directly; every redraw copies it and arranges
// the copy, because an arranged chain cannot be arranged again.
type Visualizer struct {
	screen   tcell.Screen
	master   *isopaint.Session
	work     *isopaint.Session
	rotation isopaint.Rotation
	running  bool
}

func NewVisualizer(master *isopaint.Session, rotation isopaint.Rotation) (*Visualizer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}

	return &Visualizer{
		screen:   screen,
		master:   master,
		work:     isopaint.NewSession(),
		rotation: rotation,
		running:  true,
	}, nil
}

// Run shows the scene until the user quits with q, Escape or Ctrl-C.
// The r key cycles the rotation and re-arranges.
func (v *Visualizer) Run() error {
	defer func() {
		slog.Info("Finishing terminal")
		v.screen.Fini()
	}()

	v.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	v.screen.Clear()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		v.running = false
		v.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	v.render()
	v.screen.Show()

	for v.running {
		ev := v.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
				v.running = false
			case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
				v.running = false
			case ev.Key() == tcell.KeyRune && ev.Rune() == 'r':
				v.rotation = (v.rotation + 1) & 3
				v.render()
				v.screen.Show()
			}
		case *tcell.EventResize:
			v.screen.Sync()
			v.render()
			v.screen.Show()
		case *tcell.EventInterrupt:
			v.running = false
		}
	}

	return nil
}

func (v *Visualizer) render() {
	*v.work = *v.master
	if err := v.work.Arrange(v.rotation); err != nil {
		slog.Error("Arrange failed", "error", err)
		return
	}

	v.screen.Clear()

	chain := v.work.Arranged()
	for pos, ref := range chain {
		ps := v.work.Drawable(ref)
		style := tcell.StyleDefault.
			Foreground(quadrantColors[int(ps.QuadrantIndex)%len(quadrantColors)]).
			Background(tcell.ColorBlack)
		ch := orderChars[pos*len(orderChars)/max(len(chain), 1)%len(orderChars)]
		// Two columns per tile to compensate terminal cell aspect.
		x := int(ps.MapX) * 2
		y := int(ps.MapY)
		v.screen.SetContent(x, y+1, ch, nil, style)
		v.screen.SetContent(x+1, y+1, ch, nil, style)
	}

	status := fmt.Sprintf("rotation %d | %d primitives | r: rotate, q: quit", v.rotation, len(chain))
	for i, ch := range status {
		v.screen.SetContent(i, 0, ch, nil, tcell.StyleDefault)
	}
}
