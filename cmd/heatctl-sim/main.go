// Command heatctl-sim is a terminal bring-up harness for the heating
// controller core: it drives a real time.Ticker at the sampler's native
// cadence, lets an operator toggle the thermostat/provider/mode inputs
// with keys in place of GPIO, and renders the FSM state, sequencer
// position and queue telemetry live. A synthesized buzzer tone sounds
// for as long as the FSM is latched in FAULT.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/polyvarium/heatctl/config"
	"github.com/polyvarium/heatctl/controller"
	"github.com/polyvarium/heatctl/events"
	"github.com/polyvarium/heatctl/fsm"
	"github.com/polyvarium/heatctl/sampler"
	"github.com/polyvarium/heatctl/timer"
)

const (
	logDir      = "logs"
	logFileName = "heatctl-sim.log"
	maxLogSize  = 10 * 1024 * 1024
)

// setupLogging disables logging unless debug is set, in which case it
// rotates and appends to a file; the control path never blocks on
// stdout/stderr during operation.
func setupLogging(debug bool) *os.File {
	if !debug {
		log.SetOutput(io.Discard)
		return nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to create logs directory: %v\n", err)
		log.SetOutput(io.Discard)
		return nil
	}

	logPath := filepath.Join(logDir, logFileName)
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		timestamp := time.Now().Format("2006-01-02-15-04-05")
		rotated := filepath.Join(logDir, fmt.Sprintf("heatctl-sim-%s.log", timestamp))
		if err := os.Rename(logPath, rotated); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to rotate log file: %v\n", err)
		}
	}

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to open log file: %v\n", err)
		log.SetOutput(io.Discard)
		return nil
	}

	log.SetOutput(logFile)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Printf("=== heatctl-sim started ===")
	return logFile
}

// mode is the operator's three-way selector position.
type mode int

const (
	modeElec mode = iota
	modeGas
	modeBi
)

// panelReader implements sampler.Reader from key-toggled state; it is
// only ever mutated from the main loop goroutine, the same goroutine
// that drives Controller.Step, so it needs no locking.
type panelReader struct {
	thermostat bool
	provider   bool // true = ELEC authorized, false = GAS authorized
	mode       mode
}

func (p *panelReader) Thermostat() bool { return p.thermostat }
func (p *panelReader) Provider() bool   { return p.provider }
func (p *panelReader) ModeA() bool      { return p.mode == modeElec }
func (p *panelReader) ModeB() bool      { return p.mode == modeGas }
func (p *panelReader) ModeC() bool      { return p.mode == modeBi }

// targetElec composes the provider authorization and user-mode
// selection the way the guard predicates are documented to: the FSM
// itself never resolves this, only the collaborator does.
func (p *panelReader) targetElec() bool {
	switch p.mode {
	case modeElec:
		return true
	case modeGas:
		return false
	default:
		return p.provider
	}
}

func (p *panelReader) targetGas() bool { return !p.targetElec() }

// audio wraps the beep/generators/speaker stack for a single alarm tone,
// re-triggered periodically while the FSM sits in FAULT — the same
// short-tone-via-beep.Take shape as a one-shot hit sound, just repeated.
type audio struct {
	ready     bool
	lastPlay  time.Time
	replayGap time.Duration
}

func newAudio() *audio {
	a := &audio{replayGap: 400 * time.Millisecond}
	sr := beep.SampleRate(44100)
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		log.Printf("audio init failed, running silent: %v", err)
		return a
	}
	a.ready = true
	return a
}

func (a *audio) alarmTick(active bool) {
	if !a.ready || !active {
		return
	}
	if time.Since(a.lastPlay) < a.replayGap {
		return
	}
	sr := beep.SampleRate(44100)
	tone, err := generators.SineTone(sr, 220)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sr.N(200*time.Millisecond), tone))
	a.lastPlay = time.Now()
}

func (a *audio) close() {
	if a.ready {
		speaker.Close()
	}
}

// stateColor blends from green (IDLE) to red (FAULT) across the state
// ordinal, so the dashboard's state label reads as a temperature-like
// severity ramp rather than arbitrary palette colors.
func stateColor(s fsm.State) tcell.Color {
	const maxOrdinal = float64(fsm.Fault)
	t := float64(s) / maxOrdinal
	c := colorful.Hsv(120*(1-t), 0.85, 0.95).Clamped()
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// dashboardObserver logs every action notification and lets the draw
// loop know the most recent one for display.
type dashboardObserver struct {
	last fsm.ActionID
}

func (o *dashboardObserver) Notify(a fsm.ActionID) {
	o.last = a
	log.Printf("action: %d", a)
}

func drawLine(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, r := range text {
		screen.SetContent(x+i, y, r, nil, style)
	}
}

func main() {
	debug := flag.Bool("debug", false, "enable debug logging to file")
	cfgPath := flag.String("config", "heatctl.toml", "path to configuration file")
	flag.Parse()

	logFile := setupLogging(*debug)
	if logFile != nil {
		defer logFile.Close()
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize screen: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	aud := newAudio()
	defer aud.close()

	reader := &panelReader{}
	bus := events.NewBus(int(cfg.NormalCap), int(cfg.FaultsCap))
	timers := timer.NewService(bus)
	samp := sampler.New(reader, bus, cfg.SamplerConfig())
	observer := &dashboardObserver{}
	machine := fsm.New(bus, timers, observer)
	machine.SetSeqDelayMS(cfg.SeqDelayMS)

	machine.RegisterGuard(fsm.GuardLockoutClear, func() bool { return !timers.IsActive(timer.MinOff) })
	machine.RegisterGuard(fsm.GuardTargetElec, reader.targetElec)
	machine.RegisterGuard(fsm.GuardTargetGas, reader.targetGas)
	machine.RegisterGuard(fsm.GuardTempSafe, func() bool { return true })
	machine.RegisterGuard(fsm.GuardNoFault, func() bool { return true })

	ctl := controller.New(bus, timers, samp, machine, cfg.SamplerConfig())
	ctl.Init(fsm.Idle)

	ticker := time.NewTicker(time.Duration(sampler.TickMS) * time.Millisecond)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 32)
	go func() {
		for {
			eventChan <- screen.PollEvent()
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch {
				case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
					return
				case ev.Rune() == 'q':
					return
				case ev.Rune() == 't':
					reader.thermostat = !reader.thermostat
				case ev.Rune() == 'p':
					reader.provider = !reader.provider
				case ev.Rune() == '1':
					reader.mode = modeElec
				case ev.Rune() == '2':
					reader.mode = modeGas
				case ev.Rune() == '3':
					reader.mode = modeBi
				case ev.Rune() == 'o':
					bus.Push(events.Faults, events.KindOvertempCrit, events.Arg{}, 0)
				case ev.Rune() == 'c':
					bus.Push(events.Normal, events.KindFaultClear, events.Arg{}, 0)
				case ev.Rune() == 's':
					bus.Push(events.Normal, events.KindTempSafe, events.Arg{}, 0)
				}
			case *tcell.EventResize:
				screen.Sync()
			}

		case <-ticker.C:
			ctl.Step()
			aud.alarmTick(machine.State() == fsm.Fault)

			screen.Clear()
			style := tcell.StyleDefault.Foreground(stateColor(machine.State())).Bold(true)
			drawLine(screen, 2, 1, "heatctl-sim", tcell.StyleDefault.Bold(true))
			drawLine(screen, 2, 3, fmt.Sprintf("state:      %s", machine.State()), style)
			drawLine(screen, 2, 4, fmt.Sprintf("sequencer:  dir=%d step=%d", machine.Sequencer().Direction, machine.Sequencer().Step), tcell.StyleDefault)
			drawLine(screen, 2, 5, fmt.Sprintf("thermostat: %v   provider(ELEC hi): %v   mode: %d", reader.thermostat, reader.provider, reader.mode), tcell.StyleDefault)
			drawLine(screen, 2, 7, fmt.Sprintf("normal  queue: %+v", bus.Stats(events.Normal)), tcell.StyleDefault)
			drawLine(screen, 2, 8, fmt.Sprintf("faults  queue: %+v", bus.Stats(events.Faults)), tcell.StyleDefault)
			drawLine(screen, 2, 9, fmt.Sprintf("ignored total: %d", ctl.Ignored()), tcell.StyleDefault)
			drawLine(screen, 2, 11, "keys: t=thermostat p=provider 1/2/3=mode o=fault c=clear s=temp-safe q=quit", tcell.StyleDefault.Foreground(tcell.ColorGray))
			screen.Show()
		}
	}
}
