// atlas-tui is a terminal canvas for the interaction engine. It runs
// the session in-process against a live backend and maps terminal
// mouse input onto the same gesture machine the HTTP service trusts.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/prismdocs/atlas/pkg/backend"
	"github.com/prismdocs/atlas/pkg/gesture"
	"github.com/prismdocs/atlas/pkg/logging"
	"github.com/prismdocs/atlas/pkg/pubsub"
	"github.com/prismdocs/atlas/pkg/session"
	"github.com/prismdocs/atlas/pkg/viewport"
)

// Terminal cells are taller than wide; treating one cell as 10x20
// screen pixels keeps node proportions roughly square on screen.
const (
	cellWidth  = 10.0
	cellHeight = 20.0

	frameRate = 30
)

var colorStyles = map[string]lipgloss.Style{
	"slate":  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	"yellow": lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
	"red":    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	"blue":   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	"green":  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	"orange": lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
}

var (
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("201")).Bold(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	marqueeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("93"))
)

type tickMsg time.Time

type sessionEventMsg pubsub.Event

// termSize is shared with the viewport bounds closure so coordinate
// conversions always see the live terminal size
type termSize struct {
	w, h int
}

type model struct {
	sess *session.Session
	gest *gesture.Machine
	sub  *pubsub.Subscription
	dims *termSize

	queryInput textinput.Model
	inputOpen  bool
	// pending is set when an edge drop over blank space waits for the
	// prompt that will create the connected node
	pending *session.PendingInput

	width  int
	height int

	lastMouseX float64
	lastMouseY float64

	message    string
	messageErr bool
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitEvent(sub *pubsub.Subscription) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sub.Events()
		if !ok {
			return nil
		}
		return sessionEventMsg(ev)
	}
}

func newModel(sess *session.Session, sub *pubsub.Subscription, dims *termSize) model {
	ti := textinput.New()
	ti.Placeholder = "Ask a question about your documents"
	ti.CharLimit = 300
	ti.Width = 60

	return model{
		sess:       sess,
		gest:       gesture.New(sess),
		sub:        sub,
		dims:       dims,
		queryInput: ti,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tickCmd(), waitEvent(m.sub))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.dims.w = msg.Width
		m.dims.h = msg.Height
		m.queryInput.Width = msg.Width - 4
		return m, nil

	case tickMsg:
		if m.sess.CameraAnimating() {
			m.sess.StepCamera(1.0 / frameRate)
		}
		return m, tickCmd()

	case sessionEventMsg:
		// State already changed inside the session; the re-render the
		// message forces is the point
		return m, waitEvent(m.sub)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.inputOpen {
		var cmd tea.Cmd
		m.queryInput, cmd = m.queryInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.inputOpen {
		switch msg.String() {
		case "enter":
			return m.submitInput()
		case "esc":
			m.inputOpen = false
			m.pending = nil
			m.queryInput.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.queryInput, cmd = m.queryInput.Update(msg)
			return m, cmd
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "g":
		m.inputOpen = true
		m.pending = nil
		m.queryInput.SetValue("")
		m.queryInput.Focus()
		return m, textinput.Blink

	case "e":
		sel := m.sess.Selection()
		if len(sel) != 1 {
			return m.fail("select exactly one node to expand"), nil
		}
		go func(id string) {
			if _, err := m.sess.ExpandNode(id, ""); err != nil {
				// Surfaced on the next event-driven render
				_ = err
			}
		}(sel[0])
		return m.info("expanding node"), nil

	case "m":
		sel := m.sess.Selection()
		if len(sel) < 2 {
			return m.fail("select at least two nodes to merge"), nil
		}
		if _, err := m.sess.InitiateMerge(sel); err != nil {
			return m.fail(err.Error()), nil
		}
		return m.info("merge started"), nil

	case "d":
		removed, err := m.sess.DeleteSelected()
		if err != nil {
			return m.fail(err.Error()), nil
		}
		return m.info(fmt.Sprintf("deleted %d nodes", removed)), nil

	case "f":
		nodes := m.sess.Nodes()
		m.sess.Viewport().FitToView(m.sess.Geometry().Rects(nodes))
		return m, nil

	case "esc":
		m.gest.Cancel()
		if err := m.sess.ClearSelection(); err != nil {
			return m.fail(err.Error()), nil
		}
		return m, nil
	}
	return m, nil
}

// submitInput routes the typed text: either a generate query or the
// prompt completing an edge-drop node creation
func (m model) submitInput() (tea.Model, tea.Cmd) {
	text := m.queryInput.Value()
	m.inputOpen = false
	m.queryInput.Blur()
	if text == "" {
		m.pending = nil
		return m, nil
	}

	if p := m.pending; p != nil {
		m.pending = nil
		go func() {
			_, err := m.sess.CreateConnectedNode(p.Action.SourceID, text, p.Action.Anchor)
			_ = err
		}()
		return m.info("creating node"), nil
	}

	if _, err := m.sess.GenerateFromQuery(text, true); err != nil {
		return m.fail(err.Error()), nil
	}
	return m.info("generating graph"), nil
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	x := float64(msg.X) * cellWidth
	y := float64(msg.Y) * cellHeight
	dx, dy := x-m.lastMouseX, y-m.lastMouseY
	m.lastMouseX, m.lastMouseY = x, y

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.gest.Wheel(x, y, 0, -40, msg.Ctrl)
			return m, nil
		case tea.MouseButtonWheelDown:
			m.gest.Wheel(x, y, 0, 40, msg.Ctrl)
			return m, nil
		case tea.MouseButtonLeft, tea.MouseButtonMiddle:
			button := gesture.ButtonLeft
			if msg.Button == tea.MouseButtonMiddle {
				button = gesture.ButtonMiddle
			}
			m.gest.PointerDown(
				gesture.Pointer{X: x, Y: y, Button: button, Shift: msg.Shift},
				m.resolveTarget(x, y),
			)
		}
		return m, nil

	case tea.MouseActionMotion:
		m.gest.PointerMove(gesture.Pointer{X: x, Y: y, Shift: msg.Shift}, dx, dy)
		return m, nil

	case tea.MouseActionRelease:
		action := m.gest.PointerUp(gesture.Pointer{X: x, Y: y, Shift: msg.Shift})
		pending, err := m.sess.HandleAction(action)
		if err != nil {
			return m.fail(err.Error()), nil
		}
		if pending != nil {
			m.pending = pending
			m.inputOpen = true
			m.queryInput.SetValue("")
			m.queryInput.Placeholder = "Describe the connected node"
			m.queryInput.Focus()
			return m, textinput.Blink
		}
		return m, nil
	}
	return m, nil
}

// resolveTarget hit-tests a pointer-down the way the DOM would: the
// topmost node body wins, its bottom-right corner acts as the resize
// handle, and the edge strips act as connectors.
func (m model) resolveTarget(x, y float64) gesture.Target {
	vp := m.sess.Viewport()
	p := vp.ToCanvas(x, y)

	n := m.sess.Geometry().NodeAt(m.sess.Nodes(), p)
	if n == nil {
		return gesture.Target{Kind: gesture.TargetBackground}
	}
	r, ok := m.sess.Geometry().Get(n.ID)
	if !ok {
		r = n.FallbackRect()
	}

	// Corner grab zone, in canvas units
	grab := 16.0 / vp.Scale
	if p.X > r.X+r.Width-grab && p.Y > r.Y+r.Height-grab {
		return gesture.Target{Kind: gesture.TargetResizeHandle, NodeID: n.ID, Handle: gesture.HandleSE}
	}
	if p.X > r.X+r.Width-grab {
		return gesture.Target{Kind: gesture.TargetConnector, NodeID: n.ID, Side: gesture.SideRight}
	}
	if p.X < r.X+grab {
		return gesture.Target{Kind: gesture.TargetConnector, NodeID: n.ID, Side: gesture.SideLeft}
	}
	return gesture.Target{Kind: gesture.TargetNodeBody, NodeID: n.ID}
}

func (m model) info(text string) model {
	m.message = text
	m.messageErr = false
	return m
}

func (m model) fail(text string) model {
	m.message = text
	m.messageErr = true
	return m
}

func main() {
	backendURL := flag.String("backend", "http://localhost:8000", "Backend base URL")
	token := flag.String("token", "", "Backend bearer token")
	flag.Parse()

	logger := logging.NewNopLogger() // terminal owns stdout

	client := backend.New(backend.Config{
		BaseURL: *backendURL,
		Token:   *token,
		Logger:  logger,
	})

	dims := &termSize{w: 80, h: 24}
	bounds := func() viewport.Bounds {
		return viewport.Bounds{Width: float64(dims.w) * cellWidth, Height: float64(dims.h) * cellHeight}
	}

	bus := pubsub.NewBus()
	sess := session.New(session.Config{
		Backend: client,
		Bus:     bus,
		Bounds:  bounds,
		Logger:  logger,
	})
	defer sess.Close()
	defer bus.Shutdown()

	sub, err := bus.Subscribe(context.Background(), sess.ID())
	if err != nil {
		fmt.Fprintf(os.Stderr, "subscribe: %v\n", err)
		os.Exit(1)
	}

	m := newModel(sess, sub, dims)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "atlas-tui: %v\n", err)
		os.Exit(1)
	}
}
