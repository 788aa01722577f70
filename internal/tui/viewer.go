package tui

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/JackWithOneEye/hilbertchart/cmd/web"
	"github.com/JackWithOneEye/hilbertchart/internal/chart"
	"github.com/JackWithOneEye/hilbertchart/internal/demo"
	"github.com/JackWithOneEye/hilbertchart/internal/protocol"
	"github.com/JackWithOneEye/hilbertchart/internal/ranges"
	"github.com/JackWithOneEye/hilbertchart/internal/render"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/coder/websocket"
)

// tickMsg is sent every 1/30th second to run chart frames
type tickMsg struct{}

const (
	focusDuration = 750 * time.Millisecond
	// wheelDelta is the pixel delta one wheel notch stands for
	wheelDelta = 250
)

var canvasBg = color.RGBA{A: 0xff}

type viewerModel struct {
	apiHost string
	dataset string

	chart   *chart.Chart
	frames  *chart.FrameQueue
	globals web.Globals

	conn      *websocket.Conn
	connected bool
	offline   bool
	err       error

	// latest WebSocket message data, applied on tick
	pendingData []byte

	termWidth  int
	termHeight int
	side       int
	rows       []string

	hovered  *ranges.Range
	status   string
	dragging bool
	dragged  bool
	lastX    int
	lastY    int

	spinner spinner.Model
	help    help.Model
}

func newViewerModel(apiHost, dataset string) *viewerModel {
	return &viewerModel{
		apiHost:    apiHost,
		dataset:    dataset,
		frames:     &chart.FrameQueue{},
		termWidth:  80,
		termHeight: 24,
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("205")))),
		help:       help.New(),
	}
}

// tick returns a command that sends a tickMsg every 1/30th second (30 FPS)
func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *viewerModel) Init() tea.Cmd {
	m.layout()
	return tea.Batch(connectToAPI(m.apiHost, m.dataset), tick(), m.spinner.Tick)
}

func (m *viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case datasetSelectedMessage:
		if msg.name == m.dataset {
			return m, nil
		}
		m.disconnect()
		m.dataset = msg.name
		m.offline = false
		m.chart = nil
		m.rows = nil
		return m, tea.Batch(connectToAPI(m.apiHost, m.dataset), m.spinner.Tick)
	case quitMessage:
		m.disconnect()
		return m, nil
	case connectionResult:
		m.err = msg.Err
		if !msg.Connected {
			m.goOffline()
			return m, nil
		}
		m.conn = msg.Conn
		m.connected = true
		m.globals = msg.Globals
		if err := m.setupChart(); err != nil {
			m.err = err
			return m, nil
		}
		return m, listenForMessages(m.conn)
	case wsMessage:
		if msg.Conn != m.conn {
			// left over from a previous dataset
			return m, nil
		}
		if msg.Err != nil {
			m.err = msg.Err
			m.connected = false
			return m, nil
		}

		// Cache the latest data instead of processing immediately
		m.pendingData = msg.Data

		if m.isConnected() {
			return m, listenForMessages(m.conn)
		}
	case tickMsg:
		if m.pendingData != nil {
			output, err := processServerMessage(m.pendingData)
			if err == nil {
				err = m.apply(output)
			}
			if err != nil {
				m.err = err
			}
			m.pendingData = nil
		}
		m.frames.Flush(time.Now())
		return m, tick()
	case spinner.TickMsg:
		if m.chart == nil {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		m.help.Width = msg.Width
		m.layout()
	}
	return m, nil
}

// layout fits the square chart into the terminal: one column and half a
// row per canvas pixel.
func (m *viewerModel) layout() {
	// header, frame borders and footer
	availableRows := m.termHeight - m.headerLines() - 3
	availableCols := m.termWidth - 2
	side := max(2, min(availableCols, 2*availableRows))
	if side == m.side {
		return
	}
	m.side = side
	if m.chart != nil {
		if err := m.chart.SetWidth(float64(side)); err != nil {
			m.err = err
		}
	}
}

// headerLines is the title line plus the error line
func (m *viewerModel) headerLines() int {
	return 2
}

func (m *viewerModel) setupChart() error {
	g := m.globals
	opts := chart.DefaultOptions()
	opts.Order = g.Order
	opts.Width = float64(m.side)
	opts.Margin = 0
	opts.UseCanvas = true
	opts.EnableZoom = g.EnableZoom
	opts.ShowValueTooltip = g.ShowValueTooltip
	opts.ShowRangeTooltip = g.ShowRangeTooltip
	opts.PickThreshold = g.PickThreshold
	opts.LODCeiling = g.LODCeiling
	opts.Coarsen = g.Coarsen
	opts.Color = chart.Field[string]("color")
	opts.Scheduler = m.frames

	c, err := chart.New(opts)
	if err != nil {
		return err
	}
	c.OnRangeHover(func(r *ranges.Range) {
		m.hovered = r
	})
	c.OnRangeClick(func(r *ranges.Range) {
		m.status = fmt.Sprintf("clicked %s", protocol.FromRange(r).Name)
	})
	c.Mount(chart.SurfaceFunc(m.present))
	m.chart = c
	return nil
}

func (m *viewerModel) present(b render.Backend) {
	m.rows = renderHalfBlocks(b.(*render.Raster).Image(), canvasBg, m.rows)
}

// goOffline shows the built-in demo dataset.
func (m *viewerModel) goOffline() {
	m.offline = true
	m.dataset = "demo"
	m.globals = web.Globals{
		Dataset:          m.dataset,
		Order:            demo.Order,
		EnableZoom:       true,
		ShowValueTooltip: true,
		ShowRangeTooltip: true,
		PickThreshold:    chart.DefaultPickThreshold,
		LODCeiling:       chart.DefaultLODCeiling,
		Coarsen:          true,
	}
	if err := m.setupChart(); err != nil {
		m.err = err
		return
	}
	d := demo.Dataset(m.dataset)
	if err := m.apply(protocol.Output{Name: d.Name, Order: uint8(d.Order), RangesCount: uint32(len(d.Ranges)), Ranges: d.Ranges}); err != nil {
		m.err = err
	}
}

// apply shows a dataset update and runs its focus request.
func (m *viewerModel) apply(o protocol.Output) error {
	if m.chart == nil {
		return nil
	}
	if int(o.Order) != m.chart.Curve().Order() {
		// the current ranges may not fit the new order
		if err := m.chart.SetData(nil); err != nil {
			return err
		}
		if err := m.chart.SetOrder(int(o.Order)); err != nil {
			return err
		}
	}
	if err := m.chart.SetData(protocol.ToRanges(o.Ranges)); err != nil {
		return err
	}
	if o.Focus.Length > 0 {
		d := time.Duration(o.Focus.DurationMs) * time.Millisecond
		return m.chart.FocusOn(o.Focus.Start, o.Focus.Length, d)
	}
	return nil
}

// chartCell converts a mouse position to a canvas point. ok is false
// outside the chart.
func (m *viewerModel) chartCell(x, y int) (sx, sy float64, ok bool) {
	col := x - 1
	row := y - m.headerLines() - 1
	if col < 0 || col >= m.side || row < 0 || 2*row >= m.side {
		return 0, 0, false
	}
	sx, sy = canvasPoint(col, row)
	return sx, sy, true
}

func (m *viewerModel) handleMouse(msg tea.MouseMsg) {
	if m.chart == nil {
		return
	}
	sx, sy, inside := m.chartCell(msg.X, msg.Y)

	switch {
	case msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown:
		if !inside {
			return
		}
		delta := float64(wheelDelta)
		if msg.Button == tea.MouseButtonWheelUp {
			delta = -delta
		}
		m.chart.Wheel(delta, sx, sy)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.dragging, m.dragged = inside, false
		m.lastX, m.lastY = msg.X, msg.Y
	case msg.Action == tea.MouseActionMotion && m.dragging:
		dx, dy := msg.X-m.lastX, msg.Y-m.lastY
		m.lastX, m.lastY = msg.X, msg.Y
		if dx != 0 || dy != 0 {
			m.dragged = true
			m.chart.Drag(float64(dx), float64(2*dy))
		}
	case msg.Action == tea.MouseActionRelease:
		if m.dragging && m.dragged {
			m.chart.GestureEnd()
		} else if inside {
			m.chart.Click(sx, sy)
		}
		m.dragging = false
	case msg.Action == tea.MouseActionMotion:
		if inside {
			m.chart.PointerMove(sx, sy)
		} else {
			m.chart.PointerLeave()
		}
	}
}

func (m *viewerModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.chart == nil {
		return nil
	}
	center := float64(m.side) / 2
	step := float64(m.side) / 16

	pan := func(dx, dy float64) {
		m.chart.Drag(dx, dy)
		m.chart.GestureEnd()
	}

	switch {
	case key.Matches(msg, keys.ZoomIn):
		m.chart.ZoomBy(2, center, center)
	case key.Matches(msg, keys.ZoomOut):
		m.chart.ZoomBy(.5, center, center)
	case key.Matches(msg, keys.Left):
		pan(step, 0)
	case key.Matches(msg, keys.Right):
		pan(-step, 0)
	case key.Matches(msg, keys.Up):
		pan(0, step)
	case key.Matches(msg, keys.Down):
		pan(0, -step)
	case key.Matches(msg, keys.FarLeft):
		pan(4*step, 0)
	case key.Matches(msg, keys.FarRight):
		pan(-4*step, 0)
	case key.Matches(msg, keys.FarUp):
		pan(0, 4*step)
	case key.Matches(msg, keys.FarDown):
		pan(0, -4*step)
	case key.Matches(msg, keys.Reset):
		m.chart.ResetZoom()
	case key.Matches(msg, keys.Focus):
		return m.focusHovered()
	}
	return nil
}

// focusHovered asks every viewer of the dataset to focus the hovered range;
// offline only this one does.
func (m *viewerModel) focusHovered() tea.Cmd {
	r := m.hovered
	if r == nil {
		m.status = "nothing to focus"
		return nil
	}
	if m.isConnected() {
		return sendMessage(m.conn, &protocol.Focus{
			Start:      r.Start,
			Length:     r.Length,
			DurationMs: uint16(focusDuration / time.Millisecond),
		})
	}
	if err := m.chart.FocusOn(r.Start, r.Length, focusDuration); err != nil {
		m.err = err
	}
	return nil
}

// isConnected checks if the model is connected and has a valid connection
func (m *viewerModel) isConnected() bool {
	return m.connected && m.conn != nil
}

func (m *viewerModel) disconnect() {
	if m.conn != nil {
		m.conn.Close(websocket.StatusNormalClosure, "")
		m.conn = nil
	}
	m.connected = false
}

func (m *viewerModel) View() string {
	var s strings.Builder

	title := titleStyle.Render("Hilbert chart - " + m.dataset)
	if m.chart == nil {
		title += fmt.Sprintf(" %s", m.spinner.View())
	}

	statusText := connectedStatus(m.connected, m.offline)
	if m.chart != nil {
		statusText += fmt.Sprintf(" • Zoom: %.2fx", m.chart.Transform().K)
		if tip := m.chart.Tooltip(); tip.Visible {
			statusText += " • " + strings.TrimSpace(tip.Value+"  "+tip.Range)
		}
	}
	if m.status != "" {
		statusText += " • " + m.status
	}
	status := statusStyle.Render(statusText)

	// Calculate available width for status alignment (subtract padding and title width)
	availableWidth := m.termWidth - 2
	titleWidth := lipgloss.Width(title)

	headerWithPadding := lipgloss.NewStyle().
		PaddingLeft(1).
		PaddingRight(1).
		Width(m.termWidth)

	headerContent := lipgloss.JoinHorizontal(lipgloss.Top,
		title,
		lipgloss.NewStyle().Width(max(0, availableWidth-titleWidth-lipgloss.Width(status))).Render(""),
		status)

	s.WriteString(headerWithPadding.Render(headerContent))
	s.WriteString("\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	s.WriteString("\n")

	canvas := strings.Join(m.rows, "\n")
	canvas = lipgloss.NewStyle().Width(m.side).Height((m.side + 1) / 2).Render(canvas)
	s.WriteString(frameStyle.Render(canvas))
	s.WriteString("\n")
	s.WriteString(m.help.ShortHelpView(keys.ShortHelp()))

	return s.String()
}
