// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-greatcircle/internal/logging"
	"github.com/litescript/ls-greatcircle/internal/raster"
	"github.com/litescript/ls-greatcircle/internal/recompute"
	"github.com/litescript/ls-greatcircle/internal/remap"
	"github.com/litescript/ls-greatcircle/internal/solar"
	"github.com/litescript/ls-greatcircle/internal/state"
	"github.com/litescript/ls-greatcircle/internal/version"
)

// Rows reserved above and below the map.
const (
	headerLines = 2
	footerLines = 2
)

// Msg types for Bubble Tea
type (
	// TickMsg triggers a poll for a finished raster.
	TickMsg time.Time

	// RenderedMsg is sent by a worker after it deposits generation Gen.
	RenderedMsg struct {
		Gen uint64
	}
)

// Options configures a Model.
type Options struct {
	PollInterval time.Duration

	// ExportDir is where the e key writes the displayed raster.
	ExportDir string
}

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	state   *state.Manager
	machine *recompute.Machine
	sampler recompute.Sampler
	log     *logging.Logger
	opts    Options

	// UI state
	width     int
	height    int
	ready     bool
	statusMsg string
	animTick  int

	shown  *raster.Rendered
	phase  recompute.Phase
	canvas string // painted map, rebuilt when shown or anchors change

	hover   remap.Anchor
	hovered bool
}

// New creates the root UI model. Rasters are built by machine from sampler
// and the session's remapper.
func New(st *state.Manager, machine *recompute.Machine, sampler recompute.Sampler, log *logging.Logger, opts Options) Model {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 100 * time.Millisecond
	}
	if log == nil {
		log = logging.Discard()
	}
	return Model{
		state:   st,
		machine: machine,
		sampler: sampler,
		log:     log.Named("ui"),
		opts:    opts,
		phase:   machine.Phase(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.opts.PollInterval)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "c":
			if _, ok := m.state.Clear(); ok {
				m.statusMsg = "Anchors cleared"
				m.request()
			}

		case "u", "backspace":
			if _, ok := m.state.Undo(); ok {
				m.statusMsg = "Undid last anchor"
				m.request()
			}

		case "r":
			m.statusMsg = "Recomputing"
			m.request()

		case "s":
			a := solar.Anchor(time.Now())
			m.state.AddAnchor(a)
			m.statusMsg = "Subsolar anchor " + a.String()
			m.request()

		case "e":
			m.export()
		}

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		w, h := m.mapPixels()
		if m.state.Resize(w, h) || m.shown == nil {
			m.request()
		}

	case TickMsg:
		cmds = append(cmds, tickCmd(m.opts.PollInterval))
		m.animTick++
		m.poll()

	case RenderedMsg:
		m.poll()
	}

	return m, tea.Batch(cmds...)
}

// request starts a recompute for the current remapper and size.
func (m *Model) request() {
	w, h := m.state.Size()
	if w <= 0 || h <= 0 || m.sampler == nil {
		return
	}
	gen := m.machine.Request(recompute.Job{
		Width:    w,
		Height:   h,
		Sampler:  m.sampler,
		Remapper: m.state.Remapper(),
	})
	m.state.RecordRequest(gen)
	m.phase = m.machine.Phase()
	m.repaint()
}

func (m *Model) poll() {
	img, phase := m.machine.Poll()
	m.phase = phase
	if img != nil && img != m.shown {
		m.shown = img
		m.state.RecordResult(img)
		m.repaint()
	}
}

func (m *Model) repaint() {
	rows, cols := m.mapRows(), m.width
	m.canvas = paintMap(m.shown, cols, rows, m.markers(cols, rows))
}

// mapRows is the number of terminal rows the map occupies.
func (m Model) mapRows() int {
	rows := m.height - headerLines - footerLines
	if rows < 1 {
		rows = 1
	}
	return rows
}

// mapPixels is the raster size that fills the map area: one column per
// pixel, two pixels per row.
func (m Model) mapPixels() (int, int) {
	w := m.width
	if w < 1 {
		w = 1
	}
	return w, 2 * m.mapRows()
}

// cellToDisplay converts a terminal cell to a display-space fraction.
func (m Model) cellToDisplay(x, y int) (u, v float64, ok bool) {
	row := y - headerLines
	if row < 0 || row >= m.mapRows() || x < 0 || x >= m.width {
		return 0, 0, false
	}
	w, h := m.state.Size()
	if w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return float64(x) / float64(w), float64(2*row) / float64(h), true
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	u, v, ok := m.cellToDisplay(msg.X, msg.Y)
	if !ok {
		m.hovered = false
		return
	}

	su, sv := m.state.Remapper().Untwist(u, v)
	m.hover = remap.Anchor{U: su, V: sv}
	m.hovered = true

	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return
	}

	m.log.Debug("click cell (%d, %d) display (%.4f, %.4f) source %v", msg.X, msg.Y, u, v, m.hover)
	r := m.state.AddAnchor(m.hover)
	if fb := r.Fallback(); fb != remap.FallbackNone {
		m.statusMsg = "Degenerate anchors, using " + fb.String() + " basis"
	} else {
		m.statusMsg = "Anchor " + m.hover.String()
	}
	m.request()
}

// markers places each anchor at its twisted display position.
func (m Model) markers(cols, rows int) []marker {
	r := m.state.Remapper()
	anchors := m.state.Anchors()
	out := make([]marker, 0, len(anchors))
	for i, a := range anchors {
		du, dv := r.Twist(a.U, a.V)
		out = append(out, marker{
			col:    int(du * float64(cols)),
			row:    int(dv * float64(rows)),
			newest: i == len(anchors)-1,
		})
	}
	return out
}

func (m *Model) export() {
	if m.shown == nil {
		m.statusMsg = "Nothing to export yet"
		return
	}
	path := filepath.Join(m.opts.ExportDir, fmt.Sprintf("greatcircle-%03d.webp", m.shown.Generation))
	if err := raster.Export(path, m.shown); err != nil {
		m.log.Error("export: %v", err)
		m.statusMsg = "Export failed: " + err.Error()
		return
	}
	m.state.RecordExport(path)
	m.log.Info("exported %s", path)
	m.statusMsg = "Exported " + path
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return m.renderHeader() + "\n" + m.canvas + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	var b strings.Builder
	title := fmt.Sprintf(" ls-greatcircle v%s ", version.Version)
	runes := []rune(title)
	for col, r := range runes {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(gradientColor(col, 0, len(runes), 1))).Bold(true)
		b.WriteString(style.Render(string(r)))
	}

	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorAnchorNewest))

	snap := m.state.Snapshot()
	var parts []string
	for _, a := range snap.Anchors {
		lon, lat := toDegrees(a)
		parts = append(parts, fmt.Sprintf("%.1f°, %.1f°", lon, lat))
	}
	anchors := "none"
	if len(parts) > 0 {
		anchors = strings.Join(parts, " → ")
	}
	b.WriteString(dimStyle.Render(" anchors: "))
	b.WriteString(accentStyle.Render(anchors))

	if fb := snap.Remapper.Fallback(); fb != remap.FallbackNone {
		warn := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
		b.WriteString(warn.Render(" (degenerate: " + fb.String() + ")"))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

	var status string
	switch p := m.phase.(type) {
	case recompute.Computing, recompute.Refreshing:
		spinner := spinnerFrames[m.animTick%len(spinnerFrames)]
		status = accentStyle.Render(spinner) + dimStyle.Render(" "+p.String()+"...")
	case recompute.Stable:
		status = accentStyle.Render("●") + dimStyle.Render(fmt.Sprintf(" gen %d (%s)",
			p.Shown.Generation, p.Shown.Elapsed.Round(time.Millisecond)))
	default:
		status = dimStyle.Render("idle")
	}

	if m.hovered {
		lon, lat := toDegrees(m.hover)
		status += dimStyle.Render(fmt.Sprintf("  |  %.2f°, %.2f°", lon, lat))
	}

	help := dimStyle.Render("click: anchor | s: sun | u: undo | c: clear | e: export | r: recompute | q: quit")
	footer := "  " + status + "  " + dimStyle.Render("|") + "  " + help

	if m.statusMsg != "" {
		footer += "\n  " + dimStyle.Render(m.statusMsg)
	}
	return footer
}

// toDegrees converts a source fraction to longitude east and latitude north,
// with the top of the map at +90°.
func toDegrees(a remap.Anchor) (lon, lat float64) {
	return a.U*360 - 180, 90 - a.V*180
}

// gradientColor returns a hex color for a position in the title gradient:
// blue -> purple -> magenta -> pink, darkening with row.
func gradientColor(col, row, width, height int) string {
	xRatio := float64(col) / float64(width)
	yRatio := float64(row) / float64(height)

	var r, g, b float64
	if xRatio < 0.33 {
		t := xRatio / 0.33
		r = 59 + t*(139-59)
		g = 130 + t*(92-130)
		b = 246
	} else if xRatio < 0.66 {
		t := (xRatio - 0.33) / 0.33
		r = 139 + t*(217-139)
		g = 92 + t*(70-92)
		b = 246 + t*(239-246)
	} else {
		t := (xRatio - 0.66) / 0.34
		r = 217 + t*(236-217)
		g = 70 + t*(72-70)
		b = 239 + t*(153-239)
	}

	f := 1.0 - yRatio*0.5
	return fmt.Sprintf("#%02X%02X%02X", clampByte(r*f), clampByte(g*f), clampByte(b*f))
}

func clampByte(v float64) int {
	return int(math.Max(0, math.Min(255, v)))
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Notify returns a worker callback that wakes the program when a raster is
// ready.
func Notify(p *tea.Program) func(gen uint64) {
	return func(gen uint64) {
		p.Send(RenderedMsg{Gen: gen})
	}
}
