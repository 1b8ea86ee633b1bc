// Package tui provides the interactive Bubble Tea dashboard for spendviz.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/theirongolddev/spendviz/internal/chart"
	"github.com/theirongolddev/spendviz/internal/config"
	"github.com/theirongolddev/spendviz/internal/loader"
	"github.com/theirongolddev/spendviz/internal/tui/components"
	"github.com/theirongolddev/spendviz/internal/tui/theme"
	"github.com/theirongolddev/spendviz/internal/views"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// panelLoadedMsg carries a finished fetch back to the UI goroutine.
type panelLoadedMsg struct {
	index  int
	result loader.Result
}

// panelView is one panel's loader plus whatever was built from its data.
type panelView struct {
	panel  views.Panel
	loader *loader.Loader
	spec   chart.Spec
	err    error
}

func (p panelView) state() loader.State { return p.loader.Snapshot().State }

// mapState is the region map tab: the built markers, a list cursor and
// the single selected region.
type mapState struct {
	panel     int // index into App.panels, -1 when no map panel
	spec      chart.MapSpec
	selection *chart.Selection
	cursor    int
}

// Options configures a new App.
type Options struct {
	Fetcher  loader.Fetcher
	Sections []views.Section
	Style    chart.Style
	Source   string // shown in the status bar
	Setup    bool   // show the first-run form before the dashboard
}

// App is the root Bubble Tea model.
type App struct {
	ctx      context.Context
	cancel   context.CancelFunc
	fetcher  loader.Fetcher
	sections []views.Section
	style    chart.Style
	source   string

	panels   []panelView
	sectionP [][]int // section index -> panel indexes
	maps     mapState

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	spinner   spinner.Model

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals SetupValues
	needSetup bool
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5
)

// loadConfigOrDefault loads config, returning defaults on error.
// This ensures the TUI can always start even if config is corrupted.
func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	if len(opts.Sections) == 0 {
		opts.Sections = views.DefaultSections()
	}
	if len(opts.Style.Palette) == 0 {
		opts.Style = chart.DefaultStyle()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	ctx, cancel := context.WithCancel(context.Background())
	a := App{
		ctx:       ctx,
		cancel:    cancel,
		fetcher:   opts.Fetcher,
		sections:  opts.Sections,
		style:     opts.Style,
		source:    opts.Source,
		spinner:   sp,
		needSetup: opts.Setup,
		maps:      mapState{panel: -1, selection: chart.NewSelection(chart.MapSpec{})},
	}

	a.sectionP = make([][]int, len(opts.Sections))
	for si, sec := range opts.Sections {
		for _, p := range sec.Panels {
			idx := len(a.panels)
			a.panels = append(a.panels, panelView{panel: p, loader: loader.New(opts.Fetcher)})
			a.sectionP[si] = append(a.sectionP[si], idx)
			if p.Kind == views.MapPanel && a.maps.panel < 0 {
				a.maps.panel = idx
			}
		}
	}

	if a.needSetup {
		a.setupVals = SetupValuesFrom(loadConfigOrDefault())
		a.setupForm = NewSetupForm(&a.setupVals)
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spinner.Tick, a.reload()}
	if a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	}
	return tea.Batch(cmds...)
}

// reload issues a fresh request for every panel. Earlier in-flight requests
// are cancelled and their results will be ignored. The map selection is
// cleared because its data is being replaced.
func (a *App) reload() tea.Cmd {
	a.maps.selection.Clear()
	a.maps.spec = chart.MapSpec{}
	a.maps.cursor = 0

	cmds := make([]tea.Cmd, len(a.panels))
	for i := range a.panels {
		p := &a.panels[i]
		p.spec, p.err = chart.Spec{}, nil
		req := p.loader.Begin(a.ctx, p.panel.Resource)
		cmds[i] = loadPanelCmd(p.loader, req, i)
	}
	return tea.Batch(cmds...)
}

func loadPanelCmd(l *loader.Loader, req loader.Request, index int) tea.Cmd {
	return func() tea.Msg {
		return panelLoadedMsg{index: index, result: l.Run(req)}
	}
}

// applyResult commits a finished fetch and builds the panel's chart. Stale
// results are dropped and leave the panel untouched.
func (a *App) applyResult(msg panelLoadedMsg) bool {
	if msg.index < 0 || msg.index >= len(a.panels) {
		return false
	}
	p := &a.panels[msg.index]
	if !p.loader.Commit(msg.result) {
		return false
	}

	res := views.PanelResult{Panel: p.panel, Snapshot: p.loader.Snapshot()}
	if p.panel.Kind == views.MapPanel {
		spec, err := res.Map(a.style)
		p.err = err
		if err == nil && msg.index == a.maps.panel {
			a.maps.spec = spec
			a.maps.selection.Reset(spec)
			a.maps.cursor = 0
		}
		return true
	}
	p.spec, p.err = res.Chart(a.style)
	return true
}

func (a App) counts() (loading, failed int) {
	for _, p := range a.panels {
		switch p.state() {
		case loader.Loading:
			loading++
		case loader.Failed:
			failed++
		}
	}
	return loading, failed
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case panelLoadedMsg:
		a.applyResult(msg)
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" {
			a.cancel()
			return a, tea.Quit
		}

		// First-run setup wizard intercepts all keys
		if a.needSetup && a.setupForm != nil {
			return a.updateSetupForm(msg)
		}

		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		if a.onMapTab() {
			if handled := a.updateMapKeys(key); handled {
				return a, nil
			}
		}

		switch key {
		case "q":
			a.cancel()
			return a, tea.Quit
		case "r":
			return a, a.reload()
		case "left", "shift+tab":
			a.activeTab = (a.activeTab - 1 + len(a.sections)) % len(a.sections)
		case "right", "tab":
			a.activeTab = (a.activeTab + 1) % len(a.sections)
		default:
			if idx := components.TabIdxByKey(key, len(a.sections)); idx >= 0 {
				a.activeTab = idx
			}
		}
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		_ = a.saveSetupConfig()
		if style, err := config.Style(loadConfigOrDefault()); err == nil {
			a.style = style
		}
		a.needSetup = false
		a.setupForm = nil
		return a, a.reload()
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) onMapTab() bool {
	if a.maps.panel < 0 {
		return false
	}
	for _, idx := range a.sectionP[a.activeTab] {
		if idx == a.maps.panel {
			return true
		}
	}
	return false
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  spendviz needs at least %d columns.\n",
		a.width, minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	bindings := []struct{ key, desc string }{
		{fmt.Sprintf("1-%d", len(a.sections)), "Jump to section"},
		{"← →", "Previous / Next section"},
		{"j k", "Move through regions (map)"},
		{"Enter", "Select region (map)"},
		{"r", "Reload all panels"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}
	for _, bind := range bindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
			descStyle.Render(bind.desc))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	names := make([]string, len(a.sections))
	for i, s := range a.sections {
		names[i] = s.Title
	}
	header := components.RenderTabBar(names, a.activeTab, w)

	loading, failed := a.counts()
	statusBar := components.RenderStatusBar(w, a.source, loading, failed)

	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	if a.onMapTab() {
		content = a.renderMapTab(cw)
	} else {
		content = a.renderSectionTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
