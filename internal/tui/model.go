// Package tui is the interactive terminal dashboard. It owns no weather
// state: every key maps to a controller operation and every frame is drawn
// from the latest view the controller published.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/i474232898/weathervision/internal/controller"
	"github.com/i474232898/weathervision/internal/prefs"
	"github.com/i474232898/weathervision/internal/render"
	"github.com/i474232898/weathervision/internal/weather"
)

// Controller is what the TUI drives.
type Controller interface {
	AddRenderer(r controller.Renderer)
	Boot(ctx context.Context) controller.Outcome
	View() controller.View
	Search(ctx context.Context, query string) ([]weather.Place, error)
	SelectPlace(ctx context.Context, p weather.Place) controller.Outcome
	SelectQuery(ctx context.Context, query string) (controller.Outcome, error)
	UseMyLocation(ctx context.Context) controller.Outcome
	SetUnit(ctx context.Context, u weather.Unit) controller.Outcome
	SelectDay(date string) string
	SelectHour(i int) int
	SelectTab(t controller.Tab) controller.Tab
	Refresh(ctx context.Context) controller.Outcome
	Retry(ctx context.Context) controller.Outcome
	DismissNotice()
	ToggleCurrentFavorite(ctx context.Context) bool
	SelectFavorite(ctx context.Context, i int) controller.Outcome
	RefreshDashboard(ctx context.Context) []controller.DashboardCard
	CycleTheme(ctx context.Context) prefs.Theme
	ToggleSound(ctx context.Context) bool
	ToggleA11y(ctx context.Context) bool
	ToggleAutoRefresh(ctx context.Context) bool
	Compare(dateA, dateB string) (controller.Comparison, bool)
}

// viewMsg carries a published view into the event loop.
type viewMsg controller.View

type searchMsg struct {
	query  string
	places []weather.Place
	err    error
}

type doneMsg struct{ err error }

const minQueryLen = 2

// Model is the bubbletea model.
type Model struct {
	ctx      context.Context
	ctrl     Controller
	terminal render.Terminal

	view    controller.View
	hasView bool

	searching bool
	input     textinput.Model
	results   []weather.Place
	cursor    int

	modal string
	err   error
	width int
}

func NewModel(ctx context.Context, ctrl Controller, terminal render.Terminal) Model {
	ti := textinput.New()
	ti.Placeholder = "Search a city…"
	ti.CharLimit = 100
	ti.Width = 40
	return Model{ctx: ctx, ctrl: ctrl, terminal: terminal, input: ti}
}

// Init boots the controller; its first views arrive as viewMsg.
func (m Model) Init() tea.Cmd {
	return m.run(func(ctx context.Context) error {
		m.ctrl.Boot(ctx)
		return nil
	})
}

// run executes fn off the event loop. Controller calls publish views
// synchronously, so they must never run inside Update.
func (m Model) run(fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return doneMsg{err: fn(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case viewMsg:
		m.view = controller.View(msg)
		m.hasView = true
		return m, nil

	case searchMsg:
		// Drop results for a query the user has since changed.
		if msg.query != strings.TrimSpace(m.input.Value()) {
			return m, nil
		}
		m.results, m.err, m.cursor = msg.places, msg.err, 0
		return m, nil

	case doneMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.input.Blur()
		m.results = nil
		return m, nil

	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case tea.KeyDown:
		if m.cursor < len(m.results)-1 {
			m.cursor++
		}
		return m, nil

	case tea.KeyEnter:
		query := strings.TrimSpace(m.input.Value())
		m.searching = false
		m.input.Blur()
		m.input.SetValue("")
		if len(m.results) > 0 {
			p := m.results[m.cursor]
			m.results = nil
			return m, m.run(func(ctx context.Context) error {
				m.ctrl.SelectPlace(ctx, p)
				return nil
			})
		}
		if query == "" {
			return m, nil
		}
		return m, m.run(func(ctx context.Context) error {
			_, err := m.ctrl.SelectQuery(ctx, query)
			return err
		})
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	query := strings.TrimSpace(m.input.Value())
	if m.input.Value() == before || len([]rune(query)) < minQueryLen {
		return m, cmd
	}
	ctx, ctrl := m.ctx, m.ctrl
	return m, tea.Batch(cmd, func() tea.Msg {
		places, err := ctrl.Search(ctx, query)
		return searchMsg{query: query, places: places, err: err}
	})
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal != "" {
		if msg.Type == tea.KeyEsc || msg.String() == "q" {
			m.modal = ""
		}
		return m, nil
	}

	v := m.view
	switch key := msg.String(); key {
	case "q":
		return m, tea.Quit
	case "/":
		m.searching = true
		m.err = nil
		return m, m.input.Focus()
	case "1", "2", "3", "4", "5":
		tab := render.Tabs()[key[0]-'1']
		cmds := []tea.Cmd{m.run(func(context.Context) error {
			m.ctrl.SelectTab(tab)
			return nil
		})}
		if tab == controller.TabDashboard {
			cmds = append(cmds, m.run(func(ctx context.Context) error {
				m.ctrl.RefreshDashboard(ctx)
				return nil
			}))
		}
		return m, tea.Batch(cmds...)
	case "r":
		return m, m.run(func(ctx context.Context) error {
			if v.Blocked() {
				m.ctrl.Retry(ctx)
			} else {
				m.ctrl.Refresh(ctx)
			}
			return nil
		})
	case "u":
		next := weather.UnitImperial
		if v.Unit == weather.UnitImperial {
			next = weather.UnitMetric
		}
		return m, m.run(func(ctx context.Context) error {
			m.ctrl.SetUnit(ctx, next)
			return nil
		})
	case "g":
		return m, m.run(func(ctx context.Context) error {
			m.ctrl.UseMyLocation(ctx)
			return nil
		})
	case "f":
		return m, m.run(func(ctx context.Context) error {
			m.ctrl.ToggleCurrentFavorite(ctx)
			return nil
		})
	case "left", "right":
		if date, ok := shiftDay(v, key == "right"); ok {
			return m, m.run(func(context.Context) error {
				m.ctrl.SelectDay(date)
				return nil
			})
		}
	case "up", "down":
		if v.Tab == controller.TabDashboard {
			break
		}
		hour := shiftHour(v, key == "down")
		return m, m.run(func(context.Context) error {
			m.ctrl.SelectHour(hour)
			return nil
		})
	case "enter":
		if v.Tab == controller.TabDashboard && len(v.Favorites) > 0 {
			return m, m.run(func(ctx context.Context) error {
				m.ctrl.SelectFavorite(ctx, 0)
				return nil
			})
		}
	case "t":
		return m, m.run(func(ctx context.Context) error {
			m.ctrl.CycleTheme(ctx)
			return nil
		})
	case "s":
		return m, m.run(func(ctx context.Context) error {
			m.ctrl.ToggleSound(ctx)
			return nil
		})
	case "a":
		return m, m.run(func(ctx context.Context) error {
			m.ctrl.ToggleA11y(ctx)
			return nil
		})
	case "p":
		return m, m.run(func(ctx context.Context) error {
			m.ctrl.ToggleAutoRefresh(ctx)
			return nil
		})
	case "x":
		return m, m.run(func(context.Context) error {
			m.ctrl.DismissNotice()
			return nil
		})
	case "e":
		m.modal = render.ExplainModal(v, render.StylesFor(v))
	case "c":
		if next, ok := shiftDay(v, true); ok {
			if cmp, ok := m.ctrl.Compare(v.SelectedDay, next); ok {
				today := v.Snapshot.Current.Day()
				m.modal = render.CompareModal(cmp, today, render.StylesFor(v))
			}
		}
	}
	return m, nil
}

// shiftDay returns the day before or after the selected one.
func shiftDay(v controller.View, forward bool) (string, bool) {
	if v.Snapshot == nil {
		return "", false
	}
	days := v.Snapshot.Daily
	for i, d := range days {
		if d.Date != v.SelectedDay {
			continue
		}
		j := i - 1
		if forward {
			j = i + 1
		}
		if j < 0 || j >= len(days) {
			return "", false
		}
		return days[j].Date, true
	}
	return "", false
}

// shiftHour moves the hour selection, starting from the first hour.
func shiftHour(v controller.View, forward bool) int {
	n := len(v.Hours())
	switch {
	case n == 0:
		return controller.NoHour
	case v.SelectedHour < 0:
		return 0
	case forward:
		return min(v.SelectedHour+1, n-1)
	default:
		return max(v.SelectedHour-1, 0)
	}
}

var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

func (m Model) View() string {
	if !m.hasView {
		return "Loading…"
	}
	s := render.StylesFor(m.view)

	var sections []string
	if m.searching {
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1).
			Render(m.input.View())
		sections = append(sections, box)
		for i, p := range m.results {
			marker := "  "
			if i == m.cursor {
				marker = "> "
			}
			sections = append(sections, marker+p.Title())
		}
	}
	if m.err != nil {
		sections = append(sections, s.Error.Render("✗ "+m.err.Error()))
	}

	if m.modal != "" {
		sections = append(sections, m.modal, helpStyle.Render("Esc: close"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	sections = append(sections, m.terminal.Screen(m.view),
		helpStyle.Render("/ search • 1-5 tabs • ←/→ day • ↑/↓ hour • u unit • f favorite • g locate • r refresh • e explain • c compare • t theme • s sound • a a11y • p auto • x dismiss • q quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
