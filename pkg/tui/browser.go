package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/ormasoftchile/inquest/pkg/answer"
	"github.com/ormasoftchile/inquest/pkg/runtime"
	"github.com/ormasoftchile/inquest/pkg/schema"
)

// resultItem adapts one recorded result to the bubbles list component.
type resultItem struct {
	result runtime.Result
}

func (i resultItem) Title() string {
	glyph := GlyphAnswered
	switch i.result.Disposition {
	case runtime.DispositionDefinedSkipped:
		glyph = GlyphDefinedSkip
	case runtime.DispositionConditionSkipped:
		glyph = GlyphConditionSkip
	}
	return fmt.Sprintf("%s %s = %s", glyph, i.result.Parameter, answer.Stringify(i.result.Value))
}

func (i resultItem) Description() string {
	kind := i.result.Action.Kind()
	return fmt.Sprintf("action %d · %s · %s", i.result.ActionIndex, kind, i.result.Disposition)
}

func (i resultItem) FilterValue() string { return i.result.Parameter }

// Model is the results browser: a list of resolved parameters on the left of
// the focus, with an optional detail panel for the selected result.
type Model struct {
	list       list.Model
	results    []runtime.Result
	showDetail bool
	width      int
	height     int
}

// NewModel builds a browser over the given results.
func NewModel(title string, results []runtime.Result) Model {
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = resultItem{result: r}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.Styles.Title = headerStyle

	return Model{list: l, results: results}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case tea.KeyMsg:
		// Let an active filter consume keystrokes first.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "enter":
			m.showDetail = !m.showDetail
			return m, nil
		case "esc":
			if m.showDetail {
				m.showDetail = false
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.showDetail {
		if it, ok := m.list.SelectedItem().(resultItem); ok {
			return m.detailView(it.result)
		}
	}
	return m.list.View() + "\n" + m.keyBar()
}

// detailView renders the full record of the selected result, including the
// originating action as YAML.
func (m Model) detailView(r runtime.Result) string {
	disp := answeredStyle
	if r.Disposition.Skipped() {
		disp = skippedStyle
	}

	var body string
	body += detailLabelStyle.Render("Parameter:   ") + detailValueStyle.Render(r.Parameter) + "\n"
	body += detailLabelStyle.Render("Value:       ") + detailValueStyle.Render(answer.Stringify(r.Value)) + "\n"
	body += detailLabelStyle.Render("Disposition: ") + disp.Render(string(r.Disposition)) + "\n"
	body += detailLabelStyle.Render("Action:      ") + detailValueStyle.Render(fmt.Sprintf("#%d (%s)", r.ActionIndex, r.Action.Kind())) + "\n"
	body += "\n" + detailLabelStyle.Render("Definition") + "\n" + actionYAML(r.Action)

	panel := panelBorder.Width(max(20, m.width-4)).Render(body)
	bar := keyStyle.Render("Esc") + keyDescStyle.Render(":back") + "  " +
		keyStyle.Render("q") + keyDescStyle.Render(":quit")
	return lipgloss.JoinVertical(lipgloss.Left, panel, bar)
}

func (m Model) keyBar() string {
	return keyStyle.Render("↑↓") + keyDescStyle.Render(":browse") + "  " +
		keyStyle.Render("Enter") + keyDescStyle.Render(":detail") + "  " +
		keyStyle.Render("/") + keyDescStyle.Render(":filter") + "  " +
		keyStyle.Render("q") + keyDescStyle.Render(":quit")
}

func actionYAML(a schema.Action) string {
	data, err := yaml.Marshal(a)
	if err != nil {
		return fmt.Sprintf("(unrenderable: %v)", err)
	}
	return detailValueStyle.Render(string(data))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
