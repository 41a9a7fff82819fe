package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cuesplice/internal/subtitles"
)

var (
	pickTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	pickTimeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).PaddingLeft(2)
	pickItemStyle     = lipgloss.NewStyle().PaddingLeft(2)
	pickSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	pickStoredStyle   = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("8"))
)

type cueItem struct {
	index    int
	entry    subtitles.Entry
	selected bool
	// stored marks a subtitle that already has a scene in the project.
	stored string
}

func (i cueItem) FilterValue() string { return i.entry.Text }

type cueDelegate struct{}

func (d cueDelegate) Height() int                             { return 2 }
func (d cueDelegate) Spacing() int                            { return 0 }
func (d cueDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d cueDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(cueItem)
	if !ok {
		return
	}

	checkbox := "☐"
	switch {
	case i.stored != "":
		checkbox = "■"
	case i.selected:
		checkbox = "◼"
	}
	timing := pickTimeStyle.Render(fmt.Sprintf("#%d  %s - %s", i.index, i.entry.Start, i.entry.End))
	line := fmt.Sprintf("%s %s", checkbox, truncate(i.entry.Text, 72))

	render := pickItemStyle.Render
	if i.stored != "" {
		render = pickStoredStyle.Render
	}
	if index == m.Index() {
		render = func(s ...string) string {
			return pickSelectedStyle.Render("> " + strings.Join(s, " "))
		}
	}
	fmt.Fprintf(w, "%s\n%s\n", timing, render(line))
}

type pickKeys struct {
	toggle key.Binding
	save   key.Binding
	quit   key.Binding
}

func newPickKeys() pickKeys {
	return pickKeys{
		toggle: key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		save:   key.NewBinding(key.WithKeys("enter", "s"), key.WithHelp("enter", "save")),
		quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// pickModel lets the user mark the subtitles a scene should replace.
type pickModel struct {
	list    list.Model
	keys    pickKeys
	scene   string
	project string
	saved   bool
	done    bool
}

func newPickModel(entries []subtitles.Entry, stored map[int]string, scene, project string) pickModel {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = cueItem{index: i, entry: e, stored: stored[i]}
	}
	keys := newPickKeys()
	l := list.New(items, cueDelegate{}, 80, 18)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)
	l.SetShowPagination(false)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.toggle, keys.save}
	}
	return pickModel{list: l, keys: keys, scene: scene, project: project}
}

func (m pickModel) Init() tea.Cmd { return nil }

func (m pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, max(msg.Height-3, 4))
		return m, nil
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.quit):
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.save):
			m.saved = true
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.toggle):
			m.toggleCurrent()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *pickModel) toggleCurrent() {
	items := m.list.Items()
	idx := m.list.GlobalIndex()
	if idx < 0 || idx >= len(items) {
		return
	}
	item, ok := items[idx].(cueItem)
	if !ok || item.stored != "" {
		return
	}
	item.selected = !item.selected
	m.list.SetItem(idx, item)
}

func (m pickModel) View() string {
	if m.done {
		return ""
	}
	header := pickTitleStyle.Render("Scene: "+m.scene) + "  " + pickTimeStyle.Render("project "+m.project)
	return header + "\n\n" + m.list.View()
}

// Selected returns the newly marked subtitle indices in order.
func (m pickModel) Selected() []int {
	var out []int
	for _, it := range m.list.Items() {
		if item, ok := it.(cueItem); ok && item.selected {
			out = append(out, item.index)
		}
	}
	return out
}
