package main

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

/*
 * The publish command uses Bubble Tea to prompt when the local and remote
 * categories disagree. All BubbleTea-related code is present in this file to
 * make easy to refactor or switch to another library someday.
 */

var (
	listWidth             = 40
	listHeight            = 8
	listTitleStyle        = lipgloss.NewStyle().MarginLeft(2)
	listItemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	listSelectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	helpStyle             = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)
	quitTextStyle         = lipgloss.NewStyle().Margin(1, 0, 2, 4)
)

// ChooseCategory blocks until the user picks between the locally recorded
// category and the remote one. Returns true to keep the local category.
func ChooseCategory(localName, remoteName string) bool {
	res, err := tea.NewProgram(newCategoryModel(localName, remoteName)).Run()
	if err != nil {
		log.Fatal(err)
	}
	return res.(categoryModel).keepLocal
}

func newCategoryModel(localName, remoteName string) categoryModel {
	items := []list.Item{
		categoryItem{label: fmt.Sprintf("Keep local category %q", localName), local: true},
		categoryItem{label: fmt.Sprintf("Use remote category %q", remoteName)},
	}

	l := list.New(items, categoryDelegate{}, listWidth, listHeight)
	l.Title = "The note and the forum disagree on the category."
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(false)
	l.Styles.Title = listTitleStyle
	l.Styles.HelpStyle = helpStyle

	return categoryModel{list: l}
}

type categoryItem struct {
	label string
	local bool
}

func (i categoryItem) FilterValue() string { return "" }

type categoryDelegate struct{}

func (d categoryDelegate) Height() int                             { return 1 }
func (d categoryDelegate) Spacing() int                            { return 0 }
func (d categoryDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d categoryDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(categoryItem)
	if !ok {
		return
	}

	fn := listItemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return listSelectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(i.label))
}

type categoryModel struct {
	list      list.Model
	keepLocal bool
	choice    string
	quitting  bool
}

func (m categoryModel) Init() tea.Cmd {
	return nil
}

func (m categoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		switch keypress := msg.String(); keypress {
		case "ctrl+c":
			// Abandoning the prompt falls back to the remote category
			m.quitting = true
			return m, tea.Quit

		case "enter":
			i, ok := m.list.SelectedItem().(categoryItem)
			if ok {
				m.choice = i.label
				m.keepLocal = i.local
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m categoryModel) View() string {
	if m.choice != "" {
		return quitTextStyle.Render(m.choice)
	}
	if m.quitting {
		return ""
	}
	return "\n" + m.list.View()
}
