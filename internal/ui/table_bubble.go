// Package ui holds the interactive terminal views.
package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mithrel/homepage/pkg/api"
)

// RenderPostsTable opens an interactive Bubble Tea table to browse posts and
// returns the slug picked with enter, or "" when the user quits.
func RenderPostsTable(ctx context.Context, posts []api.Post, headers bool) (string, error) {
	m := newPostsModel(posts, headers)
	p := tea.NewProgram(m, tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	return final.(postsModel).selected, nil
}

type postsModel struct {
	table    table.Model
	slugs    []string
	selected string
}

func newPostsModel(posts []api.Post, headers bool) postsModel {
	cols := []table.Column{
		{Title: "Slug", Width: 28},
		{Title: "Title", Width: 40},
		{Title: "Date", Width: 18},
		{Title: "Tags", Width: 24},
	}
	if !headers {
		for i := range cols {
			cols[i].Title = ""
		}
	}

	rows := make([]table.Row, 0, len(posts))
	slugs := make([]string, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, table.Row{
			truncate(p.Slug, 28),
			truncate(p.Title, 40),
			truncate(p.Date, 18),
			truncate(strings.Join(p.Tags, ", "), 24),
		})
		slugs = append(slugs, p.Slug)
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(12, max(3, len(rows)+3))),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return postsModel{table: t, slugs: slugs}
}

func (m postsModel) Init() tea.Cmd { return nil }

func (m postsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "enter":
			if i := m.table.Cursor(); i >= 0 && i < len(m.slugs) {
				m.selected = m.slugs[i]
			}
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m postsModel) View() string {
	if len(m.slugs) == 0 {
		return "(no posts)\n"
	}
	return m.table.View() + "\n↑/↓ to navigate • enter to open • q to exit\n"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
