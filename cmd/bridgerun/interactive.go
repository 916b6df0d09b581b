package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	hostbridge "github.com/nexabase/hostbridge"
	"github.com/nexabase/hostbridge/cursor"
	"github.com/nexabase/hostbridge/wazeroengine"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	identStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	rowNumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	endStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err      error
	bridge   *hostbridge.Bridge
	rows     *cursor.Rows
	view     viewport.Model
	filename string
	header   string
	fetched  []string
	done     bool
	ready    bool
}

func runInteractive(engineFile string, fetchSize int) error {
	ctx := context.Background()

	wasm, err := os.ReadFile(engineFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	var opts []wazeroengine.Option
	if fetchSize > 0 {
		opts = append(opts, wazeroengine.WithDefaultFetchSize(fetchSize))
	}
	eng, err := wazeroengine.New(ctx, wasm, opts...)
	if err != nil {
		return err
	}

	b := hostbridge.New(eng)
	defer b.Close(ctx)

	user, err := b.CurrentUser(ctx)
	if err != nil {
		return err
	}
	session, err := b.SessionUser(ctx)
	if err != nil {
		return err
	}

	rows, err := b.OpenRows(ctx)
	if err != nil {
		return err
	}
	defer rows.Close(ctx)

	m := interactiveModel{
		bridge:   b,
		rows:     rows,
		filename: engineFile,
		header:   fmt.Sprintf("current %s · session %s · fetch %d", user, session, rows.FetchSize()),
	}

	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m interactiveModel) Init() tea.Cmd {
	return nil
}

func (m interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 3
		footerHeight := 2
		if !m.ready {
			m.view = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.view.Width = msg.Width
			m.view.Height = msg.Height - headerHeight - footerHeight
		}
		m.view.SetContent(m.content())
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "n", "enter":
			m.fetchNext()
			m.view.SetContent(m.content())
			m.view.GotoBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

// fetchNext advances the cursor by one row. Once the cursor reports end of
// data or an error, the model stops advancing.
func (m *interactiveModel) fetchNext() {
	if m.done || m.err != nil {
		return
	}
	ok, err := m.rows.Next(context.Background())
	if err != nil {
		m.err = err
		return
	}
	if !ok {
		m.done = true
		return
	}
	data, err := io.ReadAll(m.rows.Current())
	if err != nil {
		m.err = err
		return
	}
	m.fetched = append(m.fetched, string(data))
}

func (m interactiveModel) content() string {
	var b strings.Builder
	for i, row := range m.fetched {
		b.WriteString(rowNumStyle.Render(fmt.Sprintf("%4d  ", i+1)))
		b.WriteString(fmt.Sprintf("%q", row))
		b.WriteByte('\n')
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
		b.WriteByte('\n')
	} else if m.done {
		b.WriteString(endStyle.Render("(end of data)"))
		b.WriteByte('\n')
	}
	return b.String()
}

func (m interactiveModel) View() string {
	if !m.ready {
		return "loading..."
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("bridgerun · " + m.filename))
	b.WriteByte('\n')
	b.WriteString(identStyle.Render(m.header))
	b.WriteString("\n\n")
	b.WriteString(m.view.View())
	b.WriteByte('\n')
	b.WriteString(helpStyle.Render("n/enter: next row · ↑/↓: scroll · q: quit"))
	return b.String()
}
