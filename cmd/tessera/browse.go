package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/hayeah/tessera/content"
	"github.com/hayeah/tessera/render"
)

// BrowseCmd lists the pages of a site with a fuzzy filter and a preview of
// the rendered output. Enter prints the selected URL.
type BrowseCmd struct {
	SiteFlags
}

// Run starts the TUI on stderr so the selected URL can be piped.
func (c *BrowseCmd) Run(ctx context.Context, stdout io.Writer) error {
	cfg, err := c.Config()
	if err != nil {
		return err
	}
	app, cleanup, err := BuildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	m := newBrowseModel(app.Site.Collection(), func(url string) string {
		res, err := app.Renderer.Render(ctx, render.Request{URL: url})
		if err != nil {
			return err.Error()
		}
		return res.Output
	})

	p := tea.NewProgram(m, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	bm, ok := final.(browseModel)
	if !ok {
		return fmt.Errorf("could not get final model state")
	}
	if bm.exitState != ExitStateConfirm || len(bm.filtered) == 0 {
		return nil
	}
	_, err = fmt.Fprintln(stdout, bm.filtered[bm.cursor].URL)
	return err
}

// ExitState indicates how the browser is exiting
type ExitState int

const (
	ExitStateNone    ExitState = iota
	ExitStateAbort             // Esc, Ctrl+C
	ExitStateConfirm           // Enter
)

type browseModel struct {
	textInput  textinput.Model
	searchTerm string

	pages    []*content.Page
	filtered []*content.Page
	cursor   int

	preview    viewport.Model
	renderPage func(url string) string
	previewURL string
	listWidth  int
	height     int
	ready      bool
	exitState  ExitState
}

func newBrowseModel(pages []*content.Page, renderPage func(url string) string) browseModel {
	ti := textinput.New()
	ti.Placeholder = "Type to fuzzy-search pages..."
	ti.Prompt = "> "
	ti.Focus()

	return browseModel{
		textInput:  ti,
		pages:      pages,
		filtered:   pages,
		preview:    viewport.New(0, 0),
		renderPage: renderPage,
	}
}

func (m browseModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.EnterAltScreen)
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.exitState != ExitStateNone {
		return m, tea.Quit
	}

	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := lipgloss.Height(m.textInput.View()) + 1
		m.height = msg.Height - headerHeight - 2
		m.listWidth = msg.Width / 3
		m.preview.Width = msg.Width - m.listWidth - 1
		m.preview.Height = m.height
		m.ready = true
		m.updatePreview()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.exitState = ExitStateAbort
			return m, tea.Quit
		case "enter":
			m.exitState = ExitStateConfirm
			return m, tea.Quit
		case "up":
			if m.cursor > 0 {
				m.cursor--
				m.updatePreview()
			}
			return m, nil
		case "down":
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
				m.updatePreview()
			}
			return m, nil
		case "pgup":
			m.preview.HalfViewUp()
			return m, nil
		case "pgdown":
			m.preview.HalfViewDown()
			return m, nil
		}
	}

	m.textInput, cmd = m.textInput.Update(msg)
	cmds = append(cmds, cmd)

	if term := m.textInput.Value(); term != m.searchTerm {
		m.searchTerm = term
		m.refilter()
		m.updatePreview()
	}
	return m, tea.Batch(cmds...)
}

// refilter narrows the page list to fuzzy matches of the search term, best
// match first.
func (m *browseModel) refilter() {
	if m.searchTerm == "" {
		m.filtered = m.pages
	} else {
		matches := fuzzy.FindFrom(m.searchTerm, pageSource(m.pages))
		m.filtered = make([]*content.Page, len(matches))
		for i, match := range matches {
			m.filtered[i] = m.pages[match.Index]
		}
	}
	m.cursor = max(0, min(m.cursor, len(m.filtered)-1))
}

// updatePreview renders the page under the cursor when it changed.
func (m *browseModel) updatePreview() {
	if len(m.filtered) == 0 {
		m.previewURL = ""
		m.preview.SetContent("")
		return
	}
	url := m.filtered[m.cursor].URL
	if url == m.previewURL {
		return
	}
	m.previewURL = url
	m.preview.SetContent(m.renderPage(url))
	m.preview.GotoTop()
}

var (
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func (m browseModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var list strings.Builder
	start := max(0, m.cursor-m.height+1)
	for i := start; i < len(m.filtered) && i < start+m.height; i++ {
		p := m.filtered[i]
		line := fmt.Sprintf("%s %s", p.URL, dimStyle.Render(p.Title()))
		if i == m.cursor {
			line = cursorStyle.Render("> " + p.URL + " " + p.Title())
		} else {
			line = "  " + line
		}
		list.WriteString(line + "\n")
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(m.listWidth).Height(m.height).Render(list.String()),
		lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).Render(m.preview.View()),
	)
	status := fmt.Sprintf("%d/%d pages (↑/↓ to navigate, PgUp/PgDn to scroll, Enter to print the URL, Esc to quit)",
		len(m.filtered), len(m.pages))
	return m.textInput.View() + "\n" + body + "\n" + status
}

// pageSource adapts pages for fuzzy matching on URL and title.
type pageSource []*content.Page

func (ps pageSource) String(i int) string { return ps[i].URL + " " + ps[i].Title() }

func (ps pageSource) Len() int { return len(ps) }
