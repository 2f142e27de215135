package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/lineage"
	"github.com/matzehuels/lineage/pkg/pipeline"
	"github.com/matzehuels/lineage/pkg/session"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listMarkedStyle   = lipgloss.NewStyle().Foreground(colorYellow)
	panelStyle        = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// browseCommand creates the interactive node browser.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		noCache bool
		fresh   bool
	)
	var opts pipeline.Options

	cmd := &cobra.Command{
		Use:   "browse [record.json|layout.json]",
		Short: "Browse a lineage graph and select nodes interactively",
		Long: `Browse a lineage graph and select nodes interactively.

Nodes are listed by depth, upstream first. Enter selects the node under the
cursor, Esc closes the selection and q quits. The selection is remembered per
entity, so the next browse of the same entity starts where this one ended.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts := c.layoutOptions(cmd, opts)

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			l, _, err := loadLayout(ctx, runner, args[0], opts)
			if err != nil {
				return err
			}
			if l.Empty {
				printWarning("%s: %s", l.EntityID, l.Message)
				return nil
			}

			store, err := session.NewFileStore("")
			if err != nil {
				return err
			}
			return c.runBrowse(ctx, store, l.ToGraph(), l.Revision, fresh)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "ignore the remembered selection")
	addUnitFlags(cmd, &opts)

	return cmd
}

// runBrowse restores the remembered selection, runs the browser and saves
// the final selection. A selection remembered from another revision of the
// entity's record is dropped.
func (c *CLI) runBrowse(ctx context.Context, store session.Store, g lineage.Graph, revision string, fresh bool) error {
	entityID := g.Focal().Entity.ID
	sess := session.ForEntity(entityID, session.DefaultTTL)
	if !fresh {
		saved, err := store.Get(ctx, sess.ID)
		switch {
		case err != nil:
			c.Logger.Warn("could not read saved selection", "entity", entityID, "err", err)
		case saved == nil:
		case !saved.Current(revision):
			c.Logger.Debug("record changed, dropping saved selection", "entity", entityID)
			saved.Clear()
			sess = saved
		default:
			sess = saved
		}
	}

	m := newBrowseModel(g, sess)
	p := tea.NewProgram(m, tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	fm, ok := finalModel.(browseModel)
	if !ok {
		return nil
	}
	if sess.Selected != nil {
		sess.Revision = revision
	}
	if err := store.Set(ctx, sess); err != nil {
		return fmt.Errorf("save selection: %w", err)
	}

	if cur, open := fm.sel.Current(); open {
		printSuccess("Selected %s", cur.Name)
		printKeyValue("Node", cur.ID)
		printKeyValue("Type", cur.Type)
	} else {
		printDetail("No selection")
	}
	return nil
}

// =============================================================================
// browseModel - Interactive node selection
// =============================================================================

// browseModel lists the nodes of one lineage graph and drives a
// lineage.Selection from key presses.
type browseModel struct {
	nodes  []lineage.Node
	sel    *lineage.Selection
	cursor int
	offset int
	height int
}

// newBrowseModel lists nodes row by row, upstream first, and reopens the
// session's selection if its node is still in the graph.
func newBrowseModel(g lineage.Graph, sess *session.Session) browseModel {
	nodes := make([]lineage.Node, 0, len(g.Nodes))
	for _, row := range g.Rows {
		for _, id := range row.NodeIDs {
			if n, ok := g.Node(id); ok {
				nodes = append(nodes, n)
			}
		}
	}

	m := browseModel{nodes: nodes, height: 15}
	var prev string
	if sess.Selected != nil {
		prev = sess.Selected.ID
	}
	m.sel = lineage.NewSelection(g, sess.Apply)
	if prev == "" {
		m.cursor = m.indexOf(g.Focal().ID)
		return m
	}
	if _, err := m.sel.Select(prev); err != nil {
		sess.Clear()
		m.cursor = m.indexOf(g.Focal().ID)
		return m
	}
	m.cursor = m.indexOf(prev)
	m.scroll()
	return m
}

func (m browseModel) indexOf(id string) int {
	for i, n := range m.nodes {
		if n.ID == id {
			return i
		}
	}
	return 0
}

func (m *browseModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if !m.sel.IsOpen() {
				return m, tea.Quit
			}
			m.sel.Close()
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.nodes)-1 {
				m.cursor++
			}
		case "enter":
			if len(m.nodes) > 0 {
				_, _ = m.sel.Select(m.nodes[m.cursor].ID)
			}
		}
		m.scroll()
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-12, 5)
		m.scroll()
	}
	return m, nil
}

func (m browseModel) View() string {
	var b strings.Builder

	focal := m.sel.Graph().Focal()
	b.WriteString(StyleTitle.Render("Lineage of " + focal.Entity.Label()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  esc close  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.nodes))
	rows := make([][]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		n := m.nodes[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, formatDepth(n.Depth), n.Label(), n.Entity.Type, string(n.Role)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Depth", "Entity", "Type", "Role").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.offset + row
			if idx >= len(m.nodes) {
				return lipgloss.NewStyle()
			}
			n := m.nodes[idx]
			classes := m.sel.Class(n.ID)
			switch {
			case strings.Contains(classes, lineage.ClassSelected):
				return listMarkedStyle.Bold(idx == m.cursor)
			case idx == m.cursor:
				return listSelectedStyle
			case col == 4:
				return roleStyle(n.Role, n.Core)
			case strings.Contains(classes, lineage.ClassCore):
				return listNormalStyle.Bold(true)
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.nodes))))
	b.WriteString("\n\n")
	b.WriteString(m.panel())
	return b.String()
}

// panel is the detail panel for the current selection.
func (m browseModel) panel() string {
	cur, open := m.sel.Current()
	if !open {
		return listDimStyle.Render("  Nothing selected")
	}
	lines := []string{
		StyleTitle.Render(cur.Name),
		StyleDim.Render("id   ") + StyleValue.Render(cur.ID),
		StyleDim.Render("type ") + StyleValue.Render(cur.Type),
	}
	if m.sel.IsMainNode() {
		lines = append(lines, StyleHighlight.Render("focal entity"))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

// formatDepth renders signed depths with an explicit sign: -2, 0, +1.
func formatDepth(d int) string {
	if d > 0 {
		return "+" + strconv.Itoa(d)
	}
	return strconv.Itoa(d)
}
