package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/topfloor/pkg/floorplan"
	tfio "github.com/matzehuels/topfloor/pkg/io"
)

// List styles
var (
	listDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	listLabelStyle = lipgloss.NewStyle().Foreground(colorGray).Width(10)
)

// viewCommand creates the view command for browsing a saved result.
func (c *CLI) viewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view [result.json]",
		Short: "Browse a saved floorplan interactively",
		Long: `Browse the placements of a result written by 'solve -o'.

Use the arrow keys (or j/k) to move, tab to switch between all pins and
symmetric pins only, and q to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := tfio.ImportReport(args[0])
			if err != nil {
				return err
			}
			if !report.Feasible() {
				printReport(report, false, false)
				return nil
			}
			_, err = tea.NewProgram(NewResultModel(report), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}

// =============================================================================
// ResultModel - Interactive placement browser
// =============================================================================

// ResultModel is the bubbletea model for browsing placements.
type ResultModel struct {
	Report    *tfio.Report
	Rows      []floorplan.Placement
	Cursor    int
	Offset    int
	Height    int
	Symmetric bool
}

// NewResultModel creates a browser over the placements of r.
func NewResultModel(r *tfio.Report) ResultModel {
	m := ResultModel{Report: r, Height: 15}
	m.filter()
	return m
}

// filter recomputes the visible rows.
func (m *ResultModel) filter() {
	m.Rows = m.Rows[:0]
	for _, p := range m.Report.Assignment.Placements {
		if !m.Symmetric || p.Role == floorplan.RoleSymPrimary || p.Role == floorplan.RoleSymSecondary {
			m.Rows = append(m.Rows, p)
		}
	}
	m.Cursor, m.Offset = 0, 0
}

func (m ResultModel) Init() tea.Cmd {
	return nil
}

func (m ResultModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "tab":
			m.Symmetric = !m.Symmetric
			m.Rows = nil
			m.filter()
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 12
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ResultModel) View() string {
	var b strings.Builder

	title := m.Report.Design
	if m.Symmetric {
		title += " (symmetric pins)"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  tab filter  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Rows))
	b.WriteString(placementTable(m.Rows[m.Offset:end], m.Cursor-m.Offset))
	b.WriteString("\n")

	if m.Cursor < len(m.Rows) {
		b.WriteString(m.details(m.Rows[m.Cursor]))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  objective %d  backend %s",
		min(m.Cursor+1, len(m.Rows)), len(m.Rows), m.Report.Assignment.Objective, m.Report.Backend)))
	return b.String()
}

// details describes the selected pin and, for symmetric pins, its mirror.
func (m ResultModel) details(p floorplan.Placement) string {
	var b strings.Builder
	b.WriteString(listLabelStyle.Render("pin") + StyleValue.Render(p.Pin) + "\n")
	b.WriteString(listLabelStyle.Render("slot") + StyleValue.Render(fmt.Sprintf("%s edge of %s, track %d", p.Side, p.Cell, p.Track)) + "\n")
	if mirror, ok := m.mirror(p); ok {
		b.WriteString(listLabelStyle.Render("mirror") + StyleHighlight.Render(fmt.Sprintf("%s at %s", mirror.Pin, mirror.Position)) + "\n")
	}
	return b.String()
}

// mirror finds the symmetric partner of p: the symmetric pin of the
// opposite role at the same height.
func (m ResultModel) mirror(p floorplan.Placement) (floorplan.Placement, bool) {
	var want floorplan.Role
	switch p.Role {
	case floorplan.RoleSymPrimary:
		want = floorplan.RoleSymSecondary
	case floorplan.RoleSymSecondary:
		want = floorplan.RoleSymPrimary
	default:
		return floorplan.Placement{}, false
	}
	for _, q := range m.Report.Assignment.Placements {
		if q.Role == want && q.Position.Y == p.Position.Y && q.Side != p.Side {
			return q, true
		}
	}
	return floorplan.Placement{}, false
}
