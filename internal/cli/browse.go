package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"erpmcp/pkg/models"
)

// Browse panel indices.
const (
	panelOperations = iota
	panelFlows
	browsePanelCount
)

type browseModel struct {
	erpKey      string
	activePanel int
	width       int
	height      int

	// Data.
	operations []models.Operation
	flowByOp   map[string]string
	flows      []models.Flow

	// Cursors, one per panel.
	opCursor   int
	flowCursor int

	loading bool
	err     error
}

// knowledgeLoadedMsg carries loaded data back to the model.
type knowledgeLoadedMsg struct {
	operations []models.Operation
	flowByOp   map[string]string
	flows      []models.Flow
	err        error
}

// Style definitions.
var (
	browseTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("62")).
				Padding(0, 1)

	browsePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")).
				Padding(1, 2)

	browseActiveStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	browseHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("62")).
				MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62"))
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
	requiredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	optionalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	constantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))

	browseHelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newBrowseModel(erpKey string) browseModel {
	return browseModel{
		erpKey:      erpKey,
		activePanel: panelOperations,
		loading:     true,
	}
}

func (m browseModel) Init() tea.Cmd {
	return loadKnowledge(m.erpKey)
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % browsePanelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + browsePanelCount) % browsePanelCount
			return m, nil
		case "up", "k":
			m.moveCursor(-1)
			return m, nil
		case "down", "j":
			m.moveCursor(1)
			return m, nil
		case "r":
			m.loading = true
			return m, loadKnowledge(m.erpKey)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case knowledgeLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.operations = msg.operations
		m.flowByOp = msg.flowByOp
		m.flows = msg.flows
		m.opCursor = 0
		m.flowCursor = 0
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m *browseModel) moveCursor(delta int) {
	switch m.activePanel {
	case panelOperations:
		m.opCursor = clampCursor(m.opCursor+delta, len(m.operations))
	case panelFlows:
		m.flowCursor = clampCursor(m.flowCursor+delta, len(m.flows))
	}
}

func clampCursor(pos, length int) int {
	if length == 0 {
		return 0
	}
	if pos < 0 {
		return 0
	}
	if pos >= length {
		return length - 1
	}
	return pos
}

func (m browseModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := browseTitleStyle.Render(fmt.Sprintf(" %s knowledge ", m.erpKey))
	help := browseHelpStyle.Render("tab: switch panel | j/k: move | r: reload | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading knowledge...\n\n%s", title, help)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	listPanel := m.renderListPanel()
	detailPanel := m.renderDetailPanel()

	availableWidth := m.width - 2

	var body string
	if availableWidth > 100 {
		colWidth := availableWidth / 2
		listPanel = m.applyBrowseStyle(true, listPanel, colWidth-4)
		detailPanel = m.applyBrowseStyle(false, detailPanel, colWidth-4)
		body = lipgloss.JoinHorizontal(lipgloss.Top, listPanel, detailPanel)
	} else {
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		listPanel = m.applyBrowseStyle(true, listPanel, panelWidth)
		detailPanel = m.applyBrowseStyle(false, detailPanel, panelWidth)
		body = lipgloss.JoinVertical(lipgloss.Left, listPanel, detailPanel)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m browseModel) applyBrowseStyle(isList bool, content string, width int) string {
	style := browsePanelStyle
	if isList {
		style = browseActiveStyle
	}
	return style.Width(width).Render(content)
}

func (m browseModel) renderListPanel() string {
	if m.activePanel == panelFlows {
		return m.renderFlowList()
	}
	return m.renderOperationList()
}

func (m browseModel) renderOperationList() string {
	var b strings.Builder
	b.WriteString(browseHeaderStyle.Render(fmt.Sprintf("Operations (%d)", len(m.operations))))
	b.WriteString("\n")

	if len(m.operations) == 0 {
		b.WriteString("  No operations loaded.")
		return b.String()
	}

	for i, op := range m.operations {
		line := fmt.Sprintf("  %-26s %s", op.Method, categoryStyle.Render(op.Category))
		if i == m.opCursor {
			line = selectedStyle.Render("> " + op.Method)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func (m browseModel) renderFlowList() string {
	var b strings.Builder
	b.WriteString(browseHeaderStyle.Render(fmt.Sprintf("Flows (%d)", len(m.flows))))
	b.WriteString("\n")

	if len(m.flows) == 0 {
		b.WriteString("  No flows catalogued.")
		return b.String()
	}

	for i, flow := range m.flows {
		line := "  " + flow.Name
		if i == m.flowCursor {
			line = selectedStyle.Render("> " + flow.Name)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func (m browseModel) renderDetailPanel() string {
	if m.activePanel == panelFlows {
		return m.renderFlowDetail()
	}
	return m.renderOperationDetail()
}

func (m browseModel) renderOperationDetail() string {
	var b strings.Builder
	b.WriteString(browseHeaderStyle.Render("Operation"))
	b.WriteString("\n")

	if len(m.operations) == 0 {
		b.WriteString("  Nothing selected.")
		return b.String()
	}

	op := m.operations[m.opCursor]
	b.WriteString(fmt.Sprintf("  %s\n  %s\n", op.Method, op.Summary))
	b.WriteString(fmt.Sprintf("  category: %s\n", op.Category))
	if flow, ok := m.flowByOp[op.Method]; ok {
		b.WriteString(fmt.Sprintf("  flow:     %s\n", flow))
	}

	if len(op.RequiredFields) > 0 {
		b.WriteString("\n" + requiredStyle.Render("  Required fields") + "\n")
		for _, name := range sortedFieldNames(op.RequiredFields) {
			b.WriteString("    " + describeField(name, op.RequiredFields[name]) + "\n")
		}
	}
	if len(op.OptionalFields) > 0 {
		b.WriteString("\n" + optionalStyle.Render("  Optional fields") + "\n")
		for _, name := range sortedFieldNames(op.OptionalFields) {
			b.WriteString("    " + describeField(name, op.OptionalFields[name]) + "\n")
		}
	}

	return b.String()
}

func (m browseModel) renderFlowDetail() string {
	var b strings.Builder
	b.WriteString(browseHeaderStyle.Render("Flow"))
	b.WriteString("\n")

	if len(m.flows) == 0 {
		b.WriteString("  Nothing selected.")
		return b.String()
	}

	flow := m.flows[m.flowCursor]
	b.WriteString(fmt.Sprintf("  %s\n  %s\n", flow.Name, flow.Description))

	if len(flow.Anatomy) > 0 {
		b.WriteString("\n  Steps\n")
		for _, step := range flow.Anatomy {
			b.WriteString(fmt.Sprintf("    %d. %s\n", step.Step, step.Title))
		}
	}

	if len(flow.Constants) > 0 {
		b.WriteString("\n  Constants\n")
		names := make([]string, 0, len(flow.Constants))
		for name := range flow.Constants {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			c := flow.Constants[name]
			b.WriteString("    " + constantStyle.Render(fmt.Sprintf("%s = %s", name, c.Value)) + "\n")
		}
	}

	if len(flow.UsedByOperations) > 0 {
		b.WriteString(fmt.Sprintf("\n  Used by %d operation(s)\n", len(flow.UsedByOperations)))
	}

	return b.String()
}

func sortedFieldNames(fields map[string]models.FieldSpec) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func describeField(name string, spec models.FieldSpec) string {
	desc := fmt.Sprintf("%-18s %s", name, spec.Type)
	if spec.MaxLength > 0 {
		desc += fmt.Sprintf(" (max length %d)", spec.MaxLength)
	}
	if spec.Max > 0 {
		desc += fmt.Sprintf(" (max %v)", spec.Max)
	}
	return desc
}

// loadKnowledge builds a tea.Cmd that loads the ERP's operations and
// flows from the registry.
func loadKnowledge(erpKey string) tea.Cmd {
	return func() tea.Msg {
		var result knowledgeLoadedMsg

		if Registry == nil {
			result.err = fmt.Errorf("ERP registry not initialized")
			return result
		}

		facade, err := Registry.Resolve(erpKey)
		if err != nil {
			result.err = err
			return result
		}

		result.operations = facade.Knowledge().AllOperations()
		result.flowByOp = make(map[string]string)

		if flows, ok := facade.Flows(); ok {
			result.flows = flows.AllFlows()
			for _, op := range result.operations {
				if flow, ok := flows.FlowForOperation(op.Method); ok {
					result.flowByOp[op.Method] = flow
				}
			}
		}

		return result
	}
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactive TUI browser for operations and flows",
	Long: `Launch an interactive terminal browser over the ERP's knowledge base.

The operations panel shows every operation with its category, required
and optional fields, and owning flow. The flows panel shows each flow's
steps and constants. Navigate with Tab and j/k, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Registry == nil {
			return fmt.Errorf("ERP registry not initialized")
		}
		key, _ := cmd.Flags().GetString("erp")
		p := tea.NewProgram(newBrowseModel(key), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
