package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
)

// Picker is a bubbletea model that walks the operator through one
// resolution choice per platform. It starts from the configured
// defaults and only offers each platform's closed choice set.
type Picker struct {
	report        *domain.DuplicateReport
	plan          domain.ResolutionPlan
	allowRecreate bool
	styles        *Styles

	row       int
	confirmed bool
	aborted   bool
}

// NewPicker creates a picker seeded with the default plan.
func NewPicker(report *domain.DuplicateReport, defaults domain.ResolutionPlan, allowRecreate bool) *Picker {
	return &Picker{
		report:        report,
		plan:          defaults.Clone(),
		allowRecreate: allowRecreate,
		styles:        DefaultStyles(),
	}
}

// Plan returns the operator's chosen plan.
func (p *Picker) Plan() domain.ResolutionPlan {
	return p.plan.Clone()
}

// Confirmed reports whether the operator accepted the plan.
func (p *Picker) Confirmed() bool {
	return p.confirmed
}

// Aborted reports whether the operator cancelled.
func (p *Picker) Aborted() bool {
	return p.aborted
}

// Init implements tea.Model.
func (p *Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p *Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if p.row > 0 {
			p.row--
		}
	case "down", "j":
		if p.row < len(domain.ProvisionOrder)-1 {
			p.row++
		}
	case "left", "h":
		p.cycle(-1)
	case "right", "l", "tab", " ":
		p.cycle(1)
	case "enter":
		p.confirmed = true
		return p, tea.Quit
	case "q", "esc", "ctrl+c":
		p.aborted = true
		return p, tea.Quit
	}

	return p, nil
}

// cycle moves the current platform's choice through its closed set.
func (p *Picker) cycle(direction int) {
	platform := domain.ProvisionOrder[p.row]
	choices := p.legalChoices(platform)
	if len(choices) == 0 {
		return
	}

	current := 0
	for i, c := range choices {
		if c == p.plan[platform] {
			current = i
			break
		}
	}

	next := (current + direction + len(choices)) % len(choices)
	p.plan[platform] = choices[next]
}

// legalChoices filters the platform's choice set against the report:
// match-requiring choices are only offered when a match exists.
func (p *Picker) legalChoices(platform domain.PlatformID) []domain.ResolutionChoice {
	result := p.report.Result(platform)

	var choices []domain.ResolutionChoice
	for _, c := range domain.ChoicesFor(platform, p.allowRecreate) {
		if c.RequiresMatch() && !result.Found {
			continue
		}
		choices = append(choices, c)
	}
	return choices
}

// View implements tea.Model.
func (p *Picker) View() string {
	var b strings.Builder

	b.WriteString(p.styles.Title.Render(fmt.Sprintf("Resolve duplicates for %q", p.report.CandidateName)))
	b.WriteString("\n\n")

	for i, platform := range domain.ProvisionOrder {
		b.WriteString(p.renderRow(i, platform))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(p.styles.Help.Render("↑/↓ platform · ←/→ choice · enter confirm · q cancel"))
	b.WriteString("\n")

	return b.String()
}

// renderRow formats one platform line: probe outcome plus current choice.
func (p *Picker) renderRow(index int, platform domain.PlatformID) string {
	result := p.report.Result(platform)
	choice := p.plan[platform]

	indicator := "  "
	if index == p.row {
		indicator = "> "
	}

	var status string
	switch {
	case result.UserProvided:
		status = p.styles.Success.Render("linked by operator")
	case result.SkippedProbe:
		status = p.styles.Warning.Render("probe skipped: " + result.ProbeError)
	case result.Found:
		label := result.MatchedLabel
		if label == "" {
			label = result.MatchedResourceID
		}
		status = p.styles.Success.Render(fmt.Sprintf("match: %s", label))
		if n := len(result.AllMatches); n > 1 {
			status += p.styles.Muted.Render(fmt.Sprintf(" (+%d more)", n-1))
		}
	default:
		status = p.styles.Muted.Render("no match")
	}

	choiceText := choice.String()
	choiceStyle := p.styles.Normal
	if choice == domain.ChoiceRecreate {
		choiceStyle = p.styles.Danger
	}
	if index == p.row {
		choiceStyle = p.styles.Selected
	}

	line := fmt.Sprintf("%s%-16s %-24s ", indicator, platform.DisplayName(), choiceStyle.Render("["+choiceText+"]"))
	return line + status
}
