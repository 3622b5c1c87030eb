// Package browse is the interactive terminal job board.
package browse

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/cadre/internal/filter"
	"github.com/amishk599/cadre/internal/model"
)

// Lines per job item in the list view (title + subtitle + blank separator).
const jobItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")) // bright blue

	chipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	jobTitleStyle = lipgloss.NewStyle().
			Bold(true)

	jobSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedJobTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")). // bright white
				Background(lipgloss.Color("24"))  // dark blue bg

	selectedJobSubtitleStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("252")).
					Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(12)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	descDividerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	descBodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

type browseModel struct {
	jobs        []model.JobListing
	departments []string // "" first, meaning all
	deptIndex   int
	spec        filter.Spec
	result      filter.Result
	offset      int
	cursor      int
	degraded    bool

	search    textinput.Model
	list      viewport.Model
	detail    viewport.Model
	view      viewState
	detailJob model.JobListing
	width     int
	height    int
	ready     bool
}

func newModel(jobs []model.JobListing, opts filter.Options, spec filter.Spec, degraded bool) browseModel {
	ti := textinput.New()
	ti.Placeholder = "search title, company, function or investor"
	ti.Prompt = "/ "
	ti.CharLimit = 80
	ti.SetValue(spec.Search)

	m := browseModel{
		jobs:        jobs,
		departments: append([]string{""}, opts.Departments...),
		spec:        spec,
		degraded:    degraded,
		search:      ti,
	}
	if len(spec.Departments) == 1 {
		for i, d := range m.departments {
			if d == spec.Departments[0] {
				m.deptIndex = i
			}
		}
	}
	m.apply()
	return m
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		if m.search.Focused() {
			return m.updateSearch(msg)
		}
		return m.updateListView(msg)
	}
	return m, nil
}

func (m browseModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter", "esc", "tab":
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != m.spec.Search {
		m.spec.Search = v
		m.apply()
	}
	return m, cmd
}

func (m browseModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "/":
		cmd := m.search.Focus()
		return m, cmd
	case "f":
		m.cycleDepartment(1)
	case "F":
		m.cycleDepartment(-1)
	case "r":
		m.spec.Remote = nextRemote(m.spec.Remote)
		m.apply()
	case "x":
		m.spec = filter.Spec{}
		m.deptIndex = 0
		m.search.SetValue("")
		m.apply()
	case "up", "k":
		m.cursor = clamp(m.cursor-1, 0, max(len(m.page().Jobs)-1, 0))
		m.recalcContent()
	case "down", "j":
		m.cursor = clamp(m.cursor+1, 0, max(len(m.page().Jobs)-1, 0))
		m.recalcContent()
	case "n", "right", "pgdown":
		if m.page().HasMore {
			m.offset += filter.PageSize
			m.cursor = 0
			m.recalcContent()
		}
	case "p", "left", "pgup":
		if m.offset > 0 {
			m.offset = max(m.offset-filter.PageSize, 0)
			m.cursor = 0
			m.recalcContent()
		}
	case "enter":
		return m.openDetailView()
	}
	return m, nil
}

func (m browseModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "o":
		openURL(m.detailJob.ApplyURL)
		return m, nil
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m *browseModel) cycleDepartment(delta int) {
	n := len(m.departments)
	m.deptIndex = ((m.deptIndex+delta)%n + n) % n
	if d := m.departments[m.deptIndex]; d != "" {
		m.spec.Departments = []string{d}
	} else {
		m.spec.Departments = nil
	}
	m.apply()
}

func nextRemote(r filter.Remote) filter.Remote {
	switch r {
	case filter.RemoteAny:
		return filter.RemoteOnly
	case filter.RemoteOnly:
		return filter.OnsiteOnly
	}
	return filter.RemoteAny
}

// apply re-runs the filter and returns to the first page.
func (m *browseModel) apply() {
	m.result = filter.Apply(m.jobs, m.spec)
	m.offset = 0
	m.cursor = 0
	m.recalcContent()
}

func (m browseModel) page() filter.Page {
	return m.result.Page(m.offset, filter.PageSize)
}

func (m browseModel) openDetailView() (tea.Model, tea.Cmd) {
	jobs := m.page().Jobs
	if len(jobs) == 0 {
		return m, nil
	}
	m.view = viewDetail
	m.detailJob = jobs[m.cursor]
	m.detail = viewport.New(max(m.width-4, 20), max(m.height-4, 5))
	m.detail.SetContent(m.renderDetail())
	return m, nil
}

func (m *browseModel) recalcLayout() {
	// Search line + filter line + border top/bottom + status bar.
	w := max(m.width-2, 20)
	h := max(m.height-5, 5)
	if !m.ready {
		m.list = viewport.New(w, h)
		m.ready = true
	} else {
		m.list.Width = w
		m.list.Height = h
	}
	m.search.Width = max(m.width-4, 10)
	if m.view == viewDetail {
		m.detail.Width = max(m.width-4, 20)
		m.detail.Height = max(m.height-4, 5)
		m.detail.SetContent(m.renderDetail())
	}
	m.recalcContent()
}

func (m *browseModel) recalcContent() {
	if !m.ready {
		return
	}
	m.list.SetContent(renderJobs(m.page().Jobs, m.cursor))
	m.ensureCursorVisible()
}

func (m *browseModel) ensureCursorVisible() {
	top := m.cursor * jobItemHeight
	bottom := top + jobItemHeight - 1
	if top < m.list.YOffset {
		m.list.SetYOffset(top)
	} else if bottom >= m.list.YOffset+m.list.Height {
		m.list.SetYOffset(bottom - m.list.Height + 1)
	}
}

func (m browseModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m browseModel) filterLine() string {
	dept := m.departments[m.deptIndex]
	if dept == "" {
		dept = "All"
	}
	remote := string(m.spec.Remote)
	if remote == "" {
		remote = "any"
	}
	line := chipStyle.Render("function: "+dept) + chipStyle.Render("remote: "+remote)
	if len(m.spec.Locations) > 0 {
		line += chipStyle.Render("location: " + strings.Join(m.spec.Locations, ", "))
	}
	if len(m.spec.Industries) > 0 {
		line += chipStyle.Render("industry: " + strings.Join(m.spec.Industries, ", "))
	}
	if m.degraded {
		line += warnStyle.Render("  showing cached or sample data")
	}
	return line
}

func (m browseModel) viewList() string {
	p := m.page()
	pages := max((p.Total+filter.PageSize-1)/filter.PageSize, 1)
	current := m.offset/filter.PageSize + 1

	content := borderStyle.Width(m.list.Width).Render(m.list.View())
	statusText := fmt.Sprintf(" %d jobs | page %d/%d    / search  f/F function  r remote  x clear  n/p page  ↑/↓ cursor  enter detail  q quit",
		p.Total, current, pages)
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return m.search.View() + "\n" + m.filterLine() + "\n" + content + "\n" + statusBar
}

func (m browseModel) viewDetail() string {
	title := detailTitleStyle.Render("Job Details")
	content := borderStyle.Width(m.width - 2).Render(m.detail.View())
	statusBar := statusBarStyle.Width(m.width).Render(" o open apply URL  esc/backspace back  ↑/↓ scroll  q quit")
	return title + "\n" + content + "\n" + statusBar
}

func (m browseModel) renderDetail() string {
	j := m.detailJob
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	addField("Title", j.Title)
	addField("Company", j.Company)
	addField("Location", j.Location)
	if j.IsRemote {
		addField("Remote", "yes")
	}
	addField("Function", j.Department)
	addField("Industry", j.Industry)
	addField("Posted", j.PostedDate)
	addField("Salary", j.Salary)
	addField("Investors", strings.Join(j.Investors, ", "))

	b.WriteByte('\n')
	addField("Apply", j.ApplyURL)
	if j.JobURL != "" && j.JobURL != j.ApplyURL {
		addField("Posting", j.JobURL)
	}

	if j.Description != "" {
		wrapWidth := max(m.width-8, 20)
		label := "── Description "
		fill := strings.Repeat("─", max(wrapWidth-len(label), 3))
		b.WriteByte('\n')
		b.WriteString(descDividerStyle.Render(label+fill) + "\n\n")
		b.WriteString(descBodyStyle.Render(wordWrap(j.Description, wrapWidth)) + "\n")
	}
	return b.String()
}

func renderJobs(jobs []model.JobListing, cursor int) string {
	if len(jobs) == 0 {
		return "  (no jobs match these filters)"
	}

	var b strings.Builder
	for i, j := range jobs {
		titleSt := jobTitleStyle
		subtitleSt := jobSubtitleStyle
		prefix := "  "
		if i == cursor {
			titleSt = selectedJobTitleStyle
			subtitleSt = selectedJobSubtitleStyle
			prefix = "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(j.Title))
		b.WriteByte('\n')

		posted := j.PostedDate
		if len(posted) > 10 {
			posted = posted[:10]
		}
		if posted == "" {
			posted = "n/a"
		}
		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("%s · %s · %s", j.Company, j.Location, posted)))
		b.WriteByte('\n')

		if i < len(jobs)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func wordWrap(text string, width int) string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if len(line)+1+len(w) <= width {
				line += " " + w
			} else {
				out = append(out, line)
				line = w
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	if url == "" {
		return
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// Run launches the full-screen job board over jobs, starting from spec.
func Run(jobs []model.JobListing, opts filter.Options, spec filter.Spec, degraded bool) error {
	p := tea.NewProgram(newModel(jobs, opts, spec, degraded), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
