package calc

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// 保留的历史条数
const maxHistory = 20

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	inputStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	goodbyeStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("13"))
)

// entry 一次输入及其应答
type entry struct {
	input string
	reply string
}

// Model 计算器 TUI 模型
type Model struct {
	input    textinput.Model
	history  []entry
	farewell string
	quitting bool
}

// NewModel 创建 TUI 模型
func NewModel() Model {
	ti := textinput.New()
	ti.Placeholder = "2 + 3"
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Width = 40
	ti.Focus()

	return Model{input: ti}
}

// Init 初始命令
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update 处理按键
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.farewell = strings.TrimPrefix(InterruptedMessage, "\n")
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			line := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(line) == "" {
				return m, nil
			}

			reply, quit := Respond(line)
			if quit {
				m.farewell = reply
				m.quitting = true
				return m, tea.Quit
			}
			m.history = append(m.history, entry{input: strings.TrimSpace(line), reply: reply})
			if len(m.history) > maxHistory {
				m.history = m.history[len(m.history)-maxHistory:]
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View 渲染界面
func (m Model) View() string {
	var b strings.Builder

	banner := Banner()
	b.WriteString(titleStyle.Render(banner[0]))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(strings.Join(banner[1:], " · ")))
	b.WriteString("\n\n")

	for _, e := range m.history {
		b.WriteString(inputStyle.Render(e.input))
		b.WriteString("\n  ")
		if strings.HasPrefix(e.reply, "Result: ") {
			b.WriteString(resultStyle.Render(e.reply))
		} else {
			b.WriteString(errorStyle.Render(e.reply))
		}
		b.WriteString("\n")
	}

	if m.quitting {
		b.WriteString(goodbyeStyle.Render(m.farewell))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("enter: calculate · esc: quit"))
	b.WriteString("\n")
	return b.String()
}

// RunTUI 启动全屏交互界面
func RunTUI() error {
	_, err := tea.NewProgram(NewModel()).Run()
	return err
}
