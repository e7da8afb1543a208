package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yolodolo42/wconn/internal/chain"
	"github.com/yolodolo42/wconn/internal/controller"
	"github.com/yolodolo42/wconn/internal/session"
)

// networkOrder fixes the display order of the picker.
var networkOrder = []string{"ethereum", "bsc", "sepolia"}

type stateMsg session.State

type opDoneMsg struct{ err error }

// Model is the connection view: read-only display of the wallet session plus
// connect, disconnect, and switch-network affordances. The controller is
// started when the view mounts and stopped when it quits, so provider event
// handlers live exactly as long as the view.
type Model struct {
	store   *session.Store
	ctrl    *controller.Controller
	updates <-chan session.State
	unwatch func()

	state    session.State
	spinner  spinner.Model
	busy     bool
	busyWhat string
	notice   string
	picker   *Selector
	quitting bool
}

// NewModel creates the connection view over a store and its controller.
func NewModel(store *session.Store, ctrl *controller.Controller) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = AccentStyle

	updates, unwatch := store.Watch()
	return Model{
		store:   store,
		ctrl:    ctrl,
		updates: updates,
		unwatch: unwatch,
		state:   store.Snapshot(),
		spinner: sp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.mountCmd(), m.waitForState())
}

// mountCmd performs the silent session check off the UI goroutine.
func (m Model) mountCmd() tea.Cmd {
	return func() tea.Msg {
		m.ctrl.Start(context.Background())
		return stateMsg(m.store.Snapshot())
	}
}

func (m Model) waitForState() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		return stateMsg(<-updates)
	}
}

func (m Model) connectCmd() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		return opDoneMsg{err: store.Connect(context.Background())}
	}
}

func (m Model) switchCmd(key string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		return opDoneMsg{err: store.SwitchNetwork(context.Background(), key)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.state = session.State(msg)
		return m, m.waitForState()

	case opDoneMsg:
		m.busy = false
		m.busyWhat = ""
		if msg.err != nil {
			m.notice = msg.err.Error()
		} else {
			m.notice = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	if m.picker != nil {
		m.picker.Update(msg)
		if m.picker.Active() {
			return m, nil
		}
		cancelled := m.picker.Cancelled()
		key := m.picker.Selected()
		m.picker = nil
		if cancelled || key == "" {
			return m, nil
		}
		m.busy = true
		m.busyWhat = "switching network"
		return m, m.switchCmd(key)
	}

	if m.busy {
		return m, nil
	}

	switch msg.String() {
	case "q", "esc":
		return m.quit()

	case "c":
		if m.state.IsConnected {
			return m, nil
		}
		m.busy = true
		m.busyWhat = "waiting for wallet approval"
		return m, m.connectCmd()

	case "d":
		if !m.state.IsConnected {
			return m, nil
		}
		m.store.Disconnect()
		m.notice = ""
		return m, nil

	case "n":
		picker := NewSelector("Switch network", m.networkItems())
		m.picker = &picker
		return m, nil
	}

	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.ctrl.Stop()
	m.unwatch()
	m.quitting = true
	return m, tea.Quit
}

func (m Model) networkItems() []SelectorItem {
	current := m.state.ChainID
	items := make([]SelectorItem, 0, len(networkOrder))
	for _, key := range networkOrder {
		n, ok := chain.ByKey(key)
		if !ok {
			continue
		}
		items = append(items, SelectorItem{
			ID:          key,
			Label:       n.Name,
			Description: n.Currency.Symbol,
			Current:     chain.ByChainID(current) != nil && chain.ByChainID(current).Key == key,
		})
	}
	return items
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render("wconn"))
	b.WriteString("\n\n")

	if m.state.IsConnected {
		b.WriteString(ConnectedStyle.Render(SymbolBullet+" connected") + "\n\n")
		b.WriteString(m.renderField("Account", m.accountLine()))
		b.WriteString(m.renderField("Balance", m.balanceLine()))
		b.WriteString(m.renderField("Network", m.networkLine()))
		if m.state.ENSAvatar != "" {
			b.WriteString(m.renderField("Avatar", m.state.ENSAvatar))
		}
	} else {
		b.WriteString(DisconnectedStyle.Render(SymbolBullet+" disconnected") + "\n\n")
		if !m.store.HasProvider() {
			b.WriteString(NoticeStyle.Render("No wallet provider detected.") + "\n")
		}
	}

	if m.busy {
		b.WriteString("\n" + m.spinner.View() + LabelStyle.Render(m.busyWhat) + "\n")
	}
	if m.notice != "" {
		b.WriteString("\n" + ErrorStyle.Render(SymbolCross+" "+m.notice) + "\n")
	}

	if m.picker != nil {
		b.WriteString("\n" + m.picker.View())
	} else {
		b.WriteString("\n" + HelpStyle.Render(m.helpLine()) + "\n")
	}

	return b.String()
}

func (m Model) renderField(label, value string) string {
	return fmt.Sprintf("%s %s\n", LabelStyle.Render(fmt.Sprintf("%-8s", label)), ValueStyle.Render(value))
}

func (m Model) accountLine() string {
	line := session.FormatAddress(m.state.Address)
	if m.state.ENSName != "" {
		line = m.state.ENSName + " " + LabelStyle.Render("("+line+")")
	}
	return line
}

func (m Model) balanceLine() string {
	symbol := "ETH"
	if n := chain.ByChainID(m.state.ChainID); n != nil {
		symbol = n.Currency.Symbol
	}
	return session.FormatBalance(m.state.Balance) + " " + symbol
}

func (m Model) networkLine() string {
	if n := chain.ByChainID(m.state.ChainID); n != nil {
		return n.Name
	}
	return "unknown (" + m.state.ChainID + ")"
}

func (m Model) helpLine() string {
	if m.state.IsConnected {
		return "d disconnect, n switch network, q quit"
	}
	return "c connect, n switch network, q quit"
}
