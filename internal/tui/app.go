package tui

import (
	"strings"

	"feedview/internal/feed"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

// Deps is what the screens need from the rest of the program.
type Deps struct {
	Repo        feed.Repository
	Log         zerolog.Logger
	MaxTopLevel int
	PageSize    int
}

type screen int

const (
	screenProfile screen = iota
	screenThread
)

// appModel routes messages between the profile tabs and, when one is open, a
// post's thread. The thread screen is created fresh every time it is opened.
type appModel struct {
	deps Deps

	screen     screen
	hasProfile bool
	profile    profileModel
	thread     *threadModel

	width  int
	height int
}

func newProfileApp(deps Deps) appModel {
	return appModel{
		deps:       deps,
		screen:     screenProfile,
		hasProfile: true,
		profile:    newProfileModel(deps),
	}
}

func newThreadApp(deps Deps, postID, title string) appModel {
	t := newThreadModel(deps, postID, title)
	return appModel{
		deps:   deps,
		screen: screenThread,
		thread: &t,
	}
}

func (m appModel) Init() tea.Cmd {
	if m.screen == screenThread && m.thread != nil {
		return m.thread.Init()
	}
	return m.profile.Init()
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		var cmds []tea.Cmd
		if m.hasProfile {
			var cmd tea.Cmd
			m.profile, cmd = m.profile.Update(msg)
			cmds = append(cmds, cmd)
		}
		if m.thread != nil {
			t, cmd := m.thread.Update(msg)
			m.thread = &t
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case openThreadMsg:
		t := newThreadModel(m.deps, msg.postID, msg.title)
		if m.width > 0 {
			t, _ = t.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		}
		m.thread = &t
		m.screen = screenThread
		return m, t.Init()

	case postsPageMsg:
		var cmd tea.Cmd
		m.profile, cmd = m.profile.Update(msg)
		return m, cmd

	case commentsLoadedMsg, commentsSnapshotMsg, submitDoneMsg, postLoadedMsg, spinner.TickMsg:
		if m.thread == nil {
			if done, ok := msg.(submitDoneMsg); ok {
				m.deps.Log.Debug().Str("post_id", done.postID).Msg("submit finished after thread closed")
			}
			return m, nil
		}
		t, cmd := m.thread.Update(msg)
		m.thread = &t
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		editing := m.screen == screenThread && m.thread != nil && m.thread.editing()
		if !editing {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "esc", "backspace":
				if m.screen == screenThread && m.hasProfile {
					m.screen = screenProfile
					m.thread = nil
					return m, nil
				}
			}
		}
	}

	switch m.screen {
	case screenThread:
		if m.thread == nil {
			return m, nil
		}
		t, cmd := m.thread.Update(msg)
		m.thread = &t
		return m, cmd
	default:
		var cmd tea.Cmd
		m.profile, cmd = m.profile.Update(msg)
		return m, cmd
	}
}

func (m appModel) View() string {
	header := styleTitle.Render("feedview")
	var body string
	switch {
	case m.screen == screenThread && m.thread != nil:
		body = m.thread.View()
	default:
		body = m.profile.View()
	}
	return strings.Join([]string{header, body}, "\n\n")
}
