package tui

import (
	"context"
	"fmt"
	"strings"

	"feedview/internal/feed"
	"feedview/internal/model"
	"feedview/internal/postview"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

type postsPageMsg struct {
	tab   int
	epoch int
	page  int
	res   model.Page
	err   error
}

// openThreadMsg asks the app to push the thread screen for a post.
type openThreadMsg struct {
	postID string
	title  string
}

type postItem struct {
	card postview.Card
}

func (it postItem) FilterValue() string { return it.card.Title }

func (it postItem) Title() string {
	title := it.card.Title
	if strings.TrimSpace(title) == "" {
		title = "(untitled)"
	}
	if it.card.Premium {
		title = stylePremium.Render("★") + " " + title
	}
	return title
}

func (it postItem) Description() string {
	parts := []string{}
	if it.card.Excerpt != "" {
		parts = append(parts, it.card.Excerpt)
	}
	meta := []string{}
	if it.card.Author != "" {
		meta = append(meta, "by "+it.card.Author)
	}
	meta = append(meta, fmt.Sprintf("▲%d ▼%d", it.card.Upvotes, it.card.Downvotes))
	if g := it.card.Gallery; g != nil {
		meta = append(meta, galleryLabel(g))
	}
	parts = append(parts, strings.Join(meta, "  "))
	return strings.Join(parts, " · ")
}

func galleryLabel(g *postview.Gallery) string {
	s := fmt.Sprintf("[%d col]", g.Columns)
	if g.MoreCount > 0 {
		s += fmt.Sprintf(" +%d more", g.MoreCount)
	}
	return s
}

// profileModel is the signed-in user's post listings, one list per tab.
type profileModel struct {
	repo     feed.Repository
	log      zerolog.Logger
	pageSize int

	tabs  postview.Tabs
	lists []list.Model
	errs  []error
	// epochs counts reloads per tab; responses from before a reload are dropped.
	epochs []int

	width  int
	height int
}

func newProfileModel(deps Deps) profileModel {
	pageSize := deps.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	m := profileModel{
		repo:     deps.Repo,
		log:      deps.Log,
		pageSize: pageSize,
		tabs:     postview.NewProfileTabs(),
		width:    80,
		height:   24,
	}
	for _, tab := range m.tabs.Items {
		m.lists = append(m.lists, newPostList(tab.Title))
	}
	m.errs = make([]error, len(m.tabs.Items))
	m.epochs = make([]int, len(m.tabs.Items))
	m.resize()
	return m
}

func newPostList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("post", "posts")
	// esc is "back" here, not "quit".
	l.KeyMap.Quit.SetKeys("q")
	return l
}

func (m profileModel) Init() tea.Cmd {
	return m.loadMore()
}

// loadMore fetches the next page of the active tab unless one is already in flight.
func (m *profileModel) loadMore() tea.Cmd {
	tabIdx := m.tabs.Active
	tab := m.tabs.Current()
	page, ok := tab.Pager.LoadMore()
	if !ok {
		return nil
	}
	repo, which, limit, epoch := m.repo, tab.List, m.pageSize, m.epochs[tabIdx]
	return func() tea.Msg {
		res, err := repo.ListPosts(context.Background(), which, page, limit)
		return postsPageMsg{tab: tabIdx, epoch: epoch, page: page, res: res, err: err}
	}
}

func (m *profileModel) resize() {
	h := m.height - 6
	if h < 6 {
		h = 6
	}
	w := m.width
	if w < 40 {
		w = 40
	}
	for i := range m.lists {
		m.lists[i].SetSize(w, h)
	}
}

func (m profileModel) selectedPost() (postItem, bool) {
	it, ok := m.lists[m.tabs.Active].SelectedItem().(postItem)
	return it, ok
}

func (m profileModel) Update(msg tea.Msg) (profileModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case postsPageMsg:
		if msg.tab < 0 || msg.tab >= len(m.tabs.Items) {
			return m, nil
		}
		pager := &m.tabs.Items[msg.tab].Pager
		if msg.epoch != m.epochs[msg.tab] || !pager.FetchingMore || msg.page != pager.Page {
			m.log.Debug().Int("tab", msg.tab).Int("page", msg.page).Msg("dropping superseded page")
			return m, nil
		}
		pager.Loaded(msg.res.HasMore(), msg.err)
		m.errs[msg.tab] = msg.err
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Str("list", string(m.tabs.Items[msg.tab].List)).Int("page", msg.page).Msg("list posts")
			return m, nil
		}
		l := &m.lists[msg.tab]
		items := l.Items()
		for _, p := range msg.res.Posts {
			items = append(items, postItem{card: postview.NewCard(p)})
		}
		cmd := l.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "l", "right":
			m.tabs.Next()
			return m, m.enterTab()
		case "shift+tab", "h", "left":
			m.tabs.Prev()
			return m, m.enterTab()
		case "enter":
			if it, ok := m.selectedPost(); ok {
				postID, title := it.card.PostID, it.card.Title
				return m, func() tea.Msg { return openThreadMsg{postID: postID, title: title} }
			}
			return m, nil
		case "R":
			m.tabs.Current().Pager = postview.Pager{}
			m.epochs[m.tabs.Active]++
			m.errs[m.tabs.Active] = nil
			m.lists[m.tabs.Active].SetItems(nil)
			return m, m.loadMore()
		}
	}

	var cmd tea.Cmd
	l := &m.lists[m.tabs.Active]
	*l, cmd = l.Update(msg)
	if n := len(l.Items()); n > 0 && l.Index() >= n-1 {
		return m, tea.Batch(cmd, m.loadMore())
	}
	return m, cmd
}

// enterTab fetches the first page of a tab the first time it is shown.
func (m *profileModel) enterTab() tea.Cmd {
	if m.tabs.Current().Pager.Page == 0 {
		return m.loadMore()
	}
	return nil
}

func (m profileModel) View() string {
	var strip []string
	for i, tab := range m.tabs.Items {
		if i == m.tabs.Active {
			strip = append(strip, styleTabActive.Render(tab.Title))
		} else {
			strip = append(strip, styleTabPassive.Render(tab.Title))
		}
	}

	var b strings.Builder
	b.WriteString(strings.Join(strip, " "))
	b.WriteString("\n\n")

	tab := m.tabs.Current()
	l := m.lists[m.tabs.Active]
	switch {
	case m.errs[m.tabs.Active] != nil && len(l.Items()) == 0:
		b.WriteString(styleError.Render("Could not load posts: " + m.errs[m.tabs.Active].Error()))
	case len(l.Items()) == 0 && tab.Pager.FetchingMore:
		b.WriteString(styleMuted().Render("Loading posts…"))
	case len(l.Items()) == 0:
		b.WriteString(styleMuted().Render("No posts."))
	default:
		b.WriteString(l.View())
	}
	b.WriteString("\n")
	if tab.Pager.FetchingMore && len(l.Items()) > 0 {
		b.WriteString(styleMuted().Render("Loading more…") + "\n")
	}
	b.WriteString(styleMuted().Render("tab: switch list  enter: open thread  R: reload  q: quit"))
	return b.String()
}
