package tui

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"feedview/internal/compose"
	"feedview/internal/feed"
	"feedview/internal/model"
	"feedview/internal/postview"
	"feedview/internal/thread"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog"
)

type threadFocus int

const (
	focusNodes threadFocus = iota
	focusNewComment
	focusReply
)

// commentSnapshotter is implemented by repositories that persist query results.
type commentSnapshotter interface {
	SnapshotComments(ctx context.Context, postID string) ([]model.CommentRecord, bool)
}

type commentInvalidator interface {
	InvalidateComments(ctx context.Context, postID string)
}

type commentsLoadedMsg struct {
	postID  string
	seq     int
	records []model.CommentRecord
	err     error
}

type commentsSnapshotMsg struct {
	postID  string
	records []model.CommentRecord
}

type postLoadedMsg struct {
	post model.Post
	err  error
}

// submitDoneMsg carries the controller that sent the write; only the view that
// owns that controller resolves it.
type submitDoneMsg struct {
	postID string
	ctrl   *compose.Controller
	sub    compose.Submission
	err    error
}

// threadModel is the discussion thread of one post. It owns the composition
// controller for as long as it is mounted.
type threadModel struct {
	postID    string
	postTitle string
	excerpt   string

	repo        feed.Repository
	log         zerolog.Logger
	maxTopLevel int

	comments feed.Query[[]model.CommentRecord]
	fetchSeq int
	nodes    []thread.Node
	selected int

	ctrl       *compose.Controller
	focus      threadFocus
	newComment textarea.Model
	reply      textarea.Model
	spinner    spinner.Model

	status      string
	statusIsErr bool

	width  int
	height int
}

func newThreadModel(deps Deps, postID, postTitle string) threadModel {
	newComment := textarea.New()
	newComment.Placeholder = "Write a comment…"
	newComment.ShowLineNumbers = false
	newComment.CharLimit = 0
	newComment.SetHeight(3)

	reply := textarea.New()
	reply.Placeholder = "Write a reply…"
	reply.ShowLineNumbers = false
	reply.CharLimit = 0
	reply.SetHeight(2)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	maxTop := deps.MaxTopLevel
	if maxTop < 0 {
		maxTop = 0
	}

	m := threadModel{
		postID:      postID,
		postTitle:   postTitle,
		repo:        deps.Repo,
		log:         deps.Log,
		maxTopLevel: maxTop,
		ctrl:        compose.NewController(postID, deps.Repo, deps.Log),
		newComment:  newComment,
		reply:       reply,
		spinner:     sp,
		width:       80,
		height:      24,
	}
	m.setWidth(m.width)
	return m
}

func (m threadModel) Init() tea.Cmd {
	return tea.Batch(m.loadPost(), m.loadSnapshot(), m.fetch(), m.spinner.Tick)
}

// loadPost fetches the post header when the caller did not already have it.
func (m threadModel) loadPost() tea.Cmd {
	if strings.TrimSpace(m.postTitle) != "" {
		return nil
	}
	repo, postID := m.repo, m.postID
	return func() tea.Msg {
		p, err := repo.Post(context.Background(), postID)
		return postLoadedMsg{post: p, err: err}
	}
}

func (m threadModel) loadSnapshot() tea.Cmd {
	snap, ok := m.repo.(commentSnapshotter)
	if !ok {
		return nil
	}
	postID := m.postID
	return func() tea.Msg {
		records, ok := snap.SnapshotComments(context.Background(), postID)
		if !ok {
			return nil
		}
		return commentsSnapshotMsg{postID: postID, records: records}
	}
}

// fetch loads comments tagged with the current fetch sequence.
func (m threadModel) fetch() tea.Cmd {
	repo, postID, seq := m.repo, m.postID, m.fetchSeq
	return func() tea.Msg {
		records, err := repo.FetchComments(context.Background(), postID)
		return commentsLoadedMsg{postID: postID, seq: seq, records: records, err: err}
	}
}

// nextFetch supersedes every fetch already in flight.
func (m *threadModel) nextFetch() tea.Cmd {
	m.fetchSeq++
	m.comments = m.comments.Refetch()
	return m.fetch()
}

// refetch is the R key: drop any cached copy and ask the backend again.
func (m *threadModel) refetch() tea.Cmd {
	if inv, ok := m.repo.(commentInvalidator); ok {
		inv.InvalidateComments(context.Background(), m.postID)
	}
	return m.nextFetch()
}

func (m *threadModel) setRecords(records []model.CommentRecord) {
	// Composition state is not derived from records, so a refresh never touches it.
	selectedID := ""
	if m.selected >= 0 && m.selected < len(m.nodes) {
		selectedID = m.nodes[m.selected].ID
	}
	m.nodes = thread.Build(records, m.maxTopLevel)
	if i := thread.IndexOf(m.nodes, selectedID); i >= 0 {
		m.selected = i
	}
	m.clampSelection()
	if m.focus == focusReply && !m.replyVisible() {
		m.reply.Blur()
		m.focus = focusNodes
	}
}

// replyVisible reports whether the open reply box belongs to a node on screen.
func (m threadModel) replyVisible() bool {
	st := m.ctrl.State()
	return st.Replying() && thread.IndexOf(m.nodes, st.ActiveReplyTargetID) >= 0
}

func (m *threadModel) clampSelection() {
	if m.selected >= len(m.nodes) {
		m.selected = len(m.nodes) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *threadModel) setWidth(w int) {
	m.width = w
	inner := w - 6
	if inner < 20 {
		inner = 20
	}
	m.newComment.SetWidth(inner)
	m.reply.SetWidth(inner - 6)
}

func (m *threadModel) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusIsErr = isErr
}

// Intent hooks. The key handlers below call these; tests call them directly.

func (m *threadModel) onReplyClicked(nodeID string) tea.Cmd {
	m.ctrl.StartReply(nodeID)
	m.reply.SetValue("")
	m.newComment.Blur()
	m.focus = focusReply
	return m.reply.Focus()
}

func (m *threadModel) onReplyTextChanged(text string) {
	m.ctrl.EditReplyText(text)
}

func (m *threadModel) onReplyCancel() {
	m.ctrl.CancelReply()
	m.reply.SetValue("")
	m.reply.Blur()
	if m.focus == focusReply {
		m.focus = focusNodes
	}
}

func (m *threadModel) onReplySubmit() tea.Cmd {
	sub, ok := m.ctrl.PrepareReply()
	if !ok {
		return nil
	}
	m.setStatus("Sending reply…", false)
	return m.send(sub)
}

func (m *threadModel) onNewCommentTextChanged(text string) {
	m.ctrl.EditNewComment(text)
}

func (m *threadModel) onNewCommentSubmit() tea.Cmd {
	sub := m.ctrl.PrepareNewComment()
	m.setStatus("Posting comment…", false)
	return m.send(sub)
}

func (m *threadModel) send(sub compose.Submission) tea.Cmd {
	ctrl, postID := m.ctrl, m.postID
	return func() tea.Msg {
		return submitDoneMsg{postID: postID, ctrl: ctrl, sub: sub, err: ctrl.Send(context.Background(), sub)}
	}
}

// syncComposers mirrors the controller's drafts into the text areas after the
// controller changed them on its own (a resolved submission).
func (m *threadModel) syncComposers() {
	st := m.ctrl.State()
	if m.newComment.Value() != st.NewCommentText {
		m.newComment.SetValue(st.NewCommentText)
	}
	if !st.Replying() {
		m.reply.SetValue("")
		m.reply.Blur()
		if m.focus == focusReply {
			m.focus = focusNodes
		}
		return
	}
	if m.reply.Value() != st.ReplyText {
		m.reply.SetValue(st.ReplyText)
	}
}

func (m threadModel) Update(msg tea.Msg) (threadModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setWidth(msg.Width)
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.comments.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case postLoadedMsg:
		if msg.err != nil {
			m.log.Debug().Err(msg.err).Str("post_id", m.postID).Msg("fetch post")
			return m, nil
		}
		if msg.post.ID == m.postID {
			m.postTitle = msg.post.Title
			m.excerpt = postview.Excerpt(msg.post.Description)
		}
		return m, nil

	case commentsSnapshotMsg:
		if msg.postID != m.postID {
			return m, nil
		}
		if m.comments.Loading() && !m.comments.HasData() {
			m.comments = m.comments.Snapshot(msg.records)
			m.setRecords(msg.records)
		}
		return m, nil

	case commentsLoadedMsg:
		if msg.postID != m.postID || msg.seq < m.fetchSeq {
			return m, nil
		}
		m.comments = m.comments.Resolve(msg.records, msg.err)
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Str("post_id", m.postID).Msg("fetch comments")
			m.setStatus("Could not load comments: "+msg.err.Error(), true)
			return m, nil
		}
		m.setRecords(msg.records)
		return m, nil

	case submitDoneMsg:
		if msg.ctrl != m.ctrl {
			m.log.Debug().Str("post_id", msg.postID).Str("entry", string(msg.sub.Kind)).Msg("submit finished for a closed view")
			return m, nil
		}
		err := m.ctrl.Resolve(msg.sub, msg.err)
		m.syncComposers()
		if err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		if msg.sub.Kind == compose.EntryReply {
			m.setStatus("Reply posted", false)
		} else {
			m.setStatus("Comment posted", false)
		}
		return m, m.nextFetch()

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m threadModel) updateKey(msg tea.KeyMsg) (threadModel, tea.Cmd) {
	switch m.focus {
	case focusNewComment:
		switch msg.String() {
		case "ctrl+s":
			return m, m.onNewCommentSubmit()
		case "esc":
			m.newComment.Blur()
			m.focus = focusNodes
			return m, nil
		case "tab":
			return m, m.cycleFocus()
		}
		var cmd tea.Cmd
		m.newComment, cmd = m.newComment.Update(msg)
		m.onNewCommentTextChanged(m.newComment.Value())
		return m, cmd

	case focusReply:
		switch msg.String() {
		case "ctrl+s":
			return m, m.onReplySubmit()
		case "esc":
			m.onReplyCancel()
			return m, nil
		case "tab":
			return m, m.cycleFocus()
		}
		var cmd tea.Cmd
		m.reply, cmd = m.reply.Update(msg)
		m.onReplyTextChanged(m.reply.Value())
		return m, cmd
	}

	switch msg.String() {
	case "j", "down":
		if m.selected < len(m.nodes)-1 {
			m.selected++
		}
	case "k", "up":
		if m.selected > 0 {
			m.selected--
		}
	case "r", "enter":
		if len(m.nodes) == 0 {
			return m, nil
		}
		return m, m.onReplyClicked(m.nodes[m.selected].ID)
	case "c":
		m.focus = focusNewComment
		return m, m.newComment.Focus()
	case "tab":
		return m, m.cycleFocus()
	case "R":
		m.setStatus("Refreshing…", false)
		return m, tea.Batch(m.refetch(), m.spinner.Tick)
	}
	return m, nil
}

// cycleFocus moves between the node list, the open reply box (if any) and the
// new-comment box without discarding drafts.
func (m *threadModel) cycleFocus() tea.Cmd {
	replying := m.ctrl.State().Replying()
	m.newComment.Blur()
	m.reply.Blur()
	switch m.focus {
	case focusNodes:
		if replying && m.replyVisible() {
			m.focus = focusReply
			return m.reply.Focus()
		}
		m.focus = focusNewComment
		return m.newComment.Focus()
	case focusReply:
		m.focus = focusNewComment
		return m.newComment.Focus()
	default:
		m.focus = focusNodes
		return nil
	}
}

// editing reports whether keystrokes go to a text box.
func (m threadModel) editing() bool { return m.focus != focusNodes }

// nodeView is what the view needs to draw one top-level node.
type nodeView struct {
	Node      thread.Node
	Selected  bool
	Composing bool
}

func (m threadModel) nodeViews() []nodeView {
	active := m.ctrl.State().ActiveReplyTargetID
	out := make([]nodeView, 0, len(m.nodes))
	for i, n := range m.nodes {
		out = append(out, nodeView{
			Node:      n,
			Selected:  i == m.selected && m.focus == focusNodes,
			Composing: active != "" && n.ID == active,
		})
	}
	return out
}

func (m threadModel) View() string {
	var b strings.Builder

	title := m.postTitle
	if strings.TrimSpace(title) == "" {
		title = "Post " + m.postID
	}
	b.WriteString(styleTitle.Render(xansi.Truncate(title, m.width-2, "…")))
	b.WriteString("\n")
	if m.excerpt != "" {
		b.WriteString(styleMuted().Render(xansi.Truncate(m.excerpt, m.width-2, "…")))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styleAuthor.Render("Comments"))
	b.WriteString("\n\n")

	b.WriteString(m.commentsView())
	if m.comments.Stale && m.comments.Loading() {
		b.WriteString("\n" + styleMuted().Render(m.spinner.View()+" refreshing…"))
	}
	if m.ctrl.State().Replying() && !m.replyVisible() && m.comments.HasData() {
		b.WriteString("\n" + styleMuted().Render("Replying to a hidden comment. r on a shown comment starts a new reply."))
	}
	b.WriteString("\n")

	b.WriteString("\n")
	composer := styleComposer
	if m.focus == focusNewComment {
		composer = styleComposerFocused
	}
	b.WriteString(composer.Render(m.newComment.View()))
	b.WriteString("\n")

	if n := m.ctrl.InFlight(); n > 0 {
		b.WriteString(styleMuted().Render(fmt.Sprintf("sending… (%d)", n)))
		b.WriteString("\n")
	}
	if m.status != "" {
		st := styleMuted()
		if m.statusIsErr {
			st = styleError
		}
		b.WriteString(st.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(styleMuted().Render(m.helpLine()))
	return b.String()
}

// commentsView renders the node list, scrolled so the selected node is in view.
func (m threadModel) commentsView() string {
	switch {
	case m.comments.Loading() && !m.comments.HasData():
		return m.spinner.View() + " Loading comments…"
	case m.comments.Status == feed.StatusFailed && !m.comments.HasData():
		return styleError.Render("Comments unavailable. Press R to retry.")
	case len(m.nodes) == 0:
		return styleMuted().Render("No comments yet.")
	}

	var blocks []string
	selStart, line := 0, 0
	for i, nv := range m.nodeViews() {
		if i == m.selected {
			selStart = line
		}
		block := m.renderNode(nv)
		blocks = append(blocks, block)
		line += strings.Count(block, "\n") + 2
	}
	content := strings.Join(blocks, "\n\n")

	h := m.height - 14
	if h < 5 {
		h = 5
	}
	if total := strings.Count(content, "\n") + 1; total <= h {
		return content
	}
	vp := viewport.New(m.width, h)
	vp.SetContent(content)
	vp.SetYOffset(selStart)
	return vp.View()
}

func (m threadModel) helpLine() string {
	switch m.focus {
	case focusNewComment:
		return "ctrl+s: post  tab: next box  esc: back"
	case focusReply:
		return "ctrl+s: reply  tab: next box  esc: cancel reply"
	}
	return "j/k: move  r: reply  c: comment  R: refresh  esc: back  q: quit"
}

func (m threadModel) renderNode(nv nodeView) string {
	textWidth := m.width - 10
	head := avatarBadge(nv.Node) + " " + styleAuthor.Render(nv.Node.DisplayName)
	body := renderMarkdownCompact(nv.Node.Text, textWidth)
	lines := []string{head, indent(body, 5)}

	if nv.Composing {
		lines = append(lines, indent(styleComposerFocused.Render(m.reply.View()), 5))
	} else {
		lines = append(lines, indent(styleReplyLink.Render("Reply"), 5))
	}

	if nv.Node.HasReplies() {
		replies := make([]string, 0, len(nv.Node.Children))
		for _, r := range nv.Node.Children {
			rhead := avatarBadge(r) + " " + styleAuthor.Render(r.DisplayName)
			replies = append(replies, rhead+"\n"+indent(renderMarkdownCompact(r.Text, textWidth-8), 5))
		}
		lines = append(lines, styleReplies.Render(strings.Join(replies, "\n")))
	}

	out := strings.Join(lines, "\n")
	if nv.Selected {
		return styleSelected.Render(out)
	}
	return out
}

// avatarBadge stands in for the avatar image: the name's initial.
func avatarBadge(n thread.Node) string {
	r, _ := utf8.DecodeRuneInString(n.DisplayName)
	if r == utf8.RuneError {
		r = '?'
	}
	label := string(unicode.ToUpper(r))
	if n.AvatarURL != "" {
		label += "*"
	}
	return styleAvatar.Render(label)
}

func indent(s string, n int) string {
	if s == "" {
		return s
	}
	pad := strings.Repeat(" ", n)
	return pad + strings.ReplaceAll(s, "\n", "\n"+pad)
}
