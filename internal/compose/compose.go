// Package compose tracks what the user is typing in a thread view and submits it.
//
// A Controller holds the draft of a new top-level comment and at most one open
// reply box. Writes go through a Writer; a failed write never touches the drafts.
package compose

import (
	"context"
	"sync"

	"feedview/internal/model"

	"github.com/rs/zerolog"
)

// Writer is the write half of the comments repository.
type Writer interface {
	CreateComment(ctx context.Context, c model.NewComment) error
	CreateReply(ctx context.Context, r model.NewReply) error
}

// State is a snapshot of the drafts. An empty ActiveReplyTargetID means no reply
// box is open.
type State struct {
	NewCommentText      string `json:"newCommentText"`
	ActiveReplyTargetID string `json:"activeReplyTargetId,omitempty"`
	ReplyText           string `json:"replyText"`
}

func (s State) Replying() bool { return s.ActiveReplyTargetID != "" }

// Controller is safe for concurrent use. Each mounted thread view owns one.
type Controller struct {
	postID string
	writer Writer
	log    zerolog.Logger

	mu       sync.Mutex
	st       State
	inFlight int
}

func NewController(postID string, w Writer, log zerolog.Logger) *Controller {
	return &Controller{
		postID: postID,
		writer: w,
		log:    log.With().Str("component", "compose").Str("post_id", postID).Logger(),
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st
}

// InFlight is the number of writes sent but not yet resolved.
func (c *Controller) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// StartReply opens the reply box under targetID, discarding any reply draft,
// including one for the same target.
func (c *Controller) StartReply(targetID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.ActiveReplyTargetID = targetID
	c.st.ReplyText = ""
}

func (c *Controller) CancelReply() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.ActiveReplyTargetID = ""
	c.st.ReplyText = ""
}

func (c *Controller) EditNewComment(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.NewCommentText = text
}

// EditReplyText updates the reply draft. It reports false and changes nothing
// when no reply box is open.
func (c *Controller) EditReplyText(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.st.Replying() {
		return false
	}
	c.st.ReplyText = text
	return true
}

// SubmitNewComment posts the new-comment draft. On success the draft is cleared;
// on failure it is kept and a *SubmitError is returned.
func (c *Controller) SubmitNewComment(ctx context.Context) error {
	sub := c.PrepareNewComment()
	return c.Resolve(sub, c.Send(ctx, sub))
}

// SubmitReply posts the reply draft to the active target. It is a no-op when no
// reply box is open. On success the box closes; on failure nothing changes.
func (c *Controller) SubmitReply(ctx context.Context) error {
	sub, ok := c.PrepareReply()
	if !ok {
		return nil
	}
	return c.Resolve(sub, c.Send(ctx, sub))
}
