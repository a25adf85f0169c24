package compose

import (
	"context"
	"errors"
	"fmt"

	"feedview/internal/model"
)

type EntryKind string

const (
	EntryComment EntryKind = "comment"
	EntryReply   EntryKind = "reply"
)

// Submission is the drafts as they were when a write was started.
type Submission struct {
	Kind     EntryKind
	PostID   string
	TargetID string
	Text     string
}

// PrepareNewComment snapshots the new-comment draft. Empty text is not rejected.
func (c *Controller) PrepareNewComment() Submission {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Submission{Kind: EntryComment, PostID: c.postID, Text: c.st.NewCommentText}
}

// PrepareReply snapshots the reply draft; ok is false when no reply box is open.
func (c *Controller) PrepareReply() (Submission, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.st.Replying() {
		return Submission{}, false
	}
	return Submission{
		Kind:     EntryReply,
		PostID:   c.postID,
		TargetID: c.st.ActiveReplyTargetID,
		Text:     c.st.ReplyText,
	}, true
}

// Send performs the write for sub. It does not hold the controller lock while the
// writer runs, so drafts stay editable.
func (c *Controller) Send(ctx context.Context, sub Submission) error {
	if c.writer == nil {
		return errors.New("compose: no writer configured")
	}
	c.mu.Lock()
	c.inFlight++
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.inFlight--
		c.mu.Unlock()
	}()

	switch sub.Kind {
	case EntryComment:
		return c.writer.CreateComment(ctx, sub.comment())
	case EntryReply:
		return c.writer.CreateReply(ctx, sub.reply())
	default:
		return fmt.Errorf("compose: unknown entry kind %q", sub.Kind)
	}
}

// Resolve applies the outcome of a write started from sub.
//
// A failure leaves every draft as it is and returns a *SubmitError. A success
// only clears what the submission covered: the new-comment draft if it still
// holds the submitted text, and the reply box if it is still open on the
// submitted target.
func (c *Controller) Resolve(sub Submission, err error) error {
	if err != nil {
		serr := &SubmitError{Kind: SubmitFailed, Entry: sub.Kind, TargetID: sub.TargetID, Err: err}
		c.log.Error().
			Err(err).
			Str("entry", string(sub.Kind)).
			Str("comment_id", sub.TargetID).
			Msg("submit failed")
		return serr
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	switch sub.Kind {
	case EntryComment:
		if c.st.NewCommentText == sub.Text {
			c.st.NewCommentText = ""
		}
	case EntryReply:
		if c.st.ActiveReplyTargetID == sub.TargetID {
			c.st.ActiveReplyTargetID = ""
			c.st.ReplyText = ""
		}
	}
	c.log.Debug().Str("entry", string(sub.Kind)).Str("comment_id", sub.TargetID).Msg("submitted")
	return nil
}

func (s Submission) comment() model.NewComment {
	return model.NewComment{Post: s.PostID, Text: s.Text}
}

func (s Submission) reply() model.NewReply {
	return model.NewReply{CommentID: s.TargetID, Data: model.CommentData{Post: s.PostID, Text: s.Text}}
}
