package cli

import (
	"strings"

	"feedview/internal/compose"
	"feedview/internal/model"
	"feedview/internal/thread"

	"github.com/spf13/cobra"
)

func newCommentsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Comment commands",
	}
	cmd.AddCommand(newCommentsListCmd(app))
	cmd.AddCommand(newCommentsAddCmd(app))
	cmd.AddCommand(newCommentsReplyCmd(app))
	return cmd
}

func newCommentsListCmd(app *App) *cobra.Command {
	var maxTop int

	cmd := &cobra.Command{
		Use:   "list <post-id>",
		Short: "Show a post's comment thread (top-level comments with their replies)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cmd, app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			postID := args[0]
			records, err := s.repo.FetchComments(cmd.Context(), postID)
			if err != nil {
				return writeErr(cmd, apiErr(err, "post", postID))
			}
			limit := s.cfg.Thread.MaxTopLevel
			if cmd.Flags().Changed("max") {
				limit = maxTop
			}
			nodes := thread.Build(records, limit)
			return writeOut(cmd, app, map[string]any{
				"data": nodes,
				"meta": map[string]any{"post": postID, "total": len(records), "shown": len(nodes)},
			})
		},
	}

	cmd.Flags().IntVar(&maxTop, "max", thread.DefaultMaxTopLevel, "Maximum number of top-level comments (default: thread.max_top_level)")
	return cmd
}

func newCommentsAddCmd(app *App) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "add <post-id>",
		Short: "Add a top-level comment to a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cmd, app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			postID := args[0]
			ctrl := compose.NewController(postID, s.repo, s.log)
			ctrl.EditNewComment(strings.TrimSpace(text))
			sub := ctrl.PrepareNewComment()
			if err := ctrl.Resolve(sub, ctrl.Send(cmd.Context(), sub)); err != nil {
				return writeErr(cmd, apiErr(err, "post", postID))
			}
			return writeOut(cmd, app, map[string]any{"data": model.NewComment{Post: postID, Text: sub.Text}})
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Comment text")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func newCommentsReplyCmd(app *App) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "reply <post-id> <comment-id>",
		Short: "Reply to a top-level comment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cmd, app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			postID, commentID := args[0], args[1]
			ctrl := compose.NewController(postID, s.repo, s.log)
			ctrl.StartReply(commentID)
			ctrl.EditReplyText(strings.TrimSpace(text))
			sub, _ := ctrl.PrepareReply()
			if err := ctrl.Resolve(sub, ctrl.Send(cmd.Context(), sub)); err != nil {
				return writeErr(cmd, apiErr(err, "comment", commentID))
			}
			return writeOut(cmd, app, map[string]any{"data": model.NewReply{
				CommentID: commentID,
				Data:      model.CommentData{Post: postID, Text: sub.Text},
			}})
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Reply text")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}
