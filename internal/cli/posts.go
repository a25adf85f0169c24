package cli

import (
	"fmt"

	"feedview/internal/feed"
	"feedview/internal/postview"

	"github.com/spf13/cobra"
)

func newPostsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Post commands",
	}
	cmd.AddCommand(newPostsListCmd(app))
	cmd.AddCommand(newPostsShowCmd(app))
	return cmd
}

// tabLists maps --tab values to the profile listings.
var tabLists = map[string]feed.PostList{
	"posts":      feed.ListMyPosts,
	"premium":    feed.ListMyPremiumPosts,
	"subscribed": feed.ListSubscribedPosts,
}

func newPostsListCmd(app *App) *cobra.Command {
	var tab string
	var page int
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one of your profile post tabs (paginated)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, ok := tabLists[tab]
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown --tab %q (want posts|premium|subscribed)", tab))
			}
			if page < 1 {
				return writeErr(cmd, fmt.Errorf("--page must be >= 1"))
			}

			s, err := openSession(cmd.Context(), cmd, app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			if limit <= 0 {
				limit = s.cfg.Feed.PageSize
			}
			res, err := s.repo.ListPosts(cmd.Context(), list, page, limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			cards := make([]postview.Card, 0, len(res.Posts))
			for _, p := range res.Posts {
				cards = append(cards, postview.NewCard(p))
			}
			return writeOut(cmd, app, map[string]any{
				"data": cards,
				"meta": map[string]any{
					"tab":     tab,
					"page":    res.Meta.Page,
					"limit":   res.Meta.Limit,
					"total":   res.Meta.Total,
					"hasMore": res.HasMore(),
				},
			})
		},
	}

	cmd.Flags().StringVar(&tab, "tab", "posts", "Tab to list (posts|premium|subscribed)")
	cmd.Flags().IntVar(&page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size (default: feed.page_size)")
	return cmd
}

func newPostsShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <post-id>",
		Short: "Show a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cmd, app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			p, err := s.repo.Post(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, apiErr(err, "post", args[0]))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"post": p,
					"card": postview.NewCard(p),
				},
			})
		},
	}
	return cmd
}
