package postview

import "feedview/internal/feed"

// Tab is one of the profile post listings.
type Tab struct {
	Title string
	List  feed.PostList
	Pager Pager
}

// Pager tracks infinite-scroll paging for one tab.
type Pager struct {
	Page         int
	FetchingMore bool
	Done         bool
}

// LoadMore advances to the next page and marks a fetch in flight. It reports
// false, changing nothing, while a fetch is already running or after the last page.
func (p *Pager) LoadMore() (int, bool) {
	if p.FetchingMore || p.Done {
		return p.Page, false
	}
	p.Page++
	p.FetchingMore = true
	return p.Page, true
}

// Loaded records the outcome of the in-flight fetch.
func (p *Pager) Loaded(hasMore bool, err error) {
	p.FetchingMore = false
	if err != nil {
		// Allow the same page to be requested again.
		p.Page--
		return
	}
	p.Done = !hasMore
}

// Tabs is the profile screen's tab strip.
type Tabs struct {
	Items  []Tab
	Active int
}

func NewProfileTabs() Tabs {
	return Tabs{Items: []Tab{
		{Title: "My Posts", List: feed.ListMyPosts},
		{Title: "My Premium Posts", List: feed.ListMyPremiumPosts},
		{Title: "My Subscribed Posts", List: feed.ListSubscribedPosts},
	}}
}

func (t *Tabs) Current() *Tab { return &t.Items[t.Active] }

func (t *Tabs) Next() {
	t.Active = (t.Active + 1) % len(t.Items)
}

func (t *Tabs) Prev() {
	t.Active = (t.Active - 1 + len(t.Items)) % len(t.Items)
}
