// Package thread turns the comments endpoint's flat payload into the two-level
// tree the thread view renders.
package thread

import "feedview/internal/model"

// AnonymousName is shown for comments whose author has no name.
const AnonymousName = "Anonymous"

// DefaultMaxTopLevel is how many top-level comments a post card shows.
const DefaultMaxTopLevel = 2

// Node is a render-ready comment. Children are only populated on top-level nodes.
type Node struct {
	ID          string `json:"nodeId"`
	AuthorID    string `json:"authorId,omitempty"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	Text        string `json:"text"`
	Children    []Node `json:"children"`
}

func (n Node) HasReplies() bool { return len(n.Children) > 0 }

// Build returns at most maxTopLevel top-level nodes, in input order, each carrying
// its embedded replies as children.
//
// Any record whose id appears in some record's replies is a reply, even when the
// backend also lists it at the top level, so it is never emitted as a root.
// Records without an id are skipped; a repeated top-level id keeps its first
// occurrence.
func Build(records []model.CommentRecord, maxTopLevel int) []Node {
	out := []Node{}
	if len(records) == 0 || maxTopLevel <= 0 {
		return out
	}

	subordinate := subordinateSet(records)
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if len(out) >= maxTopLevel {
			break
		}
		if rec.ID == "" || subordinate[rec.ID] || seen[rec.ID] {
			continue
		}
		seen[rec.ID] = true

		n := nodeFrom(rec)
		n.Children = make([]Node, 0, len(rec.Replies))
		for _, r := range rec.Replies {
			if r.ID == "" {
				continue
			}
			child := nodeFrom(r)
			child.Children = []Node{}
			n.Children = append(n.Children, child)
		}
		out = append(out, n)
	}
	return out
}

// subordinateSet collects every id that appears inside a replies collection.
func subordinateSet(records []model.CommentRecord) map[string]bool {
	ids := map[string]bool{}
	for _, rec := range records {
		for _, r := range rec.Replies {
			if r.ID != "" {
				ids[r.ID] = true
			}
		}
	}
	return ids
}

func nodeFrom(rec model.CommentRecord) Node {
	name := rec.AuthorName()
	if name == "" {
		name = AnonymousName
	}
	return Node{
		ID:          rec.ID,
		AuthorID:    rec.AuthorID(),
		DisplayName: name,
		AvatarURL:   rec.AuthorAvatarURL(),
		Text:        rec.Text,
	}
}

// IndexOf returns the position of id among nodes, or -1.
func IndexOf(nodes []Node, id string) int {
	for i := range nodes {
		if nodes[i].ID == id {
			return i
		}
	}
	return -1
}
