package cli

import (
	"fmt"

	"feedview/internal/feed"
)

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

// apiErr turns a backend 404 into a notFoundError and passes everything else on.
func apiErr(err error, kind, id string) error {
	if feed.IsNotFound(err) {
		return errNotFound(kind, id)
	}
	return err
}
