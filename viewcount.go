package devscribe

import (
	"context"
	"fmt"
	"strconv"

	"github.com/eringen/devscribe/content"
	"github.com/eringen/devscribe/prefs"
)

func viewKey(postID string) string {
	return "post-views-" + postID
}

// recordView bumps the client's counter for post and returns the new value.
// A missing or unreadable counter starts from the post's seed count. The
// read and write are not atomic; concurrent views may be lost.
func recordView(ctx context.Context, s prefs.Storage, post content.Post) (int, error) {
	key := viewKey(post.ID)
	n := post.Views
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return post.Views, fmt.Errorf("devscribe: read %s: %w", key, err)
	}
	if ok {
		if stored, err := strconv.Atoi(raw); err == nil && stored >= 0 {
			n = stored
		}
	}
	n++
	if err := s.Set(ctx, key, strconv.Itoa(n)); err != nil {
		return post.Views, fmt.Errorf("devscribe: save %s: %w", key, err)
	}
	return n, nil
}
