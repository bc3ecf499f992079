package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix       = "user:%d"
	PostKeyPrefix       = "post:%d"
	CategoryPostsPrefix = "category:%s:posts"
)

const (
	UserTTL         = 5 * time.Minute
	PostTTL         = 10 * time.Minute
	CategoryListTTL = 2 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func CategoryPostsKey(category string) string {
	return fmt.Sprintf(CategoryPostsPrefix, category)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidatePost(ctx context.Context, postID uint, category string) {
	Invalidate(ctx, PostKey(postID))
	if category != "" {
		Invalidate(ctx, CategoryPostsKey(category))
	}
}
