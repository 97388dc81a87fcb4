package cache

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProfileKeyPrefix = "profile:user:%s"
	PostKeyPrefix    = "post:%s"
	GitHubKeyPrefix  = "github:repos:%s"

	ProfilesListKey = "profiles:list"
	PostsListKey    = "posts:list"
)

const (
	ProfileTTL      = 5 * time.Minute
	ProfilesListTTL = 2 * time.Minute
	PostTTL         = 30 * time.Minute
	PostsListTTL    = time.Minute
	GitHubTTL       = 10 * time.Minute
)

func ProfileKey(userID string) string {
	return fmt.Sprintf(ProfileKeyPrefix, userID)
}

func PostKey(postID string) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// GitHubKey is case-insensitive because GitHub usernames are.
func GitHubKey(username string) string {
	return fmt.Sprintf(GitHubKeyPrefix, strings.ToLower(username))
}
