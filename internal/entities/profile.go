package entities

import (
	"time"
)

// ProfileKeyPrefix prefixes every stored profile key, so the store can list
// and wipe profiles without touching other records.
const ProfileKeyPrefix = "instagram_"

// Relation is one follower or followed account.
type Relation struct {
	Name       string `json:"name"`
	ProfileURL string `json:"profileUrl"`
}

// Post is a single imported post. MediaURLs point into the durable media
// directory, never into the extraction scratch area.
type Post struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	MediaURLs []string  `json:"mediaUrls"`
	Caption   string    `json:"caption"`
}

// Profile is the normalized result of one archive import.
type Profile struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	FullName      string     `json:"fullName"`
	Biography     string     `json:"biography"`
	ProfilePicURL string     `json:"profilePicUrl"`
	Followers     []Relation `json:"followers"`
	Following     []Relation `json:"following"`
	Posts         []Post     `json:"posts"`
	WhenImported  time.Time  `json:"whenImported"`
}

// ProfileID derives the storage id for a profile imported at the given time.
// Re-importing the same account yields a new id.
func ProfileID(username string, importedAt time.Time) string {
	return ProfileKeyPrefix + username + "_" + formatMillis(importedAt)
}

// MediaCount returns the number of migrated media files referenced by the profile.
func (p *Profile) MediaCount() int {
	count := 0
	if p.ProfilePicURL != "" {
		count++
	}
	for _, post := range p.Posts {
		count += len(post.MediaURLs)
	}
	return count
}

// MediaPaths returns every media path referenced by the profile.
func (p *Profile) MediaPaths() []string {
	paths := make([]string, 0, p.MediaCount())
	if p.ProfilePicURL != "" {
		paths = append(paths, p.ProfilePicURL)
	}
	for _, post := range p.Posts {
		paths = append(paths, post.MediaURLs...)
	}
	return paths
}
