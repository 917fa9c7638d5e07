package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProfileID(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "instagram_jane_1709294400000", ProfileID("jane", at))
	assert.NotEqual(t, ProfileID("jane", at), ProfileID("jane", at.Add(time.Millisecond)))
}

func TestProfile_MediaPaths(t *testing.T) {
	p := Profile{
		ProfilePicURL: "/media/profile.jpg",
		Posts: []Post{
			{ID: "1", MediaURLs: []string{"/media/a.jpg", "/media/b.jpg"}},
			{ID: "2"},
			{ID: "3", MediaURLs: []string{"/media/c.mp4"}},
		},
	}

	assert.Equal(t, 4, p.MediaCount())
	assert.Equal(t, []string{"/media/profile.jpg", "/media/a.jpg", "/media/b.jpg", "/media/c.mp4"}, p.MediaPaths())
}

func TestProfile_MediaPathsWithoutPicture(t *testing.T) {
	p := Profile{Posts: []Post{{ID: "1", MediaURLs: []string{"/media/a.jpg"}}}}

	assert.Equal(t, 1, p.MediaCount())
	assert.Equal(t, []string{"/media/a.jpg"}, p.MediaPaths())
}
