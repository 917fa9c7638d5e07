package http

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/companion/internal/database"
	"github.com/mrlokans/companion/internal/entities"
)

// ProfilesController exposes imported profiles.
type ProfilesController struct {
	store ProfileStore
}

func NewProfilesController(store ProfileStore) *ProfilesController {
	return &ProfilesController{store: store}
}

// ProfileSummary is the list view of a profile.
type ProfileSummary struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	FullName      string `json:"full_name,omitempty"`
	ProfilePicURL string `json:"profile_pic_url,omitempty"`
	Followers     int    `json:"followers"`
	Following     int    `json:"following"`
	Posts         int    `json:"posts"`
	WhenImported  string `json:"when_imported"`
}

func summarize(p entities.Profile) ProfileSummary {
	return ProfileSummary{
		ID:            p.ID,
		Username:      p.Username,
		FullName:      p.FullName,
		ProfilePicURL: p.ProfilePicURL,
		Followers:     len(p.Followers),
		Following:     len(p.Following),
		Posts:         len(p.Posts),
		WhenImported:  p.WhenImported.UTC().Format(time.RFC3339),
	}
}

// List handles GET /api/profiles
// Returns summaries, newest import first.
func (pc *ProfilesController) List(c *gin.Context) {
	profiles, err := pc.store.Load()
	if err != nil {
		respondInternalError(c, err, "load profiles")
		return
	}

	summaries := make([]ProfileSummary, 0, len(profiles))
	for _, p := range profiles {
		summaries = append(summaries, summarize(p))
	}

	c.JSON(http.StatusOK, gin.H{
		"profiles": summaries,
		"total":    len(summaries),
	})
}

// Get handles GET /api/profiles/:id
func (pc *ProfilesController) Get(c *gin.Context) {
	profile, err := pc.store.GetProfile(c.Param("id"))
	if errors.Is(err, database.ErrNotFound) {
		respondNotFound(c, "profile")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Delete handles DELETE /api/profiles/:id
func (pc *ProfilesController) Delete(c *gin.Context) {
	id := c.Param("id")
	err := pc.store.Delete(id)
	if errors.Is(err, database.ErrNotFound) {
		respondNotFound(c, "profile")
		return
	}
	if err != nil {
		respondInternalError(c, err, "delete profile")
		return
	}
	log.Printf("Deleted profile %s", id)
	respondSuccess(c, "Profile deleted", gin.H{"id": id})
}

// DeleteAll handles DELETE /api/profiles
// Media files are left for the prune task.
func (pc *ProfilesController) DeleteAll(c *gin.Context) {
	deleted, err := pc.store.DeleteAll()
	if err != nil {
		respondInternalError(c, err, "delete all profiles")
		return
	}
	log.Printf("Deleted %d profiles", deleted)
	respondSuccess(c, "Profiles deleted", gin.H{"deleted": deleted})
}
