package instagram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/companion/internal/archive"
	"github.com/mrlokans/companion/internal/entities"
)

// DefaultWorkers bounds concurrent post migration when none is configured.
const DefaultWorkers = 4

var errRemoteMedia = errors.New("media is not a file inside the archive")

// MediaStore moves media out of the scratch area into durable storage.
type MediaStore interface {
	CopyProfilePicture(src, username string, importedAt time.Time) (string, error)
	CopyPostMedia(src string) (string, error)
}

// Result is a transformed profile together with the recoverable issues met
// while building it.
type Result struct {
	Profile *entities.Profile
	Issues  []ItemError
}

// Transformer maps the discovered export files of an extracted archive into a
// Profile, migrating referenced media on the way.
type Transformer struct {
	fs      afero.Fs
	media   MediaStore
	workers int
	now     func() time.Time
}

func NewTransformer(fs afero.Fs, media MediaStore, workers int) *Transformer {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Transformer{
		fs:      fs,
		media:   media,
		workers: workers,
		now:     time.Now,
	}
}

// Transform builds the profile. Per-item problems become issues on the
// result; only unreadable or unparseable export files and cancellation are
// returned as errors.
func (t *Transformer) Transform(ctx context.Context, root string, paths archive.ExportPaths) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	importedAt := t.now()
	var issues []ItemError

	data, err := t.read(root, paths.Profile)
	if err != nil {
		return nil, err
	}
	fields, err := decodeProfile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.rel(root, paths.Profile), err)
	}

	followers, err := t.relations(root, paths.Followers)
	if err != nil {
		return nil, err
	}
	following, err := t.relations(root, paths.Following)
	if err != nil {
		return nil, err
	}

	sources, err := t.postSources(root, paths.Posts)
	if err != nil {
		return nil, err
	}

	bases := mediaBases(root, paths.Profile)
	posts, err := t.migratePosts(ctx, bases, sources, importedAt)
	if err != nil {
		return nil, err
	}

	username := repairedText(fields.Username, "Username", &issues)
	if username == "" && fields.Username.Status == fieldAbsent {
		recordIssue(&issues, ItemError{Scope: ScopeProfile, Index: -1, Ref: "Username", Err: errFieldMissing})
	}

	profile := &entities.Profile{
		ID:        entities.ProfileID(username, importedAt),
		Username:  username,
		FullName:  repairedText(fields.FullName, "Name", &issues),
		Biography: repairedText(fields.Biography, "Bio", &issues),
		Followers: followers.Items,
		Following: following.Items,
		Posts:     posts.Items,
	}
	profile.ProfilePicURL = t.profilePicture(bases, fields.PictureURI, username, importedAt, &issues)

	issues = append(issues, followers.Issues...)
	issues = append(issues, following.Issues...)
	issues = append(issues, posts.Issues...)

	log.Printf("[IMPORT] Transformed @%s: %d posts, %d followers, %d following, %d issues",
		username, len(profile.Posts), len(profile.Followers), len(profile.Following), len(issues))

	return &Result{Profile: profile, Issues: issues}, nil
}

func (t *Transformer) read(root, path string) ([]byte, error) {
	data, err := afero.ReadFile(t.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", t.rel(root, path), err)
	}
	return data, nil
}

func (t *Transformer) rel(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}

func (t *Transformer) relations(root string, files []string) (Batch[entities.Relation], error) {
	var all Batch[entities.Relation]
	for _, path := range files {
		data, err := t.read(root, path)
		if err != nil {
			return all, err
		}
		batch, err := decodeRelations(data, t.rel(root, path))
		if err != nil {
			return all, fmt.Errorf("%s: %w", t.rel(root, path), err)
		}
		all.Merge(batch)
	}
	if all.Items == nil {
		all.Items = []entities.Relation{}
	}
	return all, nil
}

func (t *Transformer) postSources(root string, files []string) ([]postSource, error) {
	var sources []postSource
	for _, path := range files {
		data, err := t.read(root, path)
		if err != nil {
			return nil, err
		}
		elements, ok, err := postElements(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.rel(root, path), err)
		}
		if !ok {
			log.Printf("WARNING: %s is not a list of posts, skipping it", t.rel(root, path))
			continue
		}
		for _, raw := range elements {
			sources = append(sources, postSource{raw: raw, index: len(sources), file: t.rel(root, path)})
		}
	}
	return sources, nil
}

// migratePosts decodes posts and copies their media with bounded parallelism.
// Every worker writes only its own slot, so output order matches input order.
func (t *Transformer) migratePosts(ctx context.Context, bases []string, sources []postSource, importedAt time.Time) (Batch[entities.Post], error) {
	drafts := make([]postDraft, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.workers)
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d := draftPost(src, importedAt)
			for _, uri := range d.media {
				if err := gctx.Err(); err != nil {
					return err
				}
				path, err := t.copyPostMedia(bases, uri)
				if err != nil {
					recordIssue(&d.issues, ItemError{Scope: ScopeMedia, Index: src.index, Ref: uri, Err: err})
					continue
				}
				d.post.MediaURLs = append(d.post.MediaURLs, path)
			}
			drafts[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Batch[entities.Post]{}, err
	}

	batch := Batch[entities.Post]{Items: make([]entities.Post, 0, len(drafts))}
	for _, d := range drafts {
		batch.Items = append(batch.Items, d.post)
		batch.Issues = append(batch.Issues, d.issues...)
	}
	return batch, nil
}

func (t *Transformer) copyPostMedia(bases []string, uri string) (string, error) {
	src, err := t.resolve(bases, uri)
	if err != nil {
		return "", err
	}
	return t.media.CopyPostMedia(src)
}

func (t *Transformer) profilePicture(bases []string, field textField, username string, importedAt time.Time, issues *[]ItemError) string {
	switch field.Status {
	case fieldAbsent:
		return ""
	case fieldMalformed:
		recordIssue(issues, ItemError{Scope: ScopeProfile, Index: -1, Ref: profilePhotoKey, Err: field.Status.err()})
		return ""
	}

	src, err := t.resolve(bases, field.Value)
	if err == nil {
		var dest string
		if dest, err = t.media.CopyProfilePicture(src, username, importedAt); err == nil {
			return dest
		}
	}
	recordIssue(issues, ItemError{Scope: ScopeMedia, Index: -1, Ref: field.Value, Err: err})
	return ""
}

// resolve maps a media URI from the export to a file in the scratch area.
// URIs are relative to the export root, which is not always the archive root.
func (t *Transformer) resolve(bases []string, uri string) (string, error) {
	if strings.Contains(uri, "://") {
		return "", errRemoteMedia
	}
	clean := filepath.Clean(filepath.FromSlash(strings.TrimLeft(uri, "/")))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errRemoteMedia
	}

	for _, base := range bases {
		candidate := filepath.Join(base, clean)
		if _, err := t.fs.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return filepath.Join(bases[0], clean), nil
}

// mediaBases lists the directories a media URI may be relative to: the
// scratch root first, then each directory down to the one holding the profile
// file.
func mediaBases(root, profilePath string) []string {
	root = filepath.Clean(root)
	var nested []string
	dir := filepath.Dir(filepath.Clean(profilePath))
	for {
		rel, err := filepath.Rel(root, dir)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			break
		}
		nested = append([]string{dir}, nested...)
		dir = filepath.Dir(dir)
	}
	return append([]string{root}, nested...)
}
