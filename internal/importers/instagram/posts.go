package instagram

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/companion/internal/entities"
	"github.com/mrlokans/companion/internal/textfix"
)

// postElements returns the post records of one posts file. A document that is
// valid JSON but not an array contributes nothing.
func postElements(data []byte) ([]json.RawMessage, bool, error) {
	elements, object, err := topLevel(data)
	if err != nil {
		return nil, false, err
	}
	if object != nil || elements == nil {
		return nil, false, nil
	}
	return elements, true, nil
}

// postSource is one post record together with where it came from.
type postSource struct {
	raw   json.RawMessage
	index int
	file  string
}

// postDraft is a decoded post before its media have been migrated.
type postDraft struct {
	post   entities.Post
	media  []string
	issues []ItemError
}

// draftPost decodes a single post record. It always yields a post: fields the
// record lacks or gets wrong are defaulted and reported.
func draftPost(src postSource, now time.Time) postDraft {
	var d postDraft
	fail := func(ref string, err error) {
		recordIssue(&d.issues, ItemError{Scope: ScopePost, Index: src.index, Ref: ref, Err: err})
	}

	var raw rawPost
	if err := json.Unmarshal(src.raw, &raw); err != nil {
		fail(src.file, errFieldMalformed)
		d.post = entities.Post{ID: generatedPostID(now), Timestamp: now, MediaURLs: []string{}}
		return d
	}

	id, status := decodeID(raw.ID)
	if status == fieldMalformed {
		fail("id", status.err())
	}
	if id == "" {
		id = generatedPostID(now)
	}

	caption, status := decodeString(raw.Title)
	if status == fieldMalformed {
		fail("title", status.err())
	}

	refs, ok := decodeMediaRefs(raw.Media)
	if !ok {
		fail("media", errFieldMalformed)
	}

	timestamp, status := decodeTimestamp(raw.CreationTimestamp)
	if status == fieldMalformed {
		fail("creation_timestamp", status.err())
	}
	if status != fieldPresent {
		timestamp = now
		if len(refs) > 0 {
			if ts, mediaStatus := decodeTimestamp(refs[0].CreationTimestamp); mediaStatus == fieldPresent {
				timestamp = ts
			}
		}
	}

	if caption == "" && len(refs) == 1 {
		caption = refs[0].Title
	}

	for i, ref := range refs {
		if ref.URI == "" {
			recordIssue(&d.issues, ItemError{Scope: ScopeMedia, Index: i, Ref: "post " + id, Err: errFieldMissing})
			continue
		}
		d.media = append(d.media, ref.URI)
	}

	d.post = entities.Post{
		ID:        id,
		Timestamp: timestamp,
		MediaURLs: []string{},
		Caption:   textfix.Repair(caption),
	}
	return d
}

// decodeMediaRefs reads the media list of a post. Elements that are not
// objects are kept as empty refs so indexes stay aligned.
func decodeMediaRefs(raw json.RawMessage) ([]mediaRef, bool) {
	if isAbsent(raw) {
		return nil, true
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, false
	}
	refs := make([]mediaRef, len(elements))
	for i, element := range elements {
		var ref mediaRef
		if err := json.Unmarshal(element, &ref); err == nil {
			refs[i] = ref
		}
	}
	return refs, true
}

func generatedPostID(now time.Time) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return strconv.FormatInt(now.UnixMilli(), 10) + "_" + token
}
