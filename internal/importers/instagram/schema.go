package instagram

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrParse marks an export file that is not JSON or matches none of the known
// shapes. It is fatal for the import.
var ErrParse = errors.New("failed to parse Instagram data")

var (
	errFieldMissing   = errors.New("field missing")
	errFieldMalformed = errors.New("field malformed")
)

// fieldStatus separates a field the export left out from one it got wrong.
// Both are recoverable.
type fieldStatus int

const (
	fieldPresent fieldStatus = iota
	fieldAbsent
	fieldMalformed
)

func (s fieldStatus) err() error {
	switch s {
	case fieldAbsent:
		return errFieldMissing
	case fieldMalformed:
		return errFieldMalformed
	}
	return nil
}

// stringMapEntry is a labelled value inside "string_map_data".
type stringMapEntry struct {
	Href      string `json:"href"`
	Value     string `json:"value"`
	Timestamp int64  `json:"timestamp"`
}

// mediaRef points at a file inside the export by relative path.
type mediaRef struct {
	URI               string          `json:"uri"`
	Title             string          `json:"title"`
	CreationTimestamp json.RawMessage `json:"creation_timestamp"`
}

type profileUser struct {
	StringMapData map[string]json.RawMessage `json:"string_map_data"`
	MediaMapData  map[string]json.RawMessage `json:"media_map_data"`
}

type profileFile struct {
	ProfileUser []profileUser `json:"profile_user"`
}

// legacyProfile is the flat profile.json of early exports.
type legacyProfile struct {
	Username      string `json:"username"`
	Name          string `json:"name"`
	Biography     string `json:"biography"`
	ProfilePicURL string `json:"profile_pic_url"`
}

// rawPost keeps every field undecoded so a bad field only spoils itself.
type rawPost struct {
	ID                json.RawMessage `json:"id"`
	Title             json.RawMessage `json:"title"`
	Media             json.RawMessage `json:"media"`
	CreationTimestamp json.RawMessage `json:"creation_timestamp"`
}

type stringListEntry struct {
	Href      string `json:"href"`
	Value     string `json:"value"`
	Timestamp int64  `json:"timestamp"`
}

type rawRelation struct {
	Title          string            `json:"title"`
	StringListData []stringListEntry `json:"string_list_data"`
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// decodeString reads an optional JSON string.
func decodeString(raw json.RawMessage) (string, fieldStatus) {
	if isAbsent(raw) {
		return "", fieldAbsent
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fieldMalformed
	}
	return s, fieldPresent
}

// decodeID reads an identifier given either as a string or a number.
func decodeID(raw json.RawMessage) (string, fieldStatus) {
	if isAbsent(raw) {
		return "", fieldAbsent
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			return "", fieldAbsent
		}
		return s, fieldPresent
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), fieldPresent
	}
	return "", fieldMalformed
}

// decodeTimestamp reads Unix seconds given as an integer, a float or a
// numeric string.
func decodeTimestamp(raw json.RawMessage) (time.Time, fieldStatus) {
	if isAbsent(raw) {
		return time.Time{}, fieldAbsent
	}

	var seconds float64
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return time.Time{}, fieldMalformed
		}
		seconds = v
	} else if err := json.Unmarshal(raw, &seconds); err != nil {
		return time.Time{}, fieldMalformed
	}

	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds > maxUnixSeconds {
		return time.Time{}, fieldMalformed
	}

	whole, frac := math.Modf(seconds)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC(), fieldPresent
}

// Year 9999, anything later is a unit mix-up.
const maxUnixSeconds = 253402300799

// topLevel splits a JSON document into its array elements, or returns the
// object members when the document is an object.
func topLevel(data []byte) (elements []json.RawMessage, object map[string]json.RawMessage, err error) {
	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) {
		return nil, nil, fmt.Errorf("%w: invalid JSON", ErrParse)
	}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &elements); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		return elements, nil, nil
	}
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &object); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		return nil, object, nil
	}
	return nil, nil, nil
}
