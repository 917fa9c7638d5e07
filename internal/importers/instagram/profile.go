package instagram

import (
	"encoding/json"
	"fmt"

	"github.com/mrlokans/companion/internal/textfix"
)

const profilePhotoKey = "Profile Photo"

// profileFields is the normalized view over every known profile shape.
type profileFields struct {
	Username   textField
	FullName   textField
	Biography  textField
	PictureURI textField
}

type textField struct {
	Value  string
	Status fieldStatus
}

// decodeProfile tries the current "profile_user" shape first, then a bare
// string_map_data object, then the flat legacy profile.json.
func decodeProfile(data []byte) (profileFields, error) {
	elements, object, err := topLevel(data)
	if err != nil {
		return profileFields{}, err
	}
	if object == nil {
		if len(elements) > 0 {
			// Some exports wrap the user object in a one-element array.
			var user profileUser
			if err := json.Unmarshal(elements[0], &user); err == nil && user.StringMapData != nil {
				return fromProfileUser(user), nil
			}
		}
		return profileFields{}, fmt.Errorf("%w: unrecognized profile document", ErrParse)
	}

	if raw, ok := object["profile_user"]; ok {
		var users []profileUser
		if err := json.Unmarshal(raw, &users); err == nil && len(users) > 0 {
			return fromProfileUser(users[0]), nil
		}
	}

	if _, ok := object["string_map_data"]; ok {
		var user profileUser
		if err := json.Unmarshal(data, &user); err == nil {
			return fromProfileUser(user), nil
		}
	}

	if _, ok := object["username"]; ok {
		var legacy legacyProfile
		if err := json.Unmarshal(data, &legacy); err == nil {
			return fromLegacy(legacy), nil
		}
	}

	return profileFields{}, fmt.Errorf("%w: unrecognized profile document", ErrParse)
}

func fromProfileUser(user profileUser) profileFields {
	return profileFields{
		Username:   stringMapValue(user.StringMapData, "Username"),
		FullName:   stringMapValue(user.StringMapData, "Name"),
		Biography:  stringMapValue(user.StringMapData, "Bio"),
		PictureURI: mediaMapURI(user.MediaMapData, profilePhotoKey),
	}
}

func fromLegacy(legacy legacyProfile) profileFields {
	return profileFields{
		Username:   presentIfSet(legacy.Username),
		FullName:   presentIfSet(legacy.Name),
		Biography:  presentIfSet(legacy.Biography),
		PictureURI: presentIfSet(legacy.ProfilePicURL),
	}
}

func presentIfSet(s string) textField {
	if s == "" {
		return textField{Status: fieldAbsent}
	}
	return textField{Value: s, Status: fieldPresent}
}

func stringMapValue(m map[string]json.RawMessage, key string) textField {
	raw, ok := m[key]
	if !ok || isAbsent(raw) {
		return textField{Status: fieldAbsent}
	}
	var entry stringMapEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return textField{Status: fieldMalformed}
	}
	return textField{Value: entry.Value, Status: fieldPresent}
}

func mediaMapURI(m map[string]json.RawMessage, key string) textField {
	raw, ok := m[key]
	if !ok || isAbsent(raw) {
		return textField{Status: fieldAbsent}
	}
	var ref mediaRef
	if err := json.Unmarshal(raw, &ref); err != nil {
		return textField{Status: fieldMalformed}
	}
	return presentIfSet(ref.URI)
}

// repairedText applies encoding repair and records an issue for fields the
// export got wrong. A missing optional field is not an issue.
func repairedText(f textField, ref string, issues *[]ItemError) string {
	if f.Status == fieldMalformed {
		recordIssue(issues, ItemError{Scope: ScopeProfile, Index: -1, Ref: ref, Err: f.Status.err()})
		return ""
	}
	return textfix.Repair(f.Value)
}
