package archive

import "fmt"

// ExtractionError reports an archive that could not be decompressed.
// Error returns the decompressor's message unchanged.
type ExtractionError struct {
	Archive string
	Err     error
}

func (e *ExtractionError) Error() string {
	return e.Err.Error()
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ExportKind names one of the logical files an export must contain.
type ExportKind string

const (
	KindProfile   ExportKind = "profile"
	KindPosts     ExportKind = "posts"
	KindFollowers ExportKind = "followers"
	KindFollowing ExportKind = "following"
)

// RequiredKinds lists the logical files in discovery order.
var RequiredKinds = []ExportKind{KindProfile, KindPosts, KindFollowers, KindFollowing}

// MissingExportFileError reports a logical export file that none of the known
// layouts could locate.
type MissingExportFileError struct {
	Kind ExportKind
}

func (e *MissingExportFileError) Error() string {
	if e.Kind == KindProfile {
		return "Required Instagram profile information not found in archive"
	}
	return fmt.Sprintf("Required Instagram %s data not found in archive", e.Kind)
}
