package archive

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memTree(t *testing.T, root string, files ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, afero.WriteFile(fs, path, []byte("{}"), 0644))
	}
	return fs
}

func TestDiscover_CurrentLayout(t *testing.T) {
	root := "/scratch/import-1"
	fs := memTree(t, root,
		"personal_information/personal_information/personal_information.json",
		"your_instagram_activity/content/posts_1.json",
		"connections/followers_and_following/followers_1.json",
		"connections/followers_and_following/following.json",
	)

	paths, err := Discover(fs, root)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "personal_information", "personal_information", "personal_information.json"), paths.Profile)
	assert.Equal(t, []string{filepath.Join(root, "your_instagram_activity", "content", "posts_1.json")}, paths.Posts)
	assert.Equal(t, []string{filepath.Join(root, "connections", "followers_and_following", "followers_1.json")}, paths.Followers)
	assert.Equal(t, []string{filepath.Join(root, "connections", "followers_and_following", "following.json")}, paths.Following)
}

func TestDiscover_OlderLayout(t *testing.T) {
	root := "/scratch/import-2"
	fs := memTree(t, root,
		"account_information/personal_information.json",
		"content/posts_1.json",
		"followers_and_following/followers_1.json",
		"followers_and_following/following.json",
	)

	paths, err := Discover(fs, root)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "account_information", "personal_information.json"), paths.Profile)
	assert.Len(t, paths.Posts, 1)
	assert.Len(t, paths.Followers, 1)
	assert.Len(t, paths.Following, 1)
}

func TestDiscover_FallsBackToScan(t *testing.T) {
	root := "/scratch/import-3"
	fs := memTree(t, root,
		"instagram-someone-2024-01-01/personal_information/personal_information/personal_information.json",
		"instagram-someone-2024-01-01/your_instagram_activity/content/posts_1.json",
		"instagram-someone-2024-01-01/connections/followers_and_following/followers_1.json",
		"instagram-someone-2024-01-01/connections/followers_and_following/following.json",
	)

	paths, err := Discover(fs, root)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(paths.Profile, "personal_information.json"))
	assert.Len(t, paths.Posts, 1)
}

func TestDiscover_MultiPartFilesInNumericOrder(t *testing.T) {
	root := "/scratch/import-4"
	fs := memTree(t, root,
		"personal_information/personal_information/personal_information.json",
		"your_instagram_activity/content/posts_10.json",
		"your_instagram_activity/content/posts_2.json",
		"your_instagram_activity/content/posts_1.json",
		"connections/followers_and_following/followers_2.json",
		"connections/followers_and_following/followers_1.json",
		"connections/followers_and_following/following.json",
	)

	paths, err := Discover(fs, root)
	require.NoError(t, err)

	dir := filepath.Join(root, "your_instagram_activity", "content")
	assert.Equal(t, []string{
		filepath.Join(dir, "posts_1.json"),
		filepath.Join(dir, "posts_2.json"),
		filepath.Join(dir, "posts_10.json"),
	}, paths.Posts)
	assert.Len(t, paths.Followers, 2)
	assert.True(t, strings.HasSuffix(paths.Followers[0], "followers_1.json"))
}

func TestDiscover_MissingFollowers(t *testing.T) {
	root := "/scratch/import-5"
	fs := memTree(t, root,
		"personal_information/personal_information/personal_information.json",
		"your_instagram_activity/content/posts_1.json",
		"connections/followers_and_following/following.json",
	)

	_, err := Discover(fs, root)
	require.Error(t, err)

	var missing *MissingExportFileError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, KindFollowers, missing.Kind)
	assert.Contains(t, err.Error(), "followers")
}

func TestDiscover_MissingProfileMessage(t *testing.T) {
	root := "/scratch/import-6"
	fs := memTree(t, root, "your_instagram_activity/content/posts_1.json")

	_, err := Discover(fs, root)

	require.Error(t, err)
	assert.Equal(t, "Required Instagram profile information not found in archive", err.Error())
}

func TestDiscover_ScanRespectsDepthLimit(t *testing.T) {
	root := "/scratch/import-7"
	deep := strings.Repeat("nested/", MaxScanDepth+1)
	fs := memTree(t, root, deep+"personal_information.json")

	_, err := Discover(fs, root)

	var missing *MissingExportFileError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, KindProfile, missing.Kind)
}

func TestPartNumber(t *testing.T) {
	assert.Equal(t, 0, partNumber("following.json"))
	assert.Equal(t, 1, partNumber("posts_1.json"))
	assert.Equal(t, 12, partNumber("/a/b/followers_12.json"))
}
