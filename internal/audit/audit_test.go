package audit

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/companion/internal/entities"
	"github.com/mrlokans/companion/internal/importers"
)

func TestAuditor(t *testing.T) {
	fs := afero.NewMemMapFs()
	auditDir := "/var/audit"
	auditor := NewAuditor(fs, auditDir)

	t.Run("SaveJSON creates audit directory and saves file", func(t *testing.T) {
		testData := map[string]interface{}{
			"test_field": "test_value",
			"number":     42,
		}

		filename, err := auditor.SaveJSON(testData)
		require.NoError(t, err)
		assert.Contains(t, filename, ".json")

		fileContent, err := afero.ReadFile(fs, filepath.Join(auditDir, filename))
		require.NoError(t, err)

		var savedData map[string]interface{}
		require.NoError(t, json.Unmarshal(fileContent, &savedData))
		assert.Equal(t, "test_value", savedData["test_field"])
		assert.Equal(t, float64(42), savedData["number"]) // JSON unmarshals numbers as float64
	})

	t.Run("SaveJSON generates unique filenames", func(t *testing.T) {
		filename1, err := auditor.SaveJSON(map[string]string{"key": "value"})
		require.NoError(t, err)
		filename2, err := auditor.SaveJSON(map[string]string{"key": "value"})
		require.NoError(t, err)

		assert.NotEqual(t, filename1, filename2)
	})

	t.Run("SaveImport summarizes the result", func(t *testing.T) {
		result := importers.ImportResult{
			Success: true,
			Stage:   importers.StageDone,
			Issues:  2,
			Profile: &entities.Profile{
				ID:            "instagram_jane_1700000000000",
				Username:      "jane",
				ProfilePicURL: "/media/profile_jane.jpg",
				Posts: []entities.Post{
					{ID: "1", Timestamp: time.Unix(1700000000, 0), MediaURLs: []string{"/media/a.jpg", "/media/b.jpg"}},
				},
			},
		}

		filename, err := auditor.SaveImport("upload", "export.zip", result)
		require.NoError(t, err)

		data, err := afero.ReadFile(fs, filepath.Join(auditDir, filename))
		require.NoError(t, err)

		var record ImportRecord
		require.NoError(t, json.Unmarshal(data, &record))
		assert.Equal(t, "upload", record.Source)
		assert.Equal(t, "export.zip", record.ArchiveName)
		assert.True(t, record.Success)
		assert.Equal(t, "instagram_jane_1700000000000", record.ProfileID)
		assert.Equal(t, 1, record.Posts)
		assert.Equal(t, 3, record.MediaFiles)
		assert.Equal(t, 2, record.Issues)
	})

	t.Run("SaveImport records failures", func(t *testing.T) {
		record := NewImportRecord("watch", "broken.zip", importers.ImportResult{
			Error: "zip: not a valid zip file",
			Stage: importers.StageExtracting,
		})

		assert.False(t, record.Success)
		assert.Equal(t, importers.StageExtracting, record.Stage)
		assert.Empty(t, record.ProfileID)
	})
}
