package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const progressFile = `
timestamp: "2022-09-10T00:00:30Z"
points:
  - timestamp: "2022-09-09T23:00:00Z"
    percent: 20
  - timestamp: "2022-09-10T00:00:30Z"
    total_difficulty: "23500000000000000000000"
`

const estimateFile = `{
  "block_number": 15500000,
  "estimated_block_number": 15540000,
  "estimated_date_time": "2022-09-10T00:03:00Z",
  "total_difficulty": "29375000000000000000000",
  "timestamp": "2022-09-10T00:00:30Z"
}`

func runCmd(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	all := append([]string{"ttdproj", "--no-log", "--db-path", dbPath}, args...)
	err := Run(context.Background(), all, nil, &stdout, &stderr)

	return stdout.String(), err
}

func TestRunImportAndProject(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "data", "ttdproj.db")
	progressPath := filepath.Join(dir, "progress.yaml")
	estimatePath := filepath.Join(dir, "estimate.json")
	require.NoError(os.WriteFile(progressPath, []byte(progressFile), 0644))
	require.NoError(os.WriteFile(estimatePath, []byte(estimateFile), 0644))

	// Without data there is nothing to project.
	_, err := runCmd(t, dbPath, "project")
	require.Error(err)

	out, err := runCmd(t, dbPath, "progress", "import", progressPath)
	require.NoError(err)
	assert.Contains(out, "Progress snapshot imported successfully!")
	assert.Contains(out, "Points:       2")

	out, err = runCmd(t, dbPath, "estimate", "import", estimatePath)
	require.NoError(err)
	assert.Contains(out, "Target:       2022-09-10T00:03:00Z")

	out, err = runCmd(t, dbPath, "project", "--format", "json", "--include-target", "--at", "2022-09-10T00:01:30Z")
	require.NoError(err)

	var res struct {
		Target    string  `json:"target"`
		Progress  float64 `json:"progress"`
		Projected []struct {
			Timestamp string  `json:"timestamp"`
			Percent   float64 `json:"percent"`
		} `json:"projected"`
		At struct {
			Point struct {
				Timestamp string `json:"timestamp"`
			} `json:"point"`
		} `json:"at"`
	}
	require.NoError(json.Unmarshal([]byte(out), &res))

	assert.Equal("2022-09-10T00:03:00Z", res.Target)
	assert.InDelta(0.5, res.Progress, 1e-9)
	require.Len(res.Projected, 3)
	assert.Equal("2022-09-10T00:01:00Z", res.Projected[0].Timestamp)
	assert.InDelta(52, res.Projected[0].Percent, 1e-9)
	assert.InDelta(76, res.Projected[1].Percent, 1e-9)
	assert.Equal("2022-09-10T00:03:00Z", res.Projected[2].Timestamp)
	assert.InDelta(100, res.Projected[2].Percent, 1e-9)
	assert.Equal("2022-09-10T00:01:00Z", res.At.Point.Timestamp)

	out, err = runCmd(t, dbPath, "project", "--sample-every", "2m")
	require.NoError(err)
	assert.Contains(out, "2022-09-10 00:02:00 UTC")
	assert.NotContains(out, "2022-09-10 00:01:00 UTC")

	out, err = runCmd(t, dbPath, "progress", "list")
	require.NoError(err)
	assert.Contains(out, "40.0000%")

	out, err = runCmd(t, dbPath, "estimate", "list", "--format", "json")
	require.NoError(err)
	assert.Contains(out, `"estimated_block_number": 15540000`)
}

func TestRunInvalidArgs(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ttdproj.db")

	tests := map[string][]string{
		"Unknown command should fail.":     {"merge"},
		"Invalid format should fail.":      {"project", "--format", "xml"},
		"Missing import file should fail.": {"progress", "import"},
		"Invalid at should fail.":          {"project", "--at", "noon"},
		"Not existing import file fails.":  {"estimate", "import", "/does/not/exist.yaml"},
		"Negative list limit should fail.": {"progress", "list", "--limit", "-1"},
		"Invalid sample duration fails.":   {"project", "--sample-every", "often"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := runCmd(t, dbPath, args...)
			assert.Error(t, err)
		})
	}
}
