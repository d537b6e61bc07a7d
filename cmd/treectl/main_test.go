package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"treectl"}, args...))
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNormalize_LegacyArrayToYAML(t *testing.T) {
	path := writeFile(t, "meta.json", `{"docs":[{"id":"f1","name":"a.pdf","url":"u","folderId":"stale"}],"color":"red"}`)

	out, err := runApp(t, "--format", "yaml", "normalize", path)
	require.NoError(t, err)
	assert.Contains(t, out, "folders: []")
	assert.Contains(t, out, "folderId: null")
	assert.Contains(t, out, "name: a.pdf")
}

func TestNormalize_Text(t *testing.T) {
	path := writeFile(t, "tree.json", `{"folders":[{"id":"a","name":"Invoices","parentId":null},{"id":"b","name":"2024","parentId":"a"}],"files":[{"id":"f","name":"jan.pdf","url":"u","folderId":"b"}]}`)

	out, err := runApp(t, "normalize", "--raw", path)
	require.NoError(t, err)
	assert.Equal(t, "Invoices/  [a]\n  2024/  [b]\n    jan.pdf  [f]\n", out)
}

func TestNormalize_YAMLInput(t *testing.T) {
	path := writeFile(t, "meta.yaml", "gallery:\n  folders:\n    - id: a\n      name: Trips\n  files: []\n")

	out, err := runApp(t, "--kind", "gallery", "--format", "json", "normalize", "--input-format", "yaml", path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"folders":[{"id":"a","name":"Trips","parentId":null}],"files":[]}`, out)
}

func TestNormalize_InvalidTree(t *testing.T) {
	path := writeFile(t, "tree.json", `{"folders":[{"id":"a","name":"A","parentId":"b"},{"id":"b","name":"B","parentId":"a"}],"files":[]}`)

	_, err := runApp(t, "normalize", "--raw", path)
	require.Error(t, err)
	var exit cli.ExitCoder
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 2, exit.ExitCode())
}

func TestOnlineCommandsRequireAsset(t *testing.T) {
	t.Setenv("ASSETDESK_ASSET", "")
	_, err := runApp(t, "tree")
	assert.EqualError(t, err, "--asset is required")
}
