package scan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))
}

func TestTranscriptsSkipsArtifactsAndIndexes(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "proj-a", "s1.jsonl"))
	touch(t, filepath.Join(root, "proj-a", "s2.jsonl"))
	touch(t, filepath.Join(root, "proj-a", "notes.txt"))
	touch(t, filepath.Join(root, "proj-a", "sessions-index.jsonl"))
	touch(t, filepath.Join(root, "proj-a", "markdown", "s1.jsonl"))
	touch(t, filepath.Join(root, "proj-a", "html", "s1.jsonl"))
	touch(t, filepath.Join(root, "proj-b", "s3.jsonl"))

	files, err := Transcripts(root, Options{})
	require.NoError(t, err)
	require.Len(t, files, 3)

	// sorted by path, project is the parent dir name
	assert.Equal(t, "s1.jsonl", filepath.Base(files[0].Path))
	assert.Equal(t, "proj-a", files[0].Project)
	assert.Equal(t, "s3.jsonl", filepath.Base(files[2].Path))
	assert.Equal(t, "proj-b", files[2].Project)
}

func TestTranscriptsModifiedSince(t *testing.T) {
	root := t.TempDir()
	oldFile := filepath.Join(root, "proj", "old.jsonl")
	newFile := filepath.Join(root, "proj", "new.jsonl")
	touch(t, oldFile)
	touch(t, newFile)

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldFile, past, past))

	files, err := Transcripts(root, Options{ModifiedSince: time.Now().Add(-time.Hour)})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, newFile, files[0].Path)
}

func TestTranscriptsMissingRoot(t *testing.T) {
	_, err := Transcripts(filepath.Join(t.TempDir(), "nope"), Options{})
	assert.Error(t, err)
}

func TestProjects(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "proj-b", "s.jsonl"))
	touch(t, filepath.Join(root, "proj-a", "s.jsonl"))
	touch(t, filepath.Join(root, "markdown", "x.jsonl"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty-proj"), 0o755))

	dirs, err := Projects(root)
	require.NoError(t, err)
	require.Len(t, dirs, 2)
	assert.Equal(t, "proj-a", filepath.Base(dirs[0]))
	assert.Equal(t, "proj-b", filepath.Base(dirs[1]))
}
