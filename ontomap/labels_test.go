package ontomap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadLabelsJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "src.json", `["Color_Code", "Weight", "Color_Code", ""]`)

	got, err := LoadLabels(path, LabelParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Color_Code", "Weight", "Color_Code", ""}, got)

	empty := writeFile(t, dir, "empty.json", `[]`)
	got, err = LoadLabels(empty, LabelParseOptions{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadLabelsJSONErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadLabels(filepath.Join(dir, "missing.json"), LabelParseOptions{})
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadLabels(writeFile(t, dir, "obj.json", `{"a": 1}`), LabelParseOptions{})
	assert.Error(t, err)

	_, err = LoadLabels(writeFile(t, dir, "nums.json", `[1, 2]`), LabelParseOptions{})
	assert.Error(t, err)

	_, err = LoadLabels(writeFile(t, dir, "null.json", `null`), LabelParseOptions{})
	assert.Error(t, err)
}

func TestLoadLabelsCSVAutoDetect(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "targets.csv", "\ufeffid,Label\n1,colour\n2, size \n3,\n")

	got, err := LoadLabels(path, LabelParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"colour", "size"}, got)
}

func TestLoadLabelsCSVWithoutKnownHeader(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "targets.csv", "colour,x\nsize,y\n")

	got, err := LoadLabels(path, LabelParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"colour", "size"}, got)
}

func TestLoadLabelsTSVExplicitColumn(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "targets.tsv", "code\tpreferred\nC1\tcolour\nS1\tsize\n")

	got, err := LoadLabels(path, LabelParseOptions{Column: "Preferred"})
	require.NoError(t, err)
	assert.Equal(t, []string{"colour", "size"}, got)

	got, err = LoadLabels(path, LabelParseOptions{Column: "#1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"code", "C1", "S1"}, got)

	_, err = LoadLabels(path, LabelParseOptions{Column: "#9"})
	assert.Error(t, err)

	_, err = LoadLabels(path, LabelParseOptions{Column: "#0"})
	assert.Error(t, err)

	_, err = LoadLabels(path, LabelParseOptions{Column: "nope"})
	assert.Error(t, err)
}

func TestLoadLabelsCustomColumns(t *testing.T) {
	t.Cleanup(func() { SetLabelColumns(nil) })
	SetLabelColumns([]string{"vocab"})

	dir := t.TempDir()
	path := writeFile(t, dir, "targets.csv", "id,vocab\n1,colour\n")
	got, err := LoadLabels(path, LabelParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"colour"}, got)

	SetLabelColumns(nil)
	assert.Equal(t, DefaultLabelColumns(), getLabelColumns())
}

func TestLoadLabelsText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "labels.txt", "colour\r\n\n  size  \n")

	got, err := LoadLabels(path, LabelParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"colour", "size"}, got)
}

func TestLoadLabelsUnsupported(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "labels.xml", "<labels/>")
	_, err := LoadLabels(path, LabelParseOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
