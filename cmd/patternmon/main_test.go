package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/patternmon/internal/config"
)

const quake = `{"event":"quake","magnitude":"6.2"}`

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func TestEncode_DryRun(t *testing.T) {
	out, err := execute(t, quake, "encode", "--subject", "quakes", "--dry-run")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "semantic\tsemantic:v1:event\t"))
	assert.True(t, strings.HasPrefix(lines[1], "semantic\tsemantic:v1:magnitude\t"))
	assert.True(t, strings.HasPrefix(lines[2], "bundle\tbundle:v1:quakes\t"))
}

func TestEncode_Skipped(t *testing.T) {
	out, err := execute(t, `[1,2,3]`, "encode", "-s", "quakes", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "skipped: message body is not a JSON object")

	out, err = execute(t, `{}`, "encode", "-s", "quakes")
	require.NoError(t, err)
	assert.Contains(t, out, "skipped")
}

func TestEncode_RequiresSubject(t *testing.T) {
	_, err := execute(t, quake, "encode")
	assert.Error(t, err)
}

func TestLocalStore_EncodeListInspect(t *testing.T) {
	t.Setenv("PATTERNMON_STORE_LOCAL_DIR", t.TempDir())
	t.Setenv("PATTERNMON_LOG_LEVEL", "error")

	out, err := execute(t, quake, "--store", "local", "--create-bucket", "encode", "-s", "quakes")
	require.NoError(t, err)
	assert.Contains(t, out, "stored 2 semantic and 1 bundle vector(s)")

	out, err = execute(t, "", "--store", "local", "list")
	require.NoError(t, err)
	assert.Equal(t, "bundle:v1:quakes\nsemantic:v1:event\nsemantic:v1:magnitude\n", out)

	out, err = execute(t, "", "--store", "local", "list", "semantic:")
	require.NoError(t, err)
	assert.Equal(t, "semantic:v1:event\nsemantic:v1:magnitude\n", out)

	out, err = execute(t, "", "--store", "local", "inspect", "bundle:v1:quakes", "--compare", "semantic:v1:event")
	require.NoError(t, err)
	assert.Contains(t, out, `bundle "quakes"`)
	assert.Contains(t, out, "dim=10000")
	assert.Contains(t, out, "cosine\t")

	out, err = execute(t, "", "--store", "local", "inspect", "semantic:v1:event", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"dimension":10000`)

	_, err = execute(t, "", "--store", "local", "inspect", "semantic:v1:missing")
	assert.Error(t, err)
}

func TestLocalStore_MissingBucket(t *testing.T) {
	t.Setenv("PATTERNMON_STORE_LOCAL_DIR", t.TempDir())
	t.Setenv("PATTERNMON_LOG_LEVEL", "error")

	_, err := execute(t, quake, "--store", "local", "encode", "-s", "quakes")
	assert.ErrorContains(t, err, "no such store")
}

func TestInvalidConfig(t *testing.T) {
	_, err := execute(t, "", "--store", "redis", "list")
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, err = execute(t, "", "--codec", "gob", "list")
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestRun_RequiresTopics(t *testing.T) {
	_, err := execute(t, "", "run")
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "--store", "redis", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version: dev")
}
