package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/bazaar/pkg/types"
)

// testEnv is an isolated config and data directory pair.
type testEnv struct {
	t         *testing.T
	configDir string
	dataDir   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	for _, key := range []string{"BAZAAR_DATA_DIR", "BAZAAR_CONFIG_DIR", "BAZAAR_DELIMITER", "BAZAAR_QUOTE_ALL", "BAZAAR_HEADER"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	dir := t.TempDir()
	return &testEnv{
		t:         t,
		configDir: filepath.Join(dir, "config"),
		dataDir:   filepath.Join(dir, "data"),
	}
}

// run executes bazaar with the env's directories prepended to args.
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	return e.runStdin("", args...)
}

func (e *testEnv) runStdin(stdin string, args ...string) (string, error) {
	e.t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd(&stdout, &stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))
	err := root.Execute()
	return stdout.String(), err
}

// mustRunJSON runs a --json command and decodes its output into v.
func (e *testEnv) mustRunJSON(v any, args ...string) {
	e.t.Helper()
	out, err := e.run(append([]string{"--json"}, args...)...)
	require.NoError(e.t, err)
	require.NoError(e.t, json.Unmarshal([]byte(out), v), out)
}

func TestInitCreatesCatalog(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run("init")
	require.NoError(t, err)
	assert.Contains(t, out, "bazaar initialized")

	for _, spec := range types.Catalog {
		data, err := os.ReadFile(filepath.Join(env.dataDir, spec.Name+".csv"))
		require.NoError(t, err, spec.Name)
		assert.Equal(t, strings.Join(spec.Fields, ",")+"\n", string(data))
	}
	assert.FileExists(t, filepath.Join(env.configDir, "config.yaml"))

	want := make([]string, 0, len(types.Catalog))
	for _, spec := range types.Catalog {
		want = append(want, spec.Name)
	}
	slices.Sort(want)

	var names []string
	env.mustRunJSON(&names, "collections")
	assert.Equal(t, want, names)
}

func TestRecordLifecycle(t *testing.T) {
	env := newTestEnv(t)

	var created map[string]any
	env.mustRunJSON(&created, "create", "listings", `{"title":"Tent","price":50,"tags":["camping"]}`)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "Tent", created["title"])
	assert.Equal(t, float64(50), created["price"])
	assert.Equal(t, []any{"camping"}, created["tags"])

	var got map[string]any
	env.mustRunJSON(&got, "get", "listings", id)
	assert.Equal(t, created, got)

	var listed []map[string]any
	env.mustRunJSON(&listed, "list", "listings", "price=50")
	require.Len(t, listed, 1)
	assert.Equal(t, id, listed[0]["id"])

	env.mustRunJSON(&listed, "list", "listings", `price="50"`)
	assert.Empty(t, listed)

	var updated map[string]any
	env.mustRunJSON(&updated, "update", "listings", id, "--set", `{"price":60}`)
	assert.Equal(t, float64(60), updated["price"])
	assert.Equal(t, "Tent", updated["title"])

	out, err := env.run("count", "listings")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	out, err = env.run("delete", "listings", id)
	require.NoError(t, err)
	assert.Equal(t, "Deleted listings/"+id+"\n", out)

	out, err = env.run("count", "listings")
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)
}

func TestCreateFromStdin(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.runStdin(`{"id":"u1","email":"a@b.c"}`, "create", "users", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "id: u1\n")
	assert.Contains(t, out, "email: a@b.c\n")
}

func TestTextOutputPutsIDFirst(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("create", "users", `{"id":"u1","name":"Ana","age":30}`)
	require.NoError(t, err)

	out, err := env.run("get", "users", "name=Ana")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "id: u1", lines[0])
	assert.Equal(t, "age: 30", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "createdAt: "), lines[2])
	assert.Equal(t, "name: Ana", lines[3])
}

func TestErrorsMapToExitCodes(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"update missing record", []string{"update", "users", "nope", "--set", `{"a":1}`}, types.ErrNotFound},
		{"delete missing record", []string{"delete", "users", "nope"}, types.ErrNotFound},
		{"invalid collection", []string{"list", "../etc"}, types.ErrInvalidCollection},
		{"malformed json", []string{"create", "users", `{"a":`}, types.ErrInvalidData},
		{"empty filter key", []string{"count", "users", "=1"}, types.ErrInvalidFilter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, exitUserError, exitCode(err))
		})
	}

	t.Run("get without match", func(t *testing.T) {
		_, err := env.run("get", "users", "nope")
		require.Error(t, err)
		assert.Equal(t, exitUserError, exitCode(err))
	})

	t.Run("cleanup needs confirmation", func(t *testing.T) {
		_, err := env.run("cleanup")
		require.Error(t, err)
		assert.Equal(t, exitUserError, exitCode(err))
	})
}

func TestDuplicateIDRejected(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("create", "users", `{"id":"u1"}`)
	require.NoError(t, err)
	_, err = env.run("create", "users", `{"id":"u1"}`)
	assert.ErrorIs(t, err, types.ErrDuplicateID)
}

func TestConfigFileDrivesStore(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.MkdirAll(env.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.configDir, "config.yaml"),
		[]byte("delimiter: ;\nquote_all: true\nheader: true\n"), 0o644))

	_, err := env.run("create", "reviews", `{"id":"r1","rating":5}`)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(env.dataDir, "reviews.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"createdAt";"id";"rating";"updatedAt"`, lines[0])
	assert.Contains(t, lines[1], `;"r1";"5";`)
}

func TestInvalidDelimiterIsUserError(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.MkdirAll(env.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.configDir, "config.yaml"),
		[]byte("delimiter: \"::\"\n"), 0o644))

	_, err := env.run("count", "users")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrDelimiterInvalid)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestInitSaveWritesResolvedConfig(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("init", "--save")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(env.configDir, "config.yaml"))
	require.NoError(t, err)
	var saved configFile
	require.NoError(t, yaml.Unmarshal(data, &saved))
	assert.Equal(t, configFile{DataDir: env.dataDir, Delimiter: ",", Header: true}, saved)
}

func TestCleanupRemovesCatalog(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("init")
	require.NoError(t, err)
	_, err = env.run("cleanup", "--yes")
	require.NoError(t, err)

	var names []string
	env.mustRunJSON(&names, "collections")
	assert.Empty(t, names)
}

func TestExportWritesDatabase(t *testing.T) {
	env := newTestEnv(t)
	out := filepath.Join(t.TempDir(), "snapshot.db")

	_, err := env.run("create", "listings", `{"title":"Tent"}`)
	require.NoError(t, err)

	var res map[string]string
	env.mustRunJSON(&res, "export", "--out", out)
	assert.Equal(t, out, res["path"])
	assert.FileExists(t, out)
}

func TestVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	root := NewRootCmd(&stdout, &stderr)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.True(t, strings.HasPrefix(stdout.String(), "bazaar "), stdout.String())
}

func TestParseFilter(t *testing.T) {
	filter, err := parseFilter([]string{"u1", "price=50", "available=true", `code="007"`, "note=hello world", "gone=null"})
	require.NoError(t, err)
	assert.Equal(t, types.Filter{
		"id":        types.String("u1"),
		"price":     types.Int(50),
		"available": types.Bool(true),
		"code":      types.String("007"),
		"note":      types.String("hello world"),
		"gone":      types.Null(),
	}, filter)
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{in: ",", want: ','},
		{in: ";", want: ';'},
		{in: "tab", want: '\t'},
		{in: `\t`, want: '\t'},
		{in: "|", want: '|'},
		{in: "", wantErr: true},
		{in: ",,", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDelimiter(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrDelimiterInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, mustParse(t, formatDelimiter(got)))
		})
	}
}

func mustParse(t *testing.T, s string) rune {
	t.Helper()
	r, err := parseDelimiter(s)
	require.NoError(t, err)
	return r
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitUserError, exitCode(errors.New("unknown flag")))
	assert.Equal(t, exitSysError, exitCode(sysError(errors.New("disk full"))))
	assert.Equal(t, exitUserError, exitCode(storeError(types.ErrNotFound)))
	assert.Equal(t, exitSysError, exitCode(storeError(os.ErrPermission)))
}
