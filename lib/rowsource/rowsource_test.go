package rowsource

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artie-labs/bulksync/lib/config"
)

type fakeOpener struct {
	mu       sync.Mutex
	contents map[string]string
	failures map[string][]error
	opened   map[string]int
}

func (f *fakeOpener) Open(_ context.Context, path string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.opened == nil {
		f.opened = map[string]int{}
	}
	f.opened[path]++

	if errs := f.failures[path]; len(errs) > 0 {
		f.failures[path] = errs[1:]
		return nil, errs[0]
	}

	content, ok := f.contents[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func TestDecode(t *testing.T) {
	{
		records, err := Decode(strings.NewReader(`{"id": 1, "name": "Ana", "score": 12.50, "tags": ["a"]}
{"id": 9223372036854775807, "name": null}

{"id": 3, "nested": {"depth": 2}}`))
		assert.NoError(t, err)
		assert.Len(t, records, 3)

		assert.Equal(t, int64(1), records[0]["id"])
		assert.Equal(t, "Ana", records[0]["name"])
		score, ok := records[0]["score"].(*apd.Decimal)
		if assert.True(t, ok) {
			assert.Equal(t, "12.50", score.String())
		}
		assert.Equal(t, []any{"a"}, records[0]["tags"])

		assert.Equal(t, int64(9223372036854775807), records[1]["id"])
		assert.Nil(t, records[1]["name"])
		assert.Contains(t, records[1], "name")

		assert.Equal(t, int64(3), records[2]["id"])
	}
	{
		// Empty input
		records, err := Decode(strings.NewReader(""))
		assert.NoError(t, err)
		assert.Empty(t, records)
	}
	{
		_, err := Decode(strings.NewReader(`{"id": 1}
{"id": `))
		assert.ErrorContains(t, err, "failed to decode record 1")
		assert.False(t, isRetryableErr(err))
	}
	{
		_, err := Decode(strings.NewReader(`null`))
		assert.ErrorContains(t, err, "record 0 is not a JSON object")
	}
}

func TestIsRetryableErr(t *testing.T) {
	assert.True(t, isRetryableErr(errors.New("connection reset")))
	assert.False(t, isRetryableErr(os.ErrNotExist))
	assert.False(t, isRetryableErr(context.Canceled))
	assert.False(t, isRetryableErr(decodeError{errors.New("bad")}))
}

func TestLoadAll(t *testing.T) {
	opener := &fakeOpener{contents: map[string]string{
		"a.json": `{"id": 1, "name": "A"}` + "\n" + `{"id": 2, "name": "B"}`,
		"b.json": `{"id": 3, "age": 40}`,
		"c.json": ``,
	}}

	rows, err := LoadAll(t.Context(), opener, []string{"a.json", "b.json", "c.json"}, 2)
	assert.NoError(t, err)
	assert.Equal(t, 3, rows.Len())
	assert.Equal(t, []string{"age", "id", "name"}, rows.Fields())
	assert.Equal(t, []any{nil, int64(1), "A"}, rows.Values(0))
	assert.Equal(t, []any{nil, int64(2), "B"}, rows.Values(1))
	assert.Equal(t, []any{int64(40), int64(3), nil}, rows.Values(2))
}

func TestLoadAll_Errors(t *testing.T) {
	{
		// Missing inputs are not retried
		opener := &fakeOpener{}
		_, err := LoadAll(t.Context(), opener, []string{"missing.json"}, 0)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.ErrorContains(t, err, `failed to load "missing.json"`)
		assert.Equal(t, 1, opener.opened["missing.json"])
	}
	{
		// Transient failures are retried
		opener := &fakeOpener{
			contents: map[string]string{"a.json": `{"id": 1}`},
			failures: map[string][]error{"a.json": {errors.New("connection reset")}},
		}
		rows, err := LoadAll(t.Context(), opener, []string{"a.json"}, 0)
		assert.NoError(t, err)
		assert.Equal(t, 1, rows.Len())
		assert.Equal(t, 2, opener.opened["a.json"])
	}
	{
		opener := &fakeOpener{contents: map[string]string{"a.json": `{"id": }`}}
		_, err := LoadAll(t.Context(), opener, []string{"a.json"}, 0)
		assert.ErrorContains(t, err, "failed to decode record 0")
		assert.Equal(t, 1, opener.opened["a.json"])
	}
}

func TestLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Id": 1, "Name": "Ana"}`+"\n"), 0o600))

	loader, err := NewLoader(t.Context(), config.Input{Paths: []string{path}})
	require.NoError(t, err)
	defer loader.Close()

	rows, err := LoadAll(t.Context(), loader, []string{path, "file://" + path}, 0)
	assert.NoError(t, err)
	assert.Equal(t, 2, rows.Len())
	assert.Equal(t, []string{"Id", "Name"}, rows.Fields())

	_, err = loader.Open(t.Context(), "s3://bucket/key.json")
	assert.ErrorContains(t, err, `no s3 client configured for "s3://bucket/key.json"`)

	_, err = loader.Open(t.Context(), "gs://bucket/key.json")
	assert.ErrorContains(t, err, `no gcs client configured for "gs://bucket/key.json"`)
}
