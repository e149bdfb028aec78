package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mediaplanhq/campaignstore/internal/common"
	"github.com/mediaplanhq/campaignstore/internal/server/models"
)

type fakeStore struct {
	mu      sync.Mutex
	puts    map[string][]byte
	types   map[string]string
	active  int
	peak    int
	failKey string
}

func newFakeStore() *fakeStore {
	return &fakeStore{puts: make(map[string][]byte), types: make(map[string]string)}
}

func (f *fakeStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	f.mu.Lock()
	f.active++
	if f.active > f.peak {
		f.peak = f.active
	}
	fail := f.failKey != "" && strings.Contains(key, f.failKey)
	f.mu.Unlock()

	time.Sleep(time.Millisecond) // keep uploads overlapping so peak is observable

	f.mu.Lock()
	f.active--
	if !fail {
		f.puts[key] = data
		f.types[key] = contentType
	}
	f.mu.Unlock()
	if fail {
		return "", errors.New("bucket unavailable")
	}
	return "https://media.test/" + key, nil
}

func (f *fakeStore) List(ctx context.Context, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.puts {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.puts, key)
	return nil
}

func inlinePNG(payload string) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(payload))
}

func TestResolve_ReplacesInlinePayloads(t *testing.T) {
	store := newFakeStore()
	m := NewMaterializer(store, 4)

	days := []*models.Day{
		{Day: 1, Blocks: []*models.ContentBlock{
			{ID: "b1", MediaRef: inlinePNG("img-one")},
			{ID: "b2", MediaRef: "https://cdn.example.com/existing.png"},
		}},
		{Day: 2, Blocks: []*models.ContentBlock{
			{ID: "b3", MediaRef: inlinePNG("img-two")},
		}},
	}

	require.NoError(t, m.Resolve(context.Background(), "c1", days))

	require.True(t, strings.HasPrefix(days[0].Blocks[0].MediaRef, "https://media.test/campaigns/c1/day_1/"))
	require.Equal(t, "https://cdn.example.com/existing.png", days[0].Blocks[1].MediaRef, "durable refs stay untouched")
	require.True(t, strings.HasPrefix(days[1].Blocks[0].MediaRef, "https://media.test/campaigns/c1/day_2/"))
	require.Len(t, store.puts, 2)

	for _, b := range []*models.ContentBlock{days[0].Blocks[0], days[1].Blocks[0]} {
		require.False(t, IsInline(b.MediaRef))
	}
	for key, contentType := range store.types {
		require.Equal(t, "image/png", contentType, "key %s", key)
	}
}

func TestResolve_NoInlinePayloadsNoUploads(t *testing.T) {
	store := newFakeStore()
	m := NewMaterializer(store, 4)

	days := []*models.Day{
		{Day: 1, Blocks: []*models.ContentBlock{{ID: "b1", MediaRef: "https://cdn.example.com/a.png"}}},
	}

	require.NoError(t, m.Resolve(context.Background(), "c1", days))
	require.Empty(t, store.puts)
}

func TestResolve_FailedUploadAbortsAndLeavesTreeUnchanged(t *testing.T) {
	store := newFakeStore()
	store.failKey = "day_2"
	m := NewMaterializer(store, 4)

	inline1 := inlinePNG("one")
	inline2 := inlinePNG("two")
	days := []*models.Day{
		{Day: 1, Blocks: []*models.ContentBlock{{ID: "b1", MediaRef: inline1}}},
		{Day: 2, Blocks: []*models.ContentBlock{{ID: "b2", MediaRef: inline2}}},
	}

	err := m.Resolve(context.Background(), "c1", days)
	require.Error(t, err)

	var uploadErr *common.UploadError
	require.ErrorAs(t, err, &uploadErr)
	require.Contains(t, uploadErr.Key, "day_2")

	require.Equal(t, inline1, days[0].Blocks[0].MediaRef, "tree must stay unmodified on failure")
	require.Equal(t, inline2, days[1].Blocks[0].MediaRef)
}

func TestResolve_MalformedDataURIFails(t *testing.T) {
	store := newFakeStore()
	m := NewMaterializer(store, 4)

	days := []*models.Day{
		{Day: 1, Blocks: []*models.ContentBlock{{ID: "b1", MediaRef: "data:image/png;base64"}}},
	}

	var uploadErr *common.UploadError
	require.ErrorAs(t, m.Resolve(context.Background(), "c1", days), &uploadErr)
}

func TestResolve_ManyUploadsAllMaterialized(t *testing.T) {
	store := newFakeStore()
	m := NewMaterializer(store, DefaultGroupSize)

	blocks := make([]*models.ContentBlock, 37)
	for i := range blocks {
		blocks[i] = &models.ContentBlock{ID: fmt.Sprintf("b%d", i), MediaRef: inlinePNG(fmt.Sprintf("img-%d", i))}
	}
	days := []*models.Day{{Day: 1, Blocks: blocks}}

	require.NoError(t, m.Resolve(context.Background(), "c9", days))
	require.Len(t, store.puts, 37)
	require.LessOrEqual(t, store.peak, DefaultGroupSize, "concurrent uploads must stay within the group size")
	for _, b := range blocks {
		require.False(t, IsInline(b.MediaRef))
	}
}

func TestDecodeDataURI(t *testing.T) {
	contentType, data, err := decodeDataURI(inlinePNG("hello"))
	require.NoError(t, err)
	require.Equal(t, "image/png", contentType)
	require.Equal(t, []byte("hello"), data)

	_, _, err = decodeDataURI("https://cdn.example.com/a.png")
	require.Error(t, err)

	_, _, err = decodeDataURI("data:image/png,percent-encoded")
	require.Error(t, err)
}
