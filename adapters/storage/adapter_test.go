package storage

import (
	"context"
	"os"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipping-rules/core/settings"
	"shipping-rules/internal/config"
	"shipping-rules/internal/errors"
)

func stores(t *testing.T) map[string]Store {
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "instances"))
	require.NoError(t, err)
	return map[string]Store{
		"file":   fs,
		"memory": NewMemoryStore(),
	}
}

func TestGetMissingReturnsDefaults(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			record, err := s.Get(context.Background(), "zone-1")
			require.NoError(t, err)
			assert.False(t, record.Saved)
			assert.Equal(t, "zone-1", record.InstanceID)
			assert.Equal(t, "10", record.Settings.Get(settings.KeyFixedPrice))
		})
	}
}

func TestSaveGetListDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			inst, err := settings.Defaults().Apply(map[string]string{settings.KeyPriceKilo: "3.5"})
			require.NoError(t, err)

			saved, err := s.Save(ctx, "zone-b", inst)
			require.NoError(t, err)
			assert.NotEmpty(t, saved.Revision)
			_, err = s.Save(ctx, "zone-a", settings.Defaults())
			require.NoError(t, err)

			got, err := s.Get(ctx, "zone-b")
			require.NoError(t, err)
			assert.True(t, got.Saved)
			assert.Equal(t, saved.Revision, got.Revision)
			assert.Equal(t, "3.5", got.Settings.Get(settings.KeyPriceKilo))

			list, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "zone-a", list[0].InstanceID)
			assert.Equal(t, "zone-b", list[1].InstanceID)

			require.NoError(t, s.Delete(ctx, "zone-b"))
			err = s.Delete(ctx, "zone-b")
			assert.True(t, errors.IsType(err, errors.TypeNotFound))

			got, err = s.Get(ctx, "zone-b")
			require.NoError(t, err)
			assert.False(t, got.Saved)
			require.NoError(t, s.Close())
		})
	}
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := s.Save(ctx, "default", settings.Defaults())
	require.NoError(t, err)

	got, err := s.Get(ctx, "default")
	require.NoError(t, err)
	got.Settings.Values[settings.KeyFixedPrice] = "999"

	again, err := s.Get(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "10", again.Settings.Get(settings.KeyFixedPrice))
}

func TestInvalidInstanceID(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, id := range []string{"", "../etc/passwd", "a/b", ".hidden"} {
				_, err := s.Get(context.Background(), id)
				assert.True(t, errors.IsType(err, errors.TypeInput), "get %q", id)

				err = s.Delete(context.Background(), id)
				assert.True(t, errors.IsType(err, errors.TypeInput), "delete %q", id)

				_, err = s.Update(context.Background(), id, func(cur settings.Instance) (settings.Instance, error) {
					return cur, nil
				})
				assert.True(t, errors.IsType(err, errors.TypeInput), "update %q", id)
			}
		})
	}
}

func TestFileStoreCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644))

	_, err = s.Get(context.Background(), "broken")
	assert.True(t, errors.IsType(err, errors.TypeStorage))

	// List skips unreadable documents
	list, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNew(t *testing.T) {
	s, err := New(config.StoreConfig{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = New(config.StoreConfig{Backend: "file", Directory: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = New(config.StoreConfig{Backend: "redis"})
	assert.True(t, errors.IsType(err, errors.TypeNotSupported))
}

func TestProvider(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	inst, err := settings.Defaults().Apply(map[string]string{settings.KeyFlatWeight: "4"})
	require.NoError(t, err)
	_, err = s.Save(ctx, "zone-1", inst)
	require.NoError(t, err)

	p := Provider{Store: s}
	got, err := p.InstanceSettings(ctx, "zone-1")
	require.NoError(t, err)
	assert.Equal(t, "4", got.Get(settings.KeyFlatWeight))

	got, err = p.InstanceSettings(ctx, "unsaved")
	require.NoError(t, err)
	assert.Equal(t, "10", got.Get(settings.KeyFlatWeight))

	_, err = p.InstanceSettings(ctx, "../x")
	assert.Error(t, err)
}

func TestUpdateIsAtomic(t *testing.T) {
	ctx := context.Background()
	keys := []string{
		settings.KeyTitle,
		settings.KeyTaxStatus,
		settings.KeyPriceKilo,
		settings.KeyFlatWeight,
		settings.KeyFixedPrice,
	}
	values := map[string]string{
		settings.KeyTitle:      "Courier",
		settings.KeyTaxStatus:  "none",
		settings.KeyPriceKilo:  "1.5",
		settings.KeyFlatWeight: "3",
		settings.KeyFixedPrice: "7",
	}

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for _, key := range keys {
				wg.Add(1)
				go func(key string) {
					defer wg.Done()
					_, err := s.Update(ctx, "zone-eu", func(cur settings.Instance) (settings.Instance, error) {
						return cur.Apply(map[string]string{key: values[key]})
					})
					assert.NoError(t, err)
				}(key)
			}
			wg.Wait()

			record, err := s.Get(ctx, "zone-eu")
			require.NoError(t, err)
			for _, key := range keys {
				assert.Equal(t, values[key], record.Settings.Get(key), "lost update of %s", key)
			}
		})
	}
}

func TestUpdateErrorKeepsStoredSettings(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Save(ctx, "zone-eu", settings.Instance{Values: map[string]string{settings.KeyFixedPrice: "4"}})
			require.NoError(t, err)

			_, err = s.Update(ctx, "zone-eu", func(cur settings.Instance) (settings.Instance, error) {
				return settings.Instance{}, fmt.Errorf("rejected")
			})
			require.Error(t, err)

			record, err := s.Get(ctx, "zone-eu")
			require.NoError(t, err)
			assert.Equal(t, "4", record.Settings.Get(settings.KeyFixedPrice))
		})
	}
}
