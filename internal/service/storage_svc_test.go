package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bambufarm_v1_202608/internal/config"
)

// ==================== 本地存储 ====================

func setupLocalStorage(t *testing.T) GcodeStorage {
	storage, err := NewLocalGcodeStorage(&config.StorageConfig{
		Provider: "local",
		BasePath: t.TempDir(),
	})
	require.NoError(t, err)
	return storage
}

func TestLocalStorageUploadAndList(t *testing.T) {
	storage := setupLocalStorage(t)
	ctx := context.Background()

	data := []byte("G28\nG1 X10 Y10\n")
	key, err := storage.Upload(ctx, data, "benchy.gcode")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "benchy_"))
	assert.True(t, strings.HasSuffix(key, ".gcode"))

	files, err := storage.List(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, key, files[0].Key)
	assert.Equal(t, "benchy.gcode", files[0].Filename)
	assert.Equal(t, int64(len(data)), files[0].Size)
}

func TestLocalStorageSameFilenameGetsDistinctKeys(t *testing.T) {
	storage := setupLocalStorage(t)
	ctx := context.Background()

	k1, err := storage.Upload(ctx, []byte("a"), "part.3mf")
	require.NoError(t, err)
	k2, err := storage.Upload(ctx, []byte("b"), "part.3mf")
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)

	files, err := storage.List(ctx)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestLocalStorageDelete(t *testing.T) {
	storage := setupLocalStorage(t)
	ctx := context.Background()

	key, err := storage.Upload(ctx, []byte("data"), "x.gcode")
	require.NoError(t, err)

	require.NoError(t, storage.Delete(ctx, key))
	files, err := storage.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestLocalStorageDeleteRejectsPathTraversal(t *testing.T) {
	storage := setupLocalStorage(t)
	err := storage.Delete(context.Background(), "../etc/passwd")
	assert.Error(t, err)
}

// ==================== 工具函数 ====================

func TestFilenameFromKey(t *testing.T) {
	cases := map[string]string{
		"gcode/benchy_a1b2c3d4.gcode": "benchy.gcode",
		"part_a1b2c3d4.3mf":           "part.3mf",
		"noseg.gcode":                 "noseg.gcode",
	}
	for key, want := range cases {
		assert.Equal(t, want, filenameFromKey(key), key)
	}
}

func TestNewGcodeStorageUnknownProvider(t *testing.T) {
	_, err := NewGcodeStorage(&config.StorageConfig{Provider: "ftp"})
	assert.Error(t, err)
}
