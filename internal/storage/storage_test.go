package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactKey(t *testing.T) {
	assert.Equal(t, "mindspore-csv-out/resnet50/resnet50-out.csv", ArtifactKey("resnet50", ""))
	assert.Equal(t, "mindspore-csv-out/resnet50/resnet50-out.csv.gz", ArtifactKey("resnet50", ".gz"))
	assert.Equal(t, "mindspore-csv-out/resnet50/resnet50-out.csv.zst", ArtifactKey("resnet50", ".zst"))
}

type fakeStorage struct {
	Storage
	failures int
	calls    int
}

func (f *fakeStorage) UploadFile(ctx context.Context, key, localPath string) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("transient upload failure")
	}
	return nil
}

func TestUploadFileWithRetry(t *testing.T) {
	t.Run("SucceedsAfterTransientFailures", func(t *testing.T) {
		fs := &fakeStorage{failures: 2}
		err := UploadFileWithRetry(context.Background(), fs, "k", "local.csv")
		require.NoError(t, err)
		assert.Equal(t, 3, fs.calls)
	})

	t.Run("GivesUpAfterMaxTries", func(t *testing.T) {
		fs := &fakeStorage{failures: 10}
		err := UploadFileWithRetry(context.Background(), fs, "k", "local.csv")
		assert.Error(t, err)
	})
}
