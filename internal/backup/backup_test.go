package backup_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/2beens/fittrack/internal/backup"
	"github.com/2beens/fittrack/internal/fitness/workouts"
	"github.com/2beens/fittrack/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

var testNow = time.Date(2026, time.May, 7, 18, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSnapshotAndRestore(t *testing.T) {
	ctx := context.Background()
	source := storage.NewMemoryStore()

	repo := workouts.NewRepo(source)
	_, err := repo.Add(ctx, workouts.Workout{Type: "running", Duration: 30, Calories: 300, Date: testNow})
	require.NoError(t, err)
	require.NoError(t, source.Set(ctx, storage.KeyFitnessGoals, []byte(`[]`)))
	require.NoError(t, source.Set(ctx, storage.KeyMonthlyGoals, []byte(`{broken`)))

	snapshot, err := backup.TakeSnapshot(ctx, source, testNow)
	require.NoError(t, err)
	assert.Equal(t, backup.SnapshotVersion, snapshot.Version)
	assert.Equal(t, testNow, snapshot.CreatedAt)
	require.Len(t, snapshot.Entries, 2)
	assert.Contains(t, snapshot.Entries, storage.KeyWorkouts)
	assert.Contains(t, snapshot.Entries, storage.KeyFitnessGoals)

	data, err := snapshot.Marshal()
	require.NoError(t, err)
	decoded, err := backup.Unmarshal(data)
	require.NoError(t, err)

	target := storage.NewMemoryStore()
	require.NoError(t, backup.Restore(ctx, target, decoded))

	list, err := workouts.NewRepo(target).List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "running", list[0].Type)

	_, err = target.Get(ctx, storage.KeyMonthlyGoals)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRestore_UnsupportedVersionAndUnknownKeys(t *testing.T) {
	ctx := context.Background()
	target := storage.NewMemoryStore()

	err := backup.Restore(ctx, target, &backup.Snapshot{Version: 99})
	require.ErrorIs(t, err, backup.ErrUnsupportedVersion)

	err = backup.Restore(ctx, target, &backup.Snapshot{
		Version: backup.SnapshotVersion,
		Entries: map[string]json.RawMessage{
			"somethingElse":     json.RawMessage(`1`),
			storage.KeyWorkouts: json.RawMessage(`[]`),
		},
	})
	require.NoError(t, err)
	_, err = target.Get(ctx, "somethingElse")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	value, err := target.Get(ctx, storage.KeyWorkouts)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(value))
}

func TestNewDriveUploader_CreatesMissingFolder(t *testing.T) {
	ctrl := gomock.NewController(t)
	files := NewMockdriveFiles(ctrl)
	ctx := context.Background()

	files.EXPECT().FindFolders(gomock.Any(), "fittrack-backup").Return(nil, nil)
	files.EXPECT().CreateFolder(gomock.Any(), "fittrack-backup").Return("folder-1", nil)

	uploader, err := backup.NewDriveUploaderWithFiles(ctx, files)
	require.NoError(t, err)
	require.NotNil(t, uploader)
}

func TestNewDriveUploader_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	files := NewMockdriveFiles(ctrl)
	ctx := context.Background()

	files.EXPECT().FindFolders(gomock.Any(), "fittrack-backup").Return(nil, errors.New("quota"))
	_, err := backup.NewDriveUploaderWithFiles(ctx, files)
	require.Error(t, err)

	files.EXPECT().FindFolders(gomock.Any(), "fittrack-backup").Return(nil, nil)
	files.EXPECT().CreateFolder(gomock.Any(), "fittrack-backup").Return("", errors.New("forbidden"))
	_, err = backup.NewDriveUploaderWithFiles(ctx, files)
	require.Error(t, err)
}

func TestDriveUploader_Upload(t *testing.T) {
	ctrl := gomock.NewController(t)
	files := NewMockdriveFiles(ctrl)
	ctx := context.Background()

	files.EXPECT().FindFolders(gomock.Any(), "fittrack-backup").Return([]string{"folder-1", "folder-2"}, nil)
	uploader, err := backup.NewDriveUploaderWithFiles(ctx, files)
	require.NoError(t, err)

	snapshot := &backup.Snapshot{
		Version:   backup.SnapshotVersion,
		CreatedAt: testNow,
		Entries: map[string]json.RawMessage{
			storage.KeyWorkouts: json.RawMessage(`[]`),
		},
	}

	var uploaded []byte
	gomock.InOrder(
		files.EXPECT().ListNames(gomock.Any(), "folder-1").Return([]string{
			"fittrack-snapshot-7-5-2026.json",
			"fittrack-snapshot-7-5-2026_2.json",
		}, nil),
		files.EXPECT().
			Upload(gomock.Any(), "folder-1", "fittrack-snapshot-7-5-2026_3.json", gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _ string, content io.Reader) (string, error) {
				var err error
				uploaded, err = io.ReadAll(content)
				return "file-42", err
			}),
	)

	fileID, err := uploader.Upload(ctx, snapshot)
	require.NoError(t, err)
	assert.Equal(t, "file-42", fileID)

	decoded, err := backup.Unmarshal(uploaded)
	require.NoError(t, err)
	assert.Equal(t, snapshot.Version, decoded.Version)
	assert.True(t, snapshot.CreatedAt.Equal(decoded.CreatedAt))
	assert.JSONEq(t, `[]`, string(decoded.Entries[storage.KeyWorkouts]))
}

func TestDriveUploader_UploadFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	files := NewMockdriveFiles(ctrl)
	ctx := context.Background()

	files.EXPECT().FindFolders(gomock.Any(), "fittrack-backup").Return([]string{"folder-1"}, nil)
	uploader, err := backup.NewDriveUploaderWithFiles(ctx, files)
	require.NoError(t, err)

	files.EXPECT().ListNames(gomock.Any(), "folder-1").Return(nil, nil)
	files.EXPECT().
		Upload(gomock.Any(), "folder-1", "fittrack-snapshot-7-5-2026.json", gomock.Any()).
		Return("", errors.New("rate limited"))

	_, err = uploader.Upload(ctx, &backup.Snapshot{Version: backup.SnapshotVersion, CreatedAt: testNow})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}
