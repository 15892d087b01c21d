package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	rootBackupsFolderName = "fittrack-backup"
	folderMimeType        = "application/vnd.google-apps.folder"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=backup_test

type driveFiles interface {
	FindFolders(ctx context.Context, name string) ([]string, error)
	CreateFolder(ctx context.Context, name string) (string, error)
	ListNames(ctx context.Context, parentID string) ([]string, error)
	Upload(ctx context.Context, parentID, name string, content io.Reader) (string, error)
}

// DriveUploader stores snapshots in the fittrack-backup folder of a Google Drive.
type DriveUploader struct {
	files    driveFiles
	folderID string
}

func NewDriveUploader(ctx context.Context, credentialsJSON []byte) (*DriveUploader, error) {
	// https://github.com/googleapis/google-api-go-client/blob/master/drive/v3/drive-gen.go
	driveService, err := drive.NewService(ctx, option.WithCredentialsJSON(credentialsJSON))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve drive client: %w", err)
	}
	return NewDriveUploaderWithFiles(ctx, &driveFilesService{service: driveService})
}

// NewDriveUploaderWithFiles finds the backups folder, creating it when missing.
func NewDriveUploaderWithFiles(ctx context.Context, files driveFiles) (*DriveUploader, error) {
	folders, err := files.FindFolders(ctx, rootBackupsFolderName)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve files: %w", err)
	}

	folderID := ""
	switch len(folders) {
	case 0:
		log.Println("root backups folder not found, creating ...")
		folderID, err = files.CreateFolder(ctx, rootBackupsFolderName)
		if err != nil {
			return nil, fmt.Errorf("failed to create root backups folder: %w", err)
		}
		log.Printf("new root backups folder created: %s", folderID)
	case 1:
		folderID = folders[0]
		log.Printf("found backups folder ID: %s", folderID)
	default:
		folderID = folders[0]
		log.Warnf("attention: found %d root backups folders, will take the first one: %s", len(folders), folderID)
	}

	return &DriveUploader{
		files:    files,
		folderID: folderID,
	}, nil
}

// Upload stores the snapshot under a name derived from its creation day. Names already
// taken in the folder get a counter suffix.
func (u *DriveUploader) Upload(ctx context.Context, snapshot *Snapshot) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "backup.driveUpload")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	existing, err := u.files.ListNames(ctx, u.folderID)
	if err != nil {
		return "", fmt.Errorf("list backup files: %w", err)
	}

	baseName := snapshot.baseFileName()
	fileName := baseName + ".json"
	for counter := 2; slices.Contains(existing, fileName); counter++ {
		fileName = fmt.Sprintf("%s_%d.json", baseName, counter)
	}

	content, err := snapshot.Marshal()
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	fileID, err := u.files.Upload(ctx, u.folderID, fileName, bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("upload snapshot %s: %w", fileName, err)
	}

	log.Printf("snapshot with %d entries uploaded: %s (%s)", len(snapshot.Entries), fileName, fileID)
	return fileID, nil
}

type driveFilesService struct {
	service *drive.Service
}

func (s *driveFilesService) FindFolders(ctx context.Context, name string) ([]string, error) {
	query := fmt.Sprintf("mimeType = '%s' and trashed = false and name = '%s'", folderMimeType, name)
	res, err := s.service.
		Files.List().
		Q(query).
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(res.Files))
	for _, f := range res.Files {
		ids = append(ids, f.Id)
	}
	return ids, nil
}

func (s *driveFilesService) CreateFolder(ctx context.Context, name string) (string, error) {
	folderMeta := &drive.File{
		Name:     name,
		MimeType: folderMimeType,
	}

	res, err := s.service.
		Files.Create(folderMeta).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	return res.Id, nil
}

func (s *driveFilesService) ListNames(ctx context.Context, parentID string) ([]string, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType != '%s' and trashed = false", parentID, folderMimeType)
	res, err := s.service.
		Files.List().
		Q(query).
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(res.Files))
	for _, f := range res.Files {
		names = append(names, f.Name)
	}
	return names, nil
}

func (s *driveFilesService) Upload(ctx context.Context, parentID, name string, content io.Reader) (string, error) {
	fileMeta := &drive.File{
		Name: name,
		// https://developers.google.com/drive/api/v3/mime-types
		MimeType: "application/json",
		Parents:  []string{parentID},
	}

	res, err := s.service.
		Files.Create(fileMeta).
		Fields("id, parents").
		Media(content).
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	return res.Id, nil
}
