package services

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eureka-edu/studybuddy/internal/ingest"
	"github.com/eureka-edu/studybuddy/internal/logger"
	"github.com/eureka-edu/studybuddy/internal/models"
	"github.com/eureka-edu/studybuddy/internal/storage"
	"github.com/eureka-edu/studybuddy/internal/utils"
)

type fakeDocRepo struct {
	docs map[string]*models.StudyDocument
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{docs: map[string]*models.StudyDocument{}}
}

func (r *fakeDocRepo) Insert(ctx context.Context, d *models.StudyDocument) error {
	cp := *d
	r.docs[d.ID] = &cp
	return nil
}

func (r *fakeDocRepo) GetByID(ctx context.Context, id string) (*models.StudyDocument, error) {
	d, ok := r.docs[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDocRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.StudyDocument, error) {
	var out []models.StudyDocument
	for _, d := range r.docs {
		if d.OwnerID == ownerID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeDocRepo) ListSelected(ctx context.Context, ownerID string) ([]models.StudyDocument, error) {
	var out []models.StudyDocument
	for _, d := range r.docs {
		if d.OwnerID == ownerID && d.Selected {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeDocRepo) SetSelected(ctx context.Context, id string, selected bool) error {
	d, ok := r.docs[id]
	if !ok {
		return utils.ErrNotFound
	}
	d.Selected = selected
	return nil
}

func (r *fakeDocRepo) Rename(ctx context.Context, id, name string) error {
	d, ok := r.docs[id]
	if !ok {
		return utils.ErrNotFound
	}
	d.Name = name
	return nil
}

func (r *fakeDocRepo) Delete(ctx context.Context, id string) error {
	delete(r.docs, id)
	return nil
}

type fakeUploader struct {
	uploads map[string][]byte
	deleted []string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploads: map[string][]byte{}}
}

func (u *fakeUploader) Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	u.uploads[objectName] = b
	return objectName, nil
}

func (u *fakeUploader) Delete(ctx context.Context, objectName string) error {
	u.deleted = append(u.deleted, objectName)
	delete(u.uploads, objectName)
	return nil
}

type fakeCache struct {
	entries map[string][]byte
	hits    int
	dels    []string
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string][]byte{}} }

func (c *fakeCache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.entries[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		c.dels = append(c.dels, k)
		delete(c.entries, k)
	}
	return nil
}

func newDocService(repo *fakeDocRepo, up *fakeUploader, fc *fakeCache) DocumentService {
	var uploader storage.Uploader
	if up != nil {
		uploader = up
	}
	return NewDocumentService(repo, ingest.NewRegistry(), uploader, fc, logger.New())
}

func TestUploadPlainText(t *testing.T) {
	repo := newFakeDocRepo()
	up := newFakeUploader()
	svc := newDocService(repo, up, newFakeCache())

	doc, err := svc.Upload(context.Background(), "student-1", "romeinen.txt", "text/plain", []byte("De Romeinen bouwden wegen."))
	require.NoError(t, err)

	assert.Equal(t, "De Romeinen bouwden wegen.", doc.Content)
	assert.True(t, doc.Selected, "fresh uploads join the study context")
	assert.False(t, doc.Locked)
	assert.Equal(t, "txt", doc.FileType)
	assert.NotEmpty(t, doc.ObjectPath)
	assert.Contains(t, up.uploads, doc.ObjectPath)
	assert.Len(t, repo.docs, 1)
}

func TestUploadUnsupportedFormat(t *testing.T) {
	svc := newDocService(newFakeDocRepo(), nil, newFakeCache())

	_, err := svc.Upload(context.Background(), "student-1", "foto.png", "image/png", []byte{0x89, 0x50})

	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeUnsupported))
}

func TestUploadEmptyAndOversized(t *testing.T) {
	svc := newDocService(newFakeDocRepo(), nil, newFakeCache())

	_, err := svc.Upload(context.Background(), "student-1", "leeg.txt", "text/plain", nil)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, err = svc.Upload(context.Background(), "student-1", "groot.txt", "text/plain", make([]byte, maxUploadBytes+1))
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestLockedDocumentCannotBeRenamedOrDeleted(t *testing.T) {
	repo := newFakeDocRepo()
	repo.docs["d1"] = &models.StudyDocument{ID: "d1", OwnerID: "student-1", Name: "opdracht.txt", Locked: true}
	svc := newDocService(repo, nil, newFakeCache())

	err := svc.Rename(context.Background(), "student-1", "d1", "anders.txt")
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))

	err = svc.Delete(context.Background(), "student-1", "d1")
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))
	assert.Contains(t, repo.docs, "d1")
}

func TestOwnershipEnforced(t *testing.T) {
	repo := newFakeDocRepo()
	repo.docs["d1"] = &models.StudyDocument{ID: "d1", OwnerID: "student-1", Name: "a.txt"}
	svc := newDocService(repo, nil, newFakeCache())

	err := svc.Delete(context.Background(), "student-2", "d1")
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))

	err = svc.ToggleSelect(context.Background(), "student-2", "d1", false)
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))
}

func TestStudyContextAssemblyAndCache(t *testing.T) {
	repo := newFakeDocRepo()
	repo.docs["d1"] = &models.StudyDocument{ID: "d1", OwnerID: "student-1", Name: "h1.txt", Content: "wegen", Selected: true}
	fc := newFakeCache()
	svc := newDocService(repo, nil, fc)

	text, present, err := svc.StudyContext(context.Background(), "student-1")
	require.NoError(t, err)
	assert.True(t, present)
	assert.Contains(t, text, "--- DOCUMENT: h1.txt ---")
	assert.Contains(t, text, "wegen")

	// Second call is served from cache.
	_, _, err = svc.StudyContext(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Equal(t, 1, fc.hits)
}

func TestToggleSelectInvalidatesContextCache(t *testing.T) {
	repo := newFakeDocRepo()
	repo.docs["d1"] = &models.StudyDocument{ID: "d1", OwnerID: "student-1", Name: "h1.txt", Content: "wegen", Selected: true}
	fc := newFakeCache()
	svc := newDocService(repo, nil, fc)

	_, present, err := svc.StudyContext(context.Background(), "student-1")
	require.NoError(t, err)
	require.True(t, present)

	require.NoError(t, svc.ToggleSelect(context.Background(), "student-1", "d1", false))
	assert.Contains(t, fc.dels, "studyctx:student-1")

	_, present, err = svc.StudyContext(context.Background(), "student-1")
	require.NoError(t, err)
	assert.False(t, present, "deselected document left the study context")
}

func TestAssignCopyCreatesLockedSelectedCopies(t *testing.T) {
	repo := newFakeDocRepo()
	repo.docs["d1"] = &models.StudyDocument{ID: "d1", OwnerID: "teacher-1", Name: "opdracht.txt", Content: "lees dit", Selected: true}
	svc := newDocService(repo, nil, newFakeCache())

	n, err := svc.AssignCopy(context.Background(), "teacher-1", "d1", []string{"student-1", "student-2"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, sid := range []string{"student-1", "student-2"} {
		rows, err := svc.List(context.Background(), sid)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.True(t, rows[0].Locked)
		assert.True(t, rows[0].Selected)
		assert.Equal(t, "teacher-1", rows[0].AssignedBy)
		assert.Equal(t, "lees dit", rows[0].Content)
	}
}
