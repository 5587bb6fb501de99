package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	repos "github.com/yungbote/disclosure-backend/internal/data/repos/disclosures"
	"github.com/yungbote/disclosure-backend/internal/data/repos/testutil"
	types "github.com/yungbote/disclosure-backend/internal/domain"
	"github.com/yungbote/disclosure-backend/internal/platform/dbctx"
	"github.com/yungbote/disclosure-backend/internal/platform/gcp"
)

type memBucket struct {
	mu        sync.Mutex
	objects   map[string][]byte
	ctypes    map[string]string
	ensureErr error
	uploadErr error
	deleteErr error
	ensured   int
	deletes   []string
}

func newMemBucket() *memBucket {
	return &memBucket{objects: map[string][]byte{}, ctypes: map[string]string{}}
}

func (b *memBucket) EnsureBucket(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensured++
	return b.ensureErr
}

func (b *memBucket) UploadFile(ctx context.Context, key, contentType string, body io.Reader) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.uploadErr != nil {
		return b.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	b.objects[key] = data
	b.ctypes[key] = contentType
	return nil
}

func (b *memBucket) DownloadFile(ctx context.Context, key string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, gcp.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *memBucket) DeleteFile(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletes = append(b.deletes, key)
	if b.deleteErr != nil {
		return b.deleteErr
	}
	if _, ok := b.objects[key]; !ok {
		return gcp.ErrObjectNotFound
	}
	delete(b.objects, key)
	return nil
}

func (b *memBucket) BucketName() string { return gcp.DefaultBucketName }
func (b *memBucket) Close() error       { return nil }

func (b *memBucket) has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[key]
	return ok
}

// stepClock advances by one second per call.
type stepClock struct {
	mu  sync.Mutex
	cur time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}

type testEnv struct {
	db          *gorm.DB
	bucket      *memBucket
	attachments AttachmentManager
	svc         DisclosureService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvOn(t, testutil.SQLite(t))
}

func newTestEnvOn(t *testing.T, db *gorm.DB) *testEnv {
	t.Helper()
	log := testutil.Logger(t)
	bucket := newMemBucket()
	attachments := NewAttachmentManager(log, bucket)
	svc := NewDisclosureService(
		db, log,
		repos.NewDocketSequencer(db, log),
		repos.NewDisclosureRepo(db, log),
		repos.NewInventorRepo(db, log),
		repos.NewStatusHistoryRepo(db, log),
		attachments,
	)
	clock := &stepClock{cur: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc.(*disclosureService).now = clock.Now
	return &testEnv{db: db, bucket: bucket, attachments: attachments, svc: svc}
}

func strPtr(s string) *string { return &s }

func sampleResult(title string, inventors ...string) *types.ExtractionResult {
	res := &types.ExtractionResult{
		Title:          title,
		Description:    "A description of " + title,
		KeyDifferences: "• faster\n• smaller",
		Inventors:      []types.ExtractedInventor{},
		Model:          "gpt-4o",
		TextChars:      1200,
	}
	for _, name := range inventors {
		res.Inventors = append(res.Inventors, types.ExtractedInventor{Name: name})
	}
	return res
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

var errBoom = errors.New("boom")

type failingInventors struct {
	repos.InventorRepo
}

func (failingInventors) Create(dbc dbctx.Context, inventors []*types.Inventor) ([]*types.Inventor, error) {
	return nil, errBoom
}

type failingHistory struct {
	repos.StatusHistoryRepo
}

func (failingHistory) Append(dbc dbctx.Context, entry *types.StatusHistoryEntry) error {
	return errBoom
}
