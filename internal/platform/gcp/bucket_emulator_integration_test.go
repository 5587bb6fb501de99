package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/disclosure-backend/internal/platform/logger"
)

func TestBucketServiceEmulatorLifecycle(t *testing.T) {
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("RUN_GCS_EMULATOR_INTEGRATION")), "true") {
		t.Skip("set RUN_GCS_EMULATOR_INTEGRATION=true to run emulator integration tests")
	}
	emulatorHost := strings.TrimRight(strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST")), "/")
	if emulatorHost == "" {
		emulatorHost = "http://127.0.0.1:4443"
	}
	if !isEmulatorReachable(emulatorHost) {
		t.Skipf("storage emulator not reachable at %s", emulatorHost)
	}

	bucket, err := NewBucketServiceWithConfig(logger.Nop(), ObjectStorageConfig{
		Mode:         ObjectStorageModeGCSEmulator,
		EmulatorHost: emulatorHost,
		Bucket:       fmt.Sprintf("disclosures-it-%d", time.Now().UnixNano()),
		ProjectID:    "test",
	})
	if err != nil {
		t.Fatalf("NewBucketServiceWithConfig: %v", err)
	}
	defer bucket.Close()

	ctx := context.Background()

	// Concurrent first use must not fail on the create race.
	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- bucket.EnsureBucket(ctx)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("EnsureBucket: %v", err)
		}
	}

	key := "disclosures/it/sample.pdf"
	payload := []byte("%PDF-1.4 integration")
	if err := bucket.UploadFile(ctx, key, "application/pdf", bytes.NewReader(payload)); err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	rc, err := bucket.DownloadFile(ctx, key)
	if err != nil {
		t.Fatalf("DownloadFile: %v", err)
	}
	got, _ := io.ReadAll(rc)
	_ = rc.Close()
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch: want=%q got=%q", payload, got)
	}
	if err := bucket.DeleteFile(ctx, key); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if _, err := bucket.DownloadFile(ctx, key); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("DownloadFile after delete: want ErrObjectNotFound got=%v", err)
	}
}

func isEmulatorReachable(host string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(host + "/storage/v1/b")
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}
