package backup

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dukerupert/chime/internal/database"
	"github.com/dukerupert/chime/internal/model"
	"github.com/dukerupert/chime/internal/store"
)

// mockS3Client implements s3Client for testing.
type mockS3Client struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	getErr  error
	delErr  error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, &s3NotFound{}
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(string(data))),
	}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if m.delErr != nil {
		return nil, m.delErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type s3NotFound struct{}

func (e *s3NotFound) Error() string { return "NoSuchKey" }

func enabledConfig() Config {
	return Config{
		S3:         S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
		Passphrase: "correct horse battery staple",
	}
}

func TestManagerStateLifecycle(t *testing.T) {
	// Without S3 config -> disabled
	m := NewManager(Config{}, nil, nil, nil, nil, nil)
	if m.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q", m.Status().State, StateDisabled)
	}

	// S3 config without a passphrase stays disabled
	m2 := NewManager(Config{
		S3: S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
	}, nil, nil, nil, nil, nil)
	if m2.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q", m2.Status().State, StateDisabled)
	}

	// Full config -> idle
	m3 := NewManager(enabledConfig(), nil, nil, nil, nil, nil)
	if m3.Status().State != StateIdle {
		t.Errorf("state = %q, want %q", m3.Status().State, StateIdle)
	}
}

func TestManagerStatusCallback(t *testing.T) {
	var received []Status
	var mu sync.Mutex
	cb := func(s Status) {
		mu.Lock()
		received = append(received, s)
		mu.Unlock()
	}

	m := NewManager(enabledConfig(), nil, nil, nil, cb, nil)

	m.setStatus(Status{State: StateRunning, InProgress: true})
	m.setStatus(Status{State: StateIdle})

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 {
		t.Fatalf("received %d callbacks, want 2", len(received))
	}
	if received[0].State != StateRunning {
		t.Errorf("first callback state = %q, want %q", received[0].State, StateRunning)
	}
	if received[1].State != StateIdle {
		t.Errorf("second callback state = %q, want %q", received[1].State, StateIdle)
	}
}

func TestManagerStopSafety(t *testing.T) {
	m := NewManager(enabledConfig(), nil, nil, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()
	m.Stop()

	// Double stop should not panic
	m.Stop()
}

func TestManagerDisabledNoStart(t *testing.T) {
	m := NewManager(Config{}, nil, nil, nil, nil, nil)

	ctx := context.Background()
	m.Start(ctx) // should be a no-op for disabled state

	// Stop should not block
	m.Stop()
}

func TestRunNowUploadsEncryptedBackup(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "chime.db")

	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	backupStore := store.NewBackupStore(db)
	settingsStore := store.NewSettingsStore(db)

	cfg := enabledConfig()
	cfg.DBPath = dbPath

	mock := newMockS3()
	m := NewManager(cfg, db, backupStore, settingsStore, nil, nil)
	m.client = mock

	id, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}

	mock.mu.Lock()
	objects := len(mock.objects)
	mock.mu.Unlock()
	if objects != 1 {
		t.Fatalf("uploaded %d objects, want 1", objects)
	}

	record, err := backupStore.GetByID(id)
	if err != nil {
		t.Fatalf("get backup record: %v", err)
	}
	if record == nil || record.Status != model.BackupStatusCompleted {
		t.Fatalf("backup record = %+v, want completed", record)
	}
	if record.SizeBytes == 0 {
		t.Error("expected nonzero backup size")
	}

	// First run persists a key-derivation salt for later backups.
	salt, err := settingsStore.Get("backup_passphrase_salt")
	if err != nil || salt == "" {
		t.Errorf("salt not persisted: %q, %v", salt, err)
	}

	if m.Status().State != StateIdle {
		t.Errorf("state after backup = %q, want %q", m.Status().State, StateIdle)
	}
}
