package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/catalog"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore 按文件名返回预设结果
type fakeStore struct {
	mu     sync.Mutex
	calls  []string
	failOn map[string]error
	urlFor func(filename string) string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		failOn: make(map[string]error),
		urlFor: func(filename string) string { return "https://cdn.example.com/" + filename },
	}
}

func (s *fakeStore) UploadFile(ctx context.Context, category, filename string, content io.Reader) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, filename)
	s.mu.Unlock()

	if err, ok := s.failOn[filename]; ok {
		return "", err
	}
	return s.urlFor(filename), nil
}

func (s *fakeStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// TestValidate_TypeAllowList 类型白名单校验
func TestValidate_TypeAllowList(t *testing.T) {
	u := NewUploader(newFakeStore(), discardLogger())

	if err := u.Validate(File{Name: "proof.png", Data: []byte("x")}); err != nil {
		t.Errorf("Expected png allowed, got %v", err)
	}
	if err := u.Validate(File{Name: "Proof.JPG", Data: []byte("x")}); err != nil {
		t.Errorf("Expected case-insensitive extension, got %v", err)
	}
	err := u.Validate(File{Name: "malware.exe", Data: []byte("x")})
	if !errors.Is(err, ErrFileTypeNotAllowed) {
		t.Errorf("Expected ErrFileTypeNotAllowed, got %v", err)
	}
}

// TestValidate_SizeCeiling 大小上限校验
func TestValidate_SizeCeiling(t *testing.T) {
	u := NewUploader(newFakeStore(), discardLogger())

	big := File{Name: "big.png", Data: bytes.Repeat([]byte("a"), MaxFileSize+1)}
	if err := u.Validate(big); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("Expected ErrFileTooLarge, got %v", err)
	}

	exact := File{Name: "ok.png", Data: bytes.Repeat([]byte("a"), MaxFileSize)}
	if err := u.Validate(exact); err != nil {
		t.Errorf("Expected file at ceiling to pass, got %v", err)
	}
}

// TestUpload_ValidationFailsFast 本地校验失败不触发网络调用
func TestUpload_ValidationFailsFast(t *testing.T) {
	store := newFakeStore()
	u := NewUploader(store, discardLogger())

	_, err := u.Upload(context.Background(), catalog.CategoryCommunication, File{Name: "doc.txt", Data: []byte("x")})
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if store.callCount() != 0 {
		t.Errorf("Expected no network calls, got %d", store.callCount())
	}
}

// TestUploadMany_OrderPreserved URL 顺序与输入一致
func TestUploadMany_OrderPreserved(t *testing.T) {
	store := newFakeStore()
	u := NewUploader(store, discardLogger())

	files := []File{
		{Name: "f1.png", Data: []byte("1")},
		{Name: "f2.png", Data: []byte("2")},
		{Name: "f3.png", Data: []byte("3")},
	}

	urls, err := u.UploadMany(context.Background(), catalog.CategoryOriginal, files)
	if err != nil {
		t.Fatalf("UploadMany failed: %v", err)
	}
	for i, f := range files {
		want := "https://cdn.example.com/" + f.Name
		if urls[i] != want {
			t.Errorf("Expected urls[%d]=%s, got %s", i, want, urls[i])
		}
	}
}

// TestUploadMany_AllOrNothing 任一文件失败则整批失败
func TestUploadMany_AllOrNothing(t *testing.T) {
	store := newFakeStore()
	store.failOn["f2.png"] = fmt.Errorf("storage rejected file")
	u := NewUploader(store, discardLogger())

	files := []File{
		{Name: "f1.png", Data: []byte("1")},
		{Name: "f2.png", Data: []byte("2")},
		{Name: "f3.png", Data: []byte("3")},
	}

	urls, err := u.UploadMany(context.Background(), catalog.CategoryOriginal, files)
	if err == nil {
		t.Fatal("Expected batch failure when one file fails")
	}
	if urls != nil {
		t.Errorf("Expected no partial URL list, got %v", urls)
	}
	if !strings.Contains(err.Error(), "f2.png") {
		t.Errorf("Expected failing filename in error, got %v", err)
	}
}

// TestUploadMany_ValidatesBeforeAnyUpload 整批校验先于任何网络调用
func TestUploadMany_ValidatesBeforeAnyUpload(t *testing.T) {
	store := newFakeStore()
	u := NewUploader(store, discardLogger())

	files := []File{
		{Name: "f1.png", Data: []byte("1")},
		{Name: "bad.txt", Data: []byte("2")},
	}

	if _, err := u.UploadMany(context.Background(), catalog.CategoryOriginal, files); err == nil {
		t.Fatal("Expected validation error")
	}
	if store.callCount() != 0 {
		t.Errorf("Expected no uploads before validation, got %d", store.callCount())
	}
}

// TestUploadMany_Empty 空文件集
func TestUploadMany_Empty(t *testing.T) {
	u := NewUploader(newFakeStore(), discardLogger())
	if _, err := u.UploadMany(context.Background(), catalog.CategoryCommunity, nil); !errors.Is(err, ErrNoFiles) {
		t.Errorf("Expected ErrNoFiles, got %v", err)
	}
}
