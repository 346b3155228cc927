package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"sync"

	"github.com/kendall-kelly/mill-ops-console/utils"
)

// mockStore keeps uploaded avatars in memory
type mockStore struct {
	files map[string][]byte
	mu    sync.RWMutex
}

func (m *mockStore) put(fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	key := fmt.Sprintf("avatars/mock_%s", fileHeader.Filename)

	m.mu.Lock()
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[key] = content
	m.mu.Unlock()

	return key, nil
}

func (m *mockStore) url(key string) (string, error) {
	if key == "" {
		return "", nil
	}
	if !m.Exists(key) {
		return "", fmt.Errorf("file not found in mock storage: %s", key)
	}
	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", key), nil
}

func (m *mockStore) remove(key string) {
	m.mu.Lock()
	delete(m.files, key)
	m.mu.Unlock()
}

// Exists checks if a file exists in mock storage
func (m *mockStore) Exists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[key]
	return ok
}

// Files returns a copy of everything stored (for testing assertions)
func (m *mockStore) Files() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make(map[string][]byte, len(m.files))
	for k, v := range m.files {
		files[k] = v
	}
	return files
}

// MockS3Service is an in-memory S3Interface for testing
type MockS3Service struct {
	mockStore
}

// NewMockS3Service creates a new mock S3 service
func NewMockS3Service() *MockS3Service {
	return &MockS3Service{}
}

// UploadFile stores the file in memory
func (m *MockS3Service) UploadFile(fileHeader *multipart.FileHeader) (string, error) {
	return m.put(fileHeader)
}

// GetPresignedURL returns a fake presigned URL for a stored key
func (m *MockS3Service) GetPresignedURL(s3Key string) (string, error) {
	return m.url(s3Key)
}

// DeleteFile removes the key from memory
func (m *MockS3Service) DeleteFile(s3Key string) error {
	m.remove(s3Key)
	return nil
}

// MockImageService is an in-memory ImageService for testing
type MockImageService struct {
	mockStore
}

// NewMockImageService creates a new mock image service
func NewMockImageService() *MockImageService {
	return &MockImageService{}
}

// SetAsMockForTesting sets this mock as the global image service instance for testing
func (m *MockImageService) SetAsMockForTesting() {
	SetImageService(m)
}

// UploadImage validates the image and stores it in memory
func (m *MockImageService) UploadImage(fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}
	return m.put(fileHeader)
}

// GetImageURL returns a fake URL for a stored key
func (m *MockImageService) GetImageURL(imageKey string) (string, error) {
	return m.url(imageKey)
}

// DeleteImage removes the key from memory
func (m *MockImageService) DeleteImage(imageKey string) error {
	m.remove(imageKey)
	return nil
}
