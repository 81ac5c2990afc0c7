package wix

import (
	"context"
	"sync"
)

// MockPlatform is a test double for Platform. Unset funcs fall back to
// fixed answers; every call is recorded.
type MockPlatform struct {
	ResolveInstanceFunc func(ctx context.Context, token string) (string, error)
	Instance            *MockInstance
}

var _ Platform = (*MockPlatform)(nil)

func (m *MockPlatform) ResolveInstance(ctx context.Context, token string) (string, error) {
	if m.ResolveInstanceFunc != nil {
		return m.ResolveInstanceFunc(ctx, token)
	}
	return "test-instance", nil
}

func (m *MockPlatform) ForInstance(instanceID string) InstanceAPI {
	if m.Instance == nil {
		m.Instance = &MockInstance{}
	}
	m.Instance.mu.Lock()
	m.Instance.InstanceIDs = append(m.Instance.InstanceIDs, instanceID)
	m.Instance.mu.Unlock()
	return m.Instance
}

// MockInstance is a test double for InstanceAPI
type MockInstance struct {
	GetMemberFunc         func(ctx context.Context, memberID string) (*Member, error)
	ListMembersFunc       func(ctx context.Context, limit, offset int) ([]Member, error)
	UpdateMemberPhotoFunc func(ctx context.Context, memberID string, photo Photo) (*Member, error)
	BlockMemberFunc       func(ctx context.Context, memberID string) error
	ImportImageFunc       func(ctx context.Context, url string) (*ImportedFile, error)
	SendMessageFunc       func(ctx context.Context, conversationID, text string) error
	GetAppInstanceFunc    func(ctx context.Context) (*AppInstance, error)

	mu           sync.Mutex
	InstanceIDs  []string
	PhotoUpdates map[string]Photo
	Blocked      []string
	Imported     []string
	SentMessages []SentMessage
}

// SentMessage records one SendMessage call
type SentMessage struct {
	ConversationID string
	Text           string
}

var _ InstanceAPI = (*MockInstance)(nil)

func (m *MockInstance) GetMember(ctx context.Context, memberID string) (*Member, error) {
	if m.GetMemberFunc != nil {
		return m.GetMemberFunc(ctx, memberID)
	}
	return &Member{ID: memberID}, nil
}

func (m *MockInstance) ListMembers(ctx context.Context, limit, offset int) ([]Member, error) {
	if m.ListMembersFunc != nil {
		return m.ListMembersFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *MockInstance) ListAllMembers(ctx context.Context) ([]Member, error) {
	return CollectMembers(ctx, m, MembersPageSize)
}

func (m *MockInstance) UpdateMemberPhoto(ctx context.Context, memberID string, photo Photo) (*Member, error) {
	m.mu.Lock()
	if m.PhotoUpdates == nil {
		m.PhotoUpdates = make(map[string]Photo)
	}
	m.PhotoUpdates[memberID] = photo
	m.mu.Unlock()

	if m.UpdateMemberPhotoFunc != nil {
		return m.UpdateMemberPhotoFunc(ctx, memberID, photo)
	}
	p := photo
	return &Member{ID: memberID, Profile: Profile{Photo: &p}}, nil
}

func (m *MockInstance) BlockMember(ctx context.Context, memberID string) error {
	m.mu.Lock()
	m.Blocked = append(m.Blocked, memberID)
	m.mu.Unlock()

	if m.BlockMemberFunc != nil {
		return m.BlockMemberFunc(ctx, memberID)
	}
	return nil
}

func (m *MockInstance) ImportImage(ctx context.Context, url string) (*ImportedFile, error) {
	m.mu.Lock()
	m.Imported = append(m.Imported, url)
	m.mu.Unlock()

	if m.ImportImageFunc != nil {
		return m.ImportImageFunc(ctx, url)
	}
	return &ImportedFile{ID: "file-1", URL: "https://static.wixstatic.com/media/file-1.jpg"}, nil
}

func (m *MockInstance) SendMessage(ctx context.Context, conversationID, text string) error {
	m.mu.Lock()
	m.SentMessages = append(m.SentMessages, SentMessage{ConversationID: conversationID, Text: text})
	m.mu.Unlock()

	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, conversationID, text)
	}
	return nil
}

func (m *MockInstance) GetAppInstance(ctx context.Context) (*AppInstance, error) {
	if m.GetAppInstanceFunc != nil {
		return m.GetAppInstanceFunc(ctx)
	}
	return &AppInstance{InstanceID: "test-instance", OwnerEmail: "owner@example.com"}, nil
}

// Photos returns a copy of recorded photo updates
func (m *MockInstance) Photos() map[string]Photo {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]Photo, len(m.PhotoUpdates))
	for k, v := range m.PhotoUpdates {
		out[k] = v
	}
	return out
}
