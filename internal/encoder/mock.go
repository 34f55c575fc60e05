package encoder

import (
	"context"
	"os"
	"sync"

	"teiten/internal/archive"
)

// MockEncoder はテスト用のEncoder実装
// ffmpegを起動せず、呼び出し内容を記録する
type MockEncoder struct {
	mu sync.Mutex

	// Err が設定されている場合、Encodeは常にこのエラーを返す
	Err error

	// 呼び出し記録
	Calls []MockCall
}

// MockCall はEncodeの1回の呼び出し内容
type MockCall struct {
	Frames  []archive.Frame
	OutPath string
}

// NewMockEncoder は新しいMockEncoderを作成する
func NewMockEncoder() *MockEncoder {
	return &MockEncoder{}
}

// Encode は呼び出しを記録し、成功時はダミーの成果物を書き込む
func (m *MockEncoder) Encode(_ context.Context, frames []archive.Frame, outPath string) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Frames: frames, OutPath: outPath})
	m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}

	return os.WriteFile(outPath, []byte("mock-mp4"), 0644)
}

// CallCount はEncodeの呼び出し回数を返す
func (m *MockEncoder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
