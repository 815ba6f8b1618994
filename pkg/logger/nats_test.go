// Пакет logger содержит unit-тесты для проверки работы NATSClient и метода PublishLog
package logger

import (
	"bytes"
	"errors"
	"testing"
)

// mockConn реализует интерфейс Conn и позволяет перехватывать вызовы Publish
// Мы сохраняем переданный subject и данные для проверки в тестах
type mockConn struct {
	publishedSubject string // тема, переданная в Publish
	publishedData    []byte // данные, переданные в Publish
	returnErr        error  // ошибка, которую вернет Publish
}

// Publish сохраняет параметры вызова в полях mockConn и возвращает заранее заданную ошибку
func (m *mockConn) Publish(subject string, data []byte) error {
	m.publishedSubject = subject
	m.publishedData = data
	return m.returnErr
}

// TestPublishLog_Success проверяет успешную публикацию в тему вида сущности
func TestPublishLog_Success(t *testing.T) {
	data := []byte(`{"kind":"item"}`)
	mock := &mockConn{}
	client := NewClient(mock, "catalog.events")

	err := client.PublishLog("item", data)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if mock.publishedSubject != "catalog.events.item" {
		t.Errorf("expected subject catalog.events.item, got %s", mock.publishedSubject)
	}
	if !bytes.Equal(mock.publishedData, data) {
		t.Errorf("expected data %s, got %s", data, mock.publishedData)
	}
}

// TestPublishLog_Error проверяет прокидку ошибки из Conn.Publish
func TestPublishLog_Error(t *testing.T) {
	expErr := errors.New("publish failed")
	mock := &mockConn{returnErr: expErr}
	client := NewClient(mock, "catalog.events")

	err := client.PublishLog("news", []byte("payload"))
	if !errors.Is(err, expErr) {
		t.Errorf("expected error %v, got %v", expErr, err)
	}
}

// TestPublishLog_EmptySubject проверяет, что без корневой темы используется вид сущности
func TestPublishLog_EmptySubject(t *testing.T) {
	mock := &mockConn{}
	client := NewClient(mock, "")

	if err := client.PublishLog("category", nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if mock.publishedSubject != "category" {
		t.Errorf("expected subject category, got %s", mock.publishedSubject)
	}
	if mock.publishedData != nil {
		t.Errorf("expected nil data, got %v", mock.publishedData)
	}
}

func TestSubjects(t *testing.T) {
	cases := []struct{ root, kind, want string }{
		{"catalog", "item", "catalog.item"},
		{"catalog", "", "catalog"},
		{"", "news", "news"},
	}
	for _, c := range cases {
		if got := Subject(c.root, c.kind); got != c.want {
			t.Errorf("Subject(%q, %q) = %q, want %q", c.root, c.kind, got, c.want)
		}
	}
	if got := Wildcard("catalog.events"); got != "catalog.events.>" {
		t.Errorf("unexpected wildcard %s", got)
	}
}
