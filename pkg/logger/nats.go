// Пакет logger предоставляет обёртку для публикации событий аудита в NATS
package logger

import "CatalogService/pkg/metrics"

// Conn определяет минимальный интерфейс для работы с NATS-подключением
// Любая реализация Conn (например *nats.Conn) должна предоставлять метод Publish
// subject — тема (топик), data — байтовый массив сообщения
type Conn interface {
	Publish(subject string, data []byte) error
}

// NATSClient хранит Conn и корневую тему subject; события публикуются в subject.<kind>
type NATSClient struct {
	conn    Conn
	subject string
}

// NewClient создаёт новый NATSClient, связывая Conn и subject
func NewClient(conn Conn, subject string) *NATSClient {
	return &NATSClient{conn: conn, subject: subject}
}

// Subject возвращает тему для вида сущности
func Subject(root, kind string) string {
	if root == "" {
		return kind
	}
	if kind == "" {
		return root
	}
	return root + "." + kind
}

// Wildcard возвращает тему подписки на события всех видов под root
func Wildcard(root string) string {
	return Subject(root, ">")
}

// PublishLog отправляет данные в тему вида сущности kind
// Возвращает ошибку, если публикация не удалась
func (n *NATSClient) PublishLog(kind string, data []byte) error {
	err := n.conn.Publish(Subject(n.subject, kind), data)
	metrics.RecordPublish(kind, err)
	return err
}
