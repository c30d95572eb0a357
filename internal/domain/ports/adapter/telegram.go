// File: internal/domain/ports/adapter/telegram.go
package adapter

import "context"

// TelegramSender is the outbound port to the messaging platform. All sends
// are best-effort: callers log failures and continue.
type TelegramSender interface {
	// SendMessage sends HTML-formatted text to a chat.
	SendMessage(ctx context.Context, chatID int64, html string) error

	// SendLocation sends a GPS point.
	SendLocation(ctx context.Context, chatID int64, lat, lon float64) error

	// SendChatAction signals "typing" while a reply is being generated.
	SendChatAction(ctx context.Context, chatID int64) error

	// DownloadFile resolves a file id via the platform's getFile call and
	// downloads the binary content.
	DownloadFile(ctx context.Context, fileID string) (data []byte, mimeType string, err error)
}
