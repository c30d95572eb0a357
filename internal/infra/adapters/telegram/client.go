package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cesare-chatbot/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.TelegramSender = (*Client)(nil)

// Client wraps the Bot API for outbound calls. The bot runs in webhook mode;
// there is no polling loop.
type Client struct {
	bot  *tgbotapi.BotAPI
	http *http.Client
}

func NewClient(token string) (*Client, error) {
	if token == "" {
		return nil, errors.New("telegram bot token empty")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &Client{
		bot: bot,
		// File downloads only; platform API calls go through tgbotapi.
		http: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Username is the bot's own name, used to strip command mention suffixes.
func (c *Client) Username() string { return c.bot.Self.UserName }

func (c *Client) SendMessage(ctx context.Context, chatID int64, html string) error {
	msg := tgbotapi.NewMessage(chatID, html)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := c.bot.Send(msg)
	return err
}

func (c *Client) SendLocation(ctx context.Context, chatID int64, lat, lon float64) error {
	_, err := c.bot.Send(tgbotapi.NewLocation(chatID, lat, lon))
	return err
}

func (c *Client) SendChatAction(ctx context.Context, chatID int64) error {
	_, err := c.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
	return err
}

// DownloadFile resolves the file path via getFile, then fetches the binary.
func (c *Client) DownloadFile(ctx context.Context, fileID string) ([]byte, string, error) {
	f, err := c.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, "", fmt.Errorf("get file %s: %w", fileID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.Link(c.bot.Token), nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("download file %s: http %d", fileID, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return data, mimeFromPath(f.FilePath), nil
}

func mimeFromPath(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
