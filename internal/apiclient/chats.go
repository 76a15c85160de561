package apiclient

import (
	"context"

	"junkmart/web/internal/models"
)

func (c *Client) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	var resp struct {
		Notifications []models.Notification `json:"notifications"`
	}
	if err := c.get(ctx, "/notifications", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Notifications, nil
}

func (c *Client) UnreadNotificationCount(ctx context.Context) (int, error) {
	var resp struct {
		Count int `json:"count"`
	}
	if err := c.get(ctx, "/notifications/unread-count", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.patch(ctx, "/notifications/"+escape(id)+"/read", nil, nil)
}

func (c *Client) ListChats(ctx context.Context) ([]models.Chat, error) {
	var resp struct {
		Chats []models.Chat `json:"chats"`
	}
	if err := c.get(ctx, "/chats", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Chats, nil
}

func (c *Client) StartChat(ctx context.Context, shopID string) (models.Chat, error) {
	var resp struct {
		Chat models.Chat `json:"chat"`
	}
	body := map[string]string{"shopId": shopID}
	if err := c.post(ctx, "/chats", body, &resp); err != nil {
		return models.Chat{}, err
	}
	return resp.Chat, nil
}

func (c *Client) ListMessages(ctx context.Context, chatID string) ([]models.ChatMessage, error) {
	var resp struct {
		Messages []models.ChatMessage `json:"messages"`
	}
	if err := c.get(ctx, "/chats/"+escape(chatID)+"/messages", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

func (c *Client) SendMessage(ctx context.Context, chatID, content string) (models.ChatMessage, error) {
	var resp struct {
		Message models.ChatMessage `json:"message"`
	}
	body := map[string]string{"content": content}
	if err := c.post(ctx, "/chats/"+escape(chatID)+"/messages", body, &resp); err != nil {
		return models.ChatMessage{}, err
	}
	return resp.Message, nil
}
