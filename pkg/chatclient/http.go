package chatclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"linkup-service/internal/models"
)

// HTTPAPI talks to the REST surface with a bearer token.
type HTTPAPI struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPAPI(baseURL, token string) *HTTPAPI {
	return &HTTPAPI{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (a *HTTPAPI) FetchChat(ctx context.Context, chatID string) (*models.ChatResponse, error) {
	var chat models.ChatResponse
	if err := a.get(ctx, "/api/chats/"+url.PathEscape(chatID), &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (a *HTTPAPI) FetchHistory(ctx context.Context, chatID string, before *time.Time, limit int64) ([]models.Message, error) {
	path := "/api/chats/" + url.PathEscape(chatID) + "/messages?limit=" + strconv.FormatInt(limit, 10)
	if before != nil {
		path += "&before=" + url.QueryEscape(before.Format(time.RFC3339Nano))
	}
	var messages []models.Message
	if err := a.get(ctx, path, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (a *HTTPAPI) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+a.token)

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
