// Файл: pkg/lineapi/service.go
package lineapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ServiceInterface — клиент LINE Messaging API.
// Единственный вызов, который нужен конвейеру — получение профиля
// отправителя по userId для display name.
type ServiceInterface interface {
	GetProfile(ctx context.Context, userID string, accessToken string) (*Profile, error)
}

type Profile struct {
	UserID        string `json:"userId"`
	DisplayName   string `json:"displayName"`
	PictureURL    string `json:"pictureUrl,omitempty"`
	StatusMessage string `json:"statusMessage,omitempty"`
}

type Service struct {
	apiBase    string
	httpClient *http.Client
}

func NewService(apiBase string, timeout time.Duration) ServiceInterface {
	return &Service{
		apiBase:    apiBase,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *Service) GetProfile(ctx context.Context, userID string, accessToken string) (*Profile, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("access token канала не установлен")
	}

	apiURL := fmt.Sprintf("%s/%s", s.apiBase, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса к LINE API: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("LINE API ответил кодом %d: %s", resp.StatusCode, string(body))
	}

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("ошибка декодирования ответа LINE API: %w", err)
	}

	return &profile, nil
}
