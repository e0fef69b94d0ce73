package yandex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const defaultIAMURL = "https://iam.api.cloud.yandex.net/iam/v1/tokens"

// IamClient exchanges an OAuth token for an IAM token and caches it.
type IamClient struct {
	httpc  *http.Client
	url    string
	oauth  string
	mu     sync.Mutex
	token  string
	expiry time.Time
}

func NewIamClient(httpc *http.Client, url, oauth string) *IamClient {
	if url == "" {
		url = defaultIAMURL
	}
	return &IamClient{httpc: httpc, url: url, oauth: oauth}
}

func (c *IamClient) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.expiry.Add(-time.Minute)) {
		return c.token, nil
	}

	b, _ := json.Marshal(map[string]string{"yandexPassportOauthToken": c.oauth})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("iam %d: %s", resp.StatusCode, string(x))
	}

	var out struct {
		IamToken string `json:"iamToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	c.token = out.IamToken
	c.expiry = time.Now().Add(11 * time.Hour)
	return c.token, nil
}

// Invalidate drops the cached token so the next call fetches a new one.
func (c *IamClient) Invalidate() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}
