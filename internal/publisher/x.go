package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/dghubble/oauth1"

	"github.com/kayz/muse/internal/logger"
)

const (
	xUploadURL   = "https://upload.twitter.com/1.1/media/upload.json"
	xMetadataURL = "https://upload.twitter.com/1.1/media/metadata/create.json"
	xTweetURL    = "https://api.twitter.com/2/tweets"
)

// XClient posts to X using OAuth 1.0a user context: media uploads through
// the v1.1 endpoint, tweet creation through v2.
type XClient struct {
	http *http.Client
}

// XConfig holds the four OAuth 1.0a credentials.
type XConfig struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// NewXClient creates the X publisher.
func NewXClient(cfg XConfig) (*XClient, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" || cfg.AccessToken == "" || cfg.AccessSecret == "" {
		return nil, fmt.Errorf("X credentials are incomplete")
	}
	oauthCfg := oauth1.NewConfig(cfg.APIKey, cfg.APISecret)
	token := oauth1.NewToken(cfg.AccessToken, cfg.AccessSecret)
	client := oauthCfg.Client(oauth1.NoContext, token)
	client.Timeout = 60 * time.Second
	return &XClient{http: client}, nil
}

// Name returns the publisher name.
func (x *XClient) Name() string { return "x" }

// Publish uploads every image, attaches alt text, and creates the tweet.
func (x *XClient) Publish(ctx context.Context, post Post) error {
	if err := validate(post); err != nil {
		return err
	}

	mediaIDs := make([]string, 0, len(post.Images))
	for i, img := range post.Images {
		id, err := x.uploadMedia(ctx, img)
		if err != nil {
			return fmt.Errorf("media upload %d failed: %w", i+1, err)
		}
		if i < len(post.AltTexts) && post.AltTexts[i] != "" {
			if err := x.setAltText(ctx, id, post.AltTexts[i]); err != nil {
				// Alt text failure should not block the post.
				logger.Warn("alt text for media %s failed: %v", id, err)
			}
		}
		mediaIDs = append(mediaIDs, id)
	}

	return x.createTweet(ctx, post.Text, mediaIDs)
}

type uploadResponse struct {
	MediaIDString string `json:"media_id_string"`
}

func (x *XClient) uploadMedia(ctx context.Context, img []byte) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("media", "artwork.jpg")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(img); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, xUploadURL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := x.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apiError("media upload", resp)
	}

	var up uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&up); err != nil {
		return "", err
	}
	if up.MediaIDString == "" {
		return "", fmt.Errorf("upload response carried no media id")
	}
	return up.MediaIDString, nil
}

func (x *XClient) setAltText(ctx context.Context, mediaID, alt string) error {
	payload := map[string]any{
		"media_id": mediaID,
		"alt_text": map[string]string{"text": alt},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, xMetadataURL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := x.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError("media metadata", resp)
	}
	return nil
}

func (x *XClient) createTweet(ctx context.Context, text string, mediaIDs []string) error {
	payload := map[string]any{
		"text":  text,
		"media": map[string]any{"media_ids": mediaIDs},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, xTweetURL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := x.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 429 and 5xx are left to the next scheduled invocation; no
		// in-run retry.
		return apiError("tweet create", resp)
	}
	logger.Info("posted to X with %d image(s)", len(mediaIDs))
	return nil
}

func apiError(stage string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%s: status %d: %s", stage, resp.StatusCode, bytes.TrimSpace(body))
}
