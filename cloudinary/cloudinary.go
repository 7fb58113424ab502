package cloudinary

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/emberdating/ember/config"
)

// faceCropTransformation resizes uploads to 500x500, fill-cropped on the
// detected face region.
const faceCropTransformation = "c_fill,g_face,h_500,w_500"

// Client talks to the Cloudinary upload API.
type Client struct {
	cfg        *config.CloudinaryConfig
	httpClient *http.Client
	baseURL    *url.URL
}

// UploadResult is the hosted image reference returned by Cloudinary.
type UploadResult struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
}

// New creates a new Cloudinary client from the given configuration.
func New(cfg *config.CloudinaryConfig) (*Client, error) {
	baseURL, err := url.Parse(cfg.UploadURL)
	if err != nil {
		return nil, fmt.Errorf("invalid cloudinary URL: %w", err)
	}

	return &Client{
		cfg:        cfg,
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}, nil
}

// UploadImage uploads an image with the fixed profile-photo transformation and
// returns the hosted reference. A single attempt is made; any failure is
// returned to the caller.
func (c *Client) UploadImage(ctx context.Context, filename string, file io.Reader) (*UploadResult, error) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := map[string]string{
		"api_key":        c.cfg.APIKey,
		"timestamp":      timestamp,
		"transformation": faceCropTransformation,
		"signature":      c.sign(timestamp),
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to copy image data: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	uploadURL := fmt.Sprintf("%s/v1_1/%s/image/upload", c.baseURL.String(), c.cfg.CloudName)

	req, err := http.NewRequestWithContext(ctx, "POST", uploadURL, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute upload request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upload failed with status %d", resp.StatusCode)
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}

	return &result, nil
}

// sign computes the request signature over the signed parameters in
// alphabetical order, as required by the Cloudinary API.
func (c *Client) sign(timestamp string) string {
	payload := fmt.Sprintf("timestamp=%s&transformation=%s%s", timestamp, faceCropTransformation, c.cfg.APISecret)
	sum := sha1.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}
