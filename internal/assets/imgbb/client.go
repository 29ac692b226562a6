package imgbb

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/petermazzocco/interior-admin/models"
)

const DefaultEndpoint = "https://api.imgbb.com/1/upload"

// Client talks to an ImgBB compatible image host. Uploads are a multipart
// POST with the file under "image"; deletes are a GET on the delete URL
// the host returned at upload time.
type Client struct {
	http     *resty.Client
	endpoint string
	key      string
}

type uploadResponse struct {
	Success bool `json:"success"`
	Status  int  `json:"status"`
	Data    struct {
		URL       string `json:"url"`
		DeleteURL string `json:"delete_url"`
	} `json:"data"`
}

func New(endpoint, apiKey string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		endpoint: endpoint,
		key:      apiKey,
	}
}

// Upload returns a complete reference or an error, never half of one.
func (c *Client) Upload(ctx context.Context, u models.Upload) (models.ImageRef, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.key).
		SetFileReader("image", u.Filename, bytes.NewReader(u.Data)).
		SetResult(&uploadResponse{}).
		Post(c.endpoint)
	if err != nil {
		return models.ImageRef{}, models.UploadError(err, "Could not reach the image host.")
	}
	if resp.IsError() {
		return models.ImageRef{}, models.UploadError(
			fmt.Errorf("image host returned status %d", resp.StatusCode()),
			"The image host rejected %s.", u.Filename)
	}
	result, ok := resp.Result().(*uploadResponse)
	if !ok || !result.Success {
		return models.ImageRef{}, models.UploadError(
			fmt.Errorf("image host reported failure: %s", resp.String()),
			"The image host rejected %s.", u.Filename)
	}
	if result.Data.URL == "" || result.Data.DeleteURL == "" {
		return models.ImageRef{}, models.UploadError(
			fmt.Errorf("image host response is missing url or delete_url"),
			"The image host rejected %s.", u.Filename)
	}
	return models.ImageRef{DisplayURL: result.Data.URL, DeletionToken: result.Data.DeleteURL}, nil
}

// Delete only looks at the status code of the delete URL.
func (c *Client) Delete(ctx context.Context, deleteURL string) error {
	resp, err := c.http.R().SetContext(ctx).Get(deleteURL)
	if err != nil {
		return fmt.Errorf("failed to call delete url: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("delete url returned status %d", resp.StatusCode())
	}
	return nil
}
