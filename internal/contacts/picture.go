package contacts

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"

	"google.golang.org/api/googleapi"
	people "google.golang.org/api/people/v1"

	"github.com/teemow/quickstart/internal/instrumentation"
)

// ProfilePicture downloads the picture of a contact. It returns nil and no
// error when the contact has no picture of its own or does not exist.
func (c *Client) ProfilePicture(ctx context.Context, url string) ([]byte, error) {
	person, err := c.person(ctx, url, "photos")
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	photo := contactPhoto(person.Photos)
	if photo == nil {
		return nil, nil
	}

	var data []byte
	err = c.observe(ctx, instrumentation.OperationGet, url, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, photo.Url, nil)
		if err != nil {
			return err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil
		}
		if err := googleapi.CheckResponse(resp); err != nil {
			return err
		}
		data, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download contact picture: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

// UploadProfilePicture replaces the picture of a contact with data.
func (c *Client) UploadProfilePicture(ctx context.Context, url string, data []byte) error {
	req := &people.UpdateContactPhotoRequest{
		PhotoBytes: base64.StdEncoding.EncodeToString(data),
	}
	err := c.observe(ctx, instrumentation.OperationUpload, url, func(ctx context.Context) error {
		_, err := c.svc.People.UpdateContactPhoto(url, req).Context(ctx).Do()
		return err
	})
	if err != nil {
		return notFound(err, "upload contact picture", url)
	}
	return nil
}
