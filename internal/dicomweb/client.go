// Package dicomweb pulls series metadata and raw instance byte streams
// from the PACS HTTP endpoints. It is transport only: validation and
// decoding live with their consumers.
package dicomweb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/prateek-tiwarii/synpacs/internal/series"
)

// ErrUnauthorized marks 401/403 responses; FetchError wraps it so both
// errors.Is(err, ErrUnauthorized) and errors.As(&FetchError{}) work.
var ErrUnauthorized = errors.New("unauthorized")

// FetchError reports a non-2xx response.
type FetchError struct {
	Status int
	URL    string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error {
	if e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden {
		return ErrUnauthorized
	}
	return nil
}

// HeaderProvider attaches credentials to an outgoing request. The
// client treats it as opaque; the host application decides what a
// bearer token looks like.
type HeaderProvider func(h http.Header)

// Client talks to the metadata and instance endpoints. BaseURL comes
// from the API_BASE_URL runtime parameter.
type Client struct {
	BaseURL string
	Headers HeaderProvider

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// instanceRecord is the wire shape of one instance metadata entry.
type instanceRecord struct {
	SOPInstanceUID            string     `json:"sopInstanceUid"`
	Rows                      int        `json:"rows"`
	Columns                   int        `json:"columns"`
	PixelSpacing              [2]float64 `json:"pixelSpacing"`
	SliceThickness            float64    `json:"sliceThickness"`
	ImagePositionPatient      [3]float64 `json:"imagePositionPatient"`
	ImageOrientationPatient   [6]float64 `json:"imageOrientationPatient"`
	WindowCenter              float64    `json:"windowCenter"`
	WindowWidth               float64    `json:"windowWidth"`
	RescaleSlope              float64    `json:"rescaleSlope"`
	RescaleIntercept          float64    `json:"rescaleIntercept"`
	PhotometricInterpretation string     `json:"photometricInterpretation"`
	Modality                  string     `json:"modality"`
}

type seriesResponse struct {
	Count     int              `json:"count"`
	Instances []instanceRecord `json:"instances"`
}

// FetchSeries pulls the metadata records of one series.
func (c *Client) FetchSeries(ctx context.Context, seriesID string) ([]series.Instance, error) {
	url := fmt.Sprintf("%s/series/%s/instances", strings.TrimRight(c.BaseURL, "/"), seriesID)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var resp seriesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode series metadata: %w", err)
	}

	instances := make([]series.Instance, len(resp.Instances))
	for i, r := range resp.Instances {
		instances[i] = r.toInstance(c.BaseURL)
	}
	return instances, nil
}

// FetchInstanceBytes pulls the raw DICOM byte stream of one instance.
func (c *Client) FetchInstanceBytes(ctx context.Context, sopInstanceUID string) ([]byte, error) {
	url := fmt.Sprintf("%s/instances/%s/dicom", strings.TrimRight(c.BaseURL, "/"), sopInstanceUID)
	return c.get(ctx, url)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.Headers != nil {
		c.Headers(req.Header)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Status: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", url, err)
	}
	return body, nil
}

func (r instanceRecord) toInstance(baseURL string) series.Instance {
	o := r.ImageOrientationPatient
	return series.Instance{
		SOPInstanceUID: r.SOPInstanceUID,
		Rows:           r.Rows,
		Columns:        r.Columns,
		PixelSpacing:   r.PixelSpacing,
		SliceThickness: r.SliceThickness,
		Position: mgl64.Vec3{
			r.ImagePositionPatient[0],
			r.ImagePositionPatient[1],
			r.ImagePositionPatient[2],
		},
		RowDir:           mgl64.Vec3{o[0], o[1], o[2]},
		ColDir:           mgl64.Vec3{o[3], o[4], o[5]},
		WindowCenter:     r.WindowCenter,
		WindowWidth:      r.WindowWidth,
		RescaleSlope:     r.RescaleSlope,
		RescaleIntercept: r.RescaleIntercept,
		Photometric:      r.PhotometricInterpretation,
		Modality:         r.Modality,
		FrameURL: fmt.Sprintf("%s/instances/%s/dicom",
			strings.TrimRight(baseURL, "/"), r.SOPInstanceUID),
	}
}
