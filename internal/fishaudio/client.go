// Package fishaudio is a client for the Fish Audio voice-cloning and
// text-to-speech API.
package fishaudio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "voiceclone/internal/errors"
)

// API paths.
const (
	apiModel = "/model"
	apiTTS   = "/v1/tts"
)

// HTTP headers.
const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerModel         = "model"
	contentTypeJSON     = "application/json"
	contentTypeWAV      = "audio/wav"
)

// maxErrorBody bounds how much of an upstream error body is relayed.
const maxErrorBody = 64 << 10

// Model is a voice model owned by the caller on the provider side.
type Model struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
}

type listModelsResponse struct {
	Items []Model `json:"items"`
}

// CreateModelRequest describes a voice to clone.
type CreateModelRequest struct {
	// Tag links the model back to the local username.
	Tag                 string
	Title               string
	Description         string
	EnhanceAudioQuality bool
	Filename            string
	ContentType         string
	Voice               io.Reader
}

// SynthesisRequest is the JSON body of a TTS call plus the model header.
type SynthesisRequest struct {
	Text        string       `json:"text"`
	ReferenceID string       `json:"reference_id"`
	Variant     ModelVariant `json:"-"`
}

// Speech is an in-flight audio response. Callers must close Body.
type Speech struct {
	ContentType string
	Body        io.ReadCloser
}

// Client talks to the Fish Audio HTTP API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	idleTimeout time.Duration
	logger      *zap.Logger
}

// NewClient creates a client. The timeout bounds each phase of a call
// separately: connecting, waiting for response headers, and every gap
// between two chunks of a response body. A stream that keeps producing data
// may run for as long as it needs.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if timeout > 0 {
		transport.DialContext = (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext
		transport.ResponseHeaderTimeout = timeout
	}

	return &Client{
		httpClient:  &http.Client{Transport: transport},
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		idleTimeout: timeout,
		logger:      logger,
	}
}

// ListModels returns the caller's own models carrying tag.
func (c *Client) ListModels(ctx context.Context, tag string) ([]Model, error) {
	query := url.Values{}
	query.Set("tag", tag)
	query.Set("self", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+apiModel+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create list request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload listModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}
	return payload.Items, nil
}

// CreateModel uploads a voice sample and returns the provider's JSON reply verbatim.
// The sample is streamed into the multipart body without buffering it whole.
func (c *Client) CreateModel(ctx context.Context, in CreateModelRequest) (json.RawMessage, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeModelForm(form, in))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiModel, pr)
	if err != nil {
		pr.CloseWithError(err)
		return nil, fmt.Errorf("create model request: %w", err)
	}
	defer pr.Close()
	req.Header.Set(headerContentType, form.FormDataContentType())

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// The model exists upstream once a 2xx arrives, whatever happens to the reply.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read reply: %v", apperrors.ErrMalformedUpstreamReply, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: reply is not JSON", apperrors.ErrMalformedUpstreamReply)
	}
	return json.RawMessage(body), nil
}

func writeModelForm(form *multipart.Writer, in CreateModelRequest) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="voices"; filename="%s"`, quoteEscaper.Replace(in.Filename)))
	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set(headerContentType, contentType)

	part, err := form.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, in.Voice); err != nil {
		return fmt.Errorf("copy voice sample: %w", err)
	}

	fields := [][2]string{
		{"visibility", "private"},
		{"type", "tts"},
		{"title", in.Title},
		{"description", in.Description},
		{"train_mode", "fast"},
		{"tags", in.Tag},
	}
	if in.EnhanceAudioQuality {
		fields = append(fields, [2]string{"enhance_audio_quality", "true"})
	}
	for _, f := range fields {
		if err := form.WriteField(f[0], f[1]); err != nil {
			return err
		}
	}
	return form.Close()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Synthesize starts a TTS request and hands back the open audio stream.
func (c *Client) Synthesize(ctx context.Context, in SynthesisRequest) (*Speech, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal tts request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiTTS, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create tts request: %w", err)
	}
	req.Header.Set(headerContentType, contentTypeJSON)
	req.Header.Set(headerModel, string(in.Variant))

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}

	contentType := resp.Header.Get(headerContentType)
	if contentType == "" {
		contentType = contentTypeWAV
	}
	return &Speech{ContentType: contentType, Body: resp.Body}, nil
}

// do authenticates and sends req. Non-2xx answers are drained into an
// UpstreamError; the body of a successful response is left open and is
// cancelled if it stalls for longer than the idle timeout.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	ctx, cancel := context.WithCancel(req.Context())
	req = req.WithContext(ctx)
	req.Header.Set(headerAuthorization, "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		c.logger.Error("fish audio request failed",
			zap.String("method", req.Method), zap.String("path", req.URL.Path), zap.Error(err))
		return nil, &apperrors.TransportError{Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer cancel()
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("fish audio returned error status",
			zap.String("method", req.Method), zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode))
		return nil, &apperrors.UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	resp.Body = newIdleTimeoutBody(resp.Body, c.idleTimeout, cancel)
	return resp, nil
}
