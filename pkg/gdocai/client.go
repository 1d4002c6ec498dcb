package gdocai

import (
	"context"
	"fmt"
	"os"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
)

// Client sends documents to one Document AI processor
type Client struct {
	cfg    Config
	client *documentai.DocumentProcessorClient
}

// NewClient creates a client for the configured processor. Credentials are
// read from GOOGLE_APPLICATION_CREDENTIALS when it is set; extra options are
// appended after the defaults.
func NewClient(ctx context.Context, cfg *Config, opts ...option.ClientOption) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("no config provided")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	clientOpts := []option.ClientOption{option.WithEndpoint(cfg.Endpoint())}
	if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(creds))
	}
	clientOpts = append(clientOpts, opts...)

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}
	return &Client{cfg: *cfg, client: client}, nil
}

// Close releases the underlying connection
func (c *Client) Close() error {
	return c.client.Close()
}

// Process sends document bytes of the given MIME type and returns the raw
// Document proto response
func (c *Client) Process(ctx context.Context, content []byte, mimeType string) (*documentaipb.Document, error) {
	req := &documentaipb.ProcessRequest{
		Name: c.cfg.ProcessorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  content,
				MimeType: mimeType,
			},
		},
		SkipHumanReview: true,
	}

	resp, err := c.client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to process document: %w", err)
	}
	return resp.Document, nil
}

// ProcessDocument sends PDF bytes to Document AI with a short-lived client
func ProcessDocument(ctx context.Context, pdfBytes []byte, cfg *Config) (*documentaipb.Document, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	return client.Process(ctx, pdfBytes, "application/pdf")
}
