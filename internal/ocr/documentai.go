package ocr

import (
	"context"
	"fmt"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"fisbench/internal/config"
	"fisbench/internal/domain"
	"fisbench/internal/port"
)

const docAIPageCost = 0.0015

// ProcessFunc sends one ProcessRequest to Document AI.
type ProcessFunc func(ctx context.Context, req *documentaipb.ProcessRequest) (*documentaipb.ProcessResponse, error)

type docAIProvider struct {
	process   ProcessFunc
	processor string
}

// NewDocumentAI creates a Google Document AI provider bound to the configured processor.
func NewDocumentAI(ctx context.Context, cfg *config.OCRConfig) (port.OCRProvider, func() error, error) {
	if cfg.DocAIProjectID == "" || cfg.DocAIProcessorID == "" {
		return nil, nil, fmt.Errorf("documentai requires project id and processor id")
	}
	location := cfg.DocAILocation
	if location == "" {
		location = "us"
	}

	opts := []option.ClientOption{option.WithEndpoint(fmt.Sprintf("%s-documentai.googleapis.com:443", location))}
	if cfg.DocAICredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.DocAICredentialsFile))
	}
	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("documentai client: %w", err)
	}

	process := func(ctx context.Context, req *documentaipb.ProcessRequest) (*documentaipb.ProcessResponse, error) {
		return client.ProcessDocument(ctx, req)
	}
	name := fmt.Sprintf("projects/%s/locations/%s/processors/%s", cfg.DocAIProjectID, location, cfg.DocAIProcessorID)
	return NewDocumentAIWithFunc(process, name), client.Close, nil
}

// NewDocumentAIWithFunc builds a provider around an arbitrary process function (for testing).
func NewDocumentAIWithFunc(process ProcessFunc, processorName string) port.OCRProvider {
	return &docAIProvider{process: process, processor: processorName}
}

func (p *docAIProvider) ID() domain.ProviderID { return domain.ProviderGoogleDocAI }

func (p *docAIProvider) Extract(ctx context.Context, input port.OCRInput) (*port.OCROutput, error) {
	mime := input.ContentType
	if mime == "" {
		mime = "image/png"
	}
	resp, err := p.process(ctx, &documentaipb.ProcessRequest{
		Name: p.processor,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{Content: input.Image, MimeType: mime},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("documentai ProcessDocument: %w", err)
	}

	out := &port.OCROutput{Cost: docAIPageCost}
	doc := resp.GetDocument()
	if doc == nil {
		return out, nil
	}
	out.Text = doc.GetText()

	var sum float64
	var n int
	for _, page := range doc.GetPages() {
		for _, line := range page.GetLines() {
			sum += float64(line.GetLayout().GetConfidence())
			n++
		}
	}
	if n > 0 {
		c := sum / float64(n)
		out.Confidence = &c
	}
	return out, nil
}
