package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"fisbench/internal/config"
	"fisbench/internal/domain"
	"fisbench/internal/port"
)

// textractPageCost is the DetectDocumentText list price per page in USD.
const textractPageCost = 0.0015

// TextractAPI is the subset of the Textract client used here.
type TextractAPI interface {
	DetectDocumentText(ctx context.Context, params *textract.DetectDocumentTextInput, optFns ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error)
}

type textractProvider struct {
	api TextractAPI
}

// NewTextract creates an Amazon Textract provider from OCR config.
func NewTextract(ctx context.Context, cfg *config.OCRConfig) (port.OCRProvider, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKey != "" && cfg.AWSSecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKey, cfg.AWSSecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return NewTextractWithAPI(textract.NewFromConfig(awsCfg)), nil
}

// NewTextractWithAPI wraps an existing Textract client (for testing).
func NewTextractWithAPI(api TextractAPI) port.OCRProvider {
	return &textractProvider{api: api}
}

func (p *textractProvider) ID() domain.ProviderID { return domain.ProviderAmazonTextract }

func (p *textractProvider) Extract(ctx context.Context, input port.OCRInput) (*port.OCROutput, error) {
	out, err := p.api.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{Bytes: input.Image},
	})
	if err != nil {
		return nil, fmt.Errorf("textract DetectDocumentText: %w", err)
	}

	var lines []string
	var confSum float64
	for _, block := range out.Blocks {
		if block.BlockType != types.BlockTypeLine {
			continue
		}
		lines = append(lines, aws.ToString(block.Text))
		confSum += float64(aws.ToFloat32(block.Confidence))
	}

	result := &port.OCROutput{
		Text: strings.Join(lines, "\n"),
		Cost: textractPageCost,
	}
	if len(lines) > 0 {
		c := confSum / float64(len(lines)) / 100
		result.Confidence = &c
	}
	return result, nil
}
