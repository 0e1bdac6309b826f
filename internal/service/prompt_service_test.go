package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fisbench/internal/accounting"
	"fisbench/internal/domain"
	"fisbench/internal/logger"
	"fisbench/internal/service"
	"fisbench/mocks"
)

func newPromptService(repo *mocks.MockPromptRepository) service.PromptService {
	return service.NewPromptService(repo, accounting.NewRegistry(accounting.DefaultSchemaCutoff, logger.Nop()), logger.Nop())
}

func TestPromptService_GetCurrent_FallsBackToDefault(t *testing.T) {
	repo := new(mocks.MockPromptRepository)
	repo.On("Latest", mock.Anything, domain.ProviderPaddleOCR).Return(nil, domain.ErrNotFound)
	svc := newPromptService(repo)

	p, err := svc.GetCurrent(context.Background(), domain.ProviderPaddleOCR)

	require.NoError(t, err)
	assert.Equal(t, service.DefaultPromptVersion, p.Version)
	assert.Equal(t, domain.SchemaV1, p.SchemaVersion)
	assert.Equal(t, accounting.InstructionsFor(domain.ProviderPaddleOCR), p.PromptText)
}

func TestPromptService_GetCurrent_UnknownProvider(t *testing.T) {
	svc := newPromptService(new(mocks.MockPromptRepository))

	_, err := svc.GetCurrent(context.Background(), "tesseract")

	assert.ErrorIs(t, err, domain.ErrUnsupportedProvider)
}

func TestPromptService_GetCurrent_RepoFailure(t *testing.T) {
	repo := new(mocks.MockPromptRepository)
	repo.On("Latest", mock.Anything, domain.ProviderOpenAIVision).Return(nil, errors.New("db down"))
	svc := newPromptService(repo)

	_, err := svc.GetCurrent(context.Background(), domain.ProviderOpenAIVision)

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestPromptService_Get(t *testing.T) {
	repo := new(mocks.MockPromptRepository)
	repo.On("Get", mock.Anything, domain.ProviderOpenAIVision, 1).Return(nil, domain.ErrPromptVersionNotFound)
	repo.On("Get", mock.Anything, domain.ProviderOpenAIVision, 7).Return(nil, domain.ErrPromptVersionNotFound)
	svc := newPromptService(repo)

	p, err := svc.Get(context.Background(), domain.ProviderOpenAIVision, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Version)

	_, err = svc.Get(context.Background(), domain.ProviderOpenAIVision, 7)
	assert.ErrorIs(t, err, domain.ErrPromptVersionNotFound)
}

func TestPromptService_Save_FirstRevision(t *testing.T) {
	repo := new(mocks.MockPromptRepository)
	repo.On("Latest", mock.Anything, domain.ProviderAmazonTextract).Return(nil, domain.ErrNotFound)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.PromptVersion) bool {
		return p.Version == 2 && *p.PreviousVersion == 1 && p.RestoredFromVersion == nil
	})).Return(nil)
	svc := newPromptService(repo)

	p, err := svc.Save(context.Background(), service.SavePromptInput{
		Provider: domain.ProviderAmazonTextract,
		Text:     "Yeni talimat",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, p.Version)
	assert.Equal(t, domain.SchemaV1, p.SchemaVersion)
	repo.AssertExpectations(t)
}

func TestPromptService_Save_SchemaFromCutoff(t *testing.T) {
	repo := new(mocks.MockPromptRepository)
	repo.On("Latest", mock.Anything, domain.ProviderGoogleDocAI).
		Return(&domain.PromptVersion{Provider: domain.ProviderGoogleDocAI, Version: accounting.DefaultSchemaCutoff - 1}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	svc := newPromptService(repo)

	p, err := svc.Save(context.Background(), service.SavePromptInput{
		Provider: domain.ProviderGoogleDocAI,
		Text:     "talimat",
	})

	require.NoError(t, err)
	assert.Equal(t, accounting.DefaultSchemaCutoff, p.Version)
	assert.Equal(t, domain.SchemaV2, p.SchemaVersion)
}

func TestPromptService_Save_Rejects(t *testing.T) {
	svc := newPromptService(new(mocks.MockPromptRepository))

	_, err := svc.Save(context.Background(), service.SavePromptInput{Provider: domain.ProviderPaddleOCR, Text: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Save(context.Background(), service.SavePromptInput{
		Provider: domain.ProviderPaddleOCR, Text: "x", SchemaVersion: "v9",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPromptService_Restore(t *testing.T) {
	repo := new(mocks.MockPromptRepository)
	repo.On("Get", mock.Anything, domain.ProviderPaddleOCR, 3).Return(&domain.PromptVersion{
		Provider: domain.ProviderPaddleOCR, Version: 3, SchemaVersion: domain.SchemaV1, PromptText: "eski talimat",
	}, nil)
	repo.On("Latest", mock.Anything, domain.ProviderPaddleOCR).
		Return(&domain.PromptVersion{Provider: domain.ProviderPaddleOCR, Version: 5}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	svc := newPromptService(repo)

	p, err := svc.Restore(context.Background(), domain.ProviderPaddleOCR, 3)

	require.NoError(t, err)
	assert.Equal(t, 6, p.Version)
	assert.Equal(t, "eski talimat", p.PromptText)
	assert.Equal(t, domain.SchemaV1, p.SchemaVersion)
	require.NotNil(t, p.RestoredFromVersion)
	assert.Equal(t, 3, *p.RestoredFromVersion)
	assert.Equal(t, 5, *p.PreviousVersion)
}

func TestPromptService_History_Empty(t *testing.T) {
	repo := new(mocks.MockPromptRepository)
	repo.On("History", mock.Anything, domain.ProviderPaddleOCR).Return([]domain.PromptVersion{}, nil)
	svc := newPromptService(repo)

	history, err := svc.History(context.Background(), domain.ProviderPaddleOCR)

	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, service.DefaultPromptVersion, history[0].Version)
}

func TestPromptService_Versions(t *testing.T) {
	tests := []struct {
		name   string
		stored []int
		want   []int
	}{
		{"nothing stored", nil, []int{1}},
		{"built-in superseded", []int{2, 3}, []int{1, 2, 3}},
		{"stored v1", []int{1, 2}, []int{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockPromptRepository)
			repo.On("Versions", mock.Anything, domain.ProviderOpenAIVision).Return(tt.stored, nil)
			svc := newPromptService(repo)

			got, err := svc.Versions(context.Background(), domain.ProviderOpenAIVision)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPromptService_Delete(t *testing.T) {
	repo := new(mocks.MockPromptRepository)
	repo.On("Latest", mock.Anything, domain.ProviderPaddleOCR).
		Return(&domain.PromptVersion{Provider: domain.ProviderPaddleOCR, Version: 4}, nil)
	repo.On("Delete", mock.Anything, domain.ProviderPaddleOCR, 2).Return(nil)
	svc := newPromptService(repo)

	err := svc.Delete(context.Background(), domain.ProviderPaddleOCR, 4)
	assert.ErrorIs(t, err, domain.ErrCannotDeleteCurrentVersion)

	require.NoError(t, svc.Delete(context.Background(), domain.ProviderPaddleOCR, 2))
	repo.AssertCalled(t, "Delete", mock.Anything, domain.ProviderPaddleOCR, 2)
	repo.AssertNotCalled(t, "Delete", mock.Anything, domain.ProviderPaddleOCR, 4)
}

func TestPromptService_All(t *testing.T) {
	repo := new(mocks.MockPromptRepository)
	repo.On("LatestAll", mock.Anything).Return([]domain.PromptVersion{
		{Provider: domain.ProviderOpenAIVision, Version: 9, PromptText: "stored"},
	}, nil)
	svc := newPromptService(repo)

	all, err := svc.All(context.Background())

	require.NoError(t, err)
	require.Len(t, all, len(domain.KnownProviders))
	for _, p := range all {
		if p.Provider == domain.ProviderOpenAIVision {
			assert.Equal(t, 9, p.Version)
			continue
		}
		assert.Equal(t, service.DefaultPromptVersion, p.Version, p.Provider)
	}
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, service.EstimateTokens(""))
	assert.Equal(t, 4, service.EstimateTokens("fiş toplam kdv"))
	assert.Equal(t, 13, service.EstimateTokens("a b c d e f g h i j"))
}
