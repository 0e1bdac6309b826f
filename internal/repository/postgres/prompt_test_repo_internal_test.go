package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"fisbench/internal/domain"
)

func TestBuildTestWhere(t *testing.T) {
	clause, args := buildTestWhere(domain.PromptTestFilter{})
	assert.Equal(t, "WHERE 1=1", clause)
	assert.Empty(t, args)

	rid := uuid.New()
	clause, args = buildTestWhere(domain.PromptTestFilter{
		Provider:      domain.ProviderPaddleOCR,
		PromptVersion: 3,
		Label:         domain.LabelCorrect,
		ReceiptID:     &rid,
	})
	assert.Equal(t, "WHERE 1=1 AND provider = $1 AND prompt_version = $2 AND label = $3 AND receipt_id = $4", clause)
	assert.Equal(t, []interface{}{domain.ProviderPaddleOCR, 3, domain.LabelCorrect, rid}, args)
}

func TestNullJSON(t *testing.T) {
	assert.Nil(t, nullJSON(nil))
	assert.Equal(t, `{"a":1}`, nullJSON([]byte(`{"a":1}`)))
}
