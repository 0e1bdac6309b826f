package llm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fisbench/internal/llm"
	"fisbench/internal/port"
	"fisbench/mocks"
)

func chatOutput(model string) *port.ChatResponse {
	return &port.ChatResponse{Content: `{"items":[]}`, Model: model}
}

var chatReq = port.ChatRequest{Model: "gpt-4o-mini", SystemPrompt: "sys", UserPrompt: "user"}

func TestFallbackClient_FirstSucceeds(t *testing.T) {
	c1 := new(mocks.MockChatCompleter)
	c2 := new(mocks.MockChatCompleter)
	c1.On("Complete", mock.Anything, mock.Anything).Return(chatOutput("openai"), nil)

	fc := llm.NewFallbackClient([]port.ChatCompleter{c1, c2}, []string{"openai", "gemini"}, nil)

	out, err := fc.Complete(context.Background(), chatReq)

	require.NoError(t, err)
	assert.Equal(t, "openai", out.Model)
	c2.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestFallbackClient_ClearsModelForEachClient(t *testing.T) {
	c1 := new(mocks.MockChatCompleter)
	c1.On("Complete", mock.Anything, mock.MatchedBy(func(r port.ChatRequest) bool {
		return r.Model == "" && r.UserPrompt == "user"
	})).Return(chatOutput("openai"), nil)

	fc := llm.NewFallbackClient([]port.ChatCompleter{c1}, []string{"openai"}, nil)

	_, err := fc.Complete(context.Background(), chatReq)
	require.NoError(t, err)
	c1.AssertExpectations(t)
}

func TestFallbackClient_FirstFailsSecondSucceeds(t *testing.T) {
	c1 := new(mocks.MockChatCompleter)
	c2 := new(mocks.MockChatCompleter)
	c1.On("Complete", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
	c2.On("Complete", mock.Anything, mock.Anything).Return(chatOutput("gemini"), nil)

	fc := llm.NewFallbackClient([]port.ChatCompleter{c1, c2}, []string{"openai", "gemini"}, nil)

	out, err := fc.Complete(context.Background(), chatReq)

	require.NoError(t, err)
	assert.Equal(t, "gemini", out.Model)
}

func TestFallbackClient_AllRateLimited(t *testing.T) {
	c1 := new(mocks.MockChatCompleter)
	c2 := new(mocks.MockChatCompleter)
	c1.On("Complete", mock.Anything, mock.Anything).Return(nil, llm.NewRateLimitError("openai", errors.New("429"), 60*time.Second))
	c2.On("Complete", mock.Anything, mock.Anything).Return(nil, llm.NewRateLimitError("gemini", errors.New("429"), 30*time.Second))

	fc := llm.NewFallbackClient([]port.ChatCompleter{c1, c2}, []string{"openai", "gemini"}, nil)

	out, err := fc.Complete(context.Background(), chatReq)

	assert.Nil(t, out)
	var rlErr *llm.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "all", rlErr.Provider)
	assert.Equal(t, 30*time.Second, rlErr.RetryAfter)
}

func TestFallbackClient_AllFailNonRateLimit(t *testing.T) {
	c1 := new(mocks.MockChatCompleter)
	c2 := new(mocks.MockChatCompleter)
	c1.On("Complete", mock.Anything, mock.Anything).Return(nil, llm.NewRateLimitError("openai", errors.New("429"), 60*time.Second))
	c2.On("Complete", mock.Anything, mock.Anything).Return(nil, errors.New("error 2"))

	fc := llm.NewFallbackClient([]port.ChatCompleter{c1, c2}, []string{"openai", "gemini"}, nil)

	_, err := fc.Complete(context.Background(), chatReq)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all llm clients failed")
	var rlErr *llm.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
}

func TestFallbackClient_SkipsOpenCircuitUntilReset(t *testing.T) {
	c1 := new(mocks.MockChatCompleter)
	c2 := new(mocks.MockChatCompleter)
	c1.On("Complete", mock.Anything, mock.Anything).Return(nil, llm.NewRateLimitError("openai", errors.New("429"), time.Second)).Once()
	c2.On("Complete", mock.Anything, mock.Anything).Return(chatOutput("gemini"), nil).Twice()

	fc := llm.NewFallbackClient([]port.ChatCompleter{c1, c2}, []string{"openai", "gemini"}, nil)

	_, err := fc.Complete(context.Background(), chatReq)
	require.NoError(t, err)

	out, err := fc.Complete(context.Background(), chatReq)
	require.NoError(t, err)
	assert.Equal(t, "gemini", out.Model)
	c1.AssertNumberOfCalls(t, "Complete", 1)

	time.Sleep(1100 * time.Millisecond)
	c1.On("Complete", mock.Anything, mock.Anything).Return(chatOutput("openai"), nil).Once()

	out, err = fc.Complete(context.Background(), chatReq)
	require.NoError(t, err)
	assert.Equal(t, "openai", out.Model)
}
