package service

import (
	"context"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patto-app/patto-api/internal/models"
	"github.com/patto-app/patto-api/pkg/config"
	appErrors "github.com/patto-app/patto-api/pkg/errors"
)

func newTestGenerationService(t *testing.T) *GenerationService {
	t.Helper()
	svc := NewGenerationService(config.GenerationConfig{
		APIKey:    "test-key",
		BaseURL:   "https://generation.test",
		Model:     "claude-sonnet-4-5-20250929",
		MaxTokens: 500,
	}, nil, nil)
	httpmock.ActivateNonDefault(svc.client.GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return svc
}

func generationActor() models.Actor {
	return models.Actor{ProfileID: "profile-1", FacilityID: "fac-1", Role: models.RoleStaff}
}

func TestGenerationServiceReturnsDraftText(t *testing.T) {
	svc := newTestGenerationService(t)
	httpmock.RegisterResponder("POST", "https://generation.test/v1/messages",
		httpmock.NewJsonResponderOrPanic(200, map[string]interface{}{
			"content": []map[string]string{
				{"type": "text", "text": "本日は工作活動に取り組みました。"},
			},
		}))

	res, err := svc.Generate(context.Background(), generationActor(), GenerateRequest{
		ChildName:  "太郎",
		Mood:       "good",
		Activities: []string{"工作"},
		Phrases:    []string{"集中して取り組めた"},
	})
	require.NoError(t, err)
	assert.Equal(t, "本日は工作活動に取り組みました。", res.Text)
}

func TestGenerationServiceFailureSurfacesGatewayError(t *testing.T) {
	svc := newTestGenerationService(t)
	httpmock.RegisterResponder("POST", "https://generation.test/v1/messages",
		httpmock.NewJsonResponderOrPanic(429, map[string]interface{}{
			"error": map[string]string{"type": "rate_limit_error", "message": "rate limited"},
		}))

	_, err := svc.Generate(context.Background(), generationActor(), GenerateRequest{ChildName: "太郎"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrGenerationFailed.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "rate limited")
}

func TestGenerationServiceMissingAPIKey(t *testing.T) {
	svc := NewGenerationService(config.GenerationConfig{BaseURL: "https://generation.test"}, nil, nil)

	_, err := svc.Generate(context.Background(), generationActor(), GenerateRequest{ChildName: "太郎"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrGenerationFailed.Code, appErrors.FromError(err).Code)
}

func TestGenerationServiceRequiresActor(t *testing.T) {
	svc := newTestGenerationService(t)

	_, err := svc.Generate(context.Background(), models.Actor{}, GenerateRequest{ChildName: "太郎"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestBuildUserPromptFallbacks(t *testing.T) {
	svc := NewGenerationService(config.GenerationConfig{}, nil, nil)

	prompt := svc.buildUserPrompt(GenerateRequest{ChildName: "太郎"})
	assert.Contains(t, prompt, "児童名：太郎")
	assert.Contains(t, prompt, "年齢：不明")
	assert.Contains(t, prompt, "本日の気分：未選択")
	assert.Contains(t, prompt, "活動内容：未選択")
	assert.Contains(t, prompt, "記録フレーズ：なし")
	assert.Contains(t, prompt, "スタッフメモ：なし")
}
