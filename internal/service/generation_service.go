package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/patto-app/patto-api/internal/models"
	"github.com/patto-app/patto-api/pkg/config"
	appErrors "github.com/patto-app/patto-api/pkg/errors"
)

const anthropicVersion = "2023-06-01"

const generationSystemPrompt = `あなたは放課後等デイサービスの経験豊富な支援員です。保護者が読む支援記録を作成します。

文体ルール：
- 「です・ます」調の丁寧語で統一
- 3〜5文で具体的なエピソードを交えてまとめる
- 児童の名前は「○○さん」と表記
- 活動の様子→本人の反応や頑張り→今後への前向きな一言、の流れで書く
- 定型的・機械的にならず、その子らしさが伝わる温かみのある文章にする
- 文章のみを出力（見出し・箇条書き・括弧書きの補足は不要）
- 児童の年齢や学年に合った表現を使う（年齢が低ければより平易に、高学年なら成長に触れるなど）

記録フレーズの扱い（最重要）：
- 記録フレーズは「健康・生活」「運動・感覚」「認知・行動」「言語・コミュニケーション」「人間関係・社会性」の5領域に基づく観察記録である
- 提供された記録フレーズすべてに満遍なく触れること。特定の領域だけに偏らないようにする
- 記録フレーズの内容を文章の骨格として使い、自然な流れでつなげる

スタッフメモの扱い：
- スタッフメモは補足情報として扱う。メモの内容が文章全体を支配しないようにする
- 記録フレーズの内容を主軸にし、メモは背景情報や補足的なエピソードとして自然に織り込む程度にとどめる

良い例：
「本日は工作活動でペットボトルロケットの制作に取り組みました。太郎さんは設計図を描く段階からとても意欲的で、羽の角度を何度も調整しながら丁寧に仕上げていました。完成したロケットを飛ばした際にはとても嬉しそうな表情を見せてくれました。集中して最後まで取り組む姿に成長を感じます。」`

// GenerateRequest carries the form state handed to the text generator.
type GenerateRequest struct {
	ChildName  string     `json:"child_name" validate:"required"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
	School     string     `json:"school"`
	Grade      string     `json:"grade"`
	Mood       string     `json:"mood" validate:"omitempty,oneof=good neutral bad"`
	Activities []string   `json:"activities"`
	Phrases    []string   `json:"phrases"`
	Memo       string     `json:"memo"`
}

// GenerateResponse wraps the produced draft text.
type GenerateResponse struct {
	Text string `json:"text"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type anthropicError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerationService drafts parent-facing record text by calling an
// external language-model API. The draft is never persisted here; the
// staff member reviews and saves it through the normal record flow.
type GenerationService struct {
	client    *resty.Client
	config    config.GenerationConfig
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewGenerationService constructs a GenerationService instance.
func NewGenerationService(cfg config.GenerationConfig, validate *validator.Validate, logger *zap.Logger) *GenerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("x-api-key", cfg.APIKey).
		SetHeader("anthropic-version", anthropicVersion).
		SetHeader("Content-Type", "application/json")
	return &GenerationService{
		client:    client,
		config:    cfg,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Generate produces one draft from the form state. Failures surface as a
// gateway error so the caller's unsaved form state stays intact.
func (s *GenerationService) Generate(ctx context.Context, actor models.Actor, req GenerateRequest) (*GenerateResponse, error) {
	if actor.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no authenticated profile")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}
	if s.config.APIKey == "" {
		return nil, appErrors.Clone(appErrors.ErrGenerationFailed, "generation API key not configured")
	}

	body := anthropicRequest{
		Model:     s.config.Model,
		MaxTokens: s.config.MaxTokens,
		System:    generationSystemPrompt,
		Messages:  []anthropicMessage{{Role: "user", Content: s.buildUserPrompt(req)}},
	}

	var out anthropicResponse
	var apiErr anthropicError
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1/messages")
	if err != nil {
		s.logger.Error("generation request failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrGenerationFailed.Code, appErrors.ErrGenerationFailed.Status, "generation request failed")
	}
	if resp.IsError() {
		s.logger.Error("generation API error",
			zap.Int("status", resp.StatusCode()),
			zap.String("message", apiErr.Error.Message))
		msg := apiErr.Error.Message
		if msg == "" {
			msg = fmt.Sprintf("generation API returned %d", resp.StatusCode())
		}
		return nil, appErrors.Clone(appErrors.ErrGenerationFailed, msg)
	}

	text := ""
	if len(out.Content) > 0 && out.Content[0].Type == "text" {
		text = out.Content[0].Text
	}
	return &GenerateResponse{Text: text}, nil
}

func (s *GenerationService) buildUserPrompt(req GenerateRequest) string {
	ageText := "不明"
	if req.BirthDate != nil {
		child := models.Child{BirthDate: req.BirthDate}
		ageText = fmt.Sprintf("%d歳", child.Age(s.now()))
	}
	return fmt.Sprintf(`以下の情報をもとに支援記録を作成してください。

児童名：%s
年齢：%s
学校：%s
学年：%s
本日の気分：%s
活動内容：%s
記録フレーズ：%s
スタッフメモ：%s`,
		req.ChildName,
		ageText,
		orUnknown(req.School),
		orUnknown(req.Grade),
		models.Mood(req.Mood).Label(),
		joinOr(req.Activities, "、", "未選択"),
		joinOr(req.Phrases, "。", "なし"),
		orNone(req.Memo),
	)
}

func joinOr(parts []string, sep, fallback string) string {
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, sep)
}

func orUnknown(v string) string {
	if v == "" {
		return "不明"
	}
	return v
}

func orNone(v string) string {
	if v == "" {
		return "なし"
	}
	return v
}
