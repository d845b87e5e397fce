package geminiapi

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"trainplandev/logger"
)

const (
	GEMINI_MODEL_NAME = "gemini-2.5-flash"
)

const (
	maxRetries = 3
	baseDelay  = 1 * time.Second
)

type GeminiConnectProps struct {
	Logger *logger.LogMiddleware
	APIKey string
}

type Gemini struct {
	logger *logger.LogMiddleware
	client *genai.Client
}

func exponentialBackoff(attempt int) time.Duration {
	return baseDelay * time.Duration(1<<uint(attempt))
}

// invalidResponse reports whether a generation result carries no usable
// content and should be retried or rejected.
func invalidResponse(resp *genai.GenerateContentResponse) bool {
	return resp == nil ||
		len(resp.Candidates) == 0 ||
		resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0
}

func Connect(ctx context.Context, args GeminiConnectProps) *Gemini {
	tracer := otel.Tracer("geminiapi/Connect")
	ctx, span := tracer.Start(ctx, "Connect")
	defer span.End()
	args.Logger.Logger(ctx).Info("[GeminiAPI] Connecting Gemini API client")

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  args.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		args.Logger.Logger(ctx).Error("[GeminiAPI] Could not create Gemini client", zap.Error(err))
		os.Exit(21)
	}

	return &Gemini{logger: args.Logger, client: client}
}

// Generate runs one model call over the full conversation history with the
// given system prompt and tool declarations, retrying empty or failed
// responses with exponential backoff.
func (g *Gemini) Generate(ctx context.Context, contents []*genai.Content, systemPrompt string, tools []*genai.Tool) (*genai.GenerateContentResponse, error) {
	tracer := otel.Tracer("geminiapi/Generate")
	ctx, span := tracer.Start(ctx, "Generate")
	defer span.End()
	g.logger.Logger(ctx).Info("[GeminiAPI] Generate called", zap.Int("history.length", len(contents)))

	var resp *genai.GenerateContentResponse
	var err error

	thinkingBudget := int32(0)

	safetySettings := []*genai.SafetySetting{
		{
			Category:  genai.HarmCategoryHarassment,
			Threshold: genai.HarmBlockThresholdBlockNone,
		},
		{
			Category:  genai.HarmCategoryHateSpeech,
			Threshold: genai.HarmBlockThresholdBlockNone,
		},
		{
			Category:  genai.HarmCategorySexuallyExplicit,
			Threshold: genai.HarmBlockThresholdBlockNone,
		},
		{
			Category:  genai.HarmCategoryDangerousContent,
			Threshold: genai.HarmBlockThresholdBlockNone,
		},
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		span.AddEvent("Attempt", trace.WithAttributes(attribute.Int("attemptNumber", attempt+1)))
		g.logger.Logger(ctx).Info("[GeminiAPI] LLM generation attempt", zap.Int("attempt", attempt+1))

		resp, err = g.client.Models.GenerateContent(ctx, GEMINI_MODEL_NAME, contents, &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
			SafetySettings:    safetySettings,
			Tools:             tools,
			ThinkingConfig: &genai.ThinkingConfig{
				IncludeThoughts: false,
				ThinkingBudget:  &thinkingBudget,
			},
		})

		if err != nil || invalidResponse(resp) {
			if err != nil {
				span.RecordError(err)
				g.logger.Logger(ctx).Warn("[GeminiAPI] Error generating LLM content, retrying...",
					zap.Error(err),
					zap.Int("attempt", attempt+1),
					zap.Int("maxRetries", maxRetries))
			} else {
				g.logger.Logger(ctx).Warn("[GeminiAPI] Received empty or invalid response, retrying...",
					zap.Int("attempt", attempt+1),
					zap.Int("maxRetries", maxRetries))
				span.AddEvent("EmptyResponse")
			}

			if attempt < maxRetries-1 {
				delay := exponentialBackoff(attempt)
				span.AddEvent("Backoff", trace.WithAttributes(attribute.Int64("delayMs", delay.Milliseconds())))
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delay):
				}
			}
			continue
		}

		break
	}

	if err != nil {
		g.logger.Logger(ctx).Error("[GeminiAPI] Final error generating LLM content after retries:", zap.Error(err))
		return nil, err
	}

	// Every attempt can come back empty without a transport error; callers
	// index into the candidates, so an empty result must not leave here as a
	// success.
	if invalidResponse(resp) {
		g.logger.Logger(ctx).Error("[GeminiAPI] No valid response after retries", zap.Int("maxRetries", maxRetries))
		span.AddEvent("NoValidResponse")
		return nil, fmt.Errorf("no valid response after %d attempts", maxRetries)
	}

	span.AddEvent("LLM generation successful")
	return resp, nil
}

// GetWeatherForecastFunction declares the forecast tool for the model.
func (g *Gemini) GetWeatherForecastFunction() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        "get_weather_forecast",
		Description: "Get the weather forecast for the next N days at a coordinate. Always succeeds; degraded data is returned when live providers are unavailable.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"latitude": {
					Type:        genai.TypeNumber,
					Description: "Latitude of the location, degrees in [-90, 90]",
				},
				"longitude": {
					Type:        genai.TypeNumber,
					Description: "Longitude of the location, degrees in [-180, 180]",
				},
				"days": {
					Type:        genai.TypeInteger,
					Description: "Number of days to forecast, clamped to [1, 7]. Default 7.",
				},
			},
			Required: []string{"latitude", "longitude"},
		},
	}
}

// SearchNearbyVenuesFunction declares the venue search tool for the model.
func (g *Gemini) SearchNearbyVenuesFunction() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        "search_nearby_venues",
		Description: "Search venues suitable for a sport type near a coordinate, ranked by distance then rating.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"latitude": {
					Type:        genai.TypeNumber,
					Description: "Latitude of the search center",
				},
				"longitude": {
					Type:        genai.TypeNumber,
					Description: "Longitude of the search center",
				},
				"sport_type": {
					Type:        genai.TypeString,
					Description: "Sport to find venues for, e.g. 长跑, 游泳, 力量训练, 瑜伽, 骑行",
				},
				"radius": {
					Type:        genai.TypeInteger,
					Description: "Search radius in meters. Default 2000.",
				},
				"max_results": {
					Type:        genai.TypeInteger,
					Description: "Maximum number of venues to return. Default 5.",
				},
			},
			Required: []string{"latitude", "longitude", "sport_type"},
		},
	}
}

// GetRecommendedGearFunction declares the gear lookup tool for the model.
func (g *Gemini) GetRecommendedGearFunction() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        "get_recommended_gear",
		Description: "Get recommended shoes, clothing and accessories for a sport type.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"sport_type": {
					Type:        genai.TypeString,
					Description: "Sport to recommend gear for, e.g. 长跑, 游泳, 力量训练, 瑜伽, 骑行",
				},
			},
			Required: []string{"sport_type"},
		},
	}
}

// PlannerTools bundles the three tool declarations handed to the model for a
// planning session.
func (g *Gemini) PlannerTools() []*genai.Tool {
	return []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			g.GetWeatherForecastFunction(),
			g.SearchNearbyVenuesFunction(),
			g.GetRecommendedGearFunction(),
		},
	}}
}
