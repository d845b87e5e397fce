package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"trainplandev/geminiapi"
	"trainplandev/logger"
	"trainplandev/session"
	"trainplandev/toolapi/gearapi"
	"trainplandev/toolapi/venueapi"
	"trainplandev/toolapi/weatherapi"
)

// maxToolRounds bounds the generate/execute loop within one turn. A full
// 7-day plan needs the forecast call plus venue and gear calls per day, which
// the model may spread over several rounds.
const maxToolRounds = 10

type AgentConnectProps struct {
	Logger  *logger.LogMiddleware
	Gemini  *geminiapi.Gemini
	Weather *weatherapi.Weather
	Venues  *venueapi.Venues
	Gear    *gearapi.Gear
}

// Agent relays user messages to the model and executes the tool calls the
// model makes against the local weather, venue and gear tools.
type Agent struct {
	logger      *logger.LogMiddleware
	gemini      *geminiapi.Gemini
	weather     *weatherapi.Weather
	venues      *venueapi.Venues
	gear        *gearapi.Gear
	instruction string
	tools       []*genai.Tool
}

func Connect(ctx context.Context, args AgentConnectProps) *Agent {
	tracer := otel.Tracer("agent/Connect")
	ctx, span := tracer.Start(ctx, "Connect")
	defer span.End()

	instruction := buildInstruction()
	span.SetAttributes(attribute.Int("instruction.length", len(instruction)))
	args.Logger.Logger(ctx).Info("[Agent] Training plan agent ready",
		zap.Int("intake_questions", len(informationCollectionOrder)),
	)

	return &Agent{
		logger:      args.Logger,
		gemini:      args.Gemini,
		weather:     args.Weather,
		venues:      args.Venues,
		gear:        args.Gear,
		instruction: instruction,
		tools:       args.Gemini.PlannerTools(),
	}
}

// Welcome produces the first agent turn of a fresh session: the welcome
// message combined with the first intake question.
func (a *Agent) Welcome(ctx context.Context, sess *session.Session) (string, error) {
	return a.SendMessage(ctx, sess, "WELCOME")
}

// SendMessage appends the user message to the session transcript, runs the
// model with tool dispatch until it produces a plain text turn, and returns
// that text.
func (a *Agent) SendMessage(ctx context.Context, sess *session.Session, message string) (string, error) {
	tracer := otel.Tracer("agent/SendMessage")
	ctx, span := tracer.Start(ctx, "SendMessage")
	defer span.End()

	span.SetAttributes(
		attribute.String("session.id", sess.ID),
		attribute.Int("message.length", len(message)),
	)

	contents := append(sess.History(), genai.NewContentFromText(message, genai.RoleUser))

	for round := 0; round < maxToolRounds; round++ {
		resp, err := a.gemini.Generate(ctx, contents, a.instruction, a.tools)
		if err != nil {
			span.RecordError(err)
			return "", fmt.Errorf("model generation failed: %w", err)
		}

		content := resp.Candidates[0].Content
		contents = append(contents, content)

		calls := functionCalls(content)
		if len(calls) == 0 {
			sess.SetHistory(contents)
			return textOf(content), nil
		}

		a.logger.Logger(ctx).Info("[Agent] Executing tool calls",
			zap.Int("round", round+1),
			zap.Int("calls", len(calls)),
		)

		parts := make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			result := a.dispatch(ctx, call)
			parts = append(parts, genai.NewPartFromFunctionResponse(call.Name, result))
		}
		contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: parts})
	}

	return "", fmt.Errorf("tool call budget exhausted after %d rounds", maxToolRounds)
}

// dispatch routes one model function call to the matching local tool. Tool
// results and tool errors both come back as response maps; nothing here
// panics the turn.
func (a *Agent) dispatch(ctx context.Context, call *genai.FunctionCall) map[string]any {
	tracer := otel.Tracer("agent/dispatch")
	ctx, span := tracer.Start(ctx, "dispatch")
	defer span.End()

	span.SetAttributes(attribute.String("tool", call.Name))
	a.logger.Logger(ctx).Info("[Agent] Tool call", zap.String("tool", call.Name), zap.Any("args", call.Args))

	switch call.Name {
	case "get_weather_forecast":
		latitude := floatArg(call.Args, "latitude", 0)
		longitude := floatArg(call.Args, "longitude", 0)
		days := intArg(call.Args, "days", 7)
		return toResponseMap(a.weather.Forecast(ctx, latitude, longitude, days))

	case "search_nearby_venues":
		latitude := floatArg(call.Args, "latitude", 0)
		longitude := floatArg(call.Args, "longitude", 0)
		sportType := stringArg(call.Args, "sport_type", "")
		radius := intArg(call.Args, "radius", venueapi.DefaultRadius)
		maxResults := intArg(call.Args, "max_results", venueapi.DefaultMaxResults)
		return toResponseMap(a.venues.SearchNearby(ctx, latitude, longitude, sportType, uint(radius), maxResults))

	case "get_recommended_gear":
		sportType := stringArg(call.Args, "sport_type", "")
		return toResponseMap(a.gear.Recommend(ctx, sportType))

	default:
		a.logger.Logger(ctx).Warn("[Agent] Unknown tool requested", zap.String("tool", call.Name))
		return map[string]any{
			"status":        "error",
			"error_message": "unknown tool: " + call.Name,
		}
	}
}

func functionCalls(content *genai.Content) []*genai.FunctionCall {
	if content == nil {
		return nil
	}
	var calls []*genai.FunctionCall
	for _, part := range content.Parts {
		if part != nil && part.FunctionCall != nil {
			calls = append(calls, part.FunctionCall)
		}
	}
	return calls
}

func textOf(content *genai.Content) string {
	if content == nil {
		return ""
	}
	text := ""
	for _, part := range content.Parts {
		if part != nil {
			text += part.Text
		}
	}
	return text
}

// toResponseMap converts a tool result struct into the map shape a
// FunctionResponse part carries.
func toResponseMap(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]any{"status": "error", "error_message": err.Error()}
	}
	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return map[string]any{"status": "error", "error_message": err.Error()}
	}
	return result
}

func floatArg(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return f
			}
		}
	}
	return fallback
}

func intArg(args map[string]any, key string, fallback int) int {
	if v, ok := args[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return int(f)
			}
		}
	}
	return fallback
}

func stringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}
