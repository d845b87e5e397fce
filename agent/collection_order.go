package agent

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type collectionField struct {
	Field    string
	Question string
}

// informationCollectionOrder is the fixed intake script. The agent asks these
// questions one at a time, strictly in this order, before generating a plan.
var informationCollectionOrder = []collectionField{
	{"age", "Please tell me your age, for example: 25"},
	{"gender", "Please tell me your gender (male/female)"},
	{"weight", "Please tell me your weight (in kg), for example: 70"},
	{"height", "Please tell me your height (in cm), for example: 175"},
	{"injuries", "Have you had any injuries in the past year, especially regarding your knees, ankles, or back?"},
	{"fitness_level", "What is your current fitness level? (beginner/intermediate/advanced)"},
	{"running_times_per_week", "How many times do you run per week?"},
	{"total_mileage", "What is the total mileage on average per week (in km)?"},
	{"pb", "What is your PB (personal best) for 5km or 10km run?"},
	{"training_goal", "What is your training goal? You can select multiple: weight loss, stay fit, train for a 10km race, train for a half-marathon, or train for a full marathon"},
	{"training_days", "Which days of the week can you train, and for how long each session?"},
	{"training_location", "Where do you usually train: road, track, treadmill, or trail?"},
	{"arch_type", "Do you have low (flat), neutral, or high arches? (This helps with shoe recommendation)"},
	{"shoe_wear", "Is the wear on your old shoes heavier on the inner edge or outer edge?"},
	{"shoe_feel", "Do you prefer a soft, plush feel or firm, responsive ride?"},
	{"city", "What city or area are you located in? For example: New York"},
}

var fieldTitleCaser = cases.Title(language.English)

func fieldTitle(field string) string {
	return fieldTitleCaser.String(strings.ReplaceAll(field, "_", " "))
}

// collectionOrderText renders the numbered question list embedded in the
// instruction prompt.
func collectionOrderText() string {
	lines := make([]string, 0, len(informationCollectionOrder))
	for i, item := range informationCollectionOrder {
		lines = append(lines, fmt.Sprintf("%d. **%s** - Ask: %q", i+1, fieldTitle(item.Field), item.Question))
	}
	return strings.Join(lines, "\n")
}

// questionSequenceText renders the compact ordering reminder.
func questionSequenceText() string {
	names := make([]string, 0, len(informationCollectionOrder))
	for i, item := range informationCollectionOrder {
		names = append(names, fmt.Sprintf("Question %d: %s", i+1, fieldTitle(item.Field)))
	}
	return strings.Join(names, " → ")
}

func firstQuestion() string {
	return informationCollectionOrder[0].Question
}

func firstFieldName() string {
	return informationCollectionOrder[0].Field
}

const welcomeMessageText = "Hello! 👋 I'm your professional training plan generation assistant. I can create a personalized weekly training plan based on your personal information, sport preferences, weather conditions, and geographical location in your area. Let me learn about your situation so I can generate the most suitable training plan for you!"

// exampleResponses pairs with the question order to build the example
// conversation shown to the model.
var exampleResponses = []string{
	"25",
	"male",
	"70",
	"175",
	"No injuries",
	"intermediate",
	"3",
	"15",
	"5km: 25:00",
	"train for a 10km race",
	"Monday/Wednesday/Friday, 1 hour each",
	"road",
	"neutral",
	"outer edge",
	"firm, responsive ride",
	"New York",
}

// exampleConversationText renders a full sample dialogue the model is told to
// imitate: welcome plus first question in one turn, confirm plus next
// question on every answer, then tool calls and a pure-JSON plan.
func exampleConversationText() string {
	questions := informationCollectionOrder

	lines := []string{
		fmt.Sprintf("Agent: %q", welcomeMessageText+" "+questions[0].Question),
	}

	for i := 1; i < len(questions); i++ {
		lines = append(lines, fmt.Sprintf("User: %q", exampleResponses[i-1]))
		lines = append(lines, fmt.Sprintf("Agent: %q", "Got it, recorded. "+questions[i].Question))
	}

	lines = append(lines, fmt.Sprintf("User: %q", exampleResponses[len(exampleResponses)-1]))
	lines = append(lines, `Agent: "Great! I've learned about your situation. Now let me generate a personalized training plan for you..."`)
	lines = append(lines, "[Agent calls tools: get_weather_forecast, search_nearby_venues, get_recommended_gear]")
	lines = append(lines, `Agent: {"metadata":{...},"training_plan":[...],"summary":{...}}`)
	lines = append(lines, "[Note: Agent directly outputs JSON, no other text]")

	return strings.Join(lines, "\n")
}
