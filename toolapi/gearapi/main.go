package gearapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"trainplandev/logger"
)

// GearSet lists recommended equipment for one sport.
type GearSet struct {
	Shoes       []string `json:"shoes"`
	Clothing    []string `json:"clothing"`
	Accessories []string `json:"accessories"`
}

// GearResponse is the tool contract consumed by the agent. The lookup always
// succeeds: unmatched sports get the generic set.
type GearResponse struct {
	Status          string  `json:"status"`
	SportType       string  `json:"sport_type"`
	RecommendedGear GearSet `json:"recommended_gear"`
}

type gearEntry struct {
	sport string
	gear  GearSet
}

// gearTable is ordered: declaration order is the tie-break when several keys
// substring-match the queried sport.
var gearTable = []gearEntry{
	{"长跑", runningGear},
	{"跑步", runningGear},
	{"running", runningGear},
	{"游泳", swimmingGear},
	{"swimming", swimmingGear},
	{"力量训练", strengthGear},
	{"健身", strengthGear},
	{"gym", strengthGear},
	{"瑜伽", yogaGear},
	{"yoga", yogaGear},
	{"骑行", cyclingGear},
	{"自行车", cyclingGear},
	{"cycling", cyclingGear},
	{"篮球", basketballGear},
	{"羽毛球", badmintonGear},
	{"爬山", hikingGear},
}

var (
	runningGear = GearSet{
		Shoes:       []string{"跑步鞋", "运动鞋"},
		Clothing:    []string{"速干T恤", "运动短裤", "运动袜"},
		Accessories: []string{"运动手表", "水壶", "毛巾"},
	}
	swimmingGear = GearSet{
		Shoes:       []string{},
		Clothing:    []string{"泳衣", "泳帽", "泳镜", "浴巾"},
		Accessories: []string{"防水袋", "拖鞋", "洗护用品"},
	}
	strengthGear = GearSet{
		Shoes:       []string{"训练鞋"},
		Clothing:    []string{"运动背心", "运动长裤", "运动手套"},
		Accessories: []string{"水壶", "毛巾", "护腕"},
	}
	yogaGear = GearSet{
		Shoes:       []string{},
		Clothing:    []string{"瑜伽服", "瑜伽裤", "运动内衣"},
		Accessories: []string{"瑜伽垫", "瑜伽砖", "瑜伽带"},
	}
	cyclingGear = GearSet{
		Shoes:       []string{"骑行鞋"},
		Clothing:    []string{"骑行服", "骑行裤", "头盔"},
		Accessories: []string{"水壶", "手套", "护目镜"},
	}
	basketballGear = GearSet{
		Shoes:       []string{"篮球鞋"},
		Clothing:    []string{"运动背心", "运动短裤"},
		Accessories: []string{"护膝", "护腕", "水壶"},
	}
	badmintonGear = GearSet{
		Shoes:       []string{"羽毛球鞋"},
		Clothing:    []string{"运动T恤", "运动短裤"},
		Accessories: []string{"羽毛球拍", "羽毛球", "护腕"},
	}
	hikingGear = GearSet{
		Shoes:       []string{"登山鞋"},
		Clothing:    []string{"速干衣", "冲锋衣", "运动长裤"},
		Accessories: []string{"登山杖", "背包", "水壶"},
	}
	genericGear = GearSet{
		Shoes:       []string{"运动鞋"},
		Clothing:    []string{"运动服", "运动裤"},
		Accessories: []string{"水壶", "毛巾"},
	}
)

type GearConnectProps struct {
	Logger *logger.LogMiddleware
}

// Gear recommends equipment from the static table. No external calls, no
// error path.
type Gear struct {
	logger *logger.LogMiddleware
}

func Connect(ctx context.Context, args GearConnectProps) *Gear {
	tracer := otel.Tracer("gearapi/Connect")
	ctx, span := tracer.Start(ctx, "Connect")
	defer span.End()

	span.SetAttributes(attribute.Int("table_size", len(gearTable)))
	args.Logger.Logger(ctx).Info("[GearAPI] Gear recommendation table ready", zap.Int("sports", len(gearTable)))

	return &Gear{logger: args.Logger}
}

// Recommend looks up gear for a sport: exact match, then case-insensitive
// exact match, then substring match either direction in table order, else the
// generic default.
func (g *Gear) Recommend(ctx context.Context, sportType string) GearResponse {
	tracer := otel.Tracer("gearapi/Recommend")
	ctx, span := tracer.Start(ctx, "Recommend")
	defer span.End()

	span.SetAttributes(attribute.String("sport_type", sportType))

	gear, matched := lookupGear(sportType)
	if !matched {
		g.logger.Logger(ctx).Info("[GearAPI] No gear match, using generic set", zap.String("sport_type", sportType))
	}

	return GearResponse{
		Status:          "success",
		SportType:       sportType,
		RecommendedGear: gear,
	}
}

func lookupGear(sportType string) (GearSet, bool) {
	for _, entry := range gearTable {
		if entry.sport == sportType {
			return entry.gear, true
		}
	}

	lowered := strings.ToLower(sportType)
	for _, entry := range gearTable {
		if strings.ToLower(entry.sport) == lowered {
			return entry.gear, true
		}
	}

	for _, entry := range gearTable {
		key := strings.ToLower(entry.sport)
		if strings.Contains(lowered, key) || strings.Contains(key, lowered) {
			return entry.gear, true
		}
	}

	return genericGear, false
}
