package service

import (
	"context"

	"github.com/Shadota/VN-Background-Generator/internal/logger"
	"github.com/Shadota/VN-Background-Generator/internal/scene"
	"github.com/Shadota/VN-Background-Generator/internal/tags"
)

// PipelineMode selects how scene tags are derived from conversation text.
type PipelineMode string

const (
	// ModeSinglePass asks the model for the flat tag list directly.
	ModeSinglePass PipelineMode = "single"
	// ModeTwoPass asks for a natural-language scene reading first, then
	// constrains it to vocabulary in a second call. Slower, better nuance.
	ModeTwoPass PipelineMode = "two_pass"
)

// PipelineConfig tunes the scene pipeline.
type PipelineConfig struct {
	Mode             PipelineMode
	HistoryTurns     int
	MaxTags          int
	FreeformLocation bool
}

// PromptBundle is the pipeline's output: everything the workflow template
// needs, plus the derived structure for logging and tests.
type PromptBundle struct {
	Positive   string
	Negative   string
	Tags       []string
	TimeOfDay  scene.TimeOfDay
	Weather    scene.Weather
	Recognized bool
}

// ScenePipeline derives a render prompt from recent conversation text.
// Stages run strictly in order: describe, extract, canonicalize, compose.
// Malformed model output is repaired locally with safe defaults; only
// configuration and backend failures reach the caller.
type ScenePipeline struct {
	describer        *SceneDescriber
	canonicalizer    *tags.Canonicalizer
	composer         *scene.Composer
	mode             PipelineMode
	historyTurns     int
	freeformLocation bool
}

// NewScenePipeline assembles the pipeline.
func NewScenePipeline(describer *SceneDescriber, cfg *PipelineConfig) *ScenePipeline {
	mode := cfg.Mode
	if mode != ModeSinglePass {
		mode = ModeTwoPass
	}
	historyTurns := cfg.HistoryTurns
	if historyTurns <= 0 {
		historyTurns = 10
	}
	return &ScenePipeline{
		describer:        describer,
		canonicalizer:    tags.NewCanonicalizer(cfg.MaxTags),
		composer:         scene.NewComposer(),
		mode:             mode,
		historyTurns:     historyTurns,
		freeformLocation: cfg.FreeformLocation,
	}
}

// BuildPrompt runs the full inference-to-prompt chain for one request.
func (p *ScenePipeline) BuildPrompt(ctx context.Context, transcript []Turn) (*PromptBundle, error) {
	if len(transcript) > p.historyTurns {
		transcript = transcript[len(transcript)-p.historyTurns:]
	}

	if p.mode == ModeSinglePass {
		return p.buildSinglePass(ctx, transcript)
	}
	return p.buildTwoPass(ctx, transcript)
}

func (p *ScenePipeline) buildSinglePass(ctx context.Context, transcript []Turn) (*PromptBundle, error) {
	raw, err := p.describer.DescribeTagsDirect(ctx, transcript)
	if err != nil {
		return nil, err
	}

	candidates := scene.ExtractTagList(raw)
	timeOfDay, weather := inferCategories(candidates)
	canonical := p.canonicalizer.Canonicalize(candidates, nil)

	return &PromptBundle{
		Positive:   p.composer.Compose(canonical, timeOfDay, weather),
		Negative:   p.composer.ComposeNegative(),
		Tags:       canonical,
		TimeOfDay:  timeOfDay,
		Weather:    weather,
		Recognized: len(canonical) > 0,
	}, nil
}

func (p *ScenePipeline) buildTwoPass(ctx context.Context, transcript []Turn) (*PromptBundle, error) {
	rawScene, err := p.describer.DescribeScene(ctx, transcript)
	if err != nil {
		return nil, err
	}

	desc, recognized := scene.ExtractDescription(rawScene)
	if !recognized {
		// Fail open: a generic valid background beats no background.
		logger.CtxWarn(ctx, "scene extraction failed, using default scene")
		desc = scene.DefaultDescription()
	}

	rawTags, err := p.describer.DeriveTags(ctx, scene.StripReasoning(rawScene))
	if err != nil {
		return nil, err
	}

	candidates := scene.ExtractTagList(rawTags)
	candidates = append(candidates, desc.TagCandidates()...)

	var freeform map[string]bool
	if p.freeformLocation && recognized {
		freeform = map[string]bool{tags.Normalize(desc.Location): true}
	}
	canonical := p.canonicalizer.Canonicalize(candidates, freeform)

	return &PromptBundle{
		Positive:   p.composer.Compose(canonical, desc.TimeOfDay, desc.Weather),
		Negative:   p.composer.ComposeNegative(),
		Tags:       canonical,
		TimeOfDay:  desc.TimeOfDay,
		Weather:    desc.Weather,
		Recognized: recognized,
	}, nil
}

// inferCategories scans a flat tag list for enumeration values so
// single-pass mode can still drive the categorical mapping tables.
func inferCategories(candidates []string) (scene.TimeOfDay, scene.Weather) {
	timeOfDay := scene.DefaultTimeOfDay
	weather := scene.DefaultWeather

	timeValues := map[string]scene.TimeOfDay{
		"day": scene.TimeDay, "morning": scene.TimeMorning,
		"noon": scene.TimeNoon, "afternoon": scene.TimeAfternoon,
		"sunset": scene.TimeSunset, "sunrise": scene.TimeSunrise,
		"evening": scene.TimeEvening, "night": scene.TimeNight,
		"midnight": scene.TimeMidnight,
	}
	weatherValues := map[string]scene.Weather{
		"clear_sky": scene.WeatherClear, "cloudy": scene.WeatherCloudy,
		"cloudy_sky": scene.WeatherCloudy, "overcast": scene.WeatherCloudy,
		"rain": scene.WeatherRain, "storm": scene.WeatherStorm,
		"snow": scene.WeatherSnow, "snowing": scene.WeatherSnow,
		"fog": scene.WeatherFog, "mist": scene.WeatherFog,
		"wind": scene.WeatherWind,
	}

	for _, raw := range candidates {
		t := tags.ResolveAlias(tags.Normalize(raw))
		if v, ok := timeValues[t]; ok && timeOfDay == scene.DefaultTimeOfDay {
			timeOfDay = v
		}
		if v, ok := weatherValues[t]; ok && weather == scene.DefaultWeather {
			weather = v
		}
	}
	return timeOfDay, weather
}
