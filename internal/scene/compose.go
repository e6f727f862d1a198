package scene

import "strings"

// basePrefixTags force a character-free, wide scenery composition. They
// always open the prompt, no matter what the canonicalizer produced.
var basePrefixTags = []string{"no_humans", "scenery", "wide_shot"}

// qualitySuffixTags are the fixed trailing quality block.
var qualitySuffixTags = []string{"masterpiece", "best_quality", "highly_detailed", "absurdres"}

// negativeTags exclude characters, text, and render defects. The
// canonicalizer's blacklist and this block enforce the same invariant
// from both sides: the composed prompt never depicts people.
var negativeTags = []string{
	"1girl", "1boy", "humans", "people", "person", "crowd", "solo",
	"portrait", "face", "text", "watermark", "signature", "logo",
	"speech_bubble", "lowres", "bad_anatomy", "jpeg_artifacts", "blurry",
}

// timeOfDayTags maps the time enumeration to canonical sky/time tags.
var timeOfDayTags = map[TimeOfDay][]string{
	TimeDay:       {"day", "blue_sky"},
	TimeMorning:   {"morning", "sunlight"},
	TimeNoon:      {"noon", "blue_sky", "sunlight"},
	TimeAfternoon: {"afternoon", "sunlight"},
	TimeSunset:    {"sunset", "orange_sky", "golden_hour"},
	TimeSunrise:   {"sunrise", "gradient_sky"},
	TimeEvening:   {"evening", "twilight"},
	TimeNight:     {"night", "night_sky", "starry_sky"},
	TimeMidnight:  {"midnight", "night_sky", "moonlight"},
}

// weatherTags maps the weather enumeration to canonical atmosphere tags.
var weatherTags = map[Weather][]string{
	WeatherClear:  {"clear_sky"},
	WeatherCloudy: {"cloudy_sky", "overcast"},
	WeatherRain:   {"rain"},
	WeatherStorm:  {"storm", "dark_clouds", "lightning"},
	WeatherSnow:   {"snowing", "snow"},
	WeatherFog:    {"fog", "mist"},
	WeatherWind:   {"wind", "falling_leaves"},
}

// Composer builds the final prompt strings handed to the workflow
// template. Compose is a pure function of its inputs and is idempotent:
// the same tag set always yields the same prompt.
type Composer struct{}

// NewComposer creates a prompt composer.
func NewComposer() *Composer {
	return &Composer{}
}

// Compose merges canonical tags with the fixed base prefix, the
// category-mapped time and weather tags, and the quality suffix, then
// deduplicates preserving first occurrence and joins with ", ".
func (c *Composer) Compose(tagSet []string, timeOfDay TimeOfDay, weather Weather) string {
	mapped := timeOfDayTags[timeOfDay]
	if mapped == nil {
		mapped = timeOfDayTags[DefaultTimeOfDay]
	}
	weatherMapped := weatherTags[weather]
	if weatherMapped == nil {
		weatherMapped = weatherTags[DefaultWeather]
	}

	merged := make([]string, 0, len(basePrefixTags)+len(tagSet)+len(mapped)+len(weatherMapped)+len(qualitySuffixTags))
	merged = append(merged, basePrefixTags...)
	merged = append(merged, tagSet...)
	merged = append(merged, mapped...)
	merged = append(merged, weatherMapped...)
	merged = append(merged, qualitySuffixTags...)

	return strings.Join(dedup(merged), ", ")
}

// ComposeNegative returns the fixed negative prompt.
func (c *Composer) ComposeNegative() string {
	return strings.Join(negativeTags, ", ")
}

func dedup(tagList []string) []string {
	seen := make(map[string]bool, len(tagList))
	out := make([]string, 0, len(tagList))
	for _, t := range tagList {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
