package scene

import (
	"encoding/json"
	"strings"
)

// TimeOfDay is the closed enumeration for the scene's time field.
type TimeOfDay string

const (
	TimeDay       TimeOfDay = "day"
	TimeMorning   TimeOfDay = "morning"
	TimeNoon      TimeOfDay = "noon"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeSunset    TimeOfDay = "sunset"
	TimeSunrise   TimeOfDay = "sunrise"
	TimeEvening   TimeOfDay = "evening"
	TimeNight     TimeOfDay = "night"
	TimeMidnight  TimeOfDay = "midnight"
)

// DefaultTimeOfDay is substituted for missing or unrecognized values.
const DefaultTimeOfDay = TimeDay

// Weather is the closed enumeration for the scene's weather field.
type Weather string

const (
	WeatherClear  Weather = "clear"
	WeatherCloudy Weather = "cloudy"
	WeatherRain   Weather = "rain"
	WeatherStorm  Weather = "storm"
	WeatherSnow   Weather = "snow"
	WeatherFog    Weather = "fog"
	WeatherWind   Weather = "wind"
)

// DefaultWeather is substituted for missing or unrecognized values.
const DefaultWeather = WeatherClear

// DefaultLocation is the safe fallback when extraction fails entirely.
const DefaultLocation = "scenery"

var validTimes = map[TimeOfDay]bool{
	TimeDay: true, TimeMorning: true, TimeNoon: true, TimeAfternoon: true,
	TimeSunset: true, TimeSunrise: true, TimeEvening: true,
	TimeNight: true, TimeMidnight: true,
}

var validWeathers = map[Weather]bool{
	WeatherClear: true, WeatherCloudy: true, WeatherRain: true,
	WeatherStorm: true, WeatherSnow: true, WeatherFog: true,
	WeatherWind: true,
}

// StringList accepts either a JSON array of strings or a single
// comma-separated string. Models emit both shapes.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = arr
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	*l = out
	return nil
}

// Description is the structured intermediate representation of
// "where/when/weather/mood" derived from conversation text. It lives only
// for the duration of one generation request.
type Description struct {
	Location   string     `json:"location"`
	TimeOfDay  TimeOfDay  `json:"time_of_day"`
	Weather    Weather    `json:"weather"`
	Atmosphere string     `json:"atmosphere"`
	Elements   StringList `json:"key_elements"`
}

// Validate substitutes defaults for missing or out-of-enumeration values.
// A Description is never left with an invalid field; validation happens
// once here, downstream code assumes the fields are sound.
func (d *Description) Validate() {
	d.Location = strings.TrimSpace(d.Location)
	if d.Location == "" {
		d.Location = DefaultLocation
	}
	if !validTimes[TimeOfDay(strings.ToLower(string(d.TimeOfDay)))] {
		d.TimeOfDay = DefaultTimeOfDay
	} else {
		d.TimeOfDay = TimeOfDay(strings.ToLower(string(d.TimeOfDay)))
	}
	if !validWeathers[Weather(strings.ToLower(string(d.Weather)))] {
		d.Weather = DefaultWeather
	} else {
		d.Weather = Weather(strings.ToLower(string(d.Weather)))
	}
}

// DefaultDescription returns the safe generic scene used when the model
// output cannot be recovered. Generation proceeds with a valid background
// instead of blocking on LLM unreliability.
func DefaultDescription() Description {
	return Description{
		Location:  DefaultLocation,
		TimeOfDay: DefaultTimeOfDay,
		Weather:   DefaultWeather,
	}
}

// TagCandidates flattens the description's free-text fields into raw tag
// candidates for canonicalization. Enumerated fields are not included;
// the composer maps those through fixed tables.
func (d *Description) TagCandidates() []string {
	candidates := make([]string, 0, 2+len(d.Elements))
	candidates = append(candidates, splitField(d.Location)...)
	candidates = append(candidates, splitField(d.Atmosphere)...)
	candidates = append(candidates, d.Elements...)
	return candidates
}

func splitField(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
