package scene

import (
	"reflect"
	"testing"
)

func TestStripReasoning(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "no markers",
			input:    "plain answer",
			expected: "plain answer",
		},
		{
			name:     "matched pair removed",
			input:    "<think>the scene is probably a beach</think>beach at sunset",
			expected: "beach at sunset",
		},
		{
			name:     "multiple pairs removed",
			input:    "<think>first</think>a<think>second</think>b",
			expected: "ab",
		},
		{
			name:     "orphan close drops leading text",
			input:    "leaked chain of thought</think>the real answer",
			expected: "the real answer",
		},
		{
			name:     "unterminated open drops tail",
			input:    "the answer<think>and then the model rambled on",
			expected: "the answer",
		},
		{
			name:     "thinking variant",
			input:    "<thinking>hmm</thinking>done",
			expected: "done",
		},
		{
			name:     "reasoning variant",
			input:    "<reasoning>hmm</reasoning>done",
			expected: "done",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripReasoning(tt.input); got != tt.expected {
				t.Errorf("StripReasoning(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExtractDescription(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantOK       bool
		wantLocation string
		wantTime     TimeOfDay
		wantWeather  Weather
	}{
		{
			name:         "plain object",
			input:        `{"location": "beach", "time_of_day": "sunset", "weather": "clear"}`,
			wantOK:       true,
			wantLocation: "beach",
			wantTime:     TimeSunset,
			wantWeather:  WeatherClear,
		},
		{
			name:         "fenced block preferred over surrounding prose",
			input:        "Here is the scene:\n```json\n{\"location\": \"classroom\", \"time_of_day\": \"morning\"}\n```\nHope that helps!",
			wantOK:       true,
			wantLocation: "classroom",
			wantTime:     TimeMorning,
			wantWeather:  WeatherClear,
		},
		{
			name:         "last complete object wins",
			input:        `{"location": "draft"} some rethinking {"location": "rooftop", "time_of_day": "night"}`,
			wantOK:       true,
			wantLocation: "rooftop",
			wantTime:     TimeNight,
			wantWeather:  WeatherClear,
		},
		{
			name:         "later object without location skipped for earlier valid one",
			input:        `{"location": "garden", "weather": "rain"} trailing note {"mood": "calm"}`,
			wantOK:       true,
			wantLocation: "garden",
			wantTime:     TimeDay,
			wantWeather:  WeatherRain,
		},
		{
			name:         "reasoning stripped before parsing",
			input:        `<think>{"location": "wrong"}</think>{"location": "library", "time_of_day": "evening"}`,
			wantOK:       true,
			wantLocation: "library",
			wantTime:     TimeEvening,
			wantWeather:  WeatherClear,
		},
		{
			name:         "invalid enums fall back to defaults",
			input:        `{"location": "forest", "time_of_day": "whenever", "weather": "apocalyptic"}`,
			wantOK:       true,
			wantLocation: "forest",
			wantTime:     DefaultTimeOfDay,
			wantWeather:  DefaultWeather,
		},
		{
			name:         "uppercase enums normalized",
			input:        `{"location": "pier", "time_of_day": "Night", "weather": "Fog"}`,
			wantOK:       true,
			wantLocation: "pier",
			wantTime:     TimeNight,
			wantWeather:  WeatherFog,
		},
		{
			name:   "no json at all",
			input:  "I cannot determine the scene from this conversation.",
			wantOK: false,
		},
		{
			name:   "object without location",
			input:  `{"time_of_day": "night", "weather": "rain"}`,
			wantOK: false,
		},
		{
			name:   "truncated object",
			input:  `{"location": "beach", "time_of_day":`,
			wantOK: false,
		},
		{
			name:   "empty input",
			input:  "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, ok := ExtractDescription(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ExtractDescription ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if desc.Location != tt.wantLocation {
				t.Errorf("location = %q, want %q", desc.Location, tt.wantLocation)
			}
			if desc.TimeOfDay != tt.wantTime {
				t.Errorf("time_of_day = %q, want %q", desc.TimeOfDay, tt.wantTime)
			}
			if desc.Weather != tt.wantWeather {
				t.Errorf("weather = %q, want %q", desc.Weather, tt.wantWeather)
			}
		})
	}
}

func TestExtractDescriptionKeyElements(t *testing.T) {
	t.Run("array form", func(t *testing.T) {
		desc, ok := ExtractDescription(`{"location": "cafe", "key_elements": ["counter", "window"]}`)
		if !ok {
			t.Fatal("expected successful extraction")
		}
		want := StringList{"counter", "window"}
		if !reflect.DeepEqual(desc.Elements, want) {
			t.Errorf("elements = %v, want %v", desc.Elements, want)
		}
	})

	t.Run("comma string form", func(t *testing.T) {
		desc, ok := ExtractDescription(`{"location": "cafe", "key_elements": "counter, window"}`)
		if !ok {
			t.Fatal("expected successful extraction")
		}
		want := StringList{"counter", "window"}
		if !reflect.DeepEqual(desc.Elements, want) {
			t.Errorf("elements = %v, want %v", desc.Elements, want)
		}
	})
}

func TestExtractDescriptionBracesInsideStrings(t *testing.T) {
	desc, ok := ExtractDescription(`{"location": "alley", "atmosphere": "graffiti reading {tag} on the wall"}`)
	if !ok {
		t.Fatal("expected successful extraction")
	}
	if desc.Location != "alley" {
		t.Errorf("location = %q, want %q", desc.Location, "alley")
	}
}

func TestExtractTagList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "simple list",
			input:    "beach, sunset, ocean",
			expected: []string{"beach", "sunset", "ocean"},
		},
		{
			name:     "reasoning stripped",
			input:    "<think>which tags fit?</think>Forest, Night",
			expected: []string{"forest", "night"},
		},
		{
			name:     "empties dropped",
			input:    "beach,, ,sunset",
			expected: []string{"beach", "sunset"},
		},
		{
			name:     "empty input",
			input:    "",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTagList(tt.input)
			if len(got) == 0 && len(tt.expected) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ExtractTagList(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTagCandidates(t *testing.T) {
	d := Description{
		Location:   "rooftop, cityscape",
		Atmosphere: "neon lights",
		Elements:   StringList{"railing", "water tank"},
	}
	got := d.TagCandidates()
	want := []string{"rooftop", "cityscape", "neon lights", "railing", "water tank"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TagCandidates = %v, want %v", got, want)
	}
}
