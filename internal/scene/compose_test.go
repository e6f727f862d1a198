package scene

import (
	"strings"
	"testing"
)

func TestCompose(t *testing.T) {
	c := NewComposer()

	t.Run("prefix always opens the prompt", func(t *testing.T) {
		got := c.Compose([]string{"beach"}, TimeDay, WeatherClear)
		if !strings.HasPrefix(got, "no_humans, scenery, wide_shot") {
			t.Errorf("prompt does not open with the scenery prefix: %q", got)
		}
	})

	t.Run("quality suffix closes the prompt", func(t *testing.T) {
		got := c.Compose([]string{"beach"}, TimeDay, WeatherClear)
		if !strings.HasSuffix(got, "masterpiece, best_quality, highly_detailed, absurdres") {
			t.Errorf("prompt does not end with the quality suffix: %q", got)
		}
	})

	t.Run("time and weather mapped", func(t *testing.T) {
		got := c.Compose([]string{"rooftop"}, TimeNight, WeatherRain)
		for _, want := range []string{"night_sky", "starry_sky", "rain"} {
			if !strings.Contains(got, want) {
				t.Errorf("prompt missing mapped tag %q: %q", want, got)
			}
		}
	})

	t.Run("empty tag set still yields a usable prompt", func(t *testing.T) {
		got := c.Compose(nil, DefaultTimeOfDay, DefaultWeather)
		if !strings.Contains(got, "scenery") {
			t.Errorf("fallback prompt missing scenery: %q", got)
		}
		if !strings.Contains(got, "clear_sky") {
			t.Errorf("fallback prompt missing default weather tag: %q", got)
		}
	})

	t.Run("unrecognized enums fall back to defaults", func(t *testing.T) {
		got := c.Compose([]string{"beach"}, TimeOfDay("whenever"), Weather("maybe"))
		if !strings.Contains(got, "blue_sky") || !strings.Contains(got, "clear_sky") {
			t.Errorf("defaults not applied: %q", got)
		}
	})

	t.Run("deduplicates across sections", func(t *testing.T) {
		// "night" appears both in the tag set and the time mapping.
		got := c.Compose([]string{"night", "rooftop"}, TimeNight, WeatherClear)
		count := 0
		for _, tag := range strings.Split(got, ", ") {
			if tag == "night" {
				count++
			}
		}
		if count != 1 {
			t.Errorf("tag night occurs %d times, want 1: %q", count, got)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		a := c.Compose([]string{"beach", "sunset"}, TimeSunset, WeatherClear)
		b := c.Compose([]string{"beach", "sunset"}, TimeSunset, WeatherClear)
		if a != b {
			t.Errorf("same inputs produced different prompts:\n%q\n%q", a, b)
		}
	})
}

func TestComposeNegative(t *testing.T) {
	c := NewComposer()
	got := c.ComposeNegative()
	for _, want := range []string{"1girl", "1boy", "text", "watermark", "lowres"} {
		if !strings.Contains(got, want) {
			t.Errorf("negative prompt missing %q: %q", want, got)
		}
	}
}

func TestDescriptionValidate(t *testing.T) {
	tests := []struct {
		name         string
		input        Description
		wantLocation string
		wantTime     TimeOfDay
		wantWeather  Weather
	}{
		{
			name:         "empty gets defaults",
			input:        Description{},
			wantLocation: DefaultLocation,
			wantTime:     DefaultTimeOfDay,
			wantWeather:  DefaultWeather,
		},
		{
			name:         "valid preserved",
			input:        Description{Location: "beach", TimeOfDay: TimeSunset, Weather: WeatherWind},
			wantLocation: "beach",
			wantTime:     TimeSunset,
			wantWeather:  WeatherWind,
		},
		{
			name:         "case normalized",
			input:        Description{Location: "beach", TimeOfDay: "NIGHT", Weather: "Snow"},
			wantLocation: "beach",
			wantTime:     TimeNight,
			wantWeather:  WeatherSnow,
		},
		{
			name:         "whitespace location treated as missing",
			input:        Description{Location: "   "},
			wantLocation: DefaultLocation,
			wantTime:     DefaultTimeOfDay,
			wantWeather:  DefaultWeather,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.input
			d.Validate()
			if d.Location != tt.wantLocation {
				t.Errorf("location = %q, want %q", d.Location, tt.wantLocation)
			}
			if d.TimeOfDay != tt.wantTime {
				t.Errorf("time_of_day = %q, want %q", d.TimeOfDay, tt.wantTime)
			}
			if d.Weather != tt.wantWeather {
				t.Errorf("weather = %q, want %q", d.Weather, tt.wantWeather)
			}
		})
	}
}
