package workflow

import (
	"math/rand"

	"github.com/Shadota/VN-Background-Generator/internal/domain"
)

// Placeholder is a template token destined to be replaced by a concrete
// parameter at instantiation time. Placeholders are a distinct type with a
// closed registry so substitution is exhaustive: a token outside the
// registry is a template bug, not a silent no-op.
type Placeholder string

const (
	PlaceholderPositivePrompt Placeholder = "POSITIVE_PROMPT"
	PlaceholderNegativePrompt Placeholder = "NEGATIVE_PROMPT"
	PlaceholderSeed           Placeholder = "SEED"
	PlaceholderModelName      Placeholder = "MODEL_NAME"
	PlaceholderSampler        Placeholder = "SAMPLER"
	PlaceholderSteps          Placeholder = "STEPS"
	PlaceholderCFG            Placeholder = "CFG"
	PlaceholderDenoise        Placeholder = "DENOISE"
	PlaceholderWidth          Placeholder = "WIDTH"
	PlaceholderHeight         Placeholder = "HEIGHT"
	PlaceholderLoraName1      Placeholder = "LORA_NAME_1"
	PlaceholderLoraName2      Placeholder = "LORA_NAME_2"
	PlaceholderLoraName3      Placeholder = "LORA_NAME_3"
	PlaceholderLoraName4      Placeholder = "LORA_NAME_4"
	PlaceholderLoraWeight1    Placeholder = "LORA_WEIGHT_1"
	PlaceholderLoraWeight2    Placeholder = "LORA_WEIGHT_2"
	PlaceholderLoraWeight3    Placeholder = "LORA_WEIGHT_3"
	PlaceholderLoraWeight4    Placeholder = "LORA_WEIGHT_4"
)

// Parameter defaults applied when the caller leaves a value unset.
const (
	DefaultSampler = "euler"
	DefaultSteps   = 28
	DefaultCFG     = 7.0
	DefaultDenoise = 1.0
	DefaultWidth   = 1280
	DefaultHeight  = 720

	// RandomSeed is the sentinel requesting a fresh random seed.
	RandomSeed = -1

	// LoraNone marks a LoRA slot as unselected.
	LoraNone = "None"
)

// Params carries the concrete values substituted into a template.
// Zero values fall back to the documented defaults; ModelName and
// PositivePrompt have no default and must be set.
type Params struct {
	PositivePrompt string
	NegativePrompt string
	ModelName      string
	Seed           int64
	Sampler        string
	Steps          int
	CFG            float64
	Denoise        float64
	Width          int
	Height         int
	LoraNames      [4]string
	LoraWeights    [4]float64
}

// EffectiveSeed resolves the seed parameter, drawing a uniformly random
// non-negative value when the seed is unset or the random sentinel.
func (p *Params) EffectiveSeed() int64 {
	if p.Seed < 0 {
		return rand.Int63()
	}
	return p.Seed
}

// loraName returns the slot's name with the unselected sentinel
// normalized to the empty string.
func (p *Params) loraName(slot int) string {
	name := p.LoraNames[slot]
	if name == LoraNone {
		return ""
	}
	return name
}

func (p *Params) loraWeight(slot int) float64 {
	if p.LoraWeights[slot] == 0 {
		return 1.0
	}
	return p.LoraWeights[slot]
}

// resolve maps a placeholder to its substitution value. The boolean is
// false only for tokens outside the registry.
func (p *Params) resolve(ph Placeholder, seed int64) (interface{}, error) {
	switch ph {
	case PlaceholderPositivePrompt:
		if p.PositivePrompt == "" {
			return nil, &domain.TemplateError{Reason: "positive prompt parameter is empty"}
		}
		return p.PositivePrompt, nil
	case PlaceholderNegativePrompt:
		return p.NegativePrompt, nil
	case PlaceholderModelName:
		if p.ModelName == "" {
			return nil, &domain.TemplateError{Reason: "model name parameter is empty"}
		}
		return p.ModelName, nil
	case PlaceholderSeed:
		return seed, nil
	case PlaceholderSampler:
		return defaultString(p.Sampler, DefaultSampler), nil
	case PlaceholderSteps:
		return defaultInt(p.Steps, DefaultSteps), nil
	case PlaceholderCFG:
		return defaultFloat(p.CFG, DefaultCFG), nil
	case PlaceholderDenoise:
		return defaultFloat(p.Denoise, DefaultDenoise), nil
	case PlaceholderWidth:
		return defaultInt(p.Width, DefaultWidth), nil
	case PlaceholderHeight:
		return defaultInt(p.Height, DefaultHeight), nil
	case PlaceholderLoraName1, PlaceholderLoraName2, PlaceholderLoraName3, PlaceholderLoraName4:
		return p.loraName(loraSlot(ph)), nil
	case PlaceholderLoraWeight1, PlaceholderLoraWeight2, PlaceholderLoraWeight3, PlaceholderLoraWeight4:
		return p.loraWeight(loraSlot(ph)), nil
	}
	return nil, &domain.TemplateError{Reason: "unknown placeholder " + string(ph)}
}

// isPlaceholder reports whether a literal input value is a registered
// placeholder token.
func isPlaceholder(v interface{}) (Placeholder, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	ph := Placeholder(s)
	switch ph {
	case PlaceholderPositivePrompt, PlaceholderNegativePrompt, PlaceholderSeed,
		PlaceholderModelName, PlaceholderSampler, PlaceholderSteps,
		PlaceholderCFG, PlaceholderDenoise, PlaceholderWidth, PlaceholderHeight,
		PlaceholderLoraName1, PlaceholderLoraName2, PlaceholderLoraName3, PlaceholderLoraName4,
		PlaceholderLoraWeight1, PlaceholderLoraWeight2, PlaceholderLoraWeight3, PlaceholderLoraWeight4:
		return ph, true
	}
	return "", false
}

func loraSlot(ph Placeholder) int {
	switch ph {
	case PlaceholderLoraName1, PlaceholderLoraWeight1:
		return 0
	case PlaceholderLoraName2, PlaceholderLoraWeight2:
		return 1
	case PlaceholderLoraName3, PlaceholderLoraWeight3:
		return 2
	default:
		return 3
	}
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func defaultInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

func defaultFloat(v, fallback float64) float64 {
	if v == 0 {
		return fallback
	}
	return v
}
