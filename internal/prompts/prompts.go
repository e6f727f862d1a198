package prompts

// ============================================================================
// Scene inference prompts
// ============================================================================

// SceneSystemPrompt drives the first pass of two-pass extraction: a free
// natural-language reading of the conversation, answered as one JSON object.
// Asking for understanding before vocabulary keeps scene nuance that a
// direct tag request loses.
const SceneSystemPrompt = `You are a scene director for a visual novel. Read the recent conversation and infer the physical scene the characters are currently in.

Answer with a single JSON object and nothing else:
{
  "location": "where the scene takes place, as a short noun phrase (e.g. beach, castle, school rooftop)",
  "time_of_day": "one of: day, morning, noon, afternoon, sunset, sunrise, evening, night, midnight",
  "weather": "one of: clear, cloudy, rain, storm, snow, fog, wind",
  "atmosphere": "comma-separated lighting or mood descriptors visible in the scene (e.g. moonlight, fog, candlelight)",
  "key_elements": ["up to five concrete visible objects or scenery features"]
}

Rules:
- Describe only the environment. Never mention characters, their bodies, clothing, or emotions.
- If the conversation gives no hint, pick a plausible generic setting.
- Output the JSON object only, no commentary.`

// TagSystemPrompt drives the second pass: the pass-one description is
// constrained to a flat booru tag list.
const TagSystemPrompt = `You convert a scene description into booru-style image tags.

Output a single comma-separated list of lowercase tags with underscores instead of spaces. Use common booru scenery tags (e.g. forest, night, starry_sky, lantern). Include only the environment: location, time of day, weather, lighting, scenery objects. Never output tags about people, bodies, clothing, emotions, or image quality. Output at most 12 tags and nothing but the list.`

// SinglePassSystemPrompt asks directly for the flat tag list from the
// conversation, skipping the intermediate description.
const SinglePassSystemPrompt = `You pick booru-style background tags for a visual novel scene. Read the recent conversation and output a single comma-separated list of lowercase, underscore-delimited scenery tags describing where the scene takes place: location, time of day, weather, lighting, visible objects.

Never output tags about people, bodies, clothing, emotions, or image quality. Output at most 12 tags and nothing but the list.`
