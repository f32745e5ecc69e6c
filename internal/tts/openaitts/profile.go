package openaitts

// Profile describes the request surface of one TTS server variant. The
// servers this plugin supports are all OpenAI-API-compatible but differ in
// default endpoint paths and request field names, so they are modeled as one
// client parameterized by a Profile rather than a copy of the adapter per
// server.
type Profile struct {
	// Name identifies the variant in config and logs.
	Name string

	// SpeechPath is the synthesis endpoint, POSTed with a JSON body.
	SpeechPath string

	// VoicesPath is the voice listing endpoint. Empty when the server has
	// none; Voices then returns an empty list.
	VoicesPath string

	// HealthPath is the liveness endpoint, probed with GET.
	HealthPath string

	// TextField is the JSON field carrying the text to speak.
	TextField string

	// VoiceField is the JSON field carrying the voice id.
	VoiceField string

	// ModelField is the JSON field carrying the model name. Empty when the
	// server takes no model parameter.
	ModelField string

	// SpeedField is the JSON field carrying the speed multiplier. Empty
	// when the server takes no speed parameter.
	SpeedField string

	// FormatField is the JSON field requesting an output container. When
	// set, the client asks for "wav".
	FormatField string

	// Extra holds fixed fields sent with every synthesis request.
	Extra map[string]any
}

// Built-in profiles for the supported server variants.
var (
	// VibeVoice is the standard VibeVoice server with the OpenAI speech API.
	VibeVoice = Profile{
		Name:        "vibevoice",
		SpeechPath:  "/v1/audio/speech",
		VoicesPath:  "/v1/voices",
		HealthPath:  "/health",
		TextField:   "input",
		VoiceField:  "voice",
		ModelField:  "model",
		SpeedField:  "speed",
		FormatField: "response_format",
	}

	// VibeVoiceLegacy is the pre-OpenAI-API VibeVoice server: a bare /tts
	// endpoint taking "text" and no model or format parameters.
	VibeVoiceLegacy = Profile{
		Name:       "vibevoice-legacy",
		SpeechPath: "/tts",
		HealthPath: "/health",
		TextField:  "text",
		VoiceField: "voice",
		SpeedField: "speed",
	}

	// Chatterbox is the chatterbox-tts-api server.
	Chatterbox = Profile{
		Name:        "chatterbox",
		SpeechPath:  "/v1/audio/speech",
		VoicesPath:  "/v1/voices",
		HealthPath:  "/healthz",
		TextField:   "input",
		VoiceField:  "voice",
		SpeedField:  "speed",
		FormatField: "response_format",
	}

	// ChatterboxMultilingual is Chatterbox with the multilingual model,
	// which additionally takes a language id.
	ChatterboxMultilingual = Profile{
		Name:        "chatterbox-multilingual",
		SpeechPath:  "/v1/audio/speech",
		VoicesPath:  "/v1/voices",
		HealthPath:  "/healthz",
		TextField:   "input",
		VoiceField:  "voice",
		SpeedField:  "speed",
		FormatField: "response_format",
		Extra:       map[string]any{"language_id": "en"},
	}

	// OpenAICompatible is the plain OpenAI speech API shape, for any other
	// self-hosted server that mimics it.
	OpenAICompatible = Profile{
		Name:        "openai",
		SpeechPath:  "/v1/audio/speech",
		HealthPath:  "/health",
		TextField:   "input",
		VoiceField:  "voice",
		ModelField:  "model",
		SpeedField:  "speed",
		FormatField: "response_format",
	}
)

var profiles = map[string]Profile{
	VibeVoice.Name:              VibeVoice,
	VibeVoiceLegacy.Name:        VibeVoiceLegacy,
	Chatterbox.Name:             Chatterbox,
	ChatterboxMultilingual.Name: ChatterboxMultilingual,
	OpenAICompatible.Name:       OpenAICompatible,
}

// ProfileByName looks up a built-in profile by its config name.
func ProfileByName(name string) (Profile, bool) {
	p, ok := profiles[name]
	return p, ok
}

// ProfileNames returns the names of all built-in profiles.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	return names
}
