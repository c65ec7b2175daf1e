package whisper

import "sort"

const DefaultModel = "distil-large-v3"

// repos maps friendly model names to the HuggingFace repos carrying their
// MLX-converted weights.
var repos = map[string]string{
	"tiny":             "mlx-community/whisper-tiny",
	"base":             "mlx-community/whisper-base-mlx",
	"small":            "mlx-community/whisper-small-mlx",
	"medium":           "mlx-community/whisper-medium-mlx",
	"large":            "mlx-community/whisper-large-mlx",
	"large-v2":         "mlx-community/whisper-large-v2-mlx",
	"large-v3":         "mlx-community/whisper-large-v3-mlx",
	"large-v3-turbo":   "mlx-community/whisper-large-v3-turbo",
	"turbo":            "mlx-community/whisper-large-v3-turbo",
	"distil-small.en":  "mustafaaljadery/distil-whisper-small.en",
	"distil-medium.en": "mustafaaljadery/distil-whisper-medium.en",
	"distil-large-v2":  "mustafaaljadery/distil-whisper-large-v2",
	"distil-large-v3":  "mustafaaljadery/distil-whisper-large-v3",
}

// quantRepos maps model names to their pre-quantized variants. Not every
// model has one; resolution falls back to the unquantized repo for those.
var quantRepos = map[string]map[Quantization]string{
	"tiny": {
		Quant4Bit: "mlx-community/whisper-tiny-mlx-4bit",
		Quant8Bit: "mlx-community/whisper-tiny-mlx-8bit",
	},
	"base": {
		Quant4Bit: "mlx-community/whisper-base-mlx-4bit",
		Quant8Bit: "mlx-community/whisper-base-mlx-8bit",
	},
	"medium": {
		Quant4Bit: "mlx-community/whisper-medium-mlx-4bit",
		Quant8Bit: "mlx-community/whisper-medium-mlx-8bit",
	},
	"large": {
		Quant4Bit: "mlx-community/whisper-large-mlx-4bit",
		Quant8Bit: "mlx-community/whisper-large-mlx-8bit",
	},
	"large-v2": {
		Quant4Bit: "mlx-community/whisper-large-v2-mlx-4bit",
		Quant8Bit: "mlx-community/whisper-large-v2-mlx-8bit",
	},
	"large-v3": {
		Quant4Bit: "mlx-community/whisper-large-v3-mlx-4bit",
		Quant8Bit: "mlx-community/whisper-large-v3-mlx-8bit",
	},
	"distil-large-v3": {
		Quant4Bit: "mlx-community/distil-whisper-large-v3-4bit",
	},
	"distil-large-v2": {
		Quant4Bit: "mustafaaljadery/distil-whisper-large-v2-4-bit",
	},
}

// ModelNames returns the sorted list of registered friendly names.
func ModelNames() []string {
	names := make([]string, 0, len(repos))
	for name := range repos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupRepo returns the unquantized repo for a friendly name.
func LookupRepo(name string) (string, bool) {
	repo, ok := repos[name]
	return repo, ok
}

// LookupQuantRepo returns the pre-quantized repo for a friendly name and
// quantization level, if one is registered.
func LookupQuantRepo(name string, quant Quantization) (string, bool) {
	variants, ok := quantRepos[name]
	if !ok {
		return "", false
	}
	repo, ok := variants[quant]
	return repo, ok
}

// Variants returns the quantization levels registered for a friendly name,
// sorted for stable output.
func Variants(name string) []Quantization {
	variants, ok := quantRepos[name]
	if !ok {
		return nil
	}
	out := make([]Quantization, 0, len(variants))
	for quant := range variants {
		out = append(out, quant)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
