package fishaudio

import (
	"fmt"

	apperrors "voiceclone/internal/errors"
)

// ModelVariant names a provider TTS model, sent in the "model" header.
type ModelVariant string

const (
	Speech15 ModelVariant = "speech-1.5"
	Speech16 ModelVariant = "speech-1.6"
	AgentX0  ModelVariant = "agent-x0"
)

// DefaultVariant is used when the caller does not pick one.
const DefaultVariant = AgentX0

// Variants lists the supported model variants.
var Variants = []ModelVariant{Speech15, Speech16, AgentX0}

// ParseModelVariant validates s. The empty string selects DefaultVariant.
func ParseModelVariant(s string) (ModelVariant, error) {
	if s == "" {
		return DefaultVariant, nil
	}
	for _, v := range Variants {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w %q: must be one of %v", apperrors.ErrInvalidModelVariant, s, Variants)
}
