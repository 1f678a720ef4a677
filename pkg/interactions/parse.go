package interactions

import (
	"encoding/json"
	"fmt"
	"net/url"
	"slices"

	"github.com/rs/zerolog"
)

// ParsePayload decodes a request body into an [Interaction]. Discord sends
// JSON, but diagnostic tools may post URL-encoded forms instead, in which
// case only the application ID is extracted.
func ParsePayload(l zerolog.Logger, body []byte) (*Interaction, error) {
	var i *Interaction
	err := json.Unmarshal(body, &i)
	if err == nil {
		if i == nil {
			l.Warn().Msg("bad request: no input data")
			return nil, ErrMalformedInput
		}
		return i, nil
	}

	l.Debug().Err(err).Msg("payload isn't valid JSON, trying URL-encoded form")
	form, err := url.ParseQuery(string(body))
	if err != nil {
		l.Warn().Err(err).Msg("bad request: payload isn't a URL-encoded form either")
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	l.Debug().Strs("form_keys", keys).Msg("parsed URL-encoded form")

	return &Interaction{ApplicationID: form.Get("application_id")}, nil
}
