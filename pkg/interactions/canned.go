package interactions

import (
	"context"
	"encoding/json"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/tzrikka/doorway/pkg/config"
)

// Resolution is the reply to a command interaction, and whether
// the interaction should also be queued for asynchronous handling.
type Resolution struct {
	Response Response
	Queue    bool
}

// Deferred acknowledges an interaction without replying yet,
// and queues it so that a worker can follow up later.
func Deferred() Resolution {
	return Resolution{Response: Response{Type: ResponseDeferred}, Queue: true}
}

// Resolve derives the command key of an interaction, and builds
// a reply from its canned response in the configuration, if there is one.
func Resolve(ctx context.Context, lookup config.Lookup, d InteractionData) Resolution {
	l := zerolog.Ctx(ctx)

	cmd := CommandKey(d)
	l.Debug().Str("command", cmd).Msg("resolved command key")
	if cmd == "" {
		return Deferred()
	}

	return ResolveCanned(*l, lookup.Lookup(ctx, ConfigKey(cmd)))
}

type cannedFlags struct {
	Private  *bool `json:"private"`
	Passthru *bool `json:"passthru"`
}

var (
	flagKeys    = []string{"private", "passthru"}
	contentKeys = []string{"content"}
	embedKeys   = []string{"title", "url", "description", "color"}
)

// contentUnwrapper extracts the content field of a canned response object.
// The boolean is false if the value doesn't have the expected shape.
type contentUnwrapper func(value string) (string, bool)

// contentUnwrappers are attempted in order, until the first match.
var contentUnwrappers = []contentUnwrapper{embedContent, textContent}

// ResolveCanned builds a reply from a configured canned response, which
// may be any one of these shapes:
//   - Plain text: "hello"
//   - Text content: {"content": "hello"}
//   - Embed content: {"content": {"title": "hello", "color": 255}}
//   - Embed: {"title": "hello", "url": "https://example.com"}
//
// Objects may also specify the flags "private" (ephemeral reply) and
// "passthru" (queue the interaction even though it's answered immediately).
// Values that match none of these shapes are sent as plain text. Text
// content is sent as a JSON string, including its quotes. Object keys are
// case-sensitive. A blank value results in a deferred reply.
func ResolveCanned(l zerolog.Logger, value string) Resolution {
	if isBlank(value) {
		l.Debug().Msg("no canned response")
		return Deferred()
	}

	l.Debug().Str("canned_response", value).Msg("found canned response")
	resp := Response{Type: ResponseChannelMessage, Data: &ResponseData{}}

	f, err := decodeFlags(value)
	if err != nil {
		l.Trace().Err(err).Msg("no private or passthru flags")
	}
	if f.Private != nil && *f.Private {
		resp.Data.Flags |= discordgo.MessageFlagsEphemeral
	}
	passthru := f.Passthru != nil && *f.Passthru

	for _, unwrap := range contentUnwrappers {
		if v, ok := unwrap(value); ok {
			value = v
			break
		}
	}

	setBody(l, resp.Data, value)

	return Resolution{Response: resp, Queue: passthru || resp.Type == ResponseDeferred}
}

// decodeFlags returns no flags at all if the value fails to decode, even partially.
func decodeFlags(value string) (cannedFlags, error) {
	var f cannedFlags
	if err := unmarshalExact([]byte(value), &f, flagKeys); err != nil {
		return cannedFlags{}, err
	}
	return f, nil
}

func embedContent(value string) (string, bool) {
	var c struct {
		Content json.RawMessage `json:"content"`
	}
	if err := unmarshalExact([]byte(value), &c, contentKeys); err != nil || c.Content == nil {
		return "", false
	}

	var e *Embed
	if err := unmarshalExact(c.Content, &e, embedKeys); err != nil || e == nil {
		return "", false
	}

	b, err := json.Marshal(e)
	if err != nil {
		return "", false
	}
	return string(b), true
}

func textContent(value string) (string, bool) {
	var c struct {
		Content *string `json:"content"`
	}
	if err := unmarshalExact([]byte(value), &c, contentKeys); err != nil || c.Content == nil || isBlank(*c.Content) {
		return "", false
	}

	b, err := json.Marshal(*c.Content)
	if err != nil {
		return "", false
	}
	return string(b), true
}

// unmarshalExact is like [json.Unmarshal], except that object keys must match
// the given keys exactly, not case-insensitively. Other keys are ignored.
func unmarshalExact(data []byte, v any, keys []string) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return json.Unmarshal(data, v) // Not an object.
	}

	exact := make(map[string]json.RawMessage, len(keys))
	for _, k := range keys {
		if raw, ok := m[k]; ok {
			exact[k] = raw
		}
	}

	b, err := json.Marshal(exact)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// setBody sets the value as an embed if it is one, or as text content otherwise.
func setBody(l zerolog.Logger, d *ResponseData, value string) {
	var e *Embed
	if err := unmarshalExact([]byte(value), &e, embedKeys); err != nil {
		l.Debug().Msg("replying with text content")
		d.Content = value
		return
	}

	switch {
	case e == nil:
		l.Warn().Msg("canned response embed is null")
	case e.empty():
		l.Debug().Msg("canned response object has no content")
	default:
		l.Debug().Msg("replying with embed")
		d.Embeds = []*Embed{e}
	}
}
