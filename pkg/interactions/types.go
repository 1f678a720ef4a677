package interactions

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

const (
	InteractionPing = int(discordgo.InteractionPing)

	ResponsePong           = int(discordgo.InteractionResponsePong)
	ResponseChannelMessage = int(discordgo.InteractionResponseChannelMessageWithSource)
	ResponseDeferred       = int(discordgo.InteractionResponseDeferredChannelMessageWithSource)
)

// Interaction is the subset of Discord's [interaction object] that
// Doorway needs. Unknown fields are ignored.
//
// [interaction object]: https://discord.com/developers/docs/interactions/receiving-and-responding#interaction-object
type Interaction struct {
	ApplicationID string          `json:"application_id"`
	Type          int             `json:"type"`
	GuildID       string          `json:"guild_id"`
	Data          InteractionData `json:"data"`
}

type InteractionData struct {
	Name     string              `json:"name"`
	Type     int                 `json:"type"`
	TargetID string              `json:"target_id"`
	Options  []InteractionOption `json:"options"`
}

type InteractionOption struct {
	Name    string              `json:"name"`
	Type    int                 `json:"type"`
	Value   OptionValue         `json:"value"`
	Options []InteractionOption `json:"options"`
}

// OptionValue is the textual form of an option's value. Discord sends
// strings, numbers and booleans here, depending on the option type.
type OptionValue string

func (v *OptionValue) UnmarshalJSON(b []byte) error {
	var x any
	if err := json.Unmarshal(b, &x); err != nil {
		return err
	}

	switch t := x.(type) {
	case nil:
		*v = ""
	case string:
		*v = OptionValue(t)
	case float64, bool:
		*v = OptionValue(bytes.TrimSpace(b))
	default:
		return fmt.Errorf("unexpected option value type %T", x)
	}

	return nil
}

// Response is the body of an HTTP reply to an interaction.
type Response struct {
	Type int           `json:"type"`
	Data *ResponseData `json:"data,omitempty"`
}

type ResponseData struct {
	Content string                 `json:"content,omitempty"`
	Flags   discordgo.MessageFlags `json:"flags,omitempty"`
	Embeds  []*Embed               `json:"embeds,omitempty"`
}

type Embed struct {
	Title       *string `json:"title,omitempty"`
	URL         *string `json:"url,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *int    `json:"color,omitempty"`
}

func (e *Embed) empty() bool {
	return e.Title == nil && e.URL == nil && e.Description == nil && e.Color == nil
}

// Pong acknowledges a ping interaction.
func Pong() Response {
	return Response{Type: ResponsePong}
}
