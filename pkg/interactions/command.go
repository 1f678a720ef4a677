package interactions

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// CommandKeyPrefix is prepended to command keys to form configuration keys.
const CommandKeyPrefix = "APP_COMMAND_"

// CommandKey derives an uppercase key from the invoked command's name and
// up to two levels of sub-command (or sub-command group) names, joined with
// underscores, e.g. "FOO_BAR_BAZ" for "/foo bar baz". Only the first option
// in each level is considered. The key is empty if the command has no name.
func CommandKey(d InteractionData) string {
	if isBlank(d.Name) {
		return ""
	}

	key := d.Name
	if len(d.Options) > 0 && isSubCommand(d.Options[0]) {
		key += "_" + d.Options[0].Name

		if nested := d.Options[0].Options; len(nested) > 0 && isSubCommand(nested[0]) {
			key += "_" + nested[0].Name
		}
	}

	return strings.ToUpper(key)
}

// ConfigKey returns the configuration key of a command's canned response.
func ConfigKey(commandKey string) string {
	return CommandKeyPrefix + commandKey
}

// isSubCommand distinguishes sub-command options from value options
// (strings, integers, users, etc.), whose types are greater than 2.
func isSubCommand(o InteractionOption) bool {
	return !isBlank(o.Name) && o.Type <= int(discordgo.ApplicationCommandOptionSubCommandGroup)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
