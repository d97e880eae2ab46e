// Package commands is the Discord interaction layer: command registration,
// routing, and the embeds and buttons shown to users.
package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Command names as registered with Discord.
const (
	SelectVoiceMessage = "Select Voice Message"
	Transcribe         = "transcribe"
	Languages          = "languages"
	Help               = "help"
)

const (
	optionTranslateTo = "translate_to"
	optionPublic      = "public"
)

var (
	installTypes = []discordgo.ApplicationIntegrationType{
		discordgo.ApplicationIntegrationGuildInstall,
		discordgo.ApplicationIntegrationUserInstall,
	}
	contexts = []discordgo.InteractionContextType{
		discordgo.InteractionContextGuild,
		discordgo.InteractionContextBotDM,
		discordgo.InteractionContextPrivateChannel,
	}
)

func publicOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Name:        optionPublic,
		Description: "Should everyone see this response? (default: false)",
	}
}

// Definitions returns every application command the bot registers.
func Definitions() []*discordgo.ApplicationCommand {
	cmds := []*discordgo.ApplicationCommand{
		{
			Type: discordgo.MessageApplicationCommand,
			Name: SelectVoiceMessage,
		},
		{
			Type:        discordgo.ChatApplicationCommand,
			Name:        Transcribe,
			Description: "Transcribe the selected voice message",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         optionTranslateTo,
					Description:  "Language code to translate to (e.g., EN-US, ES, FR)",
					Autocomplete: true,
				},
				publicOption(),
			},
		},
		{
			Type:        discordgo.ChatApplicationCommand,
			Name:        Languages,
			Description: "List all available language codes for translation",
			Options:     []*discordgo.ApplicationCommandOption{publicOption()},
		},
		{
			Type:        discordgo.ChatApplicationCommand,
			Name:        Help,
			Description: "Show all available commands and features",
			Options:     []*discordgo.ApplicationCommandOption{publicOption()},
		},
	}
	for _, c := range cmds {
		c.IntegrationTypes = &installTypes
		c.Contexts = &contexts
	}
	return cmds
}

// Register overwrites the application's commands and remembers their IDs
// for command mentions. An empty guildID registers globally.
func (h *Handler) Register(appID, guildID string) error {
	created, err := h.api.ApplicationCommandBulkOverwrite(appID, guildID, Definitions())
	if err != nil {
		return fmt.Errorf("could not register commands: %w", err)
	}

	h.mu.Lock()
	for _, c := range created {
		if c != nil {
			h.commandIDs[c.Name] = c.ID
		}
	}
	h.mu.Unlock()

	h.logger.Infow("registered commands", "count", len(created), "guild_id", guildID)
	return nil
}

// commandID returns the registered ID for name, or "" if unknown.
func (h *Handler) commandID(name string) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.commandIDs[name]
}

// mention formats a clickable slash command mention. Discord needs an ID;
// "0" renders as plain text when the command was never registered.
func mention(name, id string) string {
	if id == "" {
		id = "0"
	}
	return fmt.Sprintf("</%s:%s>", name, id)
}
