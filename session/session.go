package session

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/EasterCompany/dex-vmt-service/utils"
)

// Intents needed by the service. Interactions arrive regardless of intents;
// guild events keep the state cache populated for channel lookups.
const Intents = discordgo.IntentsGuilds | discordgo.IntentsDirectMessages

// NewSession creates a new Discord session
func NewSession(token string) (*discordgo.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("could not create session: empty bot token")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("could not create session: %w", err)
	}

	session.Identify.Intents = Intents
	session.UserAgent = fmt.Sprintf("DiscordBot (https://github.com/EasterCompany/dex-vmt-service, %s)", utils.GetVersion().Version)
	session.ShouldReconnectOnError = true
	return session, nil
}
