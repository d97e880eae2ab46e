package commands

import (
	"errors"

	"github.com/bwmarrin/discordgo"

	"github.com/EasterCompany/dex-vmt-service/menu"
	"github.com/EasterCompany/dex-vmt-service/utils"
)

const (
	msgNotYourMenu = "This isn't your menu!"
	msgMenuExpired = "This menu has expired."
)

func (h *Handler) handleLanguages(i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) {
	pages := languagePages(h.catalog, h.perPage, h.commandID(Transcribe))
	h.openMenu(i, pages, boolOption(data.Options, optionPublic))
}

func (h *Handler) handleHelp(i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) {
	pages := helpPages(h.commandID(Transcribe), h.commandID(Languages), h.commandID(Help))
	h.openMenu(i, pages, boolOption(data.Options, optionPublic))
}

// openMenu registers a menu owned by the invoking user and posts its first
// page.
func (h *Handler) openMenu(i *discordgo.Interaction, pages []*discordgo.MessageEmbed, public bool) {
	user := actor(i)
	m, err := h.menus.Open(user.ID, pages)
	if err != nil {
		h.logger.Errorw("could not open menu", "user_id", user.ID, "error", err)
		h.reply(i, "There is nothing to show.")
		return
	}
	id := m.State.ID

	h.mu.Lock()
	h.origins[id] = i
	h.mu.Unlock()

	err = h.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{pageEmbed(m)},
			Components: navigation(m.State),
			Flags:      visibility(public),
		},
	})
	if err != nil {
		h.logger.Errorw("could not post menu", "menu_id", id, "error", err)
		h.menus.Discard(id)
		h.mu.Lock()
		delete(h.origins, id)
		h.mu.Unlock()
		return
	}
	utils.IncrementMenusOpened()
}

// handleComponent routes a button press to its menu.
func (h *Handler) handleComponent(i *discordgo.Interaction, data discordgo.MessageComponentInteractionData) {
	id, dir, ok := parseCustomID(data.CustomID)
	if !ok {
		h.logger.Warnw("unknown component", "custom_id", data.CustomID)
		return
	}

	user := actor(i)
	m, err := h.menus.Navigate(id, user.ID, dir)
	switch {
	case errors.Is(err, menu.ErrNotOwner):
		h.reply(i, msgNotYourMenu)
		return
	case errors.Is(err, menu.ErrExpired):
		h.reply(i, msgMenuExpired)
		return
	case errors.Is(err, menu.ErrNoPage):
		h.acknowledge(i)
		return
	case err != nil:
		h.logger.Errorw("could not navigate menu", "menu_id", id, "error", err)
		h.acknowledge(i)
		return
	}

	err = h.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{pageEmbed(m)},
			Components: navigation(m.State),
		},
	})
	if err != nil {
		h.logger.Errorw("could not update menu", "menu_id", id, "error", err)
	}
}

// acknowledge accepts a button press without changing the message.
func (h *Handler) acknowledge(i *discordgo.Interaction) {
	err := h.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		h.logger.Warnw("could not acknowledge component", "interaction_id", i.ID, "error", err)
	}
}

// onMenuExpired disables the buttons of an expired menu.
func (h *Handler) onMenuExpired(m menu.Menu[*discordgo.MessageEmbed]) {
	id := m.State.ID
	h.mu.Lock()
	origin := h.origins[id]
	delete(h.origins, id)
	h.mu.Unlock()

	utils.IncrementMenusExpired()
	if origin == nil {
		return
	}
	components := navigation(m.State)
	if _, err := h.api.InteractionResponseEdit(origin, &discordgo.WebhookEdit{Components: &components}); err != nil {
		h.logger.Debugw("could not disable expired menu", "menu_id", id, "error", err)
	}
}
