package commands

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/EasterCompany/dex-vmt-service/language"
	"github.com/EasterCompany/dex-vmt-service/menu"
)

const (
	menuColor       = 0x7BB2D9
	transcriptColor = 0xACD8AA

	maxFieldValue = 1024
	maxTitle      = 256
	maxContent    = 2000
	maxChoiceName = 100
)

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// transcriptEmbed renders a transcript and an optional translation.
func transcriptEmbed(author, requester, text, targetCode, translated string) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Color: transcriptColor,
		Title: truncate(author+"'s Voice Message", maxTitle),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Transcription", Value: truncate(text, maxFieldValue)},
		},
	}
	if targetCode != "" && translated != "" {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("Translation (Into %s)", strings.ToUpper(targetCode)),
			Value: truncate(translated, maxFieldValue),
		})
	}
	if requester != "" {
		e.Footer = &discordgo.MessageEmbedFooter{Text: "Requested by " + requester}
	}
	return e
}

// languagePages renders the language list, sorted by name, perPage per page.
func languagePages(c *language.Catalog, perPage int, transcribeID string) []*discordgo.MessageEmbed {
	desc := "Use these codes with /transcribe"
	if transcribeID != "" {
		desc = "Use these codes with " + mention(Transcribe, transcribeID)
	}

	chunks := menu.Paginate(c.SortedByName(), perPage)
	pages := make([]*discordgo.MessageEmbed, 0, len(chunks))
	for _, chunk := range chunks {
		lines := make([]string, len(chunk))
		for i, e := range chunk {
			lines[i] = fmt.Sprintf("**%s** • %s", e.Name, e.Code)
		}
		pages = append(pages, &discordgo.MessageEmbed{
			Title:       "Translation Languages",
			Description: desc,
			Color:       menuColor,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "", Value: truncate(strings.Join(lines, "\n"), maxFieldValue)},
			},
		})
	}
	return pages
}

// helpPages renders the usage page and the credits page.
func helpPages(transcribeID, languagesID, helpID string) []*discordgo.MessageEmbed {
	transcribe := mention(Transcribe, transcribeID)
	usage := &discordgo.MessageEmbed{
		Title:       "vmt Help",
		Description: "Transcribe + Translate Discord Voice Messages",
		Color:       menuColor,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "How to Use",
				Value: "**1.** Right-click/hold down on any Voice Message\n" +
					"**2.** Navigate to **Apps > Select Voice Message**\n" +
					"**3.** Use " + transcribe + "\n" +
					"**4.** Provide a language to translate into (optional)",
			},
			{
				Name: "Commands",
				Value: transcribe + " Transcribe selected voice message\n" +
					mention(Languages, languagesID) + " View available languages\n" +
					mention(Help, helpID) + " Show this menu",
			},
		},
	}
	credits := &discordgo.MessageEmbed{
		Title: "Credits",
		Color: menuColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Authors", Value: "[@dromzeh](https://github.com/dromzeh)"},
			{Name: "Contributions", Value: "[@strazto](https://instagram.com/strazto)"},
			{Name: "Operated By", Value: "Originoid LTD"},
			{Name: "Repository", Value: "[github.com/originoidco/vmt](https://github.com/originoidco/vmt)"},
		},
	}
	return []*discordgo.MessageEmbed{usage, credits}
}

// pageEmbed copies the current page and stamps the page footer on it.
func pageEmbed(m menu.Menu[*discordgo.MessageEmbed]) *discordgo.MessageEmbed {
	e := *m.Page()
	e.Footer = &discordgo.MessageEmbedFooter{Text: m.State.Render().Footer}
	return &e
}

func customID(menuID string, d menu.Direction) string {
	return "menu:" + menuID + ":" + d.String()
}

// parseCustomID splits "menu:<id>:prev|next".
func parseCustomID(id string) (string, menu.Direction, bool) {
	parts := strings.Split(id, ":")
	if len(parts) != 3 || parts[0] != "menu" || parts[1] == "" {
		return "", 0, false
	}
	d, ok := menu.ParseDirection(parts[2])
	if !ok {
		return "", 0, false
	}
	return parts[1], d, true
}

// navigation renders the previous/next buttons for a menu state.
func navigation(st menu.State) []discordgo.MessageComponent {
	v := st.Render()
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "◀",
					Style:    discordgo.PrimaryButton,
					CustomID: customID(st.ID, menu.Previous),
					Disabled: !v.PreviousEnabled,
				},
				discordgo.Button{
					Label:    "▶",
					Style:    discordgo.PrimaryButton,
					CustomID: customID(st.ID, menu.Next),
					Disabled: !v.NextEnabled,
				},
			},
		},
	}
}

func choices(entries []language.Entry) []*discordgo.ApplicationCommandOptionChoice {
	out := make([]*discordgo.ApplicationCommandOptionChoice, len(entries))
	for i, e := range entries {
		out[i] = &discordgo.ApplicationCommandOptionChoice{
			Name:  truncate(e.Code+" - "+e.Name, maxChoiceName),
			Value: e.Code,
		}
	}
	return out
}

func invalidCodeMessage(c *language.Catalog) string {
	codes := c.Codes()
	quoted := make([]string, len(codes))
	for i, code := range codes {
		quoted[i] = "`" + code + "`"
	}
	return truncate("**Invalid language code.**\n> Valid language codes: "+strings.Join(quoted, ", "), maxContent)
}
