package commands

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/EasterCompany/dex-vmt-service/language"
	"github.com/EasterCompany/dex-vmt-service/menu"
	"github.com/EasterCompany/dex-vmt-service/selection"
	"github.com/EasterCompany/dex-vmt-service/transcribe"
	"github.com/EasterCompany/dex-vmt-service/translate"
	"github.com/EasterCompany/dex-vmt-service/utils"
	"github.com/EasterCompany/dex-vmt-service/voicenote"
	"github.com/EasterCompany/dex-vmt-service/worker"
)

// DefaultLanguagesPerPage is the page size of the language menu.
const DefaultLanguagesPerPage = 18

// API is the part of *discordgo.Session the handler calls.
type API interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// Transcriber runs the transcription pipeline for one note.
type Transcriber interface {
	TranscribeNote(ctx context.Context, note voicenote.Note) transcribe.Result
}

// Translator translates a transcript. ok is false when no translation is
// available.
type Translator interface {
	Translate(ctx context.Context, text, targetCode string) (translate.Result, bool)
}

// Submitter queues work off the gateway goroutine.
type Submitter interface {
	Submit(ctx context.Context, job worker.Job) error
}

// Deps are the collaborators of a Handler.
type Deps struct {
	API         API
	Selections  *selection.Store
	Validator   *voicenote.Validator
	Catalog     *language.Catalog
	Transcriber Transcriber
	Translator  Translator
	Pool        Submitter
	Logger      *zap.SugaredLogger

	MenuTimeout      time.Duration
	LanguagesPerPage int
}

// Handler routes interactions to the command implementations.
type Handler struct {
	api         API
	selections  *selection.Store
	validator   *voicenote.Validator
	catalog     *language.Catalog
	transcriber Transcriber
	translator  Translator
	pool        Submitter
	logger      *zap.SugaredLogger
	perPage     int

	menus *menu.Registry[*discordgo.MessageEmbed]

	mu         sync.RWMutex
	commandIDs map[string]string
	// origins holds the interaction that posted each live menu, used to
	// disable its buttons on expiry.
	origins map[string]*discordgo.Interaction
}

// NewHandler creates a new command handler
func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	perPage := d.LanguagesPerPage
	if perPage <= 0 {
		perPage = DefaultLanguagesPerPage
	}
	validator := d.Validator
	if validator == nil {
		validator = voicenote.NewValidator(0)
	}
	h := &Handler{
		api:         d.API,
		selections:  d.Selections,
		validator:   validator,
		catalog:     d.Catalog,
		transcriber: d.Transcriber,
		translator:  d.Translator,
		pool:        d.Pool,
		logger:      logger,
		perPage:     perPage,
		commandIDs:  make(map[string]string),
		origins:     make(map[string]*discordgo.Interaction),
	}
	h.menus = menu.NewRegistry(d.MenuTimeout, h.onMenuExpired)
	return h
}

// OnInteraction is the discordgo event handler.
func (h *Handler) OnInteraction(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
	h.Handle(ic.Interaction)
}

// Handle dispatches one interaction.
func (h *Handler) Handle(i *discordgo.Interaction) {
	utils.IncrementInteractions()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		switch data.Name {
		case SelectVoiceMessage:
			h.handleSelect(i, data)
		case Transcribe:
			h.handleTranscribe(i, data)
		case Languages:
			h.handleLanguages(i, data)
		case Help:
			h.handleHelp(i, data)
		default:
			h.logger.Warnw("unknown command", "name", data.Name)
		}
	case discordgo.InteractionApplicationCommandAutocomplete:
		h.handleAutocomplete(i, i.ApplicationCommandData())
	case discordgo.InteractionMessageComponent:
		h.handleComponent(i, i.MessageComponentData())
	}
}

// Close stops all menu timers.
func (h *Handler) Close() {
	h.menus.Close()
	h.mu.Lock()
	clear(h.origins)
	h.mu.Unlock()
}

// actor returns the invoking user, from the member in guilds and the user
// elsewhere.
func actor(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	if i.User != nil {
		return i.User
	}
	return &discordgo.User{}
}

func boolOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) bool {
	for _, o := range opts {
		if o.Name == name && o.Type == discordgo.ApplicationCommandOptionBoolean {
			return o.BoolValue()
		}
	}
	return false
}

func stringOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) (string, bool) {
	for _, o := range opts {
		if o.Name == name && o.Type == discordgo.ApplicationCommandOptionString {
			return o.StringValue(), true
		}
	}
	return "", false
}

func visibility(public bool) discordgo.MessageFlags {
	if public {
		return 0
	}
	return discordgo.MessageFlagsEphemeral
}

// reply sends a private text response.
func (h *Handler) reply(i *discordgo.Interaction, content string) {
	err := h.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		h.logger.Errorw("could not respond to interaction", "interaction_id", i.ID, "error", err)
	}
}

// followup sends a message after a deferred response.
func (h *Handler) followup(i *discordgo.Interaction, params *discordgo.WebhookParams) {
	if _, err := h.api.FollowupMessageCreate(i, true, params); err != nil {
		h.logger.Errorw("could not send follow-up", "interaction_id", i.ID, "error", err)
	}
}

func (h *Handler) followupText(i *discordgo.Interaction, content string) {
	h.followup(i, &discordgo.WebhookParams{Content: content, Flags: discordgo.MessageFlagsEphemeral})
}
