package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/EasterCompany/dex-vmt-service/language"
	"github.com/EasterCompany/dex-vmt-service/transcribe"
	"github.com/EasterCompany/dex-vmt-service/utils"
	"github.com/EasterCompany/dex-vmt-service/voicenote"
	"github.com/EasterCompany/dex-vmt-service/worker"
)

// submitTimeout bounds how long the gateway goroutine waits for queue space.
const submitTimeout = 5 * time.Second

const (
	msgNoSelection = "No voice message selected! Right-click a message and select 'Select Voice Message' first."
	msgNotAVoice   = "This message does not contain a voice message."
)

func validationMessage(err error) string {
	var exceeded *voicenote.DurationExceededError
	switch {
	case errors.Is(err, voicenote.ErrNotAVoiceNote):
		return msgNotAVoice
	case errors.As(err, &exceeded):
		return fmt.Sprintf("Voice message is too long. Maximum duration is %d seconds. This voice message is %d seconds.",
			int(exceeded.Max.Seconds()), int(exceeded.Actual.Seconds()))
	default:
		return "Could not read that voice message."
	}
}

func emptySpeechMessage(author string) string {
	return fmt.Sprintf("Could not transcribe the Voice Message from %s as the response was empty.", author)
}

func failureMessage(author string) string {
	return fmt.Sprintf("Could not transcribe the Voice Message from %s due to an error.", author)
}

func (h *Handler) transcribeRef() string {
	if id := h.commandID(Transcribe); id != "" {
		return mention(Transcribe, id)
	}
	return "/" + Transcribe
}

// handleSelect stores the targeted message as the user's selection.
func (h *Handler) handleSelect(i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) {
	var msg *discordgo.Message
	if data.Resolved != nil {
		msg = data.Resolved.Messages[data.TargetID]
	}
	note := voicenote.FromDiscord(msg)
	if err := h.validator.Validate(note); err != nil {
		h.reply(i, validationMessage(err))
		return
	}

	user := actor(i)
	h.selections.Set(user.ID, note)
	utils.IncrementSelections()
	h.logger.Infow("voice message selected", "user_id", user.ID, "message", note.Ref())

	h.reply(i, "Voice message selected! Use "+h.transcribeRef()+" to transcribe it.")
}

// handleTranscribe validates the request, defers the response and queues the
// transcription. Rejections are answered ephemerally before anything is
// posted to the channel.
func (h *Handler) handleTranscribe(i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) {
	user := actor(i)
	sel, ok := h.selections.Get(user.ID)
	if !ok {
		h.reply(i, msgNoSelection)
		return
	}
	var target string
	if raw, ok := stringOption(data.Options, optionTranslateTo); ok {
		target = language.Normalize(raw)
		if target != "" && !h.catalog.Contains(target) {
			h.reply(i, invalidCodeMessage(h.catalog))
			return
		}
	}

	if err := h.validator.Validate(sel.Note); err != nil {
		h.reply(i, validationMessage(err))
		return
	}

	public := boolOption(data.Options, optionPublic)
	err := h.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: visibility(public)},
	})
	if err != nil {
		h.logger.Errorw("could not defer transcription", "interaction_id", i.ID, "error", err)
		return
	}

	note := sel.Note
	job := worker.Job{
		Name: "transcribe " + note.Ref(),
		Run: func(ctx context.Context) {
			h.deliver(ctx, i, note, user, target, public)
		},
	}
	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()
	if err := h.pool.Submit(ctx, job); err != nil {
		h.logger.Errorw("could not queue transcription", "message", note.Ref(), "error", err)
		h.followupText(i, failureMessage(authorName(note)))
	}
}

func authorName(n voicenote.Note) string {
	if n.AuthorName == "" {
		return "Unknown"
	}
	return n.AuthorName
}

// deliver runs on a worker: transcribe, optionally translate, then post.
func (h *Handler) deliver(ctx context.Context, i *discordgo.Interaction, note voicenote.Note, user *discordgo.User, target string, public bool) {
	author := authorName(note)
	res := h.transcriber.TranscribeNote(ctx, note)
	utils.IncrementTranscription(res.Outcome.String())

	switch res.Outcome {
	case transcribe.OutcomeEmptySpeech:
		h.followupText(i, emptySpeechMessage(author))
		return
	case transcribe.OutcomeServiceError:
		h.followupText(i, failureMessage(author))
		return
	}

	var translated string
	if target != "" && res.Text != "" && h.translator != nil {
		tr, ok := h.translator.Translate(ctx, res.Text, target)
		utils.IncrementTranslation(ok)
		if ok {
			translated = tr.Text
		}
	}

	h.followup(i, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{transcriptEmbed(author, user.Username, res.Text, target, translated)},
		Flags:  visibility(public),
	})
	h.logger.Infow("voice message transcribed",
		"message", note.Ref(),
		"user_id", user.ID,
		"target", target,
		"translated", translated != "",
	)
}

// handleAutocomplete suggests translation targets for the focused option.
func (h *Handler) handleAutocomplete(i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) {
	var query string
	for _, o := range data.Options {
		if o.Focused && o.Name == optionTranslateTo && o.Type == discordgo.ApplicationCommandOptionString {
			query = o.StringValue()
		}
	}
	err := h.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices(h.catalog.Suggest(query))},
	})
	if err != nil {
		h.logger.Warnw("could not send suggestions", "interaction_id", i.ID, "error", err)
	}
}
