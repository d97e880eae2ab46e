// Package voicenote decides whether a chat message is a voice message that
// may be transcribed.
package voicenote

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/bwmarrin/discordgo"
)

// FlagVoiceMessage is the platform flag bit carried by recorded voice messages.
const FlagVoiceMessage = 1 << 13

// DefaultMaxDuration is used when no limit is configured.
const DefaultMaxDuration = 60 * time.Second

// ErrNotAVoiceNote is returned for messages without the voice flag or without
// an attachment.
var ErrNotAVoiceNote = errors.New("voicenote: message does not contain a voice message")

// DurationExceededError reports a voice message longer than the limit.
type DurationExceededError struct {
	Actual time.Duration
	Max    time.Duration
}

func (e *DurationExceededError) Error() string {
	return fmt.Sprintf("voicenote: duration %s exceeds maximum %s", e.Actual, e.Max)
}

// Attachment is the part of a platform attachment the pipeline needs.
type Attachment struct {
	ID          string
	URL         string
	Filename    string
	ContentType string
	Size        int
	// Duration is zero when the platform did not report one.
	Duration time.Duration
}

// Note is a platform-neutral reference to a chat message.
type Note struct {
	MessageID   string
	ChannelID   string
	AuthorName  string
	Flags       int
	Attachments []Attachment
}

// HasVoiceFlag reports whether the voice-message flag bit is set.
func (n Note) HasVoiceFlag() bool {
	return n.Flags&FlagVoiceMessage != 0
}

// Clip returns the first attachment, which carries the recording.
func (n Note) Clip() (Attachment, bool) {
	if len(n.Attachments) == 0 {
		return Attachment{}, false
	}
	return n.Attachments[0], true
}

// Ref is a short identifier used in logs.
func (n Note) Ref() string {
	return n.ChannelID + "/" + n.MessageID
}

// FromDiscord maps a discordgo message to a Note.
func FromDiscord(m *discordgo.Message) Note {
	if m == nil {
		return Note{}
	}
	n := Note{
		MessageID: m.ID,
		ChannelID: m.ChannelID,
		Flags:     int(m.Flags),
	}
	if m.Author != nil {
		n.AuthorName = m.Author.Username
	}
	for _, a := range m.Attachments {
		if a == nil {
			continue
		}
		n.Attachments = append(n.Attachments, Attachment{
			ID:          a.ID,
			URL:         a.URL,
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Size:        a.Size,
			Duration:    secondsToDuration(a.DurationSecs),
		})
	}
	return n
}

func secondsToDuration(s float64) time.Duration {
	if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}

// Validator checks notes against the configured duration limit.
type Validator struct {
	MaxDuration time.Duration
}

// NewValidator returns a Validator; a non-positive max falls back to
// DefaultMaxDuration.
func NewValidator(max time.Duration) *Validator {
	if max <= 0 {
		max = DefaultMaxDuration
	}
	return &Validator{MaxDuration: max}
}

// Validate returns nil for a usable voice note, ErrNotAVoiceNote, or a
// *DurationExceededError. A note whose duration was not reported passes.
func (v *Validator) Validate(n Note) error {
	clip, ok := n.Clip()
	if !ok || !n.HasVoiceFlag() {
		return ErrNotAVoiceNote
	}
	if clip.Duration > 0 && clip.Duration > v.MaxDuration {
		return &DurationExceededError{Actual: clip.Duration, Max: v.MaxDuration}
	}
	return nil
}
