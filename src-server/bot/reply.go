package bot

import (
	"log/slog"
	"sync"

	"showdownbot/src-server/discord"

	"github.com/bwmarrin/discordgo"
)

// WriteResult tells whether a reply write reached Discord. Callers may
// ignore it; a failed write has already been logged.
type WriteResult int

const (
	Delivered WriteResult = iota
	Failed
)

func (r WriteResult) String() string {
	if r == Delivered {
		return "delivered"
	}
	return "failed"
}

type replyState int

const (
	unsentEphemeral replyState = iota
	unsentPublic
	sentEphemeral
	sentPublic
	// an ephemeral reply was sent and then the reply was made public; Discord
	// can't change the flag of a sent message, so every later write is a
	// new follow-up message
	widenedAfterSend
)

// Reply owns the reply lifecycle of one interaction: the first write
// responds to the interaction, later writes edit that response, and once a
// sent ephemeral reply is made public later writes become follow-ups.
type Reply struct {
	mu          sync.Mutex
	session     discord.Session
	interaction *discordgo.Interaction
	log         *slog.Logger
	observer    Observer
	state       replyState

	components []discordgo.MessageComponent
	embeds     []*discordgo.MessageEmbed
}

// NewReply starts an unsent, ephemeral reply. logger and observer may be nil.
func NewReply(s discord.Session, i *discordgo.Interaction, logger *slog.Logger, observer Observer) *Reply {
	if logger == nil {
		logger = slog.Default()
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &Reply{
		session:     s,
		interaction: i,
		log:         logger,
		observer:    observer,
		state:       unsentEphemeral,
	}
}

// User is the user who triggered the interaction.
func (r *Reply) User() *discordgo.User {
	return discord.InteractionUser(r.interaction)
}

// Written reports whether an initial response has been delivered.
func (r *Reply) Written() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state >= sentEphemeral
}

// Ephemeral reports the visibility the next write will use.
func (r *Reply) Ephemeral() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == unsentEphemeral || r.state == sentEphemeral
}

// MakePublic widens the reply. Visibility can't be narrowed again.
func (r *Reply) MakePublic() {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.state {
	case unsentEphemeral:
		r.state = unsentPublic
	case sentEphemeral:
		r.state = widenedAfterSend
	}
}

// WriteText delivers content through whichever primitive the current state
// calls for. Failures are logged and reported through the result only.
func (r *Reply) WriteText(content string) WriteResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	switch r.state {
	case unsentEphemeral, unsentPublic:
		data := &discordgo.InteractionResponseData{
			Content:    content,
			Components: r.components,
			Embeds:     r.embeds,
		}
		if r.state == unsentEphemeral {
			data.Flags = discordgo.MessageFlagsEphemeral
		}
		err = r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: data,
		})
		if err == nil {
			if r.state == unsentEphemeral {
				r.state = sentEphemeral
			} else {
				r.state = sentPublic
			}
		}
	case sentEphemeral, sentPublic:
		edit := &discordgo.WebhookEdit{Content: &content}
		if r.components != nil {
			components := r.components
			edit.Components = &components
		}
		if r.embeds != nil {
			embeds := r.embeds
			edit.Embeds = &embeds
		}
		_, err = r.session.InteractionResponseEdit(r.interaction, edit)
	case widenedAfterSend:
		_, err = r.session.FollowupMessageCreate(r.interaction, true, &discordgo.WebhookParams{
			Content:    content,
			Components: r.components,
			Embeds:     r.embeds,
		})
	}

	if err != nil {
		r.log.Error("unable to write text", "interaction", r.interaction.ID, "error", err)
		r.observer.ReplyFailed()
		return Failed
	}
	return Delivered
}

func (r *Reply) Wait(content string) WriteResult {
	return r.WriteText(":hourglass_flowing_sand: " + content)
}

func (r *Reply) Please(content string) WriteResult {
	return r.WriteText(":pleading_face: " + content)
}

func (r *Reply) Ok(content string) WriteResult {
	return r.WriteText(":white_check_mark: " + content)
}

func (r *Reply) Fail(content string) WriteResult {
	return r.WriteText(":x: " + content)
}

// WithComponents replaces the components sent with every following write.
func (r *Reply) WithComponents(components ...discordgo.MessageComponent) *Reply {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components = components
	return r
}

// WithEmbeds replaces the embeds sent with every following write.
func (r *Reply) WithEmbeds(embeds ...*discordgo.MessageEmbed) *Reply {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.embeds = embeds
	return r
}

// WithLink replaces the embeds with a single linked embed.
func (r *Reply) WithLink(title, description, url string) *Reply {
	return r.WithEmbeds(&discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		URL:         url,
	})
}
