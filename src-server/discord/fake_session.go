package discord

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// FakeSession is a programmable stub of Session. Every method records its
// name in the trace and delegates to the matching Func field when set.
type FakeSession struct {
	mu    sync.Mutex
	trace []string

	// Captured payloads, in call order.
	Responses  []*discordgo.InteractionResponse
	Edits      []*discordgo.WebhookEdit
	FollowUps  []*discordgo.WebhookParams
	RolesAdded []string // "<guild>/<user>/<role>"
	Replies    []string

	InteractionRespondFunc      func(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEditFunc func(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreateFunc   func(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	GuildMemberFunc             func(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMemberRoleAddFunc      func(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	ChannelMessageSendReplyFunc func(channelID, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var _ Session = (*FakeSession)(nil)

func NewFakeSession() *FakeSession {
	return &FakeSession{trace: []string{}}
}

func (f *FakeSession) record(step string) {
	f.trace = append(f.trace, step)
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeSession) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// LastContent returns the content of the most recent reply primitive call.
func (f *FakeSession) LastContent() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.trace) == 0 {
		return ""
	}
	switch f.trace[len(f.trace)-1] {
	case "InteractionRespond":
		if r := f.Responses[len(f.Responses)-1]; r.Data != nil {
			return r.Data.Content
		}
	case "InteractionResponseEdit":
		if e := f.Edits[len(f.Edits)-1]; e.Content != nil {
			return *e.Content
		}
	case "FollowupMessageCreate":
		return f.FollowUps[len(f.FollowUps)-1].Content
	case "ChannelMessageSendReply":
		return f.Replies[len(f.Replies)-1]
	}
	return ""
}

func (f *FakeSession) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	f.record("InteractionRespond")
	f.Responses = append(f.Responses, resp)
	fn := f.InteractionRespondFunc
	f.mu.Unlock()
	if fn != nil {
		return fn(interaction, resp, options...)
	}
	return nil
}

func (f *FakeSession) InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	f.record("InteractionResponseEdit")
	f.Edits = append(f.Edits, newresp)
	fn := f.InteractionResponseEditFunc
	f.mu.Unlock()
	if fn != nil {
		return fn(interaction, newresp, options...)
	}
	return &discordgo.Message{ID: "fake-msg-123"}, nil
}

func (f *FakeSession) FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	f.record("FollowupMessageCreate")
	f.FollowUps = append(f.FollowUps, data)
	fn := f.FollowupMessageCreateFunc
	f.mu.Unlock()
	if fn != nil {
		return fn(interaction, wait, data, options...)
	}
	return &discordgo.Message{ID: "fake-followup-123"}, nil
}

func (f *FakeSession) GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error) {
	f.mu.Lock()
	f.record("GuildMember")
	fn := f.GuildMemberFunc
	f.mu.Unlock()
	if fn != nil {
		return fn(guildID, userID, options...)
	}
	return &discordgo.Member{GuildID: guildID, User: &discordgo.User{ID: userID}}, nil
}

func (f *FakeSession) GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	f.record("GuildMemberRoleAdd")
	f.RolesAdded = append(f.RolesAdded, guildID+"/"+userID+"/"+roleID)
	fn := f.GuildMemberRoleAddFunc
	f.mu.Unlock()
	if fn != nil {
		return fn(guildID, userID, roleID, options...)
	}
	return nil
}

func (f *FakeSession) ChannelMessageSendReply(channelID, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	f.record("ChannelMessageSendReply")
	f.Replies = append(f.Replies, content)
	fn := f.ChannelMessageSendReplyFunc
	f.mu.Unlock()
	if fn != nil {
		return fn(channelID, content, reference, options...)
	}
	return &discordgo.Message{ID: "fake-msg-123", ChannelID: channelID, Content: content, MessageReference: reference}, nil
}
