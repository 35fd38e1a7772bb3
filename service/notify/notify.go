package notify

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/base/log"
	"github.com/x-xyz/nftmarket/domain/notification"
)

var levelColors = map[notification.Level]int{
	notification.LevelSuccess: 0x2ecc71,
	notification.LevelError:   0xe74c3c,
	notification.LevelInfo:    0x3498db,
}

type logSink struct{}

func NewLogSink() notification.Sink {
	return &logSink{}
}

func (s *logSink) Notify(c ctx.Ctx, n notification.Notification) error {
	l := c.WithFields(log.Fields{
		"id":      n.ID,
		"level":   n.Level,
		"title":   n.Title,
		"message": n.Message,
		"tokenId": n.TokenId,
		"txHash":  n.TxHash,
	})
	if n.Level == notification.LevelError {
		l.Warn("notification")
	} else {
		l.Info("notification")
	}
	return nil
}

type embedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error)
}

type discordSink struct {
	session   embedSender
	channelId string
}

func NewDiscordSink(botKey, channelId string) (notification.Sink, error) {
	session, err := discordgo.New(fmt.Sprintf("Bot %s", botKey))
	if err != nil {
		return nil, err
	}
	return &discordSink{session, channelId}, nil
}

func (s *discordSink) Notify(c ctx.Ctx, n notification.Notification) error {
	if _, err := s.session.ChannelMessageSendEmbed(s.channelId, toEmbed(n)); err != nil {
		c.WithFields(log.Fields{
			"err":     err,
			"channel": s.channelId,
			"id":      n.ID,
		}).Error("discord.ChannelMessageSendEmbed failed")
		return err
	}
	return nil
}

func toEmbed(n notification.Notification) *discordgo.MessageEmbed {
	msg := &discordgo.MessageEmbed{
		Title:       n.Title,
		Description: n.Message,
		Color:       levelColors[n.Level],
		Timestamp:   n.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if n.TokenId != "" {
		msg.Fields = append(msg.Fields, &discordgo.MessageEmbedField{Name: "Token", Value: n.TokenId.String(), Inline: true})
	}
	if n.TxHash != "" {
		msg.Fields = append(msg.Fields, &discordgo.MessageEmbedField{Name: "Transaction", Value: string(n.TxHash)})
	}
	return msg
}

type multiSink struct {
	sinks []notification.Sink
}

// NewMultiSink delivers to every sink and returns the first failure
func NewMultiSink(sinks ...notification.Sink) notification.Sink {
	return &multiSink{sinks}
}

func (s *multiSink) Notify(c ctx.Ctx, n notification.Notification) error {
	var first error
	for _, sink := range s.sinks {
		if err := sink.Notify(c, n); err != nil && first == nil {
			first = err
		}
	}
	return first
}
