package codec

import (
	"strconv"
	"time"

	"github.com/nbd-wtf/go-nostr"

	"github.com/0xrinegade/4ochan/shared/domain"
)

type boardContent struct {
	ShortName   string `json:"shortName"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type threadContent struct {
	Title   *string        `json:"title"`
	Content string         `json:"content"`
	Images  []string       `json:"images"`
	Media   []domain.Media `json:"media"`
}

type postContent struct {
	Content *string        `json:"content"`
	Images  []string       `json:"images"`
	Media   []domain.Media `json:"media"`
}

type subscriptionContent struct {
	NotifyOnReplies  bool  `json:"notifyOnReplies"`
	NotifyOnMentions bool  `json:"notifyOnMentions"`
	CreatedAt        int64 `json:"createdAt"`
}

type notificationContent struct {
	Title     *string `json:"title"`
	Message   string  `json:"message"`
	CreatedAt int64   `json:"createdAt"`
	Read      bool    `json:"read"`
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func eventTag(id, marker string) nostr.Tag {
	return nostr.Tag{tagEvent, id, "", marker}
}

// attachmentTags repeats images and media as tags for clients that never parse content.
func attachmentTags(images []string, media []domain.Media) nostr.Tags {
	tags := nostr.Tags{}
	for _, url := range images {
		tags = append(tags, nostr.Tag{tagImage, url})
	}
	for _, m := range media {
		tags = append(tags, nostr.Tag{tagMedia, m.URL, m.Type, m.MimeType})
	}
	return tags
}

func (c *Codec) EncodeBoard(d domain.BoardCreationData) (nostr.Event, error) {
	return c.seal(KindBoard, nil, boardContent{
		ShortName:   d.ShortName,
		Name:        d.Name,
		Description: d.Description,
	})
}

func (c *Codec) EncodeThread(d domain.ThreadCreationData) (nostr.Event, error) {
	title := d.Title
	tags := nostr.Tags{
		eventTag(d.BoardId, markerRoot),
		nostr.Tag{tagBoard, d.BoardId},
	}
	tags = append(tags, attachmentTags(d.Images, d.Media)...)
	return c.seal(KindThread, tags, threadContent{
		Title:   &title,
		Content: d.Content,
		Images:  nonNil(d.Images),
		Media:   nonNil(d.Media),
	})
}

func (c *Codec) EncodePost(d domain.PostCreationData) (nostr.Event, error) {
	text := d.Content
	tags := nostr.Tags{eventTag(d.ThreadId, markerRoot)}
	for _, ref := range d.References {
		tags = append(tags, eventTag(ref, markerReply))
	}
	tags = append(tags, attachmentTags(d.Images, d.Media)...)
	return c.seal(KindPost, tags, postContent{
		Content: &text,
		Images:  nonNil(d.Images),
		Media:   nonNil(d.Media),
	})
}

func (c *Codec) EncodeSubscription(threadId domain.ThreadId, notifyOnReplies, notifyOnMentions bool, createdAt time.Time) (nostr.Event, error) {
	tags := nostr.Tags{eventTag(threadId, markerRoot)}
	return c.seal(KindSubscription, tags, subscriptionContent{
		NotifyOnReplies:  notifyOnReplies,
		NotifyOnMentions: notifyOnMentions,
		CreatedAt:        createdAt.Unix(),
	})
}

func (c *Codec) EncodeNotification(n domain.Notification) (nostr.Event, error) {
	title := n.Title
	tags := nostr.Tags{
		nostr.Tag{tagPubkey, n.RecipientPubkey},
		eventTag(n.ThreadId, markerRoot),
	}
	if n.PostId != "" {
		tags = append(tags, eventTag(n.PostId, markerMention))
	}
	return c.seal(KindNotification, tags, notificationContent{
		Title:     &title,
		Message:   n.Message,
		CreatedAt: n.CreatedAt.Unix(),
		Read:      n.Read,
	})
}

// EncodeRetraction asks relays to drop an earlier event of ours.
func (c *Codec) EncodeRetraction(eventId string, kind int, reason string) (nostr.Event, error) {
	tags := nostr.Tags{
		nostr.Tag{tagEvent, eventId},
		nostr.Tag{tagKind, strconv.Itoa(kind)},
	}
	return c.seal(KindDeletion, tags, reason)
}
