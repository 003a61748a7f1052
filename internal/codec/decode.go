package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nbd-wtf/go-nostr"

	"github.com/0xrinegade/4ochan/shared/domain"
	"github.com/0xrinegade/4ochan/shared/errors"
)

func malformed(ev *nostr.Event, format string, args ...any) error {
	return fmt.Errorf("%w %s (kind %d): %s", errors.ErrMalformedEvent, ev.ID, ev.Kind, fmt.Sprintf(format, args...))
}

func unmarshalContent(ev *nostr.Event, kind int, v any) error {
	if ev.Kind != kind {
		return malformed(ev, "expected kind %d", kind)
	}
	if err := json.Unmarshal([]byte(ev.Content), v); err != nil {
		return malformed(ev, "content is not valid json: %v", err)
	}
	return nil
}

// eventRef returns the first e tag carrying marker. With marker root it also accepts
// an unmarked first e tag, the positional form older clients emit.
func eventRef(ev *nostr.Event, marker string) string {
	var positional string
	for _, tag := range ev.Tags {
		if len(tag) < 2 || tag[0] != tagEvent {
			continue
		}
		if len(tag) >= 4 && tag[3] == marker {
			return tag[1]
		}
		if positional == "" && len(tag) < 4 {
			positional = tag[1]
		}
	}
	if marker == markerRoot {
		return positional
	}
	return ""
}

func eventRefs(ev *nostr.Event, marker string) []string {
	refs := []string{}
	for _, tag := range ev.Tags {
		if len(tag) >= 4 && tag[0] == tagEvent && tag[3] == marker {
			refs = append(refs, tag[1])
		}
	}
	return refs
}

func firstTagValue(ev *nostr.Event, name string) string {
	for _, tag := range ev.Tags {
		if len(tag) >= 2 && tag[0] == name {
			return tag[1]
		}
	}
	return ""
}

// tagAttachments recovers images and media from tags, for events whose content lacks them.
func tagAttachments(ev *nostr.Event) ([]string, []domain.Media) {
	images := []string{}
	media := []domain.Media{}
	for _, tag := range ev.Tags {
		switch {
		case len(tag) >= 2 && tag[0] == tagImage:
			images = append(images, tag[1])
		case len(tag) >= 2 && tag[0] == tagMedia:
			m := domain.Media{URL: tag[1]}
			if len(tag) >= 3 {
				m.Type = tag[2]
			}
			if len(tag) >= 4 {
				m.MimeType = tag[3]
			}
			media = append(media, m)
		}
	}
	return images, media
}

func attachments(ev *nostr.Event, images []string, media []domain.Media) ([]string, []domain.Media) {
	tagImages, tagMedia := tagAttachments(ev)
	if len(images) == 0 {
		images = tagImages
	}
	if len(media) == 0 {
		media = tagMedia
	}
	return images, media
}

func timeOr(unix int64, fallback nostr.Timestamp) time.Time {
	if unix > 0 {
		return time.Unix(unix, 0)
	}
	return fallback.Time()
}

func DecodeBoard(ev *nostr.Event) (domain.Board, error) {
	var c boardContent
	if err := unmarshalContent(ev, KindBoard, &c); err != nil {
		return domain.Board{}, err
	}
	if c.ShortName == "" {
		return domain.Board{}, malformed(ev, "missing shortName")
	}
	return domain.Board{
		Id:          ev.ID,
		ShortName:   c.ShortName,
		Name:        c.Name,
		Description: c.Description,
	}, nil
}

func DecodeThread(ev *nostr.Event) (domain.Thread, error) {
	var c threadContent
	if err := unmarshalContent(ev, KindThread, &c); err != nil {
		return domain.Thread{}, err
	}
	if c.Title == nil {
		return domain.Thread{}, malformed(ev, "missing title")
	}
	boardId := firstTagValue(ev, tagBoard)
	if boardId == "" {
		boardId = eventRef(ev, markerRoot)
	}
	if boardId == "" {
		return domain.Thread{}, malformed(ev, "missing board reference")
	}
	images, media := attachments(ev, c.Images, c.Media)
	created := ev.CreatedAt.Time()
	return domain.Thread{
		Id:            ev.ID,
		BoardId:       boardId,
		Title:         *c.Title,
		Content:       c.Content,
		Images:        images,
		Media:         media,
		AuthorPubkey:  ev.PubKey,
		CreatedAt:     created,
		LastReplyTime: created,
	}, nil
}

// DecodePost rebuilds the reply graph from reply-marked e tags only.
func DecodePost(ev *nostr.Event) (domain.Post, error) {
	var c postContent
	if err := unmarshalContent(ev, KindPost, &c); err != nil {
		return domain.Post{}, err
	}
	if c.Content == nil {
		return domain.Post{}, malformed(ev, "missing content")
	}
	threadId := eventRef(ev, markerRoot)
	if threadId == "" {
		return domain.Post{}, malformed(ev, "missing thread reference")
	}
	images, media := attachments(ev, c.Images, c.Media)
	return domain.Post{
		Id:           ev.ID,
		ThreadId:     threadId,
		Content:      *c.Content,
		AuthorPubkey: ev.PubKey,
		CreatedAt:    ev.CreatedAt.Time(),
		Images:       images,
		Media:        media,
		References:   eventRefs(ev, markerReply),
	}, nil
}

func DecodeSubscription(ev *nostr.Event) (domain.ThreadSubscription, error) {
	var c subscriptionContent
	if err := unmarshalContent(ev, KindSubscription, &c); err != nil {
		return domain.ThreadSubscription{}, err
	}
	threadId := eventRef(ev, markerRoot)
	if threadId == "" {
		return domain.ThreadSubscription{}, malformed(ev, "missing thread reference")
	}
	return domain.ThreadSubscription{
		Id:               ev.ID,
		ThreadId:         threadId,
		NotifyOnReplies:  c.NotifyOnReplies,
		NotifyOnMentions: c.NotifyOnMentions,
		CreatedAt:        timeOr(c.CreatedAt, ev.CreatedAt),
	}, nil
}

func DecodeNotification(ev *nostr.Event) (domain.Notification, error) {
	var c notificationContent
	if err := unmarshalContent(ev, KindNotification, &c); err != nil {
		return domain.Notification{}, err
	}
	if c.Title == nil {
		return domain.Notification{}, malformed(ev, "missing title")
	}
	recipient := firstTagValue(ev, tagPubkey)
	threadId := eventRef(ev, markerRoot)
	if recipient == "" || threadId == "" {
		return domain.Notification{}, malformed(ev, "missing recipient or thread reference")
	}
	return domain.Notification{
		Id:              ev.ID,
		RecipientPubkey: recipient,
		Title:           *c.Title,
		Message:         c.Message,
		ThreadId:        threadId,
		PostId:          eventRef(ev, markerMention),
		Read:            c.Read,
		CreatedAt:       timeOr(c.CreatedAt, ev.CreatedAt),
	}, nil
}
