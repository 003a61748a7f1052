// Package codec maps signed relay events to boards, threads, posts, subscriptions
// and notifications and back. It is the only package that knows the kind and tag schema.
package codec

import (
	"github.com/nbd-wtf/go-nostr"
)

// Application kinds live outside the ranges standard clients render.
const (
	KindBoard        = 9901
	KindThread       = 9902
	KindPost         = 9903
	KindSubscription = 9904
	KindNotification = 9905

	// KindDeletion retracts a previously published event.
	KindDeletion = 5
)

const (
	tagEvent  = "e"
	tagPubkey = "p"
	tagKind   = "k"
	tagBoard  = "board"
	tagImage  = "image"
	tagMedia  = "media"

	markerRoot    = "root"
	markerReply   = "reply"
	markerMention = "mention"
)

const (
	boardsLimit  = 500
	threadsLimit = 500
	postsLimit   = 5000
)

// BoardsFilter selects every board definition.
func BoardsFilter() nostr.Filter {
	return nostr.Filter{Kinds: []int{KindBoard}, Limit: boardsLimit}
}

// ThreadsByBoardFilter selects threads whose root reference is boardId.
func ThreadsByBoardFilter(boardId string) nostr.Filter {
	return nostr.Filter{
		Kinds: []int{KindThread},
		Tags:  nostr.TagMap{tagEvent: []string{boardId}},
		Limit: threadsLimit,
	}
}

func ThreadFilter(id string) nostr.Filter {
	return nostr.Filter{IDs: []string{id}, Kinds: []int{KindThread}}
}

// PostsByThreadsFilter selects the posts of all given threads in one query.
func PostsByThreadsFilter(threadIds []string) nostr.Filter {
	return nostr.Filter{
		Kinds: []int{KindPost},
		Tags:  nostr.TagMap{tagEvent: threadIds},
		Limit: postsLimit,
	}
}

func SubscriptionsFilter(pubkey string) nostr.Filter {
	return nostr.Filter{Kinds: []int{KindSubscription}, Authors: []string{pubkey}}
}
