package domain

import (
	"fmt"
	"time"
)

// for debug
func (p *Post) String() string {
	return fmt.Sprintf("[id:%s, thread:%s, author:%s, created:%s, refs:%v, text:%s]",
		p.Id, p.ThreadId, p.AuthorPubkey, p.CreatedAt.Format(time.StampMilli), p.References, p.Content)
}

func (t *Thread) String() string {
	return fmt.Sprintf("[id:%s, title:%s, board:%s, reply_count:%d, last_reply:%v]",
		t.Id, t.Title, t.BoardId, t.ReplyCount, t.LastReplyTime)
}
