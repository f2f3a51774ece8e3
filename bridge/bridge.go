// Package bridge correlates forwarded header messages with the private-chat
// sender they represent, so an operator reply to a header can be routed back
// to the otherwise anonymous sender.
package bridge

import (
	"container/list"
	"sync"
)

// Key identifies one forwarded header: a transport-assigned message id is
// unique within its chat, so the pair is unique by construction.
type Key struct {
	ChatID    int64
	MessageID int64
}

type entry struct {
	key    Key
	sender int64
}

// Bridge is an insertion-ordered map of Key to originating sender id.
// maxEntries bounds growth by evicting the least recently inserted entry;
// zero means unbounded, matching the behavior the bot originally shipped
// with.
type Bridge struct {
	mu         sync.Mutex
	entries    map[Key]*list.Element
	order      *list.List
	maxEntries int
}

func New(maxEntries int) *Bridge {
	if maxEntries < 0 {
		maxEntries = 0
	}
	return &Bridge{
		entries:    make(map[Key]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
	}
}

// Record maps a header message to the original sender, overwriting any prior
// entry with the same key.
func (b *Bridge) Record(chatID, messageID, senderID int64) {
	k := Key{ChatID: chatID, MessageID: messageID}
	b.mu.Lock()
	defer b.mu.Unlock()
	if el, ok := b.entries[k]; ok {
		el.Value.(*entry).sender = senderID
		return
	}
	b.entries[k] = b.order.PushBack(&entry{key: k, sender: senderID})
	if b.maxEntries > 0 && b.order.Len() > b.maxEntries {
		oldest := b.order.Front()
		b.order.Remove(oldest)
		delete(b.entries, oldest.Value.(*entry).key)
	}
}

// Resolve looks up the sender for a replied-to message. Entries are read,
// not consumed: an operator may reply to an old header at any time.
func (b *Bridge) Resolve(chatID, messageID int64) (int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	el, ok := b.entries[Key{ChatID: chatID, MessageID: messageID}]
	if !ok {
		return 0, false
	}
	return el.Value.(*entry).sender, true
}

func (b *Bridge) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.order.Len()
}
