package store

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/logger"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/models"
)

// seq breaks ties when multiple messages land on the same nanosecond, so
// submission order from one sender is preserved.
var seq uint64

// SaveMessage appends m to a room's log. The timestamp is assigned here,
// at write time, never taken from the caller; the zero-padded key makes
// iteration order equal timestamp order. Returns the stored message with
// its assigned TS.
func SaveMessage(roomID string, m models.Message) (models.Message, error) {
	if db == nil {
		return m, errNotOpen
	}
	ts := time.Now().UTC().UnixNano()
	s := atomic.AddUint64(&seq, 1)
	m.Room = roomID
	m.TS = ts
	key := fmt.Sprintf("room:%s:msg:%020d-%06d", roomID, ts, s)

	data, err := json.Marshal(m)
	if err != nil {
		return m, fmt.Errorf("marshal message: %w", err)
	}
	if err := set(key, data); err != nil {
		logger.Error("save_message_failed", "room", roomID, "key", key, "error", err)
		return m, err
	}
	logger.Debug("message_saved", "room", roomID, "id", m.ID, "ts", ts)
	notifyRoom(roomID)
	return m, nil
}

// ListMessages returns a room's messages in ascending timestamp order. The
// optional limit keeps only the newest n.
func ListMessages(roomID string, limit ...int) ([]models.Message, error) {
	vals, err := scan("room:" + roomID + ":msg:")
	if err != nil {
		return nil, err
	}
	out := make([]models.Message, 0, len(vals))
	for _, v := range vals {
		var m models.Message
		if err := json.Unmarshal(v, &m); err != nil {
			return nil, fmt.Errorf("invalid message document in room %s: %w", roomID, err)
		}
		out = append(out, m)
	}
	if len(limit) > 0 && limit[0] > 0 && limit[0] < len(out) {
		out = out[len(out)-limit[0]:]
	}
	return out, nil
}

// SaveConversation writes the cached summary document for a paired room.
// It is always a separate write from the message append and may be lost
// without affecting the log.
func SaveConversation(c models.Conversation) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}
	if err := set("room:"+c.ID+":meta", data); err != nil {
		logger.Error("save_conversation_failed", "room", c.ID, "error", err)
		return err
	}
	return nil
}

// GetConversation returns the summary for a paired room, or found=false
// when no message has created it yet.
func GetConversation(roomID string) (models.Conversation, bool, error) {
	var c models.Conversation
	v, found, err := get("room:" + roomID + ":meta")
	if err != nil || !found {
		return c, false, err
	}
	if err := json.Unmarshal(v, &c); err != nil {
		return c, false, fmt.Errorf("invalid conversation document %s: %w", roomID, err)
	}
	return c, true, nil
}

// ListConversationsFor returns every conversation summary naming uid as a
// participant.
func ListConversationsFor(uid string) ([]models.Conversation, error) {
	if db == nil {
		return nil, errNotOpen
	}
	iter, err := db.NewIter(nil)
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	pfx := []byte("room:")
	var out []models.Conversation
	for iter.SeekGE(pfx); iter.Valid(); iter.Next() {
		if !hasPrefix(iter.Key(), pfx) {
			break
		}
		if !hasSuffix(iter.Key(), []byte(":meta")) {
			continue
		}
		var c models.Conversation
		if err := json.Unmarshal(iter.Value(), &c); err != nil {
			continue
		}
		if c.Involves(uid) {
			out = append(out, c)
		}
	}
	return out, iter.Error()
}

func hasSuffix(b, sfx []byte) bool {
	if len(b) < len(sfx) {
		return false
	}
	off := len(b) - len(sfx)
	for i := range sfx {
		if b[off+i] != sfx[i] {
			return false
		}
	}
	return true
}
