// Package stream is the ordered message log per room: an appendable,
// subscribable sequence where ordering is fixed by the store-assigned
// timestamp at write time.
package stream

import (
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/errs"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/logger"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/models"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/roomid"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/store"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/telemetry"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/utils"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/validation"
)

// Subscribe opens a snapshot sequence for room: the full current ordered
// message set is delivered immediately and re-delivered after every
// append. Consumers re-render from each snapshot whole; no diffing is part
// of the contract. The disposer must run before subscribing to a
// different room.
func Subscribe(room string) (<-chan []models.Message, func(), error) {
	return store.WatchRoom(room)
}

// List returns the room's current ordered message set once.
func List(room string, limit ...int) ([]models.Message, error) {
	return store.ListMessages(room, limit...)
}

// Send validates, appends, and, for paired rooms only, refreshes the
// conversation summary with a second, independent write. The summary write
// is not transactional with the append: a failure between the two leaves a
// delivered message with a stale summary, which is accepted because the
// log is the source of truth. Nothing here retries.
func Send(room, sender, content string, kind models.MessageKind) (models.Message, error) {
	if err := validation.MessageContent(content); err != nil {
		return models.Message{}, err
	}
	if kind == "" {
		if roomid.IsPaired(room) {
			kind = models.KindDM
		} else {
			kind = models.KindUser
		}
	}

	m := models.Message{
		ID:      utils.GenID(),
		Sender:  sender,
		Content: content,
		Kind:    kind,
	}
	saved, err := store.SaveMessage(room, m)
	if err != nil {
		return models.Message{}, &errs.WriteFailure{Op: "send to " + room, Err: err}
	}
	telemetry.MessagesSent.WithLabelValues(string(saved.Kind)).Inc()

	if a, b, ok := roomid.Participants(room); ok {
		conv := models.Conversation{
			ID:           room,
			Participants: [2]string{a, b},
			LastText:     saved.Content,
			LastTS:       saved.TS,
		}
		if err := store.SaveConversation(conv); err != nil {
			// summary is a cache; the message has already been delivered
			logger.Warn("conversation_summary_stale", "room", room, "error", err)
		}
	}
	return saved, nil
}
