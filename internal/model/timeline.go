package model

import (
	"fmt"
	"time"
)

// Record добавляет запись в историю заказа. Ранее сделанные записи не меняются.
// Метка времени раньше последней записи приравнивается к ней, чтобы история
// оставалась упорядоченной.
func (o *Order) Record(at time.Time, event, actor, details string) TimelineEntry {
	if n := len(o.Timeline); n > 0 && at.Before(o.Timeline[n-1].Timestamp) {
		at = o.Timeline[n-1].Timestamp
	}

	entry := TimelineEntry{
		Timestamp: at,
		Event:     event,
		Actor:     actor,
		Details:   details,
	}
	o.Timeline = append(o.Timeline, entry)
	return entry
}

// StatusChangedEvent формирует текст записи истории о смене статуса.
func StatusChangedEvent(status OrderStatus) string {
	return fmt.Sprintf("Status changed to %s", status)
}

// SameDay сообщает, приходятся ли два момента на один календарный день в зоне b.
func SameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
