package middleware

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2/middleware/session"
)

const flashSessionKey = "_flashes"

// Flash categories understood by the layout template.
const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
	FlashInfo    = "info"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// AddFlash queues a message on the session. The caller must Save the session.
// Flashes are kept as a JSON string so the session codec only ever sees basic types.
func AddFlash(sess *session.Session, category, message string) {
	flashes := peekFlashes(sess)
	flashes = append(flashes, Flash{Category: category, Message: message})
	raw, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	sess.Set(flashSessionKey, string(raw))
}

// PopFlashes returns and clears the queued messages. The caller must Save the session.
func PopFlashes(sess *session.Session) []Flash {
	flashes := peekFlashes(sess)
	if len(flashes) > 0 {
		sess.Delete(flashSessionKey)
	}
	return flashes
}

func peekFlashes(sess *session.Session) []Flash {
	raw, ok := sess.Get(flashSessionKey).(string)
	if !ok || raw == "" {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal([]byte(raw), &flashes); err != nil {
		return nil
	}
	return flashes
}
