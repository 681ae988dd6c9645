package factory

import (
	"net/mail"
	"net/url"
	"time"

	"github.com/google/uuid"
)

var timeLayouts = []string{"15:04:05Z07:00", "15:04:05.999999999Z07:00", "15:04:05"}

// checkFormat reports whether s satisfies a known format. Unknown formats
// always pass.
func checkFormat(format, s string) bool {
	switch format {
	case "uuid":
		_, err := uuid.Parse(s)
		return err == nil && len(s) == 36
	case "date-time":
		_, err := time.Parse(time.RFC3339Nano, s)
		return err == nil
	case "date":
		_, err := time.Parse(time.DateOnly, s)
		return err == nil
	case "time":
		for _, l := range timeLayouts {
			if _, err := time.Parse(l, s); err == nil {
				return true
			}
		}
		return false
	case "email":
		a, err := mail.ParseAddress(s)
		return err == nil && a.Address == s
	case "uri":
		u, err := url.Parse(s)
		return err == nil && u.IsAbs() && (u.Host != "" || u.Opaque != "" || u.Path != "")
	}
	return true
}
