package wizard

import "github.com/gitcoinco/grant-claims/internal/apperr"

type NotificationVariant string

const (
	VariantDefault     NotificationVariant = "default"
	VariantDestructive NotificationVariant = "destructive"
)

// Notification is a dismissible message for the user.
type Notification struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Variant     NotificationVariant `json:"variant"`
}

// Failed reports whether the notification describes a failure.
func (n Notification) Failed() bool {
	return n.Variant == VariantDestructive
}

func success(description string) Notification {
	return Notification{Title: "Success", Description: description, Variant: VariantDefault}
}

func failure(description string) Notification {
	return Notification{Title: "Error", Description: description, Variant: VariantDestructive}
}

// ErrorNotification turns a step error into a notification.
func ErrorNotification(err error) Notification {
	if err == nil {
		return failure(unknownError)
	}
	return failure(apperr.MessageOf(err))
}
