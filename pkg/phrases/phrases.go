// Package phrases localizes user-facing notification text. Message catalogs
// are registered in code so the binary carries its own translations.
package phrases

import (
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Phrase keys for every notification kind.
const (
	MomentLikeNotification      = "MOMENT_LIKE_NOTIFICATION"
	UserFollowingNotification   = "USER_FOLLOWING_NOTIFICATION"
	MomentCommentNotification   = "MOMENT_COMMENT_NOTIFICATION"
	CommentMentionNotification  = "MOMENT_COMMENT_USER_REFERENCE_NOTIFICATION"
	HeadlineMentionNotification = "MOMENT_USER_REFERENCE_NOTIFICATION"
)

// Translator renders localized phrases, falling back to English when a locale
// has no catalog.
type Translator struct {
	bundle *i18n.Bundle
}

// NewTranslator builds a translator with the built-in message catalogs.
func NewTranslator() *Translator {
	bundle := i18n.NewBundle(language.English)

	bundle.AddMessages(language.English,
		&i18n.Message{ID: MomentLikeNotification, Other: "{{.Username}} liked your moment"},
		&i18n.Message{ID: UserFollowingNotification, Other: "{{.Username}} started following you"},
		&i18n.Message{ID: MomentCommentNotification, Other: "{{.Username}} commented on your moment"},
		&i18n.Message{ID: CommentMentionNotification, Other: "{{.Username}} mentioned you in a comment"},
		&i18n.Message{ID: HeadlineMentionNotification, Other: "{{.Username}} mentioned you in a moment"},
	)

	bundle.AddMessages(language.Spanish,
		&i18n.Message{ID: MomentLikeNotification, Other: "A {{.Username}} le gusta tu momento"},
		&i18n.Message{ID: UserFollowingNotification, Other: "{{.Username}} comenzó a seguirte"},
		&i18n.Message{ID: MomentCommentNotification, Other: "{{.Username}} comentó tu momento"},
		&i18n.Message{ID: CommentMentionNotification, Other: "{{.Username}} te mencionó en un comentario"},
		&i18n.Message{ID: HeadlineMentionNotification, Other: "{{.Username}} te mencionó en un momento"},
	)

	return &Translator{bundle: bundle}
}

// Translate renders one phrase for the given locale. An unknown locale or
// message id falls back to English; a completely unknown id returns the id
// itself so the caller still has something to show.
func (t *Translator) Translate(locale, phraseKey string, data map[string]interface{}) string {
	localizer := i18n.NewLocalizer(t.bundle, locale, language.English.String())
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    phraseKey,
		TemplateData: data,
	})
	if err != nil {
		return phraseKey
	}
	return msg
}
