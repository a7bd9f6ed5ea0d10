package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/matsen/citegraph/internal/enrich"
)

func TestNew_Matching(t *testing.T) {
	tests := []struct {
		prefs []string
		want  language.Tag
	}{
		{nil, language.English},
		{[]string{"de-CH"}, language.German},
		{[]string{"fr,en;q=0.8"}, language.French},
		{[]string{"ja"}, language.English},
	}
	for _, tt := range tests {
		l := New(tt.prefs...)
		assert.Equal(t, tt.want.String(), l.Tag().String(), "prefs %v", tt.prefs)
	}
}

func TestText(t *testing.T) {
	en := New("en")
	assert.Equal(t, "Citations added.", en.Text(enrich.MsgDone))
	assert.Equal(t, "Parsing references (1/2)...", en.Text(enrich.MsgParsingProgress, 1, 2))
	assert.Equal(t,
		"2 of 3 selected records have references (7 in total). Add them as citations?",
		en.Text(enrich.MsgConfirmMessage, 2, 3, 7))

	de := New("de")
	assert.Equal(t, "Zitationen hinzugefügt.", de.Text(enrich.MsgDone))
	assert.Equal(t, "Literaturangaben werden verarbeitet (1/2)...", de.Text(enrich.MsgParsingProgress, 1, 2))
}

func TestText_UnknownKey(t *testing.T) {
	l := New("en")
	assert.Equal(t, "some.key", l.Text("some.key"))
	assert.Equal(t, "some.key 1 2", l.Text("some.key", 1, 2))
}

func TestCatalogComplete(t *testing.T) {
	for tag, msgs := range messages {
		for key := range messages[language.English] {
			assert.Contains(t, msgs, key, "%s is missing %s", tag, key)
		}
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "de_DE.UTF-8")
	assert.Equal(t, "de", FromEnv().Tag().String())

	t.Setenv("LANG", "C")
	assert.Equal(t, "en", FromEnv().Tag().String())
}

func TestPosixLocale(t *testing.T) {
	assert.Equal(t, "fr-CA", posixLocale("fr_CA.UTF-8"))
	assert.Equal(t, "de-DE", posixLocale("de_DE@euro"))
	assert.Equal(t, "en", posixLocale("POSIX"))
}
