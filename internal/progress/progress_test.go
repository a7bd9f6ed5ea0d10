package progress

import (
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/matsen/citegraph/internal/enrich"
)

func TestRecorder(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := NewRecorder(true, zap.New(core))

	r.Update(enrich.StatusLoading, "loading")
	r.Alert("No DOI", "nothing to do")
	assert.True(t, r.Confirm("Add citations?", "3 references"))
	r.Update(enrich.StatusDone, "done")
	r.Close()
	r.Update(enrich.StatusLoading, "late")

	events := r.Events()
	require.Len(t, events, 4)
	assert.Equal(t, Event{Kind: KindUpdate, Status: enrich.StatusLoading, Message: "loading"}, events[0])
	assert.Equal(t, KindAlert, events[1].Kind)
	assert.Equal(t, "No DOI", events[1].Title)
	require.NotNil(t, events[2].Answer)
	assert.True(t, *events[2].Answer)
	assert.Equal(t, enrich.StatusDone, events[3].Status)

	assert.Equal(t, 1, logs.FilterMessage("nothing to do").Len())
	assert.Equal(t, 1, logs.FilterMessage("confirmation").Len())
}

func TestRecorder_Declines(t *testing.T) {
	r := NewRecorder(false, nil)
	assert.False(t, r.Confirm("t", "m"))

	events := r.Events()
	require.Len(t, events, 1)
	assert.False(t, *events[0].Answer)
}

func TestRecorder_EventsIsCopy(t *testing.T) {
	r := NewRecorder(true, nil)
	r.Update(enrich.StatusLoading, "a")

	events := r.Events()
	events[0].Message = "changed"
	assert.Equal(t, "a", r.Events()[0].Message)
}

func TestTerminal_AssumeYes(t *testing.T) {
	pterm.DisableOutput()
	t.Cleanup(pterm.EnableOutput)

	term := NewTerminal(true)
	term.Update(enrich.StatusLoading, "loading")
	term.Update(enrich.StatusLoading, "parsing")
	assert.True(t, term.Confirm("Add citations?", "3 references"))
	term.Update(enrich.StatusLoading, "parsing 1/1")
	term.Update(enrich.StatusDone, "done")
	assert.Nil(t, term.spinner)

	term.Update(enrich.StatusLoading, "again")
	term.Close()
	assert.Nil(t, term.spinner)
	term.Close()
}
