package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/mykisan/kisan/internal/voice"
)

type (
	voiceUpdateMsg  voice.State
	voiceClosedMsg  struct{}
	voiceStartedMsg struct{ err error }
)

// voiceFeedback remembers which transcript and error were already shown
// so repeated snapshots do not toast twice.
type voiceFeedback struct {
	transcript string
	err        string
}

// handleVoice records a controller snapshot and returns the feedback
// commands it calls for.
func (m *model) handleVoice(st voice.State) []tea.Cmd {
	wasBusy := m.common.voice.Busy()
	m.common.voice = st

	var cmds []tea.Cmd
	if st.Busy() && !wasBusy {
		cmds = append(cmds, m.home.spinner.Tick)
	}

	if st.Err != nil {
		key := st.SessionID + "|" + st.Err.Error()
		if m.voiceFeedback.err != key {
			m.voiceFeedback.err = key
			log.Debug("voice error", "session", st.SessionID, "error", st.Err)
			cmds = append(cmds, m.toasts.push("Voice Error", st.ErrorMessage(), true))
		}
		return cmds
	}

	if st.Transcript != "" && !st.Busy() {
		key := st.SessionID + "|" + st.Transcript
		if m.voiceFeedback.transcript != key {
			m.voiceFeedback.transcript = key
			cmds = append(cmds, m.toasts.push("Voice Input Received", st.Transcript, false))
			m.speak(fmt.Sprintf("I heard: %s. Let me help you with that.", st.Transcript))
		}
	}
	return cmds
}

// toggleListening starts a capture, or stops the running one.
func (m *model) toggleListening() tea.Cmd {
	v := m.common.svc.Voice
	if v == nil {
		return m.toasts.push("Voice Error", "Speech recognition not supported", true)
	}
	st := v.State()
	switch {
	case st.Listening:
		return stopListening(v)
	case st.Processing:
		return nil
	default:
		return startListening(v)
	}
}

// speak reads text aloud when voice responses are enabled.
func (m *model) speak(text string) {
	if m.common.svc.Voice == nil || !m.common.settings.VoiceResponses {
		return
	}
	m.common.svc.Voice.SpeakText(text)
}

// COMMANDS

func waitForVoice(ch <-chan voice.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return voiceClosedMsg{}
		}
		return voiceUpdateMsg(st)
	}
}

func startListening(v Voice) tea.Cmd {
	return func() tea.Msg {
		return voiceStartedMsg{err: v.StartListening()}
	}
}

func stopListening(v Voice) tea.Cmd {
	return func() tea.Msg {
		v.StopListening()
		return nil
	}
}
