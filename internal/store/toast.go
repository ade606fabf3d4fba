package store

import (
	"log/slog"

	"github.com/vitrinaapp/vitrina-store/internal/domain"
	"github.com/vitrinaapp/vitrina-store/internal/id"
)

// ShowToast replaces the visible toast and restarts the dismissal timer.
// There is one slot: the newest toast wins.
func (s *Store) ShowToast(message string, severity domain.Severity) {
	s.set("ui.toast", func(st State) State {
		st.UI.Toast = s.armToast(message, severity)
		return st
	}, slog.String("severity", string(severity)))
}

// DismissToast clears the visible toast now.
func (s *Store) DismissToast() {
	s.toastMu.Lock()
	if s.toastTimer != nil {
		s.toastTimer.Stop()
		s.toastTimer = nil
	}
	s.toastMu.Unlock()

	s.update("ui.toast.dismiss", func(st State) (State, bool) {
		if st.UI.Toast == nil {
			return st, false
		}
		st.UI.Toast = nil
		return st, true
	})
}

// armToast builds a toast and schedules its removal, stopping the previous
// timer. Called from inside updaters so the toast lands in the same write
// as the mutation that caused it.
func (s *Store) armToast(message string, severity domain.Severity) *domain.Toast {
	t := &domain.Toast{
		ID:       id.MustGenerate(id.PrefixToast),
		Message:  message,
		Severity: severity,
	}

	s.toastMu.Lock()
	defer s.toastMu.Unlock()
	if s.toastTimer != nil {
		s.toastTimer.Stop()
	}
	toastID := t.ID
	s.toastTimer = s.clock.AfterFunc(s.toastDelay, func() { s.expireToast(toastID) })
	return t
}

// expireToast clears the toast only if it is still the one that armed the timer.
func (s *Store) expireToast(toastID string) {
	s.update("ui.toast.expire", func(st State) (State, bool) {
		if st.UI.Toast == nil || st.UI.Toast.ID != toastID {
			return st, false
		}
		st.UI.Toast = nil
		return st, true
	})
}
