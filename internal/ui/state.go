// Package ui holds the page display state shared by every request for the
// lifetime of the process.
package ui

import (
	"sync"

	"token-transfer-wallet/internal/model"
)

type State struct {
	mu      sync.RWMutex
	display model.Display
}

func NewState() *State {
	return &State{}
}

func (s *State) ResetError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.display.ErrorVisible = false
	s.display.Alert = ""
}

// ShowError reveals the error banner with msg.
func (s *State) ShowError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.display.Error = msg
	s.display.ErrorVisible = true
}

// Alert records a blocking message the page must show before anything else.
func (s *State) Alert(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.display.Alert = msg
}

func (s *State) SetAccount(account string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.display.Account = account
}

func (s *State) SetBalance(balance string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.display.Balance = balance
}

func (s *State) Snapshot() model.Display {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.display
}
