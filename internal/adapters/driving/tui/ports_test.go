package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPorts(t *testing.T) {
	ask := &MockAskService{}
	retrieval := &MockRetrievalService{}
	logs := &MockLogService{}

	ports := NewPorts(ask, retrieval, logs)

	assert.Same(t, ask, ports.Ask)
	assert.Same(t, retrieval, ports.Retrieval)
	assert.Same(t, logs, ports.Logs)
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ports   *Ports
		wantErr error
	}{
		{"nil ports", nil, ErrMissingAskService},
		{"missing ask", &Ports{Retrieval: &MockRetrievalService{}}, ErrMissingAskService},
		{"missing retrieval", &Ports{Ask: &MockAskService{}}, ErrMissingRetrievalService},
		{"logs optional", &Ports{Ask: &MockAskService{}, Retrieval: &MockRetrievalService{}}, nil},
		{"all set", NewPorts(&MockAskService{}, &MockRetrievalService{}, &MockLogService{}), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
