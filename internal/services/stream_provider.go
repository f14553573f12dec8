package services

import (
	"context"

	"github.com/preetsinghmakkar/meetingsync/internal/stream"
)

// StreamProvider adapts the provider client to the call-control and realtime
// interfaces, scoping every call to one call type.
type StreamProvider struct {
	client   *stream.Client
	callType string
}

func NewStreamProvider(client *stream.Client, callType string) *StreamProvider {
	return &StreamProvider{client: client, callType: callType}
}

func (p *StreamProvider) EndCall(ctx context.Context, callID string) error {
	return p.client.Call(p.callType, callID).End(ctx)
}

func (p *StreamProvider) ConnectAgent(ctx context.Context, callID string, creds stream.AgentCredentials) (AgentSession, error) {
	session, err := p.client.ConnectAgent(ctx, p.client.Call(p.callType, callID), creds)
	if err != nil {
		return nil, err
	}
	return session, nil
}
