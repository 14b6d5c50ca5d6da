package pipeline

import "ctxpipe/internal/message"

// PreSendHook transforms a history immediately before an outbound model
// call. The runtime must use the returned copy for that one request and
// keep its own stored history untouched.
type PreSendHook func(history []message.Message) ([]message.Message, error)

// Agent is the narrow registration surface the pipeline needs from a
// conversational runtime.
type Agent interface {
	RegisterPreSend(hook PreSendHook)
}

// AddToAgent registers the pipeline at the runtime's pre-send extension
// point.
func (p *Pipeline) AddToAgent(agent Agent) {
	agent.RegisterPreSend(func(history []message.Message) ([]message.Message, error) {
		result, err := p.Apply(history)
		if err != nil {
			return nil, err
		}
		return result.History, nil
	})
}
