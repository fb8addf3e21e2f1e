package esp_test

import (
	gomock "go.uber.org/mock/gomock"
	"i4.energy/across/espat/esp"
)

// MockSequenceBuilder records the byte-at-a-time exchange the driver has
// with a MockTransport, in order.
type MockSequenceBuilder struct {
	transport *esp.MockTransport
	calls     []any
}

func NewMockSequence(transport *esp.MockTransport) *MockSequenceBuilder {
	return &MockSequenceBuilder{
		transport: transport,
		calls:     []any{},
	}
}

// Idle expects one poll that finds no input.
func (b *MockSequenceBuilder) Idle() *MockSequenceBuilder {
	b.calls = append(b.calls,
		b.transport.EXPECT().Read(gomock.Any()).Return(0, nil),
	)
	return b
}

// Sent expects wire to be written one byte per call.
func (b *MockSequenceBuilder) Sent(wire string) *MockSequenceBuilder {
	for i := 0; i < len(wire); i++ {
		b.calls = append(b.calls,
			b.transport.EXPECT().Write([]byte{wire[i]}).Return(1, nil),
		)
	}
	return b
}

// Received expects resp to be read one byte per call.
func (b *MockSequenceBuilder) Received(resp string) *MockSequenceBuilder {
	for i := 0; i < len(resp); i++ {
		c := resp[i]
		b.calls = append(b.calls,
			b.transport.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
				p[0] = c
				return 1, nil
			}),
		)
	}
	return b
}

func (b *MockSequenceBuilder) EchoOff() *MockSequenceBuilder {
	return b.Sent("ATE0\r\n").Received("ATE0\r\n\r\nOK\r\n")
}

func (b *MockSequenceBuilder) Build() []any {
	return b.calls
}

// initMockCalls is the exchange performed by esp.New with default config.
func initMockCalls(transport *esp.MockTransport) []any {
	return NewMockSequence(transport).
		Idle().
		EchoOff().
		Build()
}
