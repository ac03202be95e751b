package sensor

import (
	"github.com/marcelblijleven/goodwe/pkg/protocol"
)

// Block is a decoded response payload addressed the way its catalog
// addresses sensors, by register for the word-oriented dialects and by
// byte offset for the AA55 dialect.
type Block struct {
	data []byte
	cmd  *protocol.Command
}

func NewBlock(cmd *protocol.Command, payload []byte) *Block {
	return &Block{data: payload, cmd: cmd}
}

// RawBlock wraps a payload addressed by plain byte offsets.
func RawBlock(payload []byte) *Block {
	return &Block{data: payload, cmd: protocol.RawCommand(nil)}
}

// Bytes returns the length bytes of the value at address, or false
// when the payload does not cover them.
func (b *Block) Bytes(address, length int) ([]byte, bool) {
	start := b.cmd.PayloadOffset(address)
	if start < 0 || start+length > len(b.data) {
		return nil, false
	}
	return b.data[start : start+length], true
}

func (b *Block) Len() int {
	return len(b.data)
}
