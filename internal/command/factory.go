package command

import (
	"github.com/promptdeck/promptdeck-server/internal/errors"
)

// Factory maps operation codes to concrete commands.
type Factory struct{}

// NewFactory creates a command factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Create builds the command for an operation code. Unrecognized codes fail
// with an UNKNOWN_COMMAND error.
func (f *Factory) Create(code string, p Params) (Command, error) {
	switch code {
	case OpCreateTag:
		return NewCreateTagCommand(p), nil
	case OpDeleteTag:
		return NewDeleteTagCommand(p), nil
	case OpRenameTag:
		return NewRenameTagCommand(p), nil
	default:
		return nil, errors.UnknownCommand("unknown tag operation: " + code)
	}
}
