package models

import "strings"

// CommandType enumerates supported chat command categories.
type CommandType string

const (
	CommandInbound  CommandType = "in"
	CommandOutbound CommandType = "out"
	CommandValue    CommandType = "value"
	CommandStock    CommandType = "stock"
	CommandUnknown  CommandType = "unknown"
)

// Command is a parsed site-staff instruction extracted from WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command from free-form text. Arguments keep their
// original case since descriptions and identifiers are case sensitive.
func ParseCommand(message string) Command {
	cmd := Command{Type: CommandUnknown, Raw: message}

	tokens := strings.Fields(strings.TrimSpace(message))
	if len(tokens) == 0 {
		return cmd
	}

	head := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	switch head {
	case string(CommandInbound), "inbound":
		cmd.Type = CommandInbound
	case string(CommandOutbound), "outbound":
		cmd.Type = CommandOutbound
	case string(CommandValue), "values":
		cmd.Type = CommandValue
	case string(CommandStock):
		cmd.Type = CommandStock
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
