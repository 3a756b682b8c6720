package config

import "errors"

var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrTicketDirEmpty     = errors.New("ticket-dir cannot be empty")
	ErrTemplateInvalid    = errors.New("invalid template")
)
