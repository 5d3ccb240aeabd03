package model

import "github.com/mdobak/go-xerrors"

var (
	// ErrEmptyMelody means fewer than two usable pitch observations were found.
	ErrEmptyMelody = xerrors.Message("empty melody")
	// ErrInvalidAudio means the audio source is missing, empty or undecodable.
	ErrInvalidAudio = xerrors.Message("invalid audio")
	// ErrDecode is reported by audio decoders on unreadable or corrupt input.
	ErrDecode = xerrors.Message("decode error")
)
