package tl

import "errors"

var (
	ErrTagOutOfRange    = errors.New("tl: tag id out of range")
	ErrNoData           = errors.New("tl: no data for non-empty tag")
	ErrDataTooLarge     = errors.New("tl: entry data too large")
	ErrMaxSizeTooSmall  = errors.New("tl: max size smaller than header")
	ErrMaxSizeExceeded  = errors.New("tl: size has exceeded the maximum allocation")
	ErrAlignmentRange   = errors.New("tl: alignment out of range")
	ErrInvalidSignature = errors.New("tl: invalid signature")
	ErrInvalidVersion   = errors.New("tl: invalid version")
	ErrChecksum         = errors.New("tl: checksum mismatch")
	ErrCorrupt          = errors.New("tl: corrupt transfer list")
	ErrMisaligned       = errors.New("tl: misaligned transfer entry")
	ErrTagNotFound      = errors.New("tl: tag not found")

	// ErrLayoutCorrupt reports that the recorded layout no longer fits the
	// declared max size. It indicates a bookkeeping defect, never bad input.
	ErrLayoutCorrupt = errors.New("tl: entry layout exceeds max size")
)
