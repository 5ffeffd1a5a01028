package tl

func byteSum(p []byte) uint8 {
	var s uint8
	for _, b := range p {
		s += b
	}
	return s
}

// solveChecksum returns the checksum byte that makes a buffer sum to zero.
// raw is the byte sum of the buffer including the stale checksum byte.
func solveChecksum(raw, stale uint8) uint8 {
	rest := int(raw - stale)
	return uint8((256 - rest) % 256)
}
