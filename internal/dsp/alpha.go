package dsp

// Alpha premultiplication helpers shared by the interleaved RGB mutations
// and the conversion engine's premultiplication-state reconciliation.

// PremultiplySample scales a color sample by alpha with rounding.
// maxValue is the largest representable sample at the working depth.
func PremultiplySample(c, a uint16, maxValue int) uint16 {
	return uint16((int(c)*int(a) + maxValue/2) / maxValue)
}

// UnpremultiplySample reverses PremultiplySample. Fully transparent
// samples stay zero; results saturate at maxValue.
func UnpremultiplySample(c, a uint16, maxValue int) uint16 {
	if a == 0 {
		return 0
	}
	v := (int(c)*maxValue + int(a)/2) / int(a)
	if v > maxValue {
		return uint16(maxValue)
	}
	return uint16(v)
}
