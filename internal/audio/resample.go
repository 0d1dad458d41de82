package audio

// Downsample48to16 converts 48 kHz PCM samples to 16 kHz via 3-sample
// averaging (simple anti-aliasing decimation). It is the one native-rate
// conversion Capture performs itself; see nativeDownsampleRate.
func Downsample48to16(input []int16) []int16 {
	if len(input) == 0 {
		return nil
	}
	outLen := len(input) / 3
	output := make([]int16, outLen)
	for i := 0; i < outLen; i++ {
		idx := i * 3
		if idx+2 < len(input) {
			sum := int32(input[idx]) + int32(input[idx+1]) + int32(input[idx+2])
			output[i] = int16(sum / 3)
		} else {
			output[i] = input[idx]
		}
	}
	return output
}
