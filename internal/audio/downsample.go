package audio

import "encoding/binary"

// maxAmplitude is the normalization divisor for signed 16-bit PCM.
const maxAmplitude = 32768.0

// Downsample reduces a raw mono 16-bit PCM container to a visualization
// vector of at most targetLength peak values in [0,1].
//
// The fixed 44-byte container header is skipped; a buffer shorter than the
// header is treated as an empty sample set. The remaining bytes are read as
// signed 16-bit little-endian samples, normalized by absolute value, and
// partitioned into targetLength contiguous buckets of floor(N/targetLength)
// samples each; trailing samples that do not fill a whole bucket fold into
// the final one. Each bucket emits its maximum, not its mean: peaks keep
// transient spikes visible in the rendered waveform.
//
// Output length is min(targetLength, N) for N > 0 and 0 for N == 0. Short
// clips therefore produce fewer buckets than requested; callers must not
// assume exact length equality.
func Downsample(data []byte, targetLength int) []float64 {
	if targetLength <= 0 || len(data) <= HeaderSize {
		return []float64{}
	}

	pcm := data[HeaderSize:]
	numSamples := len(pcm) / 2
	if numSamples == 0 {
		return []float64{}
	}

	if numSamples <= targetLength {
		// One sample per bucket.
		out := make([]float64, numSamples)
		for i := 0; i < numSamples; i++ {
			out[i] = normalize(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
		}
		return out
	}

	bucketSize := numSamples / targetLength
	out := make([]float64, targetLength)

	for b := 0; b < targetLength; b++ {
		start := b * bucketSize
		end := start + bucketSize
		if b == targetLength-1 {
			end = numSamples
		}

		peak := 0.0
		for i := start; i < end; i++ {
			if v := normalize(int16(binary.LittleEndian.Uint16(pcm[i*2:]))); v > peak {
				peak = v
			}
		}
		out[b] = peak
	}

	return out
}

// normalize maps a signed 16-bit sample to its magnitude in [0,1].
func normalize(s int16) float64 {
	v := float64(s)
	if v < 0 {
		v = -v
	}
	return v / maxAmplitude
}
